package searchindex

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/T21C/tuf-backend-sub003/internal/db"
	"github.com/T21C/tuf-backend-sub003/internal/domain"
	"github.com/T21C/tuf-backend-sub003/internal/textenc"
)

func levelEntry(t *testing.T, doc domain.LevelDoc) db.SearchEntry {
	t.Helper()
	data, err := json.Marshal(&doc)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return db.SearchEntry{Key: "tuf:levels:" + domain.DocID(doc.ID), JSON: data}
}

func TestPageDecodesAndRestoresText(t *testing.T) {
	stored := domain.LevelDoc{
		ID:     3,
		Song:   textenc.ToSafe("Song: A|B"),
		Artist: textenc.ToSafe("アーティスト"),
		Credits: []domain.CreditDoc{
			{Name: textenc.ToSafe("Some{Charter}"), Role: "charter"},
		},
		CreditPairs: []string{domain.CreditPair("charter", textenc.ToSafe("Some{Charter}"))},
	}
	var gotQuery *db.PageQuery
	ms := &mockStore{
		searchFn: func(_ context.Context, q *db.PageQuery) (*db.SearchResult, error) {
			gotQuery = q
			return &db.SearchResult{Total: 17, Entries: []db.SearchEntry{levelEntry(t, stored)}}, nil
		},
	}
	r := New(ms, "tuf:", 0)

	page, err := r.Page(context.Background(), domain.FamilyLevel, "@song:{w'*x*'}", domain.SortRecent, 10, 5)
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	if gotQuery.Index != "tuf:idx:levels" || gotQuery.Offset != 10 || gotQuery.Limit != 5 {
		t.Errorf("query = %+v", gotQuery)
	}
	if page.Total != 17 || len(page.Levels) != 1 {
		t.Fatalf("page = %+v", page)
	}
	got := page.Levels[0]
	if got.Song != "Song: A|B" {
		t.Errorf("Song = %q, want original text restored", got.Song)
	}
	if got.Artist != "アーティスト" {
		t.Errorf("Artist = %q", got.Artist)
	}
	if got.Credits[0].Name != "Some{Charter}" {
		t.Errorf("credit name = %q", got.Credits[0].Name)
	}
	if got.CreditPairs != nil {
		t.Error("pair tags should not leave the repository")
	}
}

func TestSortSpecMapping(t *testing.T) {
	cases := []struct {
		family domain.Family
		sort   domain.Sort
		field  string
		desc   bool
	}{
		{domain.FamilyLevel, domain.SortRecent, "id", true},
		{domain.FamilyLevel, domain.SortDiffAsc, "diffSort", false},
		{domain.FamilyLevel, domain.SortDiffDesc, "diffSort", true},
		{domain.FamilyLevel, domain.SortClears, "clears", true},
		{domain.FamilyPass, domain.SortDiffDesc, "scoreV2", true},
		{domain.FamilyPass, domain.SortClears, "accuracy", true},
	}
	for _, c := range cases {
		spec := sortSpec(c.family, c.sort)
		if spec.Field != c.field || spec.Desc != c.desc {
			t.Errorf("%s/%s = %+v, want %s desc=%v", c.family, c.sort, spec, c.field, c.desc)
		}
	}
}

func TestCountMatches(t *testing.T) {
	var gotIndex, gotQuery string
	ms := &mockStore{
		countFn: func(_ context.Context, index, query string) (int64, error) {
			gotIndex, gotQuery = index, query
			return 12000, nil
		},
	}
	r := New(ms, "tuf:", 0)

	n, err := r.CountMatches(context.Background(), domain.FamilyPass, "*")
	if err != nil {
		t.Fatalf("CountMatches: %v", err)
	}
	if n != 12000 || gotIndex != "tuf:idx:passes" || gotQuery != "*" {
		t.Errorf("n=%d index=%q query=%q", n, gotIndex, gotQuery)
	}
}

func TestCursorWalkDecodesEachPage(t *testing.T) {
	pages := [][]db.SearchEntry{
		{
			{Key: "tuf:passes:1", JSON: mustJSON(t, domain.PassDoc{ID: 1, Player: textenc.ToSafe("Player One")})},
			{Key: "tuf:passes:2", JSON: mustJSON(t, domain.PassDoc{ID: 2})},
		},
		{
			{Key: "tuf:passes:3", JSON: mustJSON(t, domain.PassDoc{ID: 3})},
		},
	}
	closed := false
	mc := &mockCursor{
		nextFn: func(context.Context) ([]db.SearchEntry, bool, error) {
			if len(pages) == 0 {
				return nil, false, db.ErrCursorDone
			}
			p := pages[0]
			pages = pages[1:]
			return p, len(pages) > 0, nil
		},
		closeFn: func(context.Context) error {
			closed = true
			return nil
		},
	}
	ms := &mockStore{
		openCursorFn: func(_ context.Context, q *db.CursorQuery) (db.Cursor, error) {
			if q.Index != "tuf:idx:passes" || q.PageSize != 2 {
				t.Errorf("cursor query = %+v", q)
			}
			return mc, nil
		},
	}
	r := New(ms, "tuf:", 0)
	ctx := context.Background()

	cur, err := r.OpenCursor(ctx, domain.FamilyPass, "*", domain.SortRecent, 2)
	if err != nil {
		t.Fatalf("OpenCursor: %v", err)
	}

	page, more, err := cur.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !more || len(page.Passes) != 2 {
		t.Fatalf("first page: more=%v len=%d", more, len(page.Passes))
	}
	if page.Passes[0].Player != "Player One" {
		t.Errorf("player = %q, want decoded text", page.Passes[0].Player)
	}

	page, more, err = cur.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if more || len(page.Passes) != 1 || page.Passes[0].ID != 3 {
		t.Errorf("last page: more=%v page=%+v", more, page)
	}

	if err := cur.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !closed {
		t.Error("underlying cursor was not closed")
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
