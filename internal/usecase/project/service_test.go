package project

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
	"github.com/T21C/tuf-backend-sub003/internal/textenc"
)

type mockLoader struct {
	levels map[int64]*domain.Level
	passes map[int64]*domain.Pass
}

func (m *mockLoader) LoadLevel(_ context.Context, id int64) (*domain.Level, error) {
	return m.levels[id], nil
}

func (m *mockLoader) LoadPass(_ context.Context, id int64) (*domain.Pass, error) {
	return m.passes[id], nil
}

func fixtureLevel() *domain.Level {
	return &domain.Level{
		ID:     42,
		Song:   "Ghost (cut ver.)",
		Artist: "Camellia",
		Difficulty: domain.Difficulty{ID: 3, Name: "U14", SortOrder: 18.5},
		DiffID: 3,
		Credits: []domain.LevelCredit{
			{Name: "alice", Role: "charter", Aliases: []string{"al"}},
			{Name: "bob", Role: "vfxer"},
		},
		Tags:      []domain.Tag{{ID: 1, Name: "tech"}},
		Curation:  &domain.Curation{TypeName: "featured"},
		Clears:    7,
		UpdatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestProjectLevel(t *testing.T) {
	svc := New(&mockLoader{levels: map[int64]*domain.Level{42: fixtureLevel()}})

	doc, err := svc.ProjectLevel(context.Background(), 42)
	if err != nil {
		t.Fatalf("project: %v", err)
	}
	if doc == nil {
		t.Fatal("expected a document")
	}

	if textenc.FromSafe(doc.Song) != "Ghost (cut ver.)" {
		t.Errorf("song not safely encoded: %q", doc.Song)
	}
	if strings.ContainsAny(doc.Song, "()") {
		t.Errorf("encoded song still has specials: %q", doc.Song)
	}
	if !doc.IsCurated || doc.Clears != 7 {
		t.Errorf("derived fields wrong: curated=%v clears=%d", doc.IsCurated, doc.Clears)
	}

	wantPairs := []string{
		domain.CreditPair("charter", "alice"),
		domain.CreditPair("charter", "al"),
		domain.CreditPair("vfxer", "bob"),
	}
	if len(doc.CreditPairs) != len(wantPairs) {
		t.Fatalf("credit pairs: got %v", doc.CreditPairs)
	}
	for i, p := range wantPairs {
		if doc.CreditPairs[i] != p {
			t.Errorf("pair %d: want %q got %q", i, p, doc.CreditPairs[i])
		}
	}
}

func TestProjectLevelMissing(t *testing.T) {
	svc := New(&mockLoader{levels: map[int64]*domain.Level{}})
	doc, err := svc.ProjectLevel(context.Background(), 1)
	if err != nil {
		t.Fatalf("missing source must not be an error: %v", err)
	}
	if doc != nil {
		t.Fatal("missing source must project to nil")
	}
}

func TestProjectionIdempotent(t *testing.T) {
	svc := New(&mockLoader{levels: map[int64]*domain.Level{42: fixtureLevel()}})
	ctx := context.Background()

	a, err := svc.ProjectLevel(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := svc.ProjectLevel(ctx, 42)
	if err != nil {
		t.Fatal(err)
	}

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Fatalf("projection not idempotent:\n%s\n%s", ja, jb)
	}
}

func TestProjectPass(t *testing.T) {
	svc := New(&mockLoader{passes: map[int64]*domain.Pass{7: {
		ID: 7, LevelID: 42, PlayerID: 5,
		Player:     domain.Player{ID: 5, Name: "alice"},
		LevelSong:  "Ghost", LevelArtist: "Camellia",
		Speed:      1.2,
		UploadedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}}})

	doc, err := svc.ProjectPass(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if doc == nil || doc.LevelID != 42 || doc.Player != "alice" || doc.Speed != 1.2 {
		t.Fatalf("unexpected pass doc: %+v", doc)
	}
}
