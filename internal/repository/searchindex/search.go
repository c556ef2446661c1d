package searchindex

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/T21C/tuf-backend-sub003/internal/db"
	"github.com/T21C/tuf-backend-sub003/internal/domain"
	"github.com/T21C/tuf-backend-sub003/internal/textenc"
)

// Page runs one offset-paged search and decodes the hits.
func (r *Repo) Page(
	ctx context.Context, family domain.Family, query string,
	sort domain.Sort, offset, limit int,
) (domain.Page, error) {
	res, err := r.store.Search(ctx, &db.PageQuery{
		Index:  r.indexName(family),
		Query:  query,
		Sort:   sortSpec(family, sort),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return domain.Page{}, fmt.Errorf("search %s: %w", family, err)
	}
	return decodePage(family, res.Total, res.Entries)
}

// CountMatches returns the total match count without fetching hits.
func (r *Repo) CountMatches(ctx context.Context, family domain.Family, query string) (int64, error) {
	n, err := r.store.Count(ctx, r.indexName(family), query)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", family, err)
	}
	return n, nil
}

// OpenCursor starts a deep-pagination walk over the result set.
func (r *Repo) OpenCursor(
	ctx context.Context, family domain.Family, query string,
	sort domain.Sort, pageSize int,
) (domain.PageCursor, error) {
	cur, err := r.store.OpenCursor(ctx, &db.CursorQuery{
		Index:    r.indexName(family),
		Query:    query,
		Sort:     sortSpec(family, sort),
		PageSize: pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("open cursor on %s: %w", family, err)
	}
	return &pageCursor{inner: cur, family: family}, nil
}

// pageCursor adapts a db.Cursor to decoded domain pages.
type pageCursor struct {
	inner  db.Cursor
	family domain.Family
}

func (c *pageCursor) Next(ctx context.Context) (domain.Page, bool, error) {
	entries, more, err := c.inner.Next(ctx)
	if err != nil {
		return domain.Page{}, false, err
	}
	page, err := decodePage(c.family, int64(len(entries)), entries)
	if err != nil {
		return domain.Page{}, false, err
	}
	return page, more, nil
}

func (c *pageCursor) Close(ctx context.Context) error {
	return c.inner.Close(ctx)
}

// sortSpec maps a requested order to a sortable index attribute. Random
// order never reaches the engine as a sort.
func sortSpec(family domain.Family, sort domain.Sort) *db.SortSpec {
	switch sort {
	case domain.SortRecent:
		return &db.SortSpec{Field: "id", Desc: true}
	case domain.SortDiffAsc, domain.SortDiffDesc:
		desc := sort == domain.SortDiffDesc
		if family == domain.FamilyPass {
			return &db.SortSpec{Field: "scoreV2", Desc: desc}
		}
		return &db.SortSpec{Field: "diffSort", Desc: desc}
	case domain.SortClears:
		if family == domain.FamilyPass {
			return &db.SortSpec{Field: "accuracy", Desc: true}
		}
		return &db.SortSpec{Field: "clears", Desc: true}
	default:
		return &db.SortSpec{Field: "id", Desc: true}
	}
}

func decodePage(family domain.Family, total int64, entries []db.SearchEntry) (domain.Page, error) {
	page := domain.Page{Total: total}
	for _, e := range entries {
		if len(e.JSON) == 0 {
			continue
		}
		switch family {
		case domain.FamilyLevel:
			var doc domain.LevelDoc
			if err := json.Unmarshal(e.JSON, &doc); err != nil {
				return domain.Page{}, fmt.Errorf("decode level hit %s: %w", e.Key, err)
			}
			decodeLevelDoc(&doc)
			page.Levels = append(page.Levels, doc)
		case domain.FamilyPass:
			var doc domain.PassDoc
			if err := json.Unmarshal(e.JSON, &doc); err != nil {
				return domain.Page{}, fmt.Errorf("decode pass hit %s: %w", e.Key, err)
			}
			decodePassDoc(&doc)
			page.Passes = append(page.Passes, doc)
		}
	}
	return page, nil
}

// decodeLevelDoc reverses textenc on every designated field before the
// document leaves the repository. Pair tags are an index-internal detail
// and are stripped.
func decodeLevelDoc(doc *domain.LevelDoc) {
	doc.Song = textenc.FromSafe(doc.Song)
	doc.Artist = textenc.FromSafe(doc.Artist)
	doc.Creator = textenc.FromSafe(doc.Creator)
	doc.Team = textenc.FromSafe(doc.Team)
	doc.DiffName = textenc.FromSafe(doc.DiffName)
	doc.DLLink = textenc.FromSafe(doc.DLLink)
	doc.WorkshopLink = textenc.FromSafe(doc.WorkshopLink)
	doc.VideoLink = textenc.FromSafe(doc.VideoLink)
	doc.CurationType = textenc.FromSafe(doc.CurationType)
	for i := range doc.Aliases {
		doc.Aliases[i].Alias = textenc.FromSafe(doc.Aliases[i].Alias)
	}
	for i := range doc.Credits {
		doc.Credits[i].Name = textenc.FromSafe(doc.Credits[i].Name)
		for j := range doc.Credits[i].Aliases {
			doc.Credits[i].Aliases[j] = textenc.FromSafe(doc.Credits[i].Aliases[j])
		}
	}
	for i := range doc.Tags {
		doc.Tags[i].Name = textenc.FromSafe(doc.Tags[i].Name)
	}
	if doc.LatestClear != nil {
		doc.LatestClear.Player = textenc.FromSafe(doc.LatestClear.Player)
	}
	doc.CreditPairs = nil
}

func decodePassDoc(doc *domain.PassDoc) {
	doc.Player = textenc.FromSafe(doc.Player)
	doc.Song = textenc.FromSafe(doc.Song)
	doc.Artist = textenc.FromSafe(doc.Artist)
	doc.VideoTitle = textenc.FromSafe(doc.VideoTitle)
	doc.VideoLink = textenc.FromSafe(doc.VideoLink)
}
