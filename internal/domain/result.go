package domain

import "context"

// Page is one slice of search hits for a single family. Exactly one of
// Levels and Passes is populated, matching the request's family.
type Page struct {
	Total  int64
	Levels []LevelDoc
	Passes []PassDoc
}

// Len returns the number of hits in the page.
func (p Page) Len() int {
	return len(p.Levels) + len(p.Passes)
}

// PageCursor iterates a result set beyond the engine's offset window.
// Close must be called on every path.
type PageCursor interface {
	Next(ctx context.Context) (page Page, more bool, err error)
	Close(ctx context.Context) error
}
