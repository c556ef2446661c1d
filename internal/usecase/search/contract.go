package search

import (
	"context"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// Repository is the index-side contract for query execution.
type Repository interface {
	Page(
		ctx context.Context, family domain.Family, query string,
		sort domain.Sort, offset, limit int,
	) (domain.Page, error)

	CountMatches(ctx context.Context, family domain.Family, query string) (int64, error)

	OpenCursor(
		ctx context.Context, family domain.Family, query string,
		sort domain.Sort, pageSize int,
	) (domain.PageCursor, error)
}

// Recorder observes served searches for instrumentation.
type Recorder interface {
	SearchServed(family domain.Family, strategy string)
}

// NopRecorder discards observations.
type NopRecorder struct{}

func (NopRecorder) SearchServed(domain.Family, string) {}
