package sync

import (
	"context"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// Projector builds index documents from committed source rows. A nil
// document with a nil error means the row is gone and there is nothing
// to index.
type Projector interface {
	ProjectLevel(ctx context.Context, id int64) (*domain.LevelDoc, error)
	ProjectPass(ctx context.Context, id int64) (*domain.PassDoc, error)
}

// Indexer is the index-side contract for single-document writes.
type Indexer interface {
	IndexLevel(ctx context.Context, doc *domain.LevelDoc) error
	IndexPass(ctx context.Context, doc *domain.PassDoc) error
	Delete(ctx context.Context, family domain.Family, id int64) error
}

// Recorder observes handled events for instrumentation.
type Recorder interface {
	SyncHandled(family domain.Family, outcome string)
}

// NopRecorder discards observations.
type NopRecorder struct{}

func (NopRecorder) SyncHandled(domain.Family, string) {}
