package reindex

import (
	"context"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// Source pages the relational store by primary key.
type Source interface {
	LevelIDsAfter(ctx context.Context, afterID int64, limit int) ([]int64, error)
	PassIDsAfter(ctx context.Context, afterID int64, limit int) ([]int64, error)
}

// Projector builds index documents from source rows.
type Projector interface {
	ProjectLevel(ctx context.Context, id int64) (*domain.LevelDoc, error)
	ProjectPass(ctx context.Context, id int64) (*domain.PassDoc, error)
}

// Indexer is the index-side contract for bulk writes and index
// lifecycle.
type Indexer interface {
	BulkIndexLevels(ctx context.Context, docs []domain.LevelDoc) error
	BulkIndexPasses(ctx context.Context, docs []domain.PassDoc) error
	Delete(ctx context.Context, family domain.Family, id int64) error

	CreateIndexIfMissing(ctx context.Context, family domain.Family) error
	ResetIndex(ctx context.Context, family domain.Family) error
	CurrentMappingVersion(family domain.Family) (string, error)
	StoredMappingVersion(ctx context.Context, family domain.Family) (string, error)
	StoreMappingVersion(ctx context.Context, family domain.Family) error
}

// Recorder observes reindex progress for instrumentation.
type Recorder interface {
	ReindexRunning(family domain.Family, running bool)
	ReindexedDocs(family domain.Family, n int)
}

// NopRecorder discards observations.
type NopRecorder struct{}

func (NopRecorder) ReindexRunning(domain.Family, bool) {}
func (NopRecorder) ReindexedDocs(domain.Family, int)   {}
