package project

import (
	"context"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// SourceLoader hydrates source records with every relation a document
// needs. A missing record returns (nil, nil).
type SourceLoader interface {
	LoadLevel(ctx context.Context, id int64) (*domain.Level, error)
	LoadPass(ctx context.Context, id int64) (*domain.Pass, error)
}
