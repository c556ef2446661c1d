package sync

import (
	"context"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

type mockProjector struct {
	projectLevelFn func(ctx context.Context, id int64) (*domain.LevelDoc, error)
	projectPassFn  func(ctx context.Context, id int64) (*domain.PassDoc, error)
}

func (m *mockProjector) ProjectLevel(ctx context.Context, id int64) (*domain.LevelDoc, error) {
	return m.projectLevelFn(ctx, id)
}

func (m *mockProjector) ProjectPass(ctx context.Context, id int64) (*domain.PassDoc, error) {
	return m.projectPassFn(ctx, id)
}

type mockIndexer struct {
	indexLevelFn func(ctx context.Context, doc *domain.LevelDoc) error
	indexPassFn  func(ctx context.Context, doc *domain.PassDoc) error
	deleteFn     func(ctx context.Context, family domain.Family, id int64) error
}

func (m *mockIndexer) IndexLevel(ctx context.Context, doc *domain.LevelDoc) error {
	return m.indexLevelFn(ctx, doc)
}

func (m *mockIndexer) IndexPass(ctx context.Context, doc *domain.PassDoc) error {
	return m.indexPassFn(ctx, doc)
}

func (m *mockIndexer) Delete(ctx context.Context, family domain.Family, id int64) error {
	return m.deleteFn(ctx, family, id)
}

type mockRecorder struct {
	outcomes []string
}

func (m *mockRecorder) SyncHandled(_ domain.Family, outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}
