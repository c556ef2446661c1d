package reindex

import (
	"context"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

type mockSource struct {
	levelIDsFn func(ctx context.Context, afterID int64, limit int) ([]int64, error)
	passIDsFn  func(ctx context.Context, afterID int64, limit int) ([]int64, error)
}

func (m *mockSource) LevelIDsAfter(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	return m.levelIDsFn(ctx, afterID, limit)
}

func (m *mockSource) PassIDsAfter(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	return m.passIDsFn(ctx, afterID, limit)
}

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
	bulkLevelsFn   func(ctx context.Context, docs []domain.LevelDoc) error
	bulkPassesFn   func(ctx context.Context, docs []domain.PassDoc) error
	deleteFn       func(ctx context.Context, family domain.Family, id int64) error
	createFn       func(ctx context.Context, family domain.Family) error
	resetFn        func(ctx context.Context, family domain.Family) error
	currentVerFn   func(family domain.Family) (string, error)
	storedVerFn    func(ctx context.Context, family domain.Family) (string, error)
	storeVersionFn func(ctx context.Context, family domain.Family) error
}

func (m *mockIndexer) BulkIndexLevels(ctx context.Context, docs []domain.LevelDoc) error {
	return m.bulkLevelsFn(ctx, docs)
}

func (m *mockIndexer) BulkIndexPasses(ctx context.Context, docs []domain.PassDoc) error {
	return m.bulkPassesFn(ctx, docs)
}

func (m *mockIndexer) Delete(ctx context.Context, family domain.Family, id int64) error {
	return m.deleteFn(ctx, family, id)
}

func (m *mockIndexer) CreateIndexIfMissing(ctx context.Context, family domain.Family) error {
	return m.createFn(ctx, family)
}

func (m *mockIndexer) ResetIndex(ctx context.Context, family domain.Family) error {
	return m.resetFn(ctx, family)
}

func (m *mockIndexer) CurrentMappingVersion(family domain.Family) (string, error) {
	return m.currentVerFn(family)
}

func (m *mockIndexer) StoredMappingVersion(ctx context.Context, family domain.Family) (string, error) {
	return m.storedVerFn(ctx, family)
}

func (m *mockIndexer) StoreMappingVersion(ctx context.Context, family domain.Family) error {
	return m.storeVersionFn(ctx, family)
}

type mockRecorder struct {
	docs    int
	running []bool
}

func (m *mockRecorder) ReindexRunning(_ domain.Family, running bool) {
	m.running = append(m.running, running)
}

func (m *mockRecorder) ReindexedDocs(_ domain.Family, n int) {
	m.docs += n
}
