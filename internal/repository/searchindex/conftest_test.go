package searchindex

import (
	"context"

	"github.com/T21C/tuf-backend-sub003/internal/db"
)

type mockStore struct {
	pingFn         func(ctx context.Context) error
	jsonSetFn      func(ctx context.Context, key string, data []byte) error
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	delFn          func(ctx context.Context, key string) error
	getFn          func(ctx context.Context, key string) ([]byte, error)
	setFn          func(ctx context.Context, key string, value []byte) error
	createIndexFn  func(ctx context.Context, def *db.IndexDefinition) error
	dropIndexFn    func(ctx context.Context, name string) error
	searchFn       func(ctx context.Context, q *db.PageQuery) (*db.SearchResult, error)
	countFn        func(ctx context.Context, index, query string) (int64, error)
	openCursorFn   func(ctx context.Context, q *db.CursorQuery) (db.Cursor, error)
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.pingFn == nil {
		return nil
	}
	return m.pingFn(ctx)
}

func (m *mockStore) JSONSet(ctx context.Context, key string, data []byte) error {
	return m.jsonSetFn(ctx, key, data)
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	return m.jsonSetMultiFn(ctx, items)
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	return m.delFn(ctx, key)
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	return m.getFn(ctx, key)
}

func (m *mockStore) Set(ctx context.Context, key string, value []byte) error {
	return m.setFn(ctx, key, value)
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	return m.createIndexFn(ctx, def)
}

func (m *mockStore) DropIndex(ctx context.Context, name string) error {
	return m.dropIndexFn(ctx, name)
}

func (m *mockStore) Search(ctx context.Context, q *db.PageQuery) (*db.SearchResult, error) {
	return m.searchFn(ctx, q)
}

func (m *mockStore) Count(ctx context.Context, index, query string) (int64, error) {
	return m.countFn(ctx, index, query)
}

func (m *mockStore) OpenCursor(ctx context.Context, q *db.CursorQuery) (db.Cursor, error) {
	return m.openCursorFn(ctx, q)
}

type mockCursor struct {
	nextFn  func(ctx context.Context) ([]db.SearchEntry, bool, error)
	closeFn func(ctx context.Context) error
}

func (m *mockCursor) Next(ctx context.Context) ([]db.SearchEntry, bool, error) {
	return m.nextFn(ctx)
}

func (m *mockCursor) Close(ctx context.Context) error {
	if m.closeFn == nil {
		return nil
	}
	return m.closeFn(ctx)
}
