package search

import (
	"context"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

type mockRepo struct {
	pageFn       func(ctx context.Context, family domain.Family, query string, sort domain.Sort, offset, limit int) (domain.Page, error)
	countFn      func(ctx context.Context, family domain.Family, query string) (int64, error)
	openCursorFn func(ctx context.Context, family domain.Family, query string, sort domain.Sort, pageSize int) (domain.PageCursor, error)
}

func (m *mockRepo) Page(
	ctx context.Context, family domain.Family, query string,
	sort domain.Sort, offset, limit int,
) (domain.Page, error) {
	return m.pageFn(ctx, family, query, sort, offset, limit)
}

func (m *mockRepo) CountMatches(ctx context.Context, family domain.Family, query string) (int64, error) {
	return m.countFn(ctx, family, query)
}

func (m *mockRepo) OpenCursor(
	ctx context.Context, family domain.Family, query string,
	sort domain.Sort, pageSize int,
) (domain.PageCursor, error) {
	return m.openCursorFn(ctx, family, query, sort, pageSize)
}

type mockPageCursor struct {
	nextFn  func(ctx context.Context) (domain.Page, bool, error)
	closeFn func(ctx context.Context) error
}

func (m *mockPageCursor) Next(ctx context.Context) (domain.Page, bool, error) {
	return m.nextFn(ctx)
}

func (m *mockPageCursor) Close(ctx context.Context) error {
	if m.closeFn == nil {
		return nil
	}
	return m.closeFn(ctx)
}

type recordedSearch struct {
	family   domain.Family
	strategy string
}

type mockRecorder struct {
	served []recordedSearch
}

func (m *mockRecorder) SearchServed(family domain.Family, strategy string) {
	m.served = append(m.served, recordedSearch{family, strategy})
}
