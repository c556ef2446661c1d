package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
	searchuc "github.com/T21C/tuf-backend-sub003/internal/usecase/search"
)

type mockSearcher struct {
	searchFn func(ctx context.Context, req searchuc.Request) (domain.Page, error)
}

func (m *mockSearcher) Search(ctx context.Context, req searchuc.Request) (domain.Page, error) {
	return m.searchFn(ctx, req)
}

type mockReindexer struct {
	reindexFn func(ctx context.Context, family domain.Family, ids ...int64) error
	running   bool
}

func (m *mockReindexer) Reindex(ctx context.Context, family domain.Family, ids ...int64) error {
	return m.reindexFn(ctx, family, ids...)
}

func (m *mockReindexer) IsRunning(domain.Family) bool { return m.running }

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

func newTestRouter(s *Server) *chi.Mux {
	r := chi.NewRouter()
	s.Routes(r)
	return r
}

func TestSearchLevelsPassesParams(t *testing.T) {
	var got searchuc.Request
	srv := NewServer(&mockSearcher{
		searchFn: func(_ context.Context, req searchuc.Request) (domain.Page, error) {
			got = req
			return domain.Page{Total: 2, Levels: []domain.LevelDoc{{ID: 1}, {ID: 2}}}, nil
		},
	}, &mockReindexer{}, &mockPinger{}, zap.NewNop())

	req := httptest.NewRequest("GET",
		"/search/levels?q=song:abc&sort=clears&offset=10&limit=5&diff_min=12.5&curated=true", http.NoBody)
	req.Header.Set("X-Viewer-Id", "42")
	rr := httptest.NewRecorder()
	newTestRouter(srv).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if got.Family != domain.FamilyLevel || got.Query != "song:abc" || got.Sort != domain.SortClears {
		t.Errorf("request = %+v", got)
	}
	if got.Offset != 10 || got.Limit != 5 {
		t.Errorf("offset/limit = %d/%d", got.Offset, got.Limit)
	}
	if got.Viewer.PlayerID != 42 || got.Viewer.IsModerator {
		t.Errorf("viewer = %+v", got.Viewer)
	}
	if got.Filter.Level == nil || got.Filter.Level.DiffMin == nil || *got.Filter.Level.DiffMin != 12.5 {
		t.Errorf("filter = %+v", got.Filter.Level)
	}
	if got.Filter.Level.Curated == nil || !*got.Filter.Level.Curated {
		t.Errorf("curated filter = %+v", got.Filter.Level.Curated)
	}

	var resp struct {
		Total   int64             `json:"total"`
		Count   int               `json:"count"`
		Results []domain.LevelDoc `json:"results"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 || resp.Count != 2 || len(resp.Results) != 2 {
		t.Errorf("response = %+v", resp)
	}
}

func TestSearchPassesEmptyResultIsArray(t *testing.T) {
	srv := NewServer(&mockSearcher{
		searchFn: func(context.Context, searchuc.Request) (domain.Page, error) {
			return domain.Page{}, nil
		},
	}, &mockReindexer{}, &mockPinger{}, zap.NewNop())

	req := httptest.NewRequest("GET", "/search/passes", http.NoBody)
	rr := httptest.NewRecorder()
	newTestRouter(srv).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"results":[]`) {
		t.Errorf("body = %s, want an empty JSON array, not null", rr.Body.String())
	}
}

func TestSearchEngineFailureIs502(t *testing.T) {
	srv := NewServer(&mockSearcher{
		searchFn: func(context.Context, searchuc.Request) (domain.Page, error) {
			return domain.Page{}, errors.New("connection refused")
		},
	}, &mockReindexer{}, &mockPinger{}, zap.NewNop())

	req := httptest.NewRequest("GET", "/search/levels", http.NoBody)
	rr := httptest.NewRecorder()
	newTestRouter(srv).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rr.Code)
	}
}

func TestTriggerReindexAccepted(t *testing.T) {
	called := make(chan []int64, 1)
	srv := NewServer(&mockSearcher{}, &mockReindexer{
		reindexFn: func(_ context.Context, family domain.Family, ids ...int64) error {
			if family != domain.FamilyLevel {
				t.Errorf("family = %s", family)
			}
			called <- ids
			return nil
		},
	}, &mockPinger{}, zap.NewNop())

	req := httptest.NewRequest("POST", "/admin/reindex/levels",
		strings.NewReader(`{"ids":[3,8,12]}`))
	rr := httptest.NewRecorder()
	newTestRouter(srv).ServeHTTP(rr, req)

	if rr.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	select {
	case ids := <-called:
		if len(ids) != 3 || ids[0] != 3 {
			t.Errorf("ids = %v", ids)
		}
	case <-time.After(time.Second):
		t.Fatal("background reindex never started")
	}
}

func TestTriggerReindexConflictWhenRunning(t *testing.T) {
	srv := NewServer(&mockSearcher{}, &mockReindexer{running: true}, &mockPinger{}, zap.NewNop())

	req := httptest.NewRequest("POST", "/admin/reindex/passes", http.NoBody)
	rr := httptest.NewRecorder()
	newTestRouter(srv).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rr.Code)
	}
}

func TestTriggerReindexUnknownFamily(t *testing.T) {
	srv := NewServer(&mockSearcher{}, &mockReindexer{}, &mockPinger{}, zap.NewNop())

	req := httptest.NewRequest("POST", "/admin/reindex/songs", http.NoBody)
	rr := httptest.NewRecorder()
	newTestRouter(srv).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := NewServer(&mockSearcher{}, &mockReindexer{}, &mockPinger{}, zap.NewNop())
	req := httptest.NewRequest("GET", "/healthz", http.NoBody)
	rr := httptest.NewRecorder()
	newTestRouter(srv).ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}

	srv = NewServer(&mockSearcher{}, &mockReindexer{}, &mockPinger{err: errors.New("down")}, zap.NewNop())
	rr = httptest.NewRecorder()
	newTestRouter(srv).ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}
