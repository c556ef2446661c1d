// Package chi exposes the search and admin HTTP surface.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
	searchuc "github.com/T21C/tuf-backend-sub003/internal/usecase/search"
)

// Searcher executes compiled search requests.
type Searcher interface {
	Search(ctx context.Context, req searchuc.Request) (domain.Page, error)
}

// Reindexer runs bulk index rebuilds.
type Reindexer interface {
	Reindex(ctx context.Context, family domain.Family, ids ...int64) error
	IsRunning(family domain.Family) bool
}

// Pinger checks engine liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the HTTP handlers.
type Server struct {
	search  Searcher
	reindex Reindexer
	engine  Pinger
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, reindex Reindexer, engine Pinger, logger *zap.Logger) *Server {
	return &Server{search: search, reindex: reindex, engine: engine, logger: logger}
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/healthz", s.Health)
	r.Get("/metrics", s.Metrics)
	r.Get("/search/levels", s.SearchLevels)
	r.Get("/search/passes", s.SearchPasses)
	r.Post("/admin/reindex/{family}", s.TriggerReindex)
}

// SearchLevels handles GET /search/levels.
func (s *Server) SearchLevels(w http.ResponseWriter, r *http.Request) {
	req := searchuc.Request{
		Family: domain.FamilyLevel,
		Query:  r.URL.Query().Get("q"),
		Sort:   domain.Sort(r.URL.Query().Get("sort")),
		Offset: queryInt(r, "offset"),
		Limit:  queryInt(r, "limit"),
		Viewer: viewerFrom(r),
		Filter: domain.Filter{Level: levelFilterFrom(r)},
	}
	s.runSearch(w, r, req, func(p domain.Page) any { return p.Levels })
}

// SearchPasses handles GET /search/passes.
func (s *Server) SearchPasses(w http.ResponseWriter, r *http.Request) {
	req := searchuc.Request{
		Family: domain.FamilyPass,
		Query:  r.URL.Query().Get("q"),
		Sort:   domain.Sort(r.URL.Query().Get("sort")),
		Offset: queryInt(r, "offset"),
		Limit:  queryInt(r, "limit"),
		Viewer: viewerFrom(r),
		Filter: domain.Filter{Pass: passFilterFrom(r)},
	}
	s.runSearch(w, r, req, func(p domain.Page) any { return p.Passes })
}

func (s *Server) runSearch(
	w http.ResponseWriter, r *http.Request,
	req searchuc.Request, results func(domain.Page) any,
) {
	page, err := s.search.Search(r.Context(), req)
	if err != nil {
		s.logger.Error("search request failed",
			zap.String("family", string(req.Family)), zap.Error(err))
		writeError(w, http.StatusBadGateway, "search engine unavailable")
		return
	}
	hits := results(page)
	if hits == nil {
		hits = []struct{}{}
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Total:   page.Total,
		Count:   page.Len(),
		Results: hits,
	})
}

// TriggerReindex handles POST /admin/reindex/{family}. The rebuild runs
// in the background; the request is acknowledged, not awaited.
func (s *Server) TriggerReindex(w http.ResponseWriter, r *http.Request) {
	family := domain.Family(chi.URLParam(r, "family"))
	if family != domain.FamilyLevel && family != domain.FamilyPass {
		writeError(w, http.StatusBadRequest, "unknown family")
		return
	}
	if s.reindex.IsRunning(family) {
		writeError(w, http.StatusConflict, "reindex already running")
		return
	}

	var body reindexRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	go func() {
		if err := s.reindex.Reindex(context.Background(), family, body.IDs...); err != nil {
			s.logger.Error("background reindex failed",
				zap.String("family", string(family)), zap.Error(err))
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
		"family": string(family),
	})
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "degraded",
			"engine": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type searchResponse struct {
	Total   int64 `json:"total"`
	Count   int   `json:"count"`
	Results any   `json:"results"`
}

type reindexRequest struct {
	IDs []int64 `json:"ids"`
}

// viewerFrom trusts gateway-set identity headers. Authentication itself
// happens upstream.
func viewerFrom(r *http.Request) domain.Viewer {
	v := domain.Viewer{}
	if id, err := strconv.ParseInt(r.Header.Get("X-Viewer-Id"), 10, 64); err == nil {
		v.PlayerID = id
	}
	v.IsModerator = r.Header.Get("X-Viewer-Mod") == "true"
	return v
}

func levelFilterFrom(r *http.Request) *domain.LevelFilter {
	f := &domain.LevelFilter{
		DiffMin: queryFloat(r, "diff_min"),
		DiffMax: queryFloat(r, "diff_max"),
		Curated: queryBool(r, "curated"),
		Tag:     r.URL.Query().Get("tag"),
	}
	if f.DiffMin == nil && f.DiffMax == nil && f.Curated == nil && f.Tag == "" {
		return nil
	}
	return f
}

func passFilterFrom(r *http.Request) *domain.PassFilter {
	f := &domain.PassFilter{
		LevelID:       int64(queryInt(r, "level_id")),
		PlayerID:      int64(queryInt(r, "player_id")),
		Is12K:         queryBool(r, "is_12k"),
		Is16K:         queryBool(r, "is_16k"),
		IsNoHold:      queryBool(r, "no_hold"),
		IsWorldsFirst: queryBool(r, "worlds_first"),
		MinAccuracy:   queryFloat(r, "min_acc"),
	}
	if f.LevelID == 0 && f.PlayerID == 0 && f.Is12K == nil && f.Is16K == nil &&
		f.IsNoHold == nil && f.IsWorldsFirst == nil && f.MinAccuracy == nil {
		return nil
	}
	return f
}

func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

func queryFloat(r *http.Request, name string) *float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(name), 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryBool(r *http.Request, name string) *bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return nil
	}
	return &v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
