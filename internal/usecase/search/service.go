// Package search parses, compiles, and executes index queries.
package search

import (
	"context"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/T21C/tuf-backend-sub003/internal/db"
	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

const (
	defaultLimit = 25
	maxLimit     = 100
	maxOffset    = 1<<31 - 1

	defaultCursorPageSize = 1000
)

// Strategy names reported to the Recorder.
const (
	strategyOffset = "offset"
	strategyCursor = "cursor"
	strategySample = "sample"
)

// Request is one search call. Offset and Limit are clamped, not
// validated: out-of-range values narrow to the nearest safe bound.
type Request struct {
	Family domain.Family
	Query  string
	Filter domain.Filter
	Sort   domain.Sort
	Offset int
	Limit  int
	Viewer domain.Viewer
}

// Service executes searches, switching between offset paging, cursor
// iteration beyond the engine's result window, and uniform random
// sampling.
type Service struct {
	repo           Repository
	rec            Recorder
	log            *zap.Logger
	cursorPageSize int

	// randN is swapped in tests for deterministic sampling.
	randN func(n int64) int64
}

// New creates a search service. cursorPageSize sizes each cursor
// advance; zero selects the default.
func New(repo Repository, rec Recorder, log *zap.Logger, cursorPageSize int) *Service {
	if rec == nil {
		rec = NopRecorder{}
	}
	if cursorPageSize <= 0 {
		cursorPageSize = defaultCursorPageSize
	}
	return &Service{
		repo:           repo,
		rec:            rec,
		log:            log,
		cursorPageSize: cursorPageSize,
		randN:          rand.Int63n,
	}
}

// Search compiles and runs one query. Malformed query input never
// errors: it narrows the result set instead.
func (s *Service) Search(ctx context.Context, req Request) (domain.Page, error) {
	offset, limit := clamp(req.Offset, req.Limit)
	sort := req.Sort
	if !sort.Valid() {
		sort = domain.SortRecent
	}

	compiled, err := Compile(req.Family, Parse(req.Query), req.Filter, req.Viewer)
	if err != nil {
		return domain.Page{}, err
	}

	switch {
	case sort == domain.SortRandom:
		s.rec.SearchServed(req.Family, strategySample)
		return s.sample(ctx, req.Family, compiled, limit)
	case offset+limit <= db.MaxResultWindow:
		s.rec.SearchServed(req.Family, strategyOffset)
		return s.repo.Page(ctx, req.Family, compiled, sort, offset, limit)
	default:
		s.rec.SearchServed(req.Family, strategyCursor)
		return s.cursorWalk(ctx, req.Family, compiled, sort, offset, limit)
	}
}

// cursorWalk iterates the result set in fixed-size pages until the
// requested slice is covered. A page budget bounds the walk so a
// degenerate request terminates.
func (s *Service) cursorWalk(
	ctx context.Context, family domain.Family, query string,
	sort domain.Sort, offset, limit int,
) (domain.Page, error) {
	total, err := s.repo.CountMatches(ctx, family, query)
	if err != nil {
		return domain.Page{}, err
	}

	out := domain.Page{Total: total}
	if int64(offset) >= total {
		return out, nil
	}

	cur, err := s.repo.OpenCursor(ctx, family, query, sort, s.cursorPageSize)
	if err != nil {
		return domain.Page{}, err
	}
	defer func() {
		if cerr := cur.Close(ctx); cerr != nil {
			s.log.Warn("close search cursor",
				zap.String("family", string(family)), zap.Error(cerr))
		}
	}()

	budget := (offset+limit+s.cursorPageSize-1)/s.cursorPageSize + 1
	seen := 0
	for page := 0; page < budget; page++ {
		p, more, err := cur.Next(ctx)
		if err != nil {
			return domain.Page{}, fmt.Errorf("cursor page %d: %w", page, err)
		}
		seen = appendSlice(&out, p, seen, offset, limit)
		if out.Len() >= limit || !more {
			break
		}
	}
	return out, nil
}

// appendSlice copies the hits of p that fall inside [offset,
// offset+limit) into out, given that seen hits were already consumed.
// Returns the updated consumed count.
func appendSlice(out *domain.Page, p domain.Page, seen, offset, limit int) int {
	for i := range p.Levels {
		if seen >= offset && len(out.Levels) < limit {
			out.Levels = append(out.Levels, p.Levels[i])
		}
		seen++
	}
	for i := range p.Passes {
		if seen >= offset && len(out.Passes) < limit {
			out.Passes = append(out.Passes, p.Passes[i])
		}
		seen++
	}
	return seen
}

// sample returns limit uniformly random matches: count the matches,
// draw distinct offsets, fetch one hit per offset. Unbiased, at the
// cost of one round trip per hit; limit is small.
func (s *Service) sample(
	ctx context.Context, family domain.Family, query string, limit int,
) (domain.Page, error) {
	total, err := s.repo.CountMatches(ctx, family, query)
	if err != nil {
		return domain.Page{}, err
	}
	out := domain.Page{Total: total}
	if total == 0 {
		return out, nil
	}

	n := int64(limit)
	if total < n {
		n = total
	}
	for _, off := range s.distinctOffsets(n, total) {
		p, err := s.repo.Page(ctx, family, query, domain.SortRecent, int(off), 1)
		if err != nil {
			return domain.Page{}, fmt.Errorf("sample at offset %d: %w", off, err)
		}
		out.Levels = append(out.Levels, p.Levels...)
		out.Passes = append(out.Passes, p.Passes...)
	}
	return out, nil
}

func (s *Service) distinctOffsets(n, total int64) []int64 {
	drawn := make(map[int64]struct{}, n)
	out := make([]int64, 0, n)
	for int64(len(out)) < n {
		off := s.randN(total)
		if _, dup := drawn[off]; dup {
			continue
		}
		drawn[off] = struct{}{}
		out = append(out, off)
	}
	return out
}

func clamp(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return offset, limit
}
