// Package reindex rebuilds index documents in bulk: first-run builds,
// mapping changes, and operator-triggered repair of known-divergent ids.
package reindex

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

const defaultChunkSize = 2000

// Service walks the store in keyset chunks and bulk-writes projected
// documents, overlapping the index write of one chunk with the
// preparation of the next.
type Service struct {
	src  Source
	proj Projector
	idx  Indexer
	rec  Recorder
	log  *zap.Logger

	chunkSize int

	mu      sync.Mutex
	running map[domain.Family]bool
}

// New creates a reindex service. chunkSize bounds peak memory per
// in-flight chunk; zero selects the default.
func New(src Source, proj Projector, idx Indexer, rec Recorder, log *zap.Logger, chunkSize int) *Service {
	if rec == nil {
		rec = NopRecorder{}
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Service{
		src:       src,
		proj:      proj,
		idx:       idx,
		rec:       rec,
		log:       log,
		chunkSize: chunkSize,
		running:   make(map[domain.Family]bool),
	}
}

// Reindex rebuilds the documents for the given ids, or the whole family
// when ids is empty. A second run for a family already being rebuilt is
// rejected, not queued. A chunk failure aborts and propagates;
// completed chunks remain valid, a rerun re-projects from scratch.
func (s *Service) Reindex(ctx context.Context, family domain.Family, ids ...int64) error {
	if family != domain.FamilyLevel && family != domain.FamilyPass {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFamily, family)
	}
	if !s.acquire(family) {
		return fmt.Errorf("%w: %s", domain.ErrReindexRunning, family)
	}
	defer s.release(family)

	jobID := uuid.NewString()
	log := s.log.With(
		zap.String("job_id", jobID),
		zap.String("family", string(family)))

	if len(ids) > 0 {
		log.Info("reindex repair started", zap.Int("ids", len(ids)))
		n, err := s.repair(ctx, family, ids)
		if err != nil {
			log.Error("reindex repair failed", zap.Error(err))
			return err
		}
		log.Info("reindex repair finished", zap.Int("documents", n))
		return nil
	}

	log.Info("full reindex started")
	n, err := s.rebuild(ctx, family)
	if err != nil {
		log.Error("full reindex failed", zap.Error(err))
		return err
	}
	if err := s.idx.StoreMappingVersion(ctx, family); err != nil {
		return fmt.Errorf("store mapping version: %w", err)
	}
	log.Info("full reindex finished", zap.Int("documents", n))
	return nil
}

// EnsureIndexes prepares both family indexes at startup. A missing or
// stale mapping version forces a full rebuild before reads are served.
func (s *Service) EnsureIndexes(ctx context.Context) error {
	for _, family := range []domain.Family{domain.FamilyLevel, domain.FamilyPass} {
		if err := s.ensureIndex(ctx, family); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ensureIndex(ctx context.Context, family domain.Family) error {
	if err := s.idx.CreateIndexIfMissing(ctx, family); err != nil {
		return err
	}
	current, err := s.idx.CurrentMappingVersion(family)
	if err != nil {
		return err
	}
	stored, err := s.idx.StoredMappingVersion(ctx, family)
	if err != nil {
		return err
	}
	if stored == current {
		return nil
	}

	s.log.Info("index mapping out of date, rebuilding",
		zap.String("family", string(family)),
		zap.String("stored", stored),
		zap.String("current", current))
	if stored != "" {
		if err := s.idx.ResetIndex(ctx, family); err != nil {
			return err
		}
	}
	return s.Reindex(ctx, family)
}

// rebuild walks the whole family. The index write of the current chunk
// runs concurrently with the fetch and projection of the next.
func (s *Service) rebuild(ctx context.Context, family domain.Family) (int, error) {
	cur, err := s.prepare(ctx, family, 0)
	if err != nil {
		return 0, err
	}

	total := 0
	for cur != nil {
		var next *chunk
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.writeChunk(gctx, family, cur)
		})
		g.Go(func() error {
			var perr error
			next, perr = s.prepare(gctx, family, cur.lastID)
			return perr
		})
		if err := g.Wait(); err != nil {
			return total, err
		}
		total += cur.len()
		s.rec.ReindexedDocs(family, cur.len())
		cur = next
	}
	return total, nil
}

// repair re-projects an explicit id set. Ids whose source row is gone
// have their stale documents deleted.
func (s *Service) repair(ctx context.Context, family domain.Family, ids []int64) (int, error) {
	for start := 0; start < len(ids); start += s.chunkSize {
		end := min(start+s.chunkSize, len(ids))
		c, err := s.project(ctx, family, ids[start:end], true)
		if err != nil {
			return 0, err
		}
		if err := s.writeChunk(ctx, family, c); err != nil {
			return 0, err
		}
		s.rec.ReindexedDocs(family, c.len())
	}
	return len(ids), nil
}

// chunk is one prepared unit of work: projected documents plus the
// keyset position to continue from.
type chunk struct {
	levels []domain.LevelDoc
	passes []domain.PassDoc
	lastID int64
}

func (c *chunk) len() int { return len(c.levels) + len(c.passes) }

// prepare fetches the next keyset page and projects it. Returns nil
// when the walk is complete.
func (s *Service) prepare(ctx context.Context, family domain.Family, afterID int64) (*chunk, error) {
	var ids []int64
	var err error
	switch family {
	case domain.FamilyLevel:
		ids, err = s.src.LevelIDsAfter(ctx, afterID, s.chunkSize)
	case domain.FamilyPass:
		ids, err = s.src.PassIDsAfter(ctx, afterID, s.chunkSize)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch ids after %d: %w", afterID, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.project(ctx, family, ids, false)
}

func (s *Service) project(ctx context.Context, family domain.Family, ids []int64, deleteMissing bool) (*chunk, error) {
	c := &chunk{lastID: ids[len(ids)-1]}
	for _, id := range ids {
		switch family {
		case domain.FamilyLevel:
			doc, err := s.proj.ProjectLevel(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("project level %d: %w", id, err)
			}
			if doc == nil {
				if err := s.deleteMissing(ctx, family, id, deleteMissing); err != nil {
					return nil, err
				}
				continue
			}
			c.levels = append(c.levels, *doc)
		case domain.FamilyPass:
			doc, err := s.proj.ProjectPass(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("project pass %d: %w", id, err)
			}
			if doc == nil {
				if err := s.deleteMissing(ctx, family, id, deleteMissing); err != nil {
					return nil, err
				}
				continue
			}
			c.passes = append(c.passes, *doc)
		}
	}
	return c, nil
}

// deleteMissing removes a stale document during explicit-id repair.
// During a full walk a vanished row is simply skipped.
func (s *Service) deleteMissing(ctx context.Context, family domain.Family, id int64, repair bool) error {
	if !repair {
		return nil
	}
	if err := s.idx.Delete(ctx, family, id); err != nil {
		return fmt.Errorf("delete stale %s %d: %w", family, id, err)
	}
	return nil
}

func (s *Service) writeChunk(ctx context.Context, family domain.Family, c *chunk) error {
	if len(c.levels) > 0 {
		if err := s.idx.BulkIndexLevels(ctx, c.levels); err != nil {
			return fmt.Errorf("bulk index levels: %w", err)
		}
	}
	if len(c.passes) > 0 {
		if err := s.idx.BulkIndexPasses(ctx, c.passes); err != nil {
			return fmt.Errorf("bulk index passes: %w", err)
		}
	}
	return nil
}

// IsRunning reports whether a rebuild for the family is in flight.
func (s *Service) IsRunning(family domain.Family) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running[family]
}

func (s *Service) acquire(family domain.Family) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[family] {
		return false
	}
	s.running[family] = true
	s.rec.ReindexRunning(family, true)
	return true
}

func (s *Service) release(family domain.Family) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[family] = false
	s.rec.ReindexRunning(family, false)
}
