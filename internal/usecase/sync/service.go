// Package sync keeps the index aligned with committed store writes. It
// subscribes to the store's write lifecycle and re-projects every
// affected document with per-document write latency, not throughput, as
// the goal.
package sync

import (
	"context"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
	"github.com/T21C/tuf-backend-sub003/internal/store"
)

const defaultTimeout = 10 * time.Second

// Outcome labels reported to the Recorder.
const (
	outcomeIndexed = "indexed"
	outcomeDeleted = "deleted"
	outcomeFailed  = "failed"
)

// Service consumes store events and applies them to the index one
// document at a time.
type Service struct {
	proj    Projector
	idx     Indexer
	rec     Recorder
	log     *zap.Logger
	timeout time.Duration

	locks keyedLocks
}

// New creates a sync service. timeout bounds the index write for one
// event id; zero selects the default.
func New(proj Projector, idx Indexer, rec Recorder, log *zap.Logger, timeout time.Duration) *Service {
	if rec == nil {
		rec = NopRecorder{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Service{proj: proj, idx: idx, rec: rec, log: log, timeout: timeout}
}

// Listen registers the service on the store's write lifecycle.
func (s *Service) Listen(st *store.Store) {
	st.Subscribe(s.HandleEvent)
}

// HandleEvent applies one committed write to the index. Failures are
// logged and skipped: the next write to the same id self-heals, and a
// failed index write must never surface into the store's write path.
func (s *Service) HandleEvent(ctx context.Context, ev store.Event) {
	// The event fires inside the caller's request lifetime; the index
	// write must survive that request ending.
	ctx = context.WithoutCancel(ctx)

	for _, id := range ev.IDs {
		s.handleOne(ctx, ev, id)
	}
}

func (s *Service) handleOne(ctx context.Context, ev store.Event, id int64) {
	unlock := s.locks.lock(string(ev.Family), id)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var err error
	outcome := outcomeIndexed
	if ev.Removed {
		err = s.idx.Delete(ctx, ev.Family, id)
		outcome = outcomeDeleted
	} else {
		outcome, err = s.reproject(ctx, ev.Family, id)
	}

	if err != nil {
		s.rec.SyncHandled(ev.Family, outcomeFailed)
		s.log.Error("sync index write failed",
			zap.String("family", string(ev.Family)),
			zap.String("op", string(ev.Op)),
			zap.Int64("id", id),
			zap.Error(err))
		return
	}
	s.rec.SyncHandled(ev.Family, outcome)
}

// reproject rebuilds one document. A projection that finds no source
// row deletes the stale document instead.
func (s *Service) reproject(ctx context.Context, family domain.Family, id int64) (string, error) {
	switch family {
	case domain.FamilyLevel:
		doc, err := s.proj.ProjectLevel(ctx, id)
		if err != nil {
			return "", err
		}
		if doc == nil {
			return outcomeDeleted, s.idx.Delete(ctx, family, id)
		}
		return outcomeIndexed, s.idx.IndexLevel(ctx, doc)
	case domain.FamilyPass:
		doc, err := s.proj.ProjectPass(ctx, id)
		if err != nil {
			return "", err
		}
		if doc == nil {
			return outcomeDeleted, s.idx.Delete(ctx, family, id)
		}
		return outcomeIndexed, s.idx.IndexPass(ctx, doc)
	default:
		return "", domain.ErrUnknownFamily
	}
}

// keyedLocks serializes index writes per document so concurrent events
// for one id land in the order their transactions committed.
type keyedLocks struct {
	mu      gosync.Mutex
	entries map[lockKey]*lockEntry
}

type lockKey struct {
	family string
	id     int64
}

type lockEntry struct {
	mu   gosync.Mutex
	refs int
}

func (k *keyedLocks) lock(family string, id int64) (unlock func()) {
	key := lockKey{family, id}

	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[lockKey]*lockEntry)
	}
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
