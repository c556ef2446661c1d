package store

import (
	"context"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// Op names a write-lifecycle operation.
type Op string

const (
	// OpSave is a single-row insert or update.
	OpSave Op = "save"
	// OpBulkUpdate is a filtered multi-row update.
	OpBulkUpdate Op = "bulk-update"
	// OpBulkCreate is a multi-row insert.
	OpBulkCreate Op = "bulk-create"
	// OpBulkDestroy is a multi-row delete.
	OpBulkDestroy Op = "bulk-destroy"
)

// Event describes one committed write and the documents it touches.
// Removed means the listed ids no longer exist and their documents must
// be deleted rather than re-projected.
type Event struct {
	Family  domain.Family
	Op      Op
	IDs     []int64
	Removed bool
}

// Listener receives events strictly after the owning transaction has
// committed. Writes outside a transaction dispatch immediately.
type Listener func(ctx context.Context, ev Event)

// Subscribe registers a listener for all future events.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) dispatch(ctx context.Context, events []Event) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, ev := range events {
		if len(ev.IDs) == 0 {
			continue
		}
		for _, l := range listeners {
			l(ctx, ev)
		}
	}
}
