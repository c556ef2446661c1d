// Package store is the relational source of truth. Every write method
// emits lifecycle events so the index stays in step; writes made through
// a Tx buffer their events and release them only on Commit.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Store wraps the relational database and the event listener registry.
type Store struct {
	db  *sql.DB
	log *zap.Logger

	mu        sync.RWMutex
	listeners []Listener
}

// Open connects to the database and bootstraps the schema.
func Open(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if strings.Contains(dsn, ":memory:") {
		// each pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the raw handle for read-only collaborators.
func (s *Store) DB() *sql.DB {
	return s.db
}

// querier is the common surface of *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// session binds a querier to an event sink. Store methods dispatch
// immediately; Tx methods queue until commit.
type session struct {
	q    querier
	emit func(ev Event)
}

func (s *Store) session(ctx context.Context) session {
	return session{
		q: s.db,
		emit: func(ev Event) {
			s.dispatch(ctx, []Event{ev})
		},
	}
}

// Begin starts a transaction whose write events are withheld until
// Commit. A rolled-back transaction leaves no trace in the index.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &Tx{tx: tx, store: s, ctx: ctx}, nil
}

// Tx is a store transaction with deferred event dispatch.
type Tx struct {
	tx      *sql.Tx
	store   *Store
	ctx     context.Context
	pending []Event
	done    bool
}

func (t *Tx) session() session {
	return session{
		q: t.tx,
		emit: func(ev Event) {
			t.pending = append(t.pending, ev)
		},
	}
}

// Commit commits the transaction and then, and only then, dispatches the
// buffered events in write order.
func (t *Tx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	t.store.dispatch(t.ctx, t.pending)
	t.pending = nil
	return nil
}

// Rollback aborts the transaction and discards all buffered events.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	t.pending = nil
	return t.tx.Rollback()
}

// captureIDs snapshots the primary keys matching a filter before a bulk
// update executes. The post-update event consumes this list, because the
// filter may stop matching once the update has run.
func captureIDs(ctx context.Context, q querier, table, where string, args ...any) ([]int64, error) {
	query := fmt.Sprintf("SELECT id FROM %s", table) //nolint:gosec // table names are compile-time constants
	if where != "" {
		query += " WHERE " + where
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("capture ids from %s: %w", table, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// buildSet renders a deterministic SET clause from a column/value map.
func buildSet(set map[string]any) (string, []any) {
	cols := make([]string, 0, len(set))
	for col := range set {
		cols = append(cols, col)
	}
	// map iteration order is random; sort for stable SQL
	sort.Strings(cols)
	parts := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, col+" = ?")
		args = append(args, set[col])
	}
	return strings.Join(parts, ", "), args
}
