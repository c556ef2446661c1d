// Package db defines the search engine access contracts and the FT index
// definition model. The redis subpackage implements them over rueidis.
package db

import (
	"context"
	"time"
)

// MaxResultWindow is the engine's native offset+limit ceiling for a plain
// FT.SEARCH page. Requests beyond it must go through a cursor.
const MaxResultWindow = 10000

// Store is the engine facade combining all sub-interfaces. Consumers
// depend on the narrow sub-interfaces, never on Store itself.
type Store interface {
	Pinger
	JSONStore
	KVStore
	IndexManager
	Searcher
	CursorSearcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONSetItem holds a single key+data pair for pipelined JSON.SET.
type JSONSetItem struct {
	Key  string
	Data []byte
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key string, data []byte) error
	JSONSetMulti(ctx context.Context, items []JSONSetItem) error
	JSONGet(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides plain key-value operations, used for the persisted
// mapping version of each index.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides offset-paged search over FT indexes.
type Searcher interface {
	Search(ctx context.Context, q *PageQuery) (*SearchResult, error)
	Count(ctx context.Context, index, query string) (int64, error)
}

// CursorSearcher opens server-side cursors for deep pagination.
type CursorSearcher interface {
	OpenCursor(ctx context.Context, q *CursorQuery) (Cursor, error)
}

// Cursor iterates a result set page by page. Close must be called on
// every path, success or failure.
type Cursor interface {
	// Next returns the next page and whether more pages remain.
	Next(ctx context.Context) (entries []SearchEntry, more bool, err error)
	Close(ctx context.Context) error
}
