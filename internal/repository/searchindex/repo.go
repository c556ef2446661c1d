// Package searchindex adapts the engine's db layer to the document
// operations the sync, reindex, and search services need.
package searchindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/T21C/tuf-backend-sub003/internal/db"
	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// store is the consumer interface over the engine.
type store interface {
	Ping(ctx context.Context) error
	JSONSet(ctx context.Context, key string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	Del(ctx context.Context, key string) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	Search(ctx context.Context, q *db.PageQuery) (*db.SearchResult, error)
	Count(ctx context.Context, index, query string) (int64, error)
	OpenCursor(ctx context.Context, q *db.CursorQuery) (db.Cursor, error)
}

// Repo implements the index-side contracts of the sync, reindex, and
// search usecases.
type Repo struct {
	store     store
	prefix    string
	batchSize int
}

// New creates a search index repository. batchSize bounds the size of a
// single pipelined bulk write.
func New(s store, prefix string, batchSize int) *Repo {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Repo{store: s, prefix: prefix, batchSize: batchSize}
}

// IndexLevel upserts one level document with forced visibility: RedisJSON
// indexes synchronously, and the follow-up ping surfaces engine failures
// before the caller assumes the write landed.
func (r *Repo) IndexLevel(ctx context.Context, doc *domain.LevelDoc) error {
	return r.indexOne(ctx, domain.FamilyLevel, doc.ID, doc)
}

// IndexPass upserts one pass document with forced visibility.
func (r *Repo) IndexPass(ctx context.Context, doc *domain.PassDoc) error {
	return r.indexOne(ctx, domain.FamilyPass, doc.ID, doc)
}

func (r *Repo) indexOne(ctx context.Context, family domain.Family, id int64, doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s %d: %w", family, id, err)
	}
	if err := r.store.JSONSet(ctx, r.docKey(family, id), data); err != nil {
		return fmt.Errorf("index %s %d: %w", family, id, err)
	}
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("flush after %s %d: %w", family, id, err)
	}
	return nil
}

// Delete removes one document. Deleting an absent document is a no-op.
func (r *Repo) Delete(ctx context.Context, family domain.Family, id int64) error {
	if err := r.store.Del(ctx, r.docKey(family, id)); err != nil {
		return fmt.Errorf("delete %s %d: %w", family, id, err)
	}
	return nil
}

// BulkIndexLevels writes a chunk of level documents in pipelined
// sub-batches without per-write visibility flushes.
func (r *Repo) BulkIndexLevels(ctx context.Context, docs []domain.LevelDoc) error {
	items := make([]db.JSONSetItem, 0, len(docs))
	for i := range docs {
		data, err := json.Marshal(&docs[i])
		if err != nil {
			return fmt.Errorf("marshal level %d: %w", docs[i].ID, err)
		}
		items = append(items, db.JSONSetItem{
			Key: r.docKey(domain.FamilyLevel, docs[i].ID), Data: data,
		})
	}
	return r.bulkWrite(ctx, items)
}

// BulkIndexPasses writes a chunk of pass documents in pipelined
// sub-batches.
func (r *Repo) BulkIndexPasses(ctx context.Context, docs []domain.PassDoc) error {
	items := make([]db.JSONSetItem, 0, len(docs))
	for i := range docs {
		data, err := json.Marshal(&docs[i])
		if err != nil {
			return fmt.Errorf("marshal pass %d: %w", docs[i].ID, err)
		}
		items = append(items, db.JSONSetItem{
			Key: r.docKey(domain.FamilyPass, docs[i].ID), Data: data,
		})
	}
	return r.bulkWrite(ctx, items)
}

// bulkWrite splits into sub-batches sized to the engine's payload
// limits. Throughput over immediacy: no flush between batches.
func (r *Repo) bulkWrite(ctx context.Context, items []db.JSONSetItem) error {
	for start := 0; start < len(items); start += r.batchSize {
		end := min(start+r.batchSize, len(items))
		if err := r.store.JSONSetMulti(ctx, items[start:end]); err != nil {
			return fmt.Errorf("bulk write [%d:%d]: %w", start, end, err)
		}
	}
	return nil
}

// CreateIndexIfMissing creates the family's FT index; an existing index
// is fine.
func (r *Repo) CreateIndexIfMissing(ctx context.Context, family domain.Family) error {
	def, err := r.indexDef(family)
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index for %s: %w", family, err)
	}
	return nil
}

// ResetIndex drops and recreates the family's FT index. Existing
// documents are re-indexed by the engine under the new schema as it
// scans the prefix, but a full reindex is still required to rebuild
// document bodies whose shape changed.
func (r *Repo) ResetIndex(ctx context.Context, family domain.Family) error {
	def, err := r.indexDef(family)
	if err != nil {
		return err
	}
	if err := r.store.DropIndex(ctx, r.indexName(family)); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("drop index for %s: %w", family, err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("recreate index for %s: %w", family, err)
	}
	return nil
}

// CurrentMappingVersion hashes the family's in-code index schema.
func (r *Repo) CurrentMappingVersion(family domain.Family) (string, error) {
	def, err := r.indexDef(family)
	if err != nil {
		return "", err
	}
	return def.MappingVersion(), nil
}

// StoredMappingVersion reads the schema hash the index was last built
// under. Empty means the index has never been built.
func (r *Repo) StoredMappingVersion(ctx context.Context, family domain.Family) (string, error) {
	data, err := r.store.Get(ctx, r.versionKey(family))
	if errors.Is(err, db.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read mapping version for %s: %w", family, err)
	}
	return string(data), nil
}

// StoreMappingVersion persists the current schema hash after a
// successful full build.
func (r *Repo) StoreMappingVersion(ctx context.Context, family domain.Family) error {
	ver, err := r.CurrentMappingVersion(family)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.versionKey(family), []byte(ver)); err != nil {
		return fmt.Errorf("store mapping version for %s: %w", family, err)
	}
	return nil
}
