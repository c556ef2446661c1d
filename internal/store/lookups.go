package store

import (
	"context"
	"fmt"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// SaveDifficulty upserts a difficulty row. Levels rated with it carry
// its name and sort order in their documents, so they all re-project.
func (s *Store) SaveDifficulty(ctx context.Context, d domain.Difficulty) error {
	sess := s.session(ctx)
	_, err := sess.q.ExecContext(ctx, `
		INSERT INTO difficulties (id, name, sort_order, type) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, sort_order = excluded.sort_order, type = excluded.type`,
		d.ID, d.Name, d.SortOrder, d.Type)
	if err != nil {
		return fmt.Errorf("save difficulty %d: %w", d.ID, err)
	}

	levelIDs, err := distinctInt64s(ctx, sess.q,
		"SELECT id FROM levels WHERE diff_id = ?", d.ID)
	if err != nil {
		return err
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpBulkUpdate, IDs: levelIDs})
	return nil
}

// SaveTagDef upserts a tag definition, rippling into levels that carry it.
func (s *Store) SaveTagDef(ctx context.Context, tag domain.Tag) error {
	sess := s.session(ctx)
	_, err := sess.q.ExecContext(ctx, `
		INSERT INTO tags (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`,
		tag.ID, tag.Name)
	if err != nil {
		return fmt.Errorf("save tag %d: %w", tag.ID, err)
	}

	levelIDs, err := distinctInt64s(ctx, sess.q,
		"SELECT level_id FROM level_tags WHERE tag_id = ?", tag.ID)
	if err != nil {
		return err
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpBulkUpdate, IDs: levelIDs})
	return nil
}

// SaveCreator upserts a creator and its alias list, rippling into every
// level crediting them.
func (s *Store) SaveCreator(ctx context.Context, id int64, name string, aliases []string) error {
	sess := s.session(ctx)
	_, err := sess.q.ExecContext(ctx, `
		INSERT INTO creators (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`, id, name)
	if err != nil {
		return fmt.Errorf("save creator %d: %w", id, err)
	}
	if _, err := sess.q.ExecContext(ctx,
		"DELETE FROM creator_aliases WHERE creator_id = ?", id); err != nil {
		return fmt.Errorf("reset creator aliases %d: %w", id, err)
	}
	for _, alias := range aliases {
		if _, err := sess.q.ExecContext(ctx,
			"INSERT INTO creator_aliases (creator_id, alias) VALUES (?, ?)", id, alias); err != nil {
			return fmt.Errorf("add creator alias %d: %w", id, err)
		}
	}

	levelIDs, err := distinctInt64s(ctx, sess.q,
		"SELECT DISTINCT level_id FROM level_credits WHERE creator_id = ?", id)
	if err != nil {
		return err
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpBulkUpdate, IDs: levelIDs})
	return nil
}
