package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// SavePass inserts or updates a pass. The owning level is re-projected
// too: its clear count and latest-clear fields derive from passes.
func (s *Store) SavePass(ctx context.Context, p *domain.Pass) error {
	return savePass(ctx, s.session(ctx), p)
}

// SavePass inserts or updates a pass inside the transaction.
func (t *Tx) SavePass(ctx context.Context, p *domain.Pass) error {
	return savePass(ctx, t.session(), p)
}

func savePass(ctx context.Context, sess session, p *domain.Pass) error {
	if p.UploadedAt.IsZero() {
		p.UploadedAt = time.Now().UTC()
	}
	res, err := sess.q.ExecContext(ctx, `
		INSERT INTO passes (id, level_id, player_id, speed, accuracy, score_v2,
			video_title, video_link, feeling_diff, is_12k, is_16k, is_no_hold,
			is_worlds_first, is_accepted, is_deleted, is_hidden, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			level_id = excluded.level_id, player_id = excluded.player_id,
			speed = excluded.speed, accuracy = excluded.accuracy,
			score_v2 = excluded.score_v2, video_title = excluded.video_title,
			video_link = excluded.video_link, feeling_diff = excluded.feeling_diff,
			is_12k = excluded.is_12k, is_16k = excluded.is_16k,
			is_no_hold = excluded.is_no_hold, is_worlds_first = excluded.is_worlds_first,
			is_accepted = excluded.is_accepted, is_deleted = excluded.is_deleted,
			is_hidden = excluded.is_hidden`,
		nullZeroID(p.ID), p.LevelID, p.PlayerID, p.Speed, p.Accuracy, p.ScoreV2,
		p.VideoTitle, p.VideoLink, p.FeelingDiff, p.Is12K, p.Is16K, p.IsNoHold,
		p.IsWorldsFirst, p.IsAccepted, p.IsDeleted, p.IsHidden,
		p.UploadedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save pass %d: %w", p.ID, err)
	}
	if p.ID == 0 {
		if p.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("pass insert id: %w", err)
		}
	}
	sess.emit(Event{Family: domain.FamilyPass, Op: OpSave, IDs: []int64{p.ID}})
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpSave, IDs: []int64{p.LevelID}})
	return nil
}

// UpdatePassesWhere applies a filtered bulk update to passes, with the
// same before-update id snapshot as UpdateLevelsWhere.
func (s *Store) UpdatePassesWhere(ctx context.Context, set map[string]any, where string, args ...any) (int64, error) {
	return updateWhere(ctx, s.session(ctx), s, "passes", domain.FamilyPass, set, where, args...)
}

// UpdatePassesWhere applies a filtered bulk update inside the transaction.
func (t *Tx) UpdatePassesWhere(ctx context.Context, set map[string]any, where string, args ...any) (int64, error) {
	return updateWhere(ctx, t.session(), t.store, "passes", domain.FamilyPass, set, where, args...)
}

// DestroyPasses hard-deletes pass rows; the owning levels re-project so
// their clear counts drop.
func (s *Store) DestroyPasses(ctx context.Context, ids []int64) error {
	return destroyPasses(ctx, s.session(ctx), ids)
}

// DestroyPasses hard-deletes pass rows inside the transaction.
func (t *Tx) DestroyPasses(ctx context.Context, ids []int64) error {
	return destroyPasses(ctx, t.session(), ids)
}

func destroyPasses(ctx context.Context, sess session, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	ph := placeholders(len(ids))
	args := int64Args(ids)

	levelIDs, err := distinctInt64s(ctx, sess.q,
		"SELECT DISTINCT level_id FROM passes WHERE id IN ("+ph+")", args...)
	if err != nil {
		return fmt.Errorf("destroy passes: %w", err)
	}

	if _, err := sess.q.ExecContext(ctx,
		"DELETE FROM passes WHERE id IN ("+ph+")", args...); err != nil {
		return fmt.Errorf("destroy passes: %w", err)
	}

	sess.emit(Event{Family: domain.FamilyPass, Op: OpBulkDestroy, IDs: ids, Removed: true})
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpBulkUpdate, IDs: levelIDs})
	return nil
}

// SavePlayer upserts a player row. Player changes ripple into every pass
// document of that player and into the clear counts of the levels they
// passed (a banned player's passes stop counting).
func (s *Store) SavePlayer(ctx context.Context, pl *domain.Player) error {
	sess := s.session(ctx)
	res, err := sess.q.ExecContext(ctx, `
		INSERT INTO players (id, name, country, is_banned) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, country = excluded.country, is_banned = excluded.is_banned`,
		nullZeroID(pl.ID), pl.Name, pl.Country, pl.IsBanned)
	if err != nil {
		return fmt.Errorf("save player %d: %w", pl.ID, err)
	}
	if pl.ID == 0 {
		if pl.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("player insert id: %w", err)
		}
	}

	passIDs, err := distinctInt64s(ctx, sess.q,
		"SELECT id FROM passes WHERE player_id = ?", pl.ID)
	if err != nil {
		return err
	}
	levelIDs, err := distinctInt64s(ctx, sess.q,
		"SELECT DISTINCT level_id FROM passes WHERE player_id = ?", pl.ID)
	if err != nil {
		return err
	}

	sess.emit(Event{Family: domain.FamilyPass, Op: OpBulkUpdate, IDs: passIDs})
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpBulkUpdate, IDs: levelIDs})
	return nil
}

// LoadPass hydrates a pass with its player and mirrored level columns.
// Returns (nil, nil) when the row does not exist.
func (s *Store) LoadPass(ctx context.Context, id int64) (*domain.Pass, error) {
	p := &domain.Pass{}
	var uploadedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.level_id, p.player_id, p.speed, p.accuracy, p.score_v2,
			p.video_title, p.video_link, p.feeling_diff,
			p.is_12k, p.is_16k, p.is_no_hold, p.is_worlds_first, p.is_accepted,
			p.is_deleted, p.is_hidden, p.uploaded_at,
			COALESCE(pl.name, ''), COALESCE(pl.country, ''), COALESCE(pl.is_banned, 0),
			COALESCE(l.song, ''), COALESCE(l.artist, ''), COALESCE(l.diff_id, 0)
		FROM passes p
		LEFT JOIN players pl ON pl.id = p.player_id
		LEFT JOIN levels l ON l.id = p.level_id
		WHERE p.id = ?`, id).Scan(
		&p.ID, &p.LevelID, &p.PlayerID, &p.Speed, &p.Accuracy, &p.ScoreV2,
		&p.VideoTitle, &p.VideoLink, &p.FeelingDiff,
		&p.Is12K, &p.Is16K, &p.IsNoHold, &p.IsWorldsFirst, &p.IsAccepted,
		&p.IsDeleted, &p.IsHidden, &uploadedAt,
		&p.Player.Name, &p.Player.Country, &p.Player.IsBanned,
		&p.LevelSong, &p.LevelArtist, &p.LevelDiffID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load pass %d: %w", id, err)
	}
	p.Player.ID = p.PlayerID
	p.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)
	return p, nil
}

// PassIDsAfter returns up to limit pass ids strictly greater than
// afterID, in ascending order.
func (s *Store) PassIDsAfter(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	return idsAfter(ctx, s.db, "passes", afterID, limit)
}

func distinctInt64s(ctx context.Context, q querier, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
