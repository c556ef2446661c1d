package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// SaveLevel inserts or updates a single level row.
func (s *Store) SaveLevel(ctx context.Context, lvl *domain.Level) error {
	return saveLevel(ctx, s.session(ctx), lvl)
}

// SaveLevel inserts or updates a single level row inside the transaction.
func (t *Tx) SaveLevel(ctx context.Context, lvl *domain.Level) error {
	return saveLevel(ctx, t.session(), lvl)
}

func saveLevel(ctx context.Context, sess session, lvl *domain.Level) error {
	lvl.UpdatedAt = time.Now().UTC()
	if lvl.CreatedAt.IsZero() {
		lvl.CreatedAt = lvl.UpdatedAt
	}
	res, err := sess.q.ExecContext(ctx, `
		INSERT INTO levels (id, song, artist, creator, team, diff_id, base_score,
			dl_link, workshop_link, video_link, is_deleted, is_hidden, is_announced,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			song = excluded.song, artist = excluded.artist, creator = excluded.creator,
			team = excluded.team, diff_id = excluded.diff_id, base_score = excluded.base_score,
			dl_link = excluded.dl_link, workshop_link = excluded.workshop_link,
			video_link = excluded.video_link, is_deleted = excluded.is_deleted,
			is_hidden = excluded.is_hidden, is_announced = excluded.is_announced,
			updated_at = excluded.updated_at`,
		nullZeroID(lvl.ID), lvl.Song, lvl.Artist, lvl.Creator, lvl.Team, lvl.DiffID,
		lvl.BaseScore, lvl.DLLink, lvl.WorkshopLink, lvl.VideoLink,
		lvl.IsDeleted, lvl.IsHidden, lvl.IsAnnounced,
		lvl.CreatedAt.Format(time.RFC3339), lvl.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save level %d: %w", lvl.ID, err)
	}
	if lvl.ID == 0 {
		if lvl.ID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("level insert id: %w", err)
		}
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpSave, IDs: []int64{lvl.ID}})
	return nil
}

// CreateLevels bulk-inserts level rows and emits one bulk-create event.
func (s *Store) CreateLevels(ctx context.Context, lvls []*domain.Level) error {
	return createLevels(ctx, s.session(ctx), lvls)
}

// CreateLevels bulk-inserts level rows inside the transaction.
func (t *Tx) CreateLevels(ctx context.Context, lvls []*domain.Level) error {
	return createLevels(ctx, t.session(), lvls)
}

func createLevels(ctx context.Context, sess session, lvls []*domain.Level) error {
	if len(lvls) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	ids := make([]int64, 0, len(lvls))
	for _, lvl := range lvls {
		res, err := sess.q.ExecContext(ctx, `
			INSERT INTO levels (id, song, artist, creator, team, diff_id, base_score,
				dl_link, workshop_link, video_link, is_deleted, is_hidden, is_announced,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			nullZeroID(lvl.ID), lvl.Song, lvl.Artist, lvl.Creator, lvl.Team, lvl.DiffID,
			lvl.BaseScore, lvl.DLLink, lvl.WorkshopLink, lvl.VideoLink,
			lvl.IsDeleted, lvl.IsHidden, lvl.IsAnnounced, now, now)
		if err != nil {
			return fmt.Errorf("create level: %w", err)
		}
		if lvl.ID == 0 {
			if lvl.ID, err = res.LastInsertId(); err != nil {
				return fmt.Errorf("level insert id: %w", err)
			}
		}
		ids = append(ids, lvl.ID)
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpBulkCreate, IDs: ids})
	return nil
}

// UpdateLevelsWhere applies a filtered bulk update. Matching primary keys
// are captured before the update runs, because the filter may reference a
// column the update itself changes; the captured list feeds the event. If
// the snapshot fails, the event falls back to re-querying the filter
// after the fact, which can miss rows whose filter columns changed.
func (s *Store) UpdateLevelsWhere(ctx context.Context, set map[string]any, where string, args ...any) (int64, error) {
	return updateWhere(ctx, s.session(ctx), s, "levels", domain.FamilyLevel, set, where, args...)
}

// UpdateLevelsWhere applies a filtered bulk update inside the transaction.
func (t *Tx) UpdateLevelsWhere(ctx context.Context, set map[string]any, where string, args ...any) (int64, error) {
	return updateWhere(ctx, t.session(), t.store, "levels", domain.FamilyLevel, set, where, args...)
}

func updateWhere(
	ctx context.Context, sess session, s *Store,
	table string, family domain.Family,
	set map[string]any, where string, args ...any,
) (int64, error) {
	ids, capErr := captureIDs(ctx, sess.q, table, where, args...)

	setClause, setArgs := buildSet(set)
	query := fmt.Sprintf("UPDATE %s SET %s", table, setClause) //nolint:gosec // table names are compile-time constants
	if where != "" {
		query += " WHERE " + where
	}
	res, err := sess.q.ExecContext(ctx, query, append(setArgs, args...)...)
	if err != nil {
		return 0, fmt.Errorf("bulk update %s: %w", table, err)
	}
	affected, _ := res.RowsAffected()

	if capErr != nil {
		s.log.Debug("bulk update id snapshot failed, re-querying filter",
			zap.Error(capErr))
		ids, err = captureIDs(ctx, sess.q, table, where, args...)
		if err != nil {
			return affected, fmt.Errorf("bulk update fallback capture: %w", err)
		}
	}

	sess.emit(Event{Family: family, Op: OpBulkUpdate, IDs: ids})
	return affected, nil
}

// DestroyLevels hard-deletes level rows and their owned relations, and
// emits a removal event so the documents disappear from the index.
func (s *Store) DestroyLevels(ctx context.Context, ids []int64) error {
	return destroyLevels(ctx, s.session(ctx), ids)
}

// DestroyLevels hard-deletes level rows inside the transaction.
func (t *Tx) DestroyLevels(ctx context.Context, ids []int64) error {
	return destroyLevels(ctx, t.session(), ids)
}

func destroyLevels(ctx context.Context, sess session, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	ph := placeholders(len(ids))
	args := int64Args(ids)
	for _, q := range []string{
		"DELETE FROM level_aliases WHERE level_id IN (" + ph + ")",
		"DELETE FROM level_credits WHERE level_id IN (" + ph + ")",
		"DELETE FROM level_tags WHERE level_id IN (" + ph + ")",
		"DELETE FROM curations WHERE level_id IN (" + ph + ")",
		"DELETE FROM levels WHERE id IN (" + ph + ")",
	} {
		if _, err := sess.q.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("destroy levels: %w", err)
		}
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpBulkDestroy, IDs: ids, Removed: true})
	return nil
}

// AssignTag attaches a tag to a level. The level document owns the tag
// list, so the event re-projects the level.
func (s *Store) AssignTag(ctx context.Context, levelID, tagID int64) error {
	return assignTag(ctx, s.session(ctx), levelID, tagID)
}

// AssignTag attaches a tag inside the transaction.
func (t *Tx) AssignTag(ctx context.Context, levelID, tagID int64) error {
	return assignTag(ctx, t.session(), levelID, tagID)
}

func assignTag(ctx context.Context, sess session, levelID, tagID int64) error {
	_, err := sess.q.ExecContext(ctx,
		"INSERT OR IGNORE INTO level_tags (level_id, tag_id) VALUES (?, ?)", levelID, tagID)
	if err != nil {
		return fmt.Errorf("assign tag %d to level %d: %w", tagID, levelID, err)
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpSave, IDs: []int64{levelID}})
	return nil
}

// RemoveTag detaches a tag from a level.
func (s *Store) RemoveTag(ctx context.Context, levelID, tagID int64) error {
	sess := s.session(ctx)
	_, err := sess.q.ExecContext(ctx,
		"DELETE FROM level_tags WHERE level_id = ? AND tag_id = ?", levelID, tagID)
	if err != nil {
		return fmt.Errorf("remove tag %d from level %d: %w", tagID, levelID, err)
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpSave, IDs: []int64{levelID}})
	return nil
}

// SetCuration marks a level as curated with the given type.
func (s *Store) SetCuration(ctx context.Context, levelID int64, typeName string) error {
	return setCuration(ctx, s.session(ctx), levelID, typeName)
}

// SetCuration marks a level as curated inside the transaction.
func (t *Tx) SetCuration(ctx context.Context, levelID int64, typeName string) error {
	return setCuration(ctx, t.session(), levelID, typeName)
}

func setCuration(ctx context.Context, sess session, levelID int64, typeName string) error {
	_, err := sess.q.ExecContext(ctx, `
		INSERT INTO curations (level_id, type_name, assigned_at) VALUES (?, ?, ?)
		ON CONFLICT(level_id) DO UPDATE SET type_name = excluded.type_name`,
		levelID, typeName, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("set curation on level %d: %w", levelID, err)
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpSave, IDs: []int64{levelID}})
	return nil
}

// ClearCuration removes a level's curation record.
func (s *Store) ClearCuration(ctx context.Context, levelID int64) error {
	sess := s.session(ctx)
	if _, err := sess.q.ExecContext(ctx,
		"DELETE FROM curations WHERE level_id = ?", levelID); err != nil {
		return fmt.Errorf("clear curation on level %d: %w", levelID, err)
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpSave, IDs: []int64{levelID}})
	return nil
}

// AddLevelAlias records an alternate spelling for a level text field.
func (s *Store) AddLevelAlias(ctx context.Context, a domain.LevelAlias) error {
	sess := s.session(ctx)
	_, err := sess.q.ExecContext(ctx,
		"INSERT INTO level_aliases (level_id, field, alias, original) VALUES (?, ?, ?, ?)",
		a.LevelID, a.Field, a.Alias, a.Original)
	if err != nil {
		return fmt.Errorf("add alias to level %d: %w", a.LevelID, err)
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpSave, IDs: []int64{a.LevelID}})
	return nil
}

// SetLevelCredits replaces the credit list of a level.
func (s *Store) SetLevelCredits(ctx context.Context, levelID int64, credits []domain.LevelCredit) error {
	sess := s.session(ctx)
	if _, err := sess.q.ExecContext(ctx,
		"DELETE FROM level_credits WHERE level_id = ?", levelID); err != nil {
		return fmt.Errorf("clear credits of level %d: %w", levelID, err)
	}
	for _, c := range credits {
		if _, err := sess.q.ExecContext(ctx,
			"INSERT INTO level_credits (level_id, creator_id, role) VALUES (?, ?, ?)",
			levelID, c.CreatorID, c.Role); err != nil {
			return fmt.Errorf("add credit to level %d: %w", levelID, err)
		}
	}
	sess.emit(Event{Family: domain.FamilyLevel, Op: OpSave, IDs: []int64{levelID}})
	return nil
}

// LoadLevel hydrates a level and every relation its document needs.
// Returns (nil, nil) when the row does not exist: nothing to index.
func (s *Store) LoadLevel(ctx context.Context, id int64) (*domain.Level, error) {
	lvl := &domain.Level{}
	var createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT l.id, l.song, l.artist, l.creator, l.team, l.diff_id, l.base_score,
			l.dl_link, l.workshop_link, l.video_link,
			l.is_deleted, l.is_hidden, l.is_announced, l.created_at, l.updated_at,
			COALESCE(d.name, ''), COALESCE(d.sort_order, 0), COALESCE(d.type, '')
		FROM levels l
		LEFT JOIN difficulties d ON d.id = l.diff_id
		WHERE l.id = ?`, id).Scan(
		&lvl.ID, &lvl.Song, &lvl.Artist, &lvl.Creator, &lvl.Team, &lvl.DiffID,
		&lvl.BaseScore, &lvl.DLLink, &lvl.WorkshopLink, &lvl.VideoLink,
		&lvl.IsDeleted, &lvl.IsHidden, &lvl.IsAnnounced, &createdAt, &updatedAt,
		&lvl.Difficulty.Name, &lvl.Difficulty.SortOrder, &lvl.Difficulty.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load level %d: %w", id, err)
	}
	lvl.Difficulty.ID = lvl.DiffID
	lvl.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	lvl.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	if lvl.Aliases, err = s.levelAliases(ctx, id); err != nil {
		return nil, err
	}
	if lvl.Credits, err = s.levelCredits(ctx, id); err != nil {
		return nil, err
	}
	if lvl.Tags, err = s.levelTags(ctx, id); err != nil {
		return nil, err
	}
	if lvl.Curation, err = s.levelCuration(ctx, id); err != nil {
		return nil, err
	}
	// Live count, never a denormalized counter column: excludes
	// soft-deleted and hidden passes and banned players.
	if lvl.Clears, err = s.ClearCount(ctx, id); err != nil {
		return nil, err
	}
	if lvl.LatestClear, err = s.latestConfirmedPass(ctx, id); err != nil {
		return nil, err
	}
	return lvl, nil
}

// ClearCount counts qualifying passes of a level.
func (s *Store) ClearCount(ctx context.Context, levelID int64) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM passes p
		JOIN players pl ON pl.id = p.player_id
		WHERE p.level_id = ? AND p.is_deleted = 0 AND p.is_hidden = 0 AND pl.is_banned = 0`,
		levelID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("clear count for level %d: %w", levelID, err)
	}
	return n, nil
}

func (s *Store) levelAliases(ctx context.Context, levelID int64) ([]domain.LevelAlias, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, field, alias, original FROM level_aliases WHERE level_id = ? ORDER BY id",
		levelID)
	if err != nil {
		return nil, fmt.Errorf("load aliases for level %d: %w", levelID, err)
	}
	defer rows.Close()

	var out []domain.LevelAlias
	for rows.Next() {
		a := domain.LevelAlias{LevelID: levelID}
		if err := rows.Scan(&a.ID, &a.Field, &a.Alias, &a.Original); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) levelCredits(ctx context.Context, levelID int64) ([]domain.LevelCredit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.creator_id, cr.name, c.role
		FROM level_credits c
		JOIN creators cr ON cr.id = c.creator_id
		WHERE c.level_id = ? ORDER BY c.id`, levelID)
	if err != nil {
		return nil, fmt.Errorf("load credits for level %d: %w", levelID, err)
	}
	defer rows.Close()

	var out []domain.LevelCredit
	for rows.Next() {
		c := domain.LevelCredit{LevelID: levelID}
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.Name, &c.Role); err != nil {
			return nil, fmt.Errorf("scan credit: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Aliases, err = s.creatorAliases(ctx, out[i].CreatorID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) creatorAliases(ctx context.Context, creatorID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT alias FROM creator_aliases WHERE creator_id = ? ORDER BY id", creatorID)
	if err != nil {
		return nil, fmt.Errorf("load aliases for creator %d: %w", creatorID, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan creator alias: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) levelTags(ctx context.Context, levelID int64) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name FROM tags t
		JOIN level_tags lt ON lt.tag_id = t.id
		WHERE lt.level_id = ? ORDER BY t.id`, levelID)
	if err != nil {
		return nil, fmt.Errorf("load tags for level %d: %w", levelID, err)
	}
	defer rows.Close()

	var out []domain.Tag
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) levelCuration(ctx context.Context, levelID int64) (*domain.Curation, error) {
	c := domain.Curation{LevelID: levelID}
	var assignedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, type_name, assigned_at FROM curations WHERE level_id = ?",
		levelID).Scan(&c.ID, &c.TypeName, &assignedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load curation for level %d: %w", levelID, err)
	}
	c.AssignedAt, _ = time.Parse(time.RFC3339, assignedAt)
	return &c, nil
}

func (s *Store) latestConfirmedPass(ctx context.Context, levelID int64) (*domain.Pass, error) {
	p := domain.Pass{LevelID: levelID}
	var uploadedAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, p.player_id, pl.name, p.uploaded_at
		FROM passes p
		JOIN players pl ON pl.id = p.player_id
		WHERE p.level_id = ? AND p.is_accepted = 1 AND p.is_deleted = 0
		ORDER BY p.uploaded_at DESC, p.id DESC LIMIT 1`, levelID).
		Scan(&p.ID, &p.PlayerID, &p.Player.Name, &uploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest clear for level %d: %w", levelID, err)
	}
	p.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)
	return &p, nil
}

// LevelIDsAfter returns up to limit level ids strictly greater than
// afterID, in ascending order. Keyset pagination for the reindexer.
func (s *Store) LevelIDsAfter(ctx context.Context, afterID int64, limit int) ([]int64, error) {
	return idsAfter(ctx, s.db, "levels", afterID, limit)
}

func idsAfter(ctx context.Context, q querier, table string, afterID int64, limit int) ([]int64, error) {
	query := fmt.Sprintf( //nolint:gosec // table names are compile-time constants
		"SELECT id FROM %s WHERE id > ? ORDER BY id LIMIT ?", table)
	rows, err := q.QueryContext(ctx, query, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("page %s ids: %w", table, err)
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

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// nullZeroID lets autoincrement assign the key when the caller passes 0.
func nullZeroID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}
