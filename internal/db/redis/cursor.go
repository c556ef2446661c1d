package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/T21C/tuf-backend-sub003/internal/db"
)

// OpenCursor starts an FT.AGGREGATE ... WITHCURSOR iteration over the
// query's full result set in sort order. The caller owns the returned
// cursor and must Close it on every path.
func (s *Store) OpenCursor(ctx context.Context, q *db.CursorQuery) (db.Cursor, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.PageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive")
	}

	args := []string{q.Index, q.Query,
		"LOAD", "4", "@__key", "$", "AS", "json",
	}
	if q.Sort != nil {
		args = append(args, "SORTBY", "2", "@"+q.Sort.Field, sortDir(q.Sort.Desc))
	}
	args = append(args,
		"WITHCURSOR", "COUNT", strconv.Itoa(q.PageSize),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpAggregate, Err: err}
	}

	entries, cursorID, err := parseCursorReply(raw)
	if err != nil {
		return nil, err
	}

	return &cursor{
		store:   s,
		index:   q.Index,
		id:      cursorID,
		pending: entries,
	}, nil
}

// cursor implements db.Cursor over FT.CURSOR READ/DEL. The first page is
// fetched by OpenCursor and buffered in pending.
type cursor struct {
	store   *Store
	index   string
	id      int64
	pending []db.SearchEntry
	served  bool
	closed  bool
}

// Next returns the next page. more == false means the server closed the
// cursor itself and no further reads will succeed.
func (c *cursor) Next(ctx context.Context) ([]db.SearchEntry, bool, error) {
	if !c.served {
		c.served = true
		return c.pending, c.id != 0, nil
	}
	if c.id == 0 {
		return nil, false, db.ErrCursorDone
	}

	cmd := c.store.b().Arbitrary("FT.CURSOR").
		Args("READ", c.index, strconv.FormatInt(c.id, 10)).Build()
	raw, err := c.store.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, false, &db.Error{Op: db.OpCursorRead, Err: err}
	}

	entries, cursorID, err := parseCursorReply(raw)
	if err != nil {
		return nil, false, err
	}
	c.id = cursorID
	return entries, c.id != 0, nil
}

// Close releases the server-side cursor. Safe to call more than once; a
// cursor the server already exhausted needs no DEL.
func (c *cursor) Close(ctx context.Context) error {
	if c.closed || c.id == 0 {
		c.closed = true
		return nil
	}
	c.closed = true

	cmd := c.store.b().Arbitrary("FT.CURSOR").
		Args("DEL", c.index, strconv.FormatInt(c.id, 10)).Build()
	if err := c.store.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "cursor not found") {
			return nil
		}
		return &db.Error{Op: db.OpCursorDel, Err: err}
	}
	return nil
}

// parseCursorReply decodes the WITHCURSOR layout: a two-element array of
// [aggregate-reply, cursor-id], where the aggregate reply is
// [count, row1, row2, ...] and each row is a field-value pair list.
func parseCursorReply(raw []rueidis.RedisMessage) ([]db.SearchEntry, int64, error) {
	if len(raw) != 2 {
		return nil, 0, &db.Error{Op: db.OpCursorRead, Err: fmt.Errorf("unexpected reply shape (%d elements)", len(raw))}
	}

	cursorID, err := raw[1].AsInt64()
	if err != nil {
		return nil, 0, &db.Error{Op: db.OpCursorRead, Err: fmt.Errorf("parse cursor id: %w", err)}
	}

	rows, err := raw[0].ToArray()
	if err != nil {
		return nil, 0, &db.Error{Op: db.OpCursorRead, Err: fmt.Errorf("parse rows: %w", err)}
	}

	var entries []db.SearchEntry
	for i := 1; i < len(rows); i++ {
		pairs, err := rows[i].ToArray()
		if err != nil {
			return nil, 0, &db.Error{Op: db.OpCursorRead, Err: fmt.Errorf("parse row: %w", err)}
		}
		entries = append(entries, parseCursorRow(pairs))
	}
	return entries, cursorID, nil
}

func parseCursorRow(pairs []rueidis.RedisMessage) db.SearchEntry {
	var entry db.SearchEntry
	for i := 0; i+1 < len(pairs); i += 2 {
		name, err := pairs[i].ToString()
		if err != nil {
			continue
		}
		val, err := pairs[i+1].ToString()
		if err != nil {
			continue
		}
		switch name {
		case "__key":
			entry.Key = val
		case "json":
			entry.JSON = []byte(val)
		}
	}
	return entry
}
