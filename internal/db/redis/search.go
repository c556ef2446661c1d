package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/T21C/tuf-backend-sub003/internal/db"
)

// Search runs one offset-paged FT.SEARCH request.
func (s *Store) Search(ctx context.Context, q *db.PageQuery) (*db.SearchResult, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	args := []string{q.Index, q.Query}
	if q.Sort != nil {
		args = append(args, "SORTBY", q.Sort.Field, sortDir(q.Sort.Desc))
	}
	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseSearchReply(raw)
}

// Count returns the number of matches for a query without fetching any
// documents (LIMIT 0 0).
func (s *Store) Count(ctx context.Context, index, query string) (int64, error) {
	args := []string{index, query, "LIMIT", "0", "0", "DIALECT", "2"}
	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: err}
	}
	if len(raw) == 0 {
		return 0, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("empty reply")}
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("parse total: %w", err)}
	}
	return total, nil
}

func sortDir(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// parseSearchReply decodes the RESP2 FT.SEARCH layout:
// [total, key1, [field, value, ...], key2, [...], ...].
func parseSearchReply(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("empty reply")}
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("parse total: %w", err)}
	}

	res := &db.SearchResult{Total: total}
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("parse key: %w", err)}
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("parse fields for %s: %w", key, err)}
		}
		res.Entries = append(res.Entries, db.SearchEntry{
			Key:  key,
			JSON: extractJSONField(fields),
		})
	}
	return res, nil
}

// extractJSONField pulls the "$" value out of a field-value pair list.
func extractJSONField(fields []rueidis.RedisMessage) []byte {
	for i := 0; i+1 < len(fields); i += 2 {
		name, err := fields[i].ToString()
		if err != nil {
			continue
		}
		if name == "$" {
			val, err := fields[i+1].ToString()
			if err != nil {
				return nil
			}
			return []byte(val)
		}
	}
	return nil
}
