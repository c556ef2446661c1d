package search

import (
	"strings"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// maxQueryLen bounds accepted query strings. Longer input is truncated,
// never rejected.
const maxQueryLen = 512

// Parse turns a raw query string into an ordered disjunction of AND-term
// groups.
//
// Grammar: groups separated by '|'; terms separated by whitespace; a term
// is either free text or [-]field:value (substring) or [-]field=value
// (exact). A double-quoted value is exact and may contain separators.
// A leading '-' negates the term. Field validity is not checked here.
func Parse(raw string) domain.Query {
	if len(raw) > maxQueryLen {
		raw = truncate(raw, maxQueryLen)
	}

	var q domain.Query
	for _, part := range splitOutsideQuotes(raw, '|') {
		var g domain.Group
		for _, tok := range tokenize(part) {
			if t, ok := parseTerm(tok); ok {
				g.Terms = append(g.Terms, t)
			}
		}
		if len(g.Terms) > 0 {
			q.Groups = append(q.Groups, g)
		}
	}
	return q
}

func parseTerm(tok string) (domain.Term, bool) {
	var t domain.Term
	if strings.HasPrefix(tok, "-") {
		t.Not = true
		tok = tok[1:]
	}
	if tok == "" {
		return t, false
	}

	field, value, sep := splitField(tok)
	switch sep {
	case '=':
		t.Field = strings.ToLower(field)
		t.Value, _ = unquote(value)
		t.Exact = true
	case ':':
		t.Field = strings.ToLower(field)
		t.Value, t.Exact = unquote(value)
	default:
		t.Field = domain.FieldAny
		t.Value, t.Exact = unquote(tok)
	}
	if t.Value == "" {
		return t, false
	}
	return t, true
}

// splitField finds the first unquoted ':' or '=' and returns the parts
// around it. sep is 0 when the token has no field prefix.
func splitField(tok string) (field, value string, sep byte) {
	inQuote := false
	for i := 0; i < len(tok); i++ {
		switch tok[i] {
		case '"':
			inQuote = !inQuote
		case ':', '=':
			if !inQuote && i > 0 {
				return tok[:i], tok[i+1:], tok[i]
			}
			if !inQuote {
				return "", "", 0
			}
		}
	}
	return "", "", 0
}

// unquote strips a surrounding double-quote pair. A quoted value is an
// exact match.
func unquote(s string) (value string, exact bool) {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1], true
	}
	return s, false
}

// tokenize splits on whitespace, treating double-quoted spans as atomic.
func tokenize(s string) []string {
	var out []string
	var b strings.Builder
	inQuote := false
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			b.WriteRune(r)
		case !inQuote && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}

func splitOutsideQuotes(s string, sep rune) []string {
	var out []string
	var b strings.Builder
	inQuote := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == sep && !inQuote:
			out = append(out, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	out = append(out, b.String())
	return out
}

// truncate cuts at a rune boundary at or below limit bytes.
func truncate(s string, limit int) string {
	for limit > 0 && limit < len(s) {
		if s[limit]&0xC0 != 0x80 {
			return s[:limit]
		}
		limit--
	}
	if limit >= len(s) {
		return s
	}
	return s[:limit]
}
