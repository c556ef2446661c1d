package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
	"github.com/T21C/tuf-backend-sub003/internal/textenc"
)

// matchNone is a clause no document satisfies: every document carries an
// id. Used for terms that can never match, such as a non-numeric value
// on a numeric field.
const matchNone = "(-@id:[-inf +inf])"

// Level query fields. Name-like fields fold their alias collections into
// the match so a search by either name finds the document.
var (
	levelMultiTag = map[string][]string{
		"song":    {"song", "alias"},
		"artist":  {"artist", "alias"},
		"creator": {"creator", "creditName", "creditAlias"},
	}
	levelTag = map[string]string{
		"team":     "team",
		"diff":     "diffName",
		"diffname": "diffName",
		"tag":      "tag",
		"curation": "curationType",
	}
	levelNumeric = map[string]string{
		"id":     "id",
		"diffid": "diffId",
		"clears": "clears",
	}
	// Role-scoped credit fields match name and role inside the same
	// credit element through the pair tags.
	levelRoles = map[string]string{
		"charter": "charter",
		"vfxer":   "vfxer",
	}
	levelAnyFields = []string{
		"song", "artist", "creator", "team", "diffName",
		"alias", "creditName", "creditAlias", "tag",
	}
)

// Pass query fields.
var (
	passTag = map[string]string{
		"player": "player",
		"song":   "song",
		"artist": "artist",
		"video":  "videoTitle",
	}
	passNumeric = map[string]string{
		"id":       "id",
		"levelid":  "levelId",
		"playerid": "playerId",
	}
	passAnyFields = []string{"player", "song", "artist", "videoTitle"}
)

// Compile translates a parsed query plus filters and viewer visibility
// into one engine query string. Filters and visibility are folded into
// every OR-group so no disjunct can widen past them.
func Compile(family domain.Family, q domain.Query, f domain.Filter, v domain.Viewer) (string, error) {
	var must []string
	switch family {
	case domain.FamilyLevel:
		must = append(levelFilterClauses(f.Level), levelViewerClauses(v)...)
	case domain.FamilyPass:
		must = append(passFilterClauses(f.Pass), passViewerClauses(v)...)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownFamily, family)
	}

	if q.IsEmpty() {
		if len(must) == 0 {
			return "*", nil
		}
		return strings.Join(must, " "), nil
	}

	groups := make([]string, 0, len(q.Groups))
	for _, g := range q.Groups {
		parts := make([]string, 0, len(g.Terms)+len(must))
		for _, t := range g.Terms {
			parts = append(parts, compileTerm(family, t))
		}
		parts = append(parts, must...)
		groups = append(groups, strings.Join(parts, " "))
	}
	if len(groups) == 1 {
		return groups[0], nil
	}
	for i := range groups {
		groups[i] = "(" + groups[i] + ")"
	}
	return strings.Join(groups, "|"), nil
}

func compileTerm(family domain.Family, t domain.Term) string {
	frag := compilePositive(family, t)
	if t.Not {
		return "-(" + frag + ")"
	}
	return frag
}

func compilePositive(family domain.Family, t domain.Term) string {
	if family == domain.FamilyPass {
		return compilePassTerm(t)
	}
	return compileLevelTerm(t)
}

func compileLevelTerm(t domain.Term) string {
	if t.Field == domain.FieldAny {
		return anyFragment(levelAnyFields, t.Value, t.Exact)
	}
	if fields, ok := levelMultiTag[t.Field]; ok {
		return anyFragment(fields, t.Value, t.Exact)
	}
	if attr, ok := levelTag[t.Field]; ok {
		return tagFragment(attr, t.Value, t.Exact)
	}
	if attr, ok := levelNumeric[t.Field]; ok {
		return numericFragment(attr, t.Value)
	}
	if role, ok := levelRoles[t.Field]; ok {
		return pairFragment(role, t.Value, t.Exact)
	}
	// Unknown field: the whole term degrades to free text.
	return anyFragment(levelAnyFields, t.Field+":"+t.Value, t.Exact)
}

func compilePassTerm(t domain.Term) string {
	if t.Field == domain.FieldAny {
		return anyFragment(passAnyFields, t.Value, t.Exact)
	}
	if attr, ok := passTag[t.Field]; ok {
		return tagFragment(attr, t.Value, t.Exact)
	}
	if attr, ok := passNumeric[t.Field]; ok {
		return numericFragment(attr, t.Value)
	}
	return anyFragment(passAnyFields, t.Field+":"+t.Value, t.Exact)
}

// tagFragment matches one tag attribute. The value is encoded first, so
// the wildcard literal can never contain engine syntax.
func tagFragment(attr, value string, exact bool) string {
	return "@" + attr + ":{" + wildcard(value, exact) + "}"
}

// anyFragment is a disjunction over several tag attributes; the term
// matches if any attribute does.
func anyFragment(attrs []string, value string, exact bool) string {
	w := wildcard(value, exact)
	parts := make([]string, len(attrs))
	for i, attr := range attrs {
		parts[i] = "@" + attr + ":{" + w + "}"
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// pairFragment matches a credit's role and name within the same credit
// element, by matching against the role-prefixed pair tags.
func pairFragment(role, value string, exact bool) string {
	enc := textenc.ToSafe(value)
	pat := role + domain.PairSep
	if exact {
		pat += enc
	} else {
		pat += "*" + enc + "*"
	}
	return "@credits:{w'" + pat + "'}"
}

// numericFragment requires an integer value; anything else matches
// nothing rather than erroring.
func numericFragment(attr, value string) string {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return matchNone
	}
	s := strconv.FormatInt(n, 10)
	return "@" + attr + ":[" + s + " " + s + "]"
}

func wildcard(value string, exact bool) string {
	enc := textenc.ToSafe(value)
	if exact {
		return "w'" + enc + "'"
	}
	return "w'*" + enc + "*'"
}

func levelViewerClauses(v domain.Viewer) []string {
	if v.IsModerator {
		return nil
	}
	return []string{"-@isDeleted:{true}", "-@isHidden:{true}"}
}

// passViewerClauses hides deleted and hidden passes, except that a
// signed-in player always sees their own hidden records.
func passViewerClauses(v domain.Viewer) []string {
	if v.IsModerator {
		return nil
	}
	clauses := []string{"-@isDeleted:{true}"}
	if v.PlayerID > 0 {
		pid := strconv.FormatInt(v.PlayerID, 10)
		clauses = append(clauses,
			"(-@isHidden:{true} | @playerId:["+pid+" "+pid+"])")
	} else {
		clauses = append(clauses, "-@isHidden:{true}")
	}
	return clauses
}

func levelFilterClauses(f *domain.LevelFilter) []string {
	if f == nil {
		return nil
	}
	var clauses []string
	if f.DiffMin != nil || f.DiffMax != nil {
		clauses = append(clauses,
			"@diffSort:["+numOr(f.DiffMin, "-inf")+" "+numOr(f.DiffMax, "+inf")+"]")
	}
	if f.Curated != nil {
		clauses = append(clauses, "@isCurated:{"+strconv.FormatBool(*f.Curated)+"}")
	}
	if f.Tag != "" {
		clauses = append(clauses, tagFragment("tag", f.Tag, true))
	}
	return clauses
}

func passFilterClauses(f *domain.PassFilter) []string {
	if f == nil {
		return nil
	}
	var clauses []string
	if f.LevelID > 0 {
		id := strconv.FormatInt(f.LevelID, 10)
		clauses = append(clauses, "@levelId:["+id+" "+id+"]")
	}
	if f.PlayerID > 0 {
		id := strconv.FormatInt(f.PlayerID, 10)
		clauses = append(clauses, "@playerId:["+id+" "+id+"]")
	}
	for _, b := range []struct {
		attr string
		val  *bool
	}{
		{"is12K", f.Is12K}, {"is16K", f.Is16K},
		{"isNoHold", f.IsNoHold}, {"isWorldsFirst", f.IsWorldsFirst},
	} {
		if b.val != nil {
			clauses = append(clauses, "@"+b.attr+":{"+strconv.FormatBool(*b.val)+"}")
		}
	}
	if f.MinAccuracy != nil {
		clauses = append(clauses,
			"@accuracy:["+formatFloat(*f.MinAccuracy)+" +inf]")
	}
	return clauses
}

func numOr(v *float64, def string) string {
	if v == nil {
		return def
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
