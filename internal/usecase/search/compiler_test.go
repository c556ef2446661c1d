package search

import (
	"strings"
	"testing"

	"github.com/T21C/tuf-backend-sub003/internal/domain"
	"github.com/T21C/tuf-backend-sub003/internal/textenc"
)

func compileLevels(t *testing.T, raw string, v domain.Viewer) string {
	t.Helper()
	out, err := Compile(domain.FamilyLevel, Parse(raw), domain.Filter{}, v)
	if err != nil {
		t.Fatalf("Compile(%q): %v", raw, err)
	}
	return out
}

func TestCompileRoleTermUsesPairTags(t *testing.T) {
	mod := domain.Viewer{IsModerator: true}
	out := compileLevels(t, "charter:Foo -artist:Bar", mod)

	wantPair := "@credits:{w'charter" + domain.PairSep + "*" + textenc.ToSafe("Foo") + "*'}"
	if !strings.Contains(out, wantPair) {
		t.Errorf("compiled = %q, missing pair fragment %q", out, wantPair)
	}
	if !strings.Contains(out, "-((") {
		t.Errorf("compiled = %q, negated term should be wrapped in -(...)", out)
	}
}

func TestCompileNumericFallbackMatchesNothing(t *testing.T) {
	mod := domain.Viewer{IsModerator: true}
	out := compileLevels(t, "id:notanumber", mod)
	if out != matchNone {
		t.Errorf("compiled = %q, want %q", out, matchNone)
	}

	out = compileLevels(t, "id:41", mod)
	if out != "@id:[41 41]" {
		t.Errorf("compiled = %q", out)
	}
}

func TestCompileUnknownFieldDegradesToFreeText(t *testing.T) {
	mod := domain.Viewer{IsModerator: true}
	out := compileLevels(t, "bogus:thing", mod)
	// The whole token, separator included, becomes an any-field match.
	enc := textenc.ToSafe("bogus:thing")
	if !strings.Contains(out, "@song:{w'*"+enc+"*'}") {
		t.Errorf("compiled = %q, want any-field fragment for %q", out, enc)
	}
}

func TestCompileAnyTermSpansNestedCollections(t *testing.T) {
	mod := domain.Viewer{IsModerator: true}
	out := compileLevels(t, "hello", mod)
	for _, attr := range []string{"@song:", "@artist:", "@alias:", "@creditName:", "@creditAlias:", "@tag:"} {
		if !strings.Contains(out, attr) {
			t.Errorf("compiled = %q, missing %s", out, attr)
		}
	}
}

func TestCompileViewerClausesFoldIntoEveryGroup(t *testing.T) {
	out := compileLevels(t, "song:a | song:b", domain.Viewer{})
	if got := strings.Count(out, "-@isDeleted:{true}"); got != 2 {
		t.Errorf("compiled = %q, want the deleted clause in both groups, got %d", out, got)
	}
	if got := strings.Count(out, "-@isHidden:{true}"); got != 2 {
		t.Errorf("compiled = %q, want the hidden clause in both groups, got %d", out, got)
	}

	// Moderators see everything.
	out = compileLevels(t, "song:a", domain.Viewer{IsModerator: true})
	if strings.Contains(out, "isDeleted") || strings.Contains(out, "isHidden") {
		t.Errorf("moderator query = %q, want no visibility clauses", out)
	}
}

func TestCompilePassOwnHiddenVisible(t *testing.T) {
	out, err := Compile(domain.FamilyPass, Parse("player:abc"),
		domain.Filter{}, domain.Viewer{PlayerID: 77})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(out, "(-@isHidden:{true} | @playerId:[77 77])") {
		t.Errorf("compiled = %q, want own-hidden escape clause", out)
	}
	if !strings.Contains(out, "-@isDeleted:{true}") {
		t.Errorf("compiled = %q, deleted passes must stay hidden", out)
	}
}

func TestCompileEmptyQueryMatchAll(t *testing.T) {
	out, err := Compile(domain.FamilyLevel, Parse(""), domain.Filter{},
		domain.Viewer{IsModerator: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if out != "*" {
		t.Errorf("compiled = %q, want *", out)
	}

	// Visibility alone still compiles to a real query.
	out, err = Compile(domain.FamilyLevel, Parse(""), domain.Filter{}, domain.Viewer{})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if out != "-@isDeleted:{true} -@isHidden:{true}" {
		t.Errorf("compiled = %q", out)
	}
}

func TestCompileFilters(t *testing.T) {
	min, max := 10.5, 20.0
	curated := true
	out, err := Compile(domain.FamilyLevel, Parse("song:x"),
		domain.Filter{Level: &domain.LevelFilter{DiffMin: &min, DiffMax: &max, Curated: &curated}},
		domain.Viewer{IsModerator: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(out, "@diffSort:[10.5 20]") {
		t.Errorf("compiled = %q, missing difficulty range", out)
	}
	if !strings.Contains(out, "@isCurated:{true}") {
		t.Errorf("compiled = %q, missing curated clause", out)
	}

	twelve := true
	out, err = Compile(domain.FamilyPass, Parse(""),
		domain.Filter{Pass: &domain.PassFilter{LevelID: 5, Is12K: &twelve}},
		domain.Viewer{IsModerator: true})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !strings.Contains(out, "@levelId:[5 5]") || !strings.Contains(out, "@is12K:{true}") {
		t.Errorf("compiled = %q", out)
	}
}

func TestCompileExactDisablesWildcard(t *testing.T) {
	mod := domain.Viewer{IsModerator: true}
	out := compileLevels(t, "team=Full", mod)
	if !strings.Contains(out, "@team:{w'Full'}") {
		t.Errorf("compiled = %q, want exact tag without stars", out)
	}
	if strings.Contains(out, "*Full*") {
		t.Errorf("compiled = %q, exact term must not be wildcarded", out)
	}
}

func TestCompileEncodesEngineSyntax(t *testing.T) {
	mod := domain.Viewer{IsModerator: true}
	out := compileLevels(t, `song:"a|b{c}"`, mod)
	for _, raw := range []string{"|b", "{c}"} {
		if strings.Contains(out, raw) {
			t.Errorf("compiled = %q, raw syntax %q leaked into the query", out, raw)
		}
	}
}

func TestCompileUnknownFamily(t *testing.T) {
	_, err := Compile(domain.Family("songs"), Parse("x"), domain.Filter{}, domain.Viewer{})
	if err == nil {
		t.Fatal("want error for unknown family")
	}
}
