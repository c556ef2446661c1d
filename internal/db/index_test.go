package db

import (
	"strings"
	"testing"
)

func TestBuilderProducesCanonicalString(t *testing.T) {
	def := NewIndex("idx:levels").
		Prefix("tuf:levels:").
		NumericSortable("$.id", "id").
		Tag("$.song", "song").
		TagWithSep("$.creditPairs[*]", "credits", "\u001e").
		Text("$.diffName", "diffName").
		MustBuild()

	s := def.String()
	for _, want := range []string{
		"FT.CREATE idx:levels ON JSON",
		"PREFIX tuf:levels:",
		"$.id AS id NUMERIC SORTABLE",
		"$.song AS song TAG",
		"$.creditPairs[*] AS credits TAG SEPARATOR \u001e",
		"$.diffName AS diffName TEXT",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("definition string missing %q:\n%s", want, s)
		}
	}
}

func TestBuilderRejectsDuplicates(t *testing.T) {
	_, err := NewIndex("idx").Tag("$.a", "x").Numeric("$.b", "x").Build()
	if err == nil {
		t.Fatal("expected duplicate alias error")
	}
}

func TestBuilderRejectsEmpty(t *testing.T) {
	if _, err := NewIndex("idx").Build(); err == nil {
		t.Fatal("expected error for index without fields")
	}
	if _, err := NewIndex("").Tag("$.a", "a").Build(); err == nil {
		t.Fatal("expected error for unnamed index")
	}
}

func TestMappingVersionTracksSchema(t *testing.T) {
	a := NewIndex("idx").Tag("$.song", "song").MustBuild()
	b := NewIndex("idx").Tag("$.song", "song").MustBuild()
	if a.MappingVersion() != b.MappingVersion() {
		t.Fatal("identical schemas must hash identically")
	}

	c := NewIndex("idx").Tag("$.song", "song").Numeric("$.id", "id").MustBuild()
	if a.MappingVersion() == c.MappingVersion() {
		t.Fatal("schema change must change the mapping version")
	}
}
