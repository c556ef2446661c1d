package searchindex

import (
	"fmt"

	"github.com/T21C/tuf-backend-sub003/internal/db"
	"github.com/T21C/tuf-backend-sub003/internal/domain"
)

// Text fields are indexed as TAG: textenc guarantees the stored values
// contain neither the tag separator nor query syntax characters, and tag
// matching stays case-insensitive with predictable wildcard behavior.
func levelIndexDef(prefix string) *db.IndexDefinition {
	return db.NewIndex(prefix + "idx:levels").
		Prefix(prefix + "levels:").
		NumericSortable("$.id", "id").
		Tag("$.song", "song").
		Tag("$.artist", "artist").
		Tag("$.creator", "creator").
		Tag("$.team", "team").
		Tag("$.diffName", "diffName").
		NumericSortable("$.diffSort", "diffSort").
		Numeric("$.diffId", "diffId").
		Numeric("$.baseScore", "baseScore").
		NumericSortable("$.clears", "clears").
		Tag("$.dlLink", "dlLink").
		Tag("$.workshopLink", "workshopLink").
		Tag("$.isDeleted", "isDeleted").
		Tag("$.isHidden", "isHidden").
		Tag("$.isCurated", "isCurated").
		Tag("$.curationType", "curationType").
		Tag("$.aliases[*].alias", "alias").
		Tag("$.credits[*].name", "creditName").
		Tag("$.credits[*].aliases[*]", "creditAlias").
		Tag("$.creditPairs[*]", "credits").
		Tag("$.tags[*].name", "tag").
		MustBuild()
}

func passIndexDef(prefix string) *db.IndexDefinition {
	return db.NewIndex(prefix + "idx:passes").
		Prefix(prefix + "passes:").
		NumericSortable("$.id", "id").
		Numeric("$.levelId", "levelId").
		Numeric("$.playerId", "playerId").
		Tag("$.player", "player").
		Tag("$.song", "song").
		Tag("$.artist", "artist").
		Tag("$.videoTitle", "videoTitle").
		Numeric("$.speed", "speed").
		NumericSortable("$.accuracy", "accuracy").
		NumericSortable("$.scoreV2", "scoreV2").
		Tag("$.is12K", "is12K").
		Tag("$.is16K", "is16K").
		Tag("$.isNoHold", "isNoHold").
		Tag("$.isWorldsFirst", "isWorldsFirst").
		Tag("$.isDeleted", "isDeleted").
		Tag("$.isHidden", "isHidden").
		MustBuild()
}

func (r *Repo) indexDef(family domain.Family) (*db.IndexDefinition, error) {
	switch family {
	case domain.FamilyLevel:
		return levelIndexDef(r.prefix), nil
	case domain.FamilyPass:
		return passIndexDef(r.prefix), nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFamily, family)
	}
}

func (r *Repo) indexName(family domain.Family) string {
	return r.prefix + "idx:" + string(family)
}

func (r *Repo) docKey(family domain.Family, id int64) string {
	return r.prefix + string(family) + ":" + domain.DocID(id)
}

func (r *Repo) versionKey(family domain.Family) string {
	return r.prefix + "mapping:" + string(family)
}
