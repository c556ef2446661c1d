// Package domain holds the source-record graph, the index document
// shapes, and the parsed query descriptor shared by every layer.
package domain

import "time"

// Family identifies one of the two indexed entity families.
type Family string

const (
	// FamilyLevel is the chart family.
	FamilyLevel Family = "levels"
	// FamilyPass is the clear-record family.
	FamilyPass Family = "passes"
)

// Valid reports whether f names a known family.
func (f Family) Valid() bool {
	return f == FamilyLevel || f == FamilyPass
}

// Level is the authoritative chart row plus its hydrated relations.
// The search subsystem never mutates it.
type Level struct {
	ID           int64
	Song         string
	Artist       string
	Creator      string
	Team         string
	DiffID       int64
	Difficulty   Difficulty
	BaseScore    float64
	DLLink       string
	WorkshopLink string
	VideoLink    string
	IsDeleted    bool
	IsHidden     bool
	IsAnnounced  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Aliases  []LevelAlias
	Credits  []LevelCredit
	Tags     []Tag
	Curation *Curation

	// Derived at load time, never read from a counter column.
	Clears      int64
	LatestClear *Pass
}

// Difficulty is a lookup row describing a chart's rated difficulty.
type Difficulty struct {
	ID        int64
	Name      string
	SortOrder float64
	Type      string
}

// LevelAlias is an alternate spelling for one text field of a level.
type LevelAlias struct {
	ID       int64
	LevelID  int64
	Field    string // "song" or "artist"
	Alias    string
	Original string
}

// LevelCredit links a credited party to a level under a single role.
// Role and name must be matched within the same credit, never across
// two different credits of the same level.
type LevelCredit struct {
	ID        int64
	LevelID   int64
	CreatorID int64
	Name      string
	Role      string // "charter", "vfxer", ...
	Aliases   []string
}

// Tag is a curator-assigned label on a level.
type Tag struct {
	ID   int64
	Name string
}

// Curation marks a level as curated, with the curation type name.
type Curation struct {
	ID       int64
	LevelID  int64
	TypeName string
	AssignedAt time.Time
}
