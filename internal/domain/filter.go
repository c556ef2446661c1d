package domain

// LevelFilter narrows a level search. Zero values mean "no constraint".
type LevelFilter struct {
	DiffMin *float64
	DiffMax *float64
	Curated *bool
	Tag     string
}

// PassFilter narrows a pass search.
type PassFilter struct {
	LevelID       int64
	PlayerID      int64
	Is12K         *bool
	Is16K         *bool
	IsNoHold      *bool
	IsWorldsFirst *bool
	MinAccuracy   *float64
}

// Filter is the closed filter set for a search request. Only the member
// matching the request's family is consulted.
type Filter struct {
	Level *LevelFilter
	Pass  *PassFilter
}
