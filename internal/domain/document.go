package domain

import "strconv"

// PairSep joins role and name inside a credit pair tag. It is the ASCII
// unit separator, which textenc reserves: encoded field values can never
// contain it, so a pair boundary is unambiguous.
const PairSep = ""

// CreditPair builds one same-element tag entry for a credit. A role-scoped
// search matches against these pairs, which makes it impossible to combine
// the role of one credit with the name of another.
func CreditPair(role, safeName string) string {
	return role + PairSep + safeName
}

// DocID is the index document key for a source primary key.
func DocID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// AliasDoc is one nested alias element of a level document.
type AliasDoc struct {
	Field string `json:"field"`
	Alias string `json:"alias"`
}

// CreditDoc is one nested credit element of a level document.
type CreditDoc struct {
	Name    string   `json:"name"`
	Role    string   `json:"role"`
	Aliases []string `json:"aliases,omitempty"`
}

// TagDoc is one nested tag element of a level document.
type TagDoc struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ClearDoc summarizes the most recent confirmed pass of a level.
type ClearDoc struct {
	ID       int64  `json:"id"`
	Player   string `json:"player"`
	Uploaded string `json:"uploaded"`
}

// LevelDoc is the denormalized projection of one Level. Text fields are
// stored textenc-encoded; numeric and boolean fields are stored raw.
type LevelDoc struct {
	ID           int64   `json:"id"`
	Song         string  `json:"song"`
	Artist       string  `json:"artist"`
	Creator      string  `json:"creator"`
	Team         string  `json:"team,omitempty"`
	DiffID       int64   `json:"diffId"`
	DiffName     string  `json:"diffName"`
	DiffSort     float64 `json:"diffSort"`
	BaseScore    float64 `json:"baseScore"`
	DLLink       string  `json:"dlLink,omitempty"`
	WorkshopLink string  `json:"workshopLink,omitempty"`
	VideoLink    string  `json:"videoLink,omitempty"`
	IsDeleted    bool    `json:"isDeleted"`
	IsHidden     bool    `json:"isHidden"`
	IsAnnounced  bool    `json:"isAnnounced"`
	IsCurated    bool    `json:"isCurated"`
	CurationType string  `json:"curationType,omitempty"`
	Clears       int64   `json:"clears"`

	Aliases []AliasDoc  `json:"aliases,omitempty"`
	Credits []CreditDoc `json:"credits,omitempty"`
	Tags    []TagDoc    `json:"tags,omitempty"`

	// CreditPairs carries role<US>name and role<US>alias entries for
	// same-element role matching. Derived from Credits at projection.
	CreditPairs []string `json:"creditPairs,omitempty"`

	LatestClear *ClearDoc `json:"latestClear,omitempty"`
	UpdatedAt   string    `json:"updatedAt"`
}

// PassDoc is the denormalized projection of one Pass.
type PassDoc struct {
	ID            int64   `json:"id"`
	LevelID       int64   `json:"levelId"`
	PlayerID      int64   `json:"playerId"`
	Player        string  `json:"player"`
	Country       string  `json:"country,omitempty"`
	Song          string  `json:"song"`
	Artist        string  `json:"artist"`
	Speed         float64 `json:"speed"`
	Accuracy      float64 `json:"accuracy"`
	ScoreV2       float64 `json:"scoreV2"`
	VideoTitle    string  `json:"videoTitle,omitempty"`
	VideoLink     string  `json:"videoLink,omitempty"`
	Is12K         bool    `json:"is12K"`
	Is16K         bool    `json:"is16K"`
	IsNoHold      bool    `json:"isNoHold"`
	IsWorldsFirst bool    `json:"isWorldsFirst"`
	IsDeleted     bool    `json:"isDeleted"`
	IsHidden      bool    `json:"isHidden"`
	UploadedAt    string  `json:"uploadedAt"`
}
