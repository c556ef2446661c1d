package domain

import "time"

// Pass is a recorded clear of a level by one player, plus the hydrated
// player and level columns the pass document needs.
type Pass struct {
	ID         int64
	LevelID    int64
	PlayerID   int64
	Player     Player
	Speed      float64
	Accuracy   float64
	ScoreV2    float64
	VideoTitle string
	VideoLink  string
	FeelingDiff string
	Is12K      bool
	Is16K      bool
	IsNoHold   bool
	IsWorldsFirst bool
	IsAccepted bool
	IsDeleted  bool
	IsHidden   bool
	UploadedAt time.Time

	// Level columns mirrored into the pass document.
	LevelSong   string
	LevelArtist string
	LevelDiffID int64
}

// Player is the credited account behind a pass.
type Player struct {
	ID       int64
	Name     string
	Country  string
	IsBanned bool
}
