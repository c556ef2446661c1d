package store

// schema bootstraps the relational tables. Production deployments run
// migrations out of band; this keeps dev and test databases usable.
const schema = `
CREATE TABLE IF NOT EXISTS difficulties (
	id          INTEGER PRIMARY KEY,
	name        TEXT NOT NULL,
	sort_order  REAL NOT NULL DEFAULT 0,
	type        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS levels (
	id            INTEGER PRIMARY KEY,
	song          TEXT NOT NULL DEFAULT '',
	artist        TEXT NOT NULL DEFAULT '',
	creator       TEXT NOT NULL DEFAULT '',
	team          TEXT NOT NULL DEFAULT '',
	diff_id       INTEGER NOT NULL DEFAULT 0,
	base_score    REAL NOT NULL DEFAULT 0,
	dl_link       TEXT NOT NULL DEFAULT '',
	workshop_link TEXT NOT NULL DEFAULT '',
	video_link    TEXT NOT NULL DEFAULT '',
	is_deleted    INTEGER NOT NULL DEFAULT 0,
	is_hidden     INTEGER NOT NULL DEFAULT 0,
	is_announced  INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL DEFAULT '',
	updated_at    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS level_aliases (
	id       INTEGER PRIMARY KEY,
	level_id INTEGER NOT NULL,
	field    TEXT NOT NULL,
	alias    TEXT NOT NULL,
	original TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_level_aliases_level ON level_aliases(level_id);

CREATE TABLE IF NOT EXISTS creators (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS creator_aliases (
	id         INTEGER PRIMARY KEY,
	creator_id INTEGER NOT NULL,
	alias      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_creator_aliases_creator ON creator_aliases(creator_id);

CREATE TABLE IF NOT EXISTS level_credits (
	id         INTEGER PRIMARY KEY,
	level_id   INTEGER NOT NULL,
	creator_id INTEGER NOT NULL,
	role       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_level_credits_level ON level_credits(level_id);

CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS level_tags (
	level_id INTEGER NOT NULL,
	tag_id   INTEGER NOT NULL,
	PRIMARY KEY (level_id, tag_id)
);

CREATE TABLE IF NOT EXISTS curations (
	id          INTEGER PRIMARY KEY,
	level_id    INTEGER NOT NULL UNIQUE,
	type_name   TEXT NOT NULL DEFAULT '',
	assigned_at TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS players (
	id        INTEGER PRIMARY KEY,
	name      TEXT NOT NULL,
	country   TEXT NOT NULL DEFAULT '',
	is_banned INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS passes (
	id              INTEGER PRIMARY KEY,
	level_id        INTEGER NOT NULL,
	player_id       INTEGER NOT NULL,
	speed           REAL NOT NULL DEFAULT 1,
	accuracy        REAL NOT NULL DEFAULT 0,
	score_v2        REAL NOT NULL DEFAULT 0,
	video_title     TEXT NOT NULL DEFAULT '',
	video_link      TEXT NOT NULL DEFAULT '',
	feeling_diff    TEXT NOT NULL DEFAULT '',
	is_12k          INTEGER NOT NULL DEFAULT 0,
	is_16k          INTEGER NOT NULL DEFAULT 0,
	is_no_hold      INTEGER NOT NULL DEFAULT 0,
	is_worlds_first INTEGER NOT NULL DEFAULT 0,
	is_accepted     INTEGER NOT NULL DEFAULT 0,
	is_deleted      INTEGER NOT NULL DEFAULT 0,
	is_hidden       INTEGER NOT NULL DEFAULT 0,
	uploaded_at     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_passes_level ON passes(level_id);
CREATE INDEX IF NOT EXISTS idx_passes_player ON passes(player_id);
`
