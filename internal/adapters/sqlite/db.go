// Package sqlite holds the durable stores: play history, playlists and
// users. Rotation only ever appends to history; playlists are edited here
// on favorites and cycled on play.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id       TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	role     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS playlists (
	id     TEXT PRIMARY KEY,
	owner  TEXT NOT NULL REFERENCES users (id),
	name   TEXT NOT NULL,
	active INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS playlist_items (
	id          TEXT PRIMARY KEY,
	playlist_id TEXT NOT NULL REFERENCES playlists (id),
	position    INTEGER NOT NULL,
	source_type TEXT NOT NULL,
	source_id   TEXT NOT NULL,
	artist      TEXT NOT NULL,
	title       TEXT NOT NULL,
	duration    INTEGER NOT NULL,
	start_at    INTEGER NOT NULL DEFAULT 0,
	end_at      INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_items_playlist ON playlist_items (playlist_id, position);

CREATE TABLE IF NOT EXISTS history (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	playlist_id TEXT NOT NULL,
	item_id     TEXT NOT NULL,
	source_type TEXT NOT NULL,
	source_id   TEXT NOT NULL,
	artist      TEXT NOT NULL,
	title       TEXT NOT NULL,
	duration    INTEGER NOT NULL,
	start_at    INTEGER NOT NULL DEFAULT 0,
	end_at      INTEGER NOT NULL DEFAULT 0,
	played_at   TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_played ON history (played_at DESC);
`

// Open connects to the database at path (":memory:" works) and applies the
// schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Info().Str("module", "adapters.sqlite").Str("path", path).Msg("database ready")
	return db, nil
}
