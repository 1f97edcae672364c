package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkeye/Stage/internal/domain"
)

type PlaylistStore struct {
	db *sql.DB
}

func NewPlaylistStore(db *sql.DB) *PlaylistStore {
	return &PlaylistStore{db: db}
}

const playlistCols = `
	p.id, p.owner, p.name, p.active,
	(SELECT COUNT(*) FROM playlist_items i WHERE i.playlist_id = p.id)`

func (s *PlaylistStore) ByID(ctx context.Context, id domain.PlaylistID) (*domain.Playlist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT`+playlistCols+` FROM playlists p WHERE p.id = ?`, id)
	return scanPlaylist(row)
}

func (s *PlaylistStore) ActiveByUser(ctx context.Context, user domain.UserID) (*domain.Playlist, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT`+playlistCols+` FROM playlists p WHERE p.owner = ? AND p.active = 1 LIMIT 1`, user)
	return scanPlaylist(row)
}

// NextMedia snapshots the head item of the playlist and cycles it to the
// tail, both inside one transaction.
func (s *PlaylistStore) NextMedia(ctx context.Context, id domain.PlaylistID) (domain.ItemID, *domain.MediaSnapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", nil, err
	}
	defer tx.Rollback()

	var item domain.PlaylistItem
	var position int
	err = tx.QueryRowContext(ctx, `
		SELECT id, position, source_type, source_id, artist, title, duration, start_at, end_at
		FROM playlist_items WHERE playlist_id = ?
		ORDER BY position ASC LIMIT 1`, id).Scan(
		&item.ID, &position,
		&item.Media.SourceType, &item.Media.SourceID,
		&item.Media.Artist, &item.Media.Title, &item.Media.Duration,
		&item.Media.Start, &item.Media.End,
	)
	if err == sql.ErrNoRows {
		return "", nil, domain.ErrPlaylistNotFound
	}
	if err != nil {
		return "", nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE playlist_items
		SET position = 1 + (SELECT MAX(position) FROM playlist_items WHERE playlist_id = ?)
		WHERE id = ?`, id, item.ID)
	if err != nil {
		return "", nil, err
	}
	if err := tx.Commit(); err != nil {
		return "", nil, err
	}
	return item.ID, &item.Media, nil
}

func (s *PlaylistStore) AppendItem(ctx context.Context, id domain.PlaylistID, item *domain.PlaylistItem) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM playlists WHERE id = ?`, id).Scan(&exists); err != nil {
		return 0, err
	}
	if exists == 0 {
		return 0, domain.ErrPlaylistNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO playlist_items
			(id, playlist_id, position, source_type, source_id, artist, title, duration, start_at, end_at)
		VALUES (?, ?,
			1 + COALESCE((SELECT MAX(position) FROM playlist_items WHERE playlist_id = ?), -1),
			?, ?, ?, ?, ?, ?, ?)`,
		item.ID, id, id,
		item.Media.SourceType, item.Media.SourceID,
		item.Media.Artist, item.Media.Title, item.Media.Duration,
		item.Media.Start, item.Media.End,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to append item: %w", err)
	}

	var size int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM playlist_items WHERE playlist_id = ?`, id).Scan(&size); err != nil {
		return 0, err
	}
	return size, tx.Commit()
}

func scanPlaylist(row *sql.Row) (*domain.Playlist, error) {
	var p domain.Playlist
	err := row.Scan(&p.ID, &p.Owner, &p.Name, &p.Active, &p.Size)
	if err == sql.ErrNoRows {
		return nil, domain.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
