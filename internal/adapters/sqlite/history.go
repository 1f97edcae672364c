package sqlite

import (
	"context"
	"database/sql"

	"github.com/dkeye/Stage/internal/domain"
)

type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history
			(id, user_id, playlist_id, item_id, source_type, source_id,
			 artist, title, duration, start_at, end_at, played_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.User, entry.Playlist, entry.Item,
		entry.Media.SourceType, entry.Media.SourceID,
		entry.Media.Artist, entry.Media.Title, entry.Media.Duration,
		entry.Media.Start, entry.Media.End, entry.Played,
	)
	return err
}

func (s *HistoryStore) ByID(ctx context.Context, id domain.HistoryID) (*domain.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, playlist_id, item_id, source_type, source_id,
		       artist, title, duration, start_at, end_at, played_at
		FROM history WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrHistoryNotFound
	}
	return entry, err
}

func (s *HistoryStore) Recent(ctx context.Context, offset, limit int) ([]*domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, playlist_id, item_id, source_type, source_id,
		       artist, title, duration, start_at, end_at, played_at
		FROM history ORDER BY played_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.HistoryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	err := row.Scan(
		&entry.ID, &entry.User, &entry.Playlist, &entry.Item,
		&entry.Media.SourceType, &entry.Media.SourceID,
		&entry.Media.Artist, &entry.Media.Title, &entry.Media.Duration,
		&entry.Media.Start, &entry.Media.End, &entry.Played,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
