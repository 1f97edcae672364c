package core

import (
	"context"

	"github.com/dkeye/Stage/internal/domain"
)

// HistoryStore is the durable append-only record of plays.
type HistoryStore interface {
	Create(ctx context.Context, entry *domain.HistoryEntry) error
	ByID(ctx context.Context, id domain.HistoryID) (*domain.HistoryEntry, error)
	// Recent returns entries newest first.
	Recent(ctx context.Context, offset, limit int) ([]*domain.HistoryEntry, error)
}

// PlaylistStore is the engine's window into playlist persistence.
type PlaylistStore interface {
	ByID(ctx context.Context, id domain.PlaylistID) (*domain.Playlist, error)
	ActiveByUser(ctx context.Context, user domain.UserID) (*domain.Playlist, error)
	// NextMedia resolves the next eligible item of the playlist and cycles
	// it to the tail, returning a snapshot of it as of now.
	NextMedia(ctx context.Context, id domain.PlaylistID) (domain.ItemID, *domain.MediaSnapshot, error)
	// AppendItem persists item and appends it to the playlist's item list,
	// returning the new playlist size.
	AppendItem(ctx context.Context, id domain.PlaylistID, item *domain.PlaylistItem) (int, error)
}

type UserStore interface {
	ByID(ctx context.Context, id domain.UserID) (*domain.User, error)
}
