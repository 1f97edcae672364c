package domain

import (
	"time"

	"github.com/google/uuid"
)

type HistoryID string

// HistoryEntry records one occupancy of the booth. Immutable once written.
type HistoryEntry struct {
	ID       HistoryID     `json:"id"`
	User     UserID        `json:"user"`
	Playlist PlaylistID    `json:"playlist"`
	Item     ItemID        `json:"item"`
	Media    MediaSnapshot `json:"media"`
	Played   time.Time     `json:"played"`
}

func NewHistoryEntry(user UserID, playlist PlaylistID, item ItemID, media MediaSnapshot, played time.Time) *HistoryEntry {
	return &HistoryEntry{
		ID:       HistoryID(uuid.NewString()),
		User:     user,
		Playlist: playlist,
		Item:     item,
		Media:    media,
		Played:   played,
	}
}
