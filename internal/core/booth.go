package core

import (
	"time"

	"github.com/dkeye/Stage/internal/domain"
)

// BoothStats are the per-turn tallies, most recent voter first.
type BoothStats struct {
	Upvotes   []domain.UserID `json:"upvotes"`
	Downvotes []domain.UserID `json:"downvotes"`
	Favorites []domain.UserID `json:"favorites"`
}

// BoothSnapshot is a read-only view of the active performance.
type BoothSnapshot struct {
	HistoryID  domain.HistoryID     `json:"historyID"`
	PlaylistID domain.PlaylistID    `json:"playlistID"`
	PlayedAt   time.Time            `json:"playedAt"`
	UserID     domain.UserID        `json:"userID"`
	Media      domain.MediaSnapshot `json:"media"`
	Stats      BoothStats           `json:"stats"`
}
