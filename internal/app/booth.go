package app

import (
	"context"
	"errors"

	"github.com/dkeye/Stage/internal/core"
	"github.com/dkeye/Stage/internal/domain"
)

const (
	defaultHistoryLimit = 25
	maxHistoryLimit     = 100
)

// Booth is the read path: the current performance snapshot and the play
// history pages.
type Booth struct {
	state   core.RoomState
	history core.HistoryStore
	users   core.UserStore
	votes   *Votes
}

func NewBooth(state core.RoomState, history core.HistoryStore, users core.UserStore, votes *Votes) *Booth {
	return &Booth{state: state, history: history, users: users, votes: votes}
}

// Snapshot returns nil when no performance is in progress. A history
// pointer whose entry or performer is gone counts as no booth.
func (b *Booth) Snapshot(ctx context.Context) (*core.BoothSnapshot, error) {
	historyID, err := b.state.Get(ctx, keyHistoryID)
	if err != nil {
		return nil, err
	}
	if historyID == "" {
		return nil, nil
	}

	entry, err := b.history.ByID(ctx, domain.HistoryID(historyID))
	if errors.Is(err, domain.ErrHistoryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := b.users.ByID(ctx, entry.User); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}

	stats, err := b.votes.Counts(ctx)
	if err != nil {
		return nil, err
	}
	return &core.BoothSnapshot{
		HistoryID:  entry.ID,
		PlaylistID: entry.Playlist,
		PlayedAt:   entry.Played,
		UserID:     entry.User,
		Media:      entry.Media,
		Stats:      stats,
	}, nil
}

// Recent pages the play history, newest first.
func (b *Booth) Recent(ctx context.Context, page, limit int) ([]*domain.HistoryEntry, error) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return b.history.Recent(ctx, page*limit, limit)
}
