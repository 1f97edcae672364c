package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Stage/internal/core"
	"github.com/dkeye/Stage/internal/domain"
)

// Favorites copies a played media snapshot into one of the grabber's own
// playlists.
type Favorites struct {
	state     core.RoomState
	history   core.HistoryStore
	playlists core.PlaylistStore
}

func NewFavorites(state core.RoomState, history core.HistoryStore, playlists core.PlaylistStore) *Favorites {
	return &Favorites{state: state, history: history, playlists: playlists}
}

type FavoriteResult struct {
	PlaylistSize int                   `json:"playlistSize"`
	Added        []domain.PlaylistItem `json:"added"`
}

// Grab validates everything before touching any playlist: the history entry
// must exist, must not be the grabber's own play, and the target playlist
// must be theirs. Only then is the snapshot copied and appended.
func (f *Favorites) Grab(ctx context.Context, userID domain.UserID, playlistID domain.PlaylistID, historyID domain.HistoryID) (*FavoriteResult, error) {
	entry, err := f.history.ByID(ctx, historyID)
	if err != nil {
		return nil, err
	}
	if entry.User == userID {
		return nil, domain.ErrSelfFavorite
	}

	playlist, err := f.playlists.ByID(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	if playlist.Owner != userID {
		return nil, domain.ErrNotOwner
	}

	item := &domain.PlaylistItem{
		ID:    domain.ItemID(uuid.NewString()),
		Media: entry.Media,
	}
	size, err := f.playlists.AppendItem(ctx, playlist.ID, item)
	if err != nil {
		return nil, err
	}

	if err := f.state.ListMoveFront(ctx, string(userID), keyFavorites, keyFavorites); err != nil {
		return nil, err
	}
	if err := f.state.Publish(ctx, core.CmdFavorite, core.FavoritePayload{
		UserID:     userID,
		PlaylistID: playlistID,
	}); err != nil {
		log.Warn().Str("module", "app.favorites").Err(err).Msg("publish failed")
	}
	log.Info().Str("module", "app.favorites").Str("user", string(userID)).Str("playlist", string(playlistID)).Msg("play favorited")

	return &FavoriteResult{PlaylistSize: size, Added: []domain.PlaylistItem{*item}}, nil
}
