package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Stage/internal/core"
	"github.com/dkeye/Stage/internal/domain"
)

// Votes keeps the per-turn tallies. Lists are recency ordered: the latest
// voter sits at the head. The scheduler clears them at every turn start.
type Votes struct {
	state core.RoomState
}

func NewVotes(state core.RoomState) *Votes {
	return &Votes{state: state}
}

// Cast records an upvote (direction > 0) or downvote. Silently ignored when
// the booth is empty, when the voter is the current DJ, or when the same
// vote already stands. Switching sides drops the old vote in the same
// store operation.
func (v *Votes) Cast(ctx context.Context, userID domain.UserID, direction int) error {
	dj, err := v.state.Get(ctx, keyCurrentDJ)
	if err != nil {
		return err
	}
	if dj == "" || dj == string(userID) {
		return nil
	}
	historyID, err := v.state.Get(ctx, keyHistoryID)
	if err != nil {
		return err
	}
	if historyID == "" {
		return nil
	}

	target := keyDownvotes
	if direction > 0 {
		direction = 1
		target = keyUpvotes
	} else {
		direction = -1
	}
	cast, err := v.state.ListRange(ctx, target)
	if err != nil {
		return err
	}
	for _, voter := range cast {
		if voter == string(userID) {
			return nil
		}
	}

	if err := v.state.ListMoveFront(ctx, string(userID), target, keyUpvotes, keyDownvotes); err != nil {
		return err
	}
	if err := v.state.Publish(ctx, core.CmdVote, core.VotePayload{UserID: userID, Direction: direction}); err != nil {
		log.Warn().Str("module", "app.votes").Err(err).Msg("publish failed")
	}
	return nil
}

// Counts is the read path for the booth snapshot.
func (v *Votes) Counts(ctx context.Context) (core.BoothStats, error) {
	var stats core.BoothStats
	for _, part := range []struct {
		key string
		dst *[]domain.UserID
	}{
		{keyUpvotes, &stats.Upvotes},
		{keyDownvotes, &stats.Downvotes},
		{keyFavorites, &stats.Favorites},
	} {
		raw, err := v.state.ListRange(ctx, part.key)
		if err != nil {
			return core.BoothStats{}, err
		}
		ids := make([]domain.UserID, len(raw))
		for i, val := range raw {
			ids[i] = domain.UserID(val)
		}
		*part.dst = ids
	}
	return stats, nil
}

func (v *Votes) reset(ctx context.Context) error {
	return v.state.Del(ctx, keyUpvotes, keyDownvotes, keyFavorites)
}
