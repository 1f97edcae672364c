package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Stage/internal/core"
	"github.com/dkeye/Stage/internal/domain"
)

// Waitlist owns ordering of the queue of waiting user IDs. A user appears
// at most once; repositioning never duplicates. Every mutation is a single
// atomic store operation, so concurrent requests cannot drop entries.
type Waitlist struct {
	state core.RoomState
}

func NewWaitlist(state core.RoomState) *Waitlist {
	return &Waitlist{state: state}
}

func (w *Waitlist) List(ctx context.Context) ([]domain.UserID, error) {
	return w.order(ctx)
}

// Append adds userID to the tail, repositioning it if already queued.
// Unprivileged joins fail while the waitlist is locked.
func (w *Waitlist) Append(ctx context.Context, userID domain.UserID, privileged bool) ([]domain.UserID, error) {
	locked, err := w.Locked(ctx)
	if err != nil {
		return nil, err
	}
	if locked && !privileged {
		return nil, domain.ErrWaitlistLocked
	}
	if err := w.state.ListMoveBack(ctx, string(userID), keyWaitlist, keyWaitlist); err != nil {
		return nil, err
	}
	order, err := w.order(ctx)
	if err != nil {
		return nil, err
	}
	w.publishUser(ctx, core.CmdWaitlistJoin, core.WaitlistUserPayload{
		UserID:   userID,
		Waitlist: order,
	})
	log.Info().Str("module", "app.waitlist").Str("user", string(userID)).Msg("joined waitlist")
	return order, nil
}

// InsertAt places userID at pos (clamped to the list bounds), repositioning
// it if already queued. The published event distinguishes a move from a
// fresh join.
func (w *Waitlist) InsertAt(ctx context.Context, actorID, userID domain.UserID, pos int, privileged bool) ([]domain.UserID, error) {
	if !privileged {
		return nil, domain.ErrNotPrivileged
	}
	existed, err := w.state.ListMoveTo(ctx, keyWaitlist, string(userID), pos)
	if err != nil {
		return nil, err
	}
	order, err := w.order(ctx)
	if err != nil {
		return nil, err
	}
	cmd := core.CmdWaitlistJoin
	if existed {
		cmd = core.CmdWaitlistMove
	}
	w.publishUser(ctx, cmd, core.WaitlistUserPayload{
		ModeratorID: actorID,
		UserID:      userID,
		Position:    pos,
		Waitlist:    order,
	})
	return order, nil
}

// Move is InsertAt for users already queued; absent users are an error.
func (w *Waitlist) Move(ctx context.Context, actorID, userID domain.UserID, pos int, privileged bool) ([]domain.UserID, error) {
	if !privileged {
		return nil, domain.ErrNotPrivileged
	}
	order, err := w.order(ctx)
	if err != nil {
		return nil, err
	}
	if !contains(order, userID) {
		return nil, domain.ErrNotInWaitlist
	}
	existed, err := w.state.ListMoveTo(ctx, keyWaitlist, string(userID), pos)
	if err != nil {
		return nil, err
	}
	if !existed {
		// The entry vanished between the check and the move; undo the insert.
		_ = w.state.ListRemove(ctx, keyWaitlist, string(userID))
		return nil, domain.ErrConflict
	}
	order, err = w.order(ctx)
	if err != nil {
		return nil, err
	}
	w.publishUser(ctx, core.CmdWaitlistMove, core.WaitlistUserPayload{
		ModeratorID: actorID,
		UserID:      userID,
		Position:    pos,
		Waitlist:    order,
	})
	return order, nil
}

// Remove takes userID out of the queue. Self-removal is always allowed;
// removing someone else needs privilege.
func (w *Waitlist) Remove(ctx context.Context, actorID, userID domain.UserID, privileged bool) ([]domain.UserID, error) {
	self := actorID == userID
	if !self && !privileged {
		return nil, domain.ErrNotPrivileged
	}
	if err := w.state.ListRemove(ctx, keyWaitlist, string(userID)); err != nil {
		return nil, err
	}
	order, err := w.order(ctx)
	if err != nil {
		return nil, err
	}
	payload := core.WaitlistUserPayload{UserID: userID, Waitlist: order}
	cmd := core.CmdWaitlistLeave
	if !self {
		cmd = core.CmdWaitlistRemove
		payload.ModeratorID = actorID
	}
	w.publishUser(ctx, cmd, payload)
	return order, nil
}

func (w *Waitlist) Clear(ctx context.Context, actorID domain.UserID, privileged bool) error {
	if !privileged {
		return domain.ErrNotPrivileged
	}
	if err := w.state.Del(ctx, keyWaitlist); err != nil {
		return err
	}
	if err := w.state.Publish(ctx, core.CmdWaitlistClear, core.WaitlistClearPayload{ModeratorID: actorID}); err != nil {
		log.Warn().Str("module", "app.waitlist").Err(err).Msg("publish failed")
	}
	log.Info().Str("module", "app.waitlist").Str("moderator", string(actorID)).Msg("waitlist cleared")
	return nil
}

// SetLocked toggles the join lock. Queued entries and rotation are
// unaffected.
func (w *Waitlist) SetLocked(ctx context.Context, actorID domain.UserID, lock, privileged bool) error {
	if !privileged {
		return domain.ErrNotPrivileged
	}
	var err error
	if lock {
		err = w.state.Set(ctx, keyWaitlistLock, "1")
	} else {
		err = w.state.Del(ctx, keyWaitlistLock)
	}
	if err != nil {
		return err
	}
	if err := w.state.Publish(ctx, core.CmdWaitlistLock, core.WaitlistLockPayload{ModeratorID: actorID, Locked: lock}); err != nil {
		log.Warn().Str("module", "app.waitlist").Err(err).Msg("publish failed")
	}
	return nil
}

func (w *Waitlist) Locked(ctx context.Context) (bool, error) {
	val, err := w.state.Get(ctx, keyWaitlistLock)
	return val != "", err
}

func (w *Waitlist) order(ctx context.Context) ([]domain.UserID, error) {
	raw, err := w.state.ListRange(ctx, keyWaitlist)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserID, len(raw))
	for i, v := range raw {
		out[i] = domain.UserID(v)
	}
	return out, nil
}

func (w *Waitlist) publishUser(ctx context.Context, cmd string, payload core.WaitlistUserPayload) {
	if err := w.state.Publish(ctx, cmd, payload); err != nil {
		log.Warn().Str("module", "app.waitlist").Str("command", cmd).Err(err).Msg("publish failed")
	}
}

func contains(list []domain.UserID, id domain.UserID) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
