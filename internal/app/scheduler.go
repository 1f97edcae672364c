package app

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Stage/internal/core"
	"github.com/dkeye/Stage/internal/domain"
)

const advanceLockTTL = 10 * time.Second

// AdvanceOpts controls how the outgoing DJ is treated. Remove purges them
// from the waitlist entirely (moderator eviction); otherwise re-queueing is
// up to the caller.
type AdvanceOpts struct {
	Remove bool
}

// Scheduler drives the booth state machine: Empty -> Performing -> Empty.
// Advance is serialized per room through the store's advance lock, and the
// completion timer for each play carries the turn number it was armed for,
// so a timer racing a manual skip resolves to exactly one transition.
type Scheduler struct {
	state     core.RoomState
	history   core.HistoryStore
	playlists core.PlaylistStore
	votes     *Votes
	clock     func() time.Time

	mu    sync.Mutex
	timer *time.Timer
}

func NewScheduler(state core.RoomState, history core.HistoryStore, playlists core.PlaylistStore, votes *Votes) *Scheduler {
	return &Scheduler{
		state:     state,
		history:   history,
		playlists: playlists,
		votes:     votes,
		clock:     time.Now,
	}
}

func (s *Scheduler) CurrentDJ(ctx context.Context) (domain.UserID, error) {
	dj, err := s.state.Get(ctx, keyCurrentDJ)
	return domain.UserID(dj), err
}

// Advance ends the current turn, if any, and hands the booth to the next
// entrant with playable media. Candidates whose media cannot be resolved
// are passed over; an exhausted waitlist settles the booth empty.
func (s *Scheduler) Advance(ctx context.Context, opts AdvanceOpts) error {
	return s.advance(ctx, opts, 0)
}

// Skip publishes the moderation event and advances. The target is an
// annotation on the event only; the advance works off booth state alone.
func (s *Scheduler) Skip(ctx context.Context, moderatorID, userID domain.UserID, reason string, opts AdvanceOpts) error {
	if err := s.state.Publish(ctx, core.CmdSkip, core.SkipPayload{
		ModeratorID: moderatorID,
		UserID:      userID,
		Reason:      reason,
	}); err != nil {
		log.Warn().Str("module", "app.scheduler").Err(err).Msg("publish failed")
	}
	return s.advance(ctx, opts, 0)
}

// SkipIfCurrentDJ advances only when userID holds the booth. Used on
// disconnects so an unrelated turn is never cut short.
func (s *Scheduler) SkipIfCurrentDJ(ctx context.Context, userID domain.UserID) error {
	dj, err := s.CurrentDJ(ctx)
	if err != nil {
		return err
	}
	if dj != userID {
		return nil
	}
	return s.advance(ctx, AdvanceOpts{Remove: true}, 0)
}

// Replace forces targetID to the head of the waitlist, inserting them when
// absent, then advances into their turn.
func (s *Scheduler) Replace(ctx context.Context, moderatorID, targetID domain.UserID) error {
	order, err := s.state.ListRange(ctx, keyWaitlist)
	if err != nil {
		return err
	}
	if len(order) == 0 {
		return domain.ErrWaitlistEmpty
	}
	if _, err := s.state.ListMoveTo(ctx, keyWaitlist, string(targetID), 0); err != nil {
		return err
	}
	if err := s.state.Publish(ctx, core.CmdBoothReplace, core.BoothReplacePayload{
		ModeratorID: moderatorID,
		UserID:      targetID,
	}); err != nil {
		log.Warn().Str("module", "app.scheduler").Err(err).Msg("publish failed")
	}
	return s.advance(ctx, AdvanceOpts{}, 0)
}

// advance is the only writer of the booth keys. When expect is non-zero the
// call came from a completion timer; it no-ops if the turn it was armed for
// has already ended.
func (s *Scheduler) advance(ctx context.Context, opts AdvanceOpts, expect int64) error {
	token, err := s.state.Acquire(ctx, keyAdvanceLock, advanceLockTTL)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.state.Release(context.WithoutCancel(ctx), keyAdvanceLock, token); err != nil {
			log.Warn().Str("module", "app.scheduler").Err(err).Msg("lock release failed")
		}
	}()

	if expect != 0 {
		raw, err := s.state.Get(ctx, keyTurn)
		if err != nil {
			return err
		}
		if current, _ := strconv.ParseInt(raw, 10, 64); current != expect {
			log.Debug().Str("module", "app.scheduler").Int64("armed", expect).Int64("current", current).Msg("stale completion timer")
			return nil
		}
	}

	turn, err := s.state.Incr(ctx, keyTurn)
	if err != nil {
		return err
	}

	if opts.Remove {
		if dj, err := s.state.Get(ctx, keyCurrentDJ); err != nil {
			return err
		} else if dj != "" {
			if err := s.state.ListRemove(ctx, keyWaitlist, dj); err != nil {
				return err
			}
		}
	}
	if err := s.votes.reset(ctx); err != nil {
		return err
	}

	for {
		next, err := s.state.ListPopFront(ctx, keyWaitlist)
		if err != nil {
			return err
		}
		if next == "" {
			return s.settleEmpty(ctx)
		}
		dj := domain.UserID(next)

		playlist, err := s.playlists.ActiveByUser(ctx, dj)
		if err != nil {
			log.Debug().Str("module", "app.scheduler").Str("user", next).Err(err).Msg("no active playlist, passing over")
			continue
		}
		itemID, media, err := s.playlists.NextMedia(ctx, playlist.ID)
		if err != nil {
			log.Debug().Str("module", "app.scheduler").Str("user", next).Err(err).Msg("no playable media, passing over")
			continue
		}

		entry := domain.NewHistoryEntry(dj, playlist.ID, itemID, *media, s.clock())
		if err := s.history.Create(ctx, entry); err != nil {
			log.Error().Str("module", "app.scheduler").Str("user", next).Err(err).Msg("history write failed, passing over")
			continue
		}

		if err := s.setBooth(ctx, entry); err != nil {
			return err
		}
		if err := s.state.Publish(ctx, core.CmdAdvance, core.AdvancePayload{
			HistoryID:  entry.ID,
			UserID:     entry.User,
			PlaylistID: entry.Playlist,
			Media:      entry.Media,
			PlayedAt:   entry.Played,
		}); err != nil {
			log.Warn().Str("module", "app.scheduler").Err(err).Msg("publish failed")
		}
		s.armTimer(turn, media.PlayDuration())
		log.Info().Str("module", "app.scheduler").Str("dj", next).Str("history", string(entry.ID)).Int64("turn", turn).Msg("play started")
		return nil
	}
}

// setBooth writes both booth pointers; a failure halfway rolls back to the
// empty state rather than leaving a dangling DJ.
func (s *Scheduler) setBooth(ctx context.Context, entry *domain.HistoryEntry) error {
	if err := s.state.Set(ctx, keyHistoryID, string(entry.ID)); err != nil {
		_ = s.state.Del(ctx, keyHistoryID, keyCurrentDJ)
		return err
	}
	if err := s.state.Set(ctx, keyCurrentDJ, string(entry.User)); err != nil {
		_ = s.state.Del(ctx, keyHistoryID, keyCurrentDJ)
		return err
	}
	return nil
}

func (s *Scheduler) settleEmpty(ctx context.Context) error {
	if err := s.state.Del(ctx, keyCurrentDJ, keyHistoryID); err != nil {
		return err
	}
	if err := s.state.Publish(ctx, core.CmdAdvance, (*core.AdvancePayload)(nil)); err != nil {
		log.Warn().Str("module", "app.scheduler").Err(err).Msg("publish failed")
	}
	log.Info().Str("module", "app.scheduler").Msg("booth empty")
	return nil
}

// armTimer schedules the natural end of the play. The old timer, if any, is
// stopped as a courtesy; staleness is enforced by the turn tag, not the
// handle.
func (s *Scheduler) armTimer(turn int64, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, func() {
		ctx, cancel := context.WithTimeout(context.Background(), advanceLockTTL)
		defer cancel()
		if err := s.completeTurn(ctx, turn); err != nil {
			log.Error().Str("module", "app.scheduler").Int64("turn", turn).Err(err).Msg("completion advance failed")
		}
	})
}

// completeTurn is the completion-timer callback for the given turn.
func (s *Scheduler) completeTurn(ctx context.Context, turn int64) error {
	return s.advance(ctx, AdvanceOpts{}, turn)
}

// Stop cancels any armed completion timer. For shutdown only; it does not
// end the current turn.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
