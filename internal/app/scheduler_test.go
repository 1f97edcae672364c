package app

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/dkeye/Stage/internal/domain"
)

func TestScheduler(t *testing.T) {
	ctx := context.Background()

	t.Run("AdvanceOnEmptyWaitlist", func(t *testing.T) {
		f := newFixture(t)
		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
		if dj := f.currentDJ(t); dj != "" {
			t.Fatalf("expected empty booth, got DJ %s", dj)
		}
		if n := f.history.Len(); n != 0 {
			t.Fatalf("expected no history entries, got %d", n)
		}
	})

	t.Run("AdvanceHandsOverToHead", func(t *testing.T) {
		f := newFixture(t)
		a, b, c := f.addDJ("a"), f.addDJ("b"), f.addDJ("c")
		f.queue(t, a, b, c)

		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
		if dj := f.currentDJ(t); dj != a {
			t.Fatalf("expected DJ a, got %q", dj)
		}
		assertOrder(t, f.waitlist(t), b, c)

		snap, err := f.engine.Booth.Snapshot(ctx)
		if err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		if snap == nil || snap.UserID != a {
			t.Fatalf("expected snapshot for a, got %+v", snap)
		}
		if snap.Media.Title != "track a" {
			t.Fatalf("expected a's media in snapshot, got %q", snap.Media.Title)
		}
	})

	t.Run("SkipWithRemovePurgesOutgoingDJ", func(t *testing.T) {
		f := newFixture(t)
		a, b, c := f.addDJ("a"), f.addDJ("b"), f.addDJ("c")
		f.queue(t, a, b, c)
		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
		// a re-queues themselves behind the others, then gets evicted.
		f.queue(t, a)

		if err := f.engine.Scheduler.Skip(ctx, "mod", a, "rule violation", AdvanceOpts{Remove: true}); err != nil {
			t.Fatalf("skip failed: %v", err)
		}
		if dj := f.currentDJ(t); dj != b {
			t.Fatalf("expected DJ b after skip, got %q", dj)
		}
		order := f.waitlist(t)
		assertOrder(t, order, c)
		if contains(order, a) {
			t.Fatalf("evicted DJ must not remain queued: %v", order)
		}
	})

	t.Run("ReplaceMovesTargetToHeadAndAdvances", func(t *testing.T) {
		f := newFixture(t)
		b, c := f.addDJ("b"), f.addDJ("c")
		f.queue(t, b, c)

		if err := f.engine.Scheduler.Replace(ctx, "mod", c); err != nil {
			t.Fatalf("replace failed: %v", err)
		}
		if dj := f.currentDJ(t); dj != c {
			t.Fatalf("expected DJ c after replace, got %q", dj)
		}
		assertOrder(t, f.waitlist(t), b)
	})

	t.Run("ReplaceOnEmptyWaitlist", func(t *testing.T) {
		f := newFixture(t)
		err := f.engine.Scheduler.Replace(ctx, "mod", f.addDJ("c"))
		if err != domain.ErrWaitlistEmpty {
			t.Fatalf("expected ErrWaitlistEmpty, got %v", err)
		}
	})

	t.Run("PassesOverUsersWithoutPlayableMedia", func(t *testing.T) {
		f := newFixture(t)
		silent := f.addListener("silent")
		b := f.addDJ("b")
		f.queue(t, silent, b)

		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
		if dj := f.currentDJ(t); dj != b {
			t.Fatalf("expected unresolvable head to be passed over, got DJ %q", dj)
		}
		if n := f.history.Len(); n != 1 {
			t.Fatalf("expected one history entry, got %d", n)
		}
	})

	t.Run("ExhaustedWaitlistSettlesEmpty", func(t *testing.T) {
		f := newFixture(t)
		f.queue(t, f.addListener("x"), f.addListener("y"))
		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
		if dj := f.currentDJ(t); dj != "" {
			t.Fatalf("expected empty booth, got DJ %q", dj)
		}
		if n := f.history.Len(); n != 0 {
			t.Fatalf("expected no history entries, got %d", n)
		}
		assertOrder(t, f.waitlist(t))
	})

	t.Run("SkipIfCurrentDJ", func(t *testing.T) {
		f := newFixture(t)
		a, b := f.addDJ("a"), f.addDJ("b")
		f.queue(t, a, b)
		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}

		// Someone else disconnecting must not end a's turn.
		if err := f.engine.Scheduler.SkipIfCurrentDJ(ctx, b); err != nil {
			t.Fatalf("guarded skip failed: %v", err)
		}
		if dj := f.currentDJ(t); dj != a {
			t.Fatalf("unrelated disconnect ended the turn, DJ now %q", dj)
		}

		if err := f.engine.Scheduler.SkipIfCurrentDJ(ctx, a); err != nil {
			t.Fatalf("guarded skip failed: %v", err)
		}
		if dj := f.currentDJ(t); dj != b {
			t.Fatalf("expected DJ b after disconnect skip, got %q", dj)
		}
	})

	t.Run("HistorySnapshotIsolatedFromPlaylistEdits", func(t *testing.T) {
		f := newFixture(t)
		a := f.addDJ("a")
		f.queue(t, a)
		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}

		f.playlists.SetItemMedia("pl-a", "item-a", domain.MediaSnapshot{
			SourceType: "youtube",
			SourceID:   "rewritten",
			Artist:     "someone else",
			Title:      "edited after play",
			Duration:   10,
		})

		snap, err := f.engine.Booth.Snapshot(ctx)
		if err != nil || snap == nil {
			t.Fatalf("snapshot failed: %v (%+v)", err, snap)
		}
		if snap.Media.Title != "track a" || snap.Media.SourceID != "src-a" {
			t.Fatalf("history snapshot changed with the playlist: %+v", snap.Media)
		}
	})

	t.Run("StaleCompletionTimerIsANoOp", func(t *testing.T) {
		f := newFixture(t)
		a, b := f.addDJ("a"), f.addDJ("b")
		f.queue(t, a, b)
		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
		// A timer armed for a turn that has long ended.
		if err := f.engine.Scheduler.completeTurn(ctx, -1); err != nil {
			t.Fatalf("stale completion errored: %v", err)
		}
		if dj := f.currentDJ(t); dj != a {
			t.Fatalf("stale timer ended the turn, DJ now %q", dj)
		}
	})

	t.Run("ManualSkipRacingCompletionTimer", func(t *testing.T) {
		f := newFixture(t)
		a, b := f.addDJ("a"), f.addDJ("b")
		f.queue(t, a, b)
		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
		raw, err := f.state.Get(ctx, keyTurn)
		if err != nil {
			t.Fatalf("failed to read turn: %v", err)
		}

		turn, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			t.Fatalf("unexpected turn value %q", raw)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
				t.Errorf("manual advance failed: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if err := f.engine.Scheduler.completeTurn(ctx, turn); err != nil {
				t.Errorf("timer advance failed: %v", err)
			}
		}()
		wg.Wait()

		// However the race resolves, a's turn ends exactly once: one entry
		// for b, never a duplicate. When the timer won, the manual advance
		// legitimately ended b's turn against an empty waitlist.
		if n := f.history.Len(); n != 2 {
			t.Fatalf("expected exactly two history entries (a and b), got %d", n)
		}
		if dj := f.currentDJ(t); dj != b && dj != "" {
			t.Fatalf("unexpected DJ %q after the race", dj)
		}
	})
}
