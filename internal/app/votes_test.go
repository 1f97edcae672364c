package app

import (
	"context"
	"testing"

	"github.com/dkeye/Stage/internal/domain"
)

func TestVotes(t *testing.T) {
	ctx := context.Background()

	// start puts a on stage with u1/u2 listening.
	start := func(t *testing.T) (*fixture, domain.UserID, domain.UserID, domain.UserID) {
		t.Helper()
		f := newFixture(t)
		a := f.addDJ("a")
		u1, u2 := f.addListener("u1"), f.addListener("u2")
		f.queue(t, a)
		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
		return f, a, u1, u2
	}

	stats := func(t *testing.T, f *fixture) (up, down []domain.UserID) {
		t.Helper()
		s, err := f.engine.Votes.Counts(ctx)
		if err != nil {
			t.Fatalf("failed to read tallies: %v", err)
		}
		return s.Upvotes, s.Downvotes
	}

	t.Run("SwitchingSidesMovesTheVote", func(t *testing.T) {
		f, _, u1, _ := start(t)
		if err := f.engine.Votes.Cast(ctx, u1, 1); err != nil {
			t.Fatalf("upvote failed: %v", err)
		}
		if err := f.engine.Votes.Cast(ctx, u1, -1); err != nil {
			t.Fatalf("downvote failed: %v", err)
		}
		up, down := stats(t, f)
		if len(up) != 0 {
			t.Fatalf("voter still in upvotes after switching: %v", up)
		}
		if len(down) != 1 || down[0] != u1 {
			t.Fatalf("expected downvotes [u1], got %v", down)
		}
	})

	t.Run("RepeatVoteIsIgnored", func(t *testing.T) {
		f, _, u1, _ := start(t)
		for i := 0; i < 3; i++ {
			if err := f.engine.Votes.Cast(ctx, u1, 1); err != nil {
				t.Fatalf("upvote failed: %v", err)
			}
		}
		up, _ := stats(t, f)
		if len(up) != 1 {
			t.Fatalf("expected a single upvote, got %v", up)
		}
	})

	t.Run("SelfVoteIsANoOp", func(t *testing.T) {
		f, a, _, _ := start(t)
		if err := f.engine.Votes.Cast(ctx, a, 1); err != nil {
			t.Fatalf("self vote errored: %v", err)
		}
		up, down := stats(t, f)
		if len(up) != 0 || len(down) != 0 {
			t.Fatalf("self vote changed tallies: up=%v down=%v", up, down)
		}
	})

	t.Run("EmptyBoothIsANoOp", func(t *testing.T) {
		f := newFixture(t)
		u1 := f.addListener("u1")
		if err := f.engine.Votes.Cast(ctx, u1, 1); err != nil {
			t.Fatalf("vote on empty booth errored: %v", err)
		}
		up, _ := stats(t, f)
		if len(up) != 0 {
			t.Fatalf("vote recorded with no performance: %v", up)
		}
	})

	t.Run("LatestVoterIsFirst", func(t *testing.T) {
		f, _, u1, u2 := start(t)
		if err := f.engine.Votes.Cast(ctx, u1, 1); err != nil {
			t.Fatalf("upvote failed: %v", err)
		}
		if err := f.engine.Votes.Cast(ctx, u2, 1); err != nil {
			t.Fatalf("upvote failed: %v", err)
		}
		up, _ := stats(t, f)
		if len(up) != 2 || up[0] != u2 || up[1] != u1 {
			t.Fatalf("expected recency order [u2 u1], got %v", up)
		}
	})

	t.Run("TalliesClearOnNextTurn", func(t *testing.T) {
		f, _, u1, _ := start(t)
		b := f.addDJ("b")
		f.queue(t, b)
		if err := f.engine.Votes.Cast(ctx, u1, 1); err != nil {
			t.Fatalf("upvote failed: %v", err)
		}
		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
		up, down := stats(t, f)
		if len(up) != 0 || len(down) != 0 {
			t.Fatalf("tallies survived the turn boundary: up=%v down=%v", up, down)
		}
	})
}
