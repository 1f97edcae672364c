package app

import (
	"context"
	"errors"
	"testing"

	"github.com/dkeye/Stage/internal/domain"
)

func TestFavorites(t *testing.T) {
	ctx := context.Background()

	// start plays a's track and gives u1 a playlist of their own.
	start := func(t *testing.T) (*fixture, domain.HistoryID, domain.UserID, domain.PlaylistID) {
		t.Helper()
		f := newFixture(t)
		a := f.addDJ("a")
		u1 := f.addListener("u1")
		f.playlists.Put(domain.Playlist{ID: "pl-u1", Owner: u1, Name: "grabs"})
		f.queue(t, a)
		if err := f.engine.Scheduler.Advance(ctx, AdvanceOpts{}); err != nil {
			t.Fatalf("advance failed: %v", err)
		}
		snap, err := f.engine.Booth.Snapshot(ctx)
		if err != nil || snap == nil {
			t.Fatalf("snapshot failed: %v (%+v)", err, snap)
		}
		return f, snap.HistoryID, u1, "pl-u1"
	}

	playlistSize := func(t *testing.T, f *fixture, id domain.PlaylistID) int {
		t.Helper()
		pl, err := f.playlists.ByID(ctx, id)
		if err != nil {
			t.Fatalf("failed to read playlist: %v", err)
		}
		return pl.Size
	}

	t.Run("CopiesTheSnapshotIntoThePlaylist", func(t *testing.T) {
		f, historyID, u1, playlistID := start(t)
		res, err := f.engine.Favorites.Grab(ctx, u1, playlistID, historyID)
		if err != nil {
			t.Fatalf("grab failed: %v", err)
		}
		if res.PlaylistSize != 1 || len(res.Added) != 1 {
			t.Fatalf("unexpected result %+v", res)
		}
		if res.Added[0].Media.Title != "track a" {
			t.Fatalf("expected a copy of the played media, got %+v", res.Added[0].Media)
		}

		stats, err := f.engine.Votes.Counts(ctx)
		if err != nil {
			t.Fatalf("failed to read tallies: %v", err)
		}
		if len(stats.Favorites) != 1 || stats.Favorites[0] != u1 {
			t.Fatalf("expected favorites [u1], got %v", stats.Favorites)
		}
	})

	t.Run("GrabbingTwiceKeepsOneTallyEntry", func(t *testing.T) {
		f, historyID, u1, playlistID := start(t)
		for i := 0; i < 2; i++ {
			if _, err := f.engine.Favorites.Grab(ctx, u1, playlistID, historyID); err != nil {
				t.Fatalf("grab failed: %v", err)
			}
		}
		stats, err := f.engine.Votes.Counts(ctx)
		if err != nil {
			t.Fatalf("failed to read tallies: %v", err)
		}
		if len(stats.Favorites) != 1 {
			t.Fatalf("expected deduped favorites, got %v", stats.Favorites)
		}
		// The playlist copy itself is appended each time.
		if size := playlistSize(t, f, playlistID); size != 2 {
			t.Fatalf("expected playlist size 2, got %d", size)
		}
	})

	t.Run("UnknownHistoryEntry", func(t *testing.T) {
		f, _, u1, playlistID := start(t)
		_, err := f.engine.Favorites.Grab(ctx, u1, playlistID, "missing")
		if !errors.Is(err, domain.ErrHistoryNotFound) {
			t.Fatalf("expected ErrHistoryNotFound, got %v", err)
		}
		if size := playlistSize(t, f, playlistID); size != 0 {
			t.Fatalf("failed grab mutated the playlist, size %d", size)
		}
	})

	t.Run("OwnPlayIsForbidden", func(t *testing.T) {
		f, historyID, _, _ := start(t)
		f.playlists.Put(domain.Playlist{ID: "pl-a2", Owner: "a", Name: "own grabs"})
		_, err := f.engine.Favorites.Grab(ctx, "a", "pl-a2", historyID)
		if !errors.Is(err, domain.ErrSelfFavorite) {
			t.Fatalf("expected ErrSelfFavorite, got %v", err)
		}
		if size := playlistSize(t, f, "pl-a2"); size != 0 {
			t.Fatalf("failed grab mutated the playlist, size %d", size)
		}
	})

	t.Run("ForeignPlaylistIsForbidden", func(t *testing.T) {
		f, historyID, _, playlistID := start(t)
		u2 := f.addListener("u2")
		_, err := f.engine.Favorites.Grab(ctx, u2, playlistID, historyID)
		if !errors.Is(err, domain.ErrNotOwner) {
			t.Fatalf("expected ErrNotOwner, got %v", err)
		}
		if size := playlistSize(t, f, playlistID); size != 0 {
			t.Fatalf("failed grab mutated the playlist, size %d", size)
		}
	})

	t.Run("UnknownPlaylist", func(t *testing.T) {
		f, historyID, u1, _ := start(t)
		_, err := f.engine.Favorites.Grab(ctx, u1, "missing", historyID)
		if !errors.Is(err, domain.ErrPlaylistNotFound) {
			t.Fatalf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}
