package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/dkeye/Stage/internal/adapters/memstate"
	"github.com/dkeye/Stage/internal/adapters/memstore"
	"github.com/dkeye/Stage/internal/domain"
)

type fixture struct {
	state     *memstate.State
	history   *memstore.HistoryStore
	playlists *memstore.PlaylistStore
	users     *memstore.UserStore
	engine    *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		state:     memstate.New(),
		history:   memstore.NewHistoryStore(),
		playlists: memstore.NewPlaylistStore(),
		users:     memstore.NewUserStore(),
	}
	f.engine = NewEngine(f.state, f.history, f.playlists, f.users)
	t.Cleanup(f.engine.Close)
	return f
}

// addDJ registers a user with an active single-item playlist so they can
// take the booth.
func (f *fixture) addDJ(id string) domain.UserID {
	userID := domain.UserID(id)
	f.users.Put(domain.User{ID: userID, Username: id})
	f.playlists.Put(
		domain.Playlist{ID: domain.PlaylistID("pl-" + id), Owner: userID, Name: id + "'s picks", Active: true},
		domain.PlaylistItem{
			ID: domain.ItemID("item-" + id),
			Media: domain.MediaSnapshot{
				SourceType: "youtube",
				SourceID:   "src-" + id,
				Artist:     "artist " + id,
				Title:      "track " + id,
				Duration:   180,
			},
		},
	)
	return userID
}

// addListener registers a user with no playable media.
func (f *fixture) addListener(id string) domain.UserID {
	userID := domain.UserID(id)
	f.users.Put(domain.User{ID: userID, Username: id})
	return userID
}

func (f *fixture) queue(t *testing.T, ids ...domain.UserID) {
	t.Helper()
	for _, id := range ids {
		if _, err := f.engine.Waitlist.Append(context.Background(), id, false); err != nil {
			t.Fatalf("failed to queue %s: %v", id, err)
		}
	}
}

func (f *fixture) waitlist(t *testing.T) []domain.UserID {
	t.Helper()
	order, err := f.engine.Waitlist.List(context.Background())
	if err != nil {
		t.Fatalf("failed to read waitlist: %v", err)
	}
	return order
}

func (f *fixture) currentDJ(t *testing.T) domain.UserID {
	t.Helper()
	dj, err := f.engine.Scheduler.CurrentDJ(context.Background())
	if err != nil {
		t.Fatalf("failed to read current DJ: %v", err)
	}
	return dj
}

func assertOrder(t *testing.T, got []domain.UserID, want ...domain.UserID) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected waitlist %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected waitlist %v, got %v", want, got)
		}
	}
}

func assertNoDuplicates(t *testing.T, order []domain.UserID) {
	t.Helper()
	seen := make(map[domain.UserID]bool, len(order))
	for _, id := range order {
		if seen[id] {
			t.Fatalf("duplicate entry %s in waitlist %v", id, order)
		}
		seen[id] = true
	}
}

func ids(n int) []domain.UserID {
	out := make([]domain.UserID, n)
	for i := range out {
		out[i] = domain.UserID(fmt.Sprintf("u%d", i))
	}
	return out
}
