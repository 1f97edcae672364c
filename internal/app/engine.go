package app

import (
	"github.com/dkeye/Stage/internal/core"
)

// Engine bundles the rotation services around one shared room state. The
// HTTP layer and the disconnect hooks only ever talk to this.
type Engine struct {
	Waitlist  *Waitlist
	Votes     *Votes
	Scheduler *Scheduler
	Favorites *Favorites
	Booth     *Booth
}

func NewEngine(state core.RoomState, history core.HistoryStore, playlists core.PlaylistStore, users core.UserStore) *Engine {
	votes := NewVotes(state)
	return &Engine{
		Waitlist:  NewWaitlist(state),
		Votes:     votes,
		Scheduler: NewScheduler(state, history, playlists, votes),
		Favorites: NewFavorites(state, history, playlists),
		Booth:     NewBooth(state, history, users, votes),
	}
}

// Close stops background work. Shared state is left intact so another
// process instance can pick the room up.
func (e *Engine) Close() {
	e.Scheduler.Stop()
}
