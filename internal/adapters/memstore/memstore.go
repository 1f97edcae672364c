// Package memstore provides in-memory history, playlist and user stores.
// They mirror the sqlite adapters for tests and single-node dev runs.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/dkeye/Stage/internal/domain"
)

type HistoryStore struct {
	mu      sync.RWMutex
	entries map[domain.HistoryID]domain.HistoryEntry
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{entries: make(map[domain.HistoryID]domain.HistoryEntry)}
}

func (s *HistoryStore) Create(ctx context.Context, entry *domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = *entry
	return nil
}

func (s *HistoryStore) ByID(ctx context.Context, id domain.HistoryID) (*domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrHistoryNotFound
	}
	return &entry, nil
}

func (s *HistoryStore) Recent(ctx context.Context, offset, limit int) ([]*domain.HistoryEntry, error) {
	s.mu.RLock()
	all := make([]domain.HistoryEntry, 0, len(s.entries))
	for _, e := range s.entries {
		all = append(all, e)
	}
	s.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool { return all[i].Played.After(all[j].Played) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	out := make([]*domain.HistoryEntry, len(all))
	for i := range all {
		entry := all[i]
		out[i] = &entry
	}
	return out, nil
}

func (s *HistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

type playlistRecord struct {
	meta  domain.Playlist
	items []domain.PlaylistItem
}

type PlaylistStore struct {
	mu        sync.Mutex
	playlists map[domain.PlaylistID]*playlistRecord
}

func NewPlaylistStore() *PlaylistStore {
	return &PlaylistStore{playlists: make(map[domain.PlaylistID]*playlistRecord)}
}

// Put registers a playlist with its items, replacing any previous state.
func (s *PlaylistStore) Put(meta domain.Playlist, items ...domain.PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta.Size = len(items)
	s.playlists[meta.ID] = &playlistRecord{meta: meta, items: append([]domain.PlaylistItem(nil), items...)}
}

// SetItemMedia edits a stored item in place. Tests use it to prove history
// snapshots are isolated from later playlist edits.
func (s *PlaylistStore) SetItemMedia(playlist domain.PlaylistID, item domain.ItemID, media domain.MediaSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.playlists[playlist]
	if !ok {
		return
	}
	for i := range rec.items {
		if rec.items[i].ID == item {
			rec.items[i].Media = media
		}
	}
}

func (s *PlaylistStore) ByID(ctx context.Context, id domain.PlaylistID) (*domain.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.playlists[id]
	if !ok {
		return nil, domain.ErrPlaylistNotFound
	}
	meta := rec.meta
	meta.Size = len(rec.items)
	return &meta, nil
}

func (s *PlaylistStore) ActiveByUser(ctx context.Context, user domain.UserID) (*domain.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.playlists {
		if rec.meta.Owner == user && rec.meta.Active {
			meta := rec.meta
			meta.Size = len(rec.items)
			return &meta, nil
		}
	}
	return nil, domain.ErrPlaylistNotFound
}

func (s *PlaylistStore) NextMedia(ctx context.Context, id domain.PlaylistID) (domain.ItemID, *domain.MediaSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.playlists[id]
	if !ok || len(rec.items) == 0 {
		return "", nil, domain.ErrPlaylistNotFound
	}
	head := rec.items[0]
	rec.items = append(rec.items[1:], head)
	media := head.Media
	return head.ID, &media, nil
}

func (s *PlaylistStore) AppendItem(ctx context.Context, id domain.PlaylistID, item *domain.PlaylistItem) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.playlists[id]
	if !ok {
		return 0, domain.ErrPlaylistNotFound
	}
	rec.items = append(rec.items, *item)
	return len(rec.items), nil
}

type UserStore struct {
	mu    sync.RWMutex
	users map[domain.UserID]domain.User
}

func NewUserStore(users ...domain.User) *UserStore {
	s := &UserStore{users: make(map[domain.UserID]domain.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *UserStore) Put(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

func (s *UserStore) Delete(id domain.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

func (s *UserStore) ByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}
