// Package memstate is an in-memory core.RoomState for tests and
// single-node runs. Same contract as redisstate, no network.
package memstate

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkeye/Stage/internal/core"
)

const lockRetry = time.Millisecond

type State struct {
	mu      sync.Mutex
	scalars map[string]string
	lists   map[string][]string
	locks   map[string]string
	subs    map[int]chan core.Command
	nextSub int
}

func New() *State {
	return &State{
		scalars: make(map[string]string),
		lists:   make(map[string][]string),
		locks:   make(map[string]string),
		subs:    make(map[int]chan core.Command),
	}
}

func (s *State) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scalars[key], nil
}

func (s *State) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scalars[key] = value
	return nil
}

func (s *State) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.scalars, key)
		delete(s.lists, key)
	}
	return nil
}

func (s *State) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, _ := strconv.ParseInt(s.scalars[key], 10, 64)
	n++
	s.scalars[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (s *State) ListRange(ctx context.Context, key string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lists[key]))
	copy(out, s.lists[key])
	return out, nil
}

func (s *State) ListPopFront(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[key]
	if len(list) == 0 {
		return "", nil
	}
	head := list[0]
	s.lists[key] = list[1:]
	return head, nil
}

func (s *State) ListRemove(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(key, value)
	return nil
}

func (s *State) ListMoveFront(ctx context.Context, value, to string, from ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range from {
		s.removeLocked(key, value)
	}
	s.lists[to] = append([]string{value}, s.lists[to]...)
	return nil
}

func (s *State) ListMoveBack(ctx context.Context, value, to string, from ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range from {
		s.removeLocked(key, value)
	}
	s.lists[to] = append(s.lists[to], value)
	return nil
}

func (s *State) ListMoveTo(ctx context.Context, key, value string, pos int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existed := s.removeLocked(key, value)
	list := s.lists[key]
	if pos < 0 {
		pos = 0
	}
	if pos > len(list) {
		pos = len(list)
	}
	list = append(list, "")
	copy(list[pos+1:], list[pos:])
	list[pos] = value
	s.lists[key] = list
	return existed, nil
}

func (s *State) removeLocked(key, value string) bool {
	list := s.lists[key]
	out := list[:0]
	removed := false
	for _, v := range list {
		if v == value {
			removed = true
			continue
		}
		out = append(out, v)
	}
	s.lists[key] = out
	return removed
}

func (s *State) Publish(ctx context.Context, command string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	cmd := core.Command{Command: command, Data: raw}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- cmd:
		default: // slow subscriber, drop
		}
	}
	return nil
}

func (s *State) Subscribe(ctx context.Context) (<-chan core.Command, func()) {
	ch := make(chan core.Command, 64)
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
}

func (s *State) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for {
		s.mu.Lock()
		if _, held := s.locks[key]; !held {
			s.locks[key] = token
			s.mu.Unlock()
			return token, nil
		}
		s.mu.Unlock()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}

func (s *State) Release(ctx context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[key] == token {
		delete(s.locks, key)
	}
	return nil
}

func (s *State) Close() error { return nil }
