package core

import (
	"context"
	"time"
)

// RoomState is the ephemeral store shared by all process instances of the
// room: scalar keys, ordered lists and a pub/sub feed. Backed by redis in
// production; a memory implementation exists for tests and single-node use.
//
// Every method is a single atomic round trip. Callers never compose
// read-modify-write sequences out of these; multi-key moves are primitives
// here so the store can run them in one transaction.
type RoomState interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)

	ListRange(ctx context.Context, key string) ([]string, error)
	ListPopFront(ctx context.Context, key string) (string, error)
	ListRemove(ctx context.Context, key, value string) error

	// ListMoveFront removes value from every key in from, then pushes it to
	// the front of to, atomically. ListMoveBack is the same with a tail push.
	ListMoveFront(ctx context.Context, value, to string, from ...string) error
	ListMoveBack(ctx context.Context, value, to string, from ...string) error

	// ListMoveTo repositions value inside key at pos (clamped to the list
	// bounds), inserting it when absent. Reports whether it was present.
	ListMoveTo(ctx context.Context, key, value string, pos int) (bool, error)

	Publish(ctx context.Context, command string, data any) error

	// Acquire takes a lease on key, spinning until it is free or ctx ends.
	// Release only drops the lease when token still matches.
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Release(ctx context.Context, key, token string) error

	Close() error
}

// EventSource is the receiving side of the pub/sub feed. Implemented by the
// same adapters as RoomState; split off so fanout code asks for no more
// than it needs.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan Command, func())
}
