// Package redisstate backs core.RoomState with redis, so every process
// serving the room shares one waitlist, one booth and one event feed.
package redisstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Stage/internal/core"
)

// Channel carries every room event, matching the command envelope the
// clients already speak.
const Channel = "v1"

const lockRetry = 25 * time.Millisecond

// moveToScript repositions ARGV[1] inside KEYS[1] at index ARGV[2],
// clamped to the list bounds. Returns how many copies were removed first.
var moveToScript = redis.NewScript(`
local removed = redis.call('LREM', KEYS[1], 0, ARGV[1])
local len = redis.call('LLEN', KEYS[1])
local pos = tonumber(ARGV[2])
if pos < 0 then pos = 0 end
if pos >= len then
  redis.call('RPUSH', KEYS[1], ARGV[1])
else
  local pivot = redis.call('LINDEX', KEYS[1], pos)
  redis.call('LINSERT', KEYS[1], 'BEFORE', pivot, ARGV[1])
end
return removed
`)

// releaseScript drops a lease only when the caller still holds it.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`)

type State struct {
	client *redis.Client
}

func New(addr string, db int) (*State, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	log.Info().Str("module", "adapters.redisstate").Str("addr", addr).Msg("connected")
	return &State{client: client}, nil
}

func (s *State) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *State) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *State) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *State) Incr(ctx context.Context, key string) (int64, error) {
	return s.client.Incr(ctx, key).Result()
}

func (s *State) ListRange(ctx context.Context, key string) ([]string, error) {
	return s.client.LRange(ctx, key, 0, -1).Result()
}

func (s *State) ListPopFront(ctx context.Context, key string) (string, error) {
	val, err := s.client.LPop(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (s *State) ListRemove(ctx context.Context, key, value string) error {
	return s.client.LRem(ctx, key, 0, value).Err()
}

func (s *State) ListMoveFront(ctx context.Context, value, to string, from ...string) error {
	pipe := s.client.TxPipeline()
	for _, key := range from {
		pipe.LRem(ctx, key, 0, value)
	}
	pipe.LPush(ctx, to, value)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *State) ListMoveBack(ctx context.Context, value, to string, from ...string) error {
	pipe := s.client.TxPipeline()
	for _, key := range from {
		pipe.LRem(ctx, key, 0, value)
	}
	pipe.RPush(ctx, to, value)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *State) ListMoveTo(ctx context.Context, key, value string, pos int) (bool, error) {
	removed, err := moveToScript.Run(ctx, s.client, []string{key}, value, pos).Int()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

func (s *State) Publish(ctx context.Context, command string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(core.Command{Command: command, Data: raw})
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, Channel, payload).Err()
}

func (s *State) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for {
		ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return "", err
		}
		if ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}

func (s *State) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, s.client, []string{key}, token).Err()
}

func (s *State) Subscribe(ctx context.Context) (<-chan core.Command, func()) {
	sub := s.client.Subscribe(ctx, Channel)
	out := make(chan core.Command, 64)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var cmd core.Command
			if err := json.Unmarshal([]byte(msg.Payload), &cmd); err != nil {
				log.Warn().Str("module", "adapters.redisstate").Err(err).Msg("bad event payload")
				continue
			}
			select {
			case out <- cmd:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() { _ = sub.Close() }
}

func (s *State) Close() error {
	return s.client.Close()
}
