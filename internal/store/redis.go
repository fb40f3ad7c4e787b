package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/footycards/attax-backend/internal/engine"
)

// casScript writes the session JSON only when the stored version still
// matches the caller's. Returns the new version, 0 on conflict, -1 when the
// key is gone.
var casScript = redis.NewScript(`
local key = KEYS[1]
local expected = tonumber(ARGV[1])
local data = ARGV[2]
local ttl = tonumber(ARGV[3])

local ver = redis.call('HGET', key, 'ver')
if not ver then
  return -1
end
if tonumber(ver) ~= expected then
  return 0
end

local next = expected + 1
redis.call('HSET', key, 'ver', next, 'data', data)
if ttl > 0 then
  redis.call('EXPIRE', key, ttl)
end
return next
`)

var createScript = redis.NewScript(`
local key = KEYS[1]
local data = ARGV[1]
local ttl = tonumber(ARGV[2])

if redis.call('EXISTS', key) == 1 then
  return 0
end
redis.call('HSET', key, 'ver', 1, 'data', data)
if ttl > 0 then
  redis.call('EXPIRE', key, ttl)
end
return 1
`)

// Redis is a SessionStore on a shared Redis, for multi-node deployments.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func sessionKey(id string) string { return "game:" + id }

func (r *Redis) Create(ctx context.Context, s engine.Session) (uint64, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return 0, fmt.Errorf("encode session: %w", err)
	}
	ok, err := createScript.Run(ctx, r.client,
		[]string{sessionKey(s.ID)}, data, int(r.ttl.Seconds())).Int()
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	if ok == 0 {
		return 0, ErrAlreadyExists
	}
	return 1, nil
}

func (r *Redis) Get(ctx context.Context, id string) (engine.Session, uint64, error) {
	vals, err := r.client.HMGet(ctx, sessionKey(id), "ver", "data").Result()
	if err != nil {
		return engine.Session{}, 0, fmt.Errorf("get session: %w", err)
	}
	if vals[0] == nil || vals[1] == nil {
		return engine.Session{}, 0, ErrNotFound
	}
	var version uint64
	if _, err := fmt.Sscanf(vals[0].(string), "%d", &version); err != nil {
		return engine.Session{}, 0, fmt.Errorf("parse session version: %w", err)
	}
	var s engine.Session
	if err := json.Unmarshal([]byte(vals[1].(string)), &s); err != nil {
		return engine.Session{}, 0, fmt.Errorf("decode session: %w", err)
	}
	return s, version, nil
}

func (r *Redis) Put(ctx context.Context, id string, expected uint64, s engine.Session) (uint64, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return 0, fmt.Errorf("encode session: %w", err)
	}
	res, err := casScript.Run(ctx, r.client,
		[]string{sessionKey(id)}, expected, data, int(r.ttl.Seconds())).Int64()
	if err != nil {
		return 0, fmt.Errorf("put session: %w", err)
	}
	switch res {
	case -1:
		return 0, ErrNotFound
	case 0:
		return 0, ErrVersionConflict
	default:
		return uint64(res), nil
	}
}
