package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// recordScript keeps one sorted set per key, scored by hit time in
// milliseconds. Trimming, counting and adding run atomically.
var recordScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, member)
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, window)

local oldest = now
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
	oldest = tonumber(first[2])
end
return {allowed, count, oldest}
`)

// RedisStore shares hits between instances.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Record(ctx context.Context, key string, now time.Time, win time.Duration, limit int) (Hit, error) {
	id := uuid.NewString()
	res, err := recordScript.Run(ctx, s.client, []string{s.prefix + key},
		now.UnixMilli(), win.Milliseconds(), limit, id,
	).Int64Slice()
	if err != nil {
		return Hit{}, fmt.Errorf("failed to record hit: %w", err)
	}
	if len(res) != 3 {
		return Hit{}, fmt.Errorf("failed to record hit: unexpected reply %v", res)
	}

	hit := Hit{
		Allowed: res[0] == 1,
		Count:   int(res[1]),
		Oldest:  time.UnixMilli(res[2]),
	}
	if hit.Allowed {
		hit.ID = id
	}
	return hit, nil
}

func (s *RedisStore) Refund(ctx context.Context, key, id string) error {
	if err := s.client.ZRem(ctx, s.prefix+key, id).Err(); err != nil {
		return fmt.Errorf("failed to refund hit: %w", err)
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to reset key: %w", err)
	}
	return nil
}
