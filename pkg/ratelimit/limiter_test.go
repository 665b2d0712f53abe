package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alqudsguide/backend/pkg/ratelimit"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRedisStore(t *testing.T) *ratelimit.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return ratelimit.NewRedisStore(client)
}

func stores(t *testing.T) map[string]ratelimit.Store {
	t.Helper()
	mem := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })
	return map[string]ratelimit.Store{
		"memory": mem,
		"redis":  newRedisStore(t),
	}
}

func TestNew(t *testing.T) {
	t.Parallel()
	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	_, err := ratelimit.New(nil, 5, time.Minute)
	assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)

	_, err = ratelimit.New(store, 0, time.Minute)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)

	_, err = ratelimit.New(store, 5, 0)
	assert.ErrorIs(t, err, ratelimit.ErrInvalidInterval)

	l, err := ratelimit.New(store, 5, time.Minute)
	require.NoError(t, err)
	_, err = l.Allow(context.Background(), "")
	assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)
}

func TestLimiter(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			t.Run("window", func(t *testing.T) {
				clk := newClock()
				l, err := ratelimit.New(store, 5, 15*time.Minute,
					ratelimit.WithPrefix("window"), ratelimit.WithClock(clk.Now))
				require.NoError(t, err)

				for i := range 5 {
					res, err := l.Allow(ctx, "10.0.0.1")
					require.NoError(t, err)
					assert.True(t, res.Allowed)
					assert.Equal(t, 4-i, res.Remaining)
					clk.Advance(time.Minute)
				}

				res, err := l.Allow(ctx, "10.0.0.1")
				require.NoError(t, err)
				assert.False(t, res.Allowed)
				assert.Equal(t, 0, res.Remaining)
				assert.Equal(t, 10*time.Minute, res.RetryAfter(clk.Now()))

				other, err := l.Allow(ctx, "10.0.0.2")
				require.NoError(t, err)
				assert.True(t, other.Allowed)

				// The first hit slides out of the window.
				clk.Advance(10*time.Minute + time.Second)
				res, err = l.Allow(ctx, "10.0.0.1")
				require.NoError(t, err)
				assert.True(t, res.Allowed)
			})

			t.Run("refund", func(t *testing.T) {
				clk := newClock()
				l, err := ratelimit.New(store, 2, time.Minute,
					ratelimit.WithPrefix("refund"), ratelimit.WithClock(clk.Now))
				require.NoError(t, err)

				for range 10 {
					res, err := l.Allow(ctx, "k")
					require.NoError(t, err)
					require.True(t, res.Allowed)
					require.NoError(t, l.Refund(ctx, res))
				}

				_, err = l.Allow(ctx, "k")
				require.NoError(t, err)
				_, err = l.Allow(ctx, "k")
				require.NoError(t, err)
				res, err := l.Allow(ctx, "k")
				require.NoError(t, err)
				assert.False(t, res.Allowed)
				assert.NoError(t, l.Refund(ctx, res))

				require.NoError(t, l.Reset(ctx, "k"))
				res, err = l.Allow(ctx, "k")
				require.NoError(t, err)
				assert.True(t, res.Allowed)
			})
		})
	}
}

func TestMemoryStoreConcurrent(t *testing.T) {
	t.Parallel()
	store := ratelimit.NewMemoryStore(ratelimit.WithCleanupInterval(10 * time.Millisecond))
	t.Cleanup(func() { _ = store.Close() })

	l, err := ratelimit.New(store, 50, time.Minute)
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for range 100 {
		wg.Go(func() {
			res, err := l.Allow(context.Background(), "shared")
			if err == nil && res.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}
