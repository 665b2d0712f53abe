package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alqudsguide/backend/pkg/redis"
)

// CodeStore keeps short-lived one-time values: OAuth states and exchange codes.
type CodeStore interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Take returns the value and removes it. Missing or expired keys yield ErrCodeNotFound.
	Take(ctx context.Context, key string) ([]byte, error)
}

// MemoryCodeStore is a CodeStore for a single instance.
type MemoryCodeStore struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]memoryCode
}

type memoryCode struct {
	value     []byte
	expiresAt time.Time
}

func NewMemoryCodeStore(now func() time.Time) *MemoryCodeStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryCodeStore{now: now, items: make(map[string]memoryCode)}
}

func (s *MemoryCodeStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, v := range s.items {
		if !now.Before(v.expiresAt) {
			delete(s.items, k)
		}
	}
	s.items[key] = memoryCode{value: append([]byte(nil), value...), expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryCodeStore) Take(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[key]
	if !ok {
		return nil, ErrCodeNotFound
	}
	delete(s.items, key)
	if !s.now().Before(item.expiresAt) {
		return nil, ErrCodeNotFound
	}
	return item.value, nil
}

// RedisCodeStore shares codes between instances.
type RedisCodeStore struct {
	storage *redis.Storage
}

func NewRedisCodeStore(storage *redis.Storage) *RedisCodeStore {
	return &RedisCodeStore{storage: storage}
}

func (s *RedisCodeStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.storage.Set(ctx, key, value, ttl)
}

func (s *RedisCodeStore) Take(ctx context.Context, key string) ([]byte, error) {
	val, err := s.storage.Take(ctx, key)
	if errors.Is(err, redis.ErrNotFound) {
		return nil, ErrCodeNotFound
	}
	return val, err
}
