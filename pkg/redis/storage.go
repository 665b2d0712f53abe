package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Storage is a key-value store on top of a Redis client.
type Storage struct {
	client redis.UniversalClient
	prefix string
}

type StorageOption func(*Storage)

func WithKeyPrefix(prefix string) StorageOption {
	return func(s *Storage) { s.prefix = prefix }
}

func NewStorage(client redis.UniversalClient, opts ...StorageOption) *Storage {
	s := &Storage{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores value under key. A zero ttl keeps the key until deleted.
func (s *Storage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return val, nil
}

// Take returns the value and deletes the key atomically.
func (s *Storage) Take(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	val, err := s.client.GetDel(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take key: %w", err)
	}
	return val, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}
