package ratelimit

import (
	"context"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryStore keeps hits in process memory. Idle keys are swept periodically.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
	seq     atomic.Uint64

	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

type window struct {
	hits   []memoryHit
	expiry time.Time
}

type memoryHit struct {
	at time.Time
	id string
}

type MemoryStoreOption func(*MemoryStore)

func WithCleanupInterval(interval time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.cleanupInterval = interval
		}
	}
}

func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		windows:         make(map[string]*window),
		cleanupInterval: time.Minute,
		stop:            make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.cleanupLoop()
	return s
}

func (s *MemoryStore) Record(_ context.Context, key string, now time.Time, win time.Duration, limit int) (Hit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok {
		w = &window{}
		s.windows[key] = w
	}
	cutoff := now.Add(-win)
	w.hits = slices.DeleteFunc(w.hits, func(h memoryHit) bool { return !h.at.After(cutoff) })

	hit := Hit{Count: len(w.hits)}
	if len(w.hits) < limit {
		hit.Allowed = true
		hit.ID = strconv.FormatUint(s.seq.Add(1), 36)
		w.hits = append(w.hits, memoryHit{at: now, id: hit.ID})
		hit.Count++
	}
	if len(w.hits) > 0 {
		hit.Oldest = w.hits[0].at
	}
	w.expiry = now.Add(win)
	return hit, nil
}

func (s *MemoryStore) Refund(_ context.Context, key, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.windows[key]; ok {
		w.hits = slices.DeleteFunc(w.hits, func(h memoryHit) bool { return h.id == id })
	}
	return nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.cleanup(now)
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) cleanup(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, w := range s.windows {
		if len(w.hits) == 0 || now.After(w.expiry) {
			delete(s.windows, key)
		}
	}
}

// Close stops the sweeper.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}
