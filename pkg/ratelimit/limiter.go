package ratelimit

import (
	"context"
	"time"
)

// Limiter admits at most limit requests per key in any window-long span.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

type Option func(*Limiter)

// WithPrefix namespaces keys so several limiters can share a store.
func WithPrefix(prefix string) Option {
	return func(l *Limiter) { l.prefix = prefix }
}

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

func New(store Store, limit int, window time.Duration, opts ...Option) (*Limiter, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidInterval
	}
	l := &Limiter{store: store, limit: limit, window: window, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

func (l *Limiter) Limit() int              { return l.limit }
func (l *Limiter) Window() time.Duration   { return l.window }
func (l *Limiter) Now() time.Time          { return l.now() }
func (l *Limiter) storeKey(k string) string {
	if l.prefix == "" {
		return k
	}
	return l.prefix + ":" + k
}

func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}
	now := l.now()
	sk := l.storeKey(key)

	hit, err := l.store.Record(ctx, sk, now, l.window, l.limit)
	if err != nil {
		return nil, err
	}

	oldest := hit.Oldest
	if oldest.IsZero() {
		oldest = now
	}
	return &Result{
		Allowed:   hit.Allowed,
		Limit:     l.limit,
		Remaining: max(l.limit-hit.Count, 0),
		ResetAt:   oldest.Add(l.window),
		key:       sk,
		hit:       hit.ID,
	}, nil
}

// Refund gives back the hit recorded for res. Refunding a rejected result is a no-op.
func (l *Limiter) Refund(ctx context.Context, res *Result) error {
	if res == nil || res.hit == "" {
		return nil
	}
	return l.store.Refund(ctx, res.key, res.hit)
}

func (l *Limiter) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return l.store.Reset(ctx, l.storeKey(key))
}
