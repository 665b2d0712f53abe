// Package ratelimit limits requests per key with a sliding window.
//
// Every admitted request is recorded as a hit with its own id. A hit can be
// refunded later, which is how auth routes only count failed attempts:
//
//	store := ratelimit.NewMemoryStore()
//	auth, _ := ratelimit.New(store, 5, 15*time.Minute, ratelimit.WithPrefix("auth"))
//	r.With(ratelimit.Middleware(auth, ratelimit.WithRefundSuccessful())).Post("/signin", ...)
//
// Stores: MemoryStore for a single instance, RedisStore for a fleet.
package ratelimit
