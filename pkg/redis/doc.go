// Package redis connects to Redis and wraps the client with a small
// one-time key-value storage.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := redis.NewStorage(client, redis.WithKeyPrefix("oauth:"))
//	_ = store.Set(ctx, code, payload, 5*time.Minute)
//	payload, err = store.Take(ctx, code) // ErrNotFound on second call
//
// Healthcheck plugs the client into the server readiness probe.
package redis
