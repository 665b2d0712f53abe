package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alqudsguide/backend/pkg/httpserver"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/pkg/ratelimit"
	"github.com/alqudsguide/backend/pkg/redis"
	"github.com/alqudsguide/backend/svc/auth"
)

// sharedState holds what several instances must agree on: rate-limit
// counters and one-time OAuth codes. Without REDIS_URL both live in memory.
type sharedState struct {
	limits ratelimit.Store
	codes  auth.CodeStore
	close  func()
}

func openShared(ctx context.Context, cfg appConfig, log *slog.Logger, checks map[string]httpserver.Check) (*sharedState, error) {
	if !cfg.Redis.Enabled() {
		if cfg.Env.IsProduction() {
			log.WarnContext(ctx, "REDIS_URL is not set, rate limits and oauth codes are per instance")
		}
		limits := ratelimit.NewMemoryStore()
		return &sharedState{
			limits: limits,
			codes:  auth.NewMemoryCodeStore(time.Now),
			close: func() {
				if err := limits.Close(); err != nil {
					log.Error("failed to stop rate limit store", logger.Error(err))
				}
			},
		}, nil
	}

	client, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	checks["redis"] = redis.Healthcheck(client)
	return &sharedState{
		limits: ratelimit.NewRedisStore(client),
		codes:  auth.NewRedisCodeStore(redis.NewStorage(client, redis.WithKeyPrefix(cfg.ServiceName+":"))),
		close: func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis client", logger.Error(err))
			}
		},
	}, nil
}
