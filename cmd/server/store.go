package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alqudsguide/backend/pkg/config"
	"github.com/alqudsguide/backend/pkg/httpserver"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/pkg/mongo"
	"github.com/alqudsguide/backend/pkg/pg"
	"github.com/alqudsguide/backend/svc/account"
	"github.com/alqudsguide/backend/svc/account/memstore"
	"github.com/alqudsguide/backend/svc/account/mongostore"
	"github.com/alqudsguide/backend/svc/account/pgstore"
	"github.com/alqudsguide/backend/svc/account/pgstore/migrations"
)

// openStore connects the credential store selected by STORAGE_DRIVER and
// registers its health check.
func openStore(ctx context.Context, cfg appConfig, log *slog.Logger, checks map[string]httpserver.Check) (account.Storage, func(), error) {
	switch cfg.StorageDriver {
	case driverMongo:
		var mcfg mongo.Config
		if err := config.Load(&mcfg); err != nil {
			return nil, nil, err
		}
		client, err := mongo.New(ctx, mcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("failed to disconnect mongodb", logger.Error(err))
			}
		}
		store, err := mongostore.New(ctx, client.Database(mcfg.Database))
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("failed to prepare account collection: %w", err)
		}
		checks["mongodb"] = mongo.Healthcheck(client)
		return store, closeFn, nil

	case driverPostgres:
		var pcfg pg.Config
		if err := config.Load(&pcfg); err != nil {
			return nil, nil, err
		}
		pool, err := pg.Connect(ctx, pcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		if err := pg.Migrate(ctx, pool, migrations.FS, ".", pcfg, log.With(logger.Component("migrate"))); err != nil {
			pool.Close()
			return nil, nil, err
		}
		checks["postgres"] = pg.Healthcheck(pool)
		return pgstore.New(pool), pool.Close, nil

	case driverMemory:
		if cfg.Env.IsProduction() {
			log.WarnContext(ctx, "in-memory account store in production, accounts will not survive a restart")
		}
		return memstore.New(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
