// Command server runs the Alquds Virtual Guide account API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alqudsguide/backend/pkg/config"
	"github.com/alqudsguide/backend/pkg/cookie"
	"github.com/alqudsguide/backend/pkg/httpserver"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/pkg/metrics"
	"github.com/alqudsguide/backend/pkg/requestid"
	"github.com/alqudsguide/backend/svc/account"
	"github.com/alqudsguide/backend/svc/auth"
	"github.com/alqudsguide/backend/svc/password"
	"github.com/alqudsguide/backend/svc/token"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("server stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	opts := []logger.Option{
		logger.WithEnvironment(cfg.Env, cfg.ServiceName),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevelName(cfg.LogLevel))
	}
	log := logger.New(opts...)
	logger.SetAsDefault(log)

	m := metrics.New(cfg.MetricsNamespace)
	checks := map[string]httpserver.Check{}

	store, closeStore, err := openStore(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer closeStore()

	shared, err := openShared(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer shared.close()

	tokens, err := token.NewFromConfig(cfg.Token)
	if err != nil {
		return fmt.Errorf("failed to build token service: %w", err)
	}
	hasher, err := password.New()
	if err != nil {
		return fmt.Errorf("failed to build password hasher: %w", err)
	}
	gateway, err := newGateway(cfg, log, m)
	if err != nil {
		return err
	}

	accounts, err := account.NewService(store, tokens, hasher, gateway,
		account.WithConfig(cfg.Account),
		account.WithLogger(log.With(logger.Component("account"))),
		account.WithObserver(m.AccountObserver()),
	)
	if err != nil {
		return fmt.Errorf("failed to build account service: %w", err)
	}

	cookies, err := cookie.NewFromConfig(cfg.Cookie, cfg.Env)
	if err != nil {
		return fmt.Errorf("failed to build cookie manager: %w", err)
	}
	gate, err := auth.NewGate(accounts, cookies,
		auth.WithGateLogger(log.With(logger.Component("gate"))),
		auth.WithPasswordExpiryEnforced(cfg.EnforcePasswordExpiry),
	)
	if err != nil {
		return fmt.Errorf("failed to build access gate: %w", err)
	}
	oauth, err := newOAuth(cfg, accounts, shared.codes, cookies, log)
	if err != nil {
		return err
	}

	router, err := newRouter(cfg, routerDeps{
		log:      log,
		metrics:  m,
		accounts: accounts,
		gate:     gate,
		cookies:  cookies,
		oauth:    oauth,
		limits:   shared.limits,
		checks:   checks,
	})
	if err != nil {
		return err
	}

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log.With(logger.Component("http"))))
	log.InfoContext(ctx, "starting server",
		slog.String("addr", cfg.HTTP.Addr),
		slog.String("storage", cfg.StorageDriver),
		slog.Bool("redis", cfg.Redis.Enabled()),
		slog.Any("channels", gateway.Channels()),
	)
	if err := srv.Run(ctx, router); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.InfoContext(ctx, "server stopped")
	return nil
}
