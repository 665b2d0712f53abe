package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	accountmod "github.com/alqudsguide/backend/modules/account"
	"github.com/alqudsguide/backend/pkg/clientip"
	"github.com/alqudsguide/backend/pkg/cookie"
	"github.com/alqudsguide/backend/pkg/environment"
	"github.com/alqudsguide/backend/pkg/httpserver"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/pkg/metrics"
	"github.com/alqudsguide/backend/pkg/ratelimit"
	"github.com/alqudsguide/backend/pkg/requestid"
	"github.com/alqudsguide/backend/svc/account"
	"github.com/alqudsguide/backend/svc/auth"
)

type routerDeps struct {
	log      *slog.Logger
	metrics  *metrics.Metrics
	accounts *account.Service
	gate     *auth.Gate
	cookies  *cookie.Manager
	oauth    *auth.OAuth
	limits   ratelimit.Store
	checks   map[string]httpserver.Check
}

func newRouter(cfg appConfig, d routerDeps) (http.Handler, error) {
	authLimiter, err := ratelimit.New(d.limits, cfg.AuthRateLimit, cfg.AuthRateWindow, ratelimit.WithPrefix("auth"))
	if err != nil {
		return nil, fmt.Errorf("failed to build auth rate limiter: %w", err)
	}
	apiLimiter, err := ratelimit.New(d.limits, cfg.APIRateLimit, cfg.APIRateWindow, ratelimit.WithPrefix("api"))
	if err != nil {
		return nil, fmt.Errorf("failed to build api rate limiter: %w", err)
	}
	limitLog := d.log.With(logger.Component("ratelimit"))

	opts := []accountmod.Option{
		accountmod.WithConfig(cfg.Routes),
		accountmod.WithLogger(d.log.With(logger.Component("account_routes"))),
		accountmod.WithAuthLimit(ratelimit.Middleware(authLimiter,
			ratelimit.WithRefundSuccessful(),
			ratelimit.WithObserver(d.metrics.RateLimitObserver("auth")),
			ratelimit.WithLogger(limitLog),
		)),
	}
	if d.oauth != nil {
		opts = append(opts, accountmod.WithOAuth(d.oauth))
	}
	users, err := accountmod.New(d.accounts, d.gate, d.cookies, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build account routes: %w", err)
	}

	r := chi.NewRouter()
	r.Use(
		requestid.New(),
		clientip.NewFromConfig(cfg.ClientIP).Middleware,
		environment.Middleware(cfg.Env),
		logger.Middleware(d.log),
		d.metrics.Middleware,
		middleware.Recoverer,
		httpserver.CORS(cfg.Routes.ClientURL),
	)

	r.Get("/healthz", httpserver.Health(d.log, cfg.HealthTimeout, d.checks))
	r.Handle("/metrics", d.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(ratelimit.Middleware(apiLimiter,
			ratelimit.WithObserver(d.metrics.RateLimitObserver("api")),
			ratelimit.WithLogger(limitLog),
		))
		r.Mount("/user", users.Router())
	})
	return r, nil
}
