package main

import (
	"fmt"
	"log/slog"

	"github.com/alqudsguide/backend/pkg/cookie"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/svc/auth"
)

// newOAuth returns nil when no provider is configured. OAuth state cookies
// are signed, so COOKIE_SECRETS is required once a provider is enabled.
func newOAuth(cfg appConfig, accounts auth.Accounts, codes auth.CodeStore, cookies *cookie.Manager, log *slog.Logger) (*auth.OAuth, error) {
	var providers []auth.Provider
	if cfg.Google.Enabled() {
		p, err := auth.NewGoogle(cfg.Google)
		if err != nil {
			return nil, fmt.Errorf("failed to configure google sign-in: %w", err)
		}
		providers = append(providers, p)
	}
	if cfg.Facebook.Enabled() {
		p, err := auth.NewFacebook(cfg.Facebook)
		if err != nil {
			return nil, fmt.Errorf("failed to configure facebook sign-in: %w", err)
		}
		providers = append(providers, p)
	}
	if len(providers) == 0 {
		return nil, nil
	}
	if cfg.Cookie.Secrets == "" {
		return nil, fmt.Errorf("%w: COOKIE_SECRETS is required for oauth sign-in", cookie.ErrNoSecret)
	}

	opts := []auth.OAuthOption{
		auth.WithOAuthConfig(cfg.OAuth),
		auth.WithOAuthLogger(log.With(logger.Component("oauth"))),
	}
	for _, p := range providers {
		opts = append(opts, auth.WithProvider(p))
	}
	o, err := auth.NewOAuth(accounts, codes, cookies, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build oauth flow: %w", err)
	}
	return o, nil
}
