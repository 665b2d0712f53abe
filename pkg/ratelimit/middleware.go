package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/alqudsguide/backend/handler"
	"github.com/alqudsguide/backend/pkg/clientip"
	"github.com/alqudsguide/backend/pkg/logger"
)

// KeyFunc derives the limiter key from a request. An empty key skips limiting.
type KeyFunc func(*http.Request) string

// ClientIP keys by the address stored by clientip.Resolver.Middleware.
func ClientIP(r *http.Request) string {
	return clientip.FromContext(r.Context())
}

type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	keyFunc          KeyFunc
	refundSuccessful bool
	onLimitReached   func(w http.ResponseWriter, r *http.Request, res *Result)
	onDecision       func(r *http.Request, allowed bool)
	logger           *slog.Logger
}

func WithKeyFunc(fn KeyFunc) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.keyFunc = fn
		}
	}
}

// WithRefundSuccessful refunds the hit when the response status is below 400.
func WithRefundSuccessful() MiddlewareOption {
	return func(c *middlewareConfig) { c.refundSuccessful = true }
}

func WithOnLimitReached(fn func(w http.ResponseWriter, r *http.Request, res *Result)) MiddlewareOption {
	return func(c *middlewareConfig) {
		if fn != nil {
			c.onLimitReached = fn
		}
	}
}

// WithObserver is called for every limited request, e.g. to count rejections.
func WithObserver(fn func(r *http.Request, allowed bool)) MiddlewareOption {
	return func(c *middlewareConfig) { c.onDecision = fn }
}

func WithLogger(l *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

var errTooManyRequests = handler.ErrTooManyRequests.WithMessage("too many requests, please try again later")

func defaultLimitReached(w http.ResponseWriter, r *http.Request, _ *Result) {
	handler.WriteError(w, r, errTooManyRequests)
}

// Middleware enforces limiter. Store failures let the request through.
func Middleware(limiter *Limiter, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		keyFunc:        ClientIP,
		onLimitReached: defaultLimitReached,
		logger:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := cfg.keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			res, err := limiter.Allow(r.Context(), key)
			if err != nil {
				cfg.logger.ErrorContext(r.Context(), "rate limiter unavailable",
					logger.Error(err),
					logger.Component("ratelimit"),
				)
				next.ServeHTTP(w, r)
				return
			}
			if cfg.onDecision != nil {
				cfg.onDecision(r, res.Allowed)
			}

			w.Header().Set("RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("RateLimit-Reset", strconv.Itoa(int(res.ResetAt.Sub(limiter.Now()).Seconds())))

			if !res.Allowed {
				retry := max(int(res.RetryAfter(limiter.Now()).Seconds()), 1)
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				cfg.onLimitReached(w, r, res)
				return
			}

			if !cfg.refundSuccessful {
				next.ServeHTTP(w, r)
				return
			}

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if status := ww.Status(); status == 0 || status < http.StatusBadRequest {
				if err := limiter.Refund(r.Context(), res); err != nil {
					cfg.logger.WarnContext(r.Context(), "rate limit refund failed",
						logger.Error(err),
						logger.Component("ratelimit"),
					)
				}
			}
		})
	}
}
