package cookie

import (
	"net/http"

	"github.com/alqudsguide/backend/pkg/environment"
)

type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

type Option func(*Options)

func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

// WithMaxAge sets the lifetime in seconds. Zero makes a session cookie.
func WithMaxAge(seconds int) Option {
	return func(o *Options) { o.MaxAge = seconds }
}

func WithSecure(secure bool) Option {
	return func(o *Options) { o.Secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) { o.HttpOnly = httpOnly }
}

func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) { o.SameSite = sameSite }
}

// ForEnvironment returns the transport attributes for env. Production serves
// a cross-site client over TLS (Secure, SameSite=None); development runs on
// plain http with SameSite=Lax.
func ForEnvironment(env environment.Environment) []Option {
	if env.IsProduction() {
		return []Option{WithSecure(true), WithSameSite(http.SameSiteNoneMode)}
	}
	return []Option{WithSecure(false), WithSameSite(http.SameSiteLaxMode)}
}

func applyOptions(base Options, opts []Option) Options {
	result := base
	for _, opt := range opts {
		opt(&result)
	}
	return result
}
