package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/alqudsguide/backend/handler"
	"github.com/alqudsguide/backend/pkg/cookie"
	"github.com/alqudsguide/backend/pkg/jwt"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/svc/account"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "token"

// SessionResolver turns a session token into an account.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*account.Account, error)
	Now() time.Time
}

// Gate authenticates requests from the session cookie or a bearer token and
// guards routes by role and password age.
type Gate struct {
	sessions      SessionResolver
	cookies       *cookie.Manager
	extract       jwt.TokenExtractorFunc
	enforceExpiry bool
	logger        *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

func WithGateLogger(l *slog.Logger) GateOption {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithPasswordExpiryEnforced makes RequireFreshPassword reject expired passwords.
func WithPasswordExpiryEnforced(enforce bool) GateOption {
	return func(g *Gate) { g.enforceExpiry = enforce }
}

func WithTokenExtractor(fn jwt.TokenExtractorFunc) GateOption {
	return func(g *Gate) {
		if fn != nil {
			g.extract = fn
		}
	}
}

// NewGate builds a Gate. Tokens are read from the session cookie first, then
// the Authorization header.
func NewGate(sessions SessionResolver, cookies *cookie.Manager, opts ...GateOption) (*Gate, error) {
	if sessions == nil {
		return nil, ErrMissingResolver
	}
	if cookies == nil {
		return nil, ErrMissingCookies
	}
	g := &Gate{
		sessions: sessions,
		cookies:  cookies,
		extract:  jwt.FirstOf(jwt.CookieTokenExtractor(SessionCookie), jwt.BearerTokenExtractor),
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Authenticate rejects requests without a valid session.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := AccountFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		acc, err := g.resolve(r)
		if err != nil {
			g.reject(w, r, err)
			return
		}
		expired := acc.PasswordExpired(g.sessions.Now())
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), acc, expired)))
	})
}

// RequireAdmin authenticates when needed and then requires the admin role.
func (g *Gate) RequireAdmin(next http.Handler) http.Handler {
	return g.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, _ := AccountFromContext(r.Context())
		if !acc.IsAdmin() {
			g.logger.WarnContext(r.Context(), "admin route denied",
				logger.AccountID(acc.ID),
				logger.Role(string(acc.Role.Effective())),
			)
			handler.WriteError(w, r, ErrAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequireFreshPassword blocks accounts with an expired password. It is a
// no-op unless enforcement is enabled.
func (g *Gate) RequireFreshPassword(next http.Handler) http.Handler {
	if !g.enforceExpiry {
		return next
	}
	return g.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if PasswordExpiredFromContext(r.Context()) {
			handler.WriteError(w, r, ErrPasswordExpired)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// Token returns the session token carried by r, if any.
func (g *Gate) Token(r *http.Request) (string, error) {
	return g.extract(r)
}

func (g *Gate) resolve(r *http.Request) (*account.Account, error) {
	tok, err := g.extract(r)
	if err != nil {
		return nil, err
	}
	return g.sessions.ResolveSession(r.Context(), tok)
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request, err error) {
	var resp handler.HTTPError
	switch {
	case errors.Is(err, jwt.ErrMissingToken):
		resp = ErrTokenMissing
	case errors.Is(err, account.ErrTokenExpired):
		resp = ErrTokenExpired
	case errors.Is(err, account.ErrTokenInvalid), errors.Is(err, jwt.ErrInvalidToken):
		resp = ErrTokenInvalid
	case errors.Is(err, account.ErrAccountDeleted):
		g.cookies.Delete(w, SessionCookie)
		resp = ErrAccountDeleted
	case errors.Is(err, account.ErrAccountInactive):
		resp = ErrAccountInactive
	default:
		g.logger.ErrorContext(r.Context(), "session resolution failed",
			logger.Error(err),
			logger.Component("auth"),
		)
		handler.WriteError(w, r, err)
		return
	}
	handler.WriteError(w, r, resp)
}
