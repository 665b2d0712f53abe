package account

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/alqudsguide/backend/handler"
	"github.com/alqudsguide/backend/pkg/cookie"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/svc/account"
	"github.com/alqudsguide/backend/svc/auth"
	"github.com/alqudsguide/backend/svc/notify"
)

// Accounts is the lifecycle engine behind the routes.
type Accounts interface {
	Create(ctx context.Context, in account.CreateInput) (*account.Session, error)
	SignIn(ctx context.Context, email, password string) (*account.Session, error)
	SendVerification(ctx context.Context, email string) (notify.Result, error)
	CheckVerification(ctx context.Context, token string) (string, error)
	ForgotPassword(ctx context.Context, email string) (account.ForgotResult, error)
	ResetPassword(ctx context.Context, in account.ResetInput) error
	UpdateProfile(ctx context.Context, id uuid.UUID, in account.ProfileInput) (*account.ProfileResult, error)
	ConfirmEmailChange(ctx context.Context, token string) (*account.Account, error)
	List(ctx context.Context, filter account.ListFilter) ([]*account.Account, error)
	Each(ctx context.Context, filter account.ListFilter, fn func(*account.Account) error) error
	Stats(ctx context.Context) (account.Stats, error)
	Delete(ctx context.Context, actor *account.Account, id uuid.UUID) error
	UpdateStatus(ctx context.Context, actor *account.Account, id uuid.UUID, status string) (*account.Account, error)
	Now() time.Time
}

// OAuth is the federated sign-in flow.
type OAuth interface {
	Enabled(provider string) bool
	Begin(ctx context.Context, w http.ResponseWriter, provider string) (string, error)
	Complete(w http.ResponseWriter, r *http.Request, provider string) (*auth.Completion, error)
	Exchange(ctx context.Context, code string) (*account.Session, error)
}

type Config struct {
	ClientURL        string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`
	OAuthSuccessPath string `env:"OAUTH_SUCCESS_PATH" envDefault:"/oauth/callback"`
	OAuthFailurePath string `env:"OAUTH_FAILURE_PATH" envDefault:"/signin"`
}

type Module struct {
	accounts  Accounts
	gate      *auth.Gate
	cookies   *cookie.Manager
	oauth     OAuth
	cfg       Config
	authLimit func(http.Handler) http.Handler
	logger    *slog.Logger
	onError   handler.ErrorHandler[handler.Context]
}

type Option func(*Module)

func WithOAuth(o OAuth) Option {
	return func(m *Module) { m.oauth = o }
}

func WithConfig(cfg Config) Option {
	return func(m *Module) {
		if cfg.ClientURL != "" {
			m.cfg.ClientURL = cfg.ClientURL
		}
		if cfg.OAuthSuccessPath != "" {
			m.cfg.OAuthSuccessPath = cfg.OAuthSuccessPath
		}
		if cfg.OAuthFailurePath != "" {
			m.cfg.OAuthFailurePath = cfg.OAuthFailurePath
		}
	}
}

// WithAuthLimit wraps the credential and email-sending routes.
func WithAuthLimit(mw func(http.Handler) http.Handler) Option {
	return func(m *Module) { m.authLimit = mw }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

var (
	ErrMissingAccounts = errors.New("account module: account service is required")
	ErrMissingGate     = errors.New("account module: auth gate is required")
	ErrMissingCookies  = errors.New("account module: cookie manager is required")
)

func New(accounts Accounts, gate *auth.Gate, cookies *cookie.Manager, opts ...Option) (*Module, error) {
	switch {
	case accounts == nil:
		return nil, ErrMissingAccounts
	case gate == nil:
		return nil, ErrMissingGate
	case cookies == nil:
		return nil, ErrMissingCookies
	}
	m := &Module{
		accounts: accounts,
		gate:     gate,
		cookies:  cookies,
		cfg: Config{
			ClientURL:        "http://localhost:3000",
			OAuthSuccessPath: "/oauth/callback",
			OAuthFailurePath: "/signin",
		},
		authLimit: func(next http.Handler) http.Handler { return next },
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.onError = handler.NewErrorHandler(m.logger, mapError)
	return m, nil
}

// setSession writes the session cookie with a lifetime matching the token.
func (m *Module) setSession(w http.ResponseWriter, sess *account.Session) {
	maxAge := int(sess.ExpiresAt.Sub(m.accounts.Now()).Seconds())
	m.cookies.Set(w, auth.SessionCookie, sess.Token, cookie.WithMaxAge(max(maxAge, 1)))
}

func (m *Module) clearSession(w http.ResponseWriter) {
	m.cookies.Delete(w, auth.SessionCookie)
}

func currentAccount(ctx context.Context) *account.Account {
	acc, _ := auth.AccountFromContext(ctx)
	return acc
}
