package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/alqudsguide/backend/pkg/cookie"
	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/svc/account"
)

// StateCookie binds an OAuth state to the browser that started the flow.
const StateCookie = "oauth_state"

// Accounts is the part of the account service the OAuth flow needs.
type Accounts interface {
	SignInFederated(ctx context.Context, p account.FederatedProfile) (*account.Session, error)
	ResolveSession(ctx context.Context, token string) (*account.Account, error)
}

type OAuthConfig struct {
	StateTTL time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	CodeTTL  time.Duration `env:"OAUTH_CODE_TTL" envDefault:"1m"`
}

type OAuth struct {
	accounts  Accounts
	codes     CodeStore
	cookies   *cookie.Manager
	providers map[string]Provider
	stateTTL  time.Duration
	codeTTL   time.Duration
	logger    *slog.Logger
}

type OAuthOption func(*OAuth)

func WithProvider(p Provider) OAuthOption {
	return func(o *OAuth) {
		if p != nil {
			o.providers[p.Name()] = p
		}
	}
}

func WithOAuthConfig(cfg OAuthConfig) OAuthOption {
	return func(o *OAuth) {
		if cfg.StateTTL > 0 {
			o.stateTTL = cfg.StateTTL
		}
		if cfg.CodeTTL > 0 {
			o.codeTTL = cfg.CodeTTL
		}
	}
}

func WithOAuthLogger(l *slog.Logger) OAuthOption {
	return func(o *OAuth) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOAuth builds the flow. cookies must hold a signing secret.
func NewOAuth(accounts Accounts, codes CodeStore, cookies *cookie.Manager, opts ...OAuthOption) (*OAuth, error) {
	switch {
	case accounts == nil:
		return nil, ErrMissingAccounts
	case codes == nil:
		return nil, ErrMissingCodeStore
	case cookies == nil:
		return nil, ErrMissingCookies
	}
	o := &OAuth{
		accounts:  accounts,
		codes:     codes,
		cookies:   cookies,
		providers: make(map[string]Provider),
		stateTTL:  10 * time.Minute,
		codeTTL:   time.Minute,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Enabled reports whether provider is configured.
func (o *OAuth) Enabled(provider string) bool {
	_, ok := o.providers[provider]
	return ok
}

// Begin starts the flow and returns the provider authorization URL.
func (o *OAuth) Begin(ctx context.Context, w http.ResponseWriter, provider string) (string, error) {
	p, ok := o.providers[provider]
	if !ok {
		return "", ErrUnknownProvider
	}

	state, err := randomToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	if err := o.codes.Set(ctx, stateKey(state), []byte(provider), o.stateTTL); err != nil {
		return "", fmt.Errorf("failed to store state: %w", err)
	}
	if err := o.cookies.SetSigned(w, StateCookie, state, cookie.WithMaxAge(int(o.stateTTL.Seconds()))); err != nil {
		return "", fmt.Errorf("failed to set state cookie: %w", err)
	}
	return p.AuthURL(state), nil
}

// Completion is the outcome of a successful callback. Code is the one-time
// exchange code handed to the client.
type Completion struct {
	Session *account.Session
	Code    string
}

// Complete handles the provider callback. It signs the user in and stores the
// session behind a one-time exchange code.
func (o *OAuth) Complete(w http.ResponseWriter, r *http.Request, provider string) (*Completion, error) {
	ctx := r.Context()
	p, ok := o.providers[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}
	o.cookies.Delete(w, StateCookie)

	q := r.URL.Query()
	if q.Get("error") != "" {
		return nil, ErrProviderDenied
	}

	state := q.Get("state")
	bound, err := o.cookies.GetSigned(r, StateCookie)
	if err != nil || state == "" || bound != state {
		return nil, ErrInvalidState
	}
	stored, err := o.codes.Take(ctx, stateKey(state))
	switch {
	case errors.Is(err, ErrCodeNotFound):
		return nil, ErrInvalidState
	case err != nil:
		return nil, fmt.Errorf("failed to load state: %w", err)
	case string(stored) != provider:
		return nil, ErrInvalidState
	}

	code := q.Get("code")
	if code == "" {
		return nil, ErrInvalidCode
	}
	profile, err := p.Profile(ctx, code)
	if err != nil {
		return nil, err
	}

	sess, err := o.accounts.SignInFederated(ctx, account.FederatedProfile{
		Provider:      provider,
		Subject:       profile.Subject,
		Email:         profile.Email,
		EmailVerified: profile.EmailVerified,
		Name:          profile.Name,
	})
	if err != nil {
		return nil, err
	}

	exchange, err := randomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate exchange code: %w", err)
	}
	payload, err := json.Marshal(exchangePayload{Token: sess.Token, ExpiresAt: sess.ExpiresAt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode exchange payload: %w", err)
	}
	if err := o.codes.Set(ctx, exchangeKey(exchange), payload, o.codeTTL); err != nil {
		return nil, fmt.Errorf("failed to store exchange code: %w", err)
	}

	o.logger.InfoContext(ctx, "oauth sign-in completed",
		logger.AccountID(sess.Account.ID),
		logger.Provider(provider),
	)
	return &Completion{Session: sess, Code: exchange}, nil
}

// Exchange trades a one-time code for the session it was issued for.
func (o *OAuth) Exchange(ctx context.Context, code string) (*account.Session, error) {
	if code == "" {
		return nil, ErrInvalidExchange
	}
	raw, err := o.codes.Take(ctx, exchangeKey(code))
	switch {
	case errors.Is(err, ErrCodeNotFound):
		return nil, ErrInvalidExchange
	case err != nil:
		return nil, fmt.Errorf("failed to load exchange code: %w", err)
	}

	var payload exchangePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrInvalidExchange
	}
	acc, err := o.accounts.ResolveSession(ctx, payload.Token)
	if err != nil {
		return nil, err
	}
	return &account.Session{Account: acc, Token: payload.Token, ExpiresAt: payload.ExpiresAt}, nil
}

type exchangePayload struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func stateKey(state string) string   { return "oauth:state:" + state }
func exchangeKey(code string) string { return "oauth:code:" + code }

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
