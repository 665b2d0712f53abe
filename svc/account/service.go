package account

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/alqudsguide/backend/pkg/logger"
)

// Service runs the account lifecycle on top of Storage.
type Service struct {
	store    Storage
	tokens   Tokens
	hasher   Hasher
	notifier Notifier

	cfg     Config
	now     func() time.Time
	logger  *slog.Logger
	observe Observer

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithConfig replaces the lifecycle settings. Empty fields keep their defaults.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.ClientURL != "" {
			s.cfg.ClientURL = cfg.ClientURL
		}
		if cfg.SignupRole != "" {
			s.cfg.SignupRole = cfg.SignupRole
		}
		if cfg.SessionTTL > 0 {
			s.cfg.SessionTTL = cfg.SessionTTL
		}
		if cfg.SignupSessionTTL > 0 {
			s.cfg.SignupSessionTTL = cfg.SignupSessionTTL
		}
		if cfg.VerifyEmailPath != "" {
			s.cfg.VerifyEmailPath = cfg.VerifyEmailPath
		}
		if cfg.ResetPasswordPath != "" {
			s.cfg.ResetPasswordPath = cfg.ResetPasswordPath
		}
		if cfg.ConfirmEmailChangePath != "" {
			s.cfg.ConfirmEmailChangePath = cfg.ConfirmEmailChangePath
		}
	}
}

// WithSignupRole sets the role given to self-registered accounts.
func WithSignupRole(r Role) Option {
	return func(s *Service) {
		if r != "" {
			s.cfg.SignupRole = r
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) { s.observe = o }
}

func defaultConfig() Config {
	return Config{
		ClientURL:              "http://localhost:3000",
		SignupRole:             RoleAdmin,
		SessionTTL:             7 * 24 * time.Hour,
		SignupSessionTTL:       24 * time.Hour,
		VerifyEmailPath:        "/verify-email",
		ResetPasswordPath:      "/reset-password",
		ConfirmEmailChangePath: "/confirm-email-change",
	}
}

// NewService wires the lifecycle. All four dependencies are required.
func NewService(store Storage, tokens Tokens, hasher Hasher, notifier Notifier, opts ...Option) (*Service, error) {
	if store == nil || tokens == nil || hasher == nil || notifier == nil {
		return nil, ErrMissingDependency
	}

	s := &Service{
		store:    store,
		tokens:   tokens,
		hasher:   hasher,
		notifier: notifier,
		cfg:      defaultConfig(),
		now:      time.Now,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := ParseRole(string(s.cfg.SignupRole)); err != nil {
		return nil, err
	}
	s.logger = s.logger.With(logger.Component("account"))
	return s, nil
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }

// SessionTTL is the lifetime of sign-in sessions.
func (s *Service) SessionTTL() time.Duration { return s.cfg.SessionTTL }

// timestamp is truncated to what every store can represent.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func (s *Service) done(ctx context.Context, op string, err *error) {
	if s.observe != nil {
		s.observe(ctx, op, *err)
	}
}

func (s *Service) link(path, tok string) string {
	u := strings.TrimRight(s.cfg.ClientURL, "/") + "/" + strings.TrimLeft(path, "/")
	return u + "?token=" + url.QueryEscape(tok)
}

// compareDummy spends the same work as a real comparison so that unknown
// emails and federated-only accounts cannot be told apart by timing.
func (s *Service) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password-for-timing-1!")
	})
	if s.dummyHash != "" {
		s.hasher.Compare(password, s.dummyHash)
	}
}

func digest(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}

func digestMatches(tok, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(digest(tok)), []byte(stored)) == 1
}
