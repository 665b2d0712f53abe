package token

import (
	"errors"
	"fmt"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/alqudsguide/backend/pkg/jwt"
)

// Service issues and verifies session and action tokens.
type Service struct {
	session    *jwt.Service
	action     *jwt.Service
	issuer     string
	sessionTTL time.Duration
	actionTTL  time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIssuer sets the "iss" claim on issued tokens and requires it on verification.
func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithSessionTTL sets the lifetime used when IssueSession receives a zero ttl.
func WithSessionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

// WithActionTTL sets the lifetime used when IssueAction receives a zero ttl.
func WithActionTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.actionTTL = d
		}
	}
}

// New creates a token service. Both secrets are required and must differ.
func New(sessionSecret, actionSecret string, opts ...Option) (*Service, error) {
	if sessionSecret == "" || actionSecret == "" {
		return nil, ErrMissingSecret
	}
	if sessionSecret == actionSecret {
		return nil, ErrSharedSecret
	}

	s := &Service{
		sessionTTL: DefaultSessionTTL,
		actionTTL:  DefaultActionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	jwtOpts := []jwt.Option{jwt.WithClock(s.now), jwt.WithIssuer(s.issuer)}

	var err error
	if s.session, err = jwt.New([]byte(sessionSecret), jwtOpts...); err != nil {
		return nil, fmt.Errorf("failed to create session signer: %w", err)
	}
	if s.action, err = jwt.New([]byte(actionSecret), jwtOpts...); err != nil {
		return nil, fmt.Errorf("failed to create action signer: %w", err)
	}

	return s, nil
}

// NewFromConfig creates a token service from Config.
func NewFromConfig(cfg Config, opts ...Option) (*Service, error) {
	base := []Option{
		WithIssuer(cfg.Issuer),
		WithSessionTTL(cfg.SessionTTL),
		WithActionTTL(cfg.ActionTTL),
	}
	return New(cfg.SessionSecret, cfg.ActionSecret, append(base, opts...)...)
}

// IssueSession signs a session token for accountID. A zero ttl uses the
// configured session lifetime.
func (s *Service) IssueSession(accountID uuid.UUID, email string, ttl time.Duration) (string, time.Time, error) {
	if accountID == uuid.Nil {
		return "", time.Time{}, ErrMissingAccountID
	}
	if ttl <= 0 {
		ttl = s.sessionTTL
	}

	now := s.now()
	expiresAt := now.Add(ttl)
	claims := SessionClaims{
		Email: email,
		Type:  typeSession,
		RegisteredClaims: s.registered(accountID.String(), now, expiresAt),
	}

	tok, err := s.session.Generate(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to issue session token: %w", err)
	}
	return tok, expiresAt, nil
}

// VerifySession validates a session token.
func (s *Service) VerifySession(tok string) (SessionClaims, error) {
	var claims SessionClaims
	if err := s.session.Parse(tok, &claims); err != nil {
		return SessionClaims{}, classify(err)
	}
	if claims.Type != typeSession || claims.Subject == "" {
		return SessionClaims{}, ErrTokenInvalid
	}
	return claims, nil
}

// IssueAction signs an action token for claims.Purpose. A zero ttl uses the
// configured action lifetime (15 minutes by default).
func (s *Service) IssueAction(claims ActionClaims, ttl time.Duration) (string, error) {
	if !claims.Purpose.Valid() {
		return "", ErrUnknownPurpose
	}
	if !claims.complete() {
		return "", fmt.Errorf("%w for %s", ErrMissingTokenClaims, claims.Purpose)
	}
	if ttl <= 0 {
		ttl = s.actionTTL
	}

	now := s.now()
	claims.Type = typeAction
	claims.RegisteredClaims = s.registered(claims.AccountID, now, now.Add(ttl))

	tok, err := s.action.Generate(claims)
	if err != nil {
		return "", fmt.Errorf("failed to issue %s token: %w", claims.Purpose, err)
	}
	return tok, nil
}

// VerifyAction validates an action token and requires it to carry purpose.
func (s *Service) VerifyAction(tok string, purpose Purpose) (ActionClaims, error) {
	var claims ActionClaims
	if err := s.action.Parse(tok, &claims); err != nil {
		return ActionClaims{}, classify(err)
	}
	if claims.Type != typeAction || !claims.complete() {
		return ActionClaims{}, ErrTokenInvalid
	}
	if claims.Purpose != purpose {
		return ActionClaims{}, errors.Join(ErrTokenInvalid, ErrPurposeMismatch)
	}
	return claims, nil
}

func (s *Service) registered(subject string, now, expiresAt time.Time) gjwt.RegisteredClaims {
	return gjwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    s.issuer,
		IssuedAt:  gjwt.NewNumericDate(now),
		ExpiresAt: gjwt.NewNumericDate(expiresAt),
	}
}

func classify(err error) error {
	if errors.Is(err, jwt.ErrExpiredToken) {
		return ErrTokenExpired
	}
	return ErrTokenInvalid
}
