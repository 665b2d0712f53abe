package jwt

import (
	"errors"
	"fmt"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// Service handles token generation and validation using HMAC-SHA256.
type Service struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the "iss" claim expected on parse. Generate does not set it;
// callers put it into their claims.
func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithClock overrides the time source used for temporal claim validation.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new JWT service with the provided signing key.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	s := &Service{
		signingKey: signingKey,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Now returns the current time according to the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Issuer returns the configured issuer.
func (s *Service) Issuer() string {
	return s.issuer
}

// Generate signs claims with HS256.
func (s *Service) Generate(claims gjwt.Claims) (string, error) {
	if claims == nil {
		return "", ErrMissingClaims
	}

	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Parse verifies the signature, algorithm and temporal claims of tokenString
// and decodes it into claims. Signature checks run before expiry checks, so
// ErrExpiredToken is only returned for tokens this service actually signed.
func (s *Service) Parse(tokenString string, claims gjwt.Claims) error {
	if claims == nil {
		return ErrMissingClaims
	}
	if tokenString == "" {
		return ErrInvalidToken
	}

	opts := []gjwt.ParserOption{
		gjwt.WithValidMethods([]string{gjwt.SigningMethodHS256.Alg()}),
		gjwt.WithTimeFunc(s.now),
		gjwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, gjwt.WithIssuer(s.issuer))
	}

	_, err := gjwt.ParseWithClaims(tokenString, claims, func(*gjwt.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, gjwt.ErrTokenExpired):
		return errors.Join(ErrExpiredToken, err)
	default:
		return errors.Join(ErrInvalidToken, err)
	}
}
