// Package password hashes and verifies account passwords with bcrypt.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used for stored credentials.
const DefaultCost = 12

var (
	ErrEmptyPassword = errors.New("password is empty")
	ErrTooLong       = errors.New("password exceeds 72 bytes")
	ErrInvalidCost   = errors.New("bcrypt cost out of range")
)

// Hasher hashes and compares passwords. It never logs either value.
type Hasher struct {
	cost int
}

// Option configures a Hasher.
type Option func(*Hasher)

// WithCost overrides the bcrypt cost. Values outside bcrypt's range make New fail.
func WithCost(cost int) Option {
	return func(h *Hasher) { h.cost = cost }
}

// New creates a bcrypt hasher, cost 12 unless overridden.
func New(opts ...Option) (*Hasher, error) {
	h := &Hasher{cost: DefaultCost}
	for _, opt := range opts {
		opt(h)
	}
	if h.cost < bcrypt.MinCost || h.cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCost, h.cost)
	}
	return h, nil
}

// Hash returns the bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrTooLong
		}
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare reports whether plaintext matches hash. An empty hash never matches.
func (h *Hasher) Compare(plaintext, hash string) bool {
	if plaintext == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
