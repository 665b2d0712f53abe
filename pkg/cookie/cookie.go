package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const minSecretLength = 32

type Manager struct {
	secrets  [][]byte
	defaults Options
}

// New creates a Manager. secrets may be empty when no signed cookies are
// used; every non-empty secret must be at least 32 characters.
func New(secrets []string, opts ...Option) (*Manager, error) {
	m := &Manager{
		defaults: applyOptions(Options{
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		}, opts),
	}
	for i, s := range secrets {
		if s == "" {
			continue
		}
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
		m.secrets = append(m.secrets, []byte(s))
	}
	return m, nil
}

// Defaults returns the attributes applied to every cookie.
func (m *Manager) Defaults() Options {
	return m.defaults
}

func (m *Manager) cookie(name, value string, opts []Option) *http.Cookie {
	o := applyOptions(m.defaults, opts)
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		MaxAge:   o.MaxAge,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	}
}

func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	http.SetCookie(w, m.cookie(name, value, opts))
}

func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	if c.Value == "" {
		return "", ErrCookieNotFound
	}
	return c.Value, nil
}

// Delete expires the cookie. opts must match the ones used by Set, if any
// changed Path or Domain.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	c := m.cookie(name, "", opts)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	if len(m.secrets) == 0 {
		return ErrNoSecret
	}
	m.Set(w, name, m.sign(value), opts...)
	return nil
}

func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if len(m.secrets) == 0 {
		return "", ErrNoSecret
	}
	signed, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(signed)
}

func mac(secret []byte, value []byte) []byte {
	h := hmac.New(sha256.New, secret)
	h.Write(value)
	return h.Sum(nil)
}

func (m *Manager) sign(value string) string {
	sig := mac(m.secrets[0], []byte(value))
	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "." + base64.RawURLEncoding.EncodeToString(sig)
}

func (m *Manager) verify(signed string) (string, error) {
	encoded, encodedSig, ok := strings.Cut(signed, ".")
	if !ok {
		return "", ErrInvalidFormat
	}
	value, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, secret := range m.secrets {
		if hmac.Equal(sig, mac(secret, value)) {
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}
