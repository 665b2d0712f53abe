package jwt

import (
	"errors"
	"net/http"
	"strings"
)

// TokenExtractorFunc defines a function that extracts a token from an HTTP request.
type TokenExtractorFunc func(r *http.Request) (string, error)

// BearerTokenExtractor extracts tokens from "Authorization: Bearer <token>" headers.
func BearerTokenExtractor(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrInvalidToken
	}

	return strings.TrimSpace(token), nil
}

// CookieTokenExtractor creates a token extractor for cookie-based transport.
func CookieTokenExtractor(cookieName string) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		cookie, err := r.Cookie(cookieName)
		if err != nil || cookie.Value == "" {
			return "", ErrMissingToken
		}
		return cookie.Value, nil
	}
}

// FirstOf tries extractors in order and returns the first token found.
// A malformed source is only reported when no later extractor yields a token.
func FirstOf(extractors ...TokenExtractorFunc) TokenExtractorFunc {
	return func(r *http.Request) (string, error) {
		result := ErrMissingToken
		for _, extract := range extractors {
			token, err := extract(r)
			if err == nil {
				return token, nil
			}
			if !errors.Is(err, ErrMissingToken) {
				result = err
			}
		}
		return "", result
	}
}
