package jwt

import "errors"

var (
	ErrInvalidToken      = errors.New("jwt: invalid token")
	ErrExpiredToken      = errors.New("jwt: token is expired")
	ErrMissingToken      = errors.New("jwt: token not found in request")
	ErrMissingSigningKey = errors.New("jwt: missing signing key")
	ErrMissingClaims     = errors.New("jwt: missing claims")
)
