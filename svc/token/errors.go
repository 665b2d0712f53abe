package token

import "errors"

var (
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token has expired")
	ErrPurposeMismatch    = errors.New("token was issued for a different purpose")
	ErrMissingSecret      = errors.New("token signing secret is not configured")
	ErrSharedSecret       = errors.New("session and action tokens must use different secrets")
	ErrUnknownPurpose     = errors.New("unknown action token purpose")
	ErrMissingAccountID   = errors.New("account id is required")
	ErrMissingTokenClaims = errors.New("purpose-specific claims are missing")
)
