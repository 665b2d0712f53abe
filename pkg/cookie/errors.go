package cookie

import "errors"

var (
	ErrNoSecret         = errors.New("cookie: no signing secret configured")
	ErrSecretTooShort   = errors.New("cookie: secret too short")
	ErrInvalidSignature = errors.New("cookie: invalid signature")
	ErrCookieNotFound   = errors.New("cookie: not found")
	ErrInvalidFormat    = errors.New("cookie: invalid format")
)
