package auth

import (
	"errors"
	"net/http"

	"github.com/alqudsguide/backend/handler"
)

// Responses written by Gate.
var (
	ErrTokenMissing    = handler.NewHTTPError(http.StatusUnauthorized, "token_missing", "authentication required")
	ErrTokenExpired    = handler.NewHTTPError(http.StatusUnauthorized, "token_expired", "session expired, please sign in again")
	ErrTokenInvalid    = handler.NewHTTPError(http.StatusUnauthorized, "token_invalid", "invalid session token")
	ErrAccountDeleted  = handler.NewHTTPError(http.StatusUnauthorized, "account_deleted", "account no longer exists")
	ErrAccountInactive = handler.NewHTTPError(http.StatusForbidden, "account_inactive", "account is inactive")
	ErrAdminRequired   = handler.NewHTTPError(http.StatusForbidden, "forbidden", "admin access required")
	ErrPasswordExpired = handler.NewHTTPError(http.StatusForbidden, "password_expired", "password has expired, please change it")
)

// OAuth flow errors.
var (
	ErrUnknownProvider    = errors.New("oauth: unknown provider")
	ErrInvalidState       = errors.New("oauth: invalid or expired state")
	ErrProviderDenied     = errors.New("oauth: provider denied authorization")
	ErrInvalidCode        = errors.New("oauth: invalid authorization code")
	ErrNoEmail            = errors.New("oauth: provider did not return an email")
	ErrInvalidExchange    = errors.New("oauth: invalid or expired exchange code")
	ErrCodeNotFound       = errors.New("oauth: code not found")
	ErrMissingCookies     = errors.New("oauth: cookie manager is required")
	ErrMissingCodeStore   = errors.New("oauth: code store is required")
	ErrMissingAccounts    = errors.New("oauth: account service is required")
	ErrMissingResolver    = errors.New("auth: session resolver is required")
	ErrProviderIncomplete = errors.New("oauth: provider client id, secret and redirect url are required")
)
