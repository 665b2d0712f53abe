package account

import (
	"errors"
	"net/http"

	"github.com/alqudsguide/backend/handler"
	"github.com/alqudsguide/backend/svc/account"
	"github.com/alqudsguide/backend/svc/auth"
)

var (
	errDuplicateEmail      = handler.NewHTTPError(http.StatusBadRequest, "duplicate_email", "email is already registered")
	errInvalidCredentials  = handler.NewHTTPError(http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	errFederatedOnly       = handler.NewHTTPError(http.StatusBadRequest, "federated_only", "this account signs in with Google or Facebook and has no password")
	errCurrentRequired     = handler.NewHTTPError(http.StatusBadRequest, "current_password_required", "current password is required to set a new password")
	errCurrentIncorrect    = handler.NewHTTPError(http.StatusBadRequest, "current_password_incorrect", "current password is incorrect")
	errIdentityLinked      = handler.NewHTTPError(http.StatusBadRequest, "identity_linked", "this social account is linked to another user")
	errNotFound            = handler.NewHTTPError(http.StatusNotFound, "not_found", "account not found")
	errAccountDeleted      = handler.NewHTTPError(http.StatusUnauthorized, "account_deleted", "account no longer exists")
	errAccountInactive     = handler.NewHTTPError(http.StatusForbidden, "account_inactive", "account is inactive")
	errForbidden           = handler.NewHTTPError(http.StatusForbidden, "forbidden", "admin access required")
	errSelfDeletion        = handler.NewHTTPError(http.StatusForbidden, "self_deletion", "you cannot delete your own account")
	errSelfDeactivation    = handler.NewHTTPError(http.StatusForbidden, "self_deactivation", "you cannot deactivate your own account")
	errInvalidStatus       = handler.NewHTTPError(http.StatusBadRequest, "invalid_status", "status must be active or inactive")
	errInvalidRole         = handler.NewHTTPError(http.StatusBadRequest, "invalid_role", "role must be admin or user")
	errDeliveryFailed      = handler.NewHTTPError(http.StatusInternalServerError, "delivery_failed", "could not send the email, please try again later")
	errInvalidExchangeCode = handler.NewHTTPError(http.StatusBadRequest, "invalid_code", "sign-in code is invalid or has expired")
)

// mapError translates lifecycle errors for the JSON envelope. Token errors
// get route-specific treatment through tokenError first.
func mapError(err error) (handler.HTTPError, bool) {
	switch {
	case errors.Is(err, account.ErrEmailTaken):
		return errDuplicateEmail, true
	case errors.Is(err, account.ErrInvalidCredentials):
		return errInvalidCredentials, true
	case errors.Is(err, account.ErrFederatedOnly):
		return errFederatedOnly, true
	case errors.Is(err, account.ErrCurrentPasswordRequired):
		return errCurrentRequired, true
	case errors.Is(err, account.ErrCurrentPasswordIncorrect):
		return errCurrentIncorrect, true
	case errors.Is(err, account.ErrIdentityLinked):
		return errIdentityLinked, true
	case errors.Is(err, account.ErrAccountNotFound):
		return errNotFound, true
	case errors.Is(err, account.ErrAccountDeleted):
		return errAccountDeleted, true
	case errors.Is(err, account.ErrAccountInactive):
		return errAccountInactive, true
	case errors.Is(err, account.ErrForbidden):
		return errForbidden, true
	case errors.Is(err, account.ErrSelfDeletion):
		return errSelfDeletion, true
	case errors.Is(err, account.ErrSelfDeactivation):
		return errSelfDeactivation, true
	case errors.Is(err, account.ErrInvalidStatus):
		return errInvalidStatus, true
	case errors.Is(err, account.ErrInvalidRole):
		return errInvalidRole, true
	case errors.Is(err, account.ErrDeliveryFailed):
		return errDeliveryFailed, true
	case errors.Is(err, auth.ErrInvalidExchange):
		return errInvalidExchangeCode, true
	case errors.Is(err, account.ErrTokenExpired), errors.Is(err, account.ErrTokenInvalid):
		return tokenHTTPError(err, http.StatusUnauthorized), true
	}
	return handler.HTTPError{}, false
}

// tokenError rewrites action-token failures to status. Expired links ask
// the user to request a new one; anything else is reported as invalid.
func tokenError(err error, status int) error {
	if errors.Is(err, account.ErrTokenExpired) || errors.Is(err, account.ErrTokenInvalid) {
		return tokenHTTPError(err, status)
	}
	return err
}

func tokenHTTPError(err error, status int) handler.HTTPError {
	if errors.Is(err, account.ErrTokenExpired) {
		return handler.NewHTTPError(status, "token_expired", "this link has expired, please request a new one")
	}
	return handler.NewHTTPError(status, "token_invalid", "this link is invalid")
}

// oauthFailureReason is the error code passed to the client's sign-in page.
func oauthFailureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrUnknownProvider):
		return "provider_unavailable"
	case errors.Is(err, auth.ErrProviderDenied):
		return "access_denied"
	case errors.Is(err, auth.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, auth.ErrInvalidCode):
		return "invalid_code"
	case errors.Is(err, account.ErrAccountInactive):
		return "account_inactive"
	case errors.Is(err, account.ErrIdentityLinked):
		return "identity_linked"
	default:
		return "oauth_failed"
	}
}
