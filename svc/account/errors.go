package account

import (
	"errors"

	"github.com/alqudsguide/backend/svc/notify"
	"github.com/alqudsguide/backend/svc/token"
)

var (
	ErrAccountNotFound          = errors.New("account not found")
	ErrAccountDeleted           = errors.New("account no longer exists")
	ErrAccountInactive          = errors.New("account is inactive")
	ErrEmailTaken               = errors.New("email is already in use")
	ErrIdentityLinked           = errors.New("federated identity is already linked to an account")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrFederatedOnly            = errors.New("account uses social sign-in and has no password")
	ErrCurrentPasswordRequired  = errors.New("current password is required")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrSelfDeletion             = errors.New("admins cannot delete their own account")
	ErrSelfDeactivation         = errors.New("admins cannot deactivate their own account")
	ErrInvalidStatus            = errors.New("invalid account status")
	ErrInvalidRole              = errors.New("invalid account role")
	ErrForbidden                = errors.New("admin role required")
	ErrMissingIdentity          = errors.New("federated profile requires provider and subject")
	ErrMissingDependency        = errors.New("account service dependency is missing")
)

// Errors surfaced from collaborators, re-exported so callers can match
// everything the service returns through this package.
var (
	ErrTokenInvalid   = token.ErrTokenInvalid
	ErrTokenExpired   = token.ErrTokenExpired
	ErrDeliveryFailed = notify.ErrDeliveryFailed
)
