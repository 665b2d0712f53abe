package account

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/alqudsguide/backend/svc/notify"
	"github.com/alqudsguide/backend/svc/token"
)

// Tokens issues and verifies session and action tokens.
type Tokens interface {
	IssueSession(accountID uuid.UUID, email string, ttl time.Duration) (string, time.Time, error)
	VerifySession(tok string) (token.SessionClaims, error)
	IssueAction(claims token.ActionClaims, ttl time.Duration) (string, error)
	VerifyAction(tok string, purpose token.Purpose) (token.ActionClaims, error)
}

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hash string) bool
}

// Notifier delivers HTML messages. notify.Gateway implements it.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) (notify.Result, error)
}

// Observer is called when a lifecycle operation finishes. err is nil on success.
type Observer func(ctx context.Context, op string, err error)

// Operation names passed to Observer.
const (
	OpSignup             = "signup"
	OpSignin             = "signin"
	OpSigninFederated    = "signin_federated"
	OpSendVerification   = "send_verification"
	OpForgotPassword     = "forgot_password"
	OpResetPassword      = "reset_password"
	OpUpdateProfile      = "update_profile"
	OpConfirmEmailChange = "confirm_email_change"
)
