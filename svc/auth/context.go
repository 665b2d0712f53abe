package auth

import (
	"context"

	"github.com/alqudsguide/backend/svc/account"
)

type principalKey struct{}

type principal struct {
	account         *account.Account
	passwordExpired bool
}

// WithAccount stores the authenticated account in ctx.
func WithAccount(ctx context.Context, acc *account.Account, passwordExpired bool) context.Context {
	return context.WithValue(ctx, principalKey{}, principal{account: acc, passwordExpired: passwordExpired})
}

// AccountFromContext returns the account stored by Gate.Authenticate.
func AccountFromContext(ctx context.Context) (*account.Account, bool) {
	p, ok := ctx.Value(principalKey{}).(principal)
	if !ok || p.account == nil {
		return nil, false
	}
	return p.account, true
}

// PasswordExpiredFromContext reports whether the authenticated account's
// password is past its expiry.
func PasswordExpiredFromContext(ctx context.Context) bool {
	p, _ := ctx.Value(principalKey{}).(principal)
	return p.passwordExpired
}
