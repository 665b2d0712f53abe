package account

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage persists accounts. Implementations must enforce email and federated
// identity uniqueness and apply each Update atomically.
type Storage interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByFederatedIdentity(ctx context.Context, provider, subject string) (*Account, error)
	Create(ctx context.Context, acc *Account) error
	Update(ctx context.Context, id uuid.UUID, upd Update) (*Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter) ([]*Account, error)
}

// PendingEmail is an unconfirmed email change. TokenDigest is the SHA-256 hex
// digest of the confirmation token.
type PendingEmail struct {
	Email       string
	TokenDigest string
}

// Update is a partial change. Nil fields are left untouched. An Update can add
// credentials but never remove one, so an account cannot lose its last way to
// sign in.
type Update struct {
	Email             *string
	PasswordHash      *string
	PasswordChangedAt *time.Time
	Status            *Status
	Role              *Role
	SecuritySettings  *SecuritySettings
	// SetPending and ClearPending are mutually exclusive; SetPending wins.
	SetPending   *PendingEmail
	ClearPending bool
	AddIdentity  *FederatedIdentity
	UpdatedAt    time.Time
}

// Apply mutates acc in memory. Stores that cannot express the update natively
// use it after loading the record.
func (u Update) Apply(acc *Account) {
	if u.Email != nil {
		acc.Email = *u.Email
	}
	if u.PasswordHash != nil {
		acc.PasswordHash = *u.PasswordHash
	}
	if u.PasswordChangedAt != nil {
		acc.PasswordChangedAt = *u.PasswordChangedAt
	}
	if u.Status != nil {
		acc.Status = *u.Status
	}
	if u.Role != nil {
		acc.Role = *u.Role
	}
	if u.SecuritySettings != nil {
		acc.SecuritySettings = *u.SecuritySettings
	}
	switch {
	case u.SetPending != nil:
		acc.PendingEmail = u.SetPending.Email
		acc.PendingEmailToken = u.SetPending.TokenDigest
	case u.ClearPending:
		acc.PendingEmail = ""
		acc.PendingEmailToken = ""
	}
	if u.AddIdentity != nil {
		acc.FederatedIdentities = append(acc.FederatedIdentities, *u.AddIdentity)
	}
	if !u.UpdatedAt.IsZero() {
		acc.UpdatedAt = u.UpdatedAt
	}
}

const (
	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// ListFilter narrows List. Zero values match everything. EmailContains is a
// case-insensitive substring match.
type ListFilter struct {
	Role          Role
	Status        Status
	EmailContains string
	Limit         int
	Offset        int
}

// Normalize clamps the paging values.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Matches reports whether acc satisfies the non-paging part of the filter.
func (f ListFilter) Matches(acc *Account) bool {
	if f.Role != "" && acc.Role.Effective() != f.Role {
		return false
	}
	if f.Status != "" && acc.Status != f.Status {
		return false
	}
	if f.EmailContains != "" && !containsFold(acc.Email, f.EmailContains) {
		return false
	}
	return true
}
