package account

import (
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role grants access to the admin API. The empty role behaves as user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole accepts admin and user case-insensitively.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleUser:
		return r, nil
	}
	return "", ErrInvalidRole
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Effective treats the empty role as user.
func (r Role) Effective() Role {
	if r == "" {
		return RoleUser
	}
	return r
}

// Status controls whether an account may sign in.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus accepts active and inactive exactly as written.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusActive, StatusInactive:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// FederatedIdentity links an account to a user at an external provider.
type FederatedIdentity struct {
	Provider string    `json:"provider" bson:"provider"`
	Subject  string    `json:"subject" bson:"subject"`
	LinkedAt time.Time `json:"linkedAt" bson:"linked_at"`
}

// DefaultPasswordExpiryMinutes is 90 days.
const DefaultPasswordExpiryMinutes = 90 * 24 * 60

// SecuritySettings holds per-account policy flags. Only the password expiry
// pair is enforced; the rest are stored for the client.
type SecuritySettings struct {
	PasswordExpiryEnabled         bool `json:"passwordExpiryEnabled" bson:"password_expiry_enabled"`
	PasswordExpiryIntervalMinutes int  `json:"passwordExpiryInterval" bson:"password_expiry_interval_minutes"`
	TwoFactor                     bool `json:"twoFactor" bson:"two_factor"`
	LoginNotifications            bool `json:"loginNotifications" bson:"login_notifications"`
	SessionTimeout                int  `json:"sessionTimeout" bson:"session_timeout"`
	LoginHistory                  bool `json:"loginHistory" bson:"login_history"`
}

func DefaultSecuritySettings() SecuritySettings {
	return SecuritySettings{
		PasswordExpiryIntervalMinutes: DefaultPasswordExpiryMinutes,
		SessionTimeout:                30,
	}
}

// Account is the persisted identity record.
type Account struct {
	ID                  uuid.UUID
	Email               string
	PasswordHash        string
	FederatedIdentities []FederatedIdentity
	Role                Role
	Status              Status
	PendingEmail        string
	PendingEmailToken   string
	SecuritySettings    SecuritySettings
	PasswordChangedAt   time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// HasPassword reports whether the account has a local credential.
func (a *Account) HasPassword() bool { return a.PasswordHash != "" }

// IsAdmin reports whether the effective role is admin.
func (a *Account) IsAdmin() bool { return a.Role.Effective() == RoleAdmin }

// IsActive treats the empty status as active.
func (a *Account) IsActive() bool { return a.Status != StatusInactive }

func (a *Account) HasPendingEmail() bool { return a.PendingEmail != "" }

// Providers lists the linked provider names.
func (a *Account) Providers() []string {
	out := make([]string, 0, len(a.FederatedIdentities))
	for _, fi := range a.FederatedIdentities {
		if !slices.Contains(out, fi.Provider) {
			out = append(out, fi.Provider)
		}
	}
	return out
}

// PasswordExpired reports whether the password is older than the configured
// interval. Accounts without a password or with expiry disabled never expire.
func (a *Account) PasswordExpired(now time.Time) bool {
	if !a.SecuritySettings.PasswordExpiryEnabled || !a.HasPassword() {
		return false
	}
	interval := a.SecuritySettings.PasswordExpiryIntervalMinutes
	if interval <= 0 {
		interval = DefaultPasswordExpiryMinutes
	}
	changed := a.PasswordChangedAt
	if changed.IsZero() {
		changed = a.CreatedAt
	}
	return now.Sub(changed) >= time.Duration(interval)*time.Minute
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.FederatedIdentities = slices.Clone(a.FederatedIdentities)
	return &c
}

func slogActor(actor *Account) slog.Attr {
	return slog.String("actor_id", actor.ID.String())
}
