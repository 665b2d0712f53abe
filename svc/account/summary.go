package account

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Summary is the client-facing view of an account. It never carries the
// password hash or the pending email token.
type Summary struct {
	ID                uuid.UUID        `json:"id"`
	Email             string           `json:"email"`
	Role              Role             `json:"role"`
	Status            Status           `json:"status"`
	HasPassword       bool             `json:"hasPassword"`
	PendingEmail      *string          `json:"pendingEmail"`
	Providers         []string         `json:"providers"`
	SecuritySettings  SecuritySettings `json:"securitySettings"`
	PasswordChangedAt time.Time        `json:"passwordChangedAt"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

func NewSummary(a *Account) Summary {
	s := Summary{
		ID:                a.ID,
		Email:             a.Email,
		Role:              a.Role.Effective(),
		Status:            a.Status,
		HasPassword:       a.HasPassword(),
		Providers:         a.Providers(),
		SecuritySettings:  a.SecuritySettings,
		PasswordChangedAt: a.PasswordChangedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if a.PendingEmail != "" {
		pending := a.PendingEmail
		s.PendingEmail = &pending
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	return s
}

func NewSummaries(accs []*Account) []Summary {
	out := make([]Summary, len(accs))
	for i, a := range accs {
		out[i] = NewSummary(a)
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
