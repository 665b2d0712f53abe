package mongostore

import (
	"time"

	"github.com/google/uuid"

	"github.com/alqudsguide/backend/svc/account"
)

type identityDoc struct {
	Provider string    `bson:"provider"`
	Subject  string    `bson:"subject"`
	LinkedAt time.Time `bson:"linked_at"`
}

// accountDoc is the stored shape. Optional strings are omitted when empty so
// the partial unique indexes skip them.
type accountDoc struct {
	ID                  string                   `bson:"_id"`
	Email               string                   `bson:"email,omitempty"`
	PasswordHash        string                   `bson:"password_hash,omitempty"`
	FederatedIdentities []identityDoc            `bson:"federated_identities,omitempty"`
	Role                string                   `bson:"role"`
	Status              string                   `bson:"status"`
	PendingEmail        string                   `bson:"pending_email,omitempty"`
	PendingEmailToken   string                   `bson:"pending_email_token,omitempty"`
	SecuritySettings    account.SecuritySettings `bson:"security_settings"`
	PasswordChangedAt   time.Time                `bson:"password_changed_at"`
	CreatedAt           time.Time                `bson:"created_at"`
	UpdatedAt           time.Time                `bson:"updated_at"`
}

func toDoc(a *account.Account) accountDoc {
	d := accountDoc{
		ID:                a.ID.String(),
		Email:             a.Email,
		PasswordHash:      a.PasswordHash,
		Role:              string(a.Role),
		Status:            string(a.Status),
		PendingEmail:      a.PendingEmail,
		PendingEmailToken: a.PendingEmailToken,
		SecuritySettings:  a.SecuritySettings,
		PasswordChangedAt: a.PasswordChangedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	for _, fi := range a.FederatedIdentities {
		d.FederatedIdentities = append(d.FederatedIdentities, identityDoc(fi))
	}
	return d
}

func (d accountDoc) toAccount() (*account.Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	a := &account.Account{
		ID:                id,
		Email:             d.Email,
		PasswordHash:      d.PasswordHash,
		Role:              account.Role(d.Role),
		Status:            account.Status(d.Status),
		PendingEmail:      d.PendingEmail,
		PendingEmailToken: d.PendingEmailToken,
		SecuritySettings:  d.SecuritySettings,
		PasswordChangedAt: d.PasswordChangedAt.UTC(),
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
	for _, fi := range d.FederatedIdentities {
		a.FederatedIdentities = append(a.FederatedIdentities, account.FederatedIdentity{
			Provider: fi.Provider,
			Subject:  fi.Subject,
			LinkedAt: fi.LinkedAt.UTC(),
		})
	}
	return a, nil
}
