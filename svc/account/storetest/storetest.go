// Package storetest is a conformance suite for account.Storage implementations.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alqudsguide/backend/svc/account"
)

// Factory returns an empty store.
type Factory func(t *testing.T) account.Storage

// NewAccount returns a valid password account with a unique email.
func NewAccount(email string) *account.Account {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &account.Account{
		ID:                uuid.New(),
		Email:             email,
		PasswordHash:      "$2a$12$abcdefghijklmnopqrstuuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0",
		Role:              account.RoleUser,
		Status:            account.StatusActive,
		SecuritySettings:  account.DefaultSecuritySettings(),
		PasswordChangedAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Run exercises the Storage contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		store := newStore(t)
		acc := NewAccount("find@example.com")
		acc.FederatedIdentities = []account.FederatedIdentity{{Provider: "google", Subject: "g-1", LinkedAt: acc.CreatedAt}}
		require.NoError(t, store.Create(ctx, acc))

		byID, err := store.FindByID(ctx, acc.ID)
		require.NoError(t, err)
		assert.Equal(t, acc.Email, byID.Email)
		assert.Equal(t, acc.PasswordHash, byID.PasswordHash)
		assert.Equal(t, acc.Role, byID.Role)
		assert.Equal(t, acc.Status, byID.Status)
		assert.Equal(t, acc.SecuritySettings, byID.SecuritySettings)
		assert.True(t, acc.PasswordChangedAt.Equal(byID.PasswordChangedAt))
		require.Len(t, byID.FederatedIdentities, 1)
		assert.Equal(t, "google", byID.FederatedIdentities[0].Provider)

		byEmail, err := store.FindByEmail(ctx, "find@example.com")
		require.NoError(t, err)
		assert.Equal(t, acc.ID, byEmail.ID)

		byIdentity, err := store.FindByFederatedIdentity(ctx, "google", "g-1")
		require.NoError(t, err)
		assert.Equal(t, acc.ID, byIdentity.ID)
	})

	t.Run("not found", func(t *testing.T) {
		store := newStore(t)
		_, err := store.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
		_, err = store.FindByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
		_, err = store.FindByFederatedIdentity(ctx, "google", "missing")
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
		_, err = store.Update(ctx, uuid.New(), account.Update{UpdatedAt: time.Now()})
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
		assert.ErrorIs(t, store.Delete(ctx, uuid.New()), account.ErrAccountNotFound)
	})

	t.Run("email is unique", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Create(ctx, NewAccount("dup@example.com")))
		assert.ErrorIs(t, store.Create(ctx, NewAccount("dup@example.com")), account.ErrEmailTaken)

		other := NewAccount("other@example.com")
		require.NoError(t, store.Create(ctx, other))
		taken := "dup@example.com"
		_, err := store.Update(ctx, other.ID, account.Update{Email: &taken})
		assert.ErrorIs(t, err, account.ErrEmailTaken)
	})

	t.Run("accounts without email do not collide", func(t *testing.T) {
		store := newStore(t)
		a, b := NewAccount(""), NewAccount("")
		a.PasswordHash, b.PasswordHash = "", ""
		a.FederatedIdentities = []account.FederatedIdentity{{Provider: "facebook", Subject: "f-1"}}
		b.FederatedIdentities = []account.FederatedIdentity{{Provider: "facebook", Subject: "f-2"}}
		require.NoError(t, store.Create(ctx, a))
		require.NoError(t, store.Create(ctx, b))
	})

	t.Run("federated identity is unique", func(t *testing.T) {
		store := newStore(t)
		a, b := NewAccount("a@example.com"), NewAccount("b@example.com")
		a.FederatedIdentities = []account.FederatedIdentity{{Provider: "google", Subject: "same"}}
		b.FederatedIdentities = []account.FederatedIdentity{{Provider: "google", Subject: "same"}}
		require.NoError(t, store.Create(ctx, a))
		assert.ErrorIs(t, store.Create(ctx, b), account.ErrIdentityLinked)

		c := NewAccount("c@example.com")
		require.NoError(t, store.Create(ctx, c))
		_, err := store.Update(ctx, c.ID, account.Update{AddIdentity: &account.FederatedIdentity{Provider: "google", Subject: "same"}})
		assert.ErrorIs(t, err, account.ErrIdentityLinked)
	})

	t.Run("partial update", func(t *testing.T) {
		store := newStore(t)
		acc := NewAccount("partial@example.com")
		require.NoError(t, store.Create(ctx, acc))

		at := acc.CreatedAt.Add(time.Hour)
		hash := "new-hash"
		inactive := account.StatusInactive
		updated, err := store.Update(ctx, acc.ID, account.Update{
			PasswordHash:      &hash,
			PasswordChangedAt: &at,
			Status:            &inactive,
			UpdatedAt:         at,
		})
		require.NoError(t, err)
		assert.Equal(t, "new-hash", updated.PasswordHash)
		assert.True(t, at.Equal(updated.PasswordChangedAt))
		assert.Equal(t, account.StatusInactive, updated.Status)
		assert.Equal(t, "partial@example.com", updated.Email)
		assert.Equal(t, account.RoleUser, updated.Role)
	})

	t.Run("pending email set and cleared together", func(t *testing.T) {
		store := newStore(t)
		acc := NewAccount("old@example.com")
		require.NoError(t, store.Create(ctx, acc))

		updated, err := store.Update(ctx, acc.ID, account.Update{
			SetPending: &account.PendingEmail{Email: "new@example.com", TokenDigest: "digest"},
		})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.PendingEmail)
		assert.Equal(t, "digest", updated.PendingEmailToken)
		assert.Equal(t, "old@example.com", updated.Email)

		email := "new@example.com"
		updated, err = store.Update(ctx, acc.ID, account.Update{Email: &email, ClearPending: true})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", updated.Email)
		assert.Empty(t, updated.PendingEmail)
		assert.Empty(t, updated.PendingEmailToken)

		_, err = store.FindByEmail(ctx, "old@example.com")
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
		found, err := store.FindByEmail(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, acc.ID, found.ID)
	})

	t.Run("add identity keeps password", func(t *testing.T) {
		store := newStore(t)
		acc := NewAccount("link@example.com")
		require.NoError(t, store.Create(ctx, acc))

		updated, err := store.Update(ctx, acc.ID, account.Update{
			AddIdentity: &account.FederatedIdentity{Provider: "google", Subject: "g-link"},
		})
		require.NoError(t, err)
		assert.True(t, updated.HasPassword())
		assert.Len(t, updated.FederatedIdentities, 1)

		found, err := store.FindByFederatedIdentity(ctx, "google", "g-link")
		require.NoError(t, err)
		assert.Equal(t, acc.ID, found.ID)
	})

	t.Run("delete", func(t *testing.T) {
		store := newStore(t)
		acc := NewAccount("gone@example.com")
		require.NoError(t, store.Create(ctx, acc))
		require.NoError(t, store.Delete(ctx, acc.ID))

		_, err := store.FindByID(ctx, acc.ID)
		assert.ErrorIs(t, err, account.ErrAccountNotFound)
		require.NoError(t, store.Create(ctx, NewAccount("gone@example.com")), "email is free after delete")
	})

	t.Run("list filters and pages", func(t *testing.T) {
		store := newStore(t)
		base := time.Now().UTC().Truncate(time.Millisecond)
		for i := range 5 {
			acc := NewAccount(fmt.Sprintf("user%d@example.com", i))
			acc.CreatedAt = base.Add(time.Duration(i) * time.Second)
			if i == 0 {
				acc.Role = account.RoleAdmin
			}
			if i%2 == 1 {
				acc.Status = account.StatusInactive
			}
			require.NoError(t, store.Create(ctx, acc))
		}

		all, err := store.List(ctx, account.ListFilter{})
		require.NoError(t, err)
		require.Len(t, all, 5)
		assert.Equal(t, "user4@example.com", all[0].Email, "newest first")

		admins, err := store.List(ctx, account.ListFilter{Role: account.RoleAdmin})
		require.NoError(t, err)
		require.Len(t, admins, 1)
		assert.Equal(t, "user0@example.com", admins[0].Email)

		inactive, err := store.List(ctx, account.ListFilter{Status: account.StatusInactive})
		require.NoError(t, err)
		assert.Len(t, inactive, 2)

		byEmail, err := store.List(ctx, account.ListFilter{EmailContains: "USER3"})
		require.NoError(t, err)
		require.Len(t, byEmail, 1)

		page, err := store.List(ctx, account.ListFilter{Limit: 2, Offset: 2})
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "user2@example.com", page[0].Email)

		empty, err := store.List(ctx, account.ListFilter{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("concurrent creates with one email", func(t *testing.T) {
		store := newStore(t)
		const n = 8
		var wg sync.WaitGroup
		errs := make(chan error, n)
		for range n {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- store.Create(ctx, NewAccount("race@example.com"))
			}()
		}
		wg.Wait()
		close(errs)

		created := 0
		for err := range errs {
			if err == nil {
				created++
				continue
			}
			assert.ErrorIs(t, err, account.ErrEmailTaken)
		}
		assert.Equal(t, 1, created)
	})
}
