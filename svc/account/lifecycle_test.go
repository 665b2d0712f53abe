package account_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/alqudsguide/backend/pkg/validator"
	"github.com/alqudsguide/backend/svc/account"
	"github.com/alqudsguide/backend/svc/notify"
	"github.com/alqudsguide/backend/svc/token"
)

func TestNewService(t *testing.T) {
	t.Parallel()

	_, err := account.NewService(nil, nil, nil, nil)
	assert.ErrorIs(t, err, account.ErrMissingDependency)
}

func TestCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("create then sign in resolves to the same account", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		created := f.create(t, "  Traveller@Example.com ", "Passw0rd!")
		assert.Equal(t, "traveller@example.com", created.Account.Email)
		assert.Equal(t, account.RoleAdmin, created.Account.Role)
		assert.Equal(t, account.StatusActive, created.Account.Status)
		assert.True(t, created.Account.HasPassword())
		assert.NotEqual(t, "Passw0rd!", created.Account.PasswordHash)
		assert.Equal(t, f.clock.Now().Add(24*time.Hour), created.ExpiresAt)
		assert.Equal(t, created.Account.CreatedAt, created.Account.PasswordChangedAt)

		signed, err := f.svc.SignIn(ctx, "traveller@example.com", "Passw0rd!")
		require.NoError(t, err)
		assert.Equal(t, f.clock.Now().Add(7*24*time.Hour), signed.ExpiresAt)

		resolved, err := f.svc.ResolveSession(ctx, signed.Token)
		require.NoError(t, err)
		assert.Equal(t, created.Account.ID, resolved.ID)

		fromSignup, err := f.svc.ResolveSession(ctx, created.Token)
		require.NoError(t, err)
		assert.Equal(t, created.Account.ID, fromSignup.ID)
	})

	t.Run("configured signup role", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, account.WithSignupRole(account.RoleUser))
		assert.Equal(t, account.RoleUser, f.create(t, "u@example.com", "Passw0rd!").Account.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.create(t, "dup@example.com", "Passw0rd!")

		_, err := f.svc.Create(ctx, account.CreateInput{Email: "DUP@example.com", Password: "Passw0rd!", ConfirmPassword: "Passw0rd!"})
		assert.ErrorIs(t, err, account.ErrEmailTaken)
	})

	t.Run("validation happens before the store is touched", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tests := []struct {
			name   string
			in     account.CreateInput
			fields []string
		}{
			{"bad email", account.CreateInput{Email: "nope", Password: "Passw0rd!", ConfirmPassword: "Passw0rd!"}, []string{"email"}},
			{"weak password", account.CreateInput{Email: "a@example.com", Password: "password", ConfirmPassword: "password"}, []string{"password"}},
			{"mismatch", account.CreateInput{Email: "a@example.com", Password: "Passw0rd!", ConfirmPassword: "Passw0rd?"}, []string{"confirmPassword"}},
		}
		for _, tt := range tests {
			_, err := f.svc.Create(ctx, tt.in)
			require.Error(t, err, tt.name)
			ve := validator.ExtractValidationErrors(err)
			for _, field := range tt.fields {
				assert.True(t, ve.Has(field), "%s: %s", tt.name, field)
			}
		}

		accs, err := f.store.List(ctx, account.ListFilter{})
		require.NoError(t, err)
		assert.Empty(t, accs)
	})
}

func TestSignIn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	f.create(t, "owner@example.com", "Passw0rd!")
	f.federated(t, "google", "g-123", "social@example.com")

	_, unknownErr := f.svc.SignIn(ctx, "nobody@example.com", "Passw0rd!")
	_, wrongErr := f.svc.SignIn(ctx, "owner@example.com", "Wrong0rd!")
	_, federatedErr := f.svc.SignIn(ctx, "social@example.com", "Passw0rd!")

	for _, err := range []error{unknownErr, wrongErr, federatedErr} {
		require.ErrorIs(t, err, account.ErrInvalidCredentials)
		assert.Equal(t, account.ErrInvalidCredentials.Error(), err.Error())
	}

	_, err := f.svc.SignIn(ctx, "", "")
	assert.True(t, validator.IsValidationError(err))

	t.Run("inactive account", func(t *testing.T) {
		f := newFixture(t)
		admin := f.create(t, "admin@example.com", "Passw0rd!")
		user := f.create(t, "user@example.com", "Passw0rd!")
		_, err := f.svc.UpdateStatus(ctx, admin.Account, user.Account.ID, "inactive")
		require.NoError(t, err)

		_, err = f.svc.SignIn(ctx, "user@example.com", "Passw0rd!")
		assert.ErrorIs(t, err, account.ErrAccountInactive)
		_, err = f.svc.ResolveSession(ctx, user.Token)
		assert.ErrorIs(t, err, account.ErrAccountInactive)

		_, err = f.svc.SignIn(ctx, "user@example.com", "Wrong0rd!")
		assert.ErrorIs(t, err, account.ErrInvalidCredentials, "status is not revealed without the password")
	})
}

func TestSignInFederated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates a password-less user account once", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		first := f.federated(t, "Google", "g-1", "Walker@Example.com")
		assert.Equal(t, account.RoleUser, first.Account.Role)
		assert.False(t, first.Account.HasPassword())
		assert.Equal(t, "walker@example.com", first.Account.Email)
		assert.Equal(t, []string{"google"}, first.Account.Providers())

		again := f.federated(t, "google", "g-1", "walker@example.com")
		assert.Equal(t, first.Account.ID, again.Account.ID)
	})

	t.Run("verified email owned by another account is not linked", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		squatter := f.create(t, "victim@example.com", "Attack3r!")

		victim := f.federated(t, "google", "victim-sub", "victim@example.com")
		assert.NotEqual(t, squatter.Account.ID, victim.Account.ID)
		assert.Empty(t, victim.Account.Email)
		assert.False(t, victim.Account.HasPassword())
		assert.Equal(t, []string{"google"}, victim.Account.Providers())

		again, err := f.svc.SignIn(ctx, "victim@example.com", "Attack3r!")
		require.NoError(t, err)
		assert.Equal(t, squatter.Account.ID, again.Account.ID)
		assert.Empty(t, again.Account.Providers())
		assert.Equal(t, "victim@example.com", again.Account.Email)
	})

	t.Run("unverified email is never linked or reused", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		owner := f.create(t, "owner@example.com", "Passw0rd!")

		sess, err := f.svc.SignInFederated(ctx, account.FederatedProfile{Provider: "facebook", Subject: "fb-1", Email: "owner@example.com"})
		require.NoError(t, err)
		assert.NotEqual(t, owner.Account.ID, sess.Account.ID)
		assert.Empty(t, sess.Account.Email)
	})

	t.Run("account without email", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		sess := f.federated(t, "facebook", "fb-2", "")
		assert.Empty(t, sess.Account.Email)

		resolved, err := f.svc.ResolveSession(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, sess.Account.ID, resolved.ID)
	})

	t.Run("requires provider and subject", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.SignInFederated(ctx, account.FederatedProfile{Provider: "google"})
		assert.ErrorIs(t, err, account.ErrMissingIdentity)
	})
}

func TestResolveSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	admin := f.create(t, "admin@example.com", "Passw0rd!")
	victim := f.create(t, "victim@example.com", "Passw0rd!")

	require.NoError(t, f.svc.Delete(ctx, admin.Account, victim.Account.ID))
	_, err := f.svc.ResolveSession(ctx, victim.Token)
	assert.ErrorIs(t, err, account.ErrAccountDeleted)

	_, err = f.svc.ResolveSession(ctx, "garbage")
	assert.ErrorIs(t, err, account.ErrTokenInvalid)

	action, err := f.tokens.IssueAction(token.ActionClaims{Purpose: token.PurposeEmailVerify, Email: "a@example.com"}, 0)
	require.NoError(t, err)
	_, err = f.svc.ResolveSession(ctx, action)
	assert.ErrorIs(t, err, account.ErrTokenInvalid, "action tokens are not sessions")

	f.clock.Advance(24*time.Hour + time.Second)
	_, err = f.svc.ResolveSession(ctx, admin.Token)
	assert.ErrorIs(t, err, account.ErrTokenExpired)
}

func TestEmailVerification(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	f := newFixture(t)
	f.deliverOK()

	res, err := f.svc.SendVerification(ctx, "New@Example.com")
	require.NoError(t, err)
	assert.Equal(t, notify.Result{Delivered: true, Channel: "primary"}, res)

	tok := f.outbox.lastToken(t, "new@example.com")
	email, err := f.svc.CheckVerification(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", email)

	accs, err := f.store.List(ctx, account.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, accs, "verification never writes")

	f.clock.Advance(16 * time.Minute)
	_, err = f.svc.CheckVerification(ctx, tok)
	assert.ErrorIs(t, err, account.ErrTokenExpired)

	_, err = f.svc.CheckVerification(ctx, tok+"x")
	assert.ErrorIs(t, err, account.ErrTokenInvalid)

	t.Run("delivery failure surfaces", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.deliverFail()
		_, err := f.svc.SendVerification(ctx, "x@example.com")
		assert.ErrorIs(t, err, account.ErrDeliveryFailed)
	})
}

func TestObserver(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.create(t, "o@example.com", "Passw0rd!")
	_, _ = f.svc.SignIn(context.Background(), "o@example.com", "nope")

	assert.Equal(t, []string{"signup:ok", "signin:error"}, f.ops.ops)
}

func TestSendVerificationDoesNotNotifyOnInvalidEmail(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.SendVerification(context.Background(), "not-an-email")
	assert.True(t, validator.IsValidationError(err))
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteUnknown(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	admin := f.create(t, "admin@example.com", "Passw0rd!")
	assert.ErrorIs(t, f.svc.Delete(context.Background(), admin.Account, uuid.New()), account.ErrAccountNotFound)
}
