package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/pkg/sanitizer"
	"github.com/alqudsguide/backend/pkg/validator"
)

// SignIn checks an email and password. Unknown emails, federated-only
// accounts and wrong passwords all fail with ErrInvalidCredentials.
func (s *Service) SignIn(ctx context.Context, email, password string) (_ *Session, err error) {
	defer s.done(ctx, OpSignin, &err)

	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(
		validator.RequiredString("email", email),
		validator.RequiredString("password", password),
	); err != nil {
		return nil, err
	}

	acc, err := s.store.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		s.compareDummy(password)
		return nil, ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if !acc.HasPassword() {
		s.compareDummy(password)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Compare(password, acc.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !acc.IsActive() {
		return nil, ErrAccountInactive
	}

	s.logger.InfoContext(ctx, "signed in", logger.AccountID(acc.ID))
	return s.issue(acc, s.cfg.SessionTTL)
}

// FederatedProfile is what an OAuth provider reports about the signed-in user.
type FederatedProfile struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// SignInFederated resolves a provider identity to an account. A known identity
// signs in directly; otherwise a password-less account is created. The
// provider's email is kept only when it is verified and not yet registered.
func (s *Service) SignInFederated(ctx context.Context, p FederatedProfile) (_ *Session, err error) {
	defer s.done(ctx, OpSigninFederated, &err)

	p.Provider = strings.ToLower(strings.TrimSpace(p.Provider))
	p.Subject = strings.TrimSpace(p.Subject)
	p.Email = sanitizer.NormalizeEmail(p.Email)
	if p.Provider == "" || p.Subject == "" {
		return nil, ErrMissingIdentity
	}

	acc, err := s.resolveFederated(ctx, p)
	if err != nil {
		return nil, err
	}
	if !acc.IsActive() {
		return nil, ErrAccountInactive
	}

	s.logger.InfoContext(ctx, "signed in with provider",
		logger.AccountID(acc.ID),
		logger.Provider(p.Provider),
	)
	return s.issue(acc, s.cfg.SessionTTL)
}

func (s *Service) resolveFederated(ctx context.Context, p FederatedProfile) (*Account, error) {
	acc, err := s.store.FindByFederatedIdentity(ctx, p.Provider, p.Subject)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to find federated identity: %w", err)
	}

	now := s.timestamp()
	identity := FederatedIdentity{Provider: p.Provider, Subject: p.Subject, LinkedAt: now}

	// Unknown identities are never linked to an existing account by email.
	adoptEmail := false
	if p.Email != "" && p.EmailVerified {
		_, err := s.store.FindByEmail(ctx, p.Email)
		switch {
		case err == nil:
			s.logger.WarnContext(ctx, "provider email already registered, creating account without email",
				logger.Provider(p.Provider),
			)
		case errors.Is(err, ErrAccountNotFound):
			adoptEmail = true
		default:
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
	}

	acc = &Account{
		ID:                  uuid.New(),
		FederatedIdentities: []FederatedIdentity{identity},
		Role:                RoleUser,
		Status:              StatusActive,
		SecuritySettings:    DefaultSecuritySettings(),
		PasswordChangedAt:   now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if adoptEmail {
		acc.Email = p.Email
	}

	err = s.store.Create(ctx, acc)
	if errors.Is(err, ErrEmailTaken) {
		acc.Email = ""
		err = s.store.Create(ctx, acc)
	}
	if errors.Is(err, ErrIdentityLinked) {
		return s.store.FindByFederatedIdentity(ctx, p.Provider, p.Subject)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create federated account: %w", err)
	}

	s.logger.InfoContext(ctx, "account created from provider",
		logger.AccountID(acc.ID),
		logger.Provider(p.Provider),
	)
	return acc, nil
}

// ResolveSession turns a session token into its account. A valid token whose
// account is gone yields ErrAccountDeleted.
func (s *Service) ResolveSession(ctx context.Context, tok string) (*Account, error) {
	claims, err := s.tokens.VerifySession(tok)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	acc, err := s.store.FindByID(ctx, id)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return nil, ErrAccountDeleted
	case err != nil:
		return nil, fmt.Errorf("failed to load session account: %w", err)
	}
	if !acc.IsActive() {
		return nil, ErrAccountInactive
	}
	return acc, nil
}
