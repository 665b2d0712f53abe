package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/pkg/sanitizer"
	"github.com/alqudsguide/backend/pkg/validator"
	"github.com/alqudsguide/backend/svc/notify"
	"github.com/alqudsguide/backend/svc/token"
)

// Session is the result of a successful sign-in or sign-up.
type Session struct {
	Account   *Account
	Token     string
	ExpiresAt time.Time
}

type CreateInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func passwordRules(field, password, confirm string) []validator.Rule {
	rules := validator.Password(field, password, validator.DefaultPasswordPolicy())
	return append(rules, validator.EqualString("confirmPassword", confirm, password, field))
}

// Create registers a password account and signs it in with the short signup session.
func (s *Service) Create(ctx context.Context, in CreateInput) (_ *Session, err error) {
	defer s.done(ctx, OpSignup, &err)

	email := sanitizer.NormalizeEmail(in.Email)
	if err := validator.Apply(append(
		[]validator.Rule{validator.ValidEmail("email", email)},
		passwordRules("password", in.Password, in.ConfirmPassword)...,
	)...); err != nil {
		return nil, err
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.timestamp()
	acc := &Account{
		ID:                uuid.New(),
		Email:             email,
		PasswordHash:      hash,
		Role:              s.cfg.SignupRole,
		Status:            StatusActive,
		SecuritySettings:  DefaultSecuritySettings(),
		PasswordChangedAt: now,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Create(ctx, acc); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.InfoContext(ctx, "account created",
		logger.AccountID(acc.ID),
		logger.Role(acc.Role),
	)

	return s.issue(acc, s.cfg.SignupSessionTTL)
}

func (s *Service) issue(acc *Account, ttl time.Duration) (*Session, error) {
	tok, exp, err := s.tokens.IssueSession(acc.ID, acc.Email, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	return &Session{Account: acc, Token: tok, ExpiresAt: exp}, nil
}

// SendVerification mails an email_verify link to email. It stores nothing and
// may be repeated.
func (s *Service) SendVerification(ctx context.Context, email string) (_ notify.Result, err error) {
	defer s.done(ctx, OpSendVerification, &err)

	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(validator.ValidEmail("email", email)); err != nil {
		return notify.Result{}, err
	}

	tok, err := s.tokens.IssueAction(token.ActionClaims{
		Purpose: token.PurposeEmailVerify,
		Email:   email,
	}, 0)
	if err != nil {
		return notify.Result{}, fmt.Errorf("failed to issue verification token: %w", err)
	}

	return s.deliver(ctx, email, verificationEmail(s.link(s.cfg.VerifyEmailPath, tok)))
}

// CheckVerification returns the email carried by a verification token.
func (s *Service) CheckVerification(_ context.Context, tok string) (string, error) {
	claims, err := s.tokens.VerifyAction(tok, token.PurposeEmailVerify)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}
