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

// ForgotResult reports whether a reset link was sent. It is empty when the
// email is unknown; callers respond identically in both cases.
type ForgotResult struct {
	Sent     bool
	Delivery notify.Result
}

// ForgotPassword mails a password_reset link. Unknown emails succeed without
// contacting the notifier; federated-only accounts get ErrFederatedOnly.
func (s *Service) ForgotPassword(ctx context.Context, email string) (_ ForgotResult, err error) {
	defer s.done(ctx, OpForgotPassword, &err)

	email = sanitizer.NormalizeEmail(email)
	if err := validator.Apply(validator.ValidEmail("email", email)); err != nil {
		return ForgotResult{}, err
	}

	acc, err := s.store.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return ForgotResult{}, nil
	case err != nil:
		return ForgotResult{}, fmt.Errorf("failed to find account: %w", err)
	}
	if !acc.HasPassword() {
		return ForgotResult{}, ErrFederatedOnly
	}
	if !acc.IsActive() {
		s.logger.WarnContext(ctx, "password reset requested for inactive account", logger.AccountID(acc.ID))
		return ForgotResult{}, nil
	}

	tok, err := s.tokens.IssueAction(token.ActionClaims{
		Purpose:   token.PurposePasswordReset,
		AccountID: acc.ID.String(),
		Email:     acc.Email,
	}, 0)
	if err != nil {
		return ForgotResult{}, fmt.Errorf("failed to issue reset token: %w", err)
	}

	res, err := s.deliver(ctx, acc.Email, resetPasswordEmail(s.link(s.cfg.ResetPasswordPath, tok)))
	if err != nil {
		return ForgotResult{}, err
	}
	return ForgotResult{Sent: true, Delivery: res}, nil
}

type ResetInput struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ResetPassword sets a new password from a password_reset token. A token is
// spent once the password changes after it was issued.
func (s *Service) ResetPassword(ctx context.Context, in ResetInput) (err error) {
	defer s.done(ctx, OpResetPassword, &err)

	claims, err := s.tokens.VerifyAction(in.Token, token.PurposePasswordReset)
	if err != nil {
		return err
	}
	if err := validator.Apply(passwordRules("password", in.Password, in.ConfirmPassword)...); err != nil {
		return err
	}

	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return ErrTokenInvalid
	}
	acc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if acc.Email != claims.Email {
		return ErrTokenInvalid
	}
	if claims.IssuedAt == nil || claims.IssuedAt.Time.Before(acc.PasswordChangedAt.Truncate(time.Second)) {
		return ErrTokenInvalid
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	now := s.timestamp()
	if _, err := s.store.Update(ctx, acc.ID, Update{
		PasswordHash:      &hash,
		PasswordChangedAt: &now,
		UpdatedAt:         now,
	}); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset", logger.AccountID(acc.ID))
	return nil
}

func (s *Service) deliver(ctx context.Context, to string, m message) (notify.Result, error) {
	html, err := m.render(ctx)
	if err != nil {
		return notify.Result{}, fmt.Errorf("failed to render %s email: %w", m.tag, err)
	}
	res, err := s.notifier.Send(ctx, to, m.subject, html)
	if err != nil {
		if !errors.Is(err, ErrDeliveryFailed) {
			err = errors.Join(ErrDeliveryFailed, err)
		}
		return notify.Result{}, err
	}
	return res, nil
}
