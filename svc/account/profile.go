package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/alqudsguide/backend/pkg/logger"
	"github.com/alqudsguide/backend/pkg/sanitizer"
	"github.com/alqudsguide/backend/pkg/validator"
	"github.com/alqudsguide/backend/svc/notify"
	"github.com/alqudsguide/backend/svc/token"
)

// ProfileInput holds the requested changes. Empty fields are not changed.
type ProfileInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	CurrentPassword string `json:"currentPassword"`
}

// ProfileResult describes the account after UpdateProfile. Account.Email is
// still the confirmed address; a requested change shows up as PendingEmail.
type ProfileResult struct {
	Account         *Account
	PasswordChanged bool
	EmailRequested  bool
	Delivery        notify.Result
}

// UpdateProfile changes the password and/or requests an email change.
// The confirmation mail is sent before anything is stored, so a failed
// delivery leaves the account untouched.
func (s *Service) UpdateProfile(ctx context.Context, accountID uuid.UUID, in ProfileInput) (_ *ProfileResult, err error) {
	defer s.done(ctx, OpUpdateProfile, &err)

	acc, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	newEmail := sanitizer.NormalizeEmail(in.Email)
	changeEmail := newEmail != "" && newEmail != acc.Email
	changePassword := in.Password != ""

	var rules []validator.Rule
	if changeEmail {
		rules = append(rules, validator.ValidEmail("email", newEmail))
	}
	if changePassword {
		rules = append(rules, validator.Password("password", in.Password, validator.DefaultPasswordPolicy())...)
	}
	if err := validator.Apply(rules...); err != nil {
		return nil, err
	}

	if !changeEmail && !changePassword {
		return &ProfileResult{Account: acc}, nil
	}

	now := s.timestamp()
	upd := Update{UpdatedAt: now}

	if changePassword {
		if acc.HasPassword() {
			if in.CurrentPassword == "" {
				return nil, ErrCurrentPasswordRequired
			}
			if !s.hasher.Compare(in.CurrentPassword, acc.PasswordHash) {
				return nil, ErrCurrentPasswordIncorrect
			}
		}
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		upd.PasswordHash = &hash
		upd.PasswordChangedAt = &now
	}

	var delivery notify.Result
	if changeEmail {
		if owner, err := s.store.FindByEmail(ctx, newEmail); err == nil && owner.ID != acc.ID {
			return nil, ErrEmailTaken
		} else if err != nil && !errors.Is(err, ErrAccountNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}

		tok, err := s.tokens.IssueAction(token.ActionClaims{
			Purpose:   token.PurposeEmailChange,
			AccountID: acc.ID.String(),
			NewEmail:  newEmail,
		}, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to issue email change token: %w", err)
		}

		delivery, err = s.deliver(ctx, newEmail, emailChangeEmail(s.link(s.cfg.ConfirmEmailChangePath, tok), newEmail))
		if err != nil {
			return nil, err
		}
		upd.SetPending = &PendingEmail{Email: newEmail, TokenDigest: digest(tok)}
	}

	updated, err := s.store.Update(ctx, acc.ID, upd)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "profile updated",
		logger.AccountID(acc.ID),
		logger.Event("profile_update"),
	)
	return &ProfileResult{
		Account:         updated,
		PasswordChanged: changePassword,
		EmailRequested:  changeEmail,
		Delivery:        delivery,
	}, nil
}

// ConfirmEmailChange promotes the pending email carried by an email_change
// token. Tokens superseded by a later request are rejected as invalid.
func (s *Service) ConfirmEmailChange(ctx context.Context, tok string) (_ *Account, err error) {
	defer s.done(ctx, OpConfirmEmailChange, &err)

	claims, err := s.tokens.VerifyAction(tok, token.PurposeEmailChange)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	acc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if acc.PendingEmail != claims.NewEmail || !digestMatches(tok, acc.PendingEmailToken) {
		return nil, ErrTokenInvalid
	}

	if owner, err := s.store.FindByEmail(ctx, claims.NewEmail); err == nil && owner.ID != acc.ID {
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	email := claims.NewEmail
	updated, err := s.store.Update(ctx, acc.ID, Update{
		Email:        &email,
		ClearPending: true,
		UpdatedAt:    s.timestamp(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "email change confirmed", logger.AccountID(acc.ID))
	return updated, nil
}
