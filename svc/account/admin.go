package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alqudsguide/backend/pkg/logger"
)

// Get returns one account.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.store.FindByID(ctx, id)
}

// List returns one page of accounts.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Account, error) {
	if filter.Role != "" {
		if _, err := ParseRole(string(filter.Role)); err != nil {
			return nil, err
		}
	}
	if filter.Status != "" {
		if _, err := ParseStatus(string(filter.Status)); err != nil {
			return nil, err
		}
	}
	accs, err := s.store.List(ctx, filter.Normalize())
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accs, nil
}

// Each pages through every account matching filter. Limit and Offset are ignored.
func (s *Service) Each(ctx context.Context, filter ListFilter, fn func(*Account) error) error {
	filter.Limit, filter.Offset = MaxListLimit, 0
	for {
		page, err := s.List(ctx, filter)
		if err != nil {
			return err
		}
		for _, acc := range page {
			if err := fn(acc); err != nil {
				return err
			}
		}
		if len(page) < filter.Limit {
			return nil
		}
		filter.Offset += len(page)
	}
}

// Stats summarizes the account population.
type Stats struct {
	Total               int `json:"total"`
	Admins              int `json:"admins"`
	Users               int `json:"users"`
	Active              int `json:"active"`
	Inactive            int `json:"inactive"`
	WithPassword        int `json:"withPassword"`
	FederatedOnly       int `json:"federatedOnly"`
	PendingEmailChanges int `json:"pendingEmailChanges"`
	PasswordExpired     int `json:"passwordExpired"`
}

// Stats walks every account and tallies it into each bucket.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	now := s.now()
	err := s.Each(ctx, ListFilter{}, func(a *Account) error {
		st.Total++
		if a.IsAdmin() {
			st.Admins++
		} else {
			st.Users++
		}
		if a.IsActive() {
			st.Active++
		} else {
			st.Inactive++
		}
		if a.HasPassword() {
			st.WithPassword++
		} else {
			st.FederatedOnly++
		}
		if a.HasPendingEmail() {
			st.PendingEmailChanges++
		}
		if a.PasswordExpired(now) {
			st.PasswordExpired++
		}
		return nil
	})
	return st, err
}

// Delete removes targetID permanently. Admins cannot delete themselves.
func (s *Service) Delete(ctx context.Context, actor *Account, targetID uuid.UUID) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrForbidden
	}
	if actor.ID == targetID {
		return ErrSelfDeletion
	}
	if err := s.store.Delete(ctx, targetID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "account deleted",
		logger.AccountID(targetID),
		slogActor(actor),
	)
	return nil
}

// UpdateStatus activates or deactivates targetID. Admins cannot deactivate themselves.
func (s *Service) UpdateStatus(ctx context.Context, actor *Account, targetID uuid.UUID, status string) (*Account, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	if actor.ID == targetID && st == StatusInactive {
		return nil, ErrSelfDeactivation
	}

	acc, err := s.store.Update(ctx, targetID, Update{Status: &st, UpdatedAt: s.timestamp()})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "account status changed",
		logger.AccountID(targetID),
		slogActor(actor),
		logger.Event(string(st)),
	)
	return acc, nil
}
