// Package memstore is an in-process account.Storage for development and tests.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/alqudsguide/backend/svc/account"
)

type identityKey struct{ provider, subject string }

// Store keeps accounts in maps guarded by one mutex. Every read returns a copy.
type Store struct {
	mu         sync.RWMutex
	accounts   map[uuid.UUID]*account.Account
	emails     map[string]uuid.UUID
	identities map[identityKey]uuid.UUID
}

var _ account.Storage = (*Store)(nil)

func New() *Store {
	return &Store{
		accounts:   make(map[uuid.UUID]*account.Account),
		emails:     make(map[string]uuid.UUID),
		identities: make(map[identityKey]uuid.UUID),
	}
}

func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return acc.Clone(), nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[email]
	if !ok || email == "" {
		return nil, account.ErrAccountNotFound
	}
	return s.accounts[id].Clone(), nil
}

func (s *Store) FindByFederatedIdentity(_ context.Context, provider, subject string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.identities[identityKey{provider, subject}]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	return s.accounts[id].Clone(), nil
}

func (s *Store) Create(_ context.Context, acc *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acc.Email != "" {
		if _, taken := s.emails[acc.Email]; taken {
			return account.ErrEmailTaken
		}
	}
	for _, fi := range acc.FederatedIdentities {
		if _, linked := s.identities[identityKey{fi.Provider, fi.Subject}]; linked {
			return account.ErrIdentityLinked
		}
	}

	stored := acc.Clone()
	s.accounts[stored.ID] = stored
	s.index(stored)
	return nil
}

func (s *Store) Update(_ context.Context, id uuid.UUID, upd account.Update) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}

	if upd.Email != nil && *upd.Email != "" && *upd.Email != current.Email {
		if _, taken := s.emails[*upd.Email]; taken {
			return nil, account.ErrEmailTaken
		}
	}
	if fi := upd.AddIdentity; fi != nil {
		if owner, linked := s.identities[identityKey{fi.Provider, fi.Subject}]; linked {
			if owner != id {
				return nil, account.ErrIdentityLinked
			}
			upd.AddIdentity = nil
		}
	}

	next := current.Clone()
	upd.Apply(next)

	s.unindex(current)
	s.accounts[id] = next
	s.index(next)
	return next.Clone(), nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return account.ErrAccountNotFound
	}
	s.unindex(acc)
	delete(s.accounts, id)
	return nil
}

// List orders accounts by creation time, newest first.
func (s *Store) List(_ context.Context, filter account.ListFilter) ([]*account.Account, error) {
	filter = filter.Normalize()

	s.mu.RLock()
	matched := make([]*account.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		if filter.Matches(acc) {
			matched = append(matched, acc.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *account.Account) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	if filter.Offset >= len(matched) {
		return []*account.Account{}, nil
	}
	end := min(filter.Offset+filter.Limit, len(matched))
	return matched[filter.Offset:end], nil
}

func (s *Store) index(acc *account.Account) {
	if acc.Email != "" {
		s.emails[acc.Email] = acc.ID
	}
	for _, fi := range acc.FederatedIdentities {
		s.identities[identityKey{fi.Provider, fi.Subject}] = acc.ID
	}
}

func (s *Store) unindex(acc *account.Account) {
	if acc.Email != "" {
		delete(s.emails, acc.Email)
	}
	for _, fi := range acc.FederatedIdentities {
		delete(s.identities, identityKey{fi.Provider, fi.Subject})
	}
}
