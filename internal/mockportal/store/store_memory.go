package store

import (
	"context"
	"strings"
	"sync"

	"simohu/internal/mockportal/models"
	"simohu/pkg/platform/sentinel"
)

// InMemoryAccountStore keeps accounts indexed by login and CPF. Logins are
// compared case-insensitively.
type InMemoryAccountStore struct {
	mu      sync.RWMutex
	byLogin map[string]*models.Account
	byCPF   map[string]*models.Account
}

func New() *InMemoryAccountStore {
	return &InMemoryAccountStore{
		byLogin: make(map[string]*models.Account),
		byCPF:   make(map[string]*models.Account),
	}
}

// Create stores a new account. It returns sentinel.ErrConflict when the login
// or CPF is already taken.
func (s *InMemoryAccountStore) Create(_ context.Context, account *models.Account) error {
	login := strings.ToLower(account.Login)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byLogin[login]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.byCPF[account.CPF]; ok {
		return sentinel.ErrConflict
	}
	s.byLogin[login] = account
	s.byCPF[account.CPF] = account
	return nil
}

func (s *InMemoryAccountStore) FindByLogin(_ context.Context, login string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.byLogin[strings.ToLower(login)]; ok {
		return a, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryAccountStore) FindByCPF(_ context.Context, cpf string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.byCPF[cpf]; ok {
		return a, nil
	}
	return nil, sentinel.ErrNotFound
}

// Count returns the number of stored accounts.
func (s *InMemoryAccountStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byLogin)
}
