package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"simohu/internal/mockportal/models"
	"simohu/pkg/platform/sentinel"
)

type InMemoryAccountStoreSuite struct {
	suite.Suite
	store *InMemoryAccountStore
	ctx   context.Context
}

func (s *InMemoryAccountStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func TestInMemoryAccountStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryAccountStoreSuite))
}

func account(login, cpf string) *models.Account {
	return &models.Account{ID: login + "-id", Login: login, CPF: cpf, Name: "Maria Silva"}
}

// TestLookupBehavior tests account retrieval by login and CPF.
func (s *InMemoryAccountStoreSuite) TestLookupBehavior() {
	a := account("Maria@Example.com", "11144477735")
	s.Require().NoError(s.store.Create(s.ctx, a))

	s.Run("returns account by login ignoring case", func() {
		found, err := s.store.FindByLogin(s.ctx, "maria@example.com")
		s.Require().NoError(err)
		s.Same(a, found)
	})

	s.Run("returns account by CPF", func() {
		found, err := s.store.FindByCPF(s.ctx, "11144477735")
		s.Require().NoError(err)
		s.Same(a, found)
	})

	s.Run("returns ErrNotFound for unknown login", func() {
		_, err := s.store.FindByLogin(s.ctx, "missing@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound for unknown CPF", func() {
		_, err := s.store.FindByCPF(s.ctx, "52998224725")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestUniqueness covers the duplicate login and CPF rules.
func (s *InMemoryAccountStoreSuite) TestUniqueness() {
	s.Require().NoError(s.store.Create(s.ctx, account("maria@example.com", "11144477735")))

	s.ErrorIs(s.store.Create(s.ctx, account("MARIA@example.com", "52998224725")), sentinel.ErrConflict)
	s.ErrorIs(s.store.Create(s.ctx, account("joao@example.com", "11144477735")), sentinel.ErrConflict)
	s.Equal(1, s.store.Count())
}

func (s *InMemoryAccountStoreSuite) TestConcurrentCreateSameLogin() {
	var wg sync.WaitGroup
	results := make(chan error, 10)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.store.Create(s.ctx, account("maria@example.com", "11144477735"))
		}()
	}
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
		}
	}
	s.Equal(1, ok)
	s.Equal(1, s.store.Count())
}
