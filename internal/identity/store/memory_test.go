package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vaultnet/internal/identity/models"
	"vaultnet/pkg/domain"
	"vaultnet/pkg/platform/sentinel"
)

type BindingStoreSuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func (s *BindingStoreSuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func TestBindingStoreSuite(t *testing.T) {
	suite.Run(t, new(BindingStoreSuite))
}

func (s *BindingStoreSuite) newBinding(code string) *models.Binding {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	b, err := models.NewBinding(domain.NewPrincipalID(), domain.TenantCode(code), "proof:kyc:1", 65000000, 34000000, now)
	s.Require().NoError(err)
	return b
}

func (s *BindingStoreSuite) TestBindOnce() {
	binding := s.newBinding("NG")
	s.Require().NoError(s.store.Create(s.ctx, binding))

	s.Run("finds by principal", func() {
		found, err := s.store.FindByPrincipal(s.ctx, binding.PrincipalID)
		s.Require().NoError(err)
		s.Equal(binding.TenantCode, found.TenantCode)
		s.Equal(binding.ProofRef, found.ProofRef)
	})

	s.Run("second create for same principal conflicts", func() {
		dup := *binding
		dup.TenantCode = "GH"
		s.Require().ErrorIs(s.store.Create(s.ctx, &dup), sentinel.ErrConflict)
	})

	s.Run("unknown principal", func() {
		_, err := s.store.FindByPrincipal(s.ctx, domain.NewPrincipalID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *BindingStoreSuite) TestCountByTenant() {
	s.Require().NoError(s.store.Create(s.ctx, s.newBinding("NG")))
	s.Require().NoError(s.store.Create(s.ctx, s.newBinding("NG")))
	s.Require().NoError(s.store.Create(s.ctx, s.newBinding("GH")))

	n, err := s.store.CountByTenant(s.ctx, "NG")
	s.Require().NoError(err)
	s.Equal(int64(2), n)

	n, err = s.store.CountByTenant(s.ctx, "ZZ")
	s.Require().NoError(err)
	s.Zero(n)
}
