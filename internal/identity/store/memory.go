package store

import (
	"context"
	"fmt"
	"sync"

	"vaultnet/internal/identity/models"
	"vaultnet/pkg/domain"
	"vaultnet/pkg/platform/sentinel"
)

// Memory is the in-memory binding directory.
type Memory struct {
	mu       sync.RWMutex
	bindings map[domain.PrincipalID]*models.Binding
}

func NewMemory() *Memory {
	return &Memory{bindings: make(map[domain.PrincipalID]*models.Binding)}
}

func (s *Memory) Create(_ context.Context, binding *models.Binding) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bindings[binding.PrincipalID]; exists {
		return fmt.Errorf("principal %s: %w", binding.PrincipalID, sentinel.ErrConflict)
	}
	b := *binding
	s.bindings[binding.PrincipalID] = &b
	return nil
}

func (s *Memory) FindByPrincipal(_ context.Context, principal domain.PrincipalID) (*models.Binding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[principal]
	if !ok {
		return nil, fmt.Errorf("principal %s: %w", principal, sentinel.ErrNotFound)
	}
	out := *b
	return &out, nil
}

func (s *Memory) CountByTenant(_ context.Context, code domain.TenantCode) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, b := range s.bindings {
		if b.TenantCode == code {
			n++
		}
	}
	return n, nil
}
