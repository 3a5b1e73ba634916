package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vaultnet/internal/vault/models"
	"vaultnet/pkg/domain"
	"vaultnet/pkg/platform/sentinel"
)

// Memory is the in-memory vault store. A single store-wide mutex provides
// the mutual-exclusion discipline: no two mutations interleave, and the two
// legs of ExecutePair are indivisible. Reads work on copies and never expose
// live records.
type Memory struct {
	mu     sync.RWMutex
	vaults map[domain.TenantCode]*models.Vault
}

func NewMemory() *Memory {
	return &Memory{vaults: make(map[domain.TenantCode]*models.Vault)}
}

func (s *Memory) Create(_ context.Context, vault *models.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vaults[vault.TenantCode]; exists {
		return fmt.Errorf("vault %s: %w", vault.TenantCode, sentinel.ErrConflict)
	}
	v := *vault
	s.vaults[vault.TenantCode] = &v
	return nil
}

func (s *Memory) FindByCode(_ context.Context, code domain.TenantCode) (*models.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vaults[code]
	if !ok {
		return nil, fmt.Errorf("vault %s: %w", code, sentinel.ErrNotFound)
	}
	out := *v
	return &out, nil
}

func (s *Memory) List(_ context.Context) ([]*models.Vault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Vault, 0, len(s.vaults))
	for _, v := range s.vaults {
		c := *v
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantCode < out[j].TenantCode })
	return out, nil
}

func (s *Memory) Execute(_ context.Context, code domain.TenantCode,
	validate func(v *models.Vault) error,
	apply func(v *models.Vault)) (*models.Vault, error) {

	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vaults[code]
	if !ok {
		return nil, fmt.Errorf("vault %s: %w", code, sentinel.ErrNotFound)
	}

	// Validate against a copy so a failing validate leaves the record
	// untouched even if it mutates its argument.
	work := *v
	if validate != nil {
		if err := validate(&work); err != nil {
			return nil, err
		}
	}
	if apply != nil {
		apply(&work)
	}
	*v = work
	out := work
	return &out, nil
}

func (s *Memory) ExecutePair(_ context.Context, a, b domain.TenantCode,
	validate func(av, bv *models.Vault) error,
	apply func(av, bv *models.Vault)) (*models.Vault, *models.Vault, error) {

	if a == b {
		return nil, nil, fmt.Errorf("pair requires distinct vaults: %w", sentinel.ErrInvalidState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	av, ok := s.vaults[a]
	if !ok {
		return nil, nil, fmt.Errorf("vault %s: %w", a, sentinel.ErrNotFound)
	}
	bv, ok := s.vaults[b]
	if !ok {
		return nil, nil, fmt.Errorf("vault %s: %w", b, sentinel.ErrNotFound)
	}

	workA, workB := *av, *bv
	if validate != nil {
		if err := validate(&workA, &workB); err != nil {
			return nil, nil, err
		}
	}
	if apply != nil {
		apply(&workA, &workB)
	}
	*av, *bv = workA, workB
	outA, outB := workA, workB
	return &outA, &outB, nil
}

// MemoryPool is the in-memory global citizen pool.
type MemoryPool struct {
	mu      sync.RWMutex
	balance int64
}

func NewMemoryPool() *MemoryPool { return &MemoryPool{} }

func (p *MemoryPool) Credit(_ context.Context, amount int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.balance += amount
	return nil
}

func (p *MemoryPool) Balance(_ context.Context) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balance, nil
}
