package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"vaultnet/internal/lifecycle/models"
	"vaultnet/pkg/domain"
	"vaultnet/pkg/platform/sentinel"
)

// Memory is the in-memory lifecycle store.
type Memory struct {
	mu      sync.RWMutex
	records map[domain.TenantCode]*models.Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[domain.TenantCode]*models.Record)}
}

func (s *Memory) Create(_ context.Context, record *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.TenantCode]; exists {
		return fmt.Errorf("lifecycle %s: %w", record.TenantCode, sentinel.ErrConflict)
	}
	r := *record
	s.records[record.TenantCode] = &r
	return nil
}

func (s *Memory) FindByCode(_ context.Context, code domain.TenantCode) (*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[code]
	if !ok {
		return nil, fmt.Errorf("lifecycle %s: %w", code, sentinel.ErrNotFound)
	}
	out := *r
	return &out, nil
}

func (s *Memory) List(_ context.Context) ([]*models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Record, 0, len(s.records))
	for _, r := range s.records {
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantCode < out[j].TenantCode })
	return out, nil
}

func (s *Memory) Execute(_ context.Context, code domain.TenantCode,
	validate func(r *models.Record) error,
	apply func(r *models.Record)) (*models.Record, error) {

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[code]
	if !ok {
		return nil, fmt.Errorf("lifecycle %s: %w", code, sentinel.ErrNotFound)
	}

	work := *r
	if validate != nil {
		if err := validate(&work); err != nil {
			return nil, err
		}
	}
	if apply != nil {
		apply(&work)
	}
	*r = work
	out := work
	return &out, nil
}
