package store

import (
	"context"
	"fmt"
	"sync"

	"vaultnet/internal/settlement/models"
	"vaultnet/pkg/domain"
	"vaultnet/pkg/platform/sentinel"
)

// Memory is the in-memory swap journal.
type Memory struct {
	mu    sync.RWMutex
	seq   int64
	byID  map[domain.SwapID]*models.CrossSwapRecord
	order []domain.SwapID
}

func NewMemory() *Memory {
	return &Memory{byID: make(map[domain.SwapID]*models.CrossSwapRecord)}
}

func (s *Memory) NextSeq(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq, nil
}

func (s *Memory) Append(_ context.Context, record *models.CrossSwapRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[record.SwapID]; exists {
		return fmt.Errorf("swap %s: %w", record.SwapID, sentinel.ErrConflict)
	}
	r := *record
	s.byID[record.SwapID] = &r
	s.order = append(s.order, record.SwapID)
	return nil
}

func (s *Memory) FindByID(_ context.Context, id domain.SwapID) (*models.CrossSwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("swap %s: %w", id, sentinel.ErrNotFound)
	}
	out := *r
	return &out, nil
}

func (s *Memory) ListByTenant(_ context.Context, code domain.TenantCode) ([]*models.CrossSwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.CrossSwapRecord
	for i := len(s.order) - 1; i >= 0; i-- {
		r := s.byID[s.order[i]]
		if r.FromTenant == code || r.ToTenant == code {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}
