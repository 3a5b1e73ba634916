// Package store persists the append-only cross-swap journal.
package store

import (
	"context"

	"vaultnet/internal/settlement/models"
	"vaultnet/pkg/domain"
)

// Store owns swap records. The journal is append-only; NextSeq hands out the
// monotonic sequence number a record's id is derived from.
type Store interface {
	// NextSeq reserves the next settlement sequence number.
	NextSeq(ctx context.Context) (int64, error)

	// Append persists a settled swap. sentinel.ErrConflict on a duplicate
	// swap id.
	Append(ctx context.Context, record *models.CrossSwapRecord) error

	// FindByID returns a copy of the swap record. sentinel.ErrNotFound when
	// absent.
	FindByID(ctx context.Context, id domain.SwapID) (*models.CrossSwapRecord, error)

	// ListByTenant returns swaps where the tenant is sender or recipient
	// side, newest first.
	ListByTenant(ctx context.Context, code domain.TenantCode) ([]*models.CrossSwapRecord, error)
}
