// Package store persists lifecycle clock records.
package store

import (
	"context"

	"vaultnet/internal/lifecycle/models"
	"vaultnet/pkg/domain"
)

// Store owns lifecycle records. Mutations go through Execute so state
// transitions validate and apply under the record lock; lifecycle states
// only ever move forward.
type Store interface {
	// Create persists a new record. sentinel.ErrConflict when the tenant's
	// clock already exists.
	Create(ctx context.Context, record *models.Record) error

	// FindByCode returns a copy of the record. sentinel.ErrNotFound when
	// absent.
	FindByCode(ctx context.Context, code domain.TenantCode) (*models.Record, error)

	// List returns copies of all records.
	List(ctx context.Context) ([]*models.Record, error)

	// Execute atomically runs validate then apply while holding the record
	// lock. If validate fails nothing is mutated.
	Execute(ctx context.Context, code domain.TenantCode,
		validate func(r *models.Record) error,
		apply func(r *models.Record)) (*models.Record, error)
}
