// Package store persists citizen bindings.
package store

import (
	"context"

	"vaultnet/internal/identity/models"
	"vaultnet/pkg/domain"
)

// Store owns the binding directory. Bindings are write-once: Create is the
// only mutation and it refuses to overwrite.
type Store interface {
	// Create persists a binding. sentinel.ErrConflict when the principal is
	// already bound.
	Create(ctx context.Context, binding *models.Binding) error

	// FindByPrincipal returns a copy of the principal's binding.
	// sentinel.ErrNotFound when the principal is unbound.
	FindByPrincipal(ctx context.Context, principal domain.PrincipalID) (*models.Binding, error)

	// CountByTenant returns how many principals are bound to the tenant.
	CountByTenant(ctx context.Context, code domain.TenantCode) (int64, error)
}
