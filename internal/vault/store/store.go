// Package store persists NationalVault records and the global citizen pool.
// Stores are interface-driven so the memory and postgres backends stay
// swappable without rewiring domain logic.
package store

import (
	"context"

	"vaultnet/internal/vault/models"
	"vaultnet/pkg/domain"
)

// Store owns vault records. Mutations go through the Execute callbacks so
// validation and mutation happen under the same record lock (mutex in
// memory, SELECT FOR UPDATE in postgres) and no mutation of a vault can be
// observed mid-flight by another operation.
type Store interface {
	// Create persists a new vault. Returns sentinel.ErrConflict when the
	// tenant code is already registered.
	Create(ctx context.Context, vault *models.Vault) error

	// FindByCode returns a copy of the vault. sentinel.ErrNotFound when
	// absent.
	FindByCode(ctx context.Context, code domain.TenantCode) (*models.Vault, error)

	// List returns copies of all vaults.
	List(ctx context.Context) ([]*models.Vault, error)

	// Execute atomically runs validate then apply against the vault while
	// holding its record lock. If validate fails nothing is mutated. Returns
	// the updated vault.
	Execute(ctx context.Context, code domain.TenantCode,
		validate func(v *models.Vault) error,
		apply func(v *models.Vault)) (*models.Vault, error)

	// ExecutePair is Execute over two distinct vaults, locking both for the
	// duration so the two legs of a settlement mutate as one unit. Locks are
	// acquired in tenant-code order to prevent deadlock.
	ExecutePair(ctx context.Context, a, b domain.TenantCode,
		validate func(av, bv *models.Vault) error,
		apply func(av, bv *models.Vault)) (*models.Vault, *models.Vault, error)
}

// GlobalPool accumulates reserve balances forfeited by flushed tenants,
// redistributable to any verified principal outside this subsystem.
type GlobalPool interface {
	Credit(ctx context.Context, amount int64) error
	Balance(ctx context.Context) (int64, error)
}
