package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"vaultnet/internal/vault/models"
	"vaultnet/pkg/domain"
	"vaultnet/pkg/platform/sentinel"
	txcontext "vaultnet/pkg/platform/tx"
)

// Postgres is the production vault store. Execute and ExecutePair lock rows
// with SELECT ... FOR UPDATE inside one transaction, which is the database
// equivalent of the memory store's mutex discipline. When the context
// carries a transaction (multi-store operations), statements join it.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) queryer {
	if t, ok := txcontext.From(ctx); ok {
		return t
	}
	return s.db
}

// withTx runs fn inside the context transaction when present, otherwise in a
// local one.
func (s *Postgres) withTx(ctx context.Context, fn func(q queryer) error) error {
	if t, ok := txcontext.From(ctx); ok {
		return fn(t)
	}
	t, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(t); err != nil {
		_ = t.Rollback()
		return err
	}
	return t.Commit()
}

const vaultColumns = `tenant_code, name, reserve_ref, liquidity_ref, stable_unit_ref,
	reserve_balance, liquidity_balance, lock_expiry, active, sovereignty_signed,
	created_at, updated_at`

func scanVault(row interface{ Scan(dest ...any) error }) (*models.Vault, error) {
	var v models.Vault
	var code string
	var lockExpiry sql.NullTime
	err := row.Scan(&code, &v.Name, &v.ReserveRef, &v.LiquidityRef, &v.StableUnitRef,
		&v.ReserveBalance, &v.LiquidityBalance, &lockExpiry, &v.Active, &v.SovereigntySigned,
		&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	v.TenantCode = domain.TenantCode(code)
	if lockExpiry.Valid {
		v.LockExpiry = lockExpiry.Time
	}
	return &v, nil
}

func (s *Postgres) Create(ctx context.Context, vault *models.Vault) error {
	query := `
		INSERT INTO vaults (` + vaultColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	var lockExpiry sql.NullTime
	if !vault.LockExpiry.IsZero() {
		lockExpiry = sql.NullTime{Time: vault.LockExpiry, Valid: true}
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		vault.TenantCode.String(), vault.Name, vault.ReserveRef, vault.LiquidityRef,
		vault.StableUnitRef, vault.ReserveBalance, vault.LiquidityBalance, lockExpiry,
		vault.Active, vault.SovereigntySigned, vault.CreatedAt, vault.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("vault %s: %w", vault.TenantCode, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert vault: %w", err)
	}
	return nil
}

func (s *Postgres) FindByCode(ctx context.Context, code domain.TenantCode) (*models.Vault, error) {
	query := `SELECT ` + vaultColumns + ` FROM vaults WHERE tenant_code = $1`
	v, err := scanVault(s.execer(ctx).QueryRowContext(ctx, query, code.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vault %s: %w", code, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select vault: %w", err)
	}
	return v, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Vault, error) {
	query := `SELECT ` + vaultColumns + ` FROM vaults ORDER BY tenant_code`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vaults: %w", err)
	}
	defer rows.Close()

	var out []*models.Vault
	for rows.Next() {
		v, err := scanVault(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vault: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Postgres) Execute(ctx context.Context, code domain.TenantCode,
	validate func(v *models.Vault) error,
	apply func(v *models.Vault)) (*models.Vault, error) {

	var out *models.Vault
	err := s.withTx(ctx, func(q queryer) error {
		v, err := lockVault(ctx, q, code)
		if err != nil {
			return err
		}
		if validate != nil {
			if err := validate(v); err != nil {
				return err
			}
		}
		if apply != nil {
			apply(v)
		}
		if err := updateVault(ctx, q, v); err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Postgres) ExecutePair(ctx context.Context, a, b domain.TenantCode,
	validate func(av, bv *models.Vault) error,
	apply func(av, bv *models.Vault)) (*models.Vault, *models.Vault, error) {

	if a == b {
		return nil, nil, fmt.Errorf("pair requires distinct vaults: %w", sentinel.ErrInvalidState)
	}

	// Lock in tenant-code order so concurrent opposite-direction swaps
	// cannot deadlock.
	first, second := a, b
	if second < first {
		first, second = second, first
	}

	var outA, outB *models.Vault
	err := s.withTx(ctx, func(q queryer) error {
		fv, err := lockVault(ctx, q, first)
		if err != nil {
			return err
		}
		sv, err := lockVault(ctx, q, second)
		if err != nil {
			return err
		}
		av, bv := fv, sv
		if first != a {
			av, bv = sv, fv
		}
		if validate != nil {
			if err := validate(av, bv); err != nil {
				return err
			}
		}
		if apply != nil {
			apply(av, bv)
		}
		if err := updateVault(ctx, q, av); err != nil {
			return err
		}
		if err := updateVault(ctx, q, bv); err != nil {
			return err
		}
		outA, outB = av, bv
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return outA, outB, nil
}

func lockVault(ctx context.Context, q queryer, code domain.TenantCode) (*models.Vault, error) {
	query := `SELECT ` + vaultColumns + ` FROM vaults WHERE tenant_code = $1 FOR UPDATE`
	v, err := scanVault(q.QueryRowContext(ctx, query, code.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("vault %s: %w", code, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock vault: %w", err)
	}
	return v, nil
}

func updateVault(ctx context.Context, q queryer, v *models.Vault) error {
	query := `
		UPDATE vaults
		SET name = $2, reserve_ref = $3, liquidity_ref = $4, stable_unit_ref = $5,
			reserve_balance = $6, liquidity_balance = $7, lock_expiry = $8,
			active = $9, sovereignty_signed = $10, updated_at = $11
		WHERE tenant_code = $1
	`
	var lockExpiry sql.NullTime
	if !v.LockExpiry.IsZero() {
		lockExpiry = sql.NullTime{Time: v.LockExpiry, Valid: true}
	}
	_, err := q.ExecContext(ctx, query,
		v.TenantCode.String(), v.Name, v.ReserveRef, v.LiquidityRef, v.StableUnitRef,
		v.ReserveBalance, v.LiquidityBalance, lockExpiry, v.Active, v.SovereigntySigned,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update vault: %w", err)
	}
	return nil
}

// PostgresPool is the postgres-backed global citizen pool (single row).
type PostgresPool struct {
	db *sql.DB
}

func NewPostgresPool(db *sql.DB) *PostgresPool {
	return &PostgresPool{db: db}
}

func (p *PostgresPool) execer(ctx context.Context) queryer {
	if t, ok := txcontext.From(ctx); ok {
		return t
	}
	return p.db
}

func (p *PostgresPool) Credit(ctx context.Context, amount int64) error {
	_, err := p.execer(ctx).ExecContext(ctx,
		`UPDATE global_citizen_pool SET balance = balance + $1 WHERE id`, amount)
	if err != nil {
		return fmt.Errorf("credit global pool: %w", err)
	}
	return nil
}

func (p *PostgresPool) Balance(ctx context.Context) (int64, error) {
	var balance int64
	err := p.execer(ctx).QueryRowContext(ctx,
		`SELECT balance FROM global_citizen_pool WHERE id`).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("read global pool: %w", err)
	}
	return balance, nil
}
