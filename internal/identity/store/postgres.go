package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"vaultnet/internal/identity/models"
	"vaultnet/pkg/domain"
	"vaultnet/pkg/platform/sentinel"
	txcontext "vaultnet/pkg/platform/tx"
)

// Postgres is the production binding directory. The primary key on
// principal_id enforces bind-once at the database level.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) queryer {
	if t, ok := txcontext.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *Postgres) Create(ctx context.Context, binding *models.Binding) error {
	query := `
		INSERT INTO citizen_bindings (principal_id, tenant_code, proof_ref, lat_e7, lon_e7, bound_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		binding.PrincipalID.String(), binding.TenantCode.String(), binding.ProofRef,
		binding.LatE7, binding.LonE7, binding.BoundAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("principal %s: %w", binding.PrincipalID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert binding: %w", err)
	}
	return nil
}

func (s *Postgres) FindByPrincipal(ctx context.Context, principal domain.PrincipalID) (*models.Binding, error) {
	query := `
		SELECT principal_id, tenant_code, proof_ref, lat_e7, lon_e7, bound_at
		FROM citizen_bindings WHERE principal_id = $1
	`
	var b models.Binding
	var rawPrincipal, rawCode string
	err := s.execer(ctx).QueryRowContext(ctx, query, principal.String()).
		Scan(&rawPrincipal, &rawCode, &b.ProofRef, &b.LatE7, &b.LonE7, &b.BoundAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("principal %s: %w", principal, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select binding: %w", err)
	}
	p, err := domain.ParsePrincipalID(rawPrincipal)
	if err != nil {
		return nil, fmt.Errorf("stored principal id: %w", err)
	}
	b.PrincipalID = p
	b.TenantCode = domain.TenantCode(rawCode)
	return &b, nil
}

func (s *Postgres) CountByTenant(ctx context.Context, code domain.TenantCode) (int64, error) {
	var n int64
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM citizen_bindings WHERE tenant_code = $1`, code.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count bindings: %w", err)
	}
	return n, nil
}
