package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"vaultnet/internal/lifecycle/models"
	"vaultnet/pkg/domain"
	"vaultnet/pkg/platform/sentinel"
	txcontext "vaultnet/pkg/platform/tx"
)

// Postgres is the production lifecycle store. Execute locks the row with
// SELECT ... FOR UPDATE inside one transaction; statements join a context
// transaction when one is present.
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

const recordColumns = `tenant_code, name, reserve_ref, state, clock_start, expiry, updated_at`

func scanRecord(row interface{ Scan(dest ...any) error }) (*models.Record, error) {
	var r models.Record
	var code, state string
	err := row.Scan(&code, &r.Name, &r.ReserveRef, &state, &r.ClockStart, &r.Expiry, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.TenantCode = domain.TenantCode(code)
	r.State = models.State(state)
	return &r, nil
}

func (s *Postgres) Create(ctx context.Context, record *models.Record) error {
	query := `
		INSERT INTO lifecycle_records (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		record.TenantCode.String(), record.Name, record.ReserveRef,
		string(record.State), record.ClockStart, record.Expiry, record.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("lifecycle %s: %w", record.TenantCode, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert lifecycle record: %w", err)
	}
	return nil
}

func (s *Postgres) FindByCode(ctx context.Context, code domain.TenantCode) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM lifecycle_records WHERE tenant_code = $1`
	r, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, query, code.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lifecycle %s: %w", code, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select lifecycle record: %w", err)
	}
	return r, nil
}

func (s *Postgres) List(ctx context.Context) ([]*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM lifecycle_records ORDER BY tenant_code`
	rows, err := s.execer(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list lifecycle records: %w", err)
	}
	defer rows.Close()

	var out []*models.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lifecycle record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Postgres) Execute(ctx context.Context, code domain.TenantCode,
	validate func(r *models.Record) error,
	apply func(r *models.Record)) (*models.Record, error) {

	var out *models.Record
	err := s.withTx(ctx, func(q queryer) error {
		query := `SELECT ` + recordColumns + ` FROM lifecycle_records WHERE tenant_code = $1 FOR UPDATE`
		r, err := scanRecord(q.QueryRowContext(ctx, query, code.String()))
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lifecycle %s: %w", code, sentinel.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock lifecycle record: %w", err)
		}
		if validate != nil {
			if err := validate(r); err != nil {
				return err
			}
		}
		if apply != nil {
			apply(r)
		}
		update := `
			UPDATE lifecycle_records
			SET name = $2, reserve_ref = $3, state = $4, clock_start = $5,
				expiry = $6, updated_at = $7
			WHERE tenant_code = $1
		`
		if _, err := q.ExecContext(ctx, update,
			r.TenantCode.String(), r.Name, r.ReserveRef, string(r.State),
			r.ClockStart, r.Expiry, r.UpdatedAt,
		); err != nil {
			return fmt.Errorf("update lifecycle record: %w", err)
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
