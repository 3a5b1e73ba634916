package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"vaultnet/internal/settlement/models"
	"vaultnet/pkg/domain"
	"vaultnet/pkg/platform/sentinel"
	txcontext "vaultnet/pkg/platform/tx"
)

// Postgres is the production swap journal. Sequence numbers come from a
// database sequence so they stay monotonic across processes.
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

func (s *Postgres) NextSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.execer(ctx).QueryRowContext(ctx, `SELECT nextval('cross_swap_seq')`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next swap seq: %w", err)
	}
	return seq, nil
}

func (s *Postgres) Append(ctx context.Context, record *models.CrossSwapRecord) error {
	query := `
		INSERT INTO cross_swaps (swap_id, seq, sender, recipient, from_tenant, to_tenant, amount, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		record.SwapID.String(), record.Seq, record.Sender.String(), record.Recipient.String(),
		record.FromTenant.String(), record.ToTenant.String(), record.Amount, record.ExecutedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("swap %s: %w", record.SwapID, sentinel.ErrConflict)
		}
		return fmt.Errorf("insert swap: %w", err)
	}
	return nil
}

const swapColumns = `swap_id, seq, sender, recipient, from_tenant, to_tenant, amount, executed_at`

func scanSwap(row interface{ Scan(dest ...any) error }) (*models.CrossSwapRecord, error) {
	var r models.CrossSwapRecord
	var id, sender, recipient, from, to string
	err := row.Scan(&id, &r.Seq, &sender, &recipient, &from, &to, &r.Amount, &r.ExecutedAt)
	if err != nil {
		return nil, err
	}
	r.SwapID = domain.SwapID(id)
	s, err := domain.ParsePrincipalID(sender)
	if err != nil {
		return nil, fmt.Errorf("stored sender: %w", err)
	}
	p, err := domain.ParsePrincipalID(recipient)
	if err != nil {
		return nil, fmt.Errorf("stored recipient: %w", err)
	}
	r.Sender, r.Recipient = s, p
	r.FromTenant = domain.TenantCode(from)
	r.ToTenant = domain.TenantCode(to)
	return &r, nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.SwapID) (*models.CrossSwapRecord, error) {
	query := `SELECT ` + swapColumns + ` FROM cross_swaps WHERE swap_id = $1`
	r, err := scanSwap(s.execer(ctx).QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("swap %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select swap: %w", err)
	}
	return r, nil
}

func (s *Postgres) ListByTenant(ctx context.Context, code domain.TenantCode) ([]*models.CrossSwapRecord, error) {
	query := `
		SELECT ` + swapColumns + ` FROM cross_swaps
		WHERE from_tenant = $1 OR to_tenant = $1
		ORDER BY seq DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, code.String())
	if err != nil {
		return nil, fmt.Errorf("list swaps: %w", err)
	}
	defer rows.Close()

	var out []*models.CrossSwapRecord
	for rows.Next() {
		r, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("scan swap: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
