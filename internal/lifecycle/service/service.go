// Package service implements the tenant activation clock: a one-way state
// machine that either activates a tenant's governance agreement in time or
// forfeits its reserve custody to the global citizen pool.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"vaultnet/internal/audit"
	"vaultnet/internal/lifecycle/models"
	"vaultnet/internal/lifecycle/store"
	"vaultnet/internal/platform/metrics"
	vaultmodels "vaultnet/internal/vault/models"
	vaultstore "vaultnet/internal/vault/store"
	"vaultnet/pkg/capability"
	"vaultnet/pkg/domain"
	dErrors "vaultnet/pkg/domain-errors"
	"vaultnet/pkg/platform/sentinel"
	"vaultnet/pkg/platform/tx"
	"vaultnet/pkg/requestcontext"
)

// Service drives the lifecycle clock for all tenants.
type Service struct {
	records store.Store
	vaults  vaultstore.Store
	pool    vaultstore.GlobalPool
	runner  tx.Runner
	auditor *audit.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(records store.Store, vaults vaultstore.Store, pool vaultstore.GlobalPool,
	runner tx.Runner, auditor *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		records: records,
		vaults:  vaults,
		pool:    pool,
		runner:  runner,
		auditor: auditor,
		metrics: m,
		logger:  logger,
	}
}

// Initialize starts the activation clock for a tenant. It is invoked
// internally by the first citizen binding, never directly by callers, so it
// carries no capability gate of its own.
func (s *Service) Initialize(ctx context.Context, code domain.TenantCode, name, reserveRef string) (*models.Record, error) {
	now := requestcontext.Now(ctx)
	record, err := models.NewRecord(code, name, reserveRef, now)
	if err != nil {
		return nil, err
	}
	if err := s.records.Create(ctx, record); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeAlreadyInitialized, "lifecycle clock for tenant %s already running", code)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "initialize lifecycle")
	}

	s.logger.Info("lifecycle clock started",
		"tenant", code.String(),
		"expiry", record.Expiry,
	)
	return record, nil
}

// Activate moves a Pending tenant to Active. Requires GovernanceCaller or
// VaultAdmin; the vault service delegates here when a sovereignty signature
// lands.
func (s *Service) Activate(ctx context.Context, code domain.TenantCode) (*models.Record, error) {
	caps := requestcontext.Capabilities(ctx)
	if !caps.HasAny(capability.GovernanceCaller, capability.VaultAdmin) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "activation requires governance or vault-admin capability")
	}

	now := requestcontext.Now(ctx)
	record, err := s.records.Execute(ctx, code,
		func(r *models.Record) error { return r.CanActivate() },
		func(r *models.Record) { r.ApplyActivation(now) },
	)
	if err != nil {
		return nil, s.translate(err, code)
	}

	s.metrics.TenantsActivated.Inc()
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionTenantActivated,
		TenantCode: code,
	}); err != nil {
		s.logger.Warn("audit emit failed", "action", audit.ActionTenantActivated, "error", err)
	}
	s.logger.Info("tenant activated", "tenant", code.String())
	return record, nil
}

// ExecuteFlush forfeits an expired Pending tenant's reserve to the global
// citizen pool and returns the amount moved. Permissionless: any caller may
// trigger it once the deadline is objectively past; eligibility is the only
// authorization.
//
// The state transition, the reserve drain, and the pool credit commit as one
// unit. On any failure nothing moves and the tenant stays Pending.
func (s *Service) ExecuteFlush(ctx context.Context, code domain.TenantCode) (int64, error) {
	now := requestcontext.Now(ctx)

	var moved int64
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.records.Execute(ctx, code,
			func(r *models.Record) error { return r.CanFlush(now) },
			func(r *models.Record) { r.ApplyFlush(now) },
		); err != nil {
			return err
		}
		if _, err := s.vaults.Execute(ctx, code, nil,
			func(v *vaultmodels.Vault) { moved = v.DrainReserve(now) },
		); err != nil {
			return err
		}
		if moved > 0 {
			return s.pool.Credit(ctx, moved)
		}
		return nil
	})
	if err != nil {
		return 0, s.translate(err, code)
	}

	s.metrics.TenantsFlushed.Inc()
	s.metrics.FlushedReserveUnits.Add(float64(moved))
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionTenantFlushed,
		TenantCode: code,
		Amount:     moved,
	}); err != nil {
		s.logger.Warn("audit emit failed", "action", audit.ActionTenantFlushed, "error", err)
	}
	s.logger.Info("tenant flushed",
		"tenant", code.String(),
		"moved_units", moved,
	)
	return moved, nil
}

// FlushSweep summarizes one AutoFlushExpired pass.
type FlushSweep struct {
	Scanned    int
	Flushed    []domain.TenantCode
	MovedUnits int64
	Failed     map[domain.TenantCode]string
}

// AutoFlushExpired flushes every eligible tenant. One tenant failing does not
// stop the sweep; failures are collected per tenant and the sweep itself only
// errors when the listing does.
func (s *Service) AutoFlushExpired(ctx context.Context) (FlushSweep, error) {
	now := requestcontext.Now(ctx)
	records, err := s.records.List(ctx)
	if err != nil {
		return FlushSweep{}, dErrors.Wrap(err, dErrors.CodeInternal, "list lifecycle records")
	}

	sweep := FlushSweep{Scanned: len(records), Failed: make(map[domain.TenantCode]string)}
	for _, r := range records {
		if !r.IsEligibleForFlush(now) {
			continue
		}
		moved, err := s.ExecuteFlush(ctx, r.TenantCode)
		if err != nil {
			// Likely lost a race with a concurrent flush or activation;
			// record it and keep sweeping.
			sweep.Failed[r.TenantCode] = err.Error()
			s.logger.Warn("flush failed during sweep", "tenant", r.TenantCode.String(), "error", err)
			continue
		}
		sweep.Flushed = append(sweep.Flushed, r.TenantCode)
		sweep.MovedUnits += moved
	}
	return sweep, nil
}

// Get returns the lifecycle record for a tenant.
func (s *Service) Get(ctx context.Context, code domain.TenantCode) (*models.Record, error) {
	record, err := s.records.FindByCode(ctx, code)
	if err != nil {
		return nil, s.translate(err, code)
	}
	return record, nil
}

// TimeRemaining returns the time left on the activation clock, zero once
// expired.
func (s *Service) TimeRemaining(ctx context.Context, code domain.TenantCode) (time.Duration, error) {
	record, err := s.Get(ctx, code)
	if err != nil {
		return 0, err
	}
	return record.TimeRemaining(requestcontext.Now(ctx)), nil
}

// IsExpired reports whether the tenant's activation deadline has passed.
func (s *Service) IsExpired(ctx context.Context, code domain.TenantCode) (bool, error) {
	record, err := s.Get(ctx, code)
	if err != nil {
		return false, err
	}
	return record.IsExpired(requestcontext.Now(ctx)), nil
}

// IsEligibleForFlush reports whether ExecuteFlush would succeed right now.
func (s *Service) IsEligibleForFlush(ctx context.Context, code domain.TenantCode) (bool, error) {
	record, err := s.Get(ctx, code)
	if err != nil {
		return false, err
	}
	return record.IsEligibleForFlush(requestcontext.Now(ctx)), nil
}

func (s *Service) translate(err error, code domain.TenantCode) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Newf(dErrors.CodeTenantNotFound, "tenant %s has no lifecycle record", code)
	case dErrors.Is(err):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "lifecycle operation")
	}
}
