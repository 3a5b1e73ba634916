// Package service implements the identity binding directory: the write-once
// mapping of verified principals to their home tenant.
package service

import (
	"context"
	"errors"
	"log/slog"

	"vaultnet/internal/audit"
	"vaultnet/internal/identity/models"
	"vaultnet/internal/identity/store"
	lifecycleservice "vaultnet/internal/lifecycle/service"
	"vaultnet/internal/platform/metrics"
	vaultmodels "vaultnet/internal/vault/models"
	vaultstore "vaultnet/internal/vault/store"
	"vaultnet/pkg/capability"
	"vaultnet/pkg/domain"
	dErrors "vaultnet/pkg/domain-errors"
	"vaultnet/pkg/platform/sentinel"
	"vaultnet/pkg/requestcontext"
)

// Service owns principal bindings and starts each tenant's lifecycle clock
// on its first binding.
type Service struct {
	bindings  store.Store
	vaults    vaultstore.Store
	lifecycle *lifecycleservice.Service
	auditor   *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(bindings store.Store, vaults vaultstore.Store, lifecycle *lifecycleservice.Service,
	auditor *audit.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		bindings:  bindings,
		vaults:    vaults,
		lifecycle: lifecycle,
		auditor:   auditor,
		metrics:   m,
		logger:    logger,
	}
}

// Bind records a principal's permanent membership in a tenant. Requires
// BindingRouter; the router has already verified the identity proof the
// proofRef points at. The first binding to a tenant starts its activation
// clock.
func (s *Service) Bind(ctx context.Context, principal domain.PrincipalID, code domain.TenantCode,
	proofRef string, latE7, lonE7 int64) (*models.Binding, error) {

	caps := requestcontext.Capabilities(ctx)
	if !caps.Has(capability.BindingRouter) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "binding requires binding-router capability")
	}

	vault, err := s.vaults.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeTenantNotFound, "tenant %s is not registered", code)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up tenant vault")
	}

	now := requestcontext.Now(ctx)
	binding, err := models.NewBinding(principal, code, proofRef, latE7, lonE7, now)
	if err != nil {
		return nil, err
	}

	if err := s.bindings.Create(ctx, binding); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeAlreadyBound, "principal %s is already bound", principal)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create binding")
	}

	s.startClockIfFirst(ctx, vault)

	s.metrics.CitizensBound.Inc()
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionCitizenBound,
		TenantCode: code,
		Principal:  principal.String(),
	}); err != nil {
		s.logger.Warn("audit emit failed", "action", audit.ActionCitizenBound, "error", err)
	}
	s.logger.Info("citizen bound",
		"principal", principal.String(),
		"tenant", code.String(),
	)
	return binding, nil
}

// startClockIfFirst initializes the tenant's lifecycle record. Initialization
// is idempotent from the binding's point of view: only the first binding
// finds no clock running, and a lost race means another binding started it.
func (s *Service) startClockIfFirst(ctx context.Context, vault *vaultmodels.Vault) {
	record, err := s.lifecycle.Initialize(ctx, vault.TenantCode, vault.Name, vault.ReserveRef)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeAlreadyInitialized) {
			return
		}
		// The binding stands; the vault service surfaces a tenant without a
		// clock as Pending-equivalent, and the next binding retries.
		s.logger.Error("lifecycle initialize failed after binding",
			"tenant", vault.TenantCode.String(), "error", err)
		return
	}

	if _, err := s.vaults.Execute(ctx, vault.TenantCode, nil,
		func(v *vaultmodels.Vault) {
			v.LockExpiry = record.Expiry
			v.UpdatedAt = requestcontext.Now(ctx)
		},
	); err != nil {
		s.logger.Error("record lock expiry failed",
			"tenant", vault.TenantCode.String(), "error", err)
	}
}

// Lookup resolves a principal to its binding.
func (s *Service) Lookup(ctx context.Context, principal domain.PrincipalID) (*models.Binding, error) {
	binding, err := s.bindings.FindByPrincipal(ctx, principal)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodePrincipalNotBound, "principal %s is not bound to any tenant", principal)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up binding")
	}
	return binding, nil
}

// CountByTenant reports how many principals a tenant has bound.
func (s *Service) CountByTenant(ctx context.Context, code domain.TenantCode) (int64, error) {
	n, err := s.bindings.CountByTenant(ctx, code)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count bindings")
	}
	return n, nil
}
