// Package service implements the vault registry: registration, deposits with
// the lifecycle-dependent split, and sovereignty signing.
package service

import (
	"context"
	"errors"
	"log/slog"

	"vaultnet/internal/audit"
	"vaultnet/internal/ledger"
	lifecyclemodels "vaultnet/internal/lifecycle/models"
	lifecycleservice "vaultnet/internal/lifecycle/service"
	"vaultnet/internal/platform/metrics"
	"vaultnet/internal/vault/models"
	"vaultnet/internal/vault/store"
	"vaultnet/pkg/capability"
	"vaultnet/pkg/domain"
	dErrors "vaultnet/pkg/domain-errors"
	"vaultnet/pkg/platform/sentinel"
	"vaultnet/pkg/platform/tx"
	"vaultnet/pkg/requestcontext"
)

// Service owns the vault registry.
type Service struct {
	vaults    store.Store
	pool      store.GlobalPool
	lifecycle *lifecycleservice.Service
	ledger    ledger.BaseAssetLedger
	runner    tx.Runner
	auditor   *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(vaults store.Store, pool store.GlobalPool, lifecycle *lifecycleservice.Service,
	baseLedger ledger.BaseAssetLedger, runner tx.Runner, auditor *audit.Publisher,
	m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		vaults:    vaults,
		pool:      pool,
		lifecycle: lifecycle,
		ledger:    baseLedger,
		runner:    runner,
		auditor:   auditor,
		metrics:   m,
		logger:    logger,
	}
}

// Register creates a tenant's vault with zero balances. Requires VaultAdmin.
// The lifecycle clock does not start here; it starts on the tenant's first
// citizen binding.
func (s *Service) Register(ctx context.Context, code domain.TenantCode,
	name, reserveRef, liquidityRef, stableUnitRef string) (*models.Vault, error) {

	caps := requestcontext.Capabilities(ctx)
	if !caps.Has(capability.VaultAdmin) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "vault registration requires vault-admin capability")
	}

	now := requestcontext.Now(ctx)
	vault, err := models.NewVault(code, name, reserveRef, liquidityRef, stableUnitRef, now)
	if err != nil {
		return nil, err
	}
	if err := s.vaults.Create(ctx, vault); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Newf(dErrors.CodeDuplicateTenant, "tenant %s already has a vault", code)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create vault")
	}

	s.metrics.VaultsRegistered.Inc()
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionVaultRegistered,
		TenantCode: code,
	}); err != nil {
		s.logger.Warn("audit emit failed", "action", audit.ActionVaultRegistered, "error", err)
	}
	s.logger.Info("vault registered", "tenant", code.String(), "name", name)
	return vault, nil
}

// Deposit credits a base-asset deposit to the tenant's pools, split by the
// lifecycle state in force right now:
//
//	Pending or Flushed -> 100% liquidity
//	Active             -> 70% reserve, 30% liquidity (remainder to liquidity)
//
// sourceRef is the external account the base asset arrives from. The ledger
// transfer and the balance credits commit as one unit.
func (s *Service) Deposit(ctx context.Context, code domain.TenantCode, amount int64, sourceRef string) (*models.Vault, error) {
	if err := models.ValidateAmount(amount); err != nil {
		return nil, err
	}
	if sourceRef == "" {
		return nil, dErrors.New(dErrors.CodeInvalidReference, "deposit requires a source account reference")
	}

	existing, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := existing.CanDeposit(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var (
		vault              *models.Vault
		state              lifecyclemodels.State
		reserve, liquidity int64
	)
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		// External transfer first; a ledger failure leaves the pools
		// untouched.
		if err := s.ledger.TransferIn(ctx, sourceRef, existing.LiquidityRef, amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "base asset transfer")
		}
		vault, err = s.vaults.Execute(ctx, code,
			func(v *models.Vault) error {
				if err := v.CanDeposit(); err != nil {
					return err
				}
				// The split ratio is resolved under the same mutual
				// exclusion that applies it; an activation landing
				// mid-deposit cannot leave a stale split behind.
				resolved, err := s.depositState(ctx, code)
				if err != nil {
					return err
				}
				state = resolved
				reserve, liquidity = models.SplitDeposit(resolved, amount)
				return nil
			},
			func(v *models.Vault) { v.ApplyDeposit(reserve, liquidity, now) },
		)
		return err
	})
	if err != nil {
		return nil, s.translate(err, code)
	}

	s.metrics.Deposits.Inc()
	s.metrics.DepositedUnits.Add(float64(amount))
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionDepositReceived,
		TenantCode: code,
		Amount:     amount,
	}); err != nil {
		s.logger.Warn("audit emit failed", "action", audit.ActionDepositReceived, "error", err)
	}
	s.logger.Info("deposit received",
		"tenant", code.String(),
		"amount", amount,
		"reserve_share", reserve,
		"liquidity_share", liquidity,
		"state", state.String(),
	)
	return vault, nil
}

// SignSovereignty records the tenant's governance signature and, when the
// activation clock is running, transitions the tenant to Active. Requires
// VaultAdmin. Signing is one-way; a second signature is rejected.
func (s *Service) SignSovereignty(ctx context.Context, code domain.TenantCode) (*models.Vault, error) {
	caps := requestcontext.Capabilities(ctx)
	if !caps.Has(capability.VaultAdmin) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "sovereignty signing requires vault-admin capability")
	}

	// A flushed tenant's custody is already forfeit; refuse before touching
	// the vault so the signature flag never flips on a dead tenant.
	record, err := s.lifecycle.Get(ctx, code)
	clockRunning := err == nil
	if err != nil && !dErrors.HasCode(err, dErrors.CodeTenantNotFound) {
		return nil, err
	}
	if clockRunning && record.State == lifecyclemodels.StateFlushed {
		return nil, dErrors.Newf(dErrors.CodeNotPending, "tenant %s is flushed", code)
	}

	now := requestcontext.Now(ctx)
	vault, err := s.vaults.Execute(ctx, code,
		func(v *models.Vault) error {
			if v.SovereigntySigned {
				return dErrors.Newf(dErrors.CodeAlreadySigned, "tenant %s already signed sovereignty", code)
			}
			return nil
		},
		func(v *models.Vault) { v.ApplySovereigntySignature(now) },
	)
	if err != nil {
		return nil, s.translate(err, code)
	}

	if clockRunning && record.State == lifecyclemodels.StatePending {
		if _, err := s.lifecycle.Activate(ctx, code); err != nil {
			// Lost a race with a concurrent activation or flush; the
			// signature stands either way.
			s.logger.Warn("activation after signing failed", "tenant", code.String(), "error", err)
		}
	}

	s.metrics.SovereigntySigned.Inc()
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:     audit.ActionSovereigntySigned,
		TenantCode: code,
	}); err != nil {
		s.logger.Warn("audit emit failed", "action", audit.ActionSovereigntySigned, "error", err)
	}
	s.logger.Info("sovereignty signed", "tenant", code.String())
	return vault, nil
}

// Get returns the tenant's vault.
func (s *Service) Get(ctx context.Context, code domain.TenantCode) (*models.Vault, error) {
	vault, err := s.vaults.FindByCode(ctx, code)
	if err != nil {
		return nil, s.translate(err, code)
	}
	return vault, nil
}

// List returns all registered vaults.
func (s *Service) List(ctx context.Context) ([]*models.Vault, error) {
	vaults, err := s.vaults.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list vaults")
	}
	return vaults, nil
}

// PoolBalance returns the global citizen pool balance.
func (s *Service) PoolBalance(ctx context.Context) (int64, error) {
	balance, err := s.pool.Balance(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read global pool")
	}
	return balance, nil
}

// depositState resolves the lifecycle state governing a deposit's split. A
// tenant whose clock has not started yet splits like Pending: reserve custody
// is withheld until the tenant proves life.
func (s *Service) depositState(ctx context.Context, code domain.TenantCode) (lifecyclemodels.State, error) {
	record, err := s.lifecycle.Get(ctx, code)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeTenantNotFound) {
			return lifecyclemodels.StatePending, nil
		}
		return "", err
	}
	return record.State, nil
}

func (s *Service) translate(err error, code domain.TenantCode) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Newf(dErrors.CodeVaultNotFound, "no vault for tenant %s", code)
	case dErrors.Is(err):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "vault operation")
	}
}
