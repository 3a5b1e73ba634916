// Package service implements the settlement router: atomic two-leg value
// movement between the liquidity pools of two tenants, on behalf of bound
// principals.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"vaultnet/internal/audit"
	"vaultnet/internal/firewall"
	identityservice "vaultnet/internal/identity/service"
	"vaultnet/internal/ledger"
	"vaultnet/internal/platform/metrics"
	"vaultnet/internal/settlement/models"
	"vaultnet/internal/settlement/store"
	vaultmodels "vaultnet/internal/vault/models"
	vaultstore "vaultnet/internal/vault/store"
	"vaultnet/pkg/capability"
	"vaultnet/pkg/domain"
	dErrors "vaultnet/pkg/domain-errors"
	"vaultnet/pkg/platform/sentinel"
	"vaultnet/pkg/platform/tx"
	"vaultnet/pkg/requestcontext"
)

const tracerName = "vaultnet/settlement"

// Service routes cross-tenant swaps.
type Service struct {
	swaps    store.Store
	vaults   vaultstore.Store
	identity *identityservice.Service
	ledger   ledger.BaseAssetLedger
	runner   tx.Runner
	auditor  *audit.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

func New(swaps store.Store, vaults vaultstore.Store, identity *identityservice.Service,
	baseLedger ledger.BaseAssetLedger, runner tx.Runner, auditor *audit.Publisher,
	m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		swaps:    swaps,
		vaults:   vaults,
		identity: identity,
		ledger:   baseLedger,
		runner:   runner,
		auditor:  auditor,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
	}
}

// ExecuteCrossSwap moves amount from the sender's tenant liquidity pool to
// the recipient's. Requires BindingRouter. Both legs commit as one unit; a
// failure at any point leaves both pools untouched.
//
// Validation order: capability, amount, both bindings, both isolation
// checks, then liquidity sufficiency under the pair lock. Nothing mutates
// until every check has passed.
func (s *Service) ExecuteCrossSwap(ctx context.Context, sender, recipient domain.PrincipalID,
	amount int64) (*models.CrossSwapRecord, error) {

	ctx, span := s.tracer.Start(ctx, "settlement.ExecuteCrossSwap", trace.WithAttributes(
		attribute.String("settlement.sender", sender.String()),
		attribute.String("settlement.recipient", recipient.String()),
		attribute.Int64("settlement.amount", amount),
	))
	defer span.End()

	record, err := s.executeCrossSwap(ctx, sender, recipient, amount)
	if err != nil {
		code := dErrors.CodeOf(err)
		s.metrics.SettlementRejections.WithLabelValues(string(code)).Inc()
		if code == dErrors.CodeIsolationViolation {
			s.metrics.IsolationViolations.Inc()
		}
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, string(code))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("settlement.swap_id", record.SwapID.String()),
		attribute.String("settlement.from_tenant", record.FromTenant.String()),
		attribute.String("settlement.to_tenant", record.ToTenant.String()),
	)
	return record, nil
}

func (s *Service) executeCrossSwap(ctx context.Context, sender, recipient domain.PrincipalID,
	amount int64) (*models.CrossSwapRecord, error) {

	caps := requestcontext.Capabilities(ctx)
	if !caps.Has(capability.BindingRouter) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "settlement requires binding-router capability")
	}
	if err := vaultmodels.ValidateAmount(amount); err != nil {
		return nil, err
	}

	senderBinding, err := s.identity.Lookup(ctx, sender)
	if err != nil {
		return nil, err
	}
	recipientBinding, err := s.identity.Lookup(ctx, recipient)
	if err != nil {
		return nil, err
	}

	from, to := senderBinding.TenantCode, recipientBinding.TenantCode
	if from == to {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput,
			"cross swap requires distinct tenants, both principals are in %s", from)
	}

	fromVault, err := s.findVault(ctx, from)
	if err != nil {
		return nil, err
	}
	toVault, err := s.findVault(ctx, to)
	if err != nil {
		return nil, err
	}
	if err := firewall.EnforceIsolation(fromVault, senderBinding); err != nil {
		return nil, err
	}
	if err := firewall.EnforceIsolation(toVault, recipientBinding); err != nil {
		return nil, err
	}

	if fromVault.LiquidityBalance < amount {
		return nil, dErrors.Newf(dErrors.CodeInsufficientLiquidity,
			"tenant %s liquidity %d cannot cover %d", from, fromVault.LiquidityBalance, amount)
	}
	if toVault.LiquidityBalance < amount {
		return nil, dErrors.Newf(dErrors.CodeInsufficientLiquidity,
			"tenant %s liquidity %d cannot cover %d", to, toVault.LiquidityBalance, amount)
	}

	now := requestcontext.Now(ctx)
	var record *models.CrossSwapRecord
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		seq, err := s.swaps.NextSeq(ctx)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "reserve swap sequence")
		}

		// External base-asset movement before any internal mutation: the
		// ledger transfer is atomic on its side, and a failure here leaves
		// every pool balance untouched.
		if err := s.ledger.TransferIn(ctx, fromVault.LiquidityRef, toVault.LiquidityRef, amount); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "base asset transfer")
		}

		// Sufficiency is re-checked under the pair lock; the earlier checks
		// only fail fast outside it. Both sides must cover the amount.
		_, _, err = s.vaults.ExecutePair(ctx, from, to,
			func(fv, tv *vaultmodels.Vault) error {
				if fv.LiquidityBalance < amount {
					return dErrors.Newf(dErrors.CodeInsufficientLiquidity,
						"tenant %s liquidity %d cannot cover %d", from, fv.LiquidityBalance, amount)
				}
				if tv.LiquidityBalance < amount {
					return dErrors.Newf(dErrors.CodeInsufficientLiquidity,
						"tenant %s liquidity %d cannot cover %d", to, tv.LiquidityBalance, amount)
				}
				return nil
			},
			func(fv, tv *vaultmodels.Vault) {
				fv.LiquidityBalance -= amount
				tv.LiquidityBalance += amount
				fv.UpdatedAt = now
				tv.UpdatedAt = now
			},
		)
		if err != nil {
			return err
		}

		record = &models.CrossSwapRecord{
			SwapID:     models.DeriveSwapID(sender, recipient, from, to, amount, now, seq),
			Seq:        seq,
			Sender:     sender,
			Recipient:  recipient,
			FromTenant: from,
			ToTenant:   to,
			Amount:     amount,
			ExecutedAt: now,
		}
		if err := s.swaps.Append(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "journal swap")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SwapsSettled.Inc()
	s.metrics.SwappedUnits.Add(float64(amount))
	if err := s.auditor.Emit(ctx, audit.Event{
		Action:             audit.ActionSwapSettled,
		TenantCode:         from,
		CounterpartyTenant: to,
		Principal:          sender.String(),
		Amount:             amount,
		SwapID:             record.SwapID,
	}); err != nil {
		s.logger.Warn("audit emit failed", "action", audit.ActionSwapSettled, "error", err)
	}
	s.logger.Info("swap settled",
		"swap_id", record.SwapID.String(),
		"from", from.String(),
		"to", to.String(),
		"amount", amount,
	)
	return record, nil
}

// Get returns a settled swap by id.
func (s *Service) Get(ctx context.Context, id domain.SwapID) (*models.CrossSwapRecord, error) {
	record, err := s.swaps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeNotFound, "swap %s not found", id)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up swap")
	}
	return record, nil
}

// ListByTenant returns the tenant's settlement history, newest first.
func (s *Service) ListByTenant(ctx context.Context, code domain.TenantCode) ([]*models.CrossSwapRecord, error) {
	records, err := s.swaps.ListByTenant(ctx, code)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list swaps")
	}
	return records, nil
}

func (s *Service) findVault(ctx context.Context, code domain.TenantCode) (*vaultmodels.Vault, error) {
	v, err := s.vaults.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Newf(dErrors.CodeVaultNotFound, "no vault for tenant %s", code)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up vault")
	}
	return v, nil
}
