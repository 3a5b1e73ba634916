// Package models holds the NationalVault aggregate and the deposit-time
// splitting rule.
package models

import (
	"time"

	lifecycle "vaultnet/internal/lifecycle/models"
	"vaultnet/pkg/domain"
	dErrors "vaultnet/pkg/domain-errors"
)

// Vault is the dual-pool custody record for one tenant.
//
// Invariants:
//   - ReserveBalance + LiquidityBalance equals the sum of all deposits split
//     per the rule in force at each deposit's time, minus reserve drained by
//     a flush, plus/minus settled swaps on the liquidity side. No operation
//     creates or destroys value here.
//   - Balances never go negative.
//   - Vaults are never deleted, only deactivated.
//   - The tenant's stable unit is backed exclusively by this vault's
//     liquidity pool; the firewall enforces this at every settlement.
type Vault struct {
	TenantCode        domain.TenantCode
	Name              string
	ReserveRef        string
	LiquidityRef      string
	StableUnitRef     string
	ReserveBalance    int64
	LiquidityBalance  int64
	LockExpiry        time.Time
	Active            bool
	SovereigntySigned bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewVault constructs a vault with zero balances. All external account
// references must be present; custody with a dangling reference is
// unrecoverable.
func NewVault(code domain.TenantCode, name, reserveRef, liquidityRef, stableUnitRef string, now time.Time) (*Vault, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidReference, "vault name cannot be empty")
	}
	if reserveRef == "" || liquidityRef == "" || stableUnitRef == "" {
		return nil, dErrors.New(dErrors.CodeInvalidReference, "vault requires reserve, liquidity, and stable-unit references")
	}
	return &Vault{
		TenantCode:        code,
		Name:              name,
		ReserveRef:        reserveRef,
		LiquidityRef:      liquidityRef,
		StableUnitRef:     stableUnitRef,
		Active:            true,
		SovereigntySigned: false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (v *Vault) IsActive() bool { return v.Active }

// CanDeposit checks that the vault accepts deposits.
func (v *Vault) CanDeposit() error {
	if !v.Active {
		return dErrors.Newf(dErrors.CodeVaultInactive, "vault %s is inactive", v.TenantCode)
	}
	return nil
}

// ApplyDeposit credits the two pools. Call CanDeposit and SplitDeposit
// first; the pair of credits is applied under the store's record lock.
func (v *Vault) ApplyDeposit(reserve, liquidity int64, now time.Time) {
	v.ReserveBalance += reserve
	v.LiquidityBalance += liquidity
	v.UpdatedAt = now
}

// ApplySovereigntySignature marks the governance agreement signed. The state
// transition itself belongs to the lifecycle clock.
func (v *Vault) ApplySovereigntySignature(now time.Time) {
	v.SovereigntySigned = true
	v.UpdatedAt = now
}

// DrainReserve zeroes the reserve pool and returns the drained amount. Used
// exactly once per tenant, by the lifecycle flush.
func (v *Vault) DrainReserve(now time.Time) int64 {
	drained := v.ReserveBalance
	v.ReserveBalance = 0
	v.UpdatedAt = now
	return drained
}

// Deposit split shares while Active.
const (
	reserveShare     = 70
	shareDenominator = 100
)

// SplitDeposit routes a deposit between the pools according to the tenant's
// lifecycle state:
//
//	Active  -> 70% reserve / 30% liquidity
//	Pending -> 100% liquidity (reserve custody withheld until activation)
//	Flushed -> 100% liquidity (reserve custody permanently lost)
//
// The integer remainder of the 70% share goes to liquidity, so
// reserve+liquidity always equals amount exactly.
func SplitDeposit(state lifecycle.State, amount int64) (reserve, liquidity int64) {
	if state != lifecycle.StateActive {
		return 0, amount
	}
	// Decomposed to stay overflow-safe for amounts near MaxInt64.
	q, r := amount/shareDenominator, amount%shareDenominator
	reserve = q*reserveShare + r*reserveShare/shareDenominator
	return reserve, amount - reserve
}

// ValidateAmount rejects non-positive deposit or transfer amounts.
func ValidateAmount(amount int64) error {
	if amount <= 0 {
		return dErrors.New(dErrors.CodeInvalidAmount, "amount must be positive")
	}
	return nil
}
