// Package audit captures structured audit events emitted after each
// successful state transition. Events are consumed by external reporting and
// are not part of the invariant surface: emission failures are logged, never
// propagated into domain operations.
package audit

import (
	"time"

	"vaultnet/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose, enabling
// different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCustody covers balance-affecting events. These require
	// tamper-proof storage and long retention.
	CategoryCustody EventCategory = "custody"

	// CategoryLifecycle covers tenant state machine transitions.
	CategoryLifecycle EventCategory = "lifecycle"

	// CategoryIdentity covers principal binding events.
	CategoryIdentity EventCategory = "identity"
)

// Action names an audited state transition.
type Action string

const (
	ActionVaultRegistered   Action = "vault_registered"
	ActionDepositReceived   Action = "deposit_received"
	ActionSovereigntySigned Action = "sovereignty_signed"
	ActionTenantActivated   Action = "tenant_activated"
	ActionTenantFlushed     Action = "tenant_flushed"
	ActionCitizenBound      Action = "citizen_bound"
	ActionSwapSettled       Action = "swap_settled"
)

var actionCategories = map[Action]EventCategory{
	ActionVaultRegistered:   CategoryLifecycle,
	ActionDepositReceived:   CategoryCustody,
	ActionSovereigntySigned: CategoryLifecycle,
	ActionTenantActivated:   CategoryLifecycle,
	ActionTenantFlushed:     CategoryCustody,
	ActionCitizenBound:      CategoryIdentity,
	ActionSwapSettled:       CategoryCustody,
}

// Category returns the category an action routes to.
func (a Action) Category() EventCategory {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryLifecycle
}

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	Timestamp  time.Time
	Action     Action
	TenantCode domain.TenantCode
	// CounterpartyTenant is set on swap events (the credited side).
	CounterpartyTenant domain.TenantCode
	Principal          string
	Amount             int64
	SwapID             domain.SwapID
	RequestID          string
	ClientIP           string
	Device             string
	Reason             string
}
