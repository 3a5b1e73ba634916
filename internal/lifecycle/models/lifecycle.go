// Package models holds the per-tenant activation-or-forfeiture state
// machine.
package models

import (
	"time"

	"vaultnet/pkg/domain"
	dErrors "vaultnet/pkg/domain-errors"
)

// ActivationWindow is how long a tenant has to activate its governance
// agreement before its reserve custody is forfeit.
const ActivationWindow = 180 * 24 * time.Hour

// State is the lifecycle state of a tenant.
//
// Invariant: transitions are monotonic and one-way. Pending may move to
// Active or Flushed; Active and Flushed are terminal. No operation in this
// subsystem transitions out of a terminal state.
type State string

const (
	// StatePending is the initial state: the activation clock is running and
	// deposits route entirely to the liquidity pool.
	StatePending State = "pending"
	// StateActive is terminal-good: sovereignty signed, 70/30 deposit split
	// in force.
	StateActive State = "active"
	// StateFlushed is terminal-forfeit: the deadline passed unactivated and
	// the reserve moved to the global citizen pool.
	StateFlushed State = "flushed"
)

func (s State) IsTerminal() bool { return s == StateActive || s == StateFlushed }

func (s State) String() string { return string(s) }

// Record is the lifecycle clock for one tenant.
type Record struct {
	TenantCode domain.TenantCode
	Name       string
	ReserveRef string
	State      State
	ClockStart time.Time
	Expiry     time.Time
	UpdatedAt  time.Time
}

// NewRecord starts the clock for a tenant. Called exactly once, on the first
// citizen binding to the tenant.
func NewRecord(code domain.TenantCode, name, reserveRef string, now time.Time) (*Record, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidReference, "tenant name cannot be empty")
	}
	if reserveRef == "" {
		return nil, dErrors.New(dErrors.CodeInvalidReference, "reserve reference cannot be empty")
	}
	return &Record{
		TenantCode: code,
		Name:       name,
		ReserveRef: reserveRef,
		State:      StatePending,
		ClockStart: now,
		Expiry:     now.Add(ActivationWindow),
		UpdatedAt:  now,
	}, nil
}

// CanActivate checks the Pending -> Active transition.
// Use with ApplyActivation in Execute callbacks.
func (r *Record) CanActivate() error {
	if r.State != StatePending {
		return dErrors.Newf(dErrors.CodeNotPending, "tenant %s is %s, not pending", r.TenantCode, r.State)
	}
	return nil
}

// ApplyActivation transitions the record to Active. Permanent; no
// deactivation path exists. Call CanActivate first.
func (r *Record) ApplyActivation(now time.Time) {
	r.State = StateActive
	r.UpdatedAt = now
}

// CanFlush checks the Pending -> Flushed transition: the state must still be
// Pending and the deadline must have passed.
func (r *Record) CanFlush(now time.Time) error {
	if r.State != StatePending {
		return dErrors.Newf(dErrors.CodeNotPending, "tenant %s is %s, not pending", r.TenantCode, r.State)
	}
	if now.Before(r.Expiry) {
		return dErrors.Newf(dErrors.CodeDeadlineNotReached, "tenant %s has %s remaining", r.TenantCode, r.Expiry.Sub(now))
	}
	return nil
}

// ApplyFlush transitions the record to Flushed. Irreversible. Call CanFlush
// first.
func (r *Record) ApplyFlush(now time.Time) {
	r.State = StateFlushed
	r.UpdatedAt = now
}

// IsExpired reports whether the activation deadline has passed.
func (r *Record) IsExpired(now time.Time) bool {
	return !now.Before(r.Expiry)
}

// TimeRemaining returns the time left on the clock, zero once expired.
func (r *Record) TimeRemaining(now time.Time) time.Duration {
	if r.IsExpired(now) {
		return 0
	}
	return r.Expiry.Sub(now)
}

// IsEligibleForFlush reports whether ExecuteFlush would succeed right now.
func (r *Record) IsEligibleForFlush(now time.Time) bool {
	return r.State == StatePending && r.IsExpired(now)
}
