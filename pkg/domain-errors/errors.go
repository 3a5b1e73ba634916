// Package domainerrors provides the code-carrying error type used across the
// vault subsystem. Every validation failure surfaces as a specific named code
// so callers can branch on the exact condition instead of string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies an error condition. Generic codes cover infrastructure and
// cross-cutting failures; the vault taxonomy codes map one-to-one to the
// caller-correctable failures of the custody subsystem.
type Code string

const (
	// Generic codes.
	CodeInternal     Code = "internal"
	CodeUnauthorized Code = "unauthorized"
	CodeInvalidInput Code = "invalid_input"
	CodeNotFound     Code = "not_found"
	CodeConflict     Code = "conflict"

	// Vault registry.
	CodeDuplicateTenant  Code = "duplicate_tenant"
	CodeVaultNotFound    Code = "vault_not_found"
	CodeVaultInactive    Code = "vault_inactive"
	CodeInvalidAmount    Code = "invalid_amount"
	CodeInvalidReference Code = "invalid_reference"
	CodeAlreadySigned    Code = "already_signed"

	// Lifecycle clock.
	CodeAlreadyInitialized Code = "already_initialized"
	CodeNotPending         Code = "not_pending"
	CodeDeadlineNotReached Code = "deadline_not_reached"

	// Identity binding directory.
	CodePrincipalNotBound Code = "principal_not_bound"
	CodeAlreadyBound      Code = "already_bound"
	CodeTenantNotFound    Code = "tenant_not_found"
	CodeInvalidProof      Code = "invalid_proof"

	// Firewall and settlement.
	CodeIsolationViolation    Code = "isolation_violation"
	CodeInsufficientLiquidity Code = "insufficient_liquidity"
)

// Error is a domain error with a stable code and human-readable message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// New creates a domain error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap annotates err with a code and message while preserving the cause for
// errors.Is/errors.As chains.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether any error in err's chain carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var de *Error
		if errors.As(err, &de) {
			if de.Code == code {
				return true
			}
			err = de.cause
			continue
		}
		return false
	}
	return false
}

// Is reports whether err is a domain error at all.
func Is(err error) bool {
	var de *Error
	return errors.As(err, &de)
}

// CodeOf returns the outermost domain code in err's chain, or CodeInternal
// when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
