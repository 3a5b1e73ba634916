// Package domain holds the typed identifiers shared across the vault
// subsystem. Construct them via the Parse helpers at trust boundaries;
// direct casting bypasses validation.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "vaultnet/pkg/domain-errors"
)

// TenantCode identifies a sovereign jurisdiction. Codes are short uppercase
// alphanumeric strings ("NG", "GH", "KE") and are the unique key for a
// tenant's vault, lifecycle record, and stable unit.
type TenantCode string

const maxTenantCodeLen = 8

// ParseTenantCode constructs a TenantCode from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, too long, or
// contains characters outside [A-Z0-9].
func ParseTenantCode(s string) (TenantCode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "tenant code cannot be empty")
	}
	if len(s) > maxTenantCodeLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "tenant code too long")
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", dErrors.New(dErrors.CodeInvalidInput, "tenant code must be uppercase alphanumeric")
		}
	}
	return TenantCode(s), nil
}

func (c TenantCode) String() string { return string(c) }

// PrincipalID identifies a citizen principal.
type PrincipalID uuid.UUID

// ParsePrincipalID constructs a PrincipalID from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, malformed, or the
// nil UUID.
func ParsePrincipalID(s string) (PrincipalID, error) {
	if s == "" {
		return PrincipalID{}, dErrors.New(dErrors.CodeInvalidInput, "principal id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return PrincipalID{}, dErrors.New(dErrors.CodeInvalidInput, "principal id must be a valid UUID")
	}
	if u == uuid.Nil {
		return PrincipalID{}, dErrors.New(dErrors.CodeInvalidInput, "principal id cannot be the nil UUID")
	}
	return PrincipalID(u), nil
}

// NewPrincipalID generates a fresh principal id.
func NewPrincipalID() PrincipalID { return PrincipalID(uuid.New()) }

func (p PrincipalID) IsNil() bool    { return uuid.UUID(p) == uuid.Nil }
func (p PrincipalID) String() string { return uuid.UUID(p).String() }

// SwapID is the deterministic identifier of an executed cross-tenant
// settlement: hex(SHA3-256(sender|recipient|from|to|amount|ts|seq)).
type SwapID string

// ParseSwapID validates the wire form of a swap id (64 lowercase hex chars).
func ParseSwapID(s string) (SwapID, error) {
	if len(s) != 64 {
		return "", dErrors.New(dErrors.CodeInvalidInput, "swap id must be 64 hex characters")
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return "", dErrors.New(dErrors.CodeInvalidInput, "swap id must be lowercase hex")
		}
	}
	return SwapID(s), nil
}

func (s SwapID) String() string { return string(s) }
