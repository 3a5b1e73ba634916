// Package models holds the principal-to-tenant binding record.
package models

import (
	"time"

	"vaultnet/pkg/domain"
	dErrors "vaultnet/pkg/domain-errors"
)

// Binding ties a verified principal to exactly one tenant, permanently.
// Bindings are immutable: no update or unbind path exists, so every later
// isolation check can trust the directory without revalidation.
type Binding struct {
	PrincipalID domain.PrincipalID
	TenantCode  domain.TenantCode
	ProofRef    string
	// Claimed coordinates in 1e-7 degree units, recorded as-is from the
	// binding request. Informational; not verified here.
	LatE7   int64
	LonE7   int64
	BoundAt time.Time
}

// NewBinding validates and constructs a binding. The proof reference points
// at the identity verification artifact held by the upstream router; an
// empty one means the router never verified anything.
func NewBinding(principal domain.PrincipalID, code domain.TenantCode, proofRef string, latE7, lonE7 int64, now time.Time) (*Binding, error) {
	if principal.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "principal id cannot be empty")
	}
	if proofRef == "" {
		return nil, dErrors.New(dErrors.CodeInvalidProof, "binding requires an identity proof reference")
	}
	return &Binding{
		PrincipalID: principal,
		TenantCode:  code,
		ProofRef:    proofRef,
		LatE7:       latE7,
		LonE7:       lonE7,
		BoundAt:     now,
	}, nil
}
