// Package firewall holds the isolation predicate: a principal may only touch
// the liquidity pool of the tenant it is bound to, and only through that
// tenant's stable unit. The predicate is pure; callers gather the records,
// the firewall only judges them.
package firewall

import (
	identity "vaultnet/internal/identity/models"
	vault "vaultnet/internal/vault/models"
	dErrors "vaultnet/pkg/domain-errors"
)

// ValidateIsolation reports whether the binding is allowed to transact
// against the vault. Every settlement leg passes through here before any
// balance moves.
func ValidateIsolation(v *vault.Vault, b *identity.Binding) error {
	if v == nil {
		return dErrors.New(dErrors.CodeVaultNotFound, "no vault for isolation check")
	}
	if !v.Active {
		return dErrors.Newf(dErrors.CodeVaultInactive, "vault %s is inactive", v.TenantCode)
	}
	if b == nil {
		return dErrors.New(dErrors.CodePrincipalNotBound, "no binding for isolation check")
	}
	if b.TenantCode != v.TenantCode {
		return dErrors.Newf(dErrors.CodeIsolationViolation,
			"principal %s is bound to %s, not %s", b.PrincipalID, b.TenantCode, v.TenantCode)
	}
	if v.StableUnitRef == "" {
		return dErrors.Newf(dErrors.CodeIsolationViolation,
			"vault %s has no stable unit to settle through", v.TenantCode)
	}
	return nil
}

// EnforceIsolation is ValidateIsolation with every rejection surfaced as an
// isolation violation, for call sites where the distinction between causes
// must not leak to the caller.
func EnforceIsolation(v *vault.Vault, b *identity.Binding) error {
	if err := ValidateIsolation(v, b); err != nil {
		if dErrors.HasCode(err, dErrors.CodeIsolationViolation) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeIsolationViolation, "isolation check failed")
	}
	return nil
}
