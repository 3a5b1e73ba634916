// Package models holds the cross-tenant settlement record and its
// deterministic identifier.
package models

import (
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/sha3"

	"vaultnet/pkg/domain"
)

// CrossSwapRecord is the append-only record of one settled cross-tenant
// swap. Records are never updated or deleted.
type CrossSwapRecord struct {
	SwapID     domain.SwapID
	Seq        int64
	Sender     domain.PrincipalID
	Recipient  domain.PrincipalID
	FromTenant domain.TenantCode
	ToTenant   domain.TenantCode
	Amount     int64
	ExecutedAt time.Time
}

// DeriveSwapID computes the swap identifier from the settlement's own
// fields. Two swaps with identical parties, tenants, and amount in the same
// instant still differ by sequence number, so ids are collision-free without
// being random: the same ledger always yields the same ids.
func DeriveSwapID(sender, recipient domain.PrincipalID, from, to domain.TenantCode,
	amount int64, executedAt time.Time, seq int64) domain.SwapID {

	preimage := fmt.Sprintf("%s|%s|%s|%s|%d|%d|%d",
		sender, recipient, from, to, amount, executedAt.UnixNano(), seq)
	sum := sha3.Sum256([]byte(preimage))
	return domain.SwapID(hex.EncodeToString(sum[:]))
}
