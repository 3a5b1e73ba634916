// Package ledger defines the external base-asset ledger collaborator. The
// vault subsystem treats TransferIn as an atomic primitive: it either fully
// applies or fully fails, and no partial effect is ever observed here.
package ledger

import "context"

//go:generate mockgen -source=ledger.go -destination=mock/ledger.go -package=mockledger

// BaseAssetLedger moves base-asset value between external account
// references. Implemented outside this subsystem; the in-memory
// implementation below exists for development and tests.
type BaseAssetLedger interface {
	// TransferIn moves amount (minor units) from the account referenced by
	// from to the account referenced by to. A nil return means the transfer
	// fully settled.
	TransferIn(ctx context.Context, from, to string, amount int64) error
}
