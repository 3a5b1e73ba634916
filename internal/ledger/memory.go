package ledger

import (
	"context"
	"sync"

	dErrors "vaultnet/pkg/domain-errors"
)

// MemoryLedger is a permissive in-memory base-asset ledger. Accounts spring
// into existence on first use; only non-positive amounts are rejected, since
// supply economics are out of scope here.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[string]int64)}
}

func (l *MemoryLedger) TransferIn(_ context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return dErrors.New(dErrors.CodeInvalidAmount, "transfer amount must be positive")
	}
	if from == "" || to == "" {
		return dErrors.New(dErrors.CodeInvalidReference, "transfer requires account references")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Balance reports an account's balance. External accounts represent
// off-system supply and may go negative.
func (l *MemoryLedger) Balance(account string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}
