package models_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lifecycle "vaultnet/internal/lifecycle/models"
	"vaultnet/internal/vault/models"
	dErrors "vaultnet/pkg/domain-errors"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newVault(t *testing.T) *models.Vault {
	t.Helper()
	v, err := models.NewVault("NG", "Nigeria", "acct:ng:reserve", "acct:ng:liquidity", "unit:ngn", now)
	require.NoError(t, err)
	return v
}

func TestNewVault(t *testing.T) {
	t.Run("starts active with zero balances", func(t *testing.T) {
		v := newVault(t)
		assert.True(t, v.Active)
		assert.False(t, v.SovereigntySigned)
		assert.Zero(t, v.ReserveBalance)
		assert.Zero(t, v.LiquidityBalance)
	})

	t.Run("rejects missing references", func(t *testing.T) {
		cases := []struct{ name, reserve, liquidity, stable string }{
			{"", "r", "l", "s"},
			{"Nigeria", "", "l", "s"},
			{"Nigeria", "r", "", "s"},
			{"Nigeria", "r", "l", ""},
		}
		for _, c := range cases {
			_, err := models.NewVault("NG", c.name, c.reserve, c.liquidity, c.stable, now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidReference))
		}
	})
}

func TestSplitDeposit(t *testing.T) {
	t.Run("active tenants split 70/30", func(t *testing.T) {
		reserve, liquidity := models.SplitDeposit(lifecycle.StateActive, 1000)
		assert.Equal(t, int64(700), reserve)
		assert.Equal(t, int64(300), liquidity)
	})

	t.Run("pending tenants route everything to liquidity", func(t *testing.T) {
		reserve, liquidity := models.SplitDeposit(lifecycle.StatePending, 1000)
		assert.Zero(t, reserve)
		assert.Equal(t, int64(1000), liquidity)
	})

	t.Run("flushed tenants route everything to liquidity", func(t *testing.T) {
		reserve, liquidity := models.SplitDeposit(lifecycle.StateFlushed, 555)
		assert.Zero(t, reserve)
		assert.Equal(t, int64(555), liquidity)
	})

	t.Run("integer remainder goes to liquidity", func(t *testing.T) {
		// 70% of 101 truncates to 70; the leftover unit lands in liquidity.
		reserve, liquidity := models.SplitDeposit(lifecycle.StateActive, 101)
		assert.Equal(t, int64(70), reserve)
		assert.Equal(t, int64(31), liquidity)
	})

	t.Run("conserves every unit", func(t *testing.T) {
		for _, amount := range []int64{1, 2, 3, 7, 10, 99, 100, 101, 12345, 1_000_000_007} {
			reserve, liquidity := models.SplitDeposit(lifecycle.StateActive, amount)
			assert.Equal(t, amount, reserve+liquidity, "amount %d", amount)
			assert.Equal(t, amount*70/100, reserve, "amount %d", amount)
			assert.GreaterOrEqual(t, reserve, int64(0))
			assert.GreaterOrEqual(t, liquidity, int64(0))
		}
	})

	t.Run("does not overflow near MaxInt64", func(t *testing.T) {
		amount := int64(math.MaxInt64)
		reserve, liquidity := models.SplitDeposit(lifecycle.StateActive, amount)
		assert.Equal(t, amount, reserve+liquidity)
		assert.Greater(t, reserve, int64(0))
		assert.Greater(t, liquidity, int64(0))
	})
}

func TestApplyDeposit(t *testing.T) {
	v := newVault(t)
	v.ApplyDeposit(700, 300, now)
	v.ApplyDeposit(0, 500, now)
	assert.Equal(t, int64(700), v.ReserveBalance)
	assert.Equal(t, int64(800), v.LiquidityBalance)
}

func TestCanDeposit(t *testing.T) {
	v := newVault(t)
	assert.NoError(t, v.CanDeposit())

	v.Active = false
	assert.True(t, dErrors.HasCode(v.CanDeposit(), dErrors.CodeVaultInactive))
}

func TestDrainReserve(t *testing.T) {
	v := newVault(t)
	v.ApplyDeposit(700, 300, now)

	drained := v.DrainReserve(now)
	assert.Equal(t, int64(700), drained)
	assert.Zero(t, v.ReserveBalance)
	assert.Equal(t, int64(300), v.LiquidityBalance, "liquidity is untouched by a drain")

	assert.Zero(t, v.DrainReserve(now), "second drain moves nothing")
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, models.ValidateAmount(1))
	assert.True(t, dErrors.HasCode(models.ValidateAmount(0), dErrors.CodeInvalidAmount))
	assert.True(t, dErrors.HasCode(models.ValidateAmount(-5), dErrors.CodeInvalidAmount))
}
