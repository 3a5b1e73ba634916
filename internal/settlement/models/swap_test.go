package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultnet/internal/settlement/models"
	"vaultnet/pkg/domain"
)

func TestDeriveSwapID(t *testing.T) {
	sender := mustPrincipal(t, "0c8e2f8a-3d2b-4f6e-9a1c-2b7d8e4f5a6b")
	recipient := mustPrincipal(t, "7f1a9c3e-5b4d-4e2f-8c6a-9d0b1e2f3a4c")
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	base := models.DeriveSwapID(sender, recipient, "NG", "GH", 500, at, 1)

	t.Run("is deterministic", func(t *testing.T) {
		again := models.DeriveSwapID(sender, recipient, "NG", "GH", 500, at, 1)
		assert.Equal(t, base, again)
	})

	t.Run("is valid wire form", func(t *testing.T) {
		_, err := domain.ParseSwapID(base.String())
		assert.NoError(t, err)
	})

	t.Run("changes with every input field", func(t *testing.T) {
		variants := []domain.SwapID{
			models.DeriveSwapID(recipient, sender, "NG", "GH", 500, at, 1),
			models.DeriveSwapID(sender, recipient, "GH", "NG", 500, at, 1),
			models.DeriveSwapID(sender, recipient, "NG", "GH", 501, at, 1),
			models.DeriveSwapID(sender, recipient, "NG", "GH", 500, at.Add(time.Nanosecond), 1),
			models.DeriveSwapID(sender, recipient, "NG", "GH", 500, at, 2),
		}
		seen := map[domain.SwapID]bool{base: true}
		for i, v := range variants {
			assert.False(t, seen[v], "variant %d collided", i)
			seen[v] = true
		}
	})

	t.Run("identical swaps in the same instant differ by sequence", func(t *testing.T) {
		first := models.DeriveSwapID(sender, recipient, "NG", "GH", 500, at, 10)
		second := models.DeriveSwapID(sender, recipient, "NG", "GH", 500, at, 11)
		assert.NotEqual(t, first, second)
	})
}

func mustPrincipal(t *testing.T, raw string) domain.PrincipalID {
	t.Helper()
	p, err := domain.ParsePrincipalID(raw)
	require.NoError(t, err)
	return p
}
