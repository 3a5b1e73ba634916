package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultnet/pkg/domain"
	dErrors "vaultnet/pkg/domain-errors"
)

func TestParseTenantCode(t *testing.T) {
	t.Run("accepts uppercase alphanumeric codes", func(t *testing.T) {
		for _, raw := range []string{"NG", "GH", "KE", "EAC1", "A1B2C3D4"} {
			code, err := domain.ParseTenantCode(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, raw, code.String())
		}
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		code, err := domain.ParseTenantCode("  NG ")
		require.NoError(t, err)
		assert.Equal(t, "NG", code.String())
	})

	t.Run("rejects bad input", func(t *testing.T) {
		for _, raw := range []string{"", "ng", "N G", "N-G", strings.Repeat("A", 9)} {
			_, err := domain.ParseTenantCode(raw)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "expected rejection for %q", raw)
		}
	})
}

func TestParsePrincipalID(t *testing.T) {
	t.Run("round-trips a UUID", func(t *testing.T) {
		raw := uuid.NewString()
		p, err := domain.ParsePrincipalID(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, p.String())
		assert.False(t, p.IsNil())
	})

	t.Run("rejects empty, malformed, and nil", func(t *testing.T) {
		for _, raw := range []string{"", "not-a-uuid", uuid.Nil.String()} {
			_, err := domain.ParsePrincipalID(raw)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), "expected rejection for %q", raw)
		}
	})
}

func TestParseSwapID(t *testing.T) {
	valid := strings.Repeat("ab12", 16)

	t.Run("accepts 64 lowercase hex chars", func(t *testing.T) {
		id, err := domain.ParseSwapID(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, id.String())
	})

	t.Run("rejects wrong length and non-hex", func(t *testing.T) {
		for _, raw := range []string{"", valid[:63], valid + "a", strings.ToUpper(valid), strings.Repeat("zz12", 16)} {
			_, err := domain.ParseSwapID(raw)
			assert.Error(t, err, raw)
		}
	})
}
