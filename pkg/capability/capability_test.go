package capability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vaultnet/pkg/capability"
)

func TestNewSetDropsUnknownCapabilities(t *testing.T) {
	s := capability.NewSet(capability.VaultAdmin, capability.Capability("superuser"))
	assert.True(t, s.Has(capability.VaultAdmin))
	assert.Len(t, s, 1, "unknown names must not grant anything")
}

func TestParseSet(t *testing.T) {
	s := capability.ParseSet([]string{"binding_router", "governance_caller", "bogus"})
	assert.True(t, s.Has(capability.BindingRouter))
	assert.True(t, s.Has(capability.GovernanceCaller))
	assert.False(t, s.Has(capability.VaultAdmin))
	assert.Len(t, s, 2)
}

func TestHasAny(t *testing.T) {
	s := capability.NewSet(capability.GovernanceCaller)
	assert.True(t, s.HasAny(capability.VaultAdmin, capability.GovernanceCaller))
	assert.False(t, s.HasAny(capability.VaultAdmin, capability.BindingRouter))
	assert.False(t, capability.Set{}.HasAny(capability.VaultAdmin))
}
