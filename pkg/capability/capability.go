// Package capability models the role gates of the vault subsystem as an
// explicit capability set carried in context, checked by services before any
// mutation. Flush operations are permissionless and never consult this
// package.
package capability

// Capability names a privilege a caller may hold.
type Capability string

const (
	// VaultAdmin may register vaults and sign sovereignty.
	VaultAdmin Capability = "vault_admin"
	// BindingRouter may bind principals and execute cross swaps. It is a
	// trusted intermediary that has already validated the caller's identity
	// proof upstream.
	BindingRouter Capability = "binding_router"
	// GovernanceCaller may activate a tenant once its governance threshold
	// is met.
	GovernanceCaller Capability = "governance_caller"
)

var known = map[Capability]bool{
	VaultAdmin:       true,
	BindingRouter:    true,
	GovernanceCaller: true,
}

// IsValid reports whether c is a known capability.
func (c Capability) IsValid() bool { return known[c] }

func (c Capability) String() string { return string(c) }

// Set is an immutable-by-convention collection of capabilities.
type Set map[Capability]struct{}

// NewSet builds a Set from the given capabilities, silently dropping unknown
// names so stale tokens degrade to fewer privileges, never more.
func NewSet(caps ...Capability) Set {
	s := make(Set, len(caps))
	for _, c := range caps {
		if c.IsValid() {
			s[c] = struct{}{}
		}
	}
	return s
}

// ParseSet builds a Set from string claims.
func ParseSet(names []string) Set {
	caps := make([]Capability, 0, len(names))
	for _, n := range names {
		caps = append(caps, Capability(n))
	}
	return NewSet(caps...)
}

// Has reports whether the set contains c.
func (s Set) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

// HasAny reports whether the set contains at least one of the given
// capabilities.
func (s Set) HasAny(caps ...Capability) bool {
	for _, c := range caps {
		if s.Has(c) {
			return true
		}
	}
	return false
}

// Names returns the capability names, for token claims and logging.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for c := range s {
		names = append(names, string(c))
	}
	return names
}
