package deid

import "github.com/clinpipe/clinpipe/internal/phi"

// IdentityMap guarantees one original identifier maps to exactly one
// pseudonym within a single engine invocation. The map is write-once per key
// (first writer wins), lives only for the invocation that created it, and is
// never persisted, so no cross-run re-identification channel exists.
//
// The map is exclusively owned by one invocation's call stack and therefore
// needs no locking.
type IdentityMap struct {
	hasher   *Hasher
	strategy PatientIDStrategy
	entries  map[string]string
}

// NewIdentityMap creates an empty map bound to the invocation's hasher and
// patient-id strategy.
func NewIdentityMap(hasher *Hasher, strategy PatientIDStrategy) *IdentityMap {
	return &IdentityMap{
		hasher:   hasher,
		strategy: strategy,
		entries:  make(map[string]string),
	}
}

// Resolve returns the pseudonym for original, computing and caching it on
// first use. Later calls with the same original return the cached value even
// if the kind differs, so a patient id referenced as a generic id elsewhere
// still resolves consistently.
func (m *IdentityMap) Resolve(original string, kind phi.IDKind) string {
	if original == "" {
		return ""
	}
	if cached, ok := m.entries[original]; ok {
		return cached
	}
	var pseudonym string
	if kind == phi.IDPatient {
		pseudonym = m.hasher.PatientPseudonym(original, m.strategy)
	} else {
		pseudonym = m.hasher.Pseudonym(original, kind)
	}
	m.entries[original] = pseudonym
	return pseudonym
}

// Len reports how many distinct originals have been resolved.
func (m *IdentityMap) Len() int {
	return len(m.entries)
}
