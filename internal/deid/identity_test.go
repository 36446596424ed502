package deid

import (
	"testing"

	"github.com/clinpipe/clinpipe/internal/phi"
)

func TestIdentityMapConsistency(t *testing.T) {
	h := NewHasher("s")
	m := NewIdentityMap(h, StrategyHash)

	first := m.Resolve("12345", phi.IDPatient)
	second := m.Resolve("12345", phi.IDPatient)
	if first != second {
		t.Errorf("same original resolved differently: %q vs %q", first, second)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want 1", m.Len())
	}
}

func TestIdentityMapFirstWriterWins(t *testing.T) {
	h := NewHasher("s")
	m := NewIdentityMap(h, StrategyHash)

	asPatient := m.Resolve("12345", phi.IDPatient)
	asGeneric := m.Resolve("12345", phi.IDGeneric)
	if asPatient != asGeneric {
		t.Errorf("later kind should not re-derive: %q vs %q", asPatient, asGeneric)
	}
}

func TestIdentityMapRandomStrategyStableWithinInvocation(t *testing.T) {
	h := NewHasher("s")
	m := NewIdentityMap(h, StrategyRandom)

	first := m.Resolve("12345", phi.IDPatient)
	second := m.Resolve("12345", phi.IDPatient)
	if first != second {
		t.Errorf("random pseudonym must still be consistent within one invocation")
	}

	// A new invocation gets a new map and therefore a new token.
	other := NewIdentityMap(h, StrategyRandom).Resolve("12345", phi.IDPatient)
	if other == first {
		t.Errorf("random pseudonym leaked across invocations: %q", other)
	}
}

func TestIdentityMapEmptyOriginal(t *testing.T) {
	m := NewIdentityMap(NewHasher("s"), StrategyHash)
	if got := m.Resolve("", phi.IDPatient); got != "" {
		t.Errorf("empty original should resolve empty, got %q", got)
	}
	if m.Len() != 0 {
		t.Errorf("empty original must not be cached")
	}
}
