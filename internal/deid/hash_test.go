package deid

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/clinpipe/clinpipe/internal/phi"
)

func refHash(value, salt string, n int) string {
	sum := sha256.Sum256([]byte(value + salt))
	return hex.EncodeToString(sum[:])[:n]
}

func TestPseudonymDeterministic(t *testing.T) {
	h := NewHasher("test-salt")

	first := h.Pseudonym("12345", phi.IDPatient)
	second := h.Pseudonym("12345", phi.IDPatient)
	if first != second {
		t.Errorf("pseudonym not deterministic: %q vs %q", first, second)
	}

	// Independent derivation with the same salt and algorithm must agree.
	want := "DEID_" + refHash("12345", "test-salt", 16)
	if first != want {
		t.Errorf("pseudonym = %q, want %q", first, want)
	}
}

func TestPseudonymKindPrefixAndLength(t *testing.T) {
	h := NewHasher("s")

	cases := []struct {
		kind   phi.IDKind
		prefix string
		n      int
	}{
		{phi.IDPatient, "DEID_", 16},
		{phi.IDMRN, "DEID_MRN_", 16},
		{phi.IDLicense, "DEID_LIC_", 12},
		{phi.IDGeneric, "DEID_ID_", 12},
	}
	for _, c := range cases {
		got := h.Pseudonym("value", c.kind)
		if !strings.HasPrefix(got, c.prefix) {
			t.Errorf("kind %v: %q missing prefix %q", c.kind, got, c.prefix)
		}
		if hexPart := strings.TrimPrefix(got, c.prefix); len(hexPart) != c.n {
			t.Errorf("kind %v: hash length = %d, want %d", c.kind, len(hexPart), c.n)
		}
	}
}

func TestPseudonymSaltChangesOutput(t *testing.T) {
	a := NewHasher("salt-a").Pseudonym("12345", phi.IDPatient)
	b := NewHasher("salt-b").Pseudonym("12345", phi.IDPatient)
	if a == b {
		t.Errorf("different salts produced identical pseudonym %q", a)
	}
}

func TestMRNHash(t *testing.T) {
	h := NewHasher("test-salt-for-unit-tests")
	got := h.MRNHash("MRN12345")
	want := "DEID_" + refHash("MRN12345", "test-salt-for-unit-tests", 16)
	if got != want {
		t.Errorf("MRNHash = %q, want %q", got, want)
	}
}

func TestAccountToken(t *testing.T) {
	h := NewHasher("s")
	got := h.AccountToken("4111111111111111")
	if !strings.HasPrefix(got, "ACCT-") {
		t.Fatalf("account token %q missing ACCT- prefix", got)
	}
	if len(got) != len("ACCT-")+8 {
		t.Errorf("account token %q should carry an 8-char hash", got)
	}
	if got != h.AccountToken("4111111111111111") {
		t.Errorf("account token not deterministic")
	}
}

func TestPatientPseudonymStrategies(t *testing.T) {
	h := NewHasher("s")

	hashed := h.PatientPseudonym("12345", StrategyHash)
	if hashed != h.Pseudonym("12345", phi.IDPatient) {
		t.Errorf("hash strategy should match plain patient pseudonym")
	}

	prefixed := h.PatientPseudonym("12345", StrategyPrefix)
	if prefixed != "DEID_12345" {
		t.Errorf("prefix strategy = %q, want DEID_12345", prefixed)
	}

	r1 := h.PatientPseudonym("12345", StrategyRandom)
	r2 := h.PatientPseudonym("12345", StrategyRandom)
	if r1 == r2 {
		t.Errorf("random strategy should not be reproducible, got %q twice", r1)
	}
	if !strings.HasPrefix(r1, "DEID_") {
		t.Errorf("random strategy token %q missing DEID_ prefix", r1)
	}
}
