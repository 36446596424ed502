package deid

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/clinpipe/clinpipe/internal/phi"
)

// Hash lengths per identifier kind, in hex characters.
const (
	patientIDHashLen = 16
	mrnHashLen       = 16
	generalIDHashLen = 12
	accountHashLen   = 8
)

// Hasher is the single derivation point for every pseudonymized identifier.
// Consolidating hashing here guarantees the patient-id path and the
// generic-id path can never drift apart in salt or algorithm.
type Hasher struct {
	salt string
}

// NewHasher returns a Hasher using the given salt.
func NewHasher(salt string) *Hasher {
	if salt == "" {
		salt = DefaultSalt
	}
	return &Hasher{salt: salt}
}

// digest returns the hex SHA-256 of value||salt truncated to n characters.
func (h *Hasher) digest(value string, n int) string {
	sum := sha256.Sum256([]byte(value + h.salt))
	hexed := hex.EncodeToString(sum[:])
	if n > len(hexed) {
		n = len(hexed)
	}
	return hexed[:n]
}

// Pseudonym derives the replacement token for an identifier of the given
// kind: "DEID_" + kind prefix + truncated hash.
func (h *Hasher) Pseudonym(value string, kind phi.IDKind) string {
	n := generalIDHashLen
	switch kind {
	case phi.IDPatient:
		n = patientIDHashLen
	case phi.IDMRN:
		n = mrnHashLen
	}
	return "DEID_" + kind.Prefix() + h.digest(value, n)
}

// MRNHash derives the token stored under the fixed mrn_hash key of a
// filtered identifier dictionary. Same derivation as the primary patient
// identifier: "DEID_" + 16 hex characters.
func (h *Hasher) MRNHash(value string) string {
	return "DEID_" + h.digest(value, mrnHashLen)
}

// AccountToken derives the short deterministic token that replaces account
// and financial numbers while keeping transaction linkage analyzable.
func (h *Hasher) AccountToken(value string) string {
	return "ACCT-" + h.digest(value, accountHashLen)
}

// PatientPseudonym derives the primary patient identifier under the
// configured strategy. Hash is deterministic; random is opaque and not
// reproducible; prefix is reversible and intended for debugging only.
func (h *Hasher) PatientPseudonym(value string, strategy PatientIDStrategy) string {
	switch strategy {
	case StrategyRandom:
		return "DEID_" + uuid.NewString()
	case StrategyPrefix:
		return "DEID_" + value
	default:
		return h.Pseudonym(value, phi.IDPatient)
	}
}
