package deid

import (
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinpipe/clinpipe/internal/phi"
)

func newTestWalker(p Policy) *walker {
	p = p.Normalize()
	h := NewHasher(p.IDSalt)
	return &walker{
		policy:     p,
		dates:      dateHandler{policy: p, now: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		hasher:     h,
		ids:        NewIdentityMap(h, p.PatientIDStrategy),
		log:        zerolog.Nop(),
		redactions: make(map[string]int),
	}
}

func TestFilterIdentifiers(t *testing.T) {
	w := newTestWalker(Policy{IDSalt: "salt"})

	got := w.filterIdentifiers(map[string]string{
		"MRN":       "MRN12345",
		"SSN":       "123-45-6789",
		"member_id": "M-778899",
		"empty":     "",
	})

	if want := w.hasher.MRNHash("MRN12345"); got["mrn_hash"] != want {
		t.Errorf("mrn_hash = %q, want %q", got["mrn_hash"], want)
	}
	if _, ok := got["MRN"]; ok {
		t.Error("raw MRN key survived")
	}
	if _, ok := got["SSN"]; ok {
		t.Error("SSN entry survived")
	}
	if _, ok := got["empty"]; ok {
		t.Error("empty-valued entry survived")
	}
	if v := got["member_id"]; !strings.HasPrefix(v, "DEID_ID_") {
		t.Errorf("member_id = %q, want DEID_ID_ hash", v)
	}
}

func TestFilterIdentifiersEmpty(t *testing.T) {
	w := newTestWalker(Policy{})
	if got := w.filterIdentifiers(nil); got != nil {
		t.Errorf("nil dictionary should stay nil, got %v", got)
	}
}

func TestWalkVendorBag(t *testing.T) {
	w := newTestWalker(Policy{KeepYear: true, GeographicPrecision: PrecisionState})

	got := w.walkVendorBag(map[string]string{
		"vendor_dob":      "1984-03-15",
		"vendor_ssn":      "123-45-6789",
		"referral_id":     "REF-42",
		"home_address":    "14 Elm St",
		"contact_phone":   "555-123-4567",
		"billing_account": "88221",
		"intake_note":     "Spoke with patient Jane Smith by phone.",
		"favorite_color":  "blue",
	}, false)

	if got["vendor_dob"] != "1984" {
		t.Errorf("vendor_dob = %q, want bare year", got["vendor_dob"])
	}
	if _, ok := got["vendor_ssn"]; ok {
		t.Error("sniffed SSN survived the vendor bag")
	}
	if v := got["referral_id"]; !strings.HasPrefix(v, "DEID_") {
		t.Errorf("referral_id = %q, want pseudonym", v)
	}
	if _, ok := got["home_address"]; ok {
		t.Error("address entry survived")
	}
	if _, ok := got["contact_phone"]; ok {
		t.Error("contact entry survived")
	}
	if v := got["billing_account"]; !strings.HasPrefix(v, "ACCT-") {
		t.Errorf("billing_account = %q, want account token", v)
	}
	note := got["intake_note"]
	if strings.Contains(note, "Jane Smith") {
		t.Errorf("vendor note not redacted: %q", note)
	}
	if got["favorite_color"] != "blue" {
		t.Errorf("unclassified key should pass through, got %q", got["favorite_color"])
	}
}

func TestWalkSkipsDuplicateFieldNames(t *testing.T) {
	w := newTestWalker(Policy{})

	a, b := "first", "second"
	applied := 0
	mk := func(p *string) phi.Field {
		return phi.Field{
			Name:   "dup",
			Kind:   phi.KindName,
			GetStr: func() string { return *p },
			SetStr: func(v string) { applied++; *p = v },
		}
	}
	w.walk(schemaOnly{fields: []phi.Field{mk(&a), mk(&b)}})

	if a != "" {
		t.Errorf("first declaration should be applied, got %q", a)
	}
	if b != "second" {
		t.Errorf("duplicate declaration should be skipped, got %q", b)
	}
	if applied != 1 {
		t.Errorf("field applied %d times, want 1", applied)
	}
}

func TestWalkUnknownKindUntouched(t *testing.T) {
	w := newTestWalker(Policy{})

	v := "kept"
	w.walk(schemaOnly{fields: []phi.Field{phi.Str("misc", phi.KindUnknown, &v)}})
	if v != "kept" {
		t.Errorf("unknown-kind field changed to %q", v)
	}
}

// schemaOnly is a minimal Redactable for walker tests.
type schemaOnly struct {
	fields []phi.Field
}

func (s schemaOnly) DeidSchema() phi.Schema {
	return phi.Schema{Entity: "test", Fields: s.fields}
}
