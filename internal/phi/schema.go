// Package phi declares the field-level schema that canonical entities expose
// to the de-identification engine. Each entity type lists, at compile time,
// which of its fields carry Protected Health Information and what semantic
// role each field plays (date, identifier, geography, contact, biometric,
// account, free text). The walker in internal/deid dispatches purely on this
// declared schema; no reflection is involved.
package phi

import (
	"strings"
	"time"
)

// Kind is the semantic role of a PHI-bearing field.
type Kind int

const (
	// KindUnknown marks a field the engine leaves untouched.
	KindUnknown Kind = iota
	// KindDate is a date or datetime field (typed or string-encoded).
	KindDate
	// KindIdentifier is a patient, provider, encounter, or record identifier.
	KindIdentifier
	// KindGeographic is a free-form geographic area (city/state/country).
	KindGeographic
	// KindAddress is a street address, city, ZIP, or similar fine-grained
	// location field. Handled more aggressively than KindGeographic.
	KindAddress
	// KindContact is a phone, fax, or email field.
	KindContact
	// KindBiometric is a fingerprint, iris, voiceprint, or DNA field.
	KindBiometric
	// KindAccount is an account, card, bank, or payment identifier.
	KindAccount
	// KindText is a free-text narrative that must pass through the redactor.
	KindText
	// KindName is a structured person-name field (author names, provider
	// display names). Always removed.
	KindName
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindIdentifier:
		return "identifier"
	case KindGeographic:
		return "geographic"
	case KindAddress:
		return "address"
	case KindContact:
		return "contact"
	case KindBiometric:
		return "biometric"
	case KindAccount:
		return "account"
	case KindText:
		return "text"
	case KindName:
		return "name"
	default:
		return "unknown"
	}
}

// IDKind distinguishes identifier derivations. MRN and patient identifiers
// get longer hashes than generic ones; the primary patient identifier is the
// only one whose strategy is configurable.
type IDKind int

const (
	// IDGeneric covers provider ids, encounter ids, check numbers, lot
	// numbers, and any other identifier without special handling.
	IDGeneric IDKind = iota
	// IDPatient is the primary patient identifier.
	IDPatient
	// IDMRN is a medical record number.
	IDMRN
	// IDSSN is a social security number. Always removed, never hashed into
	// the output.
	IDSSN
	// IDLicense is a certificate or license number.
	IDLicense
)

// Prefix returns the token inserted between "DEID_" and the hash.
func (k IDKind) Prefix() string {
	switch k {
	case IDPatient:
		return ""
	case IDMRN:
		return "MRN_"
	case IDLicense:
		return "LIC_"
	default:
		return "ID_"
	}
}

// Field binds one entity field to its schema role. Exactly one accessor pair
// is set, matching the field's Go type. Accessors operate on the entity the
// schema was built from, so setting through a Field mutates that entity.
type Field struct {
	Name string
	Kind Kind
	ID   IDKind

	// String-typed fields (including string-encoded dates).
	GetStr func() string
	SetStr func(string)

	// Typed date fields. A nil result from SetTime's argument clears the
	// field.
	GetTime func() *time.Time
	SetTime func(*time.Time)

	// Date sequences (e.g. a list of service dates). Every element is
	// transformed independently.
	GetTimes func() []time.Time
	SetTimes func([]time.Time)

	// Bare-year fields (e.g. year of birth). Zero clears the field.
	GetYear func() int
	SetYear func(int)
}

// Schema is the declared PHI surface of one entity.
type Schema struct {
	// Entity names the entity type for error context ("Patient", "Claim").
	Entity string
	// Over90 reports whether the entity carries an age>=90 flag set to true.
	// Nil when the entity has no such flag.
	Over90 func() bool
	// Fields lists the PHI-bearing fields. Field names must be unique; the
	// walker skips duplicates so no field is ever visited twice.
	Fields []Field
	// IdentifiersGet/IdentifiersSet expose the assorted identifier dictionary
	// (MRN, SSN, member ids, ...) that gets the filtered re-hash treatment.
	// Nil when the entity has no such dictionary.
	IdentifiersGet func() map[string]string
	IdentifiersSet func(map[string]string)
	// VendorGet/VendorSet expose a loosely-typed vendor extension bag whose
	// keys are classified by name sniffing (see Sniff). Nil when absent.
	VendorGet func() map[string]string
	VendorSet func(map[string]string)
}

// Redactable is the capability interface every canonical entity implements to
// participate in de-identification.
type Redactable interface {
	DeidSchema() Schema
}

// Date field helpers keep the per-entity schema declarations short.

// Str binds a string field.
func Str(name string, kind Kind, p *string) Field {
	return Field{
		Name:   name,
		Kind:   kind,
		GetStr: func() string { return *p },
		SetStr: func(v string) { *p = v },
	}
}

// StrID binds a string identifier field with an explicit derivation kind.
func StrID(name string, id IDKind, p *string) Field {
	f := Str(name, KindIdentifier, p)
	f.ID = id
	return f
}

// Time binds a *time.Time date field.
func Time(name string, p **time.Time) Field {
	return Field{
		Name:    name,
		Kind:    KindDate,
		GetTime: func() *time.Time { return *p },
		SetTime: func(v *time.Time) { *p = v },
	}
}

// Year binds a bare-year int field.
func Year(name string, p *int) Field {
	return Field{
		Name:    name,
		Kind:    KindDate,
		GetYear: func() int { return *p },
		SetYear: func(v int) { *p = v },
	}
}

// Times binds a []time.Time date-sequence field.
func Times(name string, p *[]time.Time) Field {
	return Field{
		Name:     name,
		Kind:     KindDate,
		GetTimes: func() []time.Time { return *p },
		SetTimes: func(v []time.Time) { *p = v },
	}
}

// Sniff classifies a field name by the historically observed conventions of
// loosely-typed vendor payloads. It is the fallback path for extension bags
// that carry no declared schema; declared schemas always win.
func Sniff(name string) Kind {
	n := strings.ToLower(name)
	contains := func(subs ...string) bool {
		for _, s := range subs {
			if strings.Contains(n, s) {
				return true
			}
		}
		return false
	}
	switch {
	case contains("mrn", "ssn", "social_security"):
		return KindIdentifier
	case strings.HasSuffix(n, "_date") || strings.HasSuffix(n, "_dob") || n == "dob" || contains("birth"):
		return KindDate
	case contains("address", "street", "city", "zip", "postal"):
		return KindAddress
	case n == "geographic_area" || contains("geograph"):
		return KindGeographic
	case contains("phone", "email", "fax", "telecom"):
		return KindContact
	case contains("biometric", "fingerprint", "voice", "iris", "retina", "dna"):
		return KindBiometric
	case contains("account", "card", "bank", "payment_method"):
		return KindAccount
	case strings.HasSuffix(n, "_id") || strings.HasSuffix(n, "_number") || contains("license", "certificate"):
		return KindIdentifier
	case contains("note", "narrative", "comment", "text"):
		return KindText
	default:
		return KindUnknown
	}
}

// SniffID maps a sniffed identifier name to its derivation kind.
func SniffID(name string) IDKind {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "mrn"):
		return IDMRN
	case strings.Contains(n, "ssn") || strings.Contains(n, "social_security"):
		return IDSSN
	case strings.Contains(n, "license") || strings.Contains(n, "certificate"):
		return IDLicense
	default:
		return IDGeneric
	}
}
