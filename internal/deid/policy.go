// Package deid implements HIPAA Safe Harbor de-identification over the
// canonical content graph. The engine clones the input, walks every entity's
// declared PHI schema, transforms fields through pure handlers, redacts free
// text through a mandatory pattern cascade (optionally fronted by a
// statistical detector), and keeps pseudonymized identifiers referentially
// consistent through a per-invocation identity map.
//
// The pattern cascade is the compliance floor for structured PHI categories.
// Name detection in free text is heuristic and will both over- and
// under-redact; it is not the safety boundary.
package deid

import "fmt"

// Method selects the de-identification method. Safe Harbor is the only
// method currently implemented.
type Method string

// MethodSafeHarbor removes or generalizes the 18 HIPAA identifier categories.
const MethodSafeHarbor Method = "safe_harbor"

// GeographicPrecision is the maximum location specificity retained.
type GeographicPrecision string

const (
	// PrecisionNone removes all geographic data.
	PrecisionNone GeographicPrecision = "none"
	// PrecisionCountry keeps only the country.
	PrecisionCountry GeographicPrecision = "country"
	// PrecisionState keeps state-level data.
	PrecisionState GeographicPrecision = "state"
	// PrecisionCity keeps city-level data.
	PrecisionCity GeographicPrecision = "city"
)

// Over90Handling controls treatment of entities flagged as age >= 90.
type Over90Handling string

const (
	// Over90Flag keeps the over-90 flag and applies normal date rules.
	Over90Flag Over90Handling = "flag"
	// Over90Redact nulls every date field on the flagged entity.
	Over90Redact Over90Handling = "redact"
	// Over90Adjust clamps years so the literal value never implies an age
	// over 90. This approximates the Safe Harbor age-aggregation rule; see
	// the note on clampYear.
	Over90Adjust Over90Handling = "adjust"
)

// PatientIDStrategy controls derivation of the primary patient identifier.
// All other identifiers are always hashed regardless of strategy.
type PatientIDStrategy string

const (
	// StrategyHash derives a deterministic salted hash.
	StrategyHash PatientIDStrategy = "hash"
	// StrategyRandom derives an opaque random token, not reproducible.
	StrategyRandom PatientIDStrategy = "random"
	// StrategyPrefix prepends a literal prefix, leaving the original value
	// readable. Reversible; debug use only.
	StrategyPrefix PatientIDStrategy = "prefix"
)

// Policy is the immutable configuration for one de-identification invocation.
type Policy struct {
	Method                     Method              `json:"method" mapstructure:"method"`
	KeepYear                   bool                `json:"keep_year" mapstructure:"keep_year"`
	GeographicPrecision        GeographicPrecision `json:"geographic_precision" mapstructure:"geographic_precision"`
	Over90Handling             Over90Handling      `json:"over_90_handling" mapstructure:"over_90_handling"`
	PatientIDStrategy          PatientIDStrategy   `json:"patient_id_strategy" mapstructure:"patient_id_strategy"`
	IDSalt                     string              `json:"id_salt" mapstructure:"id_salt"`
	UseStatisticalTextDetector bool                `json:"use_statistical_text_detector" mapstructure:"use_statistical_text_detector"`
}

// DefaultSalt is used when no salt is configured. Deployments must override
// it and keep the override secret.
const DefaultSalt = "clinpipe-deid-v1"

// DefaultPolicy returns the documented defaults: Safe Harbor, keep the year,
// state-level geography, over-90 flagging, hashed patient ids.
func DefaultPolicy() Policy {
	return Policy{
		Method:              MethodSafeHarbor,
		KeepYear:            true,
		GeographicPrecision: PrecisionState,
		Over90Handling:      Over90Flag,
		PatientIDStrategy:   StrategyHash,
		IDSalt:              DefaultSalt,
	}
}

// Normalize fills empty options with their defaults so a partially-populated
// policy behaves like DefaultPolicy for the missing options.
func (p Policy) Normalize() Policy {
	d := DefaultPolicy()
	if p.Method == "" {
		p.Method = d.Method
	}
	if p.GeographicPrecision == "" {
		p.GeographicPrecision = d.GeographicPrecision
	}
	if p.Over90Handling == "" {
		p.Over90Handling = d.Over90Handling
	}
	if p.PatientIDStrategy == "" {
		p.PatientIDStrategy = d.PatientIDStrategy
	}
	if p.IDSalt == "" {
		p.IDSalt = d.IDSalt
	}
	return p
}

// Validate rejects unrecognized option values.
func (p Policy) Validate() error {
	if p.Method != MethodSafeHarbor {
		return fmt.Errorf("deid: unsupported method %q (only %q is implemented)", p.Method, MethodSafeHarbor)
	}
	switch p.GeographicPrecision {
	case PrecisionNone, PrecisionCountry, PrecisionState, PrecisionCity:
	default:
		return fmt.Errorf("deid: invalid geographic_precision %q", p.GeographicPrecision)
	}
	switch p.Over90Handling {
	case Over90Flag, Over90Redact, Over90Adjust:
	default:
		return fmt.Errorf("deid: invalid over_90_handling %q", p.Over90Handling)
	}
	switch p.PatientIDStrategy {
	case StrategyHash, StrategyRandom, StrategyPrefix:
	default:
		return fmt.Errorf("deid: invalid patient_id_strategy %q", p.PatientIDStrategy)
	}
	if p.IDSalt == "" {
		return fmt.Errorf("deid: id_salt must not be empty")
	}
	return nil
}
