package deid

import (
	"github.com/rs/zerolog"

	"github.com/clinpipe/clinpipe/internal/phi"
)

// mrnHashKey is the fixed key under which the MRN-derived hash survives in a
// filtered identifier dictionary.
const mrnHashKey = "mrn_hash"

// walker applies the field-level PHI handlers to one entity's declared
// schema. One walker serves one engine invocation; it carries the
// invocation's identity map and redaction tallies.
type walker struct {
	policy   Policy
	dates    dateHandler
	hasher   *Hasher
	ids      *IdentityMap
	detector TextDetector
	log      zerolog.Logger

	// redactions tallies pattern-cascade substitutions per category across
	// the whole invocation.
	redactions map[string]int
}

// walk dispatches every declared field of the entity to its handler. Fields
// with duplicate names are skipped so no field is visited twice; fields of
// unknown kind are left untouched.
func (w *walker) walk(r phi.Redactable) {
	schema := r.DeidSchema()
	over90 := schema.Over90 != nil && schema.Over90()

	seen := make(map[string]bool, len(schema.Fields))
	for _, f := range schema.Fields {
		if seen[f.Name] {
			continue
		}
		seen[f.Name] = true
		w.applyField(f, over90)
	}

	if schema.IdentifiersGet != nil {
		schema.IdentifiersSet(w.filterIdentifiers(schema.IdentifiersGet()))
	}
	if schema.VendorGet != nil {
		schema.VendorSet(w.walkVendorBag(schema.VendorGet(), over90))
	}
}

func (w *walker) applyField(f phi.Field, over90 bool) {
	switch f.Kind {
	case phi.KindDate:
		w.applyDate(f, over90)
	case phi.KindIdentifier:
		w.applyIdentifier(f)
	case phi.KindGeographic:
		if f.GetStr != nil {
			f.SetStr(generalizeGeography(f.GetStr(), w.policy.GeographicPrecision))
		}
	case phi.KindAddress:
		if f.GetStr != nil {
			f.SetStr(redactAddress(f.GetStr(), w.policy.GeographicPrecision))
		}
	case phi.KindContact, phi.KindBiometric, phi.KindName:
		if f.GetStr != nil {
			f.SetStr("")
		}
	case phi.KindAccount:
		if f.GetStr != nil && f.GetStr() != "" {
			f.SetStr(w.hasher.AccountToken(f.GetStr()))
		}
	case phi.KindText:
		if f.GetStr != nil {
			f.SetStr(w.redactFreeText(f.GetStr()))
		}
	}
}

// applyDate covers every date shape the schema can declare: typed scalars,
// typed sequences, string-encoded dates, and bare years. Sequences are
// transformed element-wise; list-typed date fields are never silently
// skipped.
func (w *walker) applyDate(f phi.Field, over90 bool) {
	switch {
	case f.GetTime != nil:
		if t := f.GetTime(); t != nil {
			f.SetTime(w.dates.generalizeTime(*t, over90))
		}
	case f.GetTimes != nil:
		f.SetTimes(w.dates.generalizeTimes(f.GetTimes(), over90))
	case f.GetYear != nil:
		f.SetYear(w.dates.generalizeYear(f.GetYear(), over90))
	case f.GetStr != nil:
		f.SetStr(w.dates.generalizeDateString(f.GetStr(), over90))
	}
}

func (w *walker) applyIdentifier(f phi.Field) {
	if f.GetStr == nil || f.GetStr() == "" {
		return
	}
	if f.ID == phi.IDSSN {
		f.SetStr("")
		return
	}
	f.SetStr(w.ids.Resolve(f.GetStr(), f.ID))
}

// filterIdentifiers applies the assorted-identifier-dictionary rule: the MRN
// entry is replaced by its hash under the fixed mrn_hash key, SSN entries are
// dropped outright, and every other entry is rehashed in place under its
// original key. Nothing passes through unmodified.
func (w *walker) filterIdentifiers(ids map[string]string) map[string]string {
	if len(ids) == 0 {
		return ids
	}
	out := make(map[string]string, len(ids))
	for key, value := range ids {
		if value == "" {
			continue
		}
		switch kind := phi.SniffID(key); kind {
		case phi.IDMRN:
			out[mrnHashKey] = w.hasher.MRNHash(value)
		case phi.IDSSN:
		default:
			out[key] = w.hasher.Pseudonym(value, kind)
		}
	}
	return out
}

// walkVendorBag is the name-sniffing fallback for loosely-typed vendor
// extension bags. Keys classify through phi.Sniff; unknown keys are kept
// untouched.
func (w *walker) walkVendorBag(bag map[string]string, over90 bool) map[string]string {
	if len(bag) == 0 {
		return bag
	}
	out := make(map[string]string, len(bag))
	for key, value := range bag {
		switch phi.Sniff(key) {
		case phi.KindDate:
			if v := w.dates.generalizeDateString(value, over90); v != "" {
				out[key] = v
			}
		case phi.KindIdentifier:
			kind := phi.SniffID(key)
			if kind == phi.IDSSN {
				continue
			}
			out[key] = w.ids.Resolve(value, kind)
		case phi.KindGeographic:
			if v := generalizeGeography(value, w.policy.GeographicPrecision); v != "" {
				out[key] = v
			}
		case phi.KindAddress, phi.KindContact, phi.KindBiometric, phi.KindName:
			// Dropped.
		case phi.KindAccount:
			out[key] = w.hasher.AccountToken(value)
		case phi.KindText:
			out[key] = w.redactFreeText(value)
		default:
			out[key] = value
		}
	}
	return out
}

// redactFreeText runs the two-layer cascade: the optional statistical
// detector first, its output re-passed through the mandatory pattern set.
// Detector failures are logged and ignored so the stage never aborts because
// the optional layer is unavailable.
func (w *walker) redactFreeText(text string) string {
	if text == "" {
		return text
	}
	if w.detector != nil {
		spans, err := w.detector.Detect(text)
		if err != nil {
			w.log.Warn().Err(err).Str("detector", w.detector.Name()).
				Msg("statistical text detector failed, falling back to pattern cascade")
		} else {
			text = applySpans(text, spans)
		}
	}
	return RedactText(text, w.policy.GeographicPrecision, w.redactions)
}
