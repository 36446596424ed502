package deid

import "regexp"

// Redaction markers. Presentational tokens only, never persisted as entities.
const (
	MarkerName     = "[REDACTED-NAME]"
	MarkerMRN      = "[REDACTED-MRN]"
	MarkerSSN      = "[REDACTED-SSN]"
	MarkerDate     = "[REDACTED-DATE]"
	MarkerAddress  = "[REDACTED-ADDRESS]"
	MarkerZIP      = "[REDACTED-ZIP]"
	MarkerLocation = "[REDACTED-LOCATION]"
	MarkerPhone    = "[REDACTED-PHONE]"
	MarkerEmail    = "[REDACTED-EMAIL]"
	MarkerURL      = "[REDACTED-URL]"
	MarkerIP       = "[REDACTED-IP]"
	MarkerAccount  = "[REDACTED-ACCOUNT]"
	MarkerLicense  = "[REDACTED-LICENSE]"
	MarkerID       = "[REDACTED-IDENTIFIER]"
)

// category is one member of the mandatory pattern cascade.
type category struct {
	name    string
	marker  string
	pattern *regexp.Regexp
	// enabled gates precision-dependent categories. Nil means always on.
	enabled func(GeographicPrecision) bool
}

func stateOrCoarser(p GeographicPrecision) bool {
	return p == PrecisionState || p == PrecisionCountry || p == PrecisionNone
}

func countryOrCoarser(p GeographicPrecision) bool {
	return p == PrecisionCountry || p == PrecisionNone
}

// stateTokens matches US state abbreviations and names as standalone words.
var stateTokens = `A[KLRZ]|C[AOT]|D[CE]|FL|GA|HI|I[ADLN]|K[SY]|LA|M[ADEINOST]|N[CDEHJMVY]|O[HKR]|PA|RI|S[CD]|T[NX]|UT|V[AT]|W[AIVY]`

// cascade is the ordered, mandatory pattern set. It cannot be disabled; the
// statistical detector's output is re-passed through it so this floor holds
// even when the detector misfires. Order matters: labeled identifiers and
// fully-structured values go before the loose name heuristics that could
// otherwise split them.
var cascade = []category{
	{
		name:    "url",
		marker:  MarkerURL,
		pattern: regexp.MustCompile(`\bhttps?://[^\s<>"]+|\bwww\.[^\s<>"]+`),
	},
	{
		name:    "email",
		marker:  MarkerEmail,
		pattern: regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	},
	{
		name:    "ip",
		marker:  MarkerIP,
		pattern: regexp.MustCompile(`\b\d{1,3}(?:\.\d{1,3}){3}\b`),
	},
	{
		name:    "mrn",
		marker:  MarkerMRN,
		pattern: regexp.MustCompile(`(?i)\b(?:MRN|medical\s+record\s+(?:number|no)|chart\s+(?:number|no)|patient\s+id)\s*[:#]?\s*[A-Za-z0-9-]{3,15}\b`),
	},
	{
		name:    "ssn",
		marker:  MarkerSSN,
		pattern: regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b|(?i)\bSSN\s*[:#]?\s*\d{9}\b`),
	},
	{
		name:    "phone",
		marker:  MarkerPhone,
		pattern: regexp.MustCompile(`\(\d{3}\)\s*\d{3}[-.\s]?\d{4}\b|\b\d{3}[-.]\d{3}[-.]\d{4}\b|\b\+?1[-.\s]\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`),
	},
	{
		name:    "credit-card",
		marker:  MarkerAccount,
		pattern: regexp.MustCompile(`\b\d{4}[ -]?\d{4}[ -]?\d{4}[ -]?\d{1,4}\b`),
	},
	{
		name:    "account",
		marker:  MarkerAccount,
		pattern: regexp.MustCompile(`(?i)\b(?:account|acct)\s*(?:number|no)?\s*[:#]?\s*[A-Za-z0-9-]{4,20}\b`),
	},
	{
		name:    "license",
		marker:  MarkerLicense,
		pattern: regexp.MustCompile(`(?i)\b(?:license|lic|certificate|cert)\s*(?:number|no)?\s*[:#]?\s*[A-Za-z0-9-]{4,15}\b`),
	},
	{
		name:    "date-iso",
		marker:  MarkerDate,
		pattern: regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2})?)?\b`),
	},
	{
		name:    "date-slash",
		marker:  MarkerDate,
		pattern: regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),
	},
	{
		name:    "date-textual",
		marker:  MarkerDate,
		pattern: regexp.MustCompile(`\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\.?\s+\d{1,2},?\s+\d{4}\b`),
	},
	{
		name:    "date-compact",
		marker:  MarkerDate,
		pattern: regexp.MustCompile(`\b(?:19|20)\d{2}(?:0[1-9]|1[0-2])(?:0[1-9]|[12]\d|3[01])\b`),
	},
	{
		name:    "street-address",
		marker:  MarkerAddress,
		pattern: regexp.MustCompile(`\b\d{1,6}\s+(?:[A-Za-z]+\s+){0,3}(?:St(?:reet)?|Ave(?:nue)?|R(?:oa)?d|Blvd|Boulevard|Dr(?:ive)?|Ln|Lane|Ct|Court|Way|Pl(?:ace)?|Ter(?:race)?)\.?\b`),
		enabled: stateOrCoarser,
	},
	{
		name:    "zip",
		marker:  MarkerZIP,
		pattern: regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`),
		enabled: stateOrCoarser,
	},
	{
		name:    "state-token",
		marker:  MarkerLocation,
		pattern: regexp.MustCompile(`\b(?:` + stateTokens + `)\b`),
		enabled: countryOrCoarser,
	},
	{
		name:    "honorific-name",
		marker:  MarkerName,
		pattern: regexp.MustCompile(`\b(?:Dr|Mr|Mrs|Ms|Prof)\.?\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?\b`),
	},
	{
		name:   "name-run",
		marker: MarkerName,
		// Two or more consecutive capitalized words. Coarse by design: this
		// over-redacts capitalized non-name phrases and under-redacts
		// unusual name formats. The structured categories above are the
		// compliance floor, not this heuristic.
		pattern: regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`),
	},
}

// RedactText applies the mandatory pattern cascade and returns the redacted
// text. The counts map (optional) tallies substitutions per category name.
func RedactText(text string, precision GeographicPrecision, counts map[string]int) string {
	if text == "" {
		return text
	}
	for _, cat := range cascade {
		if cat.enabled != nil && !cat.enabled(precision) {
			continue
		}
		if counts != nil {
			n := len(cat.pattern.FindAllStringIndex(text, -1))
			if n > 0 {
				counts[cat.name] += n
			}
		}
		text = cat.pattern.ReplaceAllString(text, cat.marker)
	}
	return text
}

// CascadeLeaks reports which cascade categories still match the given text.
// Used by tests and audit to verify the redaction floor: a fully redacted
// text yields an empty slice.
func CascadeLeaks(text string, precision GeographicPrecision) []string {
	var leaked []string
	for _, cat := range cascade {
		if cat.enabled != nil && !cat.enabled(precision) {
			continue
		}
		if cat.pattern.MatchString(text) {
			leaked = append(leaked, cat.name)
		}
	}
	return leaked
}
