package deid

import (
	"regexp"
	"strconv"
	"time"
)

// dateLayouts is the fixed, ordered list of formats attempted for
// string-encoded dates. HL7 compact timestamps first, then ISO-8601 variants.
var dateLayouts = []string{
	"20060102150405",
	"20060102",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// yearPattern extracts a plausible 4-digit year from an unparseable date
// string.
var yearPattern = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)

// dateHandler applies the Safe Harbor temporal policy. now is fixed per
// invocation so every date in one graph sees the same over-90 boundary.
type dateHandler struct {
	policy Policy
	now    time.Time
}

// clampYear enforces the over-90 rule on a bare year. Under "adjust" the
// year is raised to now-90 whenever the literal year would imply an age over
// 90. This is an approximation of the Safe Harbor age-aggregation rule, not
// a documented requirement of it.
func (h dateHandler) clampYear(year int, over90 bool) int {
	if over90 && h.policy.Over90Handling == Over90Adjust {
		if floor := h.now.Year() - 90; year < floor {
			return floor
		}
	}
	return year
}

// generalizeTime transforms a typed date field. A nil result means the field
// is removed.
func (h dateHandler) generalizeTime(t time.Time, over90 bool) *time.Time {
	if over90 && h.policy.Over90Handling == Over90Redact {
		return nil
	}
	if !h.policy.KeepYear {
		return nil
	}
	year := h.clampYear(t.Year(), over90)
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return &jan1
}

// generalizeTimes transforms a date sequence element-wise. Elements that
// generalize to nil are dropped; a fully-redacted sequence becomes nil.
func (h dateHandler) generalizeTimes(ts []time.Time, over90 bool) []time.Time {
	if len(ts) == 0 {
		return ts
	}
	out := make([]time.Time, 0, len(ts))
	for _, t := range ts {
		if g := h.generalizeTime(t, over90); g != nil {
			out = append(out, *g)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// generalizeDateString transforms a string-encoded date. Parseable dates and
// extractable 4-digit years reduce to the bare year; everything else is
// cleared.
func (h dateHandler) generalizeDateString(s string, over90 bool) string {
	if s == "" {
		return ""
	}
	if over90 && h.policy.Over90Handling == Over90Redact {
		return ""
	}
	if !h.policy.KeepYear {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return strconv.Itoa(h.clampYear(t.Year(), over90))
		}
	}
	if m := yearPattern.FindString(s); m != "" {
		year, _ := strconv.Atoi(m)
		return strconv.Itoa(h.clampYear(year, over90))
	}
	return ""
}

// generalizeYear transforms a bare-year field (e.g. year of birth). Zero
// means removed.
func (h dateHandler) generalizeYear(year int, over90 bool) int {
	if year == 0 {
		return 0
	}
	if over90 && h.policy.Over90Handling == Over90Redact {
		return 0
	}
	if !h.policy.KeepYear {
		return 0
	}
	return h.clampYear(year, over90)
}
