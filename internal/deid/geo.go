package deid

import "strings"

// unknownCountry replaces a geographic area that cannot be reduced to a
// country segment.
const unknownCountry = "USA"

// generalizeGeography reduces a free-form geographic string ("New York, NY,
// USA") to the configured precision. City precision (and anything finer)
// passes through unchanged; the address handler separately strips
// street-level fields.
func generalizeGeography(area string, precision GeographicPrecision) string {
	if area == "" {
		return ""
	}
	switch precision {
	case PrecisionNone:
		return ""
	case PrecisionCountry:
		segs := splitSegments(area)
		if len(segs) == 0 {
			return unknownCountry
		}
		return segs[len(segs)-1]
	case PrecisionState:
		segs := splitSegments(area)
		switch {
		case len(segs) == 0:
			return ""
		case stateLike(segs[len(segs)-1]):
			// "Boston, MA" or a bare "MA": the last segment is the state.
			return segs[len(segs)-1]
		case len(segs) >= 2:
			// "New York, NY, USA": state sits before the country.
			return segs[len(segs)-2]
		default:
			return segs[0]
		}
	default:
		return area
	}
}

// redactAddress clears street/city/ZIP-grade fields whenever the configured
// precision is state or coarser.
func redactAddress(value string, precision GeographicPrecision) string {
	switch precision {
	case PrecisionNone, PrecisionCountry, PrecisionState:
		return ""
	default:
		return value
	}
}

// stateLike reports whether a segment reads as a two-letter state or
// province code.
func stateLike(seg string) bool {
	if len(seg) != 2 {
		return false
	}
	for _, r := range seg {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func splitSegments(area string) []string {
	parts := strings.Split(area, ",")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}
