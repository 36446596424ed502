package deid

import (
	"sort"
	"strings"
	"sync"
	"unicode"
)

// Span is a detected PHI region in free text.
type Span struct {
	Start    int
	End      int
	Category string // marker category: "name", "location", "date", ...
}

// TextDetector is the optional statistical layer of the free-text redactor.
// Implementations must be safe for concurrent use. Detector output is always
// re-passed through the mandatory pattern cascade, and any error from Detect
// is logged and swallowed: the cascade alone is the compliance floor.
type TextDetector interface {
	Name() string
	Detect(text string) ([]Span, error)
}

var (
	defaultDetectorOnce sync.Once
	defaultDetectorInst TextDetector
)

// defaultDetector lazily builds the built-in detector. The instance is
// read-only after construction and shared across invocations.
func defaultDetector() TextDetector {
	defaultDetectorOnce.Do(func() {
		defaultDetectorInst = newContextNameDetector()
	})
	return defaultDetectorInst
}

// contextNameDetector is a lightweight token-context model for person names:
// it flags capitalized token runs that follow clinical cue words ("patient",
// "seen by", "signed by", ...). It exists to catch name formats the coarse
// capitalized-pair regex misses, such as single surnames after a cue.
type contextNameDetector struct {
	cues map[string]bool
}

func newContextNameDetector() *contextNameDetector {
	return &contextNameDetector{
		cues: map[string]bool{
			"patient":   true,
			"pt":        true,
			"by":        true,
			"with":      true,
			"name":      true,
			"guardian":  true,
			"spouse":    true,
			"daughter":  true,
			"son":       true,
			"mother":    true,
			"father":    true,
			"physician": true,
			"provider":  true,
			"nurse":     true,
			"signed":    true,
		},
	}
}

func (d *contextNameDetector) Name() string { return "context-name" }

// Detect scans token by token. It never errors; the error return satisfies
// the interface contract for heavier detectors.
func (d *contextNameDetector) Detect(text string) ([]Span, error) {
	type token struct {
		start, end int
		text       string
	}
	var tokens []token
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || r == '\'' || r == '-' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, token{start, i, text[start:i]})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{start, len(text), text[start:]})
	}

	var spans []Span
	for i := 1; i < len(tokens); i++ {
		if !d.cues[strings.ToLower(tokens[i-1].text)] {
			continue
		}
		// Consume the run of capitalized tokens after the cue.
		j := i
		for j < len(tokens) && isCapitalized(tokens[j].text) {
			j++
		}
		if j == i {
			continue
		}
		spans = append(spans, Span{Start: tokens[i].start, End: tokens[j-1].end, Category: "name"})
		i = j
	}
	return spans, nil
}

func isCapitalized(s string) bool {
	if s == "" {
		return false
	}
	runes := []rune(s)
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			return false
		}
	}
	return len(runes) > 1
}

// applySpans substitutes detected spans with their category markers,
// right to left so earlier offsets stay valid. Overlapping spans collapse
// into the leftmost one.
func applySpans(text string, spans []Span) string {
	if len(spans) == 0 {
		return text
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].Start < spans[j].Start })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start < last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	var b strings.Builder
	prev := 0
	for _, s := range merged {
		if s.Start < prev || s.End > len(text) {
			continue
		}
		b.WriteString(text[prev:s.Start])
		b.WriteString(markerFor(s.Category))
		prev = s.End
	}
	b.WriteString(text[prev:])
	return b.String()
}

func markerFor(category string) string {
	switch category {
	case "name":
		return MarkerName
	case "location":
		return MarkerLocation
	case "date":
		return MarkerDate
	case "phone":
		return MarkerPhone
	case "email":
		return MarkerEmail
	default:
		return MarkerID
	}
}
