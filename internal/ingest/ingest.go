// Package ingest turns raw healthcare payloads into the canonical content
// graph. Each source format has a normalizer subpackage (fhir, hl7v2, ccda);
// this package detects the format and routes to the right one.
package ingest

import (
	"bytes"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clinpipe/clinpipe/internal/model"
)

// Format identifies a supported source format.
type Format string

const (
	FormatFHIR    Format = "fhir"
	FormatHL7v2   Format = "hl7v2"
	FormatCCDA    Format = "ccda"
	FormatUnknown Format = "unknown"
)

// Normalizer converts one source format into the canonical clinical graph.
type Normalizer interface {
	Format() Format
	Normalize(data []byte) (*model.ClinicalContent, error)
}

// DetectFormat sniffs the payload. FHIR bundles are JSON objects, C-CDA
// documents are XML, HL7v2 messages start with an MSH segment.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	switch {
	case len(trimmed) == 0:
		return FormatUnknown
	case trimmed[0] == '{':
		return FormatFHIR
	case trimmed[0] == '<':
		return FormatCCDA
	case bytes.HasPrefix(trimmed, []byte("MSH")):
		return FormatHL7v2
	default:
		return FormatUnknown
	}
}

// Router dispatches payloads to normalizers by detected format.
type Router struct {
	normalizers map[Format]Normalizer
	log         zerolog.Logger
}

// NewRouter builds a router over the given normalizers.
func NewRouter(log zerolog.Logger, normalizers ...Normalizer) *Router {
	r := &Router{
		normalizers: make(map[Format]Normalizer, len(normalizers)),
		log:         log,
	}
	for _, n := range normalizers {
		r.normalizers[n.Format()] = n
	}
	return r
}

// Normalize detects the payload format and runs the matching normalizer.
func (r *Router) Normalize(data []byte) (*model.ClinicalContent, error) {
	format := DetectFormat(data)
	n, ok := r.normalizers[format]
	if !ok {
		return nil, fmt.Errorf("ingest: no normalizer for format %q", format)
	}
	content, err := n.Normalize(data)
	if err != nil {
		return nil, fmt.Errorf("ingest: normalize %s: %w", format, err)
	}
	r.log.Debug().
		Str("stage", "ingest").
		Str("format", string(format)).
		Str("content", content.Summary()).
		Msg("payload normalized")
	return content, nil
}
