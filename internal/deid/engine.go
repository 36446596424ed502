package deid

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinpipe/clinpipe/internal/model"
)

// Error is the typed failure surface of the engine, distinguishing
// de-identification failures from upstream and downstream errors and carrying
// the configured method and failing entity for context.
type Error struct {
	Method Method
	Entity string
	Err    error
}

func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("deid: method=%s entity=%s: %v", e.Method, e.Entity, e.Err)
	}
	return fmt.Sprintf("deid: method=%s: %v", e.Method, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Stats summarizes one invocation for audit tracking.
type Stats struct {
	// Entities is the number of entity records walked.
	Entities int `json:"entities"`
	// Identifiers is the number of distinct originals pseudonymized.
	Identifiers int `json:"identifiers"`
	// Redactions counts pattern-cascade substitutions per category.
	Redactions map[string]int `json:"redactions,omitempty"`
	// Passthrough is true when the root type was unrecognized and the item
	// was returned unchanged.
	Passthrough bool `json:"passthrough,omitempty"`
}

// Engine is the de-identification stage entry point. It is stateless across
// invocations and safe for concurrent use: each call builds its own identity
// map and walker, and the only shared state is the lazily-initialized,
// read-only statistical detector.
type Engine struct {
	policy   Policy
	hasher   *Hasher
	detector TextDetector
	log      zerolog.Logger
}

// NewEngine validates the policy (after filling defaults) and builds an
// engine. The statistical detector is attached only when the policy enables
// it; SetDetector overrides the built-in one.
func NewEngine(policy Policy, log zerolog.Logger) (*Engine, error) {
	policy = policy.Normalize()
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		policy: policy,
		hasher: NewHasher(policy.IDSalt),
		log:    log,
	}
	if policy.UseStatisticalTextDetector {
		e.detector = defaultDetector()
	}
	return e, nil
}

// Policy returns the engine's normalized policy.
func (e *Engine) Policy() Policy { return e.policy }

// SetDetector replaces the statistical text detector. A nil detector
// disables the statistical layer; the mandatory pattern cascade is unaffected.
func (e *Engine) SetDetector(d TextDetector) { e.detector = d }

// newWalker builds the per-invocation walker with a fresh identity map.
func (e *Engine) newWalker() *walker {
	return &walker{
		policy:     e.policy,
		dates:      dateHandler{policy: e.policy, now: time.Now().UTC()},
		hasher:     e.hasher,
		ids:        NewIdentityMap(e.hasher, e.policy.PatientIDStrategy),
		detector:   e.detector,
		log:        e.log,
		redactions: make(map[string]int),
	}
}

// DeidentifyClinical de-identifies one clinical content graph. The input is
// never mutated; the returned graph is a deep copy with deidentified=true.
func (e *Engine) DeidentifyClinical(c *model.ClinicalContent) (out *model.ClinicalContent, stats *Stats, err error) {
	defer e.recoverWalk("ClinicalContent", &err)

	clone, cerr := c.Clone()
	if cerr != nil {
		return nil, nil, &Error{Method: e.policy.Method, Entity: "ClinicalContent", Err: cerr}
	}
	w := e.newWalker()
	n := w.walkClinical(clone)
	clone.Deidentified = true

	stats = &Stats{Entities: n, Identifiers: w.ids.Len(), Redactions: w.redactions}
	e.log.Debug().
		Str("stage", "deid").
		Int("entities", n).
		Int("identifiers", stats.Identifiers).
		Msg("clinical content de-identified")
	return clone, stats, nil
}

// DeidentifyOperational de-identifies one operational content graph. A
// single identity map spans the whole graph, so a patient referenced in a
// claim and in a payment resolves to one pseudonym.
func (e *Engine) DeidentifyOperational(c *model.OperationalContent) (out *model.OperationalContent, stats *Stats, err error) {
	defer e.recoverWalk("OperationalContent", &err)

	clone, cerr := c.Clone()
	if cerr != nil {
		return nil, nil, &Error{Method: e.policy.Method, Entity: "OperationalContent", Err: cerr}
	}
	w := e.newWalker()
	n := w.walkOperational(clone)
	clone.Deidentified = true

	stats = &Stats{Entities: n, Identifiers: w.ids.Len(), Redactions: w.redactions}
	e.log.Debug().
		Str("stage", "deid").
		Int("entities", n).
		Int("identifiers", stats.Identifiers).
		Msg("operational content de-identified")
	return clone, stats, nil
}

// Process de-identifies a single item of either root variant. Unrecognized
// root types pass through unchanged with a warning; this is intentional
// passthrough, not a failure.
func (e *Engine) Process(item any) (any, *Stats, error) {
	switch v := item.(type) {
	case *model.ClinicalContent:
		return reshape(e.DeidentifyClinical(v))
	case *model.OperationalContent:
		return reshape(e.DeidentifyOperational(v))
	default:
		e.log.Warn().
			Str("stage", "deid").
			Type("content_type", item).
			Msg("unsupported content type, passing through unchanged")
		return item, &Stats{Passthrough: true}, nil
	}
}

// BatchResult is the outcome for one item of a batch.
type BatchResult struct {
	Output any
	Stats  *Stats
	Err    error
}

// ProcessBatch processes each item independently with its own identity map.
// Per-item failures never abort the batch; the caller decides
// continue-on-error semantics from the per-item results. Items are
// embarrassingly parallel, but parallelism is left to the caller.
func (e *Engine) ProcessBatch(items []any) []BatchResult {
	results := make([]BatchResult, len(items))
	for i, item := range items {
		out, stats, err := e.Process(item)
		results[i] = BatchResult{Output: out, Stats: stats, Err: err}
	}
	return results
}

// recoverWalk converts a panic during the per-entity walk into a typed
// engine error at the orchestrator boundary. The caller never sees a
// half-redacted graph: the named output stays nil on failure.
func (e *Engine) recoverWalk(entity string, err *error) {
	if r := recover(); r != nil {
		*err = &Error{Method: e.policy.Method, Entity: entity, Err: fmt.Errorf("panic during walk: %v", r)}
	}
}

func reshape[T any](out *T, stats *Stats, err error) (any, *Stats, error) {
	if err != nil {
		return nil, nil, err
	}
	return out, stats, nil
}
