// Package audit tracks de-identification runs: how many records were
// processed, what was redacted, and whether the run completed cleanly. The
// engine itself stays persistence-free; the pipeline feeds a Tracker and
// flushes it through a Repository when the run ends.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinpipe/clinpipe/internal/deid"
)

// Outcome classifies a completed run.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeFailure Outcome = "failure"
)

// Run is the persisted summary of one de-identification run.
type Run struct {
	ID          uuid.UUID      `json:"id"`
	Method      string         `json:"method"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	Records     int            `json:"records"`
	Entities    int            `json:"entities"`
	Identifiers int            `json:"identifiers"`
	Passthrough int            `json:"passthrough"`
	Failures    int            `json:"failures"`
	Redactions  map[string]int `json:"redactions,omitempty"`
	Outcome     Outcome        `json:"outcome"`
}

// Repository persists completed runs.
type Repository interface {
	Save(ctx context.Context, run *Run) error
}

// Tracker accumulates per-record stats during a run. Safe for concurrent use.
type Tracker struct {
	mu  sync.Mutex
	run Run
	now func() time.Time
}

// NewTracker starts tracking a run for the given method.
func NewTracker(method string) *Tracker {
	t := &Tracker{now: time.Now}
	t.run = Run{
		ID:         uuid.New(),
		Method:     method,
		StartedAt:  t.now().UTC(),
		Redactions: make(map[string]int),
	}
	return t
}

// RunID reports the run identifier.
func (t *Tracker) RunID() uuid.UUID { return t.run.ID }

// Record folds one successful record's stats into the run.
func (t *Tracker) Record(stats deid.Stats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.run.Records++
	t.run.Entities += stats.Entities
	t.run.Identifiers += stats.Identifiers
	if stats.Passthrough {
		t.run.Passthrough++
	}
	for category, n := range stats.Redactions {
		t.run.Redactions[category] += n
	}
}

// RecordFailure notes a record that could not be de-identified.
func (t *Tracker) RecordFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.run.Records++
	t.run.Failures++
}

// Finish stamps the completion time, classifies the outcome, and returns the
// run summary.
func (t *Tracker) Finish() *Run {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.run.CompletedAt = t.now().UTC()
	switch {
	case t.run.Failures == 0:
		t.run.Outcome = OutcomeSuccess
	case t.run.Failures < t.run.Records:
		t.run.Outcome = OutcomePartial
	default:
		t.run.Outcome = OutcomeFailure
	}
	run := t.run
	run.Redactions = make(map[string]int, len(t.run.Redactions))
	for k, v := range t.run.Redactions {
		run.Redactions[k] = v
	}
	return &run
}
