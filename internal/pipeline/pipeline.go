// Package pipeline chains the processing stages: ingest, de-identify, chunk,
// embed, store. Stages are run sequentially; each run gets its own id,
// logger, and timing map. Batch callers decide whether one failed document
// stops the batch.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinpipe/clinpipe/internal/audit"
)

// Context carries per-run state between stages.
type Context struct {
	RunID   uuid.UUID
	Log     zerolog.Logger
	Timings map[string]time.Duration

	// Tracker is set by the de-identification stage on first use and
	// flushed by the runner when an audit repository is configured.
	Tracker *audit.Tracker
}

// Stage is one step of the pipeline. Input and output types are stage
// specific; the runner passes each stage's output to the next stage.
type Stage interface {
	Name() string
	Run(ctx context.Context, pc *Context, input any) (any, error)
}

// Runner executes stages in order.
type Runner struct {
	log    zerolog.Logger
	stages []Stage
	repo   audit.Repository
}

// NewRunner builds a runner over the given stages.
func NewRunner(log zerolog.Logger, stages ...Stage) *Runner {
	return &Runner{log: log, stages: stages}
}

// WithAudit persists run summaries through repo after each run.
func (r *Runner) WithAudit(repo audit.Repository) *Runner {
	r.repo = repo
	return r
}

// Run pushes input through every stage. The returned Context holds the run id
// and per-stage timings even when a stage fails.
func (r *Runner) Run(ctx context.Context, input any) (any, *Context, error) {
	pc := &Context{
		RunID:   uuid.New(),
		Timings: make(map[string]time.Duration, len(r.stages)),
	}
	pc.Log = r.log.With().Stringer("run_id", pc.RunID).Logger()

	current := input
	var runErr error
	for _, stage := range r.stages {
		start := time.Now()
		out, err := stage.Run(ctx, pc, current)
		pc.Timings[stage.Name()] = time.Since(start)
		if err != nil {
			pc.Log.Error().Err(err).Str("stage", stage.Name()).Msg("stage failed")
			runErr = fmt.Errorf("pipeline: stage %s: %w", stage.Name(), err)
			break
		}
		pc.Log.Debug().
			Str("stage", stage.Name()).
			Dur("elapsed", pc.Timings[stage.Name()]).
			Msg("stage complete")
		current = out
	}

	if r.repo != nil && pc.Tracker != nil {
		if err := r.repo.Save(ctx, pc.Tracker.Finish()); err != nil {
			pc.Log.Error().Err(err).Msg("audit save failed")
		}
	}
	if runErr != nil {
		return nil, pc, runErr
	}
	return current, pc, nil
}
