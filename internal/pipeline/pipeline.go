// Package pipeline executes provisioning steps strictly in order, one
// attempt each.
//
// Failure handling is deliberately blunt. A critical step that fails
// aborts the run immediately and later steps are never attempted. A
// non-critical step that fails is logged and stepped past; those exist
// only for best-effort cleanup work. Nothing is retried: every step is
// idempotent, so the recovery path for any failure is to fix the cause
// and re-invoke the whole run.
//
// A Pipeline is single-threaded and not safe for concurrent use. It
// takes no locks of its own; the package managers underneath hold the
// only locks that matter.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dockstrap/dockstrap/internal/logging"
)

// Phase is where a pipeline is in its lifecycle.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseRunning    Phase = "running"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Statuses recorded per step in a Report.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Step is one unit of provisioning work.
type Step struct {
	// Name identifies the step in logs and diagnostics.
	Name string

	// Critical steps abort the pipeline when they fail. Non-critical
	// steps log a warning and the pipeline moves on.
	Critical bool

	// Run does the work. It is invoked at most once per pipeline run.
	Run func(ctx context.Context) error
}

// StepResult captures the outcome of executing a single step.
type StepResult struct {
	Name      string
	Status    string
	Message   string
	Err       error
	Duration  time.Duration
	Timestamp time.Time
}

// Report is the full record of one run. It always covers every
// declared step, including steps never reached after an abort.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Results  []StepResult

	// FailedStep names the critical step that aborted the run. Empty
	// when the run completed.
	FailedStep string
}

// Succeeded reports whether the run completed without a critical
// failure. Non-critical failures do not count against it.
func (r *Report) Succeeded() bool {
	return r.FailedStep == ""
}

// Warnings returns the results of non-critical steps that failed.
func (r *Report) Warnings() []StepResult {
	var out []StepResult
	for _, res := range r.Results {
		if res.Status == StatusFailed && res.Name != r.FailedStep {
			out = append(out, res)
		}
	}
	return out
}

// StepError names the critical step that aborted a run.
type StepError struct {
	Step  string
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Cause)
}

func (e *StepError) Unwrap() error {
	return e.Cause
}

// State is a pipeline's current position: the phase, and the index of
// the step being executed (while running) or the step that aborted the
// run (after failure).
type State struct {
	Phase     Phase
	StepIndex int
}

// Pipeline runs steps sequentially, tracking its own lifecycle:
//
//	NotStarted -> Running -> Succeeded
//	                      -> Failed
type Pipeline struct {
	steps  []Step
	logger *logging.Logger
	state  State
}

// New assembles a pipeline over the given steps.
func New(logger *logging.Logger, steps ...Step) *Pipeline {
	return &Pipeline{
		steps:  steps,
		logger: logger,
		state:  State{Phase: PhaseNotStarted, StepIndex: -1},
	}
}

// State returns the pipeline's current position.
func (p *Pipeline) State() State {
	return p.state
}

// Run executes every step in declared order. The returned Report
// covers all steps; the error is the *StepError of the critical step
// that aborted the run, or nil.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Results: make([]StepResult, 0, len(p.steps)),
	}
	log := p.logger.WithFields(map[string]any{"run_id": report.RunID})

	var abort *StepError
	for i, step := range p.steps {
		if abort != nil {
			report.Results = append(report.Results, StepResult{
				Name:      step.Name,
				Status:    StatusSkipped,
				Message:   "not attempted",
				Timestamp: time.Now(),
			})
			continue
		}

		p.state = State{Phase: PhaseRunning, StepIndex: i}
		stepLog := log.WithFields(map[string]any{"step": step.Name})

		if err := ctx.Err(); err != nil {
			abort = &StepError{Step: step.Name, Cause: err}
			report.FailedStep = step.Name
			p.state = State{Phase: PhaseFailed, StepIndex: i}
			report.Results = append(report.Results, StepResult{
				Name:      step.Name,
				Status:    StatusFailed,
				Message:   err.Error(),
				Err:       err,
				Timestamp: time.Now(),
			})
			continue
		}

		stepLog.Info("step started")
		start := time.Now()
		err := step.Run(ctx)

		result := StepResult{
			Name:      step.Name,
			Status:    StatusSuccess,
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}

		switch {
		case err == nil:
			stepLog.Info("step succeeded")
		case step.Critical:
			result.Status = StatusFailed
			result.Err = err
			result.Message = err.Error()
			stepLog.Error(err, "critical step failed, aborting run")
			abort = &StepError{Step: step.Name, Cause: err}
			report.FailedStep = step.Name
			p.state = State{Phase: PhaseFailed, StepIndex: i}
		default:
			result.Status = StatusFailed
			result.Err = err
			result.Message = err.Error()
			stepLog.Warn(fmt.Sprintf("non-critical step failed, continuing: %v", err))
		}

		report.Results = append(report.Results, result)
	}

	report.Finished = time.Now()
	if abort != nil {
		return report, abort
	}

	p.state = State{Phase: PhaseSucceeded, StepIndex: len(p.steps) - 1}
	return report, nil
}
