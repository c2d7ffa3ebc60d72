package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestPipeline_RunsAllStepsInOrder(t *testing.T) {
	var order []string
	step := func(name string) Step {
		return Step{
			Name:     name,
			Critical: true,
			Run: func(ctx context.Context) error {
				order = append(order, name)
				return nil
			},
		}
	}

	p := New(nil, step("first"), step("second"), step("third"))
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"first", "second", "third"}
	if len(order) != len(want) {
		t.Fatalf("executed %d steps, want %d", len(order), len(want))
	}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("step %d = %q, want %q", i, order[i], name)
		}
	}

	if !report.Succeeded() {
		t.Error("report should be a success")
	}
	for _, res := range report.Results {
		if res.Status != StatusSuccess {
			t.Errorf("step %q status = %q", res.Name, res.Status)
		}
	}
	if got := p.State(); got.Phase != PhaseSucceeded {
		t.Errorf("phase = %q, want %q", got.Phase, PhaseSucceeded)
	}
}

func TestPipeline_CriticalFailureAborts(t *testing.T) {
	boom := errors.New("index refresh failed")
	var ranThird bool

	p := New(nil,
		Step{Name: "first", Critical: true, Run: func(ctx context.Context) error { return nil }},
		Step{Name: "second", Critical: true, Run: func(ctx context.Context) error { return boom }},
		Step{Name: "third", Critical: true, Run: func(ctx context.Context) error {
			ranThird = true
			return nil
		}},
	)

	report, err := p.Run(context.Background())
	if err == nil {
		t.Fatal("expected error from critical failure")
	}
	if ranThird {
		t.Error("steps after a critical failure must not be attempted")
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got %T", err)
	}
	if stepErr.Step != "second" {
		t.Errorf("failing step = %q, want %q", stepErr.Step, "second")
	}
	if !errors.Is(err, boom) {
		t.Error("StepError should unwrap to the cause")
	}

	if report.Succeeded() {
		t.Error("report should not be a success")
	}
	if report.FailedStep != "second" {
		t.Errorf("FailedStep = %q", report.FailedStep)
	}
	if len(report.Results) != 3 {
		t.Fatalf("report should cover all steps, got %d", len(report.Results))
	}
	if report.Results[2].Status != StatusSkipped {
		t.Errorf("unreached step status = %q, want %q", report.Results[2].Status, StatusSkipped)
	}
	if report.Results[2].Message != "not attempted" {
		t.Errorf("unreached step message = %q", report.Results[2].Message)
	}

	if got := p.State(); got.Phase != PhaseFailed || got.StepIndex != 1 {
		t.Errorf("state = %+v, want failed at index 1", got)
	}
}

func TestPipeline_NonCriticalFailureContinues(t *testing.T) {
	var ranSecond bool

	p := New(nil,
		Step{Name: "remove stale packages", Critical: false, Run: func(ctx context.Context) error {
			return fmt.Errorf("package held open")
		}},
		Step{Name: "install packages", Critical: true, Run: func(ctx context.Context) error {
			ranSecond = true
			return nil
		}},
	)

	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("non-critical failure should not fail the run: %v", err)
	}
	if !ranSecond {
		t.Error("pipeline should continue past a non-critical failure")
	}
	if !report.Succeeded() {
		t.Error("report should be a success despite the warning")
	}

	warnings := report.Warnings()
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Name != "remove stale packages" {
		t.Errorf("warning step = %q", warnings[0].Name)
	}
}

func TestPipeline_SingleAttemptPerStep(t *testing.T) {
	attempts := 0
	p := New(nil, Step{
		Name:     "flaky",
		Critical: true,
		Run: func(ctx context.Context) error {
			attempts++
			return errors.New("transient-looking failure")
		},
	})

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Errorf("step attempted %d times, want exactly 1", attempts)
	}
}

func TestPipeline_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran bool
	p := New(nil,
		Step{Name: "first", Critical: true, Run: func(c context.Context) error {
			ran = true
			return nil
		}},
		Step{Name: "second", Critical: true, Run: func(c context.Context) error { return nil }},
	)

	report, err := p.Run(ctx)
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if ran {
		t.Error("no step should run once the context is cancelled")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("report should cover all steps, got %d", len(report.Results))
	}
	if report.Results[1].Status != StatusSkipped {
		t.Errorf("second step status = %q, want %q", report.Results[1].Status, StatusSkipped)
	}
}

func TestPipeline_StateLifecycle(t *testing.T) {
	var p *Pipeline
	var midRun State

	p = New(nil, Step{Name: "only", Critical: true, Run: func(ctx context.Context) error {
		midRun = p.State()
		return nil
	}})

	if got := p.State(); got.Phase != PhaseNotStarted {
		t.Errorf("initial phase = %q, want %q", got.Phase, PhaseNotStarted)
	}

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if midRun.Phase != PhaseRunning || midRun.StepIndex != 0 {
		t.Errorf("mid-run state = %+v, want running at index 0", midRun)
	}
	if got := p.State(); got.Phase != PhaseSucceeded {
		t.Errorf("final phase = %q, want %q", got.Phase, PhaseSucceeded)
	}
}

func TestPipeline_EmptyRun(t *testing.T) {
	p := New(nil)
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.Succeeded() {
		t.Error("empty run should succeed")
	}
	if len(report.Results) != 0 {
		t.Errorf("expected no results, got %d", len(report.Results))
	}
}

func TestReport_RunID(t *testing.T) {
	p := New(nil, Step{Name: "noop", Run: func(ctx context.Context) error { return nil }})
	report, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if _, err := uuid.Parse(report.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", report.RunID, err)
	}
	if report.Finished.Before(report.Started) {
		t.Error("Finished should not precede Started")
	}
}

func TestStepError_Error(t *testing.T) {
	err := &StepError{Step: "register repository", Cause: errors.New("descriptor write failed")}
	want := `step "register repository" failed: descriptor write failed`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
