package pipeline

import (
	"context"
	"errors"
	"fmt"

	"mjtest/internal/core"
	"mjtest/internal/report"
	"mjtest/internal/toolchain"
	"mjtest/internal/trace"
	"mjtest/internal/verify"
)

// Runner executes stages. Tool is required; the other fields have usable
// zero values.
type Runner struct {
	Tool         toolchain.Invoker
	Reporter     *report.Reporter
	Expectations verify.Expectations
	Trace        trace.Sink
	Options      Options
}

// suite is a stage-independent view of the work: one entry per case.
type suite struct {
	hash  core.SuiteHash
	cases []core.Input
}

// Run executes stage over layout and prints the summary.
//
// Per-file problems never make Run fail: they become verdicts. Run returns
// an error only when the run cannot start (ErrSetup) or ctx is cancelled, in
// which case the partial result is still returned.
func (r *Runner) Run(ctx context.Context, stage Stage, layout Layout) (Result, error) {
	res := Result{Stage: stage}
	if r.Tool == nil {
		return res, errors.New("pipeline: no tool invoker")
	}
	if r.Reporter == nil {
		r.Reporter = report.New(nil, report.Options{})
	}
	if r.Trace == nil {
		r.Trace = trace.NopSink{}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := layout.Validate(stage); err != nil {
		return res, err
	}

	if err := core.EnsureDir(layout.OutputDir); err != nil {
		return res, fmt.Errorf("%w: %v", ErrSetup, err)
	}
	if stage == CompileStage {
		if err := core.EnsureDir(layout.ResultsDir); err != nil {
			return res, fmt.Errorf("%w: %v", ErrSetup, err)
		}
	}

	var (
		step func(context.Context, core.Input, Layout) verify.Verdict
		s    suite
	)
	switch stage {
	case ParseStage, SemanticStage, CompileStage:
		set, err := core.Discover(layout.InputDir, stage.Extension())
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrSetup, err)
		}
		s = suite{hash: core.ComputeSuiteHash(string(stage), set), cases: set.Inputs}
		switch stage {
		case ParseStage:
			step = r.parse
		case SemanticStage:
			step = r.semantic
		default:
			step = r.compile
		}
	case RenameStage:
		rs, err := LoadRenameSuite(layout.InputDir)
		if err != nil {
			return res, fmt.Errorf("%w: %v", ErrSetup, err)
		}
		s = suite{hash: rs.Hash(), cases: rs.inputs()}
		step = func(ctx context.Context, in core.Input, l Layout) verify.Verdict {
			return r.rename(ctx, rs.byID[in.Name], l)
		}
	default:
		return res, fmt.Errorf("unknown stage %q", stage)
	}
	res.SuiteHash = s.hash

	for _, in := range s.cases {
		if err := ctx.Err(); err != nil {
			r.Reporter.Summary(res.Totals)
			return res, fmt.Errorf("run interrupted before %s: %w", in.Name, err)
		}
		r.Reporter.Begin(stage.Headline(in.Name))
		v := step(ctx, in, layout)
		r.record(v)
		res.Verdicts = append(res.Verdicts, v)
		res.Totals = res.Totals.Add(v)
	}

	r.Reporter.Summary(res.Totals)
	return res, nil
}

func (r *Runner) expectation(name string) verify.Expectation {
	e, src := r.Expectations.For(name)
	r.Reporter.Expectation(e, src)
	return e
}

// invoked reports one tool invocation. A start failure is printed and
// traced, and the caller goes on to verify whatever is on disk.
func (r *Runner) invoked(name string, inv *toolchain.Invocation, err error) {
	r.Reporter.Command(inv)
	if err != nil {
		r.Reporter.Diagnostic(fmt.Sprintf("tool error: %v", err))
		trace.SafeRecord(r.Trace, trace.Event{
			Kind:   trace.EventToolError,
			CaseID: name,
			Reason: core.ErrorCode(core.ToolFailure(name, err)),
		})
	}
}

func (r *Runner) record(v verify.Verdict) {
	if errors.Is(v.Err, core.ErrMissingArtifact) {
		trace.SafeRecord(r.Trace, trace.Event{
			Kind:      trace.EventArtifactMissing,
			CaseID:    v.Case,
			Artifacts: v.Artifacts,
		})
	}
	e := trace.Event{CaseID: v.Case, Artifacts: v.Artifacts}
	switch v.Status {
	case verify.Success:
		e.Kind = trace.EventCasePassed
	case verify.Failed:
		e.Kind = trace.EventCaseFailed
		e.Reason = core.ErrorCode(v.Err)
	default:
		e.Kind = trace.EventCaseSkipped
		e.Reason = core.ErrorCode(v.Err)
	}
	trace.SafeRecord(r.Trace, e)
}
