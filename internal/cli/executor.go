package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"mjtest/internal/core"
	"mjtest/internal/history"
	"mjtest/internal/pipeline"
	"mjtest/internal/report"
	"mjtest/internal/toolchain"
	"mjtest/internal/trace"
	"mjtest/internal/verify"
)

// Env is what a run talks to besides the file system.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer

	// Tool replaces the process invoker built from the invocation.
	Tool toolchain.Invoker
}

type CLIResult struct {
	ExitCode int
	Run      pipeline.Result

	// RunID is set when the run was recorded in history.
	RunID string
}

// Execute runs inv against the real external tools.
func Execute(ctx context.Context, inv Invocation) (CLIResult, error) {
	return ExecuteWithEnv(ctx, inv, Env{Stdout: os.Stdout, Stderr: os.Stderr})
}

// ExecuteWithEnv maps a canonical Invocation to a pipeline run.
//
// Responsibilities:
//   - Load the expectation manifest and build the tool invoker.
//   - Run the stage and print the report to Stdout.
//   - Write the trace and history records when requested, even after a
//     failure or panic.
//   - Translate the outcome to an exit code. Failed cases do not change it.
func ExecuteWithEnv(ctx context.Context, inv Invocation, env Env) (res CLIResult, execErr error) {
	res.ExitCode = ExitInternalError
	if env.Stdout == nil {
		env.Stdout = io.Discard
	}
	if env.Stderr == nil {
		env.Stderr = io.Discard
	}
	start := time.Now().UTC()

	var hist *history.Recorder
	if inv.History {
		if st, err := history.NewStore(inv.Layout.OutputDir); err == nil {
			hist = &history.Recorder{Store: st}
		}
	}
	fail := func(suite core.SuiteHash, err error) {
		if hist == nil {
			return
		}
		if suite == "" {
			suite = core.ComputeSuiteHash(string(inv.Stage), nil)
		}
		run, serr := hist.StartRun(history.Run{
			Stage:     string(inv.Stage),
			SuiteHash: suite.String(),
			InputDir:  inv.Layout.InputDir,
			StartTime: start,
		})
		if serr != nil {
			fmt.Fprintf(env.Stderr, "history: %v\n", serr)
			return
		}
		res.RunID = run.RunID
		if _, serr := hist.RecordFailure(run, err); serr != nil {
			fmt.Fprintf(env.Stderr, "history: %v\n", serr)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			res.ExitCode = ExitInternalError
			execErr = fmt.Errorf("panic: %v", r)
			fail(res.Run.SuiteHash, &history.SystemFailureError{Code: "Panic", Message: execErr.Error(), Cause: execErr})
		}
	}()

	expectations := verify.Expectations{}
	if inv.Manifest != "" {
		m, err := verify.LoadManifest(inv.Manifest)
		if err != nil {
			fail("", &history.ConfigFailureError{Code: "ManifestInvalid", Message: err.Error(), Cause: err})
			res.ExitCode = ExitInvalidInvocation
			return res, err
		}
		expectations.Manifest = m
	}
	normalizer, err := core.NormalizerByName(inv.Normalizer)
	if err != nil {
		fail("", &history.ConfigFailureError{Code: "NormalizerInvalid", Message: err.Error(), Cause: err})
		res.ExitCode = ExitInvalidInvocation
		return res, err
	}
	if inv.TracePath != "" {
		if err := os.MkdirAll(filepath.Dir(inv.TracePath), 0o755); err != nil {
			fail("", &history.SystemFailureError{Code: "TraceInit", Message: err.Error(), Cause: err})
			return res, fmt.Errorf("trace: %w", err)
		}
	}

	tool := env.Tool
	if tool == nil {
		p := toolchain.NewProcess(inv.Java, inv.Jar, inv.Interpreter, "")
		p.Timeout = inv.Timeout
		tool = p
	}

	recorder := trace.NewRecorder()
	runner := &pipeline.Runner{
		Tool:         tool,
		Reporter:     report.New(env.Stdout, report.Options{Verbose: inv.Verbose, NoDiff: inv.NoDiff}),
		Expectations: expectations,
		Trace:        recorder,
		Options: pipeline.Options{
			CheckIR:    inv.CheckIR,
			Normalizer: normalizer,
		},
	}

	result, runErr := runner.Run(ctx, inv.Stage, inv.Layout)
	res.Run = result
	if runErr != nil {
		switch {
		case errors.Is(runErr, pipeline.ErrSetup):
			fail(result.SuiteHash, &history.WorkspaceFailureError{Code: "SetupFailed", Message: runErr.Error(), Cause: runErr})
		case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
			fail(result.SuiteHash, &history.SystemFailureError{Code: "Interrupted", Message: runErr.Error(), Cause: runErr})
		default:
			fail(result.SuiteHash, runErr)
		}
		res.ExitCode = ExitInternalError
		return res, runErr
	}

	if inv.TracePath != "" {
		if err := trace.WriteFile(inv.TracePath, recorder.Trace(result.SuiteHash.String())); err != nil {
			fail(result.SuiteHash, &history.SystemFailureError{Code: "TraceWrite", Message: err.Error(), Cause: err})
			return res, err
		}
	}

	if hist != nil {
		run, err := hist.StartRun(history.Run{
			Stage:     string(inv.Stage),
			SuiteHash: result.SuiteHash.String(),
			InputDir:  inv.Layout.InputDir,
			StartTime: start,
		})
		if err == nil {
			res.RunID = run.RunID
			_, err = hist.FinishRun(run, caseRecords(result.Verdicts))
		}
		if err != nil {
			fmt.Fprintf(env.Stderr, "history: %v\n", err)
		}
	}

	res.ExitCode = ExitSuccess
	return res, nil
}

func caseRecords(verdicts []verify.Verdict) []history.CaseRecord {
	out := make([]history.CaseRecord, 0, len(verdicts))
	for _, v := range verdicts {
		artifacts := append([]string{}, v.Artifacts...)
		out = append(out, history.CaseRecord{
			Case:      v.Case,
			Status:    v.Status.String(),
			Reason:    v.Reason,
			ErrorCode: core.ErrorCode(v.Err),
			Artifacts: artifacts,
		})
	}
	return out
}
