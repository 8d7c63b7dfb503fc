package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"mjtest/internal/core"
	"mjtest/internal/pipeline"
)

// Run is a high-level entrypoint suitable for black-box tests. It accepts
// the argument slice (excluding argv[0]) and returns the exit code plus any
// error.
func Run(ctx context.Context, stage pipeline.Stage, args []string, env Env) (CLIResult, error) {
	inv, err := ParseInvocation(stage, args)
	if err != nil {
		return CLIResult{ExitCode: ExitCode(err)}, err
	}
	return ExecuteWithEnv(ctx, inv, env)
}

// Main is the body of every mjtest-<stage> command and returns the process
// exit code. Missing positional arguments end the program silently.
func Main(ctx context.Context, stage pipeline.Stage, args []string, stdout, stderr io.Writer) int {
	res, err := Run(ctx, stage, args, Env{Stdout: stdout, Stderr: stderr})
	if err == nil {
		return res.ExitCode
	}
	switch {
	case errors.Is(err, core.ErrMissingArgs):
	case errors.Is(err, ErrHelp):
		fmt.Fprintln(stdout, err.Error())
	default:
		fmt.Fprintln(stderr, err)
	}
	return res.ExitCode
}
