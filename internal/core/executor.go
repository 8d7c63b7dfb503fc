package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"syscall"
	"time"
)

// Command describes one external process invocation.
type Command struct {
	// Args is the full argv; Args[0] is looked up on PATH.
	Args []string

	// Dir is the working directory. Empty means the Executor's WorkingDir.
	Dir string

	// Env is the process environment. Nil inherits the host environment,
	// which the JVM needs to locate itself.
	Env []string

	// Stdout, when set, receives standard output verbatim instead of the
	// in-memory capture. Used to redirect interpreter output into a file.
	Stdout io.Writer
}

// ExecutionResult contains the observable outcome of one process.
type ExecutionResult struct {
	// Args is the argv that was executed.
	Args []string

	// Stdout is the captured standard output. Empty when Command.Stdout
	// redirected it elsewhere.
	Stdout []byte

	// Stderr is the captured standard error.
	Stderr []byte

	// ExitCode is the process exit code.
	// The harness never gates on it; it is kept for the report only.
	ExitCode int

	// Duration is the wall time between start and exit.
	Duration time.Duration
}

// Executor runs external processes on behalf of the pipelines.
//
// A non-zero exit code is a result, not an error. Execute only fails when the
// process could not be started or when ctx ended before it exited, in which
// case the entire process group is killed.
type Executor struct {
	// WorkingDir is the directory commands run in unless they set Dir.
	WorkingDir string
}

// NewExecutor creates a new Executor with the given working directory.
func NewExecutor(workingDir string) *Executor {
	return &Executor{WorkingDir: workingDir}
}

// Execute runs cmd and blocks until it exits or ctx is done.
func (e *Executor) Execute(ctx context.Context, cmd Command) (*ExecutionResult, error) {
	if len(cmd.Args) == 0 || cmd.Args[0] == "" {
		return nil, errors.New("command is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := exec.Command(cmd.Args[0], cmd.Args[1:]...)
	c.Dir = cmd.Dir
	if c.Dir == "" {
		c.Dir = e.WorkingDir
	}
	c.Env = cmd.Env

	// Own process group so cancellation reaches children (the JVM forks).
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	if cmd.Stdout != nil {
		c.Stdout = cmd.Stdout
	} else {
		c.Stdout = &stdout
	}
	c.Stderr = &stderr

	start := time.Now()
	if err := c.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", cmd.Args[0], err)
	}

	done := make(chan error, 1)
	go func() {
		done <- c.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		if c.Process != nil {
			_ = syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return nil, fmt.Errorf("execution cancelled: %w", ctx.Err())
	case err = <-done:
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to execute %s: %w", cmd.Args[0], err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &ExecutionResult{
		Args:     append([]string(nil), cmd.Args...),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
		Duration: time.Since(start),
	}, nil
}
