package toolchain

import (
	"context"
	"fmt"
	"os"
	"time"

	"mjtest/internal/core"
)

// Defaults for the external tools, matching how the course scripts call them.
const (
	DefaultJava        = "java"
	DefaultJar         = "mjavac.jar"
	DefaultInterpreter = "lli"
)

// Process is the Invoker that spawns the real tools:
//
//	<Java> -jar <Jar> <subcommand...>
//	<Interpreter> <program.ll> > <stdoutPath>
type Process struct {
	Java        string
	Jar         string
	Interpreter string

	// Timeout bounds each process. Zero means wait forever.
	Timeout time.Duration

	Executor *core.Executor
}

// NewProcess creates a Process with defaults for empty fields.
func NewProcess(java, jar, interpreter string, workingDir string) *Process {
	if java == "" {
		java = DefaultJava
	}
	if jar == "" {
		jar = DefaultJar
	}
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	return &Process{
		Java:        java,
		Jar:         jar,
		Interpreter: interpreter,
		Executor:    core.NewExecutor(workingDir),
	}
}

func (p *Process) Marshal(ctx context.Context, src, dst string) (*Invocation, error) {
	return p.compiler(ctx, "parse", "marshal", src, dst)
}

func (p *Process) Print(ctx context.Context, src, dst string) (*Invocation, error) {
	return p.compiler(ctx, "unmarshal", "print", src, dst)
}

func (p *Process) Semantic(ctx context.Context, src, dst string) (*Invocation, error) {
	return p.compiler(ctx, "unmarshal", "semantic", src, dst)
}

func (p *Process) Compile(ctx context.Context, src, dst string) (*Invocation, error) {
	return p.compiler(ctx, "unmarshal", "compile", src, dst)
}

func (p *Process) Rename(ctx context.Context, req RenameRequest, src, dst string) (*Invocation, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("unknown rename kind %q", req.Kind)
	}
	args := append([]string{"unmarshal", "rename"}, req.Args()...)
	args = append(args, src, dst)
	return p.compiler(ctx, args...)
}

// Interpret creates stdoutPath before starting the interpreter, so a program
// that prints nothing still leaves an empty output file behind, as a shell
// redirection would.
func (p *Process) Interpret(ctx context.Context, program, stdoutPath string) (*Invocation, error) {
	inv := &Invocation{Command: []string{p.Interpreter, program}}

	f, err := os.Create(stdoutPath)
	if err != nil {
		return inv, fmt.Errorf("create %s: %w", stdoutPath, err)
	}
	defer f.Close()

	return p.run(ctx, inv, f)
}

func (p *Process) compiler(ctx context.Context, args ...string) (*Invocation, error) {
	inv := &Invocation{Command: append([]string{p.Java, "-jar", p.Jar}, args...)}
	return p.run(ctx, inv, nil)
}

func (p *Process) run(ctx context.Context, inv *Invocation, stdout *os.File) (*Invocation, error) {
	if p.Executor == nil {
		return inv, fmt.Errorf("process invoker has no executor")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := core.Command{Args: inv.Command}
	if stdout != nil {
		cmd.Stdout = stdout
	}
	res, err := p.Executor.Execute(ctx, cmd)
	if err != nil {
		return inv, err
	}
	inv.Stdout = res.Stdout
	inv.Stderr = res.Stderr
	inv.ExitCode = res.ExitCode
	return inv, nil
}
