// Package tooltest provides an in-process toolchain.Invoker for tests.
//
// The fake never spawns a process. Each subcommand is backed by an optional
// hook that writes (or deliberately does not write) the artifact, which is
// all the verifier ever looks at.
package tooltest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"mjtest/internal/toolchain"
)

// FileFunc produces dst from src. Returning an error simulates a tool that
// could not be started.
type FileFunc func(src, dst string) error

// Call records one invocation made through the fake.
type Call struct {
	Subcommand string
	Command    []string
}

// Fake implements toolchain.Invoker. A nil hook runs successfully and writes
// nothing.
type Fake struct {
	MarshalFn   FileFunc
	PrintFn     FileFunc
	SemanticFn  FileFunc
	CompileFn   FileFunc
	RenameFn    func(req toolchain.RenameRequest, src, dst string) error
	InterpretFn func(program string) ([]byte, error)

	// Stdout is attached to every compiler invocation, to exercise reporting.
	Stdout []byte

	mu    sync.Mutex
	calls []Call
}

var _ toolchain.Invoker = (*Fake)(nil)

// Calls returns a copy of the recorded calls in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded calls for one subcommand.
func (f *Fake) CallsTo(sub string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Subcommand == sub {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) record(sub string, argv []string) *toolchain.Invocation {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Subcommand: sub, Command: argv})
	f.mu.Unlock()
	return &toolchain.Invocation{Command: argv, Stdout: append([]byte(nil), f.Stdout...)}
}

func compilerArgv(args ...string) []string {
	return append([]string{toolchain.DefaultJava, "-jar", toolchain.DefaultJar}, args...)
}

func (f *Fake) file(sub string, hook FileFunc, argv []string, src, dst string) (*toolchain.Invocation, error) {
	inv := f.record(sub, argv)
	if hook == nil {
		return inv, nil
	}
	if err := hook(src, dst); err != nil {
		return inv, err
	}
	return inv, nil
}

func (f *Fake) Marshal(_ context.Context, src, dst string) (*toolchain.Invocation, error) {
	return f.file("marshal", f.MarshalFn, compilerArgv("parse", "marshal", src, dst), src, dst)
}

func (f *Fake) Print(_ context.Context, src, dst string) (*toolchain.Invocation, error) {
	return f.file("print", f.PrintFn, compilerArgv("unmarshal", "print", src, dst), src, dst)
}

func (f *Fake) Semantic(_ context.Context, src, dst string) (*toolchain.Invocation, error) {
	return f.file("semantic", f.SemanticFn, compilerArgv("unmarshal", "semantic", src, dst), src, dst)
}

func (f *Fake) Compile(_ context.Context, src, dst string) (*toolchain.Invocation, error) {
	return f.file("compile", f.CompileFn, compilerArgv("unmarshal", "compile", src, dst), src, dst)
}

func (f *Fake) Rename(_ context.Context, req toolchain.RenameRequest, src, dst string) (*toolchain.Invocation, error) {
	argv := compilerArgv(append(append([]string{"unmarshal", "rename"}, req.Args()...), src, dst)...)
	inv := f.record("rename", argv)
	if f.RenameFn == nil {
		return inv, nil
	}
	return inv, f.RenameFn(req, src, dst)
}

// Interpret writes whatever InterpretFn returns into stdoutPath. Like a shell
// redirection, the output file exists even when the program printed nothing.
func (f *Fake) Interpret(_ context.Context, program, stdoutPath string) (*toolchain.Invocation, error) {
	inv := &toolchain.Invocation{Command: []string{toolchain.DefaultInterpreter, program}}
	f.mu.Lock()
	f.calls = append(f.calls, Call{Subcommand: "interpret", Command: inv.Command})
	f.mu.Unlock()

	var out []byte
	if f.InterpretFn != nil {
		b, err := f.InterpretFn(program)
		if err != nil {
			return inv, err
		}
		out = b
	}
	return inv, os.WriteFile(stdoutPath, out, 0o644)
}

// Copy is a FileFunc that copies src to dst unchanged: a lossless
// marshal/print pair.
func Copy(src, dst string) error {
	b, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, b, 0o644)
}

// Write returns a FileFunc that writes content to dst whatever src is.
func Write(content string) FileFunc {
	return func(_, dst string) error {
		return os.WriteFile(dst, []byte(content), 0o644)
	}
}

// ByName returns a FileFunc that writes contents[base(src)] to dst, and
// writes nothing for sources it does not list.
func ByName(contents map[string]string) FileFunc {
	return func(src, dst string) error {
		c, ok := contents[filepath.Base(src)]
		if !ok {
			return nil
		}
		return os.WriteFile(dst, []byte(c), 0o644)
	}
}

// Reject wraps next so that sources whose base name is listed produce no
// artifact, the way the real parser behaves on a syntax error.
func Reject(next FileFunc, names ...string) FileFunc {
	rejected := make(map[string]bool, len(names))
	for _, n := range names {
		rejected[n] = true
	}
	return func(src, dst string) error {
		if rejected[filepath.Base(src)] {
			return nil
		}
		return next(src, dst)
	}
}

// Fail is a FileFunc simulating a tool that cannot be started.
func Fail(_, _ string) error {
	return fmt.Errorf("exec: %q: executable file not found in $PATH", toolchain.DefaultJava)
}
