// Package toolchain wraps the external compiler and IR interpreter behind an
// interface with one method per subcommand.
//
// The harness talks to the tools only through files: every method names the
// artifact the tool is asked to write, and callers check for that artifact
// afterwards instead of inspecting the exit status.
package toolchain

import (
	"context"
	"strconv"
	"strings"
)

// RenameKind selects what a rename request targets.
type RenameKind string

const (
	RenameVar    RenameKind = "var"
	RenameMethod RenameKind = "method"
)

// Valid reports whether k is a kind the compiler accepts.
func (k RenameKind) Valid() bool {
	return k == RenameVar || k == RenameMethod
}

// RenameRequest identifies one symbol occurrence to rename.
type RenameRequest struct {
	Kind    RenameKind
	Name    string
	Line    int
	NewName string
}

// Args renders the request in the order the compiler expects.
func (r RenameRequest) Args() []string {
	return []string{string(r.Kind), r.Name, strconv.Itoa(r.Line), r.NewName}
}

// Invocation is the record of one external process run.
type Invocation struct {
	// Command is the exact argv that was executed.
	Command []string

	// Stdout and Stderr are what the process printed. Stdout is empty when it
	// was redirected into a file.
	Stdout []byte
	Stderr []byte

	// ExitCode is informational; nothing gates on it.
	ExitCode int
}

// String renders the command line the way a user would type it.
func (inv *Invocation) String() string {
	if inv == nil {
		return ""
	}
	return strings.Join(inv.Command, " ")
}

// Output returns stdout followed by stderr.
func (inv *Invocation) Output() []byte {
	if inv == nil {
		return nil
	}
	out := make([]byte, 0, len(inv.Stdout)+len(inv.Stderr))
	out = append(out, inv.Stdout...)
	return append(out, inv.Stderr...)
}

// Invoker drives the external compiler and interpreter.
//
// Each method returns the Invocation it ran. The Invocation is non-nil
// whenever the command line could be built, even when err is non-nil, so the
// caller can still report what was attempted. err is reserved for
// infrastructure failures (the process could not be started or was
// cancelled); a tool that ran and failed reports through its artifacts.
type Invoker interface {
	// Marshal runs `parse marshal <src> <dst>`.
	Marshal(ctx context.Context, src, dst string) (*Invocation, error)

	// Print runs `unmarshal print <src> <dst>`.
	Print(ctx context.Context, src, dst string) (*Invocation, error)

	// Semantic runs `unmarshal semantic <src> <dst>`.
	Semantic(ctx context.Context, src, dst string) (*Invocation, error)

	// Compile runs `unmarshal compile <src> <dst>`.
	Compile(ctx context.Context, src, dst string) (*Invocation, error)

	// Rename runs `unmarshal rename <kind> <name> <line> <new-name> <src> <dst>`.
	Rename(ctx context.Context, req RenameRequest, src, dst string) (*Invocation, error)

	// Interpret runs the IR interpreter on program and writes its standard
	// output verbatim to stdoutPath.
	Interpret(ctx context.Context, program, stdoutPath string) (*Invocation, error)
}
