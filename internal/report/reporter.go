// Package report prints the human-readable run log.
//
// The layout is fixed: one block per input file, each opened by a separator
// and a headline, followed by the tool command, whatever the tool printed and
// the verdict, and a closing summary with the pass/fail counts.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"mjtest/internal/core"
	"mjtest/internal/toolchain"
	"mjtest/internal/verify"
)

const (
	caseSeparator    = "=================="
	summarySeparator = "========================"
	resultsDivider   = "-------------"
)

// Options tune what the reporter prints beyond the fixed layout.
type Options struct {
	// Verbose adds artifact sizes under each verdict and the source of each
	// expectation.
	Verbose bool

	// NoDiff suppresses the diff block of content mismatches.
	NoDiff bool
}

// Reporter writes the run log. Write errors are ignored: the log is
// best-effort and never changes a verdict.
type Reporter struct {
	w    io.Writer
	opts Options
}

// New creates a Reporter writing to w.
func New(w io.Writer, opts Options) *Reporter {
	if w == nil {
		w = io.Discard
	}
	return &Reporter{w: w, opts: opts}
}

// Begin opens the block for one input file.
func (r *Reporter) Begin(headline string) {
	r.println(caseSeparator)
	r.println(headline)
}

// Command prints the exact command line and opens the OUTPUT section,
// followed by whatever the tool printed.
func (r *Reporter) Command(inv *toolchain.Invocation) {
	if inv == nil {
		return
	}
	r.printf("command: %s\n", inv)
	r.println("OUTPUT:")
	r.Output(inv)
}

// Output echoes captured tool output without a command line.
func (r *Reporter) Output(inv *toolchain.Invocation) {
	if out := inv.Output(); len(out) > 0 {
		_, _ = r.w.Write(out)
		if out[len(out)-1] != '\n' {
			r.println("")
		}
	}
}

// Line prints a free-form progress line.
func (r *Reporter) Line(format string, args ...any) {
	r.printf(format+"\n", args...)
}

// Diagnostic prints a message that is not a verdict.
func (r *Reporter) Diagnostic(msg string) {
	r.println(msg)
}

// Divider prints the thin rule some stages put before their results.
func (r *Reporter) Divider() {
	r.println(resultsDivider)
}

// Results prints the verdict section for one file.
func (r *Reporter) Results(v verify.Verdict) {
	r.println("TEST RESULTS:")
	r.Verdict(v)
}

// Verdict prints a verdict line with its diff and, in verbose mode, the
// artifacts it was derived from.
func (r *Reporter) Verdict(v verify.Verdict) {
	r.println(v.String())
	if v.Diff != "" && !r.opts.NoDiff {
		r.printf("%s", v.Diff)
		if !strings.HasSuffix(v.Diff, "\n") {
			r.println("")
		}
	}
	if r.opts.Verbose {
		for _, a := range v.Artifacts {
			r.printf("  %s\n", ArtifactLine(a))
		}
	}
}

// Expectation notes, in verbose mode, what a case was expected to do and
// whether a manifest or the file name decided it.
func (r *Reporter) Expectation(e verify.Expectation, src verify.Source) {
	if r.opts.Verbose {
		r.printf("  expect: %s (%s)\n", e, src)
	}
}

// Summary prints the closing tally.
func (r *Reporter) Summary(t verify.Totals) {
	r.println(summarySeparator)
	r.printf("Passed: %d Failed: %d\n", t.Passed, t.Failed)
}

// ArtifactLine describes one artifact for verbose output.
func ArtifactLine(path string) string {
	size := core.ArtifactSize(path)
	if size < 0 {
		return path + " (missing)"
	}
	return fmt.Sprintf("%s (%s)", path, humanize.Bytes(uint64(size)))
}

func (r *Reporter) println(s string) {
	_, _ = fmt.Fprintln(r.w, s)
}

func (r *Reporter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}
