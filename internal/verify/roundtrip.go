package verify

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"mjtest/internal/core"
	"mjtest/internal/toolchain"
)

// RoundTripCase names the files taking part in one round-trip check.
type RoundTripCase struct {
	// Name is the input file name as discovered.
	Name string
	// Source is the original source file.
	Source string
	// Marshaled is the artifact the parse step should have written.
	Marshaled string
	// Printed is where re-emitted source is written.
	Printed string
	Expect  Expectation
}

// RoundTrip verifies a parse result.
//
// A missing marshaled artifact is a parse failure, which is a success exactly
// when the case expects an error. Otherwise the artifact is printed back to
// source and compared byte for byte with the original, whatever the case
// expects.
//
// The returned invocation is the print call, or nil when none was made.
func RoundTrip(ctx context.Context, tool toolchain.Invoker, c RoundTripCase) (Verdict, *toolchain.Invocation) {
	ok, err := core.ArtifactExists(c.Marshaled)
	if err != nil {
		return failed(c.Name, err.Error(), core.ToolFailure(c.Name, err), c.Marshaled), nil
	}
	if !ok {
		return ByPresence(c.Name, false, c.Expect, c.Marshaled), nil
	}

	inv, ierr := tool.Print(ctx, c.Marshaled, c.Printed)
	if ierr != nil {
		return PrintFailure(c.Name, c.Printed, ierr, c.Marshaled), inv
	}
	v := CompareSource(c.Name, c.Printed, c.Source)
	v.Artifacts = append([]string{c.Marshaled}, v.Artifacts...)
	return v, inv
}

// PrintFailure is the verdict when the print step could not run. Whatever
// sits at printed is left over from an earlier run and proves nothing.
func PrintFailure(name, printed string, err error, artifacts ...string) Verdict {
	return failed(name, fmt.Sprintf("print error: %v", err), core.ToolFailure(name, err), append(artifacts, printed)...)
}

// ByPresence is the verdict for a step whose only evidence is whether its
// artifact exists. An absent artifact means the tool rejected the input.
func ByPresence(name string, present bool, expect Expectation, artifact string) Verdict {
	got := ExpectOK
	if !present {
		got = ExpectError
	}
	if got == expect {
		return succeeded(name, artifact)
	}
	var err error
	if present {
		err = core.ContentMismatchf(name, "artifact %s exists", artifact)
	} else {
		err = core.MissingArtifact(name, artifact)
	}
	return failed(name, mismatchReason(expect, got), err, artifact)
}

// CompareSource compares printed against original byte for byte.
func CompareSource(name, printed, original string) Verdict {
	got, err := os.ReadFile(printed)
	if err != nil {
		if os.IsNotExist(err) {
			return failed(name, "no printed source: "+printed, core.MissingArtifact(name, printed), printed)
		}
		return failed(name, err.Error(), core.ToolFailure(name, err), printed)
	}
	want, err := os.ReadFile(original)
	if err != nil {
		return failed(name, err.Error(), core.ToolFailure(name, err), printed)
	}
	if bytes.Equal(got, want) {
		return succeeded(name, printed)
	}
	v := failed(name,
		fmt.Sprintf("code not equal: %s  %s", printed, original),
		core.ContentMismatchf(name, "%s differs from %s", printed, original),
		printed)
	v.Diff = UnifiedDiff(original, printed, want, got)
	return v
}

func mismatchReason(expected, got Expectation) string {
	return fmt.Sprintf("expected: %s, got: %s", expected, got)
}
