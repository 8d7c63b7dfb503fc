// Package verify turns artifacts on disk into per-file verdicts.
//
// A verdict is derived from two things only: what the external tool left in
// the output directory, and what the input file's name says should have
// happened. Nothing here inspects exit codes.
package verify

import (
	"fmt"
	"strings"
)

// Expectation is what a test case author expects the tool to do.
type Expectation int

const (
	// ExpectOK: the input is valid and every stage should succeed.
	ExpectOK Expectation = iota
	// ExpectError: the input is deliberately broken.
	ExpectError
)

func (e Expectation) String() string {
	if e == ExpectError {
		return "ERROR"
	}
	return "OK"
}

// ParseExpectation reads the manifest spelling of an expectation.
func ParseExpectation(s string) (Expectation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ok", "pass", "valid":
		return ExpectOK, nil
	case "error", "fail", "invalid":
		return ExpectError, nil
	default:
		return ExpectOK, fmt.Errorf("unknown expectation %q (expected ok|error)", s)
	}
}

// Source records where an expectation came from.
type Source string

const (
	SourceHeuristic Source = "heuristic"
	SourceManifest  Source = "manifest"
)

// failureMarkers are the case-insensitive file name fragments that mark an
// input as expected to fail.
var failureMarkers = []string{"invalid", "error", "bad"}

// ExpectationFor applies the file name convention: a name containing
// "invalid", "error" or "bad" (any case) expects an error, anything else
// expects success.
func ExpectationFor(name string) Expectation {
	lower := strings.ToLower(name)
	for _, m := range failureMarkers {
		if strings.Contains(lower, m) {
			return ExpectError
		}
	}
	return ExpectOK
}

// Expectations resolves the expectation of a file, consulting an optional
// manifest before falling back to the file name convention.
type Expectations struct {
	Manifest *Manifest
}

// For returns the expectation for name and where it came from.
func (x Expectations) For(name string) (Expectation, Source) {
	if x.Manifest != nil {
		if e, ok := x.Manifest.Lookup(name); ok {
			return e, SourceManifest
		}
	}
	return ExpectationFor(name), SourceHeuristic
}
