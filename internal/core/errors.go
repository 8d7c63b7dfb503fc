package core

import (
	"errors"
	"fmt"
)

// Error kinds. None of them aborts a run: a case error is counted and
// reported, and the harness moves on to the next file.
var (
	// ErrMissingArgs: too few positional arguments; the harness exits silently.
	ErrMissingArgs = errors.New("missing arguments")

	// ErrMissingArtifact: a file the tool should have written does not exist.
	ErrMissingArtifact = errors.New("missing artifact")

	// ErrContentMismatch: an artifact exists but disagrees with the expectation.
	ErrContentMismatch = errors.New("content mismatch")

	// ErrExternalTool: a process could not be started or was cancelled.
	// A non-zero exit code alone is never classified as this.
	ErrExternalTool = errors.New("external tool failure")
)

// CaseError ties one error kind to one input file.
type CaseError struct {
	Kind error
	Case string
	Msg  string
}

func (e *CaseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Case, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Case, e.Kind, e.Msg)
}

func (e *CaseError) Unwrap() error { return e.Kind }

// MissingArtifact builds a CaseError of kind ErrMissingArtifact.
func MissingArtifact(caseName, path string) error {
	return &CaseError{Kind: ErrMissingArtifact, Case: caseName, Msg: path}
}

// ContentMismatchf builds a CaseError of kind ErrContentMismatch.
func ContentMismatchf(caseName, format string, args ...any) error {
	return &CaseError{Kind: ErrContentMismatch, Case: caseName, Msg: fmt.Sprintf(format, args...)}
}

// ToolFailure builds a CaseError of kind ErrExternalTool wrapping cause.
func ToolFailure(caseName string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &CaseError{Kind: ErrExternalTool, Case: caseName, Msg: msg}
}

// ErrorCode returns a stable name for err's kind, used in traces and
// run records.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingArgs):
		return "MissingArgs"
	case errors.Is(err, ErrMissingArtifact):
		return "MissingArtifact"
	case errors.Is(err, ErrContentMismatch):
		return "ContentMismatch"
	case errors.Is(err, ErrExternalTool):
		return "ExternalToolFailure"
	default:
		return "UnknownError"
	}
}
