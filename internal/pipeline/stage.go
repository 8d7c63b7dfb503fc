// Package pipeline runs one harness stage over a suite of input files.
//
// A stage is a fixed sequence of external tool invocations per file followed
// by verification of the artifacts those invocations left behind. Files are
// processed one at a time in discovery order; no file's outcome affects
// another's.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"mjtest/internal/core"
	"mjtest/internal/verify"
)

// Stage names a pipeline variant.
type Stage string

const (
	ParseStage    Stage = "parse"
	SemanticStage Stage = "semantic"
	CompileStage  Stage = "compile"
	RenameStage   Stage = "rename"
)

// Extension is the input file extension a stage discovers. Rename reads a
// cases file instead and has none.
func (s Stage) Extension() string {
	switch s {
	case ParseStage:
		return ".java"
	case SemanticStage, CompileStage:
		return ".xml"
	default:
		return ""
	}
}

// Positionals is how many positional arguments the stage needs.
func (s Stage) Positionals() int {
	if s == CompileStage {
		return 3
	}
	return 2
}

// Headline is the line announcing work on one file.
func (s Stage) Headline(file string) string {
	switch s {
	case ParseStage:
		return "Running lexical analysis and parsing on " + file
	case SemanticStage:
		return "Running semantic analysis on " + file
	case CompileStage:
		return "Generating LLVM from " + file
	case RenameStage:
		return "Renaming in " + file
	default:
		return string(s) + " " + file
	}
}

// DefaultExpectedDir is where the compile stage looks for golden programs.
const DefaultExpectedDir = "expected"

// Layout holds the directories a run reads and writes.
type Layout struct {
	// InputDir holds the suite. For the rename stage it is the cases file.
	InputDir  string
	OutputDir string

	// ResultsDir receives interpreter output (compile only).
	ResultsDir string

	// ExpectedDir holds golden .ll programs (compile only).
	ExpectedDir string
}

// ErrSetup marks failures that prevent a run from starting: an output
// directory that cannot be created or an input location that cannot be read.
var ErrSetup = errors.New("setup failed")

// Validate checks that layout has what stage needs.
func (l Layout) Validate(stage Stage) error {
	if strings.TrimSpace(l.InputDir) == "" {
		return fmt.Errorf("%w: input is required", ErrSetup)
	}
	if strings.TrimSpace(l.OutputDir) == "" {
		return fmt.Errorf("%w: output dir is required", ErrSetup)
	}
	if stage == CompileStage && strings.TrimSpace(l.ResultsDir) == "" {
		return fmt.Errorf("%w: results dir is required", ErrSetup)
	}
	return nil
}

// Options tune verification.
type Options struct {
	// CheckIR parses compiled programs before interpreting them.
	CheckIR bool

	// Normalizer is applied to interpreter output before comparison.
	Normalizer core.OutputNormalizer
}

// Result is what a run computed.
type Result struct {
	Stage     Stage
	SuiteHash core.SuiteHash
	Totals    verify.Totals
	Verdicts  []verify.Verdict
}
