package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"mjtest/internal/core"
	"mjtest/internal/toolchain"
	"mjtest/internal/verify"
)

// RenameCase is one entry of a rename cases file:
//
//	cases:
//	  - input: examples/ast/Fields.java.xml
//	    kind: var
//	    name: count
//	    line: 4
//	    new_name: total
//	    expected: examples/ast/Fields_renamed.java.xml.java
//
// Relative paths are resolved against the cases file's directory. Expect
// ("ok" or "error") overrides the expectation derived from the input name.
type RenameCase struct {
	Input    string               `yaml:"input"`
	Kind     toolchain.RenameKind `yaml:"kind"`
	Name     string               `yaml:"name"`
	Line     int                  `yaml:"line"`
	NewName  string               `yaml:"new_name"`
	Expected string               `yaml:"expected,omitempty"`
	Expect   string               `yaml:"expect,omitempty"`
}

// ID identifies the case in reports and traces.
func (c RenameCase) ID() string {
	return fmt.Sprintf("%s %s %s:%d->%s", filepath.Base(c.Input), c.Kind, c.Name, c.Line, c.NewName)
}

// Tag distinguishes the artifacts of cases that share an input file.
func (c RenameCase) Tag() string {
	return fmt.Sprintf("%s-%s-%d-%s", c.Kind, c.Name, c.Line, c.NewName)
}

// Request is the rename request handed to the compiler.
func (c RenameCase) Request() toolchain.RenameRequest {
	return toolchain.RenameRequest{Kind: c.Kind, Name: c.Name, Line: c.Line, NewName: c.NewName}
}

// Validate checks the fields the compiler needs.
func (c RenameCase) Validate() error {
	switch {
	case strings.TrimSpace(c.Input) == "":
		return fmt.Errorf("input is required")
	case !c.Kind.Valid():
		return fmt.Errorf("kind must be var or method, got %q", c.Kind)
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("name is required")
	case c.Line <= 0:
		return fmt.Errorf("line must be positive, got %d", c.Line)
	case strings.TrimSpace(c.NewName) == "":
		return fmt.Errorf("new_name is required")
	}
	if c.Expect != "" {
		if _, err := verify.ParseExpectation(c.Expect); err != nil {
			return err
		}
	}
	return nil
}

// RenameSuite is a parsed cases file.
type RenameSuite struct {
	Path  string       `yaml:"-"`
	Cases []RenameCase `yaml:"cases"`

	byID    map[string]RenameCase
	content map[string][]byte
}

// LoadRenameSuite reads and validates a cases file. Unknown keys are
// rejected, and every input must be readable.
func LoadRenameSuite(path string) (*RenameSuite, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cases: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	s := &RenameSuite{}
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("parse cases %s: %w", path, err)
	}
	s.Path = path
	s.byID = make(map[string]RenameCase, len(s.Cases))
	s.content = make(map[string][]byte, len(s.Cases))

	base := filepath.Dir(path)
	for i := range s.Cases {
		c := &s.Cases[i]
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("cases[%d]: %w", i, err)
		}
		c.Input = resolve(base, c.Input)
		if c.Expected != "" {
			c.Expected = resolve(base, c.Expected)
		}
		id := c.ID()
		if _, dup := s.byID[id]; dup {
			return nil, fmt.Errorf("cases[%d]: duplicate case %q", i, id)
		}
		content, err := os.ReadFile(c.Input)
		if err != nil {
			return nil, fmt.Errorf("cases[%d]: %w", i, err)
		}
		s.byID[id] = *c
		s.content[id] = content
	}
	return s, nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func (s *RenameSuite) inputs() []core.Input {
	out := make([]core.Input, 0, len(s.Cases))
	for _, c := range s.Cases {
		id := c.ID()
		out = append(out, core.Input{Name: id, Path: c.Input, Content: s.content[id]})
	}
	return out
}

// Hash is the SuiteHash of the cases, in file order.
func (s *RenameSuite) Hash() core.SuiteHash {
	return core.ComputeSuiteHash(string(RenameStage), &core.InputSet{Dir: filepath.Dir(s.Path), Inputs: s.inputs()})
}

// rename applies one rename, prints the result and compares it with the
// expected source when the case names one.
func (r *Runner) rename(ctx context.Context, c RenameCase, l Layout) verify.Verdict {
	id := c.ID()
	renamed := core.RenamedPath(l.OutputDir, c.Input, c.Tag())

	inv, err := r.Tool.Rename(ctx, c.Request(), c.Input, renamed)
	r.invoked(id, inv, err)

	var expect verify.Expectation
	if c.Expect != "" {
		expect, _ = verify.ParseExpectation(c.Expect)
	} else {
		expect = r.expectation(filepath.Base(c.Input))
	}

	present, _ := core.ArtifactExists(renamed)
	if !present || expect == verify.ExpectError {
		return r.results(verify.ByPresence(id, present, expect, renamed))
	}

	printed := renamed + ".java"
	inv, err = r.Tool.Print(ctx, renamed, printed)
	r.Reporter.Line("TEST RESULTS:")
	r.Reporter.Output(inv)
	if err != nil {
		r.Reporter.Diagnostic(fmt.Sprintf("tool error: %v", err))
	}

	var v verify.Verdict
	switch {
	case err != nil:
		v = verify.PrintFailure(id, printed, err, renamed)
	case c.Expected == "":
		v = verify.ByPresence(id, true, verify.ExpectOK, renamed)
	default:
		v = verify.CompareSource(id, printed, c.Expected)
		v.Artifacts = append([]string{renamed}, v.Artifacts...)
	}
	r.Reporter.Verdict(v)
	return v
}
