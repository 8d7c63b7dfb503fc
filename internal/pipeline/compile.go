package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"mjtest/internal/core"
	"mjtest/internal/verify"
)

// compile generates IR, runs it, and compares its output with the output of
// the golden program of the same name in the expected directory.
//
//	<out>/<stem>.ll                             compiled program
//	<results>/<stem>.ll.out                     its output
//	<expected>/<stem>.ll                        golden program
//	<expected>/<base(results)>/<stem>.ll.out    golden output
func (r *Runner) compile(ctx context.Context, in core.Input, l Layout) verify.Verdict {
	irPath := core.IRPath(l.OutputDir, in.Name)

	inv, err := r.Tool.Compile(ctx, in.Path, irPath)
	r.invoked(in.Name, inv, err)

	present, serr := core.ArtifactExists(irPath)
	if serr != nil {
		present = false
	}
	if !present {
		return r.results(verify.ByPresence(in.Name, false, r.expectation(in.Name), irPath))
	}
	if r.Options.CheckIR {
		if v, ok := verify.CheckIR(in.Name, irPath); !ok {
			return r.results(v)
		}
	}

	irName := filepath.Base(irPath)
	outPath := core.OutputPath(l.ResultsDir, irName)
	r.Reporter.Line("Running on %s", irName)
	inv, err = r.Tool.Interpret(ctx, irPath, outPath)
	r.invoked(in.Name, inv, err)
	if err != nil {
		return r.results(interpretFailure(in.Name, outPath, err))
	}

	expectedDir := l.ExpectedDir
	if expectedDir == "" {
		expectedDir = DefaultExpectedDir
	}
	golden := core.IRPath(expectedDir, in.Name)
	if ok, _ := core.ArtifactExists(golden); !ok {
		return r.results(verify.Verdict{
			Case:      in.Name,
			Status:    verify.Skipped,
			Reason:    "no expected program: " + golden,
			Err:       core.MissingArtifact(in.Name, golden),
			Artifacts: []string{irPath, outPath},
		})
	}

	goldenResults := filepath.Join(expectedDir, filepath.Base(l.ResultsDir))
	if err := core.EnsureDir(goldenResults); err != nil {
		return r.results(interpretFailure(in.Name, goldenResults, err))
	}
	goldenOut := core.OutputPath(goldenResults, irName)
	inv, err = r.Tool.Interpret(ctx, golden, goldenOut)
	r.invoked(in.Name, inv, err)
	if err != nil {
		return r.results(interpretFailure(in.Name, goldenOut, err))
	}

	v := verify.CompareOutput(in.Name, outPath, goldenOut, r.Options.Normalizer)
	v.Artifacts = append([]string{irPath}, v.Artifacts...)
	return r.results(v)
}

func (r *Runner) results(v verify.Verdict) verify.Verdict {
	r.Reporter.Results(v)
	return v
}

// interpretFailure is the verdict when the interpreter could not run. The
// redirect target exists but is empty, so comparing it would be meaningless.
func interpretFailure(name, path string, err error) verify.Verdict {
	return verify.Verdict{
		Case:      name,
		Status:    verify.Failed,
		Reason:    fmt.Sprintf("interpreter error: %v", err),
		Err:       core.ToolFailure(name, err),
		Artifacts: []string{path},
	}
}
