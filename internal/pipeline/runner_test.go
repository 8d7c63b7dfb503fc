package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjtest/internal/report"
	"mjtest/internal/toolchain/tooltest"
	"mjtest/internal/trace"
	"mjtest/internal/verify"
)

type fixture struct {
	in, out string
	log     bytes.Buffer
	rec     *trace.Recorder
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{in: filepath.Join(root, "in"), out: filepath.Join(root, "out"), rec: trace.NewRecorder()}
	require.NoError(t, os.MkdirAll(f.in, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(f.in, name), []byte(content), 0o644))
	}
	return f
}

func (f *fixture) runner(tool *tooltest.Fake) *Runner {
	return &Runner{
		Tool:     tool,
		Reporter: report.New(&f.log, report.Options{}),
		Trace:    f.rec,
	}
}

func (f *fixture) layout() Layout {
	return Layout{InputDir: f.in, OutputDir: f.out}
}

func TestParse_EndToEnd(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Good1.java":    "class Good1 {}\n",
		"Invalid1.java": "class {",
		"notes.txt":     "ignored",
	})
	tool := &tooltest.Fake{
		MarshalFn: tooltest.Reject(tooltest.Copy, "Invalid1.java"),
		PrintFn:   tooltest.Copy,
	}

	res, err := f.runner(tool).Run(context.Background(), ParseStage, f.layout())
	require.NoError(t, err)

	assert.Equal(t, verify.Totals{Passed: 2, Failed: 0}, res.Totals)
	assert.True(t, strings.HasSuffix(f.log.String(), "========================\nPassed: 2 Failed: 0\n"), f.log.String())
	assert.Contains(t, f.log.String(), "Running lexical analysis and parsing on Good1.java\n")
	assert.Contains(t, f.log.String(), "command: java -jar mjavac.jar parse marshal "+f.in+"/Good1.java "+f.out+"/Good1.java.xml\n")
	assert.NotEmpty(t, res.SuiteHash)
}

func TestParse_OneInvocationPerStep(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Good1.java":    "class Good1 {}\n",
		"Invalid1.java": "class {",
	})
	tool := &tooltest.Fake{
		MarshalFn: tooltest.Reject(tooltest.Copy, "Invalid1.java"),
		PrintFn:   tooltest.Copy,
	}

	_, err := f.runner(tool).Run(context.Background(), ParseStage, f.layout())
	require.NoError(t, err)

	marshals := tool.CallsTo("marshal")
	require.Len(t, marshals, 2)
	assert.Equal(t, []string{"java", "-jar", "mjavac.jar", "parse", "marshal", f.in + "/Good1.java", f.out + "/Good1.java.xml"}, marshals[0].Command)
	assert.Equal(t, []string{"java", "-jar", "mjavac.jar", "parse", "marshal", f.in + "/Invalid1.java", f.out + "/Invalid1.java.xml"}, marshals[1].Command)

	prints := tool.CallsTo("print")
	require.Len(t, prints, 1)
	assert.Equal(t, []string{"java", "-jar", "mjavac.jar", "unmarshal", "print", f.out + "/Good1.java.xml", f.out + "/Good1.java.xml.java"}, prints[0].Command)
}

func TestParse_CodeNotEqual(t *testing.T) {
	f := newFixture(t, map[string]string{"Good1.java": "class Good1 {}\n"})
	tool := &tooltest.Fake{
		MarshalFn: tooltest.Copy,
		PrintFn:   tooltest.Write("class Good1 { }\n"),
	}

	res, err := f.runner(tool).Run(context.Background(), ParseStage, f.layout())
	require.NoError(t, err)

	assert.Equal(t, verify.Totals{Failed: 1}, res.Totals)
	assert.Contains(t, f.log.String(), "FAILED: code not equal: "+f.out+"/Good1.java.xml.java  "+f.in+"/Good1.java\n")
}

func TestParse_RerunIsIdempotent(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Good1.java":    "class Good1 {}\n",
		"Invalid1.java": "class {",
		"Good2.java":    "class Good2 {}\n",
	})
	tool := &tooltest.Fake{
		MarshalFn: tooltest.Reject(tooltest.Copy, "Invalid1.java"),
		PrintFn:   tooltest.ByName(map[string]string{"Good1.java.xml": "class Good1 {}\n"}),
	}
	r := f.runner(tool)

	first, err := r.Run(context.Background(), ParseStage, f.layout())
	require.NoError(t, err)
	firstTrace := f.rec.Trace(first.SuiteHash.String())

	f.rec = trace.NewRecorder()
	r.Trace = f.rec
	second, err := r.Run(context.Background(), ParseStage, f.layout())
	require.NoError(t, err)
	secondTrace := f.rec.Trace(second.SuiteHash.String())

	assert.Equal(t, first.Totals, second.Totals)
	assert.Equal(t, first.Verdicts, second.Verdicts)
	assert.Equal(t, first.SuiteHash, second.SuiteHash)

	h1, err := firstTrace.Hash()
	require.NoError(t, err)
	h2, err := secondTrace.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestParse_ToolCannotStart(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Good1.java":    "class Good1 {}\n",
		"Invalid1.java": "class {",
	})
	tool := &tooltest.Fake{MarshalFn: tooltest.Fail}

	res, err := f.runner(tool).Run(context.Background(), ParseStage, f.layout())
	require.NoError(t, err)

	assert.Equal(t, verify.Totals{Passed: 1, Failed: 1}, res.Totals)
	assert.Contains(t, f.log.String(), "tool error: ")
	assert.Contains(t, f.log.String(), "FAILED: expected: OK, got: ERROR\n")

	counts := f.rec.Trace(res.SuiteHash.String()).Counts()
	assert.Equal(t, 2, counts[trace.EventToolError])
	assert.Equal(t, 1, counts[trace.EventArtifactMissing])
}

func TestSemantic_EndToEnd(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Ok1.xml":       "<ast/>",
		"ErrorCase.xml": "<ast/>",
	})
	tool := &tooltest.Fake{SemanticFn: tooltest.Write("OK")}

	res, err := f.runner(tool).Run(context.Background(), SemanticStage, f.layout())
	require.NoError(t, err)

	assert.Equal(t, verify.Totals{Passed: 1, Failed: 1}, res.Totals)
	assert.True(t, strings.HasSuffix(f.log.String(), "Passed: 1 Failed: 1\n"))
	assert.Contains(t, f.log.String(), "FAILED: expected: ERROR, got: OK\n")

	calls := tool.CallsTo("semantic")
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"java", "-jar", "mjavac.jar", "unmarshal", "semantic", f.in + "/ErrorCase.xml", f.out + "/ErrorCase.xml.txt"}, calls[0].Command)
}

func TestSemantic_RerunIsIdempotent(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Ok1.xml":       "<ast/>",
		"ErrorCase.xml": "<ast/>",
		"Bad2.xml":      "<ast/>",
	})
	writer := &tooltest.Fake{SemanticFn: tooltest.ByName(map[string]string{
		"Ok1.xml":       "OK",
		"ErrorCase.xml": "OK",
		"Bad2.xml":      "error: undefined variable x",
	})}

	first, err := f.runner(writer).Run(context.Background(), SemanticStage, f.layout())
	require.NoError(t, err)
	require.Equal(t, verify.Totals{Passed: 2, Failed: 1}, first.Totals)

	// The second tool writes nothing: every verdict comes from the reports
	// the first run left in the output directory.
	f.log.Reset()
	f.rec = trace.NewRecorder()
	silent := &tooltest.Fake{}
	second, err := f.runner(silent).Run(context.Background(), SemanticStage, f.layout())
	require.NoError(t, err)

	assert.Len(t, silent.CallsTo("semantic"), 3)
	assert.Equal(t, first.Totals, second.Totals)
	assert.Equal(t, first.Verdicts, second.Verdicts)
	assert.FileExists(t, f.out+"/ErrorCase.xml.txt")
	assert.True(t, strings.HasSuffix(f.log.String(), "Passed: 2 Failed: 1\n"), f.log.String())
}

func TestSemantic_MissingReportIsNotCounted(t *testing.T) {
	f := newFixture(t, map[string]string{
		"Ok1.xml":  "<ast/>",
		"Gone.xml": "<ast/>",
	})
	tool := &tooltest.Fake{SemanticFn: tooltest.ByName(map[string]string{"Ok1.xml": "OK"})}

	res, err := f.runner(tool).Run(context.Background(), SemanticStage, f.layout())
	require.NoError(t, err)

	assert.Equal(t, verify.Totals{Passed: 1}, res.Totals)
	require.Len(t, res.Verdicts, 2)
	assert.Equal(t, verify.Skipped, res.Verdicts[0].Status)
	assert.Contains(t, f.log.String(), "An error occurred. No output file was created.\n")
}

func TestRun_CreatesOutputDir(t *testing.T) {
	f := newFixture(t, nil)
	f.out = filepath.Join(f.out, "deep", "er")

	res, err := f.runner(&tooltest.Fake{}).Run(context.Background(), ParseStage, f.layout())
	require.NoError(t, err)
	assert.DirExists(t, f.out)
	assert.Equal(t, verify.Totals{}, res.Totals)
	assert.Equal(t, "========================\nPassed: 0 Failed: 0\n", f.log.String())
}

func TestRun_OutputDirIsAFile(t *testing.T) {
	f := newFixture(t, map[string]string{"Good1.java": "x"})
	require.NoError(t, os.WriteFile(f.out, []byte("file"), 0o644))

	_, err := f.runner(&tooltest.Fake{}).Run(context.Background(), ParseStage, f.layout())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSetup))
}

func TestRun_MissingInputDir(t *testing.T) {
	f := newFixture(t, nil)
	l := f.layout()
	l.InputDir = filepath.Join(f.in, "nope")

	_, err := f.runner(&tooltest.Fake{}).Run(context.Background(), SemanticStage, l)
	assert.True(t, errors.Is(err, ErrSetup))
}

func TestRun_CancelledContext(t *testing.T) {
	f := newFixture(t, map[string]string{"Good1.java": "x"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tool := &tooltest.Fake{}
	_, err := f.runner(tool).Run(ctx, ParseStage, f.layout())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, tool.Calls())
}

func TestRun_NilTraceDiscardsEvents(t *testing.T) {
	f := newFixture(t, map[string]string{"Good1.java": "class A {}\n"})
	r := &Runner{Tool: &tooltest.Fake{MarshalFn: tooltest.Copy, PrintFn: tooltest.Copy}}

	res, err := r.Run(context.Background(), ParseStage, f.layout())
	require.NoError(t, err)
	assert.Equal(t, verify.Totals{Passed: 1}, res.Totals)
	assert.Equal(t, trace.NopSink{}, r.Trace)
}

func TestRun_NoTool(t *testing.T) {
	_, err := (&Runner{}).Run(context.Background(), ParseStage, Layout{InputDir: "a", OutputDir: "b"})
	assert.Error(t, err)
}

func TestRun_ManifestOverridesHeuristic(t *testing.T) {
	f := newFixture(t, map[string]string{"Badminton.java": "class Badminton {}\n"})
	tool := &tooltest.Fake{MarshalFn: tooltest.Copy, PrintFn: tooltest.Copy}

	r := f.runner(tool)
	r.Expectations = verify.Expectations{Manifest: verify.NewManifest(map[string]verify.Expectation{
		"Badminton.java": verify.ExpectOK,
	})}
	res, err := r.Run(context.Background(), ParseStage, f.layout())
	require.NoError(t, err)
	assert.Equal(t, verify.Totals{Passed: 1}, res.Totals)

	require.NoError(t, os.Remove(filepath.Join(f.out, "Badminton.java.xml")))
	tool.MarshalFn = nil
	res, err = r.Run(context.Background(), ParseStage, f.layout())
	require.NoError(t, err)
	assert.Equal(t, verify.Totals{Failed: 1}, res.Totals)
}
