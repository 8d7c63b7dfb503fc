package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjtest/internal/core"
	"mjtest/internal/toolchain/tooltest"
	"mjtest/internal/verify"
)

const programIR = `
define i32 @main() {
entry:
	ret i32 0
}
`

type compileFixture struct {
	*fixture
	results, expected string
}

func newCompileFixture(t *testing.T, inputs map[string]string, golden map[string]string) *compileFixture {
	t.Helper()
	f := newFixture(t, inputs)
	root := filepath.Dir(f.in)
	c := &compileFixture{fixture: f, results: filepath.Join(root, "results"), expected: filepath.Join(root, "expected")}
	require.NoError(t, os.MkdirAll(c.expected, 0o755))
	for name, content := range golden {
		require.NoError(t, os.WriteFile(filepath.Join(c.expected, name), []byte(content), 0o644))
	}
	return c
}

func (c *compileFixture) layout() Layout {
	return Layout{InputDir: c.in, OutputDir: c.out, ResultsDir: c.results, ExpectedDir: c.expected}
}

// interpretByDir makes the golden program print want and the compiled one
// print got.
func (c *compileFixture) interpretByDir(got, want string) func(string) ([]byte, error) {
	return func(program string) ([]byte, error) {
		if strings.HasPrefix(program, c.expected) {
			return []byte(want), nil
		}
		return []byte(got), nil
	}
}

func TestCompile_MatchingOutput(t *testing.T) {
	c := newCompileFixture(t,
		map[string]string{"BinarySearch.java.xml": "<ast/>"},
		map[string]string{"BinarySearch.ll": programIR})
	tool := &tooltest.Fake{
		CompileFn:   tooltest.Write(programIR),
		InterpretFn: c.interpretByDir("1\n2\n", "1\n2\n"),
	}

	res, err := c.runner(tool).Run(context.Background(), CompileStage, c.layout())
	require.NoError(t, err)
	assert.Equal(t, verify.Totals{Passed: 1}, res.Totals)

	compiles := tool.CallsTo("compile")
	require.Len(t, compiles, 1)
	assert.Equal(t, []string{"java", "-jar", "mjavac.jar", "unmarshal", "compile", c.in + "/BinarySearch.java.xml", c.out + "/BinarySearch.ll"}, compiles[0].Command)

	runs := tool.CallsTo("interpret")
	require.Len(t, runs, 2)
	assert.Equal(t, []string{"lli", c.out + "/BinarySearch.ll"}, runs[0].Command)
	assert.Equal(t, []string{"lli", c.expected + "/BinarySearch.ll"}, runs[1].Command)

	assert.FileExists(t, filepath.Join(c.results, "BinarySearch.ll.out"))
	assert.FileExists(t, filepath.Join(c.expected, "results", "BinarySearch.ll.out"))
	assert.Contains(t, c.log.String(), "Generating LLVM from BinarySearch.java.xml\n")
	assert.Contains(t, c.log.String(), "Running on BinarySearch.ll\n")
}

func TestCompile_DifferentOutput(t *testing.T) {
	c := newCompileFixture(t,
		map[string]string{"Sum.java.xml": "<ast/>"},
		map[string]string{"Sum.ll": programIR})
	tool := &tooltest.Fake{
		CompileFn:   tooltest.Write(programIR),
		InterpretFn: c.interpretByDir("41\n", "42\n"),
	}

	res, err := c.runner(tool).Run(context.Background(), CompileStage, c.layout())
	require.NoError(t, err)
	assert.Equal(t, verify.Totals{Failed: 1}, res.Totals)
	assert.Contains(t, c.log.String(), "FAILED: output not equal: ")
	assert.Contains(t, c.log.String(), "-42\n+41\n")
}

func TestCompile_LineEndingNormalization(t *testing.T) {
	c := newCompileFixture(t,
		map[string]string{"Sum.java.xml": "<ast/>"},
		map[string]string{"Sum.ll": programIR})
	tool := &tooltest.Fake{
		CompileFn:   tooltest.Write(programIR),
		InterpretFn: c.interpretByDir("42\n", "42\r\n"),
	}

	r := c.runner(tool)
	r.Options.Normalizer = core.NewLineEndingNormalizer(nil)
	res, err := r.Run(context.Background(), CompileStage, c.layout())
	require.NoError(t, err)
	assert.Equal(t, verify.Totals{Passed: 1}, res.Totals)
}

func TestCompile_NoProgram(t *testing.T) {
	c := newCompileFixture(t, map[string]string{
		"Good.java.xml":        "<ast/>",
		"InvalidType.java.xml": "<ast/>",
	}, nil)
	tool := &tooltest.Fake{}

	res, err := c.runner(tool).Run(context.Background(), CompileStage, c.layout())
	require.NoError(t, err)

	assert.Equal(t, verify.Totals{Passed: 1, Failed: 1}, res.Totals)
	assert.Empty(t, tool.CallsTo("interpret"))
}

func TestCompile_NoGoldenProgramIsSkipped(t *testing.T) {
	c := newCompileFixture(t, map[string]string{"New.java.xml": "<ast/>"}, nil)
	tool := &tooltest.Fake{CompileFn: tooltest.Write(programIR)}

	res, err := c.runner(tool).Run(context.Background(), CompileStage, c.layout())
	require.NoError(t, err)

	assert.Equal(t, verify.Totals{}, res.Totals)
	require.Len(t, res.Verdicts, 1)
	assert.Equal(t, verify.Skipped, res.Verdicts[0].Status)
	assert.Len(t, tool.CallsTo("interpret"), 1)
}

func TestCompile_CheckIRRejectsBrokenProgram(t *testing.T) {
	c := newCompileFixture(t,
		map[string]string{"Sum.java.xml": "<ast/>"},
		map[string]string{"Sum.ll": programIR})
	tool := &tooltest.Fake{CompileFn: tooltest.Write("define i32 @main( {\n")}

	r := c.runner(tool)
	r.Options.CheckIR = true
	res, err := r.Run(context.Background(), CompileStage, c.layout())
	require.NoError(t, err)

	assert.Equal(t, verify.Totals{Failed: 1}, res.Totals)
	assert.Contains(t, c.log.String(), "FAILED: invalid IR: ")
	assert.Empty(t, tool.CallsTo("interpret"))
}

func TestCompile_RequiresResultsDir(t *testing.T) {
	c := newCompileFixture(t, nil, nil)
	l := c.layout()
	l.ResultsDir = ""

	_, err := c.runner(&tooltest.Fake{}).Run(context.Background(), CompileStage, l)
	assert.ErrorIs(t, err, ErrSetup)
}
