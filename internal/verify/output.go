package verify

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"mjtest/internal/core"
)

// MaxDiffLines bounds the diff attached to a verdict.
const MaxDiffLines = 40

// CompareOutput compares the interpreter output of the compiled program
// with the output of the expected program. Both sides go through n first.
func CompareOutput(name, actualPath, expectedPath string, n core.OutputNormalizer) Verdict {
	actual, err := os.ReadFile(actualPath)
	if err != nil {
		return readFailure(name, actualPath, err)
	}
	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		return readFailure(name, expectedPath, err)
	}
	if n == nil {
		n = core.NewRawNormalizer()
	}
	actual = n.Normalize(actual)
	expected = n.Normalize(expected)

	if bytes.Equal(actual, expected) {
		return succeeded(name, actualPath, expectedPath)
	}
	v := failed(name,
		fmt.Sprintf("output not equal: %s %s", actualPath, expectedPath),
		core.ContentMismatchf(name, "%s differs from %s", actualPath, expectedPath),
		actualPath, expectedPath)
	v.Diff = UnifiedDiff(expectedPath, actualPath, expected, actual)
	return v
}

func readFailure(name, path string, err error) Verdict {
	if os.IsNotExist(err) {
		return failed(name, "missing output: "+path, core.MissingArtifact(name, path), path)
	}
	return failed(name, err.Error(), core.ToolFailure(name, err), path)
}

// UnifiedDiff renders a unified diff from a to b, cut to MaxDiffLines.
// It returns "" when the diff cannot be produced.
func UnifiedDiff(fromName, toName string, a, b []byte) string {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  2,
	})
	if err != nil {
		return ""
	}
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) <= MaxDiffLines {
		return text
	}
	cut := strings.Join(lines[:MaxDiffLines], "")
	return cut + fmt.Sprintf("... (%d more lines)\n", len(lines)-MaxDiffLines)
}
