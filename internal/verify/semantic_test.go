package verify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mjtest/internal/core"
)

func writeReport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSemantic_OKReport(t *testing.T) {
	path := writeReport(t, "OK")

	v := Semantic(path, "Ok1.xml", ExpectationFor("Ok1.xml"))
	assert.Equal(t, Success, v.Status)

	v = Semantic(path, "BadCase.xml", ExpectationFor("BadCase.xml"))
	assert.Equal(t, Failed, v.Status)
	assert.Equal(t, "expected: ERROR, got: OK", v.Reason)
}

func TestSemantic_ErrorReport(t *testing.T) {
	path := writeReport(t, "line 3: undefined variable x\n")

	v := Semantic(path, "Invalid2.xml", ExpectError)
	assert.Equal(t, Success, v.Status)

	v = Semantic(path, "Good.xml", ExpectOK)
	assert.Equal(t, Failed, v.Status)
	assert.Equal(t, "expected: OK, got: ERROR", v.Reason)
}

func TestSemantic_OKIsASubstringMatch(t *testing.T) {
	v := ClassifyReport("A.xml", []byte("analysis: OK (3 classes)"), ExpectOK, "r")
	assert.Equal(t, Success, v.Status)

	v = ClassifyReport("A.xml", []byte("ok"), ExpectOK, "r")
	assert.Equal(t, Failed, v.Status, "the marker is case-sensitive")
}

func TestSemantic_MissingReportIsSkipped(t *testing.T) {
	v := Semantic(filepath.Join(t.TempDir(), "none.txt"), "Ok1.xml", ExpectOK)

	assert.Equal(t, Skipped, v.Status)
	assert.Equal(t, NoReportDiagnostic, v.Reason)
	assert.True(t, errors.Is(v.Err, core.ErrMissingArtifact))
	assert.Equal(t, Totals{}, Totals{}.Add(v))
}
