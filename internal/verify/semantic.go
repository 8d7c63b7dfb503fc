package verify

import (
	"bytes"
	"os"

	"mjtest/internal/core"
)

// NoReportDiagnostic is printed when the semantic step left no report.
const NoReportDiagnostic = "An error occurred. No output file was created."

// semanticOK is the marker a passing semantic report contains.
var semanticOK = []byte("OK")

// Semantic classifies a semantic-analysis report. The report passes when it
// contains "OK"; the verdict is a success when that agrees with what the file
// name expects.
//
// A missing report yields a Skipped verdict carrying NoReportDiagnostic.
func Semantic(reportPath, name string, expect Expectation) Verdict {
	content, err := os.ReadFile(reportPath)
	if err != nil {
		if os.IsNotExist(err) {
			return skipped(name, NoReportDiagnostic, core.MissingArtifact(name, reportPath), reportPath)
		}
		return skipped(name, err.Error(), core.ToolFailure(name, err), reportPath)
	}
	return ClassifyReport(name, content, expect, reportPath)
}

// ClassifyReport applies the "OK" rule to report content.
func ClassifyReport(name string, content []byte, expect Expectation, artifact string) Verdict {
	got := ExpectError
	if bytes.Contains(content, semanticOK) {
		got = ExpectOK
	}
	if got == expect {
		return succeeded(name, artifact)
	}
	return failed(name, mismatchReason(expect, got),
		core.ContentMismatchf(name, "report classified %s", got), artifact)
}
