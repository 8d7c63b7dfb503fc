package pipeline

import (
	"context"

	"mjtest/internal/core"
	"mjtest/internal/verify"
)

// semantic runs the semantic analyzer and classifies its report.
func (r *Runner) semantic(ctx context.Context, in core.Input, l Layout) verify.Verdict {
	reportPath := core.ReportPath(l.OutputDir, in.Name)

	inv, err := r.Tool.Semantic(ctx, in.Path, reportPath)
	r.invoked(in.Name, inv, err)

	v := verify.Semantic(reportPath, in.Name, r.expectation(in.Name))
	if v.Status == verify.Skipped {
		r.Reporter.Diagnostic(v.Reason)
		return v
	}
	r.Reporter.Divider()
	r.Reporter.Results(v)
	return v
}
