package pipeline

import (
	"context"

	"mjtest/internal/core"
	"mjtest/internal/verify"
)

// parse marshals the source, prints it back and compares.
func (r *Runner) parse(ctx context.Context, in core.Input, l Layout) verify.Verdict {
	marshaled := core.MarshaledPath(l.OutputDir, in.Name)

	inv, err := r.Tool.Marshal(ctx, in.Path, marshaled)
	r.invoked(in.Name, inv, err)

	v, printInv := verify.RoundTrip(ctx, r.Tool, verify.RoundTripCase{
		Name:      in.Name,
		Source:    in.Path,
		Marshaled: marshaled,
		Printed:   core.PrintedPath(l.OutputDir, in.Name),
		Expect:    r.expectation(in.Name),
	})
	r.Reporter.Line("TEST RESULTS:")
	if printInv != nil {
		r.Reporter.Output(printInv)
	}
	r.Reporter.Verdict(v)
	return v
}
