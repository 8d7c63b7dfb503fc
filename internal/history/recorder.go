// Package history keeps a record of harness runs next to their artifacts.
//
// Each run gets a directory under <output-dir>/.mjtest/runs/<run-id>/ holding
// the run metadata, the per-file verdicts and, when the run stopped early, a
// classified failure. Run directories are never pruned by the harness.
package history

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Recorder drives a Store through the lifecycle of one run.
type Recorder struct {
	Store *Store

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

func (r *Recorder) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

// StartRun persists a running record for run. RunID and StartTime are
// filled in when empty, and the run is linked to the latest earlier run over
// the same suite.
func (r *Recorder) StartRun(run Run) (Run, error) {
	if r == nil || r.Store == nil {
		return Run{}, errors.New("Store is required")
	}
	if run.RunID == "" {
		run.RunID = NewRunID()
	}
	if run.StartTime.IsZero() {
		run.StartTime = r.now()
	}
	run.Status = RunStatusRunning
	if prev, ok, err := r.Store.Latest(run.Stage, run.SuiteHash); err == nil && ok && prev.RunID != run.RunID {
		id := prev.RunID
		run.PreviousRunID = &id
	}
	if err := run.Validate(); err != nil {
		return Run{}, fmt.Errorf("invalid run: %w", err)
	}
	if err := r.Store.SaveRun(run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// FinishRun stores the verdicts and marks the run completed.
func (r *Recorder) FinishRun(run Run, cases []CaseRecord) (Run, error) {
	if r == nil || r.Store == nil {
		return run, errors.New("Store is required")
	}
	if err := r.Store.SaveCases(run.RunID, cases); err != nil {
		return run, fmt.Errorf("save cases: %w", err)
	}
	run.Counts = CountCases(cases)
	return r.finish(run, RunStatusCompleted)
}

// RecordFailure classifies err, writes failure.json and marks the run failed.
func (r *Recorder) RecordFailure(run Run, err error) (Run, error) {
	if r == nil || r.Store == nil {
		return run, errors.New("Store is required")
	}
	f, ferr := FailureFromError(err)
	if ferr != nil {
		return run, ferr
	}
	if serr := r.Store.SaveFailure(run.RunID, f); serr != nil {
		return run, serr
	}
	return r.finish(run, RunStatusFailed)
}

func (r *Recorder) finish(run Run, status RunStatus) (Run, error) {
	t := r.now()
	run.FinishTime = &t
	run.Status = status
	if err := r.Store.SaveRun(run); err != nil {
		return run, err
	}
	return run, nil
}

// CountCases tallies case records by status.
func CountCases(cases []CaseRecord) Counts {
	var c Counts
	for _, cr := range cases {
		switch cr.Status {
		case "SUCCESS":
			c.Passed++
		case "FAILED":
			c.Failed++
		default:
			c.Skipped++
		}
	}
	return c
}
