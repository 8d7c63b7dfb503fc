package verify

// Status is the outcome class of one verdict.
type Status int

const (
	// Success and Failed are counted.
	Success Status = iota
	Failed
	// Skipped means no verdict could be computed; it is reported but not
	// counted.
	Skipped
)

func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case Failed:
		return "FAILED"
	default:
		return "SKIPPED"
	}
}

// Verdict is the per-file result.
type Verdict struct {
	// Case is the input file name.
	Case   string
	Status Status

	// Reason explains a Failed or Skipped verdict.
	Reason string

	// Diff is an optional unified diff for content mismatches.
	Diff string

	// Err classifies the failure (see core error kinds). Nil on success.
	Err error

	// Artifacts lists the files this verdict was derived from.
	Artifacts []string
}

// String renders the verdict line the reporter prints.
func (v Verdict) String() string {
	switch v.Status {
	case Success:
		return "SUCCESS"
	case Failed:
		return "FAILED: " + v.Reason
	default:
		return "SKIPPED: " + v.Reason
	}
}

func succeeded(name string, artifacts ...string) Verdict {
	return Verdict{Case: name, Status: Success, Artifacts: artifacts}
}

func failed(name, reason string, err error, artifacts ...string) Verdict {
	return Verdict{Case: name, Status: Failed, Reason: reason, Err: err, Artifacts: artifacts}
}

func skipped(name, reason string, err error, artifacts ...string) Verdict {
	return Verdict{Case: name, Status: Skipped, Reason: reason, Err: err, Artifacts: artifacts}
}

// Totals are the run's pass/fail counters. It is a plain value: Add returns
// the updated totals and never mutates shared state.
type Totals struct {
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Add folds one verdict into the totals. Skipped verdicts leave them unchanged.
func (t Totals) Add(v Verdict) Totals {
	switch v.Status {
	case Success:
		t.Passed++
	case Failed:
		t.Failed++
	}
	return t
}

// Tally folds a list of verdicts.
func Tally(verdicts []Verdict) Totals {
	var t Totals
	for _, v := range verdicts {
		t = t.Add(v)
	}
	return t
}

// Total is Passed + Failed.
func (t Totals) Total() int { return t.Passed + t.Failed }
