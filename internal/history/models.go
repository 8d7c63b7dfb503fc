package history

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RunStatus is the lifecycle state of a recorded run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Counts mirrors the run's tally, plus the cases that got no verdict.
type Counts struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

// Run is the persisted metadata of one harness run.
type Run struct {
	RunID      string     `json:"run_id"`
	Stage      string     `json:"stage"`
	SuiteHash  string     `json:"suite_hash"`
	InputDir   string     `json:"input_dir"`
	StartTime  time.Time  `json:"start_time"`
	FinishTime *time.Time `json:"finish_time"`
	Status     RunStatus  `json:"status"`
	Counts     Counts     `json:"counts"`

	// PreviousRunID is the latest earlier run over the same suite, if any.
	PreviousRunID *string `json:"previous_run_id"`
}

func (r Run) Validate() error {
	var errs []error
	if strings.TrimSpace(r.RunID) == "" {
		errs = append(errs, errors.New("run_id is required"))
	}
	if strings.TrimSpace(r.Stage) == "" {
		errs = append(errs, errors.New("stage is required"))
	}
	if strings.TrimSpace(r.SuiteHash) == "" {
		errs = append(errs, errors.New("suite_hash is required"))
	}
	if r.StartTime.IsZero() {
		errs = append(errs, errors.New("start_time is required"))
	}
	switch r.Status {
	case RunStatusRunning, RunStatusCompleted, RunStatusFailed:
	default:
		errs = append(errs, fmt.Errorf("invalid status %q", r.Status))
	}
	if r.Counts.Passed < 0 || r.Counts.Failed < 0 || r.Counts.Skipped < 0 {
		errs = append(errs, errors.New("counts must be >= 0"))
	}
	if r.PreviousRunID != nil && strings.TrimSpace(*r.PreviousRunID) == "" {
		errs = append(errs, errors.New("previous_run_id must not be empty when provided"))
	}
	return errors.Join(errs...)
}

// CaseRecord is the persisted verdict of one input file.
type CaseRecord struct {
	Case      string   `json:"case"`
	Status    string   `json:"status"`
	Reason    string   `json:"reason,omitempty"`
	ErrorCode string   `json:"error_code,omitempty"`
	Artifacts []string `json:"artifacts"`
}

func (c CaseRecord) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Case) == "" {
		errs = append(errs, errors.New("case is required"))
	}
	switch c.Status {
	case "SUCCESS", "FAILED", "SKIPPED":
	default:
		errs = append(errs, fmt.Errorf("invalid status %q", c.Status))
	}
	if c.Artifacts == nil {
		errs = append(errs, errors.New("artifacts must be an array (not null)"))
	}
	return errors.Join(errs...)
}

// Cases is the content of cases.json.
type Cases struct {
	RunID string       `json:"run_id"`
	Cases []CaseRecord `json:"cases"`
}

type FailureClass string

const (
	FailureClassConfig    FailureClass = "config"
	FailureClassWorkspace FailureClass = "workspace"
	FailureClassTool      FailureClass = "tool"
	FailureClassSystem    FailureClass = "system"
)

// Failure records why a run stopped before printing its summary.
type Failure struct {
	FailureClass FailureClass `json:"failure_class"`
	Case         *string      `json:"case,omitempty"`
	ErrorCode    string       `json:"error_code"`
	ErrorMessage string       `json:"error_message"`
}

func (f Failure) Validate() error {
	var errs []error
	switch f.FailureClass {
	case FailureClassConfig, FailureClassWorkspace, FailureClassTool, FailureClassSystem:
	default:
		errs = append(errs, fmt.Errorf("invalid failure_class %q", f.FailureClass))
	}
	if f.Case != nil && strings.TrimSpace(*f.Case) == "" {
		errs = append(errs, errors.New("case must not be empty when provided"))
	}
	if strings.TrimSpace(f.ErrorCode) == "" {
		errs = append(errs, errors.New("error_code is required"))
	}
	if strings.TrimSpace(f.ErrorMessage) == "" {
		errs = append(errs, errors.New("error_message is required"))
	}
	return errors.Join(errs...)
}
