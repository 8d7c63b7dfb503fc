package history

import (
	"errors"
	"fmt"
)

// ConfigFailureError is an invalid flag or config file.
type ConfigFailureError struct {
	Code    string
	Message string
	Cause   error
}

func (e *ConfigFailureError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("config failure (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("config failure: %s", e.Message)
}

func (e *ConfigFailureError) Unwrap() error { return e.Cause }

// WorkspaceFailureError is an output, results or input directory that could
// not be prepared or listed.
type WorkspaceFailureError struct {
	Code    string
	Message string
	Cause   error
}

func (e *WorkspaceFailureError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("workspace failure (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("workspace failure: %s", e.Message)
}

func (e *WorkspaceFailureError) Unwrap() error { return e.Cause }

// ToolFailureError is an external tool failure that stopped the run, such as
// an interrupted invocation.
type ToolFailureError struct {
	Case    string
	Code    string
	Message string
	Cause   error
}

func (e *ToolFailureError) Error() string {
	if e == nil {
		return ""
	}
	if e.Case != "" {
		return fmt.Sprintf("tool failure case=%s: %s", e.Case, e.Message)
	}
	return fmt.Sprintf("tool failure: %s", e.Message)
}

func (e *ToolFailureError) Unwrap() error { return e.Cause }

// SystemFailureError is a panic or other harness bug.
type SystemFailureError struct {
	Code    string
	Message string
	Cause   error
}

func (e *SystemFailureError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("system failure (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("system failure: %s", e.Message)
}

func (e *SystemFailureError) Unwrap() error { return e.Cause }

// FailureFromError classifies err into a Failure record. Unclassified errors
// are system failures.
func FailureFromError(err error) (Failure, error) {
	if err == nil {
		return Failure{}, errors.New("nil error")
	}

	var cf *ConfigFailureError
	if errors.As(err, &cf) && cf != nil {
		return Failure{
			FailureClass: FailureClassConfig,
			ErrorCode:    nonEmptyOr(cf.Code, "ConfigFailure"),
			ErrorMessage: nonEmptyOr(cf.Message, cf.Error()),
		}, nil
	}

	var wf *WorkspaceFailureError
	if errors.As(err, &wf) && wf != nil {
		return Failure{
			FailureClass: FailureClassWorkspace,
			ErrorCode:    nonEmptyOr(wf.Code, "WorkspaceFailure"),
			ErrorMessage: nonEmptyOr(wf.Message, wf.Error()),
		}, nil
	}

	var tf *ToolFailureError
	if errors.As(err, &tf) && tf != nil {
		var casePtr *string
		if tf.Case != "" {
			c := tf.Case
			casePtr = &c
		}
		return Failure{
			FailureClass: FailureClassTool,
			Case:         casePtr,
			ErrorCode:    nonEmptyOr(tf.Code, "ExternalToolFailure"),
			ErrorMessage: nonEmptyOr(tf.Message, tf.Error()),
		}, nil
	}

	var sf *SystemFailureError
	if errors.As(err, &sf) && sf != nil {
		return Failure{
			FailureClass: FailureClassSystem,
			ErrorCode:    nonEmptyOr(sf.Code, "SystemFailure"),
			ErrorMessage: nonEmptyOr(sf.Message, sf.Error()),
		}, nil
	}

	return Failure{
		FailureClass: FailureClassSystem,
		ErrorCode:    "UnknownError",
		ErrorMessage: err.Error(),
	}, nil
}

func nonEmptyOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
