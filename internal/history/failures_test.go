package history

import (
	"errors"
	"fmt"
	"testing"
)

func TestFailureFromError_ClassifiesConfigFailure(t *testing.T) {
	f, err := FailureFromError(&ConfigFailureError{Code: "UnknownKey", Message: "bad"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.FailureClass != FailureClassConfig || f.ErrorCode != "UnknownKey" || f.Case != nil {
		t.Fatalf("unexpected failure: %#v", f)
	}
}

func TestFailureFromError_ClassifiesWorkspaceFailure(t *testing.T) {
	wrapped := fmt.Errorf("run: %w", &WorkspaceFailureError{Message: "not a directory"})
	f, err := FailureFromError(wrapped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.FailureClass != FailureClassWorkspace || f.ErrorCode != "WorkspaceFailure" {
		t.Fatalf("unexpected failure: %#v", f)
	}
}

func TestFailureFromError_ClassifiesToolFailure(t *testing.T) {
	f, err := FailureFromError(&ToolFailureError{Case: "A.java", Message: "interrupted"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.FailureClass != FailureClassTool || f.Case == nil || *f.Case != "A.java" {
		t.Fatalf("unexpected failure: %#v", f)
	}
}

func TestFailureFromError_ClassifiesSystemFailure(t *testing.T) {
	f, err := FailureFromError(&SystemFailureError{Code: "Panic", Message: "boom"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.FailureClass != FailureClassSystem || f.ErrorCode != "Panic" {
		t.Fatalf("unexpected failure: %#v", f)
	}
}

func TestFailureFromError_UnknownIsSystem(t *testing.T) {
	f, err := FailureFromError(errors.New("weird"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.FailureClass != FailureClassSystem || f.ErrorCode != "UnknownError" || f.ErrorMessage != "weird" {
		t.Fatalf("unexpected failure: %#v", f)
	}
	if _, err := FailureFromError(nil); err == nil {
		t.Fatalf("expected error for nil")
	}
}
