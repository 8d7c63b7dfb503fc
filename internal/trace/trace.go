// Package trace records what a run decided about each case, in a canonical
// form that is byte-for-byte stable across runs over unchanged inputs.
package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// RunTrace is the canonical record of one harness run.
//
// It carries the SuiteHash of the discovered inputs and an ordered list of
// per-case events. It never contains timestamps, durations, exit codes or
// tool output: only the logical verdict facts.
//
// Events are sorted by Canonicalize and serialized with a fixed field order,
// so two runs that decided the same things produce identical bytes.
type RunTrace struct {
	SuiteHash string
	Events    []Event
}

// EventKind discriminates Event. The string values are part of the trace
// bytes; do not rename.
type EventKind string

const (
	EventCasePassed      EventKind = "CasePassed"
	EventCaseFailed      EventKind = "CaseFailed"
	EventCaseSkipped     EventKind = "CaseSkipped"
	EventArtifactMissing EventKind = "ArtifactMissing"
	EventToolError       EventKind = "ToolError"
)

// Event is a single per-case decision.
//
// Reason is a stable reason code (an error kind name such as
// "ContentMismatch"), never free text taken from a tool.
type Event struct {
	Kind EventKind

	// CaseID is the input file name.
	CaseID string

	Reason string

	// Artifacts are the artifact paths the decision was based on.
	Artifacts []string
}

// Validate checks basic invariants and returns a descriptive error.
func (t *RunTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.SuiteHash == "" {
		return errors.New("suiteHash is required")
	}
	for i := range t.Events {
		e := t.Events[i]
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if e.CaseID == "" {
			return fmt.Errorf("events[%d].caseId is required for kind %q", i, e.Kind)
		}
		for j, a := range e.Artifacts {
			if a == "" {
				return fmt.Errorf("events[%d].artifacts[%d] is empty", i, j)
			}
		}
	}
	return nil
}

// Canonicalize normalizes and sorts the trace in place.
//
//   - Artifacts are copied and sorted; empty slices become nil.
//   - Events are stably sorted by (caseId, kind order, reason, artifacts).
func (t *RunTrace) Canonicalize() {
	if t == nil {
		return
	}
	for i := range t.Events {
		t.Events[i].Artifacts = sortedCopy(t.Events[i].Artifacts)
	}

	sort.SliceStable(t.Events, func(i, j int) bool {
		a := t.Events[i]
		b := t.Events[j]

		if a.CaseID != b.CaseID {
			return a.CaseID < b.CaseID
		}
		if kindOrder(a.Kind) != kindOrder(b.Kind) {
			return kindOrder(a.Kind) < kindOrder(b.Kind)
		}
		if a.Reason != b.Reason {
			return a.Reason < b.Reason
		}
		return compareStringSlices(a.Artifacts, b.Artifacts)
	})
}

func kindOrder(k EventKind) int {
	switch k {
	case EventToolError:
		return 10
	case EventArtifactMissing:
		return 20
	case EventCasePassed:
		return 30
	case EventCaseFailed:
		return 40
	case EventCaseSkipped:
		return 50
	default:
		return 1000
	}
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

func compareStringSlices(a, b []string) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
// It canonicalizes a copy, leaving the caller's slices untouched.
func (t RunTrace) CanonicalJSON() ([]byte, error) {
	c := RunTrace{SuiteHash: t.SuiteHash, Events: make([]Event, len(t.Events))}
	copy(c.Events, t.Events)
	c.Canonicalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&c)
}

// Hash returns the sha256 hex digest of the canonical JSON bytes.
func (t RunTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// Counts tallies events by kind.
func (t RunTrace) Counts() map[EventKind]int {
	out := make(map[EventKind]int)
	for _, e := range t.Events {
		out[e.Kind]++
	}
	return out
}

// MarshalJSON fixes field order. It does not sort; use CanonicalJSON for the
// canonical form.
func (t RunTrace) MarshalJSON() ([]byte, error) {
	if t.SuiteHash == "" {
		return nil, errors.New("suiteHash is required")
	}
	var buf bytes.Buffer
	buf.WriteString(`{"suiteHash":`)
	writeString(&buf, t.SuiteHash)
	buf.WriteString(`,"events":[`)
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteString("]}")
	return buf.Bytes(), nil
}

// MarshalJSON fixes field order and omits empty optional fields.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}
	var buf bytes.Buffer
	buf.WriteString(`{"kind":`)
	writeString(&buf, string(e.Kind))

	if e.CaseID != "" {
		buf.WriteString(`,"caseId":`)
		writeString(&buf, e.CaseID)
	}
	if e.Reason != "" {
		buf.WriteString(`,"reason":`)
		writeString(&buf, e.Reason)
	}
	if artifacts := sortedCopy(e.Artifacts); len(artifacts) > 0 {
		buf.WriteString(`,"artifacts":[`)
		for i, a := range artifacts {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(&buf, a)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the format MarshalJSON writes.
func (t *RunTrace) UnmarshalJSON(b []byte) error {
	var raw struct {
		SuiteHash string  `json:"suiteHash"`
		Events    []Event `json:"events"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t.SuiteHash = raw.SuiteHash
	t.Events = raw.Events
	return nil
}

// UnmarshalJSON reads the format MarshalJSON writes.
func (e *Event) UnmarshalJSON(b []byte) error {
	var raw struct {
		Kind      string   `json:"kind"`
		CaseID    string   `json:"caseId"`
		Reason    string   `json:"reason"`
		Artifacts []string `json:"artifacts"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*e = Event{Kind: EventKind(raw.Kind), CaseID: raw.CaseID, Reason: raw.Reason, Artifacts: raw.Artifacts}
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}
