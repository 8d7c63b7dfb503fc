package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirName is the bookkeeping directory created inside the output directory.
const DirName = ".mjtest"

// Store persists run records under:
//
//	<baseDir>/.mjtest/runs/<run-id>/{run.json,cases.json,failure.json}
//
// All writes are atomic and durable (file sync + atomic rename + dir sync).
type Store struct {
	baseDir string
}

func NewStore(baseDir string) (*Store, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, errors.New("baseDir is required")
	}
	return &Store{baseDir: baseDir}, nil
}

func (s *Store) runsRootDir() string {
	return filepath.Join(s.baseDir, DirName, "runs")
}

func (s *Store) runDir(runID string) string {
	return filepath.Join(s.runsRootDir(), runID)
}

func (s *Store) runPath(runID string) string {
	return filepath.Join(s.runDir(runID), "run.json")
}

func (s *Store) casesPath(runID string) string {
	return filepath.Join(s.runDir(runID), "cases.json")
}

func (s *Store) failurePath(runID string) string {
	return filepath.Join(s.runDir(runID), "failure.json")
}

// ListRunIDs returns all run IDs present on disk, sorted lexicographically.
func (s *Store) ListRunIDs() ([]string, error) {
	if s == nil {
		return nil, errors.New("nil Store")
	}
	entries, err := os.ReadDir(s.runsRootDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := strings.TrimSpace(e.Name())
		if name == "" {
			continue
		}
		ids = append(ids, name)
	}
	sort.Strings(ids)
	return ids, nil
}

// Latest returns the most recently started run of stage over suiteHash.
// ok is false when there is none. Run directories without a readable
// run.json are ignored.
func (s *Store) Latest(stage, suiteHash string) (run Run, ok bool, err error) {
	ids, err := s.ListRunIDs()
	if err != nil {
		return Run{}, false, err
	}
	for _, id := range ids {
		r, lerr := s.LoadRun(id)
		if lerr != nil {
			continue
		}
		if r.Stage != stage || r.SuiteHash != suiteHash {
			continue
		}
		if !ok || r.StartTime.After(run.StartTime) {
			run, ok = r, true
		}
	}
	return run, ok, nil
}

func (s *Store) SaveRun(run Run) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}
	return s.save(run.RunID, s.runPath(run.RunID), run, "run")
}

func (s *Store) LoadRun(runID string) (Run, error) {
	var run Run
	if strings.TrimSpace(runID) == "" {
		return Run{}, errors.New("runID is required")
	}
	if err := readJSONStrict(s.runPath(runID), &run); err != nil {
		return Run{}, err
	}
	if err := run.Validate(); err != nil {
		return Run{}, fmt.Errorf("invalid run on disk: %w", err)
	}
	return run, nil
}

func (s *Store) SaveCases(runID string, cases []CaseRecord) error {
	if strings.TrimSpace(runID) == "" {
		return errors.New("runID is required")
	}
	doc := Cases{RunID: runID, Cases: make([]CaseRecord, 0, len(cases))}
	for i, c := range cases {
		if c.Artifacts == nil {
			c.Artifacts = []string{}
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid case %d: %w", i, err)
		}
		doc.Cases = append(doc.Cases, c)
	}
	return s.save(runID, s.casesPath(runID), doc, "cases")
}

func (s *Store) LoadCases(runID string) ([]CaseRecord, error) {
	var doc Cases
	if strings.TrimSpace(runID) == "" {
		return nil, errors.New("runID is required")
	}
	if err := readJSONStrict(s.casesPath(runID), &doc); err != nil {
		return nil, err
	}
	if doc.RunID != runID {
		return nil, fmt.Errorf("cases on disk belong to run %q", doc.RunID)
	}
	for i, c := range doc.Cases {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("invalid case %d on disk: %w", i, err)
		}
	}
	return doc.Cases, nil
}

func (s *Store) SaveFailure(runID string, failure Failure) error {
	if strings.TrimSpace(runID) == "" {
		return errors.New("runID is required")
	}
	if err := failure.Validate(); err != nil {
		return fmt.Errorf("invalid failure: %w", err)
	}
	return s.save(runID, s.failurePath(runID), failure, "failure")
}

func (s *Store) LoadFailure(runID string) (Failure, error) {
	var failure Failure
	if strings.TrimSpace(runID) == "" {
		return Failure{}, errors.New("runID is required")
	}
	if err := readJSONStrict(s.failurePath(runID), &failure); err != nil {
		return Failure{}, err
	}
	if err := failure.Validate(); err != nil {
		return Failure{}, fmt.Errorf("invalid failure on disk: %w", err)
	}
	return failure, nil
}

func (s *Store) save(runID, path string, v any, what string) error {
	if err := ensureDirDurable(s.runDir(runID), 0o755); err != nil {
		return fmt.Errorf("ensure run dir: %w", err)
	}
	data, err := jsonMarshalStable(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", what, err)
	}
	if err := writeFileAtomicDurable(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", what, err)
	}
	return nil
}

func jsonMarshalStable(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func readJSONStrict(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid JSON: trailing content")
	}
	return nil
}

func ensureDirDurable(dir string, perm os.FileMode) error {
	if err := os.MkdirAll(dir, perm); err != nil {
		return err
	}
	if err := fsyncDir(dir); err != nil {
		return err
	}
	parent := filepath.Dir(dir)
	if parent != dir {
		if err := fsyncDir(parent); err != nil {
			return err
		}
	}
	return nil
}

func writeFileAtomicDurable(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return fsyncDir(dir)
}

func fsyncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
