package trace

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes the canonical encoding of t to path, replacing any
// previous trace atomically.
func WriteFile(path string, t RunTrace) error {
	b, err := t.CanonicalJSON()
	if err != nil {
		return fmt.Errorf("encode trace: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create trace dir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".trace-*.tmp")
	if err != nil {
		return fmt.Errorf("create trace temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(b, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write trace: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close trace: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename trace: %w", err)
	}
	return nil
}
