package core

import (
	"fmt"
	"os"
	"strings"
)

// Discover lists the regular files in dir whose name ends with ext.
//
// The order is the directory listing order reported by os.ReadDir (lexical
// by name). Sub-directories and entries with other extensions are ignored,
// so harness bookkeeping directories living next to the inputs are skipped.
//
// Paths are dir and name concatenated as given, so a relative input
// directory yields relative paths in the commands handed to the tool.
func Discover(dir, ext string) (*InputSet, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("input dir is empty")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", dir, err)
	}

	set := &InputSet{Dir: dir, Inputs: []Input{}}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ext) {
			continue
		}
		path := join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading input %q: %w", path, err)
		}
		set.Inputs = append(set.Inputs, Input{Name: name, Path: path, Content: content})
	}
	return set, nil
}

// EnsureDir creates dir (and parents) when missing.
//
// It succeeds when dir already exists as a directory and fails when the path
// exists but is something else.
func EnsureDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("directory path is empty")
	}
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("not a directory: %s", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}
