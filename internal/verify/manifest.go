package verify

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/magiconair/properties"
)

// Manifest is an explicit expectation list, one entry per input file:
//
//	# expectations.properties
//	Good1.java = ok
//	BadButValid.java = ok
//	Typo.java = error
//
// Files not listed keep the file name convention.
type Manifest struct {
	path    string
	entries map[string]Expectation
}

// LoadManifest reads a Java properties file of <file-name> = ok|error.
func LoadManifest(path string) (*Manifest, error) {
	p, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	m := &Manifest{path: path, entries: make(map[string]Expectation, p.Len())}
	for _, k := range p.Keys() {
		v, _ := p.Get(k)
		e, err := ParseExpectation(v)
		if err != nil {
			return nil, fmt.Errorf("manifest %s: key %q: %w", path, k, err)
		}
		m.entries[k] = e
	}
	return m, nil
}

// NewManifest builds a manifest from an in-memory table.
func NewManifest(entries map[string]Expectation) *Manifest {
	m := &Manifest{entries: make(map[string]Expectation, len(entries))}
	for k, v := range entries {
		m.entries[k] = v
	}
	return m
}

// Lookup finds name, or its base name, in the manifest.
func (m *Manifest) Lookup(name string) (Expectation, bool) {
	if m == nil {
		return ExpectOK, false
	}
	if e, ok := m.entries[name]; ok {
		return e, true
	}
	e, ok := m.entries[filepath.Base(name)]
	return e, ok
}

// Names lists the manifest's file names, sorted.
func (m *Manifest) Names() []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
