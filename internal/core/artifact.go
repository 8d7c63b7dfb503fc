package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Fixed artifact suffixes appended to input file names.
const (
	SuffixMarshaled = ".xml"
	SuffixPrinted   = ".xml.java"
	SuffixReport    = ".txt"
	SuffixIR        = ".ll"
	SuffixOutput    = ".out"
	SuffixRenamed   = ".renamed.xml"
)

// MarshaledPath is where the parse stage asks the tool to write the
// marshaled structure of name: <out>/<name>.xml.
func MarshaledPath(outDir, name string) string {
	return join(outDir, name+SuffixMarshaled)
}

// PrintedPath is the companion file for source re-emitted from the
// marshaled artifact of name: <out>/<name>.xml.java.
func PrintedPath(outDir, name string) string {
	return join(outDir, name+SuffixPrinted)
}

// ReportPath is the semantic-analysis report for name: <out>/<base>.txt.
func ReportPath(outDir, name string) string {
	return join(outDir, filepath.Base(name)+SuffixReport)
}

// IRPath is the compiled program for name with up to two extensions
// stripped: BinarySearch.java.xml becomes <out>/BinarySearch.ll.
func IRPath(outDir, name string) string {
	return join(outDir, Stem(name)+SuffixIR)
}

// OutputPath is where interpreter stdout for the IR file irName lands:
// <results>/<irName>.out.
func OutputPath(resultsDir, irName string) string {
	return join(resultsDir, irName+SuffixOutput)
}

// RenamedPath is the marshaled output of one rename case:
// <out>/<base(input)>.<tag>.renamed.xml. Cases on the same input need
// distinct tags, or one case would be judged by another's artifact.
func RenamedPath(outDir, input, tag string) string {
	return join(outDir, filepath.Base(input)+"."+tag+SuffixRenamed)
}

// Stem strips at most two extensions from the base of name.
func Stem(name string) string {
	base := filepath.Base(name)
	for i := 0; i < 2; i++ {
		ext := filepath.Ext(base)
		if ext == "" || ext == base {
			break
		}
		base = strings.TrimSuffix(base, ext)
	}
	return base
}

// join concatenates the way the original scripts built paths ("dir/name"),
// keeping the directory spelling the caller used.
func join(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}

// ArtifactExists reports whether path names an existing regular file.
func ArtifactExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat artifact %q: %w", path, err)
	}
	return !info.IsDir(), nil
}

// ArtifactSize returns the size of an existing artifact, or -1.
func ArtifactSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return -1
	}
	return info.Size()
}
