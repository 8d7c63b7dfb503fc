package core

import (
	"bytes"
	"fmt"
)

// OutputNormalizer rewrites captured program output before it is compared
// against a golden output. It is applied to both sides of a comparison.
//
// Round-trip source comparison never goes through a normalizer: re-emitted
// source must match the original byte for byte.
type OutputNormalizer interface {
	Normalize(content []byte) []byte
}

// RawNormalizer performs no normalization, preserving raw bytes exactly.
type RawNormalizer struct{}

// NewRawNormalizer creates a normalizer that preserves content unchanged.
func NewRawNormalizer() *RawNormalizer {
	return &RawNormalizer{}
}

// Normalize returns content unchanged.
func (n *RawNormalizer) Normalize(content []byte) []byte {
	return content
}

// LineEndingNormalizer converts CRLF line endings to LF, then applies Inner.
// Golden outputs recorded on Windows compare equal to Unix interpreter output.
type LineEndingNormalizer struct {
	Inner OutputNormalizer
}

// NewLineEndingNormalizer creates a normalizer that standardizes line endings.
func NewLineEndingNormalizer(inner OutputNormalizer) *LineEndingNormalizer {
	return &LineEndingNormalizer{Inner: inner}
}

// Normalize converts CRLF to LF and optionally applies the inner normalizer.
func (n *LineEndingNormalizer) Normalize(content []byte) []byte {
	result := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if n.Inner != nil {
		result = n.Inner.Normalize(result)
	}
	return result
}

// NormalizerByName maps a configuration value to a normalizer.
// Accepted: "" and "raw" (no-op), "eol" (CRLF to LF).
func NormalizerByName(name string) (OutputNormalizer, error) {
	switch name {
	case "", "raw":
		return NewRawNormalizer(), nil
	case "eol":
		return NewLineEndingNormalizer(nil), nil
	default:
		return nil, fmt.Errorf("unknown normalizer %q (expected raw|eol)", name)
	}
}
