package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseError_UnwrapsToKind(t *testing.T) {
	err := MissingArtifact("Good1.java", "out/Good1.java.xml")
	assert.True(t, errors.Is(err, ErrMissingArtifact))
	assert.False(t, errors.Is(err, ErrContentMismatch))
	assert.Equal(t, "Good1.java: missing artifact: out/Good1.java.xml", err.Error())

	var ce *CaseError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &ce))
	assert.Equal(t, "Good1.java", ce.Case)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, "MissingArtifact", ErrorCode(MissingArtifact("a", "b")))
	assert.Equal(t, "ContentMismatch", ErrorCode(ContentMismatchf("a", "code not equal")))
	assert.Equal(t, "ExternalToolFailure", ErrorCode(ToolFailure("a", errors.New("boom"))))
	assert.Equal(t, "MissingArgs", ErrorCode(ErrMissingArgs))
	assert.Equal(t, "UnknownError", ErrorCode(errors.New("other")))
}
