package verify

import (
	"strings"

	"github.com/llir/llvm/asm"

	"mjtest/internal/core"
)

// CheckIR parses the LLVM IR file at path. A file that does not parse yields
// a Failed verdict with an "invalid IR" reason; ok reports success.
func CheckIR(name, path string) (v Verdict, ok bool) {
	if _, err := asm.ParseFile(path); err != nil {
		msg := strings.TrimSpace(err.Error())
		if i := strings.IndexByte(msg, '\n'); i >= 0 {
			msg = msg[:i]
		}
		return failed(name, "invalid IR: "+msg,
			core.ContentMismatchf(name, "invalid IR in %s", path), path), false
	}
	return succeeded(name, path), true
}
