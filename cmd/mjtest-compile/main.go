package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mjtest/internal/cli"
	"mjtest/internal/pipeline"
)

// mjtest-compile compiles every .xml file in a directory to LLVM IR, runs it
// and compares its output with the output of the matching golden program.
//
//	mjtest-compile [flags] <input-dir> <output-dir> <results-dir>
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, pipeline.CompileStage, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
