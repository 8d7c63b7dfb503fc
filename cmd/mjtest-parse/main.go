package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mjtest/internal/cli"
	"mjtest/internal/pipeline"
)

// mjtest-parse checks that every .java file in a directory survives a
// marshal/print round trip through the compiler.
//
//	mjtest-parse [flags] <input-dir> <output-dir>
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, pipeline.ParseStage, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
