package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mjtest/internal/cli"
	"mjtest/internal/pipeline"
)

// mjtest-semantic runs semantic analysis over every .xml file in a directory
// and checks each report against what the file name expects.
//
//	mjtest-semantic [flags] <input-dir> <output-dir>
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, pipeline.SemanticStage, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
