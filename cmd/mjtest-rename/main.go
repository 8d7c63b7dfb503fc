package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"mjtest/internal/cli"
	"mjtest/internal/pipeline"
)

// mjtest-rename applies the renames listed in a YAML cases file and checks
// each result against its expected source.
//
//	mjtest-rename [flags] <cases-file> <output-dir>
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Main(ctx, pipeline.RenameStage, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
