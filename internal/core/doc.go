// Package core provides the building blocks shared by every harness pipeline.
//
// The harness never compiles anything itself. It spawns an external compiler
// and an external IR interpreter, and the file system is the only channel
// between those processes and the verifier. This package owns that boundary:
//
//   - Executor: runs one external process and captures what it printed.
//   - Discover: lists the input files of a suite in directory order.
//   - Artifact naming: the deterministic file names every stage writes.
//   - SuiteHash: a content identity for a discovered suite.
//   - The error taxonomy (missing artifact, content mismatch, tool failure).
//
// # Artifacts
//
// An artifact is any file produced by the external tool or the interpreter.
// Artifacts are named from the input file name plus a fixed suffix and are
// never cleaned up by the harness; a rerun overwrites them.
package core
