package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	flags "github.com/jessevdk/go-flags"

	"mjtest/internal/core"
	"mjtest/internal/pipeline"
	"mjtest/internal/toolchain"
)

const (
	ExitSuccess           = 0
	ExitInvalidInvocation = 2
	ExitInternalError     = 4
)

// Options are the command-line flags shared by every stage.
type Options struct {
	Config       string        `long:"config" value-name:"FILE" description:"YAML config file"`
	Java         string        `long:"java" value-name:"PATH" description:"Java launcher (default: java)"`
	Jar          string        `long:"jar" value-name:"PATH" description:"Compiler jar (default: mjavac.jar)"`
	Interpreter  string        `long:"interpreter" value-name:"PATH" description:"IR interpreter (default: lli)"`
	ExpectedDir  string        `long:"expected-dir" value-name:"DIR" description:"Golden .ll programs for the compile stage (default: expected)"`
	Manifest     string        `long:"manifest" value-name:"FILE" description:"Expectation manifest (.properties, <file> = ok|error)"`
	Trace        string        `long:"trace" value-name:"FILE" description:"Write a canonical JSON trace of the verdicts"`
	History      bool          `long:"history" description:"Record the run under <output-dir>/.mjtest/runs"`
	CheckIR      bool          `long:"check-ir" description:"Parse compiled .ll files before running them"`
	NormalizeEOL bool          `long:"normalize-eol" description:"Treat CRLF and LF as equal when comparing program output"`
	Timeout      time.Duration `long:"timeout" value-name:"DURATION" description:"Bound each external process (0 = no limit)"`
	NoDiff       bool          `long:"no-diff" description:"Omit the diff printed under content mismatches"`
	Verbose      bool          `long:"verbose" short:"v" description:"Print artifact sizes under each verdict"`
}

// Invocation is the canonical description of one run: flags, config file and
// defaults merged, positional arguments assigned. Nothing is read from the
// environment.
type Invocation struct {
	Stage  pipeline.Stage
	Layout pipeline.Layout

	Java        string
	Jar         string
	Interpreter string

	Manifest  string
	TracePath string
	History   bool

	CheckIR    bool
	Normalizer string
	Timeout    time.Duration
	NoDiff     bool
	Verbose    bool
}

type InvocationError struct {
	ExitCode int
	Message  string
	Err      error
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *InvocationError) Unwrap() error { return e.Err }

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ErrHelp is returned when --help was requested; the usage text is its
// message and the exit code is success.
var ErrHelp = errors.New("help requested")

func usage(stage pipeline.Stage) string {
	switch stage {
	case pipeline.CompileStage:
		return "[OPTIONS] <input-dir> <output-dir> <results-dir>"
	case pipeline.RenameStage:
		return "[OPTIONS] <cases-file> <output-dir>"
	default:
		return "[OPTIONS] <input-dir> <output-dir>"
	}
}

func newParser(stage pipeline.Stage, opts *Options) *flags.Parser {
	p := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	p.Name = "mjtest-" + string(stage)
	p.Usage = usage(stage)
	return p
}

// ParseInvocation parses args (program name excluded) for stage.
//
// Too few positional arguments yields an error wrapping core.ErrMissingArgs
// with ExitSuccess: the harness then exits without output. Extra positional
// arguments are ignored.
func ParseInvocation(stage pipeline.Stage, args []string) (Invocation, error) {
	var opts Options
	p := newParser(stage, &opts)

	rest, err := p.ParseArgs(args)
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return Invocation{}, &InvocationError{ExitCode: ExitSuccess, Message: ferr.Message, Err: ErrHelp}
		}
		return Invocation{}, invalidInvocationf("%v", err)
	}

	if len(rest) < stage.Positionals() {
		return Invocation{}, &InvocationError{ExitCode: ExitSuccess, Err: core.ErrMissingArgs}
	}

	inv := Invocation{
		Stage:       stage,
		Java:        toolchain.DefaultJava,
		Jar:         toolchain.DefaultJar,
		Interpreter: toolchain.DefaultInterpreter,
		Normalizer:  "raw",
		Layout: pipeline.Layout{
			InputDir:    rest[0],
			OutputDir:   rest[1],
			ExpectedDir: pipeline.DefaultExpectedDir,
		},
	}
	if stage == pipeline.CompileStage {
		inv.Layout.ResultsDir = rest[2]
	}

	if opts.Config != "" {
		cfg, err := LoadConfig(opts.Config)
		if err != nil {
			return Invocation{}, &InvocationError{ExitCode: ExitInvalidInvocation, Message: err.Error(), Err: err}
		}
		if err := cfg.apply(&inv); err != nil {
			return Invocation{}, &InvocationError{ExitCode: ExitInvalidInvocation, Message: err.Error(), Err: err}
		}
	}
	applyFlags(p, opts, &inv)

	if inv.Timeout < 0 {
		return Invocation{}, invalidInvocationf("--timeout must not be negative (got %s)", inv.Timeout)
	}
	if strings.TrimSpace(inv.Jar) == "" {
		return Invocation{}, invalidInvocationf("--jar must not be empty")
	}
	return inv, nil
}

// applyFlags overrides inv with every flag given on the command line.
func applyFlags(p *flags.Parser, opts Options, inv *Invocation) {
	set := func(long string) bool {
		o := p.FindOptionByLongName(long)
		return o != nil && o.IsSet()
	}
	if set("java") {
		inv.Java = opts.Java
	}
	if set("jar") {
		inv.Jar = opts.Jar
	}
	if set("interpreter") {
		inv.Interpreter = opts.Interpreter
	}
	if set("expected-dir") {
		inv.Layout.ExpectedDir = opts.ExpectedDir
	}
	if set("manifest") {
		inv.Manifest = opts.Manifest
	}
	if set("trace") {
		inv.TracePath = opts.Trace
	}
	if set("history") {
		inv.History = opts.History
	}
	if set("check-ir") {
		inv.CheckIR = opts.CheckIR
	}
	if set("normalize-eol") && opts.NormalizeEOL {
		inv.Normalizer = "eol"
	}
	if set("timeout") {
		inv.Timeout = opts.Timeout
	}
	if set("no-diff") {
		inv.NoDiff = opts.NoDiff
	}
	if set("verbose") {
		inv.Verbose = opts.Verbose
	}
}

// ExitCode extracts a semantic exit code from an error.
// Unknown errors map to ExitInternalError.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		return invErr.ExitCode
	}
	return ExitInternalError
}
