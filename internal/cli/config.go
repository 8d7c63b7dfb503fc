package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML config file. Every key is optional and flags
// given on the command line win over it.
//
//	java: /usr/lib/jvm/java-17/bin/java
//	jar: build/mjavac.jar
//	interpreter: lli-15
//	expected_dir: expected
//	manifest: tests/expectations.properties
//	timeout: 30s
//	check_ir: true
//	normalize_eol: false
//	history: true
//	trace: out/trace.json
//	no_diff: false
//	verbose: false
type Config struct {
	Java         string `yaml:"java"`
	Jar          string `yaml:"jar"`
	Interpreter  string `yaml:"interpreter"`
	ExpectedDir  string `yaml:"expected_dir"`
	Manifest     string `yaml:"manifest"`
	Timeout      string `yaml:"timeout"`
	CheckIR      bool   `yaml:"check_ir"`
	NormalizeEOL bool   `yaml:"normalize_eol"`
	History      bool   `yaml:"history"`
	Trace        string `yaml:"trace"`
	NoDiff       bool   `yaml:"no_diff"`
	Verbose      bool   `yaml:"verbose"`
}

// LoadConfig reads a config file, rejecting unknown keys.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) apply(inv *Invocation) error {
	if c.Java != "" {
		inv.Java = c.Java
	}
	if c.Jar != "" {
		inv.Jar = c.Jar
	}
	if c.Interpreter != "" {
		inv.Interpreter = c.Interpreter
	}
	if c.ExpectedDir != "" {
		inv.Layout.ExpectedDir = c.ExpectedDir
	}
	if c.Manifest != "" {
		inv.Manifest = c.Manifest
	}
	if c.Trace != "" {
		inv.TracePath = c.Trace
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("config: timeout: %w", err)
		}
		inv.Timeout = d
	}
	inv.CheckIR = inv.CheckIR || c.CheckIR
	inv.History = inv.History || c.History
	inv.NoDiff = inv.NoDiff || c.NoDiff
	inv.Verbose = inv.Verbose || c.Verbose
	if c.NormalizeEOL {
		inv.Normalizer = "eol"
	}
	return nil
}
