package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mjtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig_AllKeys(t *testing.T) {
	path := writeConfig(t, `java: /opt/jdk/bin/java
jar: build/mjavac.jar
interpreter: lli-15
expected_dir: golden
manifest: expect.properties
timeout: 1m
check_ir: true
normalize_eol: true
history: true
trace: out/trace.json
no_diff: true
verbose: true
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	var inv Invocation
	require.NoError(t, cfg.apply(&inv))
	assert.Equal(t, "/opt/jdk/bin/java", inv.Java)
	assert.Equal(t, "build/mjavac.jar", inv.Jar)
	assert.Equal(t, "lli-15", inv.Interpreter)
	assert.Equal(t, "golden", inv.Layout.ExpectedDir)
	assert.Equal(t, "expect.properties", inv.Manifest)
	assert.Equal(t, time.Minute, inv.Timeout)
	assert.Equal(t, "out/trace.json", inv.TracePath)
	assert.Equal(t, "eol", inv.Normalizer)
	assert.True(t, inv.CheckIR)
	assert.True(t, inv.History)
	assert.True(t, inv.NoDiff)
	assert.True(t, inv.Verbose)
}

func TestLoadConfig_Empty(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfig_UnknownKey(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "jar: a.jar\ncolour: blue\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestConfig_BadTimeout(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "timeout: eventually\n"))
	require.NoError(t, err)
	assert.Error(t, cfg.apply(&Invocation{}))
}
