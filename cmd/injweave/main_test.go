package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/go-yogan-inject/testutil"
)

const serviceSrc = "package app\n\ntype Service struct {\n\tName string `inject:\"\"`\n}\n\nfunc NewService() *Service { return &Service{} }\n"

func writePackage(t *testing.T, src string) string {
	t.Helper()
	return testutil.WriteTree(t, map[string]string{"service.go": src})
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func syntaxArgs(dir string, extra ...string) []string {
	args := []string{"--mode", "syntax", "--import-path", "example.com/app", "--log-level", "error"}
	return append(append(args, extra...), dir)
}

func TestExecute_WeavesPackage(t *testing.T) {
	dir := writePackage(t, serviceSrc)

	code, stdout, stderr := execute(t, syntaxArgs(dir)...)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "wrote "+filepath.Join(dir, "service.go"))
	assert.Contains(t, stdout, "1 packages, 1 types registered, 1 woven, 0 warnings")

	assert.Contains(t, testutil.ReadFile(t, dir, "service.go"), "inject.Woven(&Service{})")
	assert.FileExists(t, filepath.Join(dir, "zz_inject.gen.go"))
}

func TestExecute_DryRun(t *testing.T) {
	dir := writePackage(t, serviceSrc)

	code, stdout, _ := execute(t, syntaxArgs(dir, "--dry-run")...)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "would write")
	assert.NoFileExists(t, filepath.Join(dir, "zz_inject.gen.go"))
}

func TestExecute_WeaveFailureExitsOne(t *testing.T) {
	dir := writePackage(t, "package app\n\ntype Service struct {\n\tName string `inject:\"\"`\n}\n\nfunc MakeService() Service { return Service{} }\n")

	code, _, stderr := execute(t, syntaxArgs(dir)...)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "injweave:")
	assert.NoFileExists(t, filepath.Join(dir, "zz_inject.gen.go"))
}

func TestExecute_UnknownFlagExitsTwo(t *testing.T) {
	code, _, stderr := execute(t, "--no-such-flag")
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "Usage:")
}

func TestExecute_InvalidConfigExitsTwo(t *testing.T) {
	code, _, _ := execute(t, "--mode", "magic", t.TempDir())
	assert.Equal(t, exitUsage, code)
}

func TestExecute_MissingConfigFileExitsTwo(t *testing.T) {
	code, _, _ := execute(t, "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, exitUsage, code)
}

func TestExecute_ConfigFileAndEnvironment(t *testing.T) {
	dir := writePackage(t, serviceSrc)
	cfgFile := filepath.Join(t.TempDir(), "injweave.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`weaver:
  mode: syntax
  output: zz_wiring.gen.go
logger:
  level: error
`), 0o644))
	t.Setenv("INJWEAVE_WEAVER_IMPORT_PATH", "example.com/app")

	code, _, stderr := execute(t, "-c", cfgFile, dir)
	require.Equal(t, exitOK, code, stderr)
	assert.FileExists(t, filepath.Join(dir, "zz_wiring.gen.go"))
}

func TestLoadConfig_Priority(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "injweave.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("weaver:\n  concurrency: 3\n  output: zz_file.gen.go\n"), 0o644))
	t.Setenv("INJWEAVE_WEAVER_CONCURRENCY", "8")
	t.Setenv("INJWEAVE_WEAVER_DRY_RUN", "true")

	cmd := newRootCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--concurrency", "2"}))

	cfg, err := loadConfig(cfgFile, "INJWEAVE", cmd.Flags())
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Weaver.Concurrency, "flags beat the environment")
	assert.True(t, cfg.Weaver.DryRun, "bound environment keys keep their underscores")
	assert.Equal(t, "zz_file.gen.go", cfg.Weaver.Output)
	assert.Equal(t, "types", cfg.Weaver.Mode, "defaults fill unset keys")
}
