package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wasmloop/internal/config"
)

// stubExecutor records invocations and fails commands on demand.
type stubExecutor struct {
	calls  [][]string
	failOn string // binary name that should fail
	stderr string
	err    error
}

func (s *stubExecutor) Run(_ context.Context, _, name string, args ...string) (string, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	if name == s.failOn {
		return s.stderr, s.err
	}
	return "", nil
}

func (s *stubExecutor) invoked(name string) bool {
	for _, call := range s.calls {
		if call[0] == name {
			return true
		}
	}
	return false
}

func okVerifier(context.Context, string) error { return nil }

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Build.Package = "simple"
	return cfg
}

// writeEntryPage creates the configured entry page under dir.
func writeEntryPage(t *testing.T, dir string, cfg config.Config) string {
	t.Helper()
	path := filepath.Join(dir, cfg.Stage.EntryPage)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := "<!DOCTYPE html><title>simple</title>"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return content
}

func TestPipeline_RunsStepsInOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig()
	content := writeEntryPage(t, dir, cfg)

	exec := &stubExecutor{}
	p := New(cfg, dir, WithExecutor(exec), WithVerifier(okVerifier))

	require.NoError(t, p.Run(context.Background()))

	require.Len(t, exec.calls, 2)
	assert.Equal(t, []string{
		"cargo", "build", "--target", "wasm32-unknown-unknown", "-p", "simple",
	}, exec.calls[0])
	assert.Equal(t, []string{
		"wasm-bindgen",
		"--target", "web",
		"--no-typescript",
		"--debug",
		"--out-dir", "target/generated",
		"--out-name", "simple",
		filepath.Join("target", "wasm32-unknown-unknown", "debug", "simple.wasm"),
	}, exec.calls[1])

	staged, err := os.ReadFile(filepath.Join(dir, cfg.Bindgen.OutDir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, content, string(staged))
}

func TestPipeline_BuildFailureShortCircuits(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig()
	writeEntryPage(t, dir, cfg)

	exec := &stubExecutor{
		failOn: "cargo",
		stderr: "error: no such package",
		err:    errors.New("exit status 101"),
	}
	verified := false
	p := New(cfg, dir, WithExecutor(exec), WithVerifier(func(context.Context, string) error {
		verified = true
		return nil
	}))

	err := p.Run(context.Background())
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, KindBuild, stepErr.Kind)
	assert.Equal(t, "build", stepErr.Step)
	assert.Equal(t, "error: no such package", stepErr.Stderr)

	// Nothing downstream ran.
	assert.False(t, verified)
	assert.False(t, exec.invoked("wasm-bindgen"))
	assert.NoFileExists(t, filepath.Join(dir, cfg.Bindgen.OutDir, "index.html"))
}

func TestPipeline_VerifyFailureStopsBindgen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig()
	writeEntryPage(t, dir, cfg)

	exec := &stubExecutor{}
	p := New(cfg, dir, WithExecutor(exec), WithVerifier(func(context.Context, string) error {
		return errors.New("not a valid wasm module")
	}))

	err := p.Run(context.Background())
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, KindVerify, stepErr.Kind)
	assert.False(t, exec.invoked("wasm-bindgen"))
}

func TestPipeline_BindgenFailureStopsStaging(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig()
	writeEntryPage(t, dir, cfg)

	exec := &stubExecutor{
		failOn: "wasm-bindgen",
		stderr: "failed to read input file",
		err:    errors.New("exit status 1"),
	}
	p := New(cfg, dir, WithExecutor(exec), WithVerifier(okVerifier))

	err := p.Run(context.Background())
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, KindBindgen, stepErr.Kind)
	assert.NoFileExists(t, filepath.Join(dir, cfg.Bindgen.OutDir, "index.html"))
}

func TestPipeline_StageFailureOnMissingEntryPage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig()
	// Entry page deliberately absent.

	exec := &stubExecutor{}
	p := New(cfg, dir, WithExecutor(exec), WithVerifier(okVerifier))

	err := p.Run(context.Background())
	require.Error(t, err)

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, KindStage, stepErr.Kind)
}

func TestPipeline_StagingIsDeterministic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := testConfig()
	writeEntryPage(t, dir, cfg)

	exec := &stubExecutor{}
	p := New(cfg, dir, WithExecutor(exec), WithVerifier(okVerifier))

	require.NoError(t, p.Run(context.Background()))
	first, err := os.ReadFile(filepath.Join(dir, cfg.Bindgen.OutDir, "index.html"))
	require.NoError(t, err)

	require.NoError(t, p.Run(context.Background()))
	second, err := os.ReadFile(filepath.Join(dir, cfg.Bindgen.OutDir, "index.html"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestStepError_Message(t *testing.T) {
	t.Parallel()

	err := &StepError{
		Step:     "build",
		Kind:     KindBuild,
		ExitCode: 101,
		Err:      errors.New("exit status 101"),
	}
	assert.Equal(t, "build failed (exit 101): exit status 101", err.Error())

	err = &StepError{
		Step:     "stage",
		Kind:     KindStage,
		ExitCode: -1,
		Err:      errors.New("no such file"),
	}
	assert.Equal(t, "stage failed: no such file", err.Error())
}
