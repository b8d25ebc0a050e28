package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Executor runs one external command to completion.
// This abstraction allows for testing with stub executors.
type Executor interface {
	// Run executes name with args in dir, returning captured stderr
	// alongside any execution error.
	Run(ctx context.Context, dir, name string, args ...string) (stderr string, err error)
}

// LocalExecutor runs commands on the local machine, streaming their output
// to the terminal while capturing stderr for error reporting.
type LocalExecutor struct{}

// Run executes the command, blocking until it exits.
func (LocalExecutor) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stdout = os.Stdout
	cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)

	err := cmd.Run()
	return strings.TrimRight(stderr.String(), "\n"), err
}

// exitCode extracts the process exit code from a command error.
// Returns -1 when the command never ran or was killed by a signal.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
