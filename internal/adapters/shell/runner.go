// Package shell provides the shell command runner adapter.
package shell

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/kilnbuild/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Runner = (*Runner)(nil)

// Runner executes target commands through the shell. Captured stdout is the
// target's produced value; stderr streams to the logger line by line.
type Runner struct {
	logger ports.Logger
	shell  string
}

// NewRunner creates a Runner using /bin/sh (or $SHELL when set).
func NewRunner(logger ports.Logger) *Runner {
	sh := os.Getenv("SHELL")
	if sh == "" {
		sh = "/bin/sh"
	}
	return &Runner{logger: logger, shell: sh}
}

// Run executes the command text and returns its captured stdout.
func (r *Runner) Run(ctx context.Context, command string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.shell, "-c", command) //nolint:gosec // user provided command

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &logWriter{logger: r.logger}
	cmd.Env = os.Environ()

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if ok := isExitError(err, &exitErr); ok {
			exitCode = exitErr.ExitCode()
		}
		return nil, zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
	}

	return stdout.Bytes(), nil
}

func isExitError(err error, target **exec.ExitError) bool {
	exitErr, ok := err.(*exec.ExitError) //nolint:errorlint // exec.Run returns the error unwrapped
	if ok {
		*target = exitErr
	}
	return ok
}

// logWriter forwards command stderr to the logger one line at a time.
type logWriter struct {
	logger ports.Logger
}

func (w *logWriter) Write(p []byte) (int, error) {
	for line := range strings.Lines(strings.TrimSuffix(string(p), "\n")) {
		w.logger.Warn(strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}
