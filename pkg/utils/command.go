// pkg/utils/command.go

package utils

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

const (
	// ExitNotFound is the shell convention for "command not found". Checks
	// treat it as "tool absent" and skip cleanly instead of failing.
	ExitNotFound = 127

	// ExitTimeout mirrors the coreutils timeout(1) convention for a command
	// that was killed after exceeding its deadline.
	ExitTimeout = 124
)

// DefaultCommandTimeout bounds a single external invocation so one hung
// vendor tool cannot stall the whole run.
const DefaultCommandTimeout = 60 * time.Second

// Runner executes a shell command and returns its combined stdout/stderr
// text and a normalized exit code.
type Runner interface {
	Run(command string) (string, int)
}

// ShellRunner runs commands through bash so pipes and redirection in the
// command string work. Standard error is merged into standard output, and
// LC_ALL=C keeps vendor tool output parseable regardless of locale.
type ShellRunner struct {
	Timeout time.Duration
}

// NewShellRunner creates a runner with the given per-command timeout.
// A non-positive timeout falls back to DefaultCommandTimeout.
func NewShellRunner(timeout time.Duration) *ShellRunner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &ShellRunner{Timeout: timeout}
}

// Run executes the command and returns its combined output and exit code.
// It never returns an error: failures are encoded in the exit code so
// callers see diagnostic output even when the command fails.
func (r *ShellRunner) Run(command string) (string, int) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", "-c", "LC_ALL=C "+command)
	output, err := cmd.CombinedOutput()
	text := strings.TrimSpace(string(output))

	if ctx.Err() == context.DeadlineExceeded {
		return text, ExitTimeout
	}
	if err == nil {
		return text, 0
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			// Killed by a signal without a normal exit status.
			return text, 1
		}
		return text, code
	}
	return text, 1
}
