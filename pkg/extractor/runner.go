package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a tool invocation when none is configured.
const DefaultTimeout = 30 * time.Minute

// waitDelay bounds how long output pipes held by orphaned children may outlive a
// killed tool.
const waitDelay = 5 * time.Second

// Command is one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Runner executes external tools.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, cmd Command) error

// Run implements Runner.
func (f RunnerFunc) Run(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// ExecRunner runs commands as child processes with a deadline. A non-zero exit is
// logged, not returned: the adapter detects failure through its missing or malformed
// output. Timeouts, cancellation and missing executables are returned.
type ExecRunner struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.WaitDelay = waitDelay
	var out tailBuffer
	c.Stdout = &out
	c.Stderr = &out

	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("running tool", "command", cmd.String(), "dir", cmd.Dir, "timeout", timeout)

	err := c.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", cmd.Name, ctxErr)
	}
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		logger.Warn("tool exited with error", "command", cmd.Name, "code", exitErr.ExitCode(), "output", out.String())
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrToolUnavailable, cmd.Name, err)
}

// tailBuffer keeps the last few KiB of process output for diagnostics.
type tailBuffer struct {
	buf bytes.Buffer
}

const tailLimit = 4 << 10

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	t.buf.Write(p)
	if extra := t.buf.Len() - tailLimit; extra > 0 {
		t.buf.Next(extra)
	}
	return n, nil
}

func (t *tailBuffer) String() string {
	return t.buf.String()
}
