package firewalld

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result is the outcome of one firewall-cmd invocation.
type Result struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

// OK reports whether the command exited with status 0.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// CommandRunner runs an external command to completion.
// A non-zero exit status is not an error at this level; it is reported in
// Result.ExitCode. Errors mean the process could not be run at all.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// RealCommandRunner executes commands with os/exec.
type RealCommandRunner struct{}

// Run executes name with args, capturing stdout and stderr separately.
func (r *RealCommandRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Args:   append([]string(nil), args...),
		Stdout: trimNewlines(stdout.String()),
		Stderr: trimNewlines(stderr.String()),
	}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("command %s interrupted: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("command %s failed to run: %w", name, err)
}

// trimNewlines strips leading and trailing newlines only; firewall-cmd output
// such as descriptions may legitimately carry other whitespace.
func trimNewlines(s string) string {
	return strings.Trim(s, "\n")
}
