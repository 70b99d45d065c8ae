package firewalld

import (
	"context"
	"fmt"
	"strings"
	"time"

	"grimm.is/converge/internal/brand"
	"grimm.is/converge/internal/logging"
	"grimm.is/converge/internal/metrics"
)

// CommandError is returned when a command that must succeed exits non-zero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := e.Stderr
	if msg == "" {
		msg = e.Stdout
	}
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", e.ExitCode)
	}
	return fmt.Sprintf("%s: %s", strings.Join(e.Args, " "), msg)
}

// Client issues firewall-cmd invocations through a CommandRunner.
type Client struct {
	runner  CommandRunner
	binary  string
	logger  *logging.Logger
	metrics *metrics.Registry
}

// Option configures a Client.
type Option func(*Client)

// WithBinary overrides the firewall-cmd executable.
func WithBinary(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.binary = path
		}
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.WithComponent("firewalld")
		}
	}
}

// WithMetrics records every invocation in r.
func WithMetrics(r *metrics.Registry) Option {
	return func(c *Client) {
		c.metrics = r
	}
}

// NewClient creates a client. A nil runner means RealCommandRunner.
func NewClient(runner CommandRunner, opts ...Option) *Client {
	if runner == nil {
		runner = &RealCommandRunner{}
	}
	c := &Client{
		runner: runner,
		binary: brand.DefaultFirewallCmd,
		logger: logging.WithComponent("firewalld"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the executable the client invokes.
func (c *Client) Binary() string {
	return c.binary
}

// Run invokes firewall-cmd once. With requireSuccess a non-zero exit becomes
// a *CommandError; without it the result is returned whatever the exit code.
func (c *Client) Run(ctx context.Context, requireSuccess bool, args ...string) (Result, error) {
	cmdType := metrics.CommandProbe
	if requireSuccess {
		cmdType = metrics.CommandApply
	}

	start := time.Now()
	res, err := c.runner.Run(ctx, c.binary, args...)
	c.metrics.ObserveCommand(cmdType, res.ExitCode, err, time.Since(start))
	res.Args = append([]string(nil), args...)

	if err != nil {
		c.logger.Error("firewall-cmd could not be run", "args", strings.Join(args, " "), "error", err)
		return res, err
	}

	c.logger.Debug("firewall-cmd finished",
		"type", cmdType,
		"args", strings.Join(args, " "),
		"rc", res.ExitCode,
		"stdout", res.Stdout,
		"stderr", res.Stderr,
	)

	if requireSuccess && !res.OK() {
		return res, newCommandError(res)
	}
	return res, nil
}

func newCommandError(res Result) *CommandError {
	return &CommandError{
		Args:     res.Args,
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}
}

// Probe runs a read-only command. Its exit code is data, not an error.
func (c *Client) Probe(ctx context.Context, args ...string) (Result, error) {
	return c.Run(ctx, false, args...)
}

// Query runs a read-only command that must succeed, such as --get-ports on a
// service known to exist. It is counted as a probe.
func (c *Client) Query(ctx context.Context, args ...string) (Result, error) {
	res, err := c.Probe(ctx, args...)
	if err != nil {
		return res, err
	}
	if !res.OK() {
		return res, newCommandError(res)
	}
	return res, nil
}

// Apply runs a command that must succeed.
func (c *Client) Apply(ctx context.Context, args ...string) (Result, error) {
	return c.Run(ctx, true, args...)
}

// Exists probes a --path-zone / --path-service style command.
func (c *Client) Exists(ctx context.Context, args ...string) (bool, error) {
	res, err := c.Probe(ctx, args...)
	if err != nil {
		return false, err
	}
	return res.OK(), nil
}

// CommandLine renders args as the shell line that would be executed.
func (c *Client) CommandLine(args []string) string {
	return c.binary + " " + strings.Join(args, " ")
}
