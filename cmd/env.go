package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"

	"grimm.is/converge/internal/audit"
	"grimm.is/converge/internal/brand"
	"grimm.is/converge/internal/config"
	"grimm.is/converge/internal/firewalld"
	"grimm.is/converge/internal/i18n"
	"grimm.is/converge/internal/logging"
	"grimm.is/converge/internal/metrics"
	"grimm.is/converge/internal/reconcile"
)

// Printer is used for all user-facing CLI output
var Printer = i18n.NewCLIPrinter()

// Env carries the process streams and the command runner, so commands can
// be driven from tests.
type Env struct {
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Runner  firewalld.CommandRunner // nil runs the real firewall-cmd
	Metrics *metrics.Registry
}

// DefaultEnv wires the process streams and the global metrics registry.
func DefaultEnv() *Env {
	return &Env{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Metrics: metrics.Get(),
	}
}

// commonFlags are accepted by every command that talks to firewalld.
type commonFlags struct {
	firewallCmd     string
	output          string
	quiet           bool
	logLevel        string
	logJSON         bool
	auditDB         string
	metricsTextfile string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.firewallCmd, "firewall-cmd", "", "Path to firewall-cmd (default "+brand.DefaultFirewallCmd+")")
	fs.StringVar(&c.output, "output", "json", "Output format: json or yaml")
	fs.StringVar(&c.output, "o", "json", "Output format (short)")
	fs.BoolVar(&c.quiet, "quiet", false, "Suppress the summary on stderr")
	fs.BoolVar(&c.quiet, "q", false, "Suppress the summary (short)")
	fs.StringVar(&c.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	fs.BoolVar(&c.logJSON, "log-json", false, "Write logs as JSON")
	fs.StringVar(&c.auditDB, "audit-db", "", "Record results in this history database")
	fs.StringVar(&c.metricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file")
}

// logger builds the process logger from the flags and installs it as default.
func (c *commonFlags) logger(env *Env) (*logging.Logger, error) {
	level, err := logging.ParseLevel(c.logLevel)
	if err != nil {
		return nil, err
	}
	logging.SetPrefix(brand.BinaryName)
	l := logging.New(logging.Config{
		Level:  level,
		Output: env.Stderr,
		JSON:   c.logJSON,
	})
	logging.SetDefault(l)
	return l, nil
}

func newFlagSet(env *Env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	return fs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// applyDocument runs the engine over doc with the sinks selected by the
// flags or, failing those, by the document.
func (env *Env) applyDocument(ctx context.Context, doc *config.Document, cf *commonFlags, dryRun bool) (reconcile.Report, error) {
	logger, err := cf.logger(env)
	if err != nil {
		return reconcile.Report{}, err
	}

	client := firewalld.NewClient(env.Runner,
		firewalld.WithBinary(firstNonEmpty(cf.firewallCmd, doc.FirewallCmd)),
		firewalld.WithLogger(logger),
		firewalld.WithMetrics(env.Metrics),
	)

	opts := []reconcile.Option{
		reconcile.WithLogger(logger),
		reconcile.WithDryRun(dryRun),
		reconcile.WithMetrics(env.Metrics),
	}

	if path := firstNonEmpty(cf.auditDB, doc.AuditDB); path != "" {
		store, err := audit.Open(path)
		if err != nil {
			return reconcile.Report{}, err
		}
		defer store.Close()
		opts = append(opts, reconcile.WithRecorder(store))
	}

	report, runErr := reconcile.NewEngine(client, opts...).Apply(ctx, doc)

	if path := firstNonEmpty(cf.metricsTextfile, doc.MetricsTextfile); path != "" && env.Metrics != nil {
		if err := env.Metrics.WriteTextfile(path); err != nil {
			logger.Warn("metrics not written", "path", path, "error", err)
		}
	}
	return report, runErr
}

// writeOutput encodes v on w as JSON or YAML.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unsupported output format %q (choices: json, yaml)", format)
}
