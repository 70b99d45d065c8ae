package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once     sync.Once
	registry *Registry
)

// Command types.
const (
	CommandProbe = "probe"
	CommandApply = "apply"
)

// Registry holds all convergence metrics on a private prometheus registry,
// so a one-shot run exports only what it produced.
type Registry struct {
	reg *prometheus.Registry

	Reconciliations *prometheus.CounterVec
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	LastRun         prometheus.Gauge
	LastRunChanged  prometheus.Gauge
}

// Get returns the process-wide registry, creating it if necessary.
func Get() *Registry {
	once.Do(func() {
		registry = New()
	})
	return registry
}

// New creates an independent registry. Tests use this to avoid shared state.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	r := &Registry{reg: reg}

	r.Reconciliations = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "converge_reconciliations_total",
		Help: "Reconciliations by resource kind, desired state and result",
	}, []string{"kind", "state", "result"})

	r.Commands = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "converge_commands_total",
		Help: "firewall-cmd invocations by type (probe/apply) and result",
	}, []string{"type", "result"})

	r.CommandDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "converge_command_duration_seconds",
		Help:    "firewall-cmd invocation latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"type"})

	r.LastRun = factory.NewGauge(prometheus.GaugeOpts{
		Name: "converge_last_run_timestamp_seconds",
		Help: "Unix timestamp of the last finished reconciliation",
	})

	r.LastRunChanged = factory.NewGauge(prometheus.GaugeOpts{
		Name: "converge_last_run_changed",
		Help: "1 if the last reconciliation changed (or would change) state",
	})

	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveCommand records one firewall-cmd invocation.
func (r *Registry) ObserveCommand(cmdType string, exitCode int, err error, d time.Duration) {
	if r == nil {
		return
	}
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case exitCode != 0:
		result = "nonzero"
	}
	r.Commands.WithLabelValues(cmdType, result).Inc()
	r.CommandDuration.WithLabelValues(cmdType).Observe(d.Seconds())
}

// ObserveReconcile records the verdict of one reconciliation.
func (r *Registry) ObserveReconcile(kind, state string, changed bool, err error, at time.Time) {
	if r == nil {
		return
	}
	result := "unchanged"
	switch {
	case err != nil:
		result = "failed"
	case changed:
		result = "changed"
	}
	r.Reconciliations.WithLabelValues(kind, state, result).Inc()
	r.LastRun.Set(float64(at.Unix()))
	if changed && err == nil {
		r.LastRunChanged.Set(1)
	} else {
		r.LastRunChanged.Set(0)
	}
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

