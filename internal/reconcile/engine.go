package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"

	"grimm.is/converge/internal/config"
	"grimm.is/converge/internal/firewalld"
)

// Recorder persists batch results, e.g. the audit history.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Entry is one result as handed to a Recorder.
type Entry struct {
	RunID  string
	At     time.Time
	DryRun bool
	Result Result
}

// Report is the result of applying a whole document.
type Report struct {
	RunID   string   `json:"run_id" yaml:"run_id"`
	DryRun  bool     `json:"dry_run" yaml:"dry_run"`
	Changed bool     `json:"changed" yaml:"changed"`
	Failed  bool     `json:"failed,omitempty" yaml:"failed,omitempty"`
	Results []Result `json:"results" yaml:"results"`
}

// Engine applies desired-state documents.
type Engine struct {
	client *firewalld.Client
	opts   []Option
	o      options
}

// NewEngine creates an engine. The options are also passed to the zone and
// service reconcilers it builds. The document's check_mode forces dry-run.
func NewEngine(client *firewalld.Client, opts ...Option) *Engine {
	return &Engine{
		client: client,
		opts:   opts,
		o:      buildOptions(opts),
	}
}

// Apply reconciles every zone and then every service of doc, in document
// order. The first failure stops the batch; results gathered so far are
// returned in the report together with the failed one.
func (e *Engine) Apply(ctx context.Context, doc *config.Document) (Report, error) {
	dryRun := e.o.dryRun || doc.CheckMode
	opts := append(append([]Option(nil), e.opts...), WithDryRun(dryRun))

	report := Report{
		RunID:  uuid.NewString(),
		DryRun: dryRun,
	}
	log := e.o.logger.WithFields(map[string]any{"run_id": report.RunID})
	log.Info("applying desired state", "zones", len(doc.Zones), "services", len(doc.Services), "dry_run", dryRun)

	zones := NewZoneReconciler(e.client, opts...)
	for _, spec := range doc.Zones {
		out, err := zones.Reconcile(ctx, spec)
		if err := e.finish(ctx, &report, spec.State, spec.Name, ResourceZone, out, err); err != nil {
			return report, err
		}
	}

	services := NewServiceReconciler(e.client, opts...)
	for _, spec := range doc.Services {
		out, err := services.Reconcile(ctx, spec)
		if err := e.finish(ctx, &report, spec.State, spec.Name, ResourceService, out, err); err != nil {
			return report, err
		}
	}

	log.Info("desired state applied", "changed", report.Changed, "resources", len(report.Results))
	return report, nil
}

func (e *Engine) finish(ctx context.Context, report *Report, state config.State, name string, kind ResourceKind, out Outcome, err error) error {
	if state == "" {
		state = config.StatePresent
	}

	var res Result
	if err != nil {
		res = Failed(state, name, kind, err)
		report.Failed = true
	} else {
		res = Succeeded(out)
		report.Changed = report.Changed || res.Changed
	}
	report.Results = append(report.Results, res)

	now := e.o.clock.Now()
	e.o.metrics.ObserveReconcile(string(kind), string(state), res.Changed, err, now)

	if res.Changed && !report.DryRun {
		e.o.logger.Audit("converge", string(kind)+":"+name, map[string]any{
			"run_id":   report.RunID,
			"state":    string(state),
			"commands": res.Commands,
		})
	}

	if e.o.recorder != nil {
		entry := Entry{RunID: report.RunID, At: now, DryRun: report.DryRun, Result: res}
		if rerr := e.o.recorder.Record(ctx, entry); rerr != nil {
			e.o.logger.Error("failed to record result", "kind", kind, "name", name, "error", rerr)
		}
	}
	return err
}
