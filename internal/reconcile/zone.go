package reconcile

import (
	"context"
	"fmt"

	"grimm.is/converge/internal/config"
	"grimm.is/converge/internal/firewalld"
	"grimm.is/converge/internal/zoneinfo"
)

// ZoneReconciler creates and deletes permanent zones.
type ZoneReconciler struct {
	client *firewalld.Client
	opts   options
}

// NewZoneReconciler creates a zone reconciler.
func NewZoneReconciler(client *firewalld.Client, opts ...Option) *ZoneReconciler {
	return &ZoneReconciler{
		client: client,
		opts:   buildOptions(opts),
	}
}

// Reconcile converges one zone. Zone attributes other than existence are
// not managed.
func (r *ZoneReconciler) Reconcile(ctx context.Context, spec config.ZoneSpec) (Outcome, error) {
	spec.ApplyDefaults()
	out := Outcome{State: spec.State, Name: spec.Name, Kind: ResourceZone}

	if err := spec.Validate(); err != nil {
		return out, err
	}

	exists, err := r.client.Exists(ctx, firewalld.PathZone(spec.Name)...)
	if err != nil {
		return out, fmt.Errorf("reconcile zone %q: %w", spec.Name, err)
	}

	m := &mutator{client: r.client, dryRun: r.opts.dryRun, out: &out}
	switch spec.State {
	case config.StatePresent:
		if exists {
			break
		}
		args := firewalld.NewZone(spec.Name)
		if spec.File != "" {
			args = firewalld.NewZoneFromFile(spec.File)
		}
		err = m.apply(ctx, args)
	case config.StateAbsent:
		if !exists {
			break
		}
		err = m.apply(ctx, firewalld.DeleteZone(spec.Name))
	}
	if err != nil {
		return out, fmt.Errorf("reconcile zone %q: %w", spec.Name, err)
	}

	r.opts.logger.Debug("zone reconciled",
		"zone", spec.Name,
		"state", spec.State,
		"existed", exists,
		"changed", out.Changed,
		"dry_run", r.opts.dryRun,
	)
	return out, nil
}

// Info fetches and parses the permanent configuration of a zone.
func (r *ZoneReconciler) Info(ctx context.Context, name string) (*zoneinfo.Record, error) {
	res, err := r.client.Query(ctx, firewalld.InfoZone(name)...)
	if err != nil {
		return nil, fmt.Errorf("zone info %q: %w", name, err)
	}
	rec, err := zoneinfo.Parse(res.Stdout)
	if err != nil {
		return nil, fmt.Errorf("zone info %q: %w", name, err)
	}
	return rec, nil
}
