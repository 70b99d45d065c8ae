package reconcile

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"grimm.is/converge/internal/config"
	"grimm.is/converge/internal/firewalld"
)

// ServiceReconciler creates, updates and deletes permanent services and
// their port, description and short description.
type ServiceReconciler struct {
	client *firewalld.Client
	opts   options
}

// NewServiceReconciler creates a service reconciler.
func NewServiceReconciler(client *firewalld.Client, opts ...Option) *ServiceReconciler {
	return &ServiceReconciler{
		client: client,
		opts:   buildOptions(opts),
	}
}

// Reconcile converges one service. The spec is validated before any command
// is issued.
func (r *ServiceReconciler) Reconcile(ctx context.Context, spec config.ServiceSpec) (Outcome, error) {
	spec.ApplyDefaults()
	out := Outcome{State: spec.State, Name: spec.Name, Kind: ResourceService}

	if err := spec.Validate(); err != nil {
		return out, err
	}

	m := &mutator{client: r.client, dryRun: r.opts.dryRun, out: &out}
	var err error
	switch spec.State {
	case config.StatePresent:
		err = r.present(ctx, spec, m)
	case config.StateAbsent:
		err = r.absent(ctx, spec, m)
	}
	if err != nil {
		return out, fmt.Errorf("reconcile service %q: %w", spec.Name, err)
	}

	r.opts.logger.Debug("service reconciled",
		"service", spec.Name,
		"state", spec.State,
		"port", spec.PortProto(),
		"changed", out.Changed,
		"dry_run", r.opts.dryRun,
	)
	return out, nil
}

func (r *ServiceReconciler) exists(ctx context.Context, name string) (bool, error) {
	return r.client.Exists(ctx, firewalld.PathService(name)...)
}

func (r *ServiceReconciler) present(ctx context.Context, spec config.ServiceSpec, m *mutator) error {
	exists, err := r.exists(ctx, spec.Name)
	if err != nil {
		return err
	}
	if !exists {
		if err := m.apply(ctx, firewalld.NewService(spec.Name)); err != nil {
			return err
		}
	}

	// A service that was only planned cannot be probed any further. Every
	// remaining step that would act is reported as a planned command.
	planned := !exists && m.dryRun

	if err := r.ensurePort(ctx, spec, m, planned); err != nil {
		return err
	}

	if spec.Description != "" {
		err := r.ensureText(ctx, spec.Name, spec.Description, m, planned,
			firewalld.GetDescription(spec.Name), firewalld.SetDescription(spec.Name, spec.Description))
		if err != nil {
			return err
		}
	}

	if spec.ShortDescription != "" {
		err := r.ensureText(ctx, spec.Name, spec.ShortDescription, m, planned,
			firewalld.GetShort(spec.Name), firewalld.SetShort(spec.Name, spec.ShortDescription))
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ServiceReconciler) ensurePort(ctx context.Context, spec config.ServiceSpec, m *mutator, planned bool) error {
	add := firewalld.AddPort(spec.Name, spec.Port, spec.Protocol)
	if planned {
		return m.apply(ctx, add)
	}

	res, err := r.client.Probe(ctx, firewalld.QueryPort(spec.Name, spec.Port, spec.Protocol)...)
	if err != nil {
		return err
	}
	switch {
	case res.Stdout == "no":
		return m.apply(ctx, add)
	case res.OK():
		return nil
	}
	return &firewalld.CommandError{
		Args:     res.Args,
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}
}

// ensureText converges a description-like attribute read by get and written
// by set.
func (r *ServiceReconciler) ensureText(ctx context.Context, name, want string, m *mutator, planned bool, get, set []string) error {
	if planned {
		return m.apply(ctx, set)
	}

	// The service may have been created earlier in this run.
	exists, err := r.exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return m.apply(ctx, set)
	}

	res, err := r.client.Query(ctx, get...)
	if err != nil {
		return err
	}
	if res.Stdout == want {
		return nil
	}
	return m.apply(ctx, set)
}

func (r *ServiceReconciler) absent(ctx context.Context, spec config.ServiceSpec, m *mutator) error {
	exists, err := r.exists(ctx, spec.Name)
	if err != nil || !exists {
		return err
	}

	if spec.Port == "" {
		return m.apply(ctx, firewalld.DeleteService(spec.Name))
	}

	res, err := r.client.Query(ctx, firewalld.GetPorts(spec.Name)...)
	if err != nil {
		return err
	}
	ports := portList(res.Stdout)

	var remove []string
	if spec.Port == config.PortAll {
		suffix := "/" + spec.Protocol
		for _, p := range ports {
			if strings.HasSuffix(p, suffix) {
				remove = append(remove, p)
			}
		}
	} else if pp := spec.PortProto(); slices.Contains(ports, pp) {
		remove = []string{pp}
	}

	switch {
	case len(remove) == 0:
		return nil
	case len(remove) == len(ports):
		// Removing the last port removes the service.
		return m.apply(ctx, firewalld.DeleteService(spec.Name))
	}

	for _, p := range remove {
		port, proto, _ := strings.Cut(p, "/")
		if err := m.apply(ctx, firewalld.RemovePort(spec.Name, port, proto)); err != nil {
			return err
		}
	}
	return nil
}
