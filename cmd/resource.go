package cmd

import (
	"context"
	"errors"
	"fmt"

	"grimm.is/converge/internal/config"
	"grimm.is/converge/internal/reconcile"
)

// errFailed is returned when the printed result already carries the failure.
var errFailed = errors.New("reconciliation failed")

// RunZone converges a single zone from command-line options.
func RunZone(ctx context.Context, args []string, env *Env) error {
	fs := newFlagSet(env, "zone")
	var cf commonFlags
	cf.register(fs)

	var spec config.ZoneSpec
	var state string
	fs.StringVar(&spec.Name, "zone", "", "Name of the zone (required)")
	fs.StringVar(&spec.Name, "z", "", "Name of the zone (short)")
	fs.StringVar(&state, "state", string(config.StatePresent), "Desired state: present or absent")
	fs.StringVar(&spec.File, "file", "", "Zone XML file used when the zone is created")
	check := fs.Bool("check", false, "Report changes without applying them")
	fs.BoolVar(check, "n", false, "Check mode (short)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if spec.Name == "" {
		return fmt.Errorf("--zone is required")
	}
	spec.State = config.State(state)

	doc := &config.Document{Zones: []config.ZoneSpec{spec}}
	doc.ApplyDefaults()
	return env.runSingle(ctx, doc, &cf, *check)
}

// RunService converges a single service from command-line options.
func RunService(ctx context.Context, args []string, env *Env) error {
	fs := newFlagSet(env, "service")
	var cf commonFlags
	cf.register(fs)

	var spec config.ServiceSpec
	var state string
	fs.StringVar(&spec.Name, "service", "", "Name of the service (required)")
	fs.StringVar(&spec.Name, "s", "", "Name of the service (short)")
	fs.StringVar(&state, "state", string(config.StatePresent), "Desired state: present or absent")
	fs.StringVar(&spec.Port, "port", "", "Port or port range, e.g. 8400 or 8000-8010")
	fs.StringVar(&spec.Protocol, "protocol", "", "Protocol: tcp or udp")
	fs.StringVar(&spec.Description, "description", "", "Service description")
	fs.StringVar(&spec.ShortDescription, "short-description", "", "Short service description")
	check := fs.Bool("check", false, "Report changes without applying them")
	fs.BoolVar(check, "n", false, "Check mode (short)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if spec.Name == "" {
		return fmt.Errorf("--service is required")
	}
	spec.State = config.State(state)

	doc := &config.Document{Services: []config.ServiceSpec{spec}}
	doc.ApplyDefaults()
	return env.runSingle(ctx, doc, &cf, *check)
}

func (env *Env) runSingle(ctx context.Context, doc *config.Document, cf *commonFlags, dryRun bool) error {
	report, err := env.applyDocument(ctx, doc, cf, dryRun)
	if len(report.Results) == 0 {
		// Nothing was attempted: the sinks could not be set up.
		return err
	}
	res := report.Results[0]

	if werr := writeOutput(env.Stdout, cf.output, res); werr != nil {
		return werr
	}
	if !cf.quiet {
		printSummary(env.Stderr, []reconcile.Result{res}, report.DryRun)
	}
	if res.Failed {
		return errFailed
	}
	return err
}
