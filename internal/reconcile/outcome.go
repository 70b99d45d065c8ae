package reconcile

import (
	"context"
	"strings"

	"grimm.is/converge/internal/config"
	"grimm.is/converge/internal/firewalld"
)

// ResourceKind names the type of resource being reconciled.
type ResourceKind string

const (
	ResourceZone    ResourceKind = "zone"
	ResourceService ResourceKind = "service"
)

// Outcome is the verdict of one reconciliation.
type Outcome struct {
	Changed bool
	State   config.State
	Name    string
	Kind    ResourceKind

	// Commands holds the mutating command lines that were run, or in
	// dry-run mode the ones that would have been run.
	Commands []string
}

// fold merges one step's delta into the outcome.
func (o *Outcome) fold(changed bool) {
	o.Changed = o.Changed || changed
}

// mutator issues mutating commands, or only records them in dry-run mode.
type mutator struct {
	client *firewalld.Client
	dryRun bool
	out    *Outcome
}

// A command counts as a change only once it has completed.
func (m *mutator) apply(ctx context.Context, args []string) error {
	if !m.dryRun {
		if _, err := m.client.Apply(ctx, args...); err != nil {
			return err
		}
	}
	m.out.Commands = append(m.out.Commands, m.client.CommandLine(args))
	m.out.fold(true)
	return nil
}

// portList splits --get-ports output into its entries.
func portList(stdout string) []string {
	return strings.Fields(stdout)
}
