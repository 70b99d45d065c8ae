package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"grimm.is/converge/internal/audit"
	"grimm.is/converge/internal/brand"
)

// RunHistory lists recorded reconciliations, newest first.
func RunHistory(ctx context.Context, args []string, env *Env) error {
	fs := newFlagSet(env, "history")
	dbPath := fs.String("audit-db", brand.DefaultAuditDBPath(), "History database")
	output := fs.String("output", "table", "Output format: table, json or yaml")
	fs.StringVar(output, "o", "table", "Output format (short)")
	var f audit.Filter
	fs.StringVar(&f.RunID, "run", "", "Only this run id")
	fs.StringVar(&f.Kind, "kind", "", "Only zone or service results")
	fs.StringVar(&f.Name, "name", "", "Only this resource")
	fs.IntVar(&f.Limit, "limit", 20, "Maximum number of entries (0 for all)")
	fs.IntVar(&f.Limit, "n", 20, "Maximum number of entries (short)")
	since := fs.Duration("since", 0, "Only entries newer than this, e.g. 24h")
	prune := fs.Duration("prune", 0, "Delete entries older than this instead of listing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := audit.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if *prune > 0 {
		n, err := store.Prune(ctx, time.Now().Add(-*prune))
		if err != nil {
			return err
		}
		Printer.Fprintf(env.Stdout, "Pruned %d entries\n", n)
		return nil
	}

	if *since > 0 {
		f.Since = time.Now().Add(-*since)
	}
	events, err := store.Query(ctx, f)
	if err != nil {
		return err
	}

	if *output != "table" {
		if events == nil {
			events = []audit.Event{}
		}
		return writeOutput(env.Stdout, *output, events)
	}

	w := tabwriter.NewWriter(env.Stdout, 0, 0, 2, ' ', 0)
	Printer.Fprintln(w, "TIME\tRUN\tKIND\tNAME\tSTATE\tRESULT")
	for _, e := range events {
		Printer.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format(time.RFC3339), shortRunID(e.RunID), e.Kind, e.Name, e.State, verdict(e))
	}
	return w.Flush()
}

func verdict(e audit.Event) string {
	v := "ok"
	switch {
	case e.Failed:
		v = fmt.Sprintf("failed (%s)", e.ErrorKind)
	case e.Changed:
		v = "changed"
	}
	if e.DryRun {
		v += " [check]"
	}
	return v
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
