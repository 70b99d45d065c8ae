package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"grimm.is/converge/internal/brand"
	"grimm.is/converge/internal/config"
)

// RunCheck validates a desired-state document without touching firewalld.
func RunCheck(_ context.Context, args []string, env *Env) error {
	fs := newFlagSet(env, "check")
	verbose := fs.Bool("verbose", false, "List every declared resource")
	fs.BoolVar(verbose, "v", false, "Verbose output (short)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := brand.DefaultConfigPath()
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}

	doc, err := config.LoadFile(path)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	Printer.Fprintf(env.Stdout, "Configuration valid!\n")
	Printer.Fprintf(env.Stdout, "Schema Version: %s\n", doc.SchemaVersion)
	Printer.Fprintf(env.Stdout, "Zones: %d\n", len(doc.Zones))
	Printer.Fprintf(env.Stdout, "Services: %d\n", len(doc.Services))
	if doc.CheckMode {
		Printer.Fprintf(env.Stdout, "Check mode: enabled\n")
	}

	if *verbose {
		Printer.Fprintln(env.Stdout)
		printResources(env, doc)
	}
	return nil
}

func printResources(env *Env, doc *config.Document) {
	w := tabwriter.NewWriter(env.Stdout, 0, 0, 3, ' ', 0)

	Printer.Fprintln(w, "ZONE\tSTATE\tFILE")
	for _, z := range doc.Zones {
		Printer.Fprintf(w, "%s\t%s\t%s\n", z.Name, z.State, dash(z.File))
	}
	Printer.Fprintln(w)
	w.Flush()

	Printer.Fprintln(w, "SERVICE\tSTATE\tPORT\tDESCRIPTION")
	for _, s := range doc.Services {
		Printer.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, s.State, dash(s.PortProto()), dash(s.Description))
	}
	w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
