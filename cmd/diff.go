package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"grimm.is/converge/internal/zoneinfo"
)

// RunZoneDiff compares a saved zone snapshot with the live permanent zone.
func RunZoneDiff(ctx context.Context, args []string, env *Env) error {
	fs := newFlagSet(env, "zone-diff")
	var cf commonFlags
	cf.register(fs)
	snapshot := fs.String("snapshot", "", "Saved --info-zone output (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *snapshot == "" {
		return fmt.Errorf("--snapshot is required")
	}

	raw, err := readInput(env, *snapshot)
	if err != nil {
		return err
	}
	saved, err := zoneinfo.Parse(raw)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}

	name := saved.Name
	if fs.NArg() > 0 {
		name = fs.Arg(0)
	}
	live, err := env.fetchZone(ctx, &cf, name)
	if err != nil {
		return err
	}

	a := string(recordsHCL([]*zoneinfo.Record{saved}))
	b := string(recordsHCL([]*zoneinfo.Record{live}))
	if a == b {
		Printer.Fprintln(env.Stdout, "No changes detected.")
		return nil
	}

	Printer.Fprintf(env.Stdout, "Zone %s differs from the snapshot:\n", name)
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: *snapshot,
		ToFile:   "live",
		Context:  3,
	})
	if err != nil {
		return err
	}
	Printer.Fprint(env.Stdout, strings.TrimPrefix(text, "\n"))

	return fmt.Errorf("zone %s differs", name)
}
