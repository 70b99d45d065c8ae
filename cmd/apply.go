package cmd

import (
	"context"
	"fmt"

	"grimm.is/converge/internal/brand"
	"grimm.is/converge/internal/config"
)

// RunApply converges every resource of a desired-state document.
func RunApply(ctx context.Context, args []string, env *Env) error {
	fs := newFlagSet(env, "apply")
	var cf commonFlags
	cf.register(fs)
	check := fs.Bool("check", false, "Report changes without applying them")
	fs.BoolVar(check, "n", false, "Check mode (short)")
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

	report, err := env.applyDocument(ctx, doc, &cf, *check)
	if len(report.Results) == 0 && err != nil {
		return err
	}

	if werr := writeOutput(env.Stdout, cf.output, report); werr != nil {
		return werr
	}
	if !cf.quiet {
		printSummary(env.Stderr, report.Results, report.DryRun)
	}
	if report.Failed {
		return errFailed
	}
	return err
}
