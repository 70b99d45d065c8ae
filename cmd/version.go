package cmd

import (
	"runtime"

	"grimm.is/converge/internal/brand"
)

// RunVersion prints build information.
func RunVersion(env *Env) {
	Printer.Fprintf(env.Stdout, "%s %s (commit %s, %s)\n", brand.Name, brand.Version, brand.GitCommit, runtime.Version())
}
