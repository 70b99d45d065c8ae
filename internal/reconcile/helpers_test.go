package reconcile

import (
	"io"

	"grimm.is/converge/internal/firewalld"
	"grimm.is/converge/internal/logging"
)

func quietLogger() *logging.Logger {
	return logging.New(logging.Config{Level: logging.LevelError, Output: io.Discard})
}

func newClient(runner firewalld.CommandRunner) *firewalld.Client {
	return firewalld.NewClient(runner, firewalld.WithLogger(quietLogger()))
}

func cmdLine(args []string) string {
	return newClient(nil).CommandLine(args)
}
