package firewalld

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCommandRunner is a testify mock of CommandRunner. Expectations are set
// on the flattened call: m.On("Run", "firewall-cmd", "--permanent", ...).
type MockCommandRunner struct {
	mock.Mock
}

func (m *MockCommandRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	callArgs := make([]interface{}, 0, len(args)+1)
	callArgs = append(callArgs, name)
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	result := m.Called(callArgs...)
	res, _ := result.Get(0).(Result)
	return res, result.Error(1)
}

// OnCommand is shorthand for expecting firewall-cmd with args.
func (m *MockCommandRunner) OnCommand(args []string) *mock.Call {
	callArgs := make([]interface{}, 0, len(args)+1)
	callArgs = append(callArgs, "firewall-cmd")
	for _, a := range args {
		callArgs = append(callArgs, a)
	}
	return m.On("Run", callArgs...)
}

// Exit builds a Result for mock returns.
func Exit(code int, stdout, stderr string) Result {
	return Result{ExitCode: code, Stdout: stdout, Stderr: stderr}
}
