package firewalld

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("Skipping test: requires sh")
	}
}

func TestRealCommandRunner_CapturesOutputAndExitCode(t *testing.T) {
	requireShell(t)
	r := &RealCommandRunner{}

	res, err := r.Run(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "out", res.Stdout)
	assert.Equal(t, "err", res.Stderr)
}

func TestRealCommandRunner_Success(t *testing.T) {
	requireShell(t)
	r := &RealCommandRunner{}

	res, err := r.Run(context.Background(), "sh", "-c", "printf '\\nline one\\nline two\\n\\n'")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "line one\nline two", res.Stdout)
}

func TestRealCommandRunner_MissingBinary(t *testing.T) {
	r := &RealCommandRunner{}
	_, err := r.Run(context.Background(), "/nonexistent/firewall-cmd", "--state")
	assert.Error(t, err)
}

func TestRealCommandRunner_CancelledContext(t *testing.T) {
	requireShell(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&RealCommandRunner{}).Run(ctx, "sh", "-c", "sleep 5")
	assert.ErrorIs(t, err, context.Canceled)
}
