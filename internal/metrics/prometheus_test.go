package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCommand(t *testing.T) {
	r := New()

	r.ObserveCommand(CommandProbe, 0, nil, 10*time.Millisecond)
	r.ObserveCommand(CommandProbe, 1, nil, 10*time.Millisecond)
	r.ObserveCommand(CommandApply, 0, errors.New("exec: not found"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.Commands.WithLabelValues(CommandProbe, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Commands.WithLabelValues(CommandProbe, "nonzero")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Commands.WithLabelValues(CommandApply, "error")))
}

func TestObserveReconcile(t *testing.T) {
	r := New()
	now := time.Unix(1700000000, 0)

	r.ObserveReconcile("zone", "present", true, nil, now)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Reconciliations.WithLabelValues("zone", "present", "changed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.LastRunChanged))
	assert.Equal(t, float64(now.Unix()), testutil.ToFloat64(r.LastRun))

	r.ObserveReconcile("service", "absent", true, errors.New("boom"), now)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Reconciliations.WithLabelValues("service", "absent", "failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.LastRunChanged))
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveCommand(CommandProbe, 0, nil, 0)
		r.ObserveReconcile("zone", "present", false, nil, time.Now())
	})
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.ObserveCommand(CommandApply, 0, nil, time.Second)

	path := filepath.Join(t.TempDir(), "converge.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `converge_commands_total{result="ok",type="apply"} 1`)
}

func TestGetIsSingleton(t *testing.T) {
	assert.Same(t, Get(), Get())
}
