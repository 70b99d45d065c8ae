package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"

	"grimm.is/converge/internal/firewalld"
	"grimm.is/converge/internal/i18n"
	"grimm.is/converge/internal/metrics"
)

func TestMain(m *testing.M) {
	Printer = i18n.NewPrinter(language.English)
	os.Exit(m.Run())
}

type testEnv struct {
	*Env
	sim    *firewalld.SimRunner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestEnv() *testEnv {
	sim := firewalld.NewSimRunner()
	var stdout, stderr bytes.Buffer
	return &testEnv{
		Env: &Env{
			Stdin:   strings.NewReader(""),
			Stdout:  &stdout,
			Stderr:  &stderr,
			Runner:  sim,
			Metrics: metrics.New(),
		},
		sim:    sim,
		stdout: &stdout,
		stderr: &stderr,
	}
}

func decodeJSON(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m), string(data))
	return m
}

func TestRunZone(t *testing.T) {
	te := newTestEnv()
	ctx := context.Background()

	require.NoError(t, RunZone(ctx, []string{"--zone", "dmz"}, te.Env))

	out := decodeJSON(t, te.stdout.Bytes())
	assert.Equal(t, "dmz", out["zone"])
	assert.Equal(t, "present", out["state"])
	assert.Equal(t, true, out["changed"])
	assert.True(t, te.sim.HasZone("dmz"))
	assert.Contains(t, te.stderr.String(), "changed: zone dmz (state=present)")
	assert.Contains(t, te.stderr.String(), "ran: firewall-cmd --permanent --new-zone=dmz")

	te.stdout.Reset()
	require.NoError(t, RunZone(ctx, []string{"--zone", "dmz", "--quiet"}, te.Env))
	out = decodeJSON(t, te.stdout.Bytes())
	assert.Equal(t, false, out["changed"])
}

func TestRunZone_Check(t *testing.T) {
	te := newTestEnv()

	require.NoError(t, RunZone(context.Background(), []string{"-z", "dmz", "--check"}, te.Env))

	out := decodeJSON(t, te.stdout.Bytes())
	assert.Equal(t, true, out["changed"])
	assert.False(t, te.sim.HasZone("dmz"))
	assert.Empty(t, te.sim.Mutations())
	assert.Contains(t, te.stderr.String(), "would run: firewall-cmd --permanent --new-zone=dmz")
}

func TestRunZone_RequiresName(t *testing.T) {
	te := newTestEnv()
	err := RunZone(context.Background(), []string{"--state", "absent"}, te.Env)
	assert.EqualError(t, err, "--zone is required")
}

func TestRunService(t *testing.T) {
	te := newTestEnv()

	err := RunService(context.Background(), []string{
		"--service", "test",
		"--port", "8400",
		"--protocol", "tcp",
		"--description", "Test Protocol",
		"--short-description", "Test",
		"--output", "yaml",
		"-q",
	}, te.Env)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, yaml.Unmarshal(te.stdout.Bytes(), &out))
	assert.Equal(t, "test", out["service"])
	assert.Equal(t, true, out["changed"])
	assert.NotContains(t, te.stderr.String(), "changed: service")

	svc, ok := te.sim.Service("test")
	require.True(t, ok)
	assert.Equal(t, []string{"8400/tcp"}, svc.Ports)
	assert.Equal(t, "Test", svc.Short)
}

func TestRunService_ValidationFailure(t *testing.T) {
	te := newTestEnv()

	err := RunService(context.Background(), []string{"--service", "test", "--protocol", "tcp"}, te.Env)
	assert.ErrorIs(t, err, errFailed)

	out := decodeJSON(t, te.stdout.Bytes())
	assert.Equal(t, true, out["failed"])
	assert.Equal(t, false, out["changed"])
	assert.Contains(t, out["msg"], "port and protocol are required when creating a service")
	trace, ok := out["failure_trace"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "validation", trace["kind"])
	assert.Equal(t, "port", trace["field"])

	assert.Empty(t, te.sim.Calls())
	assert.Contains(t, te.stderr.String(), "failed: service test")
}

func TestRunService_AbsentRemovesPort(t *testing.T) {
	te := newTestEnv()
	te.sim.AddService("test", firewalld.SimService{Ports: []string{"8400/tcp", "8401/tcp"}})

	err := RunService(context.Background(), []string{
		"--service", "test", "--state", "absent", "--port", "8400", "--protocol", "tcp", "-q",
	}, te.Env)
	require.NoError(t, err)

	svc, ok := te.sim.Service("test")
	require.True(t, ok)
	assert.Equal(t, []string{"8401/tcp"}, svc.Ports)
}

const applyHCL = `
zone "clients" {}

service "test" {
  port        = "8400"
  protocol    = "tcp"
  description = "Test Protocol"
}
`

func TestRunApply_RecordsHistory(t *testing.T) {
	te := newTestEnv()
	dir := t.TempDir()
	docPath := filepath.Join(dir, "converge.hcl")
	dbPath := filepath.Join(dir, "history.db")
	promPath := filepath.Join(dir, "converge.prom")
	require.NoError(t, os.WriteFile(docPath, []byte(applyHCL), 0o644))

	err := RunApply(context.Background(), []string{
		"--audit-db", dbPath, "--metrics-textfile", promPath, "-q", docPath,
	}, te.Env)
	require.NoError(t, err)

	report := decodeJSON(t, te.stdout.Bytes())
	assert.Equal(t, true, report["changed"])
	assert.Len(t, report["results"], 2)
	assert.True(t, te.sim.HasZone("clients"))

	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "converge_")

	te.stdout.Reset()
	require.NoError(t, RunHistory(context.Background(), []string{"--audit-db", dbPath, "-o", "json"}, te.Env))

	var events []map[string]any
	require.NoError(t, json.Unmarshal(te.stdout.Bytes(), &events))
	require.Len(t, events, 2)
	assert.Equal(t, report["run_id"], events[0]["run_id"])

	te.stdout.Reset()
	require.NoError(t, RunHistory(context.Background(), []string{"--audit-db", dbPath, "--kind", "zone"}, te.Env))
	table := te.stdout.String()
	assert.Contains(t, table, "KIND")
	assert.Contains(t, table, "clients")
	assert.NotContains(t, table, "test")
}

func TestRunApply_CheckMode(t *testing.T) {
	te := newTestEnv()
	docPath := filepath.Join(t.TempDir(), "converge.hcl")
	require.NoError(t, os.WriteFile(docPath, []byte(applyHCL), 0o644))

	require.NoError(t, RunApply(context.Background(), []string{"--check", docPath}, te.Env))

	report := decodeJSON(t, te.stdout.Bytes())
	assert.Equal(t, true, report["dry_run"])
	assert.Empty(t, te.sim.Mutations())
	assert.Contains(t, te.stderr.String(), "would run:")
}

func TestRunApply_InvalidDocument(t *testing.T) {
	te := newTestEnv()
	docPath := filepath.Join(t.TempDir(), "bad.hcl")
	require.NoError(t, os.WriteFile(docPath, []byte(`service "web" { port = "80" }`), 0o644))

	err := RunApply(context.Background(), []string{docPath}, te.Env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration invalid")
	assert.Empty(t, te.sim.Calls())
}

func TestRunCheck(t *testing.T) {
	te := newTestEnv()
	dir := t.TempDir()

	valid := filepath.Join(dir, "valid.hcl")
	require.NoError(t, os.WriteFile(valid, []byte(applyHCL), 0o644))
	require.NoError(t, RunCheck(context.Background(), []string{"-v", valid}, te.Env))
	assert.Contains(t, te.stdout.String(), "Configuration valid!")
	assert.Contains(t, te.stdout.String(), "Services: 1")
	assert.Contains(t, te.stdout.String(), "8400/tcp")

	invalid := filepath.Join(dir, "invalid.hcl")
	require.NoError(t, os.WriteFile(invalid, []byte("zone \"dmz\" {\n"), 0o644))
	assert.Error(t, RunCheck(context.Background(), []string{invalid}, te.Env))
}

const publicInfo = `public (active)
  target: default
  icmp-block-inversion: no
  interfaces: eth0
  sources: 
  services: ssh dhcpv6-client
  ports: 
  protocols: 
  masquerade: no
  forward-ports: 
  source-ports: 
  icmp-blocks: 
  rich rules: 
`

func TestRunZoneInfo(t *testing.T) {
	te := newTestEnv()
	te.Stdin = strings.NewReader(publicInfo)

	require.NoError(t, RunZoneInfo(context.Background(), []string{"--input", "-"}, te.Env))
	out := decodeJSON(t, te.stdout.Bytes())
	assert.Equal(t, "public", out["name"])
	assert.Equal(t, true, out["active"])
	assert.Equal(t, []any{"ssh", "dhcpv6-client"}, out["services"])
	assert.Equal(t, []any{}, out["ports"])
	assert.Equal(t, "no", out["masquerade"])

	te.stdout.Reset()
	te.sim.AddZone("public", firewalld.SimZone{Interfaces: []string{"eth0"}, Services: []string{"ssh"}})
	require.NoError(t, RunZoneInfo(context.Background(), []string{"--zone", "public", "-o", "hcl"}, te.Env))
	hcl := te.stdout.String()
	assert.Contains(t, hcl, `zone "public" {`)
	assert.Contains(t, hcl, `services`)
	assert.Contains(t, hcl, `["ssh"]`)

	assert.Error(t, RunZoneInfo(context.Background(), nil, te.Env))
}

func TestRunZoneDiff(t *testing.T) {
	te := newTestEnv()
	snapshot := filepath.Join(t.TempDir(), "public.txt")
	require.NoError(t, os.WriteFile(snapshot, []byte(publicInfo), 0o644))

	te.sim.AddZone("public", firewalld.SimZone{Interfaces: []string{"eth0"}, Services: []string{"ssh", "dhcpv6-client"}})
	require.NoError(t, RunZoneDiff(context.Background(), []string{"--snapshot", snapshot}, te.Env))
	assert.Contains(t, te.stdout.String(), "No changes detected.")

	te.stdout.Reset()
	te.sim.AddZone("public", firewalld.SimZone{Interfaces: []string{"eth0"}, Services: []string{"ssh"}})
	err := RunZoneDiff(context.Background(), []string{"--snapshot", snapshot}, te.Env)
	assert.EqualError(t, err, "zone public differs")
	assert.Contains(t, te.stdout.String(), "+++ live")
	assert.Contains(t, te.stdout.String(), "dhcpv6-client")
}
