package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHCL = `
schema_version = "1.0"
firewall_cmd   = "/usr/bin/firewall-cmd"

zone "clients" {
  file = "${env.ZONE_DIR}/clients.xml"
}

zone "legacy" {
  state = "absent"
}

service "test" {
  port              = "8400"
  protocol          = "TCP"
  description       = "Test Protocol"
  short_description = "Test"
}

service "test" {
  state    = "absent"
  port     = "8401"
  protocol = "tcp"
}
`

func TestLoadHCL(t *testing.T) {
	doc, err := LoadHCLWithOptions([]byte(sampleHCL), "converge.hcl", LoadOptions{
		Validate: true,
		Env:      map[string]string{"ZONE_DIR": "/srv/zones"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/firewall-cmd", doc.FirewallCmd)
	require.Len(t, doc.Zones, 2)
	assert.Equal(t, ZoneSpec{Name: "clients", State: StatePresent, File: "/srv/zones/clients.xml"}, doc.Zones[0])
	assert.Equal(t, StateAbsent, doc.Zones[1].State)

	require.Len(t, doc.Services, 2)
	assert.Equal(t, "tcp", doc.Services[0].Protocol)
	assert.Equal(t, StatePresent, doc.Services[0].State)
	assert.Equal(t, "Test", doc.Services[0].ShortDescription)
	assert.Equal(t, "8401/tcp", doc.Services[1].PortProto())
}

func TestLoadHCL_Defaults(t *testing.T) {
	doc, err := LoadHCL([]byte(`zone "dmz" {}`), "min.hcl")
	require.NoError(t, err)

	assert.Equal(t, CurrentSchemaVersion, doc.SchemaVersion)
	assert.Equal(t, "firewall-cmd", doc.FirewallCmd)
	assert.False(t, doc.CheckMode)
	assert.Equal(t, StatePresent, doc.Zones[0].State)
}

func TestLoadHCL_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"syntax", `zone "dmz" {`, "HCL parse error"},
		{"unknown attribute", `colour = "blue"`, "HCL decode error"},
		{"missing label", `zone {}`, "HCL decode error"},
		{"invalid service", `service "web" { port = "80" }`, "service[web].protocol"},
		{"bad schema", `schema_version = "9.9"`, "unsupported schema version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadHCLWithOptions([]byte(tt.input), "bad.hcl", LoadOptions{Validate: true, Env: map[string]string{}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadHCL_SkipValidation(t *testing.T) {
	doc, err := LoadHCLWithOptions([]byte(`service "web" { port = "80" }`), "x.hcl", LoadOptions{})
	require.NoError(t, err)
	assert.Len(t, doc.Services, 1)
}

func TestLoadHCL_ProcessEnvironment(t *testing.T) {
	t.Setenv("CONVERGE_TEST_SERVICE_PORT", "9100")

	doc, err := LoadHCL([]byte(`
service "exporter" {
  port     = env.CONVERGE_TEST_SERVICE_PORT
  protocol = "tcp"
}`), "env.hcl")
	require.NoError(t, err)
	assert.Equal(t, "9100", doc.Services[0].Port)
}

func TestLoadJSON(t *testing.T) {
	doc, err := LoadJSON([]byte(`{
		"check_mode": true,
		"zones": [{"name": "dmz"}],
		"services": [{"name": "test", "port": "8400", "protocol": "udp"}]
	}`))
	require.NoError(t, err)

	assert.True(t, doc.CheckMode)
	assert.Equal(t, StatePresent, doc.Zones[0].State)
	assert.Equal(t, "8400/udp", doc.Services[0].PortProto())

	_, err = LoadJSON([]byte(`{"zones": [`))
	assert.ErrorContains(t, err, "JSON parse error")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	hclPath := filepath.Join(dir, "converge.hcl")
	require.NoError(t, os.WriteFile(hclPath, []byte(`zone "dmz" {}`), 0o644))
	doc, err := LoadFile(hclPath)
	require.NoError(t, err)
	assert.Equal(t, "dmz", doc.Zones[0].Name)

	jsonPath := filepath.Join(dir, "converge.JSON")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"zones":[{"name":"dmz","state":"absent"}]}`), 0o644))
	doc, err = LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, StateAbsent, doc.Zones[0].State)

	_, err = LoadFile(filepath.Join(dir, "missing.hcl"))
	assert.ErrorContains(t, err, "failed to read desired state file")
}
