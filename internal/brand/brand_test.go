package brand

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	b := Get()
	assert.NotEmpty(t, b.Name)
	assert.Equal(t, "firewall-cmd", DefaultFirewallCmd)
	assert.Equal(t, "converge", BinaryName)
	assert.NotEmpty(t, Version)
}

func TestGetDirectories(t *testing.T) {
	t.Setenv(ConfigEnvPrefix+"_PREFIX", "")
	t.Setenv(ConfigEnvPrefix+"_CONFIG_DIR", "")
	t.Setenv(ConfigEnvPrefix+"_STATE_DIR", "")

	assert.Equal(t, DefaultConfigDir, GetConfigDir())
	assert.Equal(t, DefaultStateDir, GetStateDir())

	t.Setenv(ConfigEnvPrefix+"_PREFIX", "/tmp/converge")
	assert.Equal(t, "/tmp/converge/config", GetConfigDir())
	assert.Equal(t, "/tmp/converge/state", GetStateDir())

	t.Setenv(ConfigEnvPrefix+"_CONFIG_DIR", "/custom/config")
	assert.Equal(t, "/custom/config", GetConfigDir())
	assert.Equal(t, filepath.Join("/custom/config", ConfigFileName), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/tmp/converge/state", AuditDBName), DefaultAuditDBPath())
}
