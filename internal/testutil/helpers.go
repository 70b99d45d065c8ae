package testutil

import (
	"os"
	"os/exec"
	"testing"

	"grimm.is/converge/internal/brand"
)

// RequireFirewalld skips the test unless CONVERGE_FIREWALLD_TEST is set and
// firewall-cmd is on PATH. Such tests talk to the host's firewalld and must
// only run on disposable machines.
func RequireFirewalld(t *testing.T) string {
	t.Helper()
	if os.Getenv(brand.ConfigEnvPrefix+"_FIREWALLD_TEST") == "" {
		t.Skip("Skipping test: requires " + brand.ConfigEnvPrefix + "_FIREWALLD_TEST environment")
	}
	path, err := exec.LookPath(brand.DefaultFirewallCmd)
	if err != nil {
		t.Skipf("Skipping test: %s not found", brand.DefaultFirewallCmd)
	}
	return path
}
