package firewalld

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimRunner_ZoneLifecycle(t *testing.T) {
	s := NewSimRunner()
	ctx := context.Background()

	res, err := s.Run(ctx, "firewall-cmd", PathZone("dmz")...)
	require.NoError(t, err)
	assert.Equal(t, exitInvalidZone, res.ExitCode)

	res, _ = s.Run(ctx, "firewall-cmd", NewZone("dmz")...)
	assert.True(t, res.OK())
	assert.True(t, s.HasZone("dmz"))

	res, _ = s.Run(ctx, "firewall-cmd", NewZone("dmz")...)
	assert.Equal(t, exitNameConflict, res.ExitCode)

	res, _ = s.Run(ctx, "firewall-cmd", NewZoneFromFile("/etc/zones/clients.xml")...)
	assert.True(t, res.OK())
	assert.True(t, s.HasZone("clients"))

	res, _ = s.Run(ctx, "firewall-cmd", DeleteZone("dmz")...)
	assert.True(t, res.OK())
	assert.False(t, s.HasZone("dmz"))

	assert.Equal(t, []string{
		"--permanent --new-zone=dmz",
		"--permanent --new-zone=dmz",
		"--permanent --new-zone-from-file=/etc/zones/clients.xml",
		"--permanent --delete-zone=dmz",
	}, s.Mutations())
}

func TestSimRunner_ServicePorts(t *testing.T) {
	s := NewSimRunner()
	s.AddService("web", SimService{Ports: []string{"80/tcp"}})
	ctx := context.Background()

	res, _ := s.Run(ctx, "firewall-cmd", QueryPort("web", "443", "tcp")...)
	assert.Equal(t, "no", res.Stdout)
	assert.Equal(t, exitQueryFalse, res.ExitCode)

	s.Run(ctx, "firewall-cmd", AddPort("web", "443", "tcp")...)
	res, _ = s.Run(ctx, "firewall-cmd", GetPorts("web")...)
	assert.Equal(t, "80/tcp 443/tcp", res.Stdout)

	s.Run(ctx, "firewall-cmd", RemovePort("web", "80", "tcp")...)
	svc, ok := s.Service("web")
	require.True(t, ok)
	assert.Equal(t, []string{"443/tcp"}, svc.Ports)

	res, _ = s.Run(ctx, "firewall-cmd", GetPorts("missing")...)
	assert.Equal(t, exitInvalidService, res.ExitCode)
}

func TestSimRunner_InfoZone(t *testing.T) {
	s := NewSimRunner()
	s.AddZone("public", SimZone{
		Interfaces: []string{"eth0"},
		Services:   []string{"ssh", "dhcpv6-client"},
		RichRules:  []string{`rule family="ipv4" source address="10.0.0.0/8" accept`},
	})

	res, err := s.Run(context.Background(), "firewall-cmd", InfoZone("public")...)
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "public (active)\n  target: default\n")
	assert.Contains(t, res.Stdout, "  services: ssh dhcpv6-client\n")
	assert.Contains(t, res.Stdout, "  rich rules: \n\trule family=\"ipv4\"")
}

func TestSimRunner_FailOn(t *testing.T) {
	s := NewSimRunner()
	s.FailOn(NewZone("dmz"), Exit(13, "", "Error: permission denied"))

	res, err := s.Run(context.Background(), "firewall-cmd", NewZone("dmz")...)
	require.NoError(t, err)
	assert.Equal(t, 13, res.ExitCode)
	assert.False(t, s.HasZone("dmz"))
}

func TestSimRunner_RejectsRuntimeCommands(t *testing.T) {
	s := NewSimRunner()
	res, err := s.Run(context.Background(), "firewall-cmd", "--new-zone=dmz")
	require.NoError(t, err)
	assert.Equal(t, exitUsage, res.ExitCode)
}
