package configparser

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const firewallExport = `
[system]
hostname = fw1
domain = example.com

[snmp]
community = public

[interface "port1"]
address = 198.51.100.2/30
description = wan
zone = untrust

[interface "port2"]
address = 10.10.0.1/24, 10.10.1.1/24
zone = trust
mtu = 1400

[interface "port3"]
enabled = false
`

func TestFirewall_Lookups(t *testing.T) {
	t.Parallel()

	p, err := NewFirewall(firewallExport)
	require.NoError(t, err)

	assert.Equal(t, PlatformFirewall, p.Platform())

	fqdn, ok := p.FQDN()
	assert.True(t, ok)
	assert.Equal(t, "fw1.example.com", fqdn)

	rec, ok := p.Interface("PORT2")
	require.True(t, ok)
	assert.Equal(t, "port2", rec.Name)
	assert.Equal(t, 1400, rec.MTU)
	assert.Len(t, rec.Addresses, 2)

	name, ok := p.InterfaceNameByAddress(netip.MustParseAddr("10.10.1.1"))
	assert.True(t, ok)
	assert.Equal(t, "port2", name)

	port3, ok := p.Interface("port3")
	require.True(t, ok)
	assert.False(t, port3.Enabled)
	_, ok = p.InterfaceIPAddress("port3")
	assert.False(t, ok)
}

func TestFirewall_FindInGlobal(t *testing.T) {
	t.Parallel()

	p, err := NewFirewall(firewallExport)
	require.NoError(t, err)

	v, ok := p.FindInGlobal("hostname")
	assert.True(t, ok)
	assert.Equal(t, "fw1", v)

	v, ok = p.FindInGlobal("snmp.community")
	assert.True(t, ok)
	assert.Equal(t, "public", v)

	_, ok = p.FindInGlobal("snmp.location")
	assert.False(t, ok)

	assert.Equal(t, []string{"snmp", "system"}, p.Sections())
}

func TestFirewall_FindInInterfaces(t *testing.T) {
	t.Parallel()

	p, err := NewFirewall(firewallExport)
	require.NoError(t, err)

	assert.Equal(t, []InterfaceMatch{
		{Interface: "port1", Value: "untrust"},
		{Interface: "port2", Value: "trust"},
	}, p.FindInInterfaces("zone"))
}

func TestNewFirewall_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config any
	}{
		{"unsupported input", map[string]any{}},
		{"bad address", "[interface \"p1\"]\naddress = nope\n"},
		{"bad enabled", "[interface \"p1\"]\nenabled = maybe\n"},
		{"bad mtu", "[interface \"p1\"]\nmtu = big\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewFirewall(tt.config)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, PlatformFirewall, perr.Platform)
		})
	}
}

func TestInterfaceSectionName(t *testing.T) {
	t.Parallel()

	name, ok := interfaceSectionName(`interface "port1"`)
	assert.True(t, ok)
	assert.Equal(t, "port1", name)

	name, ok = interfaceSectionName("interface lan")
	assert.True(t, ok)
	assert.Equal(t, "lan", name)

	_, ok = interfaceSectionName("system")
	assert.False(t, ok)

	_, ok = interfaceSectionName(`interface ""`)
	assert.False(t, ok)
}
