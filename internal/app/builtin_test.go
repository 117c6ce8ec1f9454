package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/sotsync/internal/domain/configparser"
	"github.com/felixgeelhaar/sotsync/internal/domain/plugin"
	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
)

func TestNewRegistry_Builtins(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, []plugin.Key{"firewall", "ios", "linux"}, reg.Keys(plugin.CategoryConfigParser))
	assert.True(t, reg.Has(plugin.CategoryDeviceBusinessLogic, "ios"))
	assert.True(t, reg.Has(plugin.CategoryInterfaceBusinessLogic, "firewall"))
	assert.True(t, reg.Has(plugin.CategoryConfigContextBusinessLogic, "ios"))
	assert.True(t, reg.Has(plugin.CategoryPreprocessing, "snmp"))
	assert.True(t, reg.Has(plugin.CategoryPostprocessing, "ios"))
	assert.Equal(t, len(BuiltinBundle().Registrations), reg.Len())

	bundles := reg.Bundles()
	require.Len(t, bundles, 1)
	assert.Equal(t, BuiltinBundleName, bundles[0].Name)
	assert.Equal(t, "v1.0.0", bundles[0].Version)
}

func TestNewRegistry_ExtraBundleConflicts(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(plugin.Bundle{
		Name:       "vendor",
		Version:    "0.1.0",
		APIVersion: plugin.APIVersion,
		Registrations: []plugin.Registration{
			{Category: plugin.CategoryPostprocessing, Key: "ios", Handler: plugin.PostprocessFunc(iosConfigureMode)},
		},
	})
	assert.ErrorIs(t, err, plugin.ErrDuplicateRegistration)
}

func TestIOSDeviceLogic(t *testing.T) {
	t.Parallel()

	parser, err := configparser.NewIOS("hostname r1\nip domain-name example.net\n")
	require.NoError(t, err)

	tests := []struct {
		name     string
		props    properties.Properties
		defaults properties.Properties
		want     properties.Properties
	}{
		{
			name:     "fills from config and defaults",
			props:    properties.Properties{"site": "lab"},
			defaults: properties.Properties{"status": "active", "site": "ignored"},
			want:     properties.Properties{"site": "lab", "status": "active", "hostname": "r1", "fqdn": "r1.example.net"},
		},
		{
			name:  "keeps existing names",
			props: properties.Properties{"hostname": "core-1", "fqdn": "core-1.lab"},
			want:  properties.Properties{"hostname": "core-1", "fqdn": "core-1.lab"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			bag := properties.NewBag(plugin.CategoryDeviceBusinessLogic.PositionalNames(),
				[]any{nil, tt.props, tt.defaults, parser, nil}, nil)
			got, err := iosDeviceLogic(context.Background(), bag)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnabledInterfacesOnly(t *testing.T) {
	t.Parallel()

	bag := properties.NewBag([]string{"interfaces"}, []any{[]properties.Properties{
		{"name": "port1", "enabled": true},
		{"name": "port2"},
		{"name": "port3", "enabled": false},
	}}, nil)

	got, err := enabledInterfacesOnly(context.Background(), bag)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "port1", got[0]["name"])
	assert.Equal(t, "port2", got[1]["name"])
}

func TestPruneEmptyContext(t *testing.T) {
	t.Parallel()

	bag := properties.NewBag([]string{"config_context"}, []any{properties.Properties{
		"platform":   "ios",
		"ntp":        "",
		"interfaces": []properties.Properties{},
		"tags":       []string{"a"},
		"extra":      properties.Properties{},
		"mtu":        0,
		"unset":      nil,
	}}, nil)

	got, err := pruneEmptyContext(context.Background(), bag)
	require.NoError(t, err)
	assert.Equal(t, properties.Properties{"platform": "ios", "tags": []string{"a"}, "mtu": 0}, got)
}

func TestSNMPDefaults(t *testing.T) {
	t.Parallel()

	bag := properties.NewBag(plugin.CategoryPreprocessing.PositionalNames(), []any{nil, "r1", []properties.Properties{
		{"community": "public"},
		{"community": "ops", "access": "RW"},
	}}, nil)

	got, err := snmpDefaults(context.Background(), bag)
	require.NoError(t, err)
	assert.Equal(t, []properties.Properties{
		{"community": "public", "access": "RO"},
		{"community": "ops", "access": "RW"},
	}, got)
}

func TestIOSConfigureMode(t *testing.T) {
	t.Parallel()

	names := plugin.CategoryPostprocessing.PositionalNames()

	got, err := iosConfigureMode(context.Background(), properties.NewBag(names, []any{nil, "r1", []string{"no username a"}}, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"configure terminal", "no username a", "end"}, got)

	got, err = iosConfigureMode(context.Background(), properties.NewBag(names, []any{nil, "r1", []string{}}, nil))
	require.NoError(t, err)
	assert.Empty(t, got)
}
