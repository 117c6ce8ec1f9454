package plugin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Install(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	err := b.Install(Bundle{
		Name:        "snmp-sync",
		Version:     "1.4.0",
		APIVersion:  "v1.2",
		Description: "SNMP credential sync",
		Registrations: []Registration{
			{Category: CategoryPreprocessing, Key: "snmp", Handler: tagPre("snmp")},
			{Category: CategoryPreprocessing, Key: "snmpv3", Handler: tagPre("snmpv3")},
		},
	})
	require.NoError(t, err)

	reg := b.Build()
	assert.True(t, reg.Has(CategoryPreprocessing, "snmp"))
	assert.True(t, reg.Has(CategoryPreprocessing, "snmpv3"))
	assert.Equal(t, []BundleInfo{{
		Name:          "snmp-sync",
		Version:       "v1.4.0",
		APIVersion:    "v1.2",
		Description:   "SNMP credential sync",
		Registrations: 2,
	}}, reg.Bundles())
}

func TestBuilder_Install_DefaultsAPIVersion(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Install(Bundle{Name: "x", Version: "v0.1.0"}))
	assert.Equal(t, APIVersion, b.Build().Bundles()[0].APIVersion)
}

func TestBuilder_Install_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bundle Bundle
	}{
		{"empty name", Bundle{Version: "1.0.0"}},
		{"invalid version", Bundle{Name: "x", Version: "latest"}},
		{"invalid api", Bundle{Name: "x", Version: "1.0.0", APIVersion: "one"}},
		{"api major mismatch", Bundle{Name: "x", Version: "1.0.0", APIVersion: "v2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := NewBuilder().Install(tt.bundle)

			var inc *IncompatibleBundleError
			require.ErrorAs(t, err, &inc)
			assert.ErrorIs(t, err, ErrIncompatibleBundle)
		})
	}
}

func TestBuilder_Install_AllOrNothing(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	require.NoError(t, b.Register(CategoryPreprocessing, "users", tagPre("existing")))

	err := b.Install(Bundle{
		Name:    "conflicting",
		Version: "1.0.0",
		Registrations: []Registration{
			{Category: CategoryPreprocessing, Key: "snmp", Handler: tagPre("snmp")},
			{Category: CategoryPreprocessing, Key: "users", Handler: tagPre("users")},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
	assert.Contains(t, err.Error(), `bundle "conflicting"`)

	reg := b.Build()
	assert.False(t, reg.Has(CategoryPreprocessing, "snmp"), "partial bundle must not be installed")
	assert.Empty(t, reg.Bundles())
}
