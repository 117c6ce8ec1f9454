package sotfile

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
	"github.com/felixgeelhaar/sotsync/internal/ports"
	"github.com/felixgeelhaar/sotsync/internal/testutil/mocks"
)

const yamlInventory = `
devices:
  - name: edge-1
    platform: IOS
    config: configs/edge-1.cfg
    properties:
      site: ams
      rack:
        row: 4
    desired:
      users:
        - username: bob
          privilege: 10
          secret: Y
        - username: amy
          privilege: 15
          secret: Z
      snmp:
        - community: public
  - name: fw-1
    platform: firewall
    config: /abs/fw-1.ini
`

const tomlInventory = `
[[devices]]
name = "edge-1"
platform = "ios"
config = "edge-1.cfg"

[devices.properties]
site = "ams"

[[devices.desired.users]]
username = "bob"
privilege = 10
secret = "Y"

[[devices.desired.snmp]]
community = "public"
access = "RW"
`

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("/srv/inventory.yaml", yamlInventory)

	inv, err := Load(fs, "/srv/inventory.yaml")
	require.NoError(t, err)
	ctx := context.Background()

	names, err := inv.Devices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"edge-1", "fw-1"}, names)

	d, err := inv.Device(ctx, "edge-1")
	require.NoError(t, err)
	assert.Equal(t, "ios", d.Platform)
	assert.Equal(t, "/srv/configs/edge-1.cfg", d.ConfigPath)
	assert.Equal(t, "ams", d.Properties.String("site", ""))
	rack, ok := d.Properties["rack"].(properties.Properties)
	require.True(t, ok)
	assert.Equal(t, 4, rack.Int("row", 0))

	fw, err := inv.Device(ctx, "fw-1")
	require.NoError(t, err)
	assert.Equal(t, "/abs/fw-1.ini", fw.ConfigPath)

	users, err := inv.DesiredState(ctx, "edge-1", "users")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob", users[0]["username"])
	assert.Equal(t, "amy", users[1]["username"], "desired order is preserved")

	assert.Equal(t, []string{"snmp", "users"}, inv.Sections("edge-1"))
	assert.Nil(t, inv.Sections("missing"))
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	fs := mocks.NewFileSystem()
	fs.AddFile("inv/devices.toml", tomlInventory)

	inv, err := Load(fs, "inv/devices.toml")
	require.NoError(t, err)
	ctx := context.Background()

	d, err := inv.Device(ctx, "edge-1")
	require.NoError(t, err)
	assert.Equal(t, "inv/edge-1.cfg", d.ConfigPath)

	users, err := inv.DesiredState(ctx, "edge-1", "users")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, 10, users[0].Int("privilege", 0))

	snmp, err := inv.DesiredState(ctx, "edge-1", "SNMP")
	require.NoError(t, err)
	assert.Equal(t, "RW", snmp[0].String("access", ""))
}

func TestInventory_CopiesOnRead(t *testing.T) {
	t.Parallel()

	inv, err := Parse([]byte(yamlInventory), FormatYAML)
	require.NoError(t, err)
	ctx := context.Background()

	users, _ := inv.DesiredState(ctx, "edge-1", "users")
	users[0]["username"] = "mallory"
	d, _ := inv.Device(ctx, "edge-1")
	d.Properties["site"] = "mutated"

	again, _ := inv.DesiredState(ctx, "edge-1", "users")
	assert.Equal(t, "bob", again[0]["username"])
	d2, _ := inv.Device(ctx, "edge-1")
	assert.Equal(t, "ams", d2.Properties["site"])
}

func TestInventory_Missing(t *testing.T) {
	t.Parallel()

	inv, err := Parse([]byte(yamlInventory), FormatYAML)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = inv.Device(ctx, "nope")
	assert.ErrorIs(t, err, ports.ErrDeviceNotFound)

	_, err = inv.DesiredState(ctx, "nope", "users")
	assert.ErrorIs(t, err, ports.ErrDeviceNotFound)

	empty, err := inv.DesiredState(ctx, "fw-1", "users")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		format  Format
		invalid bool
	}{
		{name: "bad yaml", data: "devices: [", format: FormatYAML},
		{name: "bad toml", data: "[[devices]\nname=", format: FormatTOML},
		{name: "unknown format", data: "", format: "json"},
		{name: "missing name", data: "devices:\n  - platform: ios\n", format: FormatYAML, invalid: true},
		{name: "duplicate", data: "devices:\n  - name: a\n  - name: a\n", format: FormatYAML, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.data), tt.format)
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidInventory)
			}
		})
	}
}

func TestLoad_ReadError(t *testing.T) {
	t.Parallel()

	_, err := Load(mocks.NewFileSystem(), "missing.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInventory_Cancelled(t *testing.T) {
	t.Parallel()

	inv, err := Parse([]byte(yamlInventory), FormatYAML)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = inv.Devices(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFormatFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatTOML, FormatFor("inventory.TOML"))
	assert.Equal(t, FormatYAML, FormatFor("inventory.yml"))
	assert.Equal(t, FormatYAML, FormatFor("inventory"))
}
