package app

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/sotsync/internal/domain/config"
	"github.com/felixgeelhaar/sotsync/internal/domain/pipeline"
	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
	"github.com/felixgeelhaar/sotsync/internal/domain/reconcile"
	"github.com/felixgeelhaar/sotsync/internal/ports"
	"github.com/felixgeelhaar/sotsync/internal/testutil/mocks"
)

const r1Config = `hostname r1
ip domain-name example.net
!
interface GigabitEthernet0/0
 ip address 10.0.0.1 255.255.255.0
!
username alice privilege 15 secret X
snmp-server community old RO
ntp server 192.0.2.1
`

type fixture struct {
	app      *App
	fs       *mocks.FileSystem
	sot      *mocks.SourceOfTruth
	executor *mocks.CommandExecutor
	logger   *mocks.Logger
}

func newFixture(t *testing.T, settings *config.Settings) *fixture {
	t.Helper()

	f := &fixture{
		fs:       mocks.NewFileSystem(),
		sot:      mocks.NewSourceOfTruth(),
		executor: mocks.NewCommandExecutor(),
		logger:   mocks.NewLogger(),
	}
	f.fs.AddFile("/configs/r1.cfg", r1Config)
	f.sot.AddDevice(ports.Device{
		Name:       "r1",
		Platform:   "IOS",
		ConfigPath: "/configs/r1.cfg",
		Properties: properties.Properties{"site": "lab"},
	})
	f.sot.SetDesired("r1", reconcile.SectionUsers,
		properties.Properties{"username": "alice", "privilege": 15, "secret": "Z"},
		properties.Properties{"username": "bob", "privilege": 10, "secret": "Y"},
	)
	f.sot.SetDesired("r1", reconcile.SectionSNMP, properties.Properties{"community": "public"})

	a, err := New(settings,
		WithFileSystem(f.fs),
		WithSourceOfTruth(f.sot),
		WithExecutor(f.executor),
		WithLogger(f.logger),
	)
	require.NoError(t, err)
	f.app = a
	return f
}

func TestApp_Sync_DryRun(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	res, err := f.app.Sync(context.Background(), NewSyncRequest("r1", "users", "snmp"))
	require.NoError(t, err)

	assert.Equal(t, "ios", res.Platform)
	assert.Equal(t, []string{
		"configure terminal",
		"username alice privilege 15 secret Z",
		"username bob privilege 10 secret Y",
		"no snmp-server community old RO",
		"snmp-server community public RO",
		"end",
	}, res.Commands)
	require.Len(t, res.Sections, 2)
	assert.Equal(t, reconcile.SectionUsers, res.Sections[0].Section)
	assert.False(t, res.Applied)
	assert.Empty(t, f.executor.Calls())
	assert.NoError(t, res.Err())
	assert.Zero(t, res.Skipped())
}

func TestApp_Sync_Apply(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	res, err := f.app.Sync(context.Background(), NewSyncRequest("r1", "snmp").WithApply(true))
	require.NoError(t, err)
	assert.True(t, res.Applied)

	calls := f.executor.CallsFor("r1")
	require.Len(t, calls, 1)
	assert.Equal(t, res.Commands, calls[0].Commands)
}

func TestApp_Sync_NothingToApply(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.fs.AddFile("/configs/empty.cfg", "hostname r1\n")

	// No running users and none desired.
	f.sot.SetDesired("r1", reconcile.SectionUsers)
	res, err := f.app.Sync(context.Background(),
		NewSyncRequest("r1", "users").WithConfigPath("/configs/empty.cfg").WithApply(true))
	require.NoError(t, err)
	assert.Empty(t, res.Commands)
	assert.False(t, res.Applied)
	assert.Empty(t, f.executor.Calls())
}

func TestApp_Sync_ExecutorFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	boom := errors.New("session dropped")
	f.executor.AddError("r1", boom)

	res, err := f.app.Sync(context.Background(), NewSyncRequest("r1", "users").WithApply(true))
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, res)
	assert.False(t, res.Applied)
}

func TestApp_Sync_SettingsSection(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	settings.Sections = []config.SectionSettings{{
		Name:     "ntp",
		Match:    `^ntp server (\S+)`,
		Identity: "server",
		Template: "ntp server {{.server}}",
	}}
	f := newFixture(t, settings)
	f.sot.SetDesired("r1", "ntp", properties.Properties{"server": "192.0.2.2"})

	res, err := f.app.Sync(context.Background(), NewSyncRequest("r1", "ntp"))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"configure terminal",
		"no ntp server 192.0.2.1",
		"ntp server 192.0.2.2",
		"end",
	}, res.Commands)
}

func TestApp_Sync_Errors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.sot.AddDevice(ports.Device{Name: "bare"})
	f.sot.AddDevice(ports.Device{Name: "nocfg", Platform: "ios"})
	f.sot.AddDevice(ports.Device{Name: "junos", Platform: "junos", ConfigPath: "/configs/r1.cfg"})

	tests := []struct {
		name string
		req  SyncRequest
		want error
	}{
		{"no sections", NewSyncRequest("r1"), ErrNoSections},
		{"unknown section", NewSyncRequest("r1", "acl"), ErrUnknownSection},
		{"unknown device", NewSyncRequest("r9", "users"), ports.ErrDeviceNotFound},
		{"no platform", NewSyncRequest("bare", "users"), ErrNoPlatform},
		{"no config", NewSyncRequest("nocfg", "users"), ErrNoConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := f.app.Sync(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.app.Sync(context.Background(), NewSyncRequest("junos", "users"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "junos")
}

func TestApp_Sync_EntityFailuresAreReported(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.sot.SetDesired("r1", reconcile.SectionUsers,
		properties.Properties{"username": "alice", "privilege": 15, "secret": "X"},
		properties.Properties{"privilege": 1},
	)

	res, err := f.app.Sync(context.Background(), NewSyncRequest("r1", "users"))
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err(), reconcile.ErrMissingIdentity)
	assert.Equal(t, []string{"configure terminal", "username alice privilege 15 secret X", "end"}, res.Commands)
	assert.NotEmpty(t, f.logger.EntriesAt(ports.LevelError))
}

func TestApp_SyncAll(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	settings.Workers = 2
	f := newFixture(t, settings)

	var reqs []SyncRequest
	for i := 0; i < 6; i++ {
		name := fmt.Sprintf("r%d", i+2)
		f.sot.AddDevice(ports.Device{Name: name, Platform: "ios", ConfigPath: "/configs/r1.cfg"})
		f.sot.SetDesired(name, reconcile.SectionSNMP, properties.Properties{"community": name})
		reqs = append(reqs, NewSyncRequest(name, "snmp").WithApply(true))
	}
	reqs = append(reqs, NewSyncRequest("missing", "snmp"))

	results := f.app.SyncAll(context.Background(), reqs)
	require.Len(t, results, len(reqs))

	for i, r := range results[:6] {
		assert.Equal(t, reqs[i].Device, r.Device)
		require.NoError(t, r.Err)
		assert.Contains(t, r.Result.Commands, "snmp-server community "+r.Device+" RO")
		assert.Len(t, f.executor.CallsFor(r.Device), 1)
	}
	assert.ErrorIs(t, results[6].Err, ports.ErrDeviceNotFound)
}

func TestApp_SyncAll_ZeroWorkers(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	settings.Workers = 0
	f := newFixture(t, settings)

	results := f.app.SyncAll(context.Background(), []SyncRequest{NewSyncRequest("r1", "snmp")})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Contains(t, results[0].Result.Commands, "snmp-server community public RO")
}

func TestApp_Onboard_DeviceWithoutProperties(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		device   ports.Device
		config   string
		fqdn     string
		hostname string
	}{
		{
			name:     "ios hooked",
			device:   ports.Device{Name: "r2", Platform: "ios", ConfigPath: "/configs/r1.cfg"},
			fqdn:     "r1.example.net",
			hostname: "r1",
		},
		{
			name:   "linux identity",
			device: ports.Device{Name: "l1", Platform: "linux", ConfigPath: "/configs/l1.yaml"},
			config: "network:\n  hostname: l1\n  ethernets:\n    eth0:\n      addresses:\n        - 10.9.0.1/16\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, nil)
			if tt.config != "" {
				f.fs.AddFile(tt.device.ConfigPath, tt.config)
			}
			f.sot.AddDevice(tt.device)

			out, err := f.app.Onboard(context.Background(), OnboardRequest{Device: tt.device.Name})
			require.NoError(t, err)

			assert.Equal(t, tt.device.Name, out.DeviceProperties["name"])
			assert.Equal(t, tt.device.Platform, out.DeviceProperties["platform"])
			if tt.fqdn != "" {
				assert.Equal(t, tt.fqdn, out.DeviceProperties["fqdn"])
				assert.Equal(t, tt.hostname, out.DeviceProperties["hostname"])
			}
			require.Len(t, out.Interfaces, 1)
			for _, c := range pipeline.Chains() {
				assert.Equal(t, pipeline.StateDone, out.States[c])
			}
		})
	}
}

func TestApp_Onboard(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	settings.Onboarding.Defaults = map[string]any{"status": "active"}
	f := newFixture(t, settings)

	out, err := f.app.Onboard(context.Background(), OnboardRequest{
		Device:        "r1",
		ConfigContext: properties.Properties{"ntp": "", "syslog": "192.0.2.9"},
	})
	require.NoError(t, err)

	assert.Equal(t, "r1.example.net", out.DeviceProperties["fqdn"])
	assert.Equal(t, "active", out.DeviceProperties["status"])
	assert.Equal(t, "lab", out.DeviceProperties["site"])
	require.Len(t, out.Interfaces, 1)
	assert.Equal(t, "GigabitEthernet0/0", out.Interfaces[0]["name"])

	assert.Equal(t, "192.0.2.9", out.ConfigContext["syslog"])
	assert.NotContains(t, out.ConfigContext, "ntp")
	for _, c := range pipeline.Chains() {
		assert.Equal(t, pipeline.StateDone, out.States[c])
	}
}

func TestApp_Parse(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	p, err := f.app.Parse(context.Background(), "ios", "/configs/r1.cfg")
	require.NoError(t, err)
	line, ok := p.FindInGlobal("ntp server")
	require.True(t, ok)
	assert.Equal(t, "ntp server 192.0.2.1", line)

	_, err = f.app.Parse(context.Background(), "ios", "/configs/none.cfg")
	assert.Error(t, err)
}

func TestNew_InvalidSections(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	settings.Sections = []config.SectionSettings{{Name: "x", Match: "(", Identity: "id", Template: "{{.id}}"}}
	_, err := New(settings)
	assert.True(t, config.IsUserError(err, config.ErrCodeConfigInvalid))
}

func TestApp_NoSourceOfTruth(t *testing.T) {
	t.Parallel()

	a, err := New(nil, WithFileSystem(mocks.NewFileSystem()))
	require.NoError(t, err)

	_, err = a.Sync(context.Background(), NewSyncRequest("r1", "users"))
	assert.ErrorIs(t, err, ErrNoSourceOfTruth)
	_, err = a.Devices(context.Background())
	assert.ErrorIs(t, err, ErrNoSourceOfTruth)
}
