package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/sotsync/internal/adapters/filesystem"
	"github.com/felixgeelhaar/sotsync/internal/testutil"
)

const testRunningConfig = `hostname r1
ip domain-name example.net
!
interface GigabitEthernet0/0
 description uplink
 ip address 10.0.0.1 255.255.255.0
!
username alice privilege 15 secret X
snmp-server community old RO
`

// testInventory holds r1 with users and snmp state and r2 with snmp only.
// Both devices share the r1 running config.
func testInventory() string {
	return testutil.NewInventoryBuilder().
		WithDevice("r1", "ios", "r1.cfg").
		WithProperty("site", "lab").
		WithDesired("users", map[string]any{"username": "bob", "privilege": 10, "secret": "Y"}).
		WithDesired("snmp", map[string]any{"community": "public"}).
		WithDevice("r2", "ios", "r1.cfg").
		WithDesired("snmp", map[string]any{"community": "ops", "access": "RW"}).
		Build().
		ToYAML()
}

func testSettings() string {
	return testutil.NewSettingsBuilder().
		WithLogLevel("error").
		WithWorkers(2).
		WithDefault("status", "active").
		Build().
		ToYAML()
}

// workspace writes a running config, inventory and settings file to a temp dir.
type workspace struct {
	dir       string
	config    string
	inventory string
	settings  string
}

func newWorkspace(t *testing.T) workspace {
	t.Helper()
	dir := t.TempDir()
	return workspace{
		dir:       dir,
		config:    testutil.WriteTempFile(t, dir, "r1.cfg", testRunningConfig),
		inventory: testutil.WriteTempFile(t, dir, "inventory.yaml", testInventory()),
		settings:  testutil.WriteTempFile(t, dir, "sotsync.yaml", testSettings()),
	}
}

func (ws workspace) runtime() runtimeOptions {
	return runtimeOptions{
		configPath: ws.settings,
		stderr:     io.Discard,
		fs:         filesystem.NewRealFileSystem(),
	}
}

// testCommand returns a command writing to a buffer with a live context.
func testCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetContext(context.Background())
	return cmd, &buf
}
