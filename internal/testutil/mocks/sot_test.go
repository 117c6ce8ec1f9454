package mocks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
	"github.com/felixgeelhaar/sotsync/internal/ports"
)

func TestSourceOfTruth(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewSourceOfTruth()
	m.AddDevice(ports.Device{Name: "r2", Platform: "ios"})
	m.AddDevice(ports.Device{Name: "r1", Platform: "ios", Properties: properties.Properties{"site": "ams"}})
	m.SetDesired("r1", "users", properties.Properties{"username": "bob"})

	names, err := m.Devices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r2"}, names)

	d, err := m.Device(ctx, "r1")
	require.NoError(t, err)
	d.Properties["site"] = "mutated"
	again, _ := m.Device(ctx, "r1")
	assert.Equal(t, "ams", again.Properties["site"])

	desired, err := m.DesiredState(ctx, "r1", "users")
	require.NoError(t, err)
	assert.Equal(t, []properties.Properties{{"username": "bob"}}, desired)

	empty, err := m.DesiredState(ctx, "r2", "users")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = m.Device(ctx, "r9")
	assert.ErrorIs(t, err, ports.ErrDeviceNotFound)
	_, err = m.DesiredState(ctx, "r9", "users")
	assert.ErrorIs(t, err, ports.ErrDeviceNotFound)
}

func TestSourceOfTruth_SetError(t *testing.T) {
	t.Parallel()

	m := NewSourceOfTruth()
	boom := errors.New("api down")
	m.SetError(boom)

	_, err := m.Devices(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestLogger_RecordsEntries(t *testing.T) {
	t.Parallel()

	l := NewLogger()
	child := l.With(ports.F("device", "r1"))
	child.Warn(context.Background(), "skipped", ports.F("line", "garbage"))
	l.SetLevel(ports.LevelInfo)
	l.Debug(context.Background(), "hidden")
	l.Info(context.Background(), "shown")

	assert.Equal(t, []string{"skipped", "shown"}, l.Messages())

	warns := l.EntriesAt(ports.LevelWarn)
	require.Len(t, warns, 1)
	device, ok := warns[0].Field("device")
	require.True(t, ok)
	assert.Equal(t, "r1", device)
	_, ok = warns[0].Field("missing")
	assert.False(t, ok)
}
