package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// SourceOfTruth is a thread-safe in-memory test double for ports.SourceOfTruth.
type SourceOfTruth struct {
	mu      sync.RWMutex
	devices map[string]ports.Device
	desired map[string]map[string][]properties.Properties
	err     error
}

// NewSourceOfTruth creates an empty SourceOfTruth mock.
func NewSourceOfTruth() *SourceOfTruth {
	return &SourceOfTruth{
		devices: make(map[string]ports.Device),
		desired: make(map[string]map[string][]properties.Properties),
	}
}

// AddDevice stores a device record.
func (m *SourceOfTruth) AddDevice(d ports.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices[d.Name] = d
}

// SetDesired stores the desired entities of section on device.
func (m *SourceOfTruth) SetDesired(device, section string, entities ...properties.Properties) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.desired[device] == nil {
		m.desired[device] = make(map[string][]properties.Properties)
	}
	m.desired[device][section] = entities
}

// SetError makes every call fail with err.
func (m *SourceOfTruth) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Device returns the stored device.
func (m *SourceOfTruth) Device(_ context.Context, name string) (ports.Device, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return ports.Device{}, m.err
	}
	d, ok := m.devices[name]
	if !ok {
		return ports.Device{}, fmt.Errorf("%w: %s", ports.ErrDeviceNotFound, name)
	}
	d.Properties = d.Properties.Clone()
	return d, nil
}

// DesiredState returns a copy of the stored entities.
func (m *SourceOfTruth) DesiredState(_ context.Context, device, section string) ([]properties.Properties, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.devices[device]; !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrDeviceNotFound, device)
	}
	src := m.desired[device][section]
	out := make([]properties.Properties, len(src))
	for i, e := range src {
		out[i] = e.Clone()
	}
	return out, nil
}

// Devices returns the stored device names in sorted order.
func (m *SourceOfTruth) Devices(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	names := make([]string, 0, len(m.devices))
	for name := range m.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Ensure SourceOfTruth implements ports.SourceOfTruth.
var _ ports.SourceOfTruth = (*SourceOfTruth)(nil)
