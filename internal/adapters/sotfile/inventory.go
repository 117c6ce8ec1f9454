// Package sotfile provides a file-backed ports.SourceOfTruth.
//
// An inventory lists devices with their platform, running configuration
// file, properties and the desired entities of each configuration section.
// Files ending in .toml are decoded as TOML; anything else as YAML.
package sotfile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// Format is an inventory encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrInvalidInventory indicates an inventory that decodes but is inconsistent.
var ErrInvalidInventory = errors.New("invalid inventory")

// FormatFor picks the format from the file extension.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

type fileDevice struct {
	Name       string                      `yaml:"name" toml:"name"`
	Platform   string                      `yaml:"platform" toml:"platform"`
	Config     string                      `yaml:"config" toml:"config"`
	Properties map[string]any              `yaml:"properties" toml:"properties"`
	Desired    map[string][]map[string]any `yaml:"desired" toml:"desired"`
}

type fileInventory struct {
	Devices []fileDevice `yaml:"devices" toml:"devices"`
}

type entry struct {
	device  ports.Device
	desired map[string][]properties.Properties
}

// Inventory is an immutable, in-memory source of truth.
type Inventory struct {
	devices map[string]entry
	names   []string
}

// Load reads and decodes the inventory at path.
// Relative device config paths are resolved against the inventory directory.
func Load(fs ports.FileSystem, path string) (*Inventory, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory %s: %w", path, err)
	}
	inv, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}
	inv.resolveConfigPaths(filepath.Dir(path))
	return inv, nil
}

// Parse decodes an inventory document.
func Parse(data []byte, format Format) (*Inventory, error) {
	var raw fileInventory
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported inventory format %q", format)
	}

	inv := &Inventory{devices: make(map[string]entry, len(raw.Devices))}
	for i, d := range raw.Devices {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: device %d has no name", ErrInvalidInventory, i)
		}
		if _, dup := inv.devices[name]; dup {
			return nil, fmt.Errorf("%w: device %q listed twice", ErrInvalidInventory, name)
		}

		desired := make(map[string][]properties.Properties, len(d.Desired))
		for section, entities := range d.Desired {
			list := make([]properties.Properties, 0, len(entities))
			for _, e := range entities {
				list = append(list, properties.FromMap(e))
			}
			desired[strings.ToLower(strings.TrimSpace(section))] = list
		}

		inv.devices[name] = entry{
			device: ports.Device{
				Name:       name,
				Platform:   strings.ToLower(strings.TrimSpace(d.Platform)),
				ConfigPath: d.Config,
				Properties: properties.FromMap(d.Properties),
			},
			desired: desired,
		}
		inv.names = append(inv.names, name)
	}
	sort.Strings(inv.names)
	return inv, nil
}

func (inv *Inventory) resolveConfigPaths(base string) {
	for name, e := range inv.devices {
		p := e.device.ConfigPath
		if p == "" || filepath.IsAbs(p) || strings.HasPrefix(p, "~/") {
			continue
		}
		e.device.ConfigPath = filepath.Join(base, p)
		inv.devices[name] = e
	}
}

// Device returns the named device.
func (inv *Inventory) Device(ctx context.Context, name string) (ports.Device, error) {
	if err := ctx.Err(); err != nil {
		return ports.Device{}, err
	}
	e, ok := inv.devices[name]
	if !ok {
		return ports.Device{}, fmt.Errorf("%w: %s", ports.ErrDeviceNotFound, name)
	}
	d := e.device
	d.Properties = d.Properties.Clone()
	return d, nil
}

// DesiredState returns a copy of the desired entities of section on device.
func (inv *Inventory) DesiredState(ctx context.Context, device, section string) ([]properties.Properties, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := inv.devices[device]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ports.ErrDeviceNotFound, device)
	}
	src := e.desired[strings.ToLower(strings.TrimSpace(section))]
	out := make([]properties.Properties, len(src))
	for i, p := range src {
		out[i] = p.Clone()
	}
	return out, nil
}

// Devices returns the device names in sorted order.
func (inv *Inventory) Devices(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]string(nil), inv.names...), nil
}

// Sections returns the sections with desired state for device.
func (inv *Inventory) Sections(device string) []string {
	e, ok := inv.devices[device]
	if !ok {
		return nil
	}
	sections := make([]string, 0, len(e.desired))
	for s := range e.desired {
		sections = append(sections, s)
	}
	sort.Strings(sections)
	return sections
}

// Ensure Inventory implements ports.SourceOfTruth.
var _ ports.SourceOfTruth = (*Inventory)(nil)
