package testutil

import (
	"gopkg.in/yaml.v3"
)

// TestDevice is one inventory entry for testing.
type TestDevice struct {
	Name       string                      `yaml:"name"`
	Platform   string                      `yaml:"platform,omitempty"`
	Config     string                      `yaml:"config,omitempty"`
	Properties map[string]any              `yaml:"properties,omitempty"`
	Desired    map[string][]map[string]any `yaml:"desired,omitempty"`
}

// TestInventory is a simplified inventory structure for testing.
type TestInventory struct {
	Devices []*TestDevice `yaml:"devices"`
}

// InventoryBuilder builds test inventories.
type InventoryBuilder struct {
	inventory TestInventory
}

// NewInventoryBuilder creates a new inventory builder.
func NewInventoryBuilder() *InventoryBuilder {
	return &InventoryBuilder{}
}

// WithDevice adds a device. Later calls configure the most recent device.
func (b *InventoryBuilder) WithDevice(name, platform, config string) *InventoryBuilder {
	b.inventory.Devices = append(b.inventory.Devices, &TestDevice{
		Name:     name,
		Platform: platform,
		Config:   config,
	})
	return b
}

// WithProperty sets a property on the current device.
func (b *InventoryBuilder) WithProperty(key string, value any) *InventoryBuilder {
	d := b.current()
	if d.Properties == nil {
		d.Properties = make(map[string]any)
	}
	d.Properties[key] = value
	return b
}

// WithDesired appends desired entities of section to the current device.
func (b *InventoryBuilder) WithDesired(section string, entities ...map[string]any) *InventoryBuilder {
	d := b.current()
	if d.Desired == nil {
		d.Desired = make(map[string][]map[string]any)
	}
	d.Desired[section] = append(d.Desired[section], entities...)
	return b
}

func (b *InventoryBuilder) current() *TestDevice {
	if len(b.inventory.Devices) == 0 {
		panic("testutil: WithDevice must be called first")
	}
	return b.inventory.Devices[len(b.inventory.Devices)-1]
}

// Build returns the constructed inventory.
func (b *InventoryBuilder) Build() TestInventory {
	return b.inventory
}

// ToYAML converts the inventory to a YAML string.
func (inv TestInventory) ToYAML() string {
	return mustYAML(inv)
}

// TestSection is a settings-defined reconcile section for testing.
type TestSection struct {
	Name     string `yaml:"name"`
	Match    string `yaml:"match"`
	Identity string `yaml:"identity"`
	Template string `yaml:"template"`
}

// TestSettings is a simplified settings structure for testing.
type TestSettings struct {
	Log struct {
		Level string `yaml:"level,omitempty"`
		JSON  bool   `yaml:"json,omitempty"`
	} `yaml:"log"`
	Workers    int `yaml:"workers,omitempty"`
	Onboarding struct {
		Defaults map[string]any `yaml:"defaults,omitempty"`
	} `yaml:"onboarding"`
	Sections []TestSection `yaml:"sections,omitempty"`
}

// SettingsBuilder builds test settings files.
type SettingsBuilder struct {
	settings TestSettings
}

// NewSettingsBuilder creates a new settings builder.
func NewSettingsBuilder() *SettingsBuilder {
	return &SettingsBuilder{}
}

// WithLogLevel sets log.level.
func (b *SettingsBuilder) WithLogLevel(level string) *SettingsBuilder {
	b.settings.Log.Level = level
	return b
}

// WithWorkers sets workers.
func (b *SettingsBuilder) WithWorkers(n int) *SettingsBuilder {
	b.settings.Workers = n
	return b
}

// WithDefault adds an onboarding default.
func (b *SettingsBuilder) WithDefault(key string, value any) *SettingsBuilder {
	if b.settings.Onboarding.Defaults == nil {
		b.settings.Onboarding.Defaults = make(map[string]any)
	}
	b.settings.Onboarding.Defaults[key] = value
	return b
}

// WithSection adds a reconcile section.
func (b *SettingsBuilder) WithSection(name, match, identity, template string) *SettingsBuilder {
	b.settings.Sections = append(b.settings.Sections, TestSection{
		Name:     name,
		Match:    match,
		Identity: identity,
		Template: template,
	})
	return b
}

// Build returns the constructed settings.
func (b *SettingsBuilder) Build() TestSettings {
	return b.settings
}

// ToYAML converts the settings to a YAML string.
func (s TestSettings) ToYAML() string {
	return mustYAML(s)
}

func mustYAML(v any) string {
	data, err := yaml.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
