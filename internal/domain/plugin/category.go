// Package plugin provides the registry of capability-scoped handlers.
//
// Handlers are registered on a Builder during process initialization; Build
// freezes the table into a Registry that only supports lookups and dispatch,
// so it can be shared by concurrent device pipelines without locking.
package plugin

import (
	"fmt"
	"strings"
)

// Category is the closed set of plugin kinds.
type Category string

const (
	// CategoryPreprocessing transforms desired state before reconciliation.
	CategoryPreprocessing Category = "preprocessing"
	// CategoryPostprocessing transforms the command list after reconciliation.
	CategoryPostprocessing Category = "postprocessing"
	// CategoryDeviceBusinessLogic adjusts device properties during onboarding.
	CategoryDeviceBusinessLogic Category = "device_business_logic"
	// CategoryInterfaceBusinessLogic adjusts the enumerated interface list.
	CategoryInterfaceBusinessLogic Category = "interface_business_logic"
	// CategoryConfigContextBusinessLogic adjusts the assembled config context.
	CategoryConfigContextBusinessLogic Category = "config_context_business_logic"
	// CategoryConfigParser builds a platform-specific configuration parser.
	CategoryConfigParser Category = "configparser"
)

// categorySpec describes a category's call convention.
type categorySpec struct {
	positional []string
	subject    string
	kind       string
}

var categorySpecs = map[Category]categorySpec{
	CategoryPreprocessing: {
		positional: []string{"sot", "device", "desired"},
		subject:    "desired",
		kind:       "PreprocessFunc",
	},
	CategoryPostprocessing: {
		positional: []string{"sot", "device", "commands"},
		subject:    "commands",
		kind:       "PostprocessFunc",
	},
	CategoryDeviceBusinessLogic: {
		positional: []string{"sot", "device_properties", "device_defaults", "parsed_config", "onboarding_config"},
		subject:    "device_properties",
		kind:       "DeviceLogicFunc",
	},
	CategoryInterfaceBusinessLogic: {
		positional: []string{"interfaces"},
		subject:    "interfaces",
		kind:       "InterfaceLogicFunc",
	},
	CategoryConfigContextBusinessLogic: {
		positional: []string{"config_context"},
		subject:    "config_context",
		kind:       "ConfigContextLogicFunc",
	},
	CategoryConfigParser: {
		positional: []string{"config", "platform"},
		kind:       "ParserFactoryFunc",
	},
}

// Categories returns every category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryPreprocessing,
		CategoryPostprocessing,
		CategoryDeviceBusinessLogic,
		CategoryInterfaceBusinessLogic,
		CategoryConfigContextBusinessLogic,
		CategoryConfigParser,
	}
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	_, ok := categorySpecs[c]
	return ok
}

// String returns the category name.
func (c Category) String() string {
	return string(c)
}

// PositionalNames returns the names assigned to positional dispatch arguments.
func (c Category) PositionalNames() []string {
	return append([]string(nil), categorySpecs[c].positional...)
}

// Subject returns the argument an identity handler passes through unchanged.
// It is empty for categories without an identity fallback.
func (c Category) Subject() string {
	return categorySpecs[c].subject
}

// HandlerKind names the function type handlers of this category must have.
func (c Category) HandlerKind() string {
	return categorySpecs[c].kind
}

// Key scopes a handler within its category (a platform or plugin name).
type Key string

// NormalizeKey lower-cases and trims a key.
func NormalizeKey(s string) Key {
	return Key(strings.ToLower(strings.TrimSpace(s)))
}

// String returns the key.
func (k Key) String() string {
	return string(k)
}
