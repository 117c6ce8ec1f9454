package app

import (
	"context"
	"strings"

	"github.com/felixgeelhaar/sotsync/internal/domain/configparser"
	"github.com/felixgeelhaar/sotsync/internal/domain/plugin"
	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
)

// BuiltinBundleName names the bundle of handlers shipped with sotsync.
const BuiltinBundleName = "builtin"

// BuiltinBundle returns the parsers and hooks registered by default.
func BuiltinBundle() plugin.Bundle {
	return plugin.Bundle{
		Name:        BuiltinBundleName,
		Version:     "1.0.0",
		APIVersion:  plugin.APIVersion,
		Description: "platform parsers and default hooks",
		Registrations: []plugin.Registration{
			{Category: plugin.CategoryConfigParser, Key: configparser.PlatformIOS, Handler: plugin.ParserFactory(configparser.NewIOS)},
			{Category: plugin.CategoryConfigParser, Key: configparser.PlatformLinux, Handler: plugin.ParserFactory(configparser.NewLinux)},
			{Category: plugin.CategoryConfigParser, Key: configparser.PlatformFirewall, Handler: plugin.ParserFactory(configparser.NewFirewall)},
			{Category: plugin.CategoryDeviceBusinessLogic, Key: configparser.PlatformIOS, Handler: plugin.DeviceLogicFunc(iosDeviceLogic)},
			{Category: plugin.CategoryInterfaceBusinessLogic, Key: configparser.PlatformFirewall, Handler: plugin.InterfaceLogicFunc(enabledInterfacesOnly)},
			{Category: plugin.CategoryConfigContextBusinessLogic, Key: configparser.PlatformIOS, Handler: plugin.ConfigContextLogicFunc(pruneEmptyContext)},
			{Category: plugin.CategoryPreprocessing, Key: "snmp", Handler: plugin.PreprocessFunc(snmpDefaults)},
			{Category: plugin.CategoryPostprocessing, Key: configparser.PlatformIOS, Handler: plugin.PostprocessFunc(iosConfigureMode)},
		},
	}
}

// NewRegistry installs the builtin bundle followed by extra bundles and
// freezes the result.
func NewRegistry(extra ...plugin.Bundle) (*plugin.Registry, error) {
	b := plugin.NewBuilder()
	for _, bundle := range append([]plugin.Bundle{BuiltinBundle()}, extra...) {
		if err := b.Install(bundle); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// iosDeviceLogic fills hostname and fqdn from the running config and
// applies device defaults to keys the device does not set.
func iosDeviceLogic(_ context.Context, bag *properties.Bag) (properties.Properties, error) {
	props := bag.Properties("device_properties", properties.Properties{})

	if parser, ok := bag.Get("parsed_config", nil).(configparser.Parser); ok && parser != nil {
		if fqdn, ok := parser.FQDN(); ok {
			if !props.Has("fqdn") {
				props["fqdn"] = fqdn
			}
			if !props.Has("hostname") {
				host, _, _ := strings.Cut(fqdn, ".")
				props["hostname"] = host
			}
		}
	}

	for k, v := range bag.Properties("device_defaults", nil) {
		if !props.Has(k) {
			props[k] = v
		}
	}
	return props, nil
}

func enabledInterfacesOnly(_ context.Context, bag *properties.Bag) ([]properties.Properties, error) {
	in := bag.List("interfaces", nil)
	out := make([]properties.Properties, 0, len(in))
	for _, iface := range in {
		if iface.Bool("enabled", true) {
			out = append(out, iface)
		}
	}
	return out, nil
}

func pruneEmptyContext(_ context.Context, bag *properties.Bag) (properties.Properties, error) {
	cc := bag.Properties("config_context", properties.Properties{})
	for k, v := range cc {
		if isEmptyValue(v) {
			delete(cc, k)
		}
	}
	return cc, nil
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case []properties.Properties:
		return len(t) == 0
	case properties.Properties:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func snmpDefaults(_ context.Context, bag *properties.Bag) ([]properties.Properties, error) {
	desired := bag.List("desired", []properties.Properties{})
	for _, e := range desired {
		if strings.TrimSpace(e.String("access", "")) == "" {
			e["access"] = "RO"
		}
	}
	return desired, nil
}

func iosConfigureMode(_ context.Context, bag *properties.Bag) ([]string, error) {
	cmds := bag.Strings("commands", []string{})
	if len(cmds) == 0 {
		return cmds, nil
	}
	out := make([]string, 0, len(cmds)+2)
	out = append(out, "configure terminal")
	out = append(out, cmds...)
	return append(out, "end"), nil
}
