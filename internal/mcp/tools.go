// Package mcp exposes sotsync operations as Model Context Protocol tools.
package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/sotsync/internal/app"
	"github.com/felixgeelhaar/sotsync/internal/domain/configparser"
	"github.com/felixgeelhaar/sotsync/internal/domain/pipeline"
)

// ParseInput is the input for the sotsync_parse tool.
type ParseInput struct {
	Platform   string `json:"platform" jsonschema:"required,description=Platform of the configuration (e.g. ios, linux, firewall)"`
	ConfigPath string `json:"config_path" jsonschema:"required,description=Path to the running configuration file"`
	Interface  string `json:"interface,omitempty" jsonschema:"description=Only return this interface"`
}

// ParseOutput is the output for the sotsync_parse tool.
type ParseOutput struct {
	Platform   string          `json:"platform"`
	FQDN       string          `json:"fqdn,omitempty"`
	Interfaces []InterfaceInfo `json:"interfaces"`
}

// InterfaceInfo describes one parsed interface.
type InterfaceInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Addresses   []string `json:"addresses,omitempty"`
	MTU         int      `json:"mtu,omitempty"`
	Enabled     bool     `json:"enabled"`
}

// SyncInput is the input for the sotsync_sync tool.
type SyncInput struct {
	Device     string   `json:"device" jsonschema:"required,description=Device name from the inventory"`
	Sections   []string `json:"sections" jsonschema:"required,description=Sections to reconcile (e.g. users, snmp)"`
	Platform   string   `json:"platform,omitempty" jsonschema:"description=Override the inventory platform"`
	ConfigPath string   `json:"config_path,omitempty" jsonschema:"description=Override the inventory running configuration path"`
	Apply      bool     `json:"apply,omitempty" jsonschema:"description=Send the commands to the executor"`
	Confirm    bool     `json:"confirm,omitempty" jsonschema:"description=Must be true together with apply (safety confirmation)"`
}

// SyncOutput is the output for the sotsync_sync tool.
type SyncOutput struct {
	Device   string          `json:"device"`
	Platform string          `json:"platform"`
	Applied  bool            `json:"applied"`
	Commands []string        `json:"commands"`
	Sections []SectionResult `json:"sections"`
	Skipped  int             `json:"skipped_lines"`
	Errors   []string        `json:"errors,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// SectionResult summarizes one reconciled section.
type SectionResult struct {
	Section   string `json:"section"`
	Negations int    `json:"negations"`
	Additions int    `json:"additions"`
	Failures  int    `json:"failures"`
}

// OnboardInput is the input for the sotsync_onboard tool.
type OnboardInput struct {
	Device        string         `json:"device" jsonschema:"required,description=Device name from the inventory"`
	Platform      string         `json:"platform,omitempty" jsonschema:"description=Override the inventory platform"`
	ConfigPath    string         `json:"config_path,omitempty" jsonschema:"description=Override the inventory running configuration path"`
	ConfigContext map[string]any `json:"config_context,omitempty" jsonschema:"description=Values merged over the assembled config context"`
}

// OnboardOutput is the output for the sotsync_onboard tool.
type OnboardOutput struct {
	RunID         string            `json:"run_id"`
	Device        map[string]any    `json:"device"`
	Interfaces    []map[string]any  `json:"interfaces"`
	ConfigContext map[string]any    `json:"config_context"`
	Chains        map[string]string `json:"chains"`
}

// DevicesInput is the input for the sotsync_devices tool.
type DevicesInput struct{}

// DevicesOutput is the output for the sotsync_devices tool.
type DevicesOutput struct {
	Devices []string `json:"devices"`
}

// PluginsInput is the input for the sotsync_plugins tool.
type PluginsInput struct{}

// PluginsOutput is the output for the sotsync_plugins tool.
type PluginsOutput struct {
	Registrations []Registration `json:"registrations"`
	Bundles       []BundleInfo   `json:"bundles"`
	Sections      []string       `json:"sections"`
}

// Registration is one registered handler.
type Registration struct {
	Category string `json:"category"`
	Key      string `json:"key"`
}

// BundleInfo describes an installed plugin bundle.
type BundleInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	APIVersion    string `json:"api_version"`
	Description   string `json:"description,omitempty"`
	Registrations int    `json:"registrations"`
}

// StatusInput is the input for the sotsync_status tool.
type StatusInput struct{}

// StatusOutput is the output for the sotsync_status tool.
type StatusOutput struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	BuildDate   string `json:"build_date"`
	Inventory   bool   `json:"inventory_loaded"`
	DeviceCount int    `json:"device_count"`
	Sections    int    `json:"section_count"`
	CanApply    bool   `json:"can_apply"`
}

// VersionInfo contains version metadata for the MCP server.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// RegisterAll registers all MCP tools with the server.
func RegisterAll(srv *mcp.Server, a *app.App, versionInfo VersionInfo) {
	registerParseTool(srv, a)
	registerSyncTool(srv, a)
	registerOnboardTool(srv, a)
	registerDevicesTool(srv, a)
	registerPluginsTool(srv, a)
	registerStatusTool(srv, a, versionInfo)
}

func registerParseTool(srv *mcp.Server, a *app.App) {
	srv.Tool("sotsync_parse").
		Description("Parse a running configuration and return its FQDN and interfaces.").
		ReadOnly().
		Handler(func(ctx context.Context, in ParseInput) (*ParseOutput, error) {
			if err := ValidateParseInput(&in); err != nil {
				return nil, err
			}

			parser, err := a.Parse(ctx, in.Platform, in.ConfigPath)
			if err != nil {
				return nil, err
			}

			output := &ParseOutput{Platform: parser.Platform()}
			if fqdn, ok := parser.FQDN(); ok {
				output.FQDN = fqdn
			}

			records := parser.Interfaces()
			if in.Interface != "" {
				rec, ok := parser.Interface(in.Interface)
				if !ok {
					return nil, fmt.Errorf("interface %q not found", in.Interface)
				}
				records = []configparser.InterfaceRecord{rec}
			}
			output.Interfaces = make([]InterfaceInfo, 0, len(records))
			for _, rec := range records {
				output.Interfaces = append(output.Interfaces, toInterfaceInfo(rec))
			}
			return output, nil
		})
}

func registerSyncTool(srv *mcp.Server, a *app.App) {
	srv.Tool("sotsync_sync").
		Description("Reconcile device sections against the source of truth. Applying REQUIRES confirm=true; otherwise the commands are only computed.").
		Destructive().
		Handler(func(ctx context.Context, in SyncInput) (*SyncOutput, error) {
			if err := ValidateSyncInput(&in); err != nil {
				return nil, err
			}

			apply := in.Apply && in.Confirm
			req := app.NewSyncRequest(in.Device, in.Sections...).
				WithPlatform(in.Platform).
				WithConfigPath(in.ConfigPath).
				WithApply(apply)

			res, err := a.Sync(ctx, req)
			if res == nil {
				return nil, err
			}

			output := toSyncOutput(res)
			switch {
			case err != nil:
				output.Errors = append(output.Errors, err.Error())
			case in.Apply && !in.Confirm:
				output.Message = "Dry run: set confirm=true together with apply=true to apply the commands"
			}
			return output, nil
		})
}

func registerOnboardTool(srv *mcp.Server, a *app.App) {
	srv.Tool("sotsync_onboard").
		Description("Run the onboarding chains for a device and return its properties, interfaces and config context.").
		ReadOnly().
		Handler(func(ctx context.Context, in OnboardInput) (*OnboardOutput, error) {
			if err := ValidateOnboardInput(&in); err != nil {
				return nil, err
			}

			outcome, err := a.Onboard(ctx, app.OnboardRequest{
				Device:        in.Device,
				Platform:      in.Platform,
				ConfigPath:    in.ConfigPath,
				ConfigContext: in.ConfigContext,
			})
			if err != nil {
				return nil, err
			}

			output := &OnboardOutput{
				RunID:         outcome.RunID,
				Device:        outcome.DeviceProperties,
				ConfigContext: outcome.ConfigContext,
				Interfaces:    make([]map[string]any, 0, len(outcome.Interfaces)),
				Chains:        make(map[string]string, len(outcome.States)),
			}
			for _, iface := range outcome.Interfaces {
				output.Interfaces = append(output.Interfaces, iface)
			}
			for _, c := range pipeline.Chains() {
				output.Chains[string(c)] = string(outcome.States[c])
			}
			return output, nil
		})
}

func registerDevicesTool(srv *mcp.Server, a *app.App) {
	srv.Tool("sotsync_devices").
		Description("List the devices known to the source of truth.").
		ReadOnly().
		Handler(func(ctx context.Context, _ DevicesInput) (*DevicesOutput, error) {
			devices, err := a.Devices(ctx)
			if err != nil {
				return nil, err
			}
			return &DevicesOutput{Devices: devices}, nil
		})
}

func registerPluginsTool(srv *mcp.Server, a *app.App) {
	srv.Tool("sotsync_plugins").
		Description("List registered plugin handlers, installed bundles and reconcile sections.").
		ReadOnly().
		Handler(func(_ context.Context, _ PluginsInput) (*PluginsOutput, error) {
			reg := a.Registry()
			output := &PluginsOutput{Sections: a.Catalog().Sections()}
			for _, e := range reg.Entries() {
				output.Registrations = append(output.Registrations, Registration{
					Category: string(e.Category),
					Key:      string(e.Key),
				})
			}
			for _, b := range reg.Bundles() {
				output.Bundles = append(output.Bundles, BundleInfo{
					Name:          b.Name,
					Version:       b.Version,
					APIVersion:    b.APIVersion,
					Description:   b.Description,
					Registrations: b.Registrations,
				})
			}
			return output, nil
		})
}

func registerStatusTool(srv *mcp.Server, a *app.App, versionInfo VersionInfo) {
	srv.Tool("sotsync_status").
		Description("Get the current sotsync status: version, inventory and available sections.").
		ReadOnly().
		Handler(func(ctx context.Context, _ StatusInput) (*StatusOutput, error) {
			output := &StatusOutput{
				Version:   versionInfo.Version,
				Commit:    versionInfo.Commit,
				BuildDate: versionInfo.BuildDate,
				Sections:  len(a.Catalog().Sections()),
				CanApply:  a.CanApply(),
			}
			if devices, err := a.Devices(ctx); err == nil {
				output.Inventory = true
				output.DeviceCount = len(devices)
			}
			return output, nil
		})
}

func toInterfaceInfo(rec configparser.InterfaceRecord) InterfaceInfo {
	info := InterfaceInfo{
		Name:        rec.Name,
		Description: rec.Description,
		MTU:         rec.MTU,
		Enabled:     rec.Enabled,
	}
	for _, addr := range rec.Addresses {
		info.Addresses = append(info.Addresses, addr.String())
	}
	return info
}

func toSyncOutput(res *app.SyncResult) *SyncOutput {
	output := &SyncOutput{
		Device:   res.Device,
		Platform: res.Platform,
		Applied:  res.Applied,
		Commands: res.Commands,
		Skipped:  res.Skipped(),
		Sections: make([]SectionResult, 0, len(res.Sections)),
	}
	if output.Commands == nil {
		output.Commands = []string{}
	}
	for _, s := range res.Sections {
		output.Sections = append(output.Sections, SectionResult{
			Section:   s.Section,
			Negations: len(s.Negations),
			Additions: len(s.Additions),
			Failures:  len(s.Failures),
		})
		for _, f := range s.Failures {
			output.Errors = append(output.Errors, f.Error())
		}
	}
	return output
}
