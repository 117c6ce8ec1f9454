// Package app wires the registry, dispatcher and reconciler into the
// operations exposed by the CLI.
package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/sotsync/internal/adapters/filesystem"
	"github.com/felixgeelhaar/sotsync/internal/adapters/logging"
	"github.com/felixgeelhaar/sotsync/internal/domain/config"
	"github.com/felixgeelhaar/sotsync/internal/domain/configparser"
	"github.com/felixgeelhaar/sotsync/internal/domain/pipeline"
	"github.com/felixgeelhaar/sotsync/internal/domain/plugin"
	"github.com/felixgeelhaar/sotsync/internal/domain/reconcile"
	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// App is the main application orchestrator.
type App struct {
	settings   *config.Settings
	registry   *plugin.Registry
	catalog    *reconcile.Catalog
	dispatcher *pipeline.Dispatcher
	reconciler *reconcile.Reconciler
	fs         ports.FileSystem
	sot        ports.SourceOfTruth
	executor   ports.CommandExecutor
	logger     ports.Logger
}

// Option configures an App.
type Option func(*App)

// WithFileSystem sets the filesystem used to read running configurations.
func WithFileSystem(fs ports.FileSystem) Option {
	return func(a *App) { a.fs = fs }
}

// WithSourceOfTruth sets the source of truth.
func WithSourceOfTruth(sot ports.SourceOfTruth) Option {
	return func(a *App) { a.sot = sot }
}

// WithExecutor sets the executor used by applying syncs.
func WithExecutor(executor ports.CommandExecutor) Option {
	return func(a *App) { a.executor = executor }
}

// WithLogger sets the logger.
func WithLogger(logger ports.Logger) Option {
	return func(a *App) { a.logger = logger }
}

// WithRegistry replaces the builtin registry.
func WithRegistry(registry *plugin.Registry) Option {
	return func(a *App) { a.registry = registry }
}

// New creates an App from settings. Nil settings use the defaults.
func New(settings *config.Settings, opts ...Option) (*App, error) {
	if settings == nil {
		settings = config.Default()
	}
	catalog, err := settings.Catalog()
	if err != nil {
		return nil, err
	}

	a := &App{
		settings: settings,
		catalog:  catalog,
		fs:       filesystem.NewRealFileSystem(),
		logger:   logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.registry == nil {
		reg, err := NewRegistry()
		if err != nil {
			return nil, fmt.Errorf("builtin plugins: %w", err)
		}
		a.registry = reg
	}

	a.dispatcher = pipeline.NewDispatcher(a.registry, pipeline.WithLogger(a.logger))
	a.reconciler = reconcile.NewReconciler(a.logger)
	return a, nil
}

// Registry returns the frozen plugin registry.
func (a *App) Registry() *plugin.Registry {
	return a.registry
}

// Catalog returns the reconcile strategies known to the app.
func (a *App) Catalog() *reconcile.Catalog {
	return a.catalog
}

// CanApply reports whether an executor is configured for applying commands.
func (a *App) CanApply() bool {
	return a.executor != nil
}

// Parse reads the configuration at path and builds the platform parser.
func (a *App) Parse(ctx context.Context, platform, path string) (configparser.Parser, error) {
	raw, err := a.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return a.dispatcher.Parse(ctx, platform, string(raw))
}

// Onboard runs the onboarding chains for one device.
func (a *App) Onboard(ctx context.Context, req OnboardRequest) (*pipeline.Outcome, error) {
	device, platform, raw, err := a.resolveDevice(ctx, req.Device, req.Platform, req.ConfigPath)
	if err != nil {
		return nil, err
	}

	return a.dispatcher.Onboard(ctx, pipeline.Request{
		SOT:              a.sot,
		Device:           device.Name,
		Platform:         platform,
		Config:           string(raw),
		DeviceProperties: device.Properties.Clone(),
		DeviceDefaults:   a.settings.DeviceDefaults(),
		OnboardingConfig: req.OnboardingConfig,
		ConfigContext:    req.ConfigContext,
	})
}

// Sync converges the requested sections of one device.
//
// Each section reads its block from the running configuration and its
// desired entities from the source of truth, runs the section's
// preprocessing hook and is reconciled. The combined commands then pass
// through the platform's postprocessing hook. Entity failures are reported
// on the result and do not stop the run.
func (a *App) Sync(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	if len(req.Sections) == 0 {
		return nil, ErrNoSections
	}
	strategies := make([]reconcile.Strategy, 0, len(req.Sections))
	for _, name := range req.Sections {
		s, ok := a.catalog.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %v)", ErrUnknownSection, name, a.catalog.Sections())
		}
		strategies = append(strategies, s)
	}

	device, platform, raw, err := a.resolveDevice(ctx, req.Device, req.Platform, req.ConfigPath)
	if err != nil {
		return nil, err
	}

	parser, err := a.dispatcher.Parse(ctx, platform, string(raw))
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", device.Name, err)
	}

	result := &SyncResult{Device: device.Name, Platform: platform}
	var commands []string
	for _, s := range strategies {
		desired, err := a.sot.DesiredState(ctx, device.Name, s.Section)
		if err != nil {
			return nil, fmt.Errorf("device %q: desired %s: %w", device.Name, s.Section, err)
		}
		desired, err = a.dispatcher.Preprocess(ctx, s.Section, a.sot, device.Name, desired)
		if err != nil {
			return nil, fmt.Errorf("device %q: %w", device.Name, err)
		}

		res, err := a.reconciler.Sync(ctx, s.Block(parser), desired, s)
		if err != nil {
			return nil, fmt.Errorf("device %q: reconcile %s: %w", device.Name, s.Section, err)
		}
		result.Sections = append(result.Sections, res)
		commands = append(commands, res.Commands()...)
	}

	result.Commands, err = a.dispatcher.Postprocess(ctx, platform, a.sot, device.Name, commands)
	if err != nil {
		return nil, fmt.Errorf("device %q: %w", device.Name, err)
	}

	if req.Apply && len(result.Commands) > 0 {
		if a.executor == nil {
			return result, ErrNoExecutor
		}
		if err := a.executor.Execute(ctx, device.Name, result.Commands); err != nil {
			return result, fmt.Errorf("device %q: execute: %w", device.Name, err)
		}
		result.Applied = true
	}

	a.logger.Info(ctx, "device synced",
		ports.F("device", device.Name),
		ports.F("commands", len(result.Commands)),
		ports.F("applied", result.Applied),
	)
	return result, nil
}

// SyncAll syncs every request concurrently, bounded by the configured
// worker count. Results are returned in request order; a failing device
// does not affect the others.
func (a *App) SyncAll(ctx context.Context, reqs []SyncRequest) []DeviceResult {
	results := make([]DeviceResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(max(1, a.settings.Workers))
	for i, req := range reqs {
		g.Go(func() error {
			res, err := a.Sync(ctx, req)
			results[i] = DeviceResult{Device: req.Device, Result: res, Err: err}
			if err != nil {
				a.logger.Error(ctx, "device sync failed", ports.F("device", req.Device), ports.ErrorField(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Devices returns every device known to the source of truth.
func (a *App) Devices(ctx context.Context) ([]string, error) {
	if a.sot == nil {
		return nil, ErrNoSourceOfTruth
	}
	return a.sot.Devices(ctx)
}

// resolveDevice looks up the device and reads its running configuration.
// Explicit platform and path override what the source of truth records.
func (a *App) resolveDevice(ctx context.Context, name, platform, path string) (ports.Device, string, []byte, error) {
	if a.sot == nil {
		return ports.Device{}, "", nil, ErrNoSourceOfTruth
	}
	device, err := a.sot.Device(ctx, name)
	if err != nil {
		return ports.Device{}, "", nil, err
	}
	if platform == "" {
		platform = device.Platform
	}
	if platform == "" {
		return ports.Device{}, "", nil, fmt.Errorf("%w: %q", ErrNoPlatform, name)
	}
	if path == "" {
		path = device.ConfigPath
	}
	if path == "" {
		return ports.Device{}, "", nil, fmt.Errorf("%w: %q", ErrNoConfig, name)
	}

	raw, err := a.fs.ReadFile(path)
	if err != nil {
		return ports.Device{}, "", nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return device, plugin.NormalizeKey(platform).String(), raw, nil
}
