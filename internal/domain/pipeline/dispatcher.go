// Package pipeline runs the platform hook chains of an onboarding run and the
// optional pre and post hooks of the config-management flow.
//
// An onboarding run parses the device configuration and then drives three
// chains in order: device, interface and config context. Each chain is a
// small state machine; a platform that registers no hook for a chain simply
// passes its data through.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/sotsync/internal/domain/configparser"
	"github.com/felixgeelhaar/sotsync/internal/domain/plugin"
	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// Request is the input of one onboarding run.
type Request struct {
	// SOT is handed to hooks as the "sot" argument. It may be nil.
	SOT ports.SourceOfTruth
	// Device names the device being onboarded.
	Device string
	// Platform selects the parser and hooks.
	Platform string
	// Config is the raw or pre-structured running configuration.
	Config any
	// DeviceProperties are the properties known before onboarding.
	DeviceProperties properties.Properties
	// DeviceDefaults fill properties the device hook leaves unset.
	DeviceDefaults properties.Properties
	// OnboardingConfig carries job options for the hooks.
	OnboardingConfig properties.Properties
	// ConfigContext is merged over the assembled config context.
	ConfigContext properties.Properties
}

// Outcome is the result of a completed onboarding run.
type Outcome struct {
	RunID            string
	Device           string
	Platform         string
	Parser           configparser.Parser
	DeviceProperties properties.Properties
	Interfaces       []properties.Properties
	ConfigContext    properties.Properties
	States           map[Chain]State
}

// runInfo identifies a run in logs and errors.
type runInfo struct {
	id     string
	device string
}

// Dispatcher resolves hooks from a frozen registry and runs them.
// It holds no per-run state and is safe for concurrent use.
type Dispatcher struct {
	registry *plugin.Registry
	logger   ports.Logger
	newID    func() string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger for stage transitions.
func WithLogger(logger ports.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithIDGenerator overrides run ID generation.
func WithIDGenerator(fn func() string) Option {
	return func(d *Dispatcher) {
		if fn != nil {
			d.newID = fn
		}
	}
}

// NewDispatcher creates a Dispatcher over registry.
func NewDispatcher(registry *plugin.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   nopLogger{},
		newID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Registry returns the registry the dispatcher resolves hooks from.
func (d *Dispatcher) Registry() *plugin.Registry {
	return d.registry
}

// Parse builds the parser registered for platform.
// A platform without a parser yields plugin.HandlerNotFoundError.
func (d *Dispatcher) Parse(ctx context.Context, platform string, config any) (configparser.Parser, error) {
	key := plugin.NormalizeKey(platform)
	if key == "" {
		return nil, ErrEmptyPlatform
	}
	out, err := d.registry.Dispatch(ctx, plugin.CategoryConfigParser, key, []any{config, key.String()}, nil)
	if err != nil {
		return nil, err
	}
	parser, ok := out.(configparser.Parser)
	if !ok || parser == nil {
		return nil, plugin.NewHandlerExecutionError(plugin.CategoryConfigParser, key, ErrNilResult)
	}
	return parser, nil
}

// Onboard parses the device configuration and runs the device, interface
// and config-context chains in that order.
func (d *Dispatcher) Onboard(ctx context.Context, req Request) (*Outcome, error) {
	run := runInfo{id: d.newID(), device: req.Device}
	key := plugin.NormalizeKey(req.Platform)

	parser, err := d.Parse(ctx, req.Platform, req.Config)
	if err != nil {
		return nil, &StageError{RunID: run.id, Device: req.Device, Stage: StageParse, Cause: err}
	}

	out := &Outcome{
		RunID:    run.id,
		Device:   req.Device,
		Platform: key.String(),
		Parser:   parser,
		States:   make(map[Chain]State, len(Chains())),
	}
	for _, c := range Chains() {
		out.States[c] = StateNotStarted
	}

	d.logger.Info(ctx, "onboarding started",
		ports.F("run_id", run.id),
		ports.F("device", run.device),
		ports.F("platform", out.Platform),
	)

	chains := []struct {
		chain Chain
		steps chainSteps
	}{
		{ChainDevice, d.deviceSteps(req, key, parser, out)},
		{ChainInterface, d.interfaceSteps(key, parser, out)},
		{ChainConfigContext, d.configContextSteps(req, key, out)},
	}

	for _, c := range chains {
		state, err := d.runChain(ctx, run, c.chain, c.steps)
		out.States[c.chain] = state
		if err != nil {
			return out, err
		}
	}

	d.logger.Info(ctx, "onboarding completed",
		ports.F("run_id", run.id),
		ports.F("device", run.device),
		ports.F("interfaces", len(out.Interfaces)),
	)
	return out, nil
}

func (d *Dispatcher) deviceSteps(req Request, key plugin.Key, parser configparser.Parser, out *Outcome) chainSteps {
	if req.DeviceProperties == nil {
		req.DeviceProperties = properties.Properties{}
	}
	return chainSteps{
		pre: func(ctx context.Context) error {
			args := []any{
				req.SOT,
				req.DeviceProperties.Clone(),
				req.DeviceDefaults.Clone(),
				parser,
				req.OnboardingConfig.Clone(),
			}
			props, err := d.hookProperties(ctx, plugin.CategoryDeviceBusinessLogic, key, args)
			if err != nil {
				return err
			}
			out.DeviceProperties = props
			return nil
		},
		core: func(context.Context) error {
			if out.DeviceProperties == nil {
				out.DeviceProperties = properties.Properties{}
			}
			if !out.DeviceProperties.Has("name") && req.Device != "" {
				out.DeviceProperties["name"] = req.Device
			}
			out.DeviceProperties["platform"] = key.String()
			return nil
		},
	}
}

func (d *Dispatcher) interfaceSteps(key plugin.Key, parser configparser.Parser, out *Outcome) chainSteps {
	return chainSteps{
		pre: func(context.Context) error {
			records := parser.Interfaces()
			out.Interfaces = make([]properties.Properties, 0, len(records))
			for _, r := range records {
				out.Interfaces = append(out.Interfaces, r.Properties())
			}
			return nil
		},
		core: func(context.Context) error {
			device := out.DeviceProperties.String("name", out.Device)
			for _, iface := range out.Interfaces {
				iface["device"] = device
			}
			return nil
		},
		post: func(ctx context.Context) error {
			h, err := d.registry.ResolveOrIdentity(plugin.CategoryInterfaceBusinessLogic, key)
			if err != nil {
				return err
			}
			result, err := plugin.Invoke(ctx, h, key, []any{out.Interfaces}, nil)
			if err != nil {
				return err
			}
			list, ok := result.([]properties.Properties)
			if !ok || list == nil {
				return plugin.NewHandlerExecutionError(plugin.CategoryInterfaceBusinessLogic, key, ErrNilResult)
			}
			for i, iface := range list {
				if strings.TrimSpace(iface.String("name", "")) == "" {
					return plugin.NewHandlerExecutionError(plugin.CategoryInterfaceBusinessLogic, key,
						fmt.Errorf("%w: index %d", ErrIncompleteInterface, i))
				}
			}
			out.Interfaces = list
			return nil
		},
	}
}

func (d *Dispatcher) configContextSteps(req Request, key plugin.Key, out *Outcome) chainSteps {
	return chainSteps{
		pre: func(context.Context) error {
			interfaces := make([]properties.Properties, len(out.Interfaces))
			for i, iface := range out.Interfaces {
				interfaces[i] = iface.Clone()
			}
			out.ConfigContext = properties.Properties{
				"device":     out.DeviceProperties.Clone(),
				"interfaces": interfaces,
				"platform":   out.Platform,
			}
			return nil
		},
		core: func(context.Context) error {
			out.ConfigContext = out.ConfigContext.Merge(req.ConfigContext)
			return nil
		},
		post: func(ctx context.Context) error {
			ctxProps, err := d.hookProperties(ctx, plugin.CategoryConfigContextBusinessLogic, key, []any{out.ConfigContext})
			if err != nil {
				return err
			}
			out.ConfigContext = ctxProps
			return nil
		},
	}
}

// hookProperties runs a Properties-returning hook with identity fallback.
func (d *Dispatcher) hookProperties(ctx context.Context, category plugin.Category, key plugin.Key, args []any) (properties.Properties, error) {
	h, err := d.registry.ResolveOrIdentity(category, key)
	if err != nil {
		return nil, err
	}
	result, err := plugin.Invoke(ctx, h, key, args, nil)
	if err != nil {
		return nil, err
	}
	props, ok := result.(properties.Properties)
	if !ok || props == nil {
		return nil, plugin.NewHandlerExecutionError(category, key, ErrNilResult)
	}
	return props, nil
}

// Preprocess runs the preprocessing hook registered under name, or returns
// desired unchanged when there is none.
func (d *Dispatcher) Preprocess(ctx context.Context, name string, sot ports.SourceOfTruth, device string, desired []properties.Properties) ([]properties.Properties, error) {
	key := plugin.NormalizeKey(name)
	h, err := d.registry.ResolveOrIdentity(plugin.CategoryPreprocessing, key)
	if err != nil {
		return nil, err
	}
	result, err := plugin.Invoke(ctx, h, key, []any{sot, device, desired}, nil)
	if err != nil {
		return nil, err
	}
	list, ok := result.([]properties.Properties)
	if !ok {
		return nil, plugin.NewHandlerExecutionError(plugin.CategoryPreprocessing, key, ErrNilResult)
	}
	if list == nil {
		list = []properties.Properties{}
	}
	return list, nil
}

// Postprocess runs the postprocessing hook registered under name, or returns
// commands unchanged when there is none.
func (d *Dispatcher) Postprocess(ctx context.Context, name string, sot ports.SourceOfTruth, device string, commands []string) ([]string, error) {
	key := plugin.NormalizeKey(name)
	h, err := d.registry.ResolveOrIdentity(plugin.CategoryPostprocessing, key)
	if err != nil {
		return nil, err
	}
	result, err := plugin.Invoke(ctx, h, key, []any{sot, device, commands}, nil)
	if err != nil {
		return nil, err
	}
	cmds, ok := result.([]string)
	if !ok {
		return nil, plugin.NewHandlerExecutionError(plugin.CategoryPostprocessing, key, ErrNilResult)
	}
	if cmds == nil {
		cmds = []string{}
	}
	return cmds, nil
}

// nopLogger discards everything; it keeps the domain free of adapter imports.
type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...ports.Field) {}
func (nopLogger) Info(context.Context, string, ...ports.Field)  {}
func (nopLogger) Warn(context.Context, string, ...ports.Field)  {}
func (nopLogger) Error(context.Context, string, ...ports.Field) {}
func (n nopLogger) With(...ports.Field) ports.Logger            { return n }
func (nopLogger) Level() ports.Level                            { return ports.LevelError }
func (nopLogger) SetLevel(ports.Level)                          {}
