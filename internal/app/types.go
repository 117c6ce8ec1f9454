package app

import (
	"errors"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
	"github.com/felixgeelhaar/sotsync/internal/domain/reconcile"
)

// Sentinel errors for programmatic error handling.
var (
	ErrNoSourceOfTruth = errors.New("no source of truth configured")
	ErrNoExecutor      = errors.New("no command executor configured")
	ErrNoSections      = errors.New("at least one section is required")
	ErrUnknownSection  = errors.New("unknown section")
	ErrNoPlatform      = errors.New("device has no platform")
	ErrNoConfig        = errors.New("device has no running configuration")
)

// SyncRequest selects one device and the sections to converge.
type SyncRequest struct {
	Device string
	// Platform overrides the platform recorded in the source of truth.
	Platform string
	// ConfigPath overrides the running configuration file.
	ConfigPath string
	Sections   []string
	// Apply hands the commands to the executor instead of only returning them.
	Apply bool
}

// NewSyncRequest creates a dry-run request for device.
func NewSyncRequest(device string, sections ...string) SyncRequest {
	return SyncRequest{Device: device, Sections: sections}
}

// WithPlatform sets the platform override.
func (r SyncRequest) WithPlatform(platform string) SyncRequest {
	r.Platform = platform
	return r
}

// WithConfigPath sets the running configuration file.
func (r SyncRequest) WithConfigPath(path string) SyncRequest {
	r.ConfigPath = path
	return r
}

// WithApply enables or disables execution.
func (r SyncRequest) WithApply(apply bool) SyncRequest {
	r.Apply = apply
	return r
}

// SyncResult is the outcome of converging one device.
type SyncResult struct {
	Device   string
	Platform string
	// Sections holds one reconciliation per requested section, in order.
	Sections []*reconcile.Result
	// Commands is the post-processed command list for the device.
	Commands []string
	Applied  bool
}

// Err joins every per-entity failure across sections, or returns nil.
func (r *SyncResult) Err() error {
	var errs []error
	for _, s := range r.Sections {
		if err := s.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Skipped returns the number of running lines skipped across sections.
func (r *SyncResult) Skipped() int {
	n := 0
	for _, s := range r.Sections {
		n += len(s.Skipped)
	}
	return n
}

// DeviceResult pairs a device with its sync outcome.
type DeviceResult struct {
	Device string
	Result *SyncResult
	Err    error
}

// OnboardRequest selects one device to onboard.
type OnboardRequest struct {
	Device     string
	Platform   string
	ConfigPath string
	// ConfigContext is merged over the assembled config context.
	ConfigContext properties.Properties
	// OnboardingConfig carries job options for the hooks.
	OnboardingConfig properties.Properties
}
