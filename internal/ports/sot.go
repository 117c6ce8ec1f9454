package ports

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
)

// ErrDeviceNotFound indicates the source of truth has no such device.
var ErrDeviceNotFound = errors.New("device not found")

// Device is a device record held by the source of truth.
type Device struct {
	Name       string
	Platform   string
	ConfigPath string // running configuration file, when known
	Properties properties.Properties
}

// SourceOfTruth supplies device records and the desired state of each
// configuration section.
type SourceOfTruth interface {
	// Device returns the named device, or an error wrapping ErrDeviceNotFound.
	Device(ctx context.Context, name string) (Device, error)

	// DesiredState returns the ordered desired entities of section on device.
	// A device without entries for section yields an empty slice.
	DesiredState(ctx context.Context, device, section string) ([]properties.Properties, error)

	// Devices returns every device name in a stable order.
	Devices(ctx context.Context) ([]string, error)
}
