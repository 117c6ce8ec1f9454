package mcp

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/sotsync/internal/validation"
)

// ValidateParseInput validates ParseInput fields.
func ValidateParseInput(in *ParseInput) error {
	if in.Platform == "" {
		return fmt.Errorf("invalid platform: %w", validation.ErrEmptyInput)
	}
	if err := validation.ValidatePlatform(in.Platform); err != nil {
		return fmt.Errorf("invalid platform: %w", err)
	}
	if err := validation.ValidatePath(in.ConfigPath); err != nil {
		return fmt.Errorf("invalid config_path: %w", err)
	}
	return nil
}

// ValidateSyncInput validates SyncInput fields.
func ValidateSyncInput(in *SyncInput) error {
	if err := validateDeviceOverrides(in.Device, in.Platform, in.ConfigPath); err != nil {
		return err
	}
	if len(in.Sections) == 0 {
		return errors.New("invalid sections: at least one section is required")
	}
	for _, s := range in.Sections {
		if err := validation.ValidateSectionName(s); err != nil {
			return fmt.Errorf("invalid section: %w", err)
		}
	}
	return nil
}

// ValidateOnboardInput validates OnboardInput fields.
func ValidateOnboardInput(in *OnboardInput) error {
	return validateDeviceOverrides(in.Device, in.Platform, in.ConfigPath)
}

func validateDeviceOverrides(device, platform, path string) error {
	if err := validation.ValidateDeviceName(device); err != nil {
		return fmt.Errorf("invalid device: %w", err)
	}
	if err := validation.ValidatePlatform(platform); err != nil {
		return fmt.Errorf("invalid platform: %w", err)
	}
	if err := validation.ValidateOptionalPath(path); err != nil {
		return fmt.Errorf("invalid config_path: %w", err)
	}
	return nil
}
