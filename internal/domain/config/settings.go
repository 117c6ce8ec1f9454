// Package config loads sotsync settings and turns them into runtime values.
package config

import (
	"fmt"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
	"github.com/felixgeelhaar/sotsync/internal/domain/reconcile"
	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// DefaultWorkers bounds concurrent device pipelines when settings omit it.
const DefaultWorkers = 4

// Settings is the content of sotsync.yaml.
type Settings struct {
	Log        LogSettings        `yaml:"log"`
	Workers    int                `yaml:"workers"`
	Onboarding OnboardingSettings `yaml:"onboarding"`
	Sections   []SectionSettings  `yaml:"sections"`
}

// LogSettings selects the logger.
type LogSettings struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// OnboardingSettings configures onboarding runs.
type OnboardingSettings struct {
	// Defaults are passed to device hooks as device_defaults.
	Defaults map[string]any `yaml:"defaults"`
}

// SectionSettings declares an extra reconcile strategy.
type SectionSettings struct {
	Name     string         `yaml:"name"`
	Match    string         `yaml:"match"`
	Identity string         `yaml:"identity"`
	Template string         `yaml:"template"`
	Defaults map[string]any `yaml:"defaults,omitempty"`
}

// Default returns the settings used when no file is present.
func Default() *Settings {
	return &Settings{
		Log:     LogSettings{Level: "info"},
		Workers: DefaultWorkers,
	}
}

// Validate checks the scalar settings. Sections are checked by Catalog.
func (s *Settings) Validate() error {
	errs := NewErrorList()
	if s.Workers < 1 {
		errs.AddValidation("workers", fmt.Sprintf("must be at least 1, got %d", s.Workers), "Set workers to a positive number or remove it.")
	}
	if _, err := ports.ParseLevel(s.Log.Level); err != nil {
		errs.AddValidation("log.level", err.Error(), "Use one of debug, info, warn or error.")
	}
	return errs.AsError()
}

// LogLevel returns the configured log level.
func (s *Settings) LogLevel() ports.Level {
	level, _ := ports.ParseLevel(s.Log.Level)
	return level
}

// DeviceDefaults returns the onboarding defaults as properties.
func (s *Settings) DeviceDefaults() properties.Properties {
	if len(s.Onboarding.Defaults) == 0 {
		return properties.Properties{}
	}
	return properties.FromMap(s.Onboarding.Defaults)
}

// Catalog returns the built-in strategies plus every configured section.
func (s *Settings) Catalog() (*reconcile.Catalog, error) {
	catalog := reconcile.DefaultCatalog()
	for i, sec := range s.Sections {
		strategy, err := reconcile.RegexStrategy(sec.Name, sec.Match, sec.Identity, sec.Template)
		if err != nil {
			return nil, NewSectionInvalidError(i, sec.Name, err)
		}
		if len(sec.Defaults) > 0 {
			strategy = strategy.WithDefaults(properties.FromMap(sec.Defaults))
		}
		if err := catalog.Add(strategy); err != nil {
			return nil, NewSectionInvalidError(i, sec.Name, err)
		}
	}
	return catalog, nil
}
