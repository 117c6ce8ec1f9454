package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// DefaultPath is the settings file looked up when none is given.
const DefaultPath = "sotsync.yaml"

// Loader loads settings through a FileSystem.
type Loader struct {
	fs ports.FileSystem
}

// NewLoader creates a new Loader.
func NewLoader(fs ports.FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads and validates the settings at path. A missing file yields the
// defaults unless required is set.
func (l *Loader) Load(path string, required bool) (*Settings, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
			return Default(), nil
		case errors.Is(err, fs.ErrNotExist):
			return nil, NewConfigNotFoundError(path)
		case errors.Is(err, fs.ErrPermission):
			return nil, NewFilePermissionError(path, err)
		}
		return nil, err
	}
	return Parse(path, data)
}

// Parse decodes settings over the defaults and validates them.
// Unknown keys are rejected.
func Parse(path string, data []byte) (*Settings, error) {
	s := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil && !errors.Is(err, io.EOF) {
		return nil, NewYAMLParseError(path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, &UserError{
			Code:       ErrCodeConfigInvalid,
			Message:    "invalid settings",
			Context:    path,
			Suggestion: "Fix the fields listed below.",
			Underlying: err,
		}
	}
	if _, err := s.Catalog(); err != nil {
		var ue *UserError
		if errors.As(err, &ue) {
			return nil, ue.WithContext(path + ": " + ue.Context)
		}
		return nil, err
	}
	return s, nil
}
