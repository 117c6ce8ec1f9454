// Package validation checks externally supplied names and paths before they
// reach the inventory, the parsers or the command executors.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Common validation errors.
var (
	ErrEmptyInput       = errors.New("input cannot be empty")
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrInvalidPath      = errors.New("invalid path")
	ErrCommandInjection = errors.New("potential command injection detected")
	ErrInvalidDevice    = errors.New("invalid device name")
	ErrInvalidSection   = errors.New("invalid section name")
	ErrInvalidPlatform  = errors.New("invalid platform")
	ErrInvalidAddress   = errors.New("invalid listen address")
)

var (
	// deviceNameRegex matches inventory device names.
	// Examples: "r1", "core-sw01.lab", "edge_fw"
	deviceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

	// sectionNameRegex matches reconcile section names.
	// Examples: "users", "snmp", "ntp-servers"
	sectionNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

	// platformRegex matches platform keys such as "ios" or "cisco_nxos".
	platformRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

	// addressRegex matches host:port listen addresses such as ":8080".
	addressRegex = regexp.MustCompile(`^[a-zA-Z0-9.\-\[\]:]*:[0-9]{1,5}$`)

	// shellMetaChars contains shell metacharacters that could enable injection
	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\"}
)

// ValidateDeviceName validates a device name from an inventory or a request.
func ValidateDeviceName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if len(name) > 253 {
		return fmt.Errorf("%w: device name too long", ErrInvalidDevice)
	}

	if containsShellMeta(name) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, name)
	}

	if !deviceNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidDevice, name)
	}

	return nil
}

// ValidateSectionName validates a reconcile section name.
func ValidateSectionName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}

	if len(name) > 64 {
		return fmt.Errorf("%w: section name too long", ErrInvalidSection)
	}

	if !sectionNameRegex.MatchString(strings.TrimSpace(name)) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidSection, name)
	}

	return nil
}

// ValidatePlatform validates a platform key. An empty platform is allowed
// and means the inventory's platform is used.
func ValidatePlatform(platform string) error {
	if platform == "" {
		return nil
	}

	if !platformRegex.MatchString(platform) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidPlatform, platform)
	}

	return nil
}

// ValidatePath validates a file path and prevents path traversal attacks.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyInput
	}

	// Check for null bytes
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}

	if strings.ContainsAny(path, "\n\r") {
		return fmt.Errorf("%w: path contains a line break", ErrInvalidPath)
	}

	// Check for path traversal sequences
	if containsPathTraversal(path) {
		return fmt.Errorf("%w: %q contains traversal sequence", ErrPathTraversal, path)
	}

	return nil
}

// ValidateOptionalPath is ValidatePath for optional inputs.
func ValidateOptionalPath(path string) error {
	if path == "" {
		return nil
	}
	return ValidatePath(path)
}

// ValidatePathWithBase validates a path is within the expected base directory.
func ValidatePathWithBase(path, basePath string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	cleanBase := filepath.Clean(basePath)
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		cleanPath = filepath.Join(cleanBase, cleanPath)
	}

	rel, err := filepath.Rel(cleanBase, cleanPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: path %q escapes base directory %q", ErrPathTraversal, path, basePath)
	}

	return nil
}

// ValidateListenAddress validates a host:port address for a network listener.
func ValidateListenAddress(addr string) error {
	if addr == "" {
		return ErrEmptyInput
	}

	if !addressRegex.MatchString(addr) {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	return nil
}

// containsShellMeta checks if a string contains shell metacharacters.
func containsShellMeta(s string) bool {
	for _, char := range shellMetaChars {
		if strings.Contains(s, char) {
			return true
		}
	}
	return false
}

// containsPathTraversal checks for common path traversal patterns.
func containsPathTraversal(path string) bool {
	// Check for ".." segments before cleaning resolves them away
	for _, seg := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}

	// Check for URL-encoded traversal
	lower := strings.ToLower(path)
	return strings.Contains(lower, "%2e%2e")
}
