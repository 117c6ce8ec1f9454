package plugin

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

// APIVersion is the handler call-convention version this host implements.
const APIVersion = "v1"

// Registration is one (category, key, handler) triple inside a Bundle.
type Registration struct {
	Category Category
	Key      Key
	Handler  Handler
}

// Bundle groups the registrations shipped by one plugin package.
type Bundle struct {
	Name          string
	Version       string // semantic version of the plugin, e.g. "1.4.0"
	APIVersion    string // handler API the plugin targets, e.g. "v1"
	Description   string
	Registrations []Registration
}

// BundleInfo is the read-only summary of an installed bundle.
type BundleInfo struct {
	Name          string
	Version       string
	APIVersion    string
	Description   string
	Registrations int
}

// canonicalVersion accepts "1.2.3" and "v1.2.3".
func canonicalVersion(v string) string {
	v = strings.TrimSpace(v)
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Install registers every entry of bundle, or none of them.
// The bundle version must be valid semver and its API major version must
// match APIVersion.
func (b *Builder) Install(bundle Bundle) error {
	name := strings.TrimSpace(bundle.Name)
	if name == "" {
		return NewIncompatibleBundleError(bundle.Name, "name cannot be empty")
	}

	version := canonicalVersion(bundle.Version)
	if !semver.IsValid(version) {
		return NewIncompatibleBundleError(name, fmt.Sprintf("invalid version %q", bundle.Version))
	}

	api := canonicalVersion(bundle.APIVersion)
	if api == "" {
		api = APIVersion
	}
	if !semver.IsValid(api) {
		return NewIncompatibleBundleError(name, fmt.Sprintf("invalid API version %q", bundle.APIVersion))
	}
	if semver.Major(api) != semver.Major(APIVersion) {
		return NewIncompatibleBundleError(name, fmt.Sprintf("targets API %s, host provides %s", api, APIVersion))
	}

	// Validate against a scratch copy so a failure leaves b untouched.
	scratch := &Builder{handlers: make(map[slot]Handler, len(b.handlers))}
	for s, h := range b.handlers {
		scratch.handlers[s] = h
	}
	for _, reg := range bundle.Registrations {
		if err := scratch.Register(reg.Category, reg.Key, reg.Handler); err != nil {
			return fmt.Errorf("bundle %q: %w", name, err)
		}
	}

	b.handlers = scratch.handlers
	b.bundles = append(b.bundles, BundleInfo{
		Name:          name,
		Version:       semver.Canonical(version),
		APIVersion:    api,
		Description:   bundle.Description,
		Registrations: len(bundle.Registrations),
	})
	return nil
}

// Bundles returns the bundles installed before Build, in install order.
func (r *Registry) Bundles() []BundleInfo {
	if r == nil {
		return nil
	}
	return append([]BundleInfo(nil), r.bundles...)
}
