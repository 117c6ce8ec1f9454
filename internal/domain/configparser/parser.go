// Package configparser provides read-only, platform-specific views over a
// device's configuration. Each variant is built once from raw or structured
// input and answers lookups from that snapshot without touching the source.
package configparser

import (
	"net/netip"
	"sort"

	"golang.org/x/text/cases"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
)

// Platform names of the built-in parser variants.
const (
	PlatformIOS      = "ios"
	PlatformLinux    = "linux"
	PlatformFirewall = "firewall"
)

// Parser is the capability set every platform variant exposes.
type Parser interface {
	// Platform returns the platform this parser was built for.
	Platform() string

	// FQDN returns the device's fully qualified name, if configured.
	FQDN() (string, bool)

	// Interface looks up an interface by name (case-insensitive).
	Interface(name string) (InterfaceRecord, bool)

	// InterfaceIPAddress returns the primary address of an interface.
	InterfaceIPAddress(name string) (netip.Prefix, bool)

	// InterfaceNameByAddress returns the interface that owns addr.
	InterfaceNameByAddress(addr netip.Addr) (string, bool)

	// FindInGlobal searches the global (non-interface) configuration.
	FindInGlobal(query string) (string, bool)

	// FindInInterfaces searches every interface and returns all matches.
	FindInInterfaces(query string) []InterfaceMatch

	// Interfaces returns every interface in configuration order.
	Interfaces() []InterfaceRecord
}

// BlockReader is implemented by parsers over line-oriented configuration.
type BlockReader interface {
	// Block returns the global lines starting with prefix, in order.
	Block(prefix string) []string
}

// InterfaceRecord describes one configured interface.
type InterfaceRecord struct {
	Name        string
	Description string
	Addresses   []netip.Prefix
	MTU         int
	Enabled     bool
	Lines       []string
}

// PrimaryAddress returns the first configured address.
func (r InterfaceRecord) PrimaryAddress() (netip.Prefix, bool) {
	if len(r.Addresses) == 0 {
		return netip.Prefix{}, false
	}
	return r.Addresses[0], true
}

// Properties converts the record into the map form consumed by interface hooks.
func (r InterfaceRecord) Properties() properties.Properties {
	addrs := make([]string, len(r.Addresses))
	for i, a := range r.Addresses {
		addrs[i] = a.String()
	}
	p := properties.Properties{
		"name":      r.Name,
		"enabled":   r.Enabled,
		"addresses": addrs,
	}
	if r.Description != "" {
		p["description"] = r.Description
	}
	if r.MTU > 0 {
		p["mtu"] = r.MTU
	}
	return p
}

func (r InterfaceRecord) clone() InterfaceRecord {
	r.Addresses = append([]netip.Prefix(nil), r.Addresses...)
	r.Lines = append([]string(nil), r.Lines...)
	return r
}

// InterfaceMatch is one hit returned by FindInInterfaces.
type InterfaceMatch struct {
	Interface string
	Value     string
}

// interfaceTable is the shared interface index behind every variant.
type interfaceTable struct {
	order  []string
	byName map[string]InterfaceRecord
}

func newInterfaceTable() interfaceTable {
	return interfaceTable{byName: make(map[string]InterfaceRecord)}
}

func foldName(name string) string {
	return cases.Fold().String(name)
}

func (t *interfaceTable) add(rec InterfaceRecord) {
	key := foldName(rec.Name)
	if _, exists := t.byName[key]; !exists {
		t.order = append(t.order, key)
	}
	t.byName[key] = rec
}

func (t *interfaceTable) get(name string) (InterfaceRecord, bool) {
	rec, ok := t.byName[foldName(name)]
	if !ok {
		return InterfaceRecord{}, false
	}
	return rec.clone(), true
}

func (t *interfaceTable) all() []InterfaceRecord {
	out := make([]InterfaceRecord, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.byName[key].clone())
	}
	return out
}

func (t *interfaceTable) address(name string) (netip.Prefix, bool) {
	rec, ok := t.get(name)
	if !ok {
		return netip.Prefix{}, false
	}
	return rec.PrimaryAddress()
}

func (t *interfaceTable) nameByAddress(addr netip.Addr) (string, bool) {
	for _, key := range t.order {
		rec := t.byName[key]
		for _, p := range rec.Addresses {
			if p.Addr() == addr {
				return rec.Name, true
			}
		}
	}
	return "", false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
