package configparser

import (
	"fmt"
	"net/netip"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
)

// interfaceGroups are the netplan keys whose children are interfaces.
var interfaceGroups = []string{"ethernets", "bonds", "bridges", "vlans", "wifis"}

// Linux reads netplan-style structured network configuration.
//
//	network:
//	  hostname: srv1
//	  domain: example.com
//	  ethernets:
//	    eth0:
//	      addresses: [10.0.0.5/24]
type Linux struct {
	root       properties.Properties
	interfaces interfaceTable
	attrs      map[string]properties.Properties
}

var _ Parser = (*Linux)(nil)

// NewLinux builds a snapshot from YAML text or an already-decoded map.
func NewLinux(config any) (*Linux, error) {
	var root map[string]any
	switch v := config.(type) {
	case string, []byte:
		text, _ := rawText(PlatformLinux, v)
		if err := yaml.Unmarshal([]byte(text), &root); err != nil {
			return nil, newParseError(PlatformLinux, 0, "invalid YAML", err)
		}
	case properties.Properties:
		root = v
	case map[string]any:
		root = v
	default:
		return nil, newParseError(PlatformLinux, 0, fmt.Sprintf("expected YAML or map, got %T", config), ErrUnsupportedInput)
	}

	p := &Linux{
		root:       properties.FromMap(root).Clone(),
		interfaces: newInterfaceTable(),
		attrs:      make(map[string]properties.Properties),
	}
	if p.root == nil {
		p.root = properties.Properties{}
	}

	network, _ := p.root["network"].(properties.Properties)
	for _, group := range interfaceGroups {
		members, ok := network[group].(properties.Properties)
		if !ok {
			continue
		}
		for _, name := range sortedKeys(members) {
			attrs, _ := members[name].(properties.Properties)
			rec, err := linuxInterface(name, attrs)
			if err != nil {
				return nil, err
			}
			p.interfaces.add(rec)
			p.attrs[foldName(name)] = attrs
		}
	}

	return p, nil
}

func linuxInterface(name string, attrs properties.Properties) (InterfaceRecord, error) {
	rec := InterfaceRecord{
		Name:        name,
		Description: attrs.String("description", ""),
		MTU:         attrs.Int("mtu", 0),
		Enabled:     attrs.Bool("enabled", true),
	}
	addrs, _ := attrs["addresses"].([]any)
	for _, a := range addrs {
		s, ok := properties.Stringify(a)
		if !ok {
			continue
		}
		prefix, err := netip.ParsePrefix(s)
		if err != nil {
			return InterfaceRecord{}, newParseError(PlatformLinux, 0, fmt.Sprintf("interface %s address", name), err)
		}
		rec.Addresses = append(rec.Addresses, prefix)
	}
	return rec, nil
}

// Platform returns "linux".
func (p *Linux) Platform() string { return PlatformLinux }

// FQDN joins network.hostname and network.domain.
func (p *Linux) FQDN() (string, bool) {
	host, _ := p.FindInGlobal("hostname")
	domain, _ := p.FindInGlobal("domain")
	return joinFQDN(host, domain)
}

// Interface looks up an interface by name.
func (p *Linux) Interface(name string) (InterfaceRecord, bool) {
	return p.interfaces.get(name)
}

// InterfaceIPAddress returns the first address of the interface.
func (p *Linux) InterfaceIPAddress(name string) (netip.Prefix, bool) {
	return p.interfaces.address(name)
}

// InterfaceNameByAddress finds the interface owning addr.
func (p *Linux) InterfaceNameByAddress(addr netip.Addr) (string, bool) {
	return p.interfaces.nameByAddress(addr)
}

// FindInGlobal resolves a dotted path from the document root, falling back
// to the network section ("hostname" finds network.hostname).
func (p *Linux) FindInGlobal(query string) (string, bool) {
	if v, ok := lookupPath(p.root, query); ok {
		return v, true
	}
	if network, ok := p.root["network"].(properties.Properties); ok {
		return lookupPath(network, query)
	}
	return "", false
}

// FindInInterfaces returns the value of a dotted key in every interface that sets it.
func (p *Linux) FindInInterfaces(query string) []InterfaceMatch {
	var matches []InterfaceMatch
	for _, rec := range p.interfaces.all() {
		if v, ok := lookupPath(p.attrs[foldName(rec.Name)], query); ok {
			matches = append(matches, InterfaceMatch{Interface: rec.Name, Value: v})
		}
	}
	return matches
}

// Interfaces returns all interfaces grouped by netplan type, sorted by name.
func (p *Linux) Interfaces() []InterfaceRecord {
	return p.interfaces.all()
}

func lookupPath(root properties.Properties, path string) (string, bool) {
	if root == nil || path == "" {
		return "", false
	}
	var cur any = root
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(properties.Properties)
		if !ok {
			return "", false
		}
		cur, ok = m[part]
		if !ok {
			return "", false
		}
	}
	switch v := cur.(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := properties.Stringify(item); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ","), len(parts) > 0
	default:
		return properties.Stringify(v)
	}
}
