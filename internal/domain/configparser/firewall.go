package configparser

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"
)

const firewallSystemSection = "system"

// Firewall reads INI-style appliance exports.
//
//	[system]
//	hostname = fw1
//	domain   = example.com
//
//	[interface "port1"]
//	address     = 192.0.2.1/24
//	description = wan
//	enabled     = true
type Firewall struct {
	sections   map[string]map[string]string
	interfaces interfaceTable
	attrs      map[string]map[string]string
}

var _ Parser = (*Firewall)(nil)

// NewFirewall builds a snapshot from INI text.
func NewFirewall(config any) (*Firewall, error) {
	raw, err := rawText(PlatformFirewall, config)
	if err != nil {
		return nil, err
	}

	file, err := ini.Load([]byte(raw))
	if err != nil {
		return nil, newParseError(PlatformFirewall, 0, "invalid INI", err)
	}

	p := &Firewall{
		sections:   make(map[string]map[string]string),
		interfaces: newInterfaceTable(),
		attrs:      make(map[string]map[string]string),
	}

	for _, sec := range file.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		values := make(map[string]string, len(sec.Keys()))
		for _, key := range sec.Keys() {
			values[key.Name()] = key.String()
		}

		name, ok := interfaceSectionName(sec.Name())
		if !ok {
			p.sections[sec.Name()] = values
			continue
		}

		rec, err := firewallInterface(name, values)
		if err != nil {
			return nil, err
		}
		p.interfaces.add(rec)
		p.attrs[foldName(name)] = values
	}

	return p, nil
}

// interfaceSectionName extracts the name from `interface "port1"` or `interface port1`.
func interfaceSectionName(section string) (string, bool) {
	rest, ok := strings.CutPrefix(section, "interface ")
	if !ok {
		return "", false
	}
	name := strings.Trim(strings.TrimSpace(rest), `"`)
	return name, name != ""
}

func firewallInterface(name string, values map[string]string) (InterfaceRecord, error) {
	rec := InterfaceRecord{
		Name:        name,
		Description: values["description"],
		Enabled:     true,
	}
	if v, ok := values["enabled"]; ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return InterfaceRecord{}, newParseError(PlatformFirewall, 0, fmt.Sprintf("interface %s enabled", name), err)
		}
		rec.Enabled = enabled
	}
	if v, ok := values["mtu"]; ok {
		mtu, err := strconv.Atoi(v)
		if err != nil {
			return InterfaceRecord{}, newParseError(PlatformFirewall, 0, fmt.Sprintf("interface %s mtu", name), err)
		}
		rec.MTU = mtu
	}
	for _, a := range strings.Split(values["address"], ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(a)
		if err != nil {
			return InterfaceRecord{}, newParseError(PlatformFirewall, 0, fmt.Sprintf("interface %s address", name), err)
		}
		rec.Addresses = append(rec.Addresses, prefix)
	}
	return rec, nil
}

// Platform returns "firewall".
func (p *Firewall) Platform() string { return PlatformFirewall }

// FQDN joins system.hostname and system.domain.
func (p *Firewall) FQDN() (string, bool) {
	sys := p.sections[firewallSystemSection]
	return joinFQDN(sys["hostname"], sys["domain"])
}

// Interface looks up an interface by name.
func (p *Firewall) Interface(name string) (InterfaceRecord, bool) {
	return p.interfaces.get(name)
}

// InterfaceIPAddress returns the first address of the interface.
func (p *Firewall) InterfaceIPAddress(name string) (netip.Prefix, bool) {
	return p.interfaces.address(name)
}

// InterfaceNameByAddress finds the interface owning addr.
func (p *Firewall) InterfaceNameByAddress(addr netip.Addr) (string, bool) {
	return p.interfaces.nameByAddress(addr)
}

// FindInGlobal resolves "section.key"; a bare key is looked up in [system].
func (p *Firewall) FindInGlobal(query string) (string, bool) {
	section, key := firewallSystemSection, query
	if i := strings.LastIndex(query, "."); i > 0 {
		section, key = query[:i], query[i+1:]
	}
	v, ok := p.sections[section][key]
	return v, ok
}

// FindInInterfaces returns the value of key in every interface section that sets it.
func (p *Firewall) FindInInterfaces(query string) []InterfaceMatch {
	var matches []InterfaceMatch
	for _, rec := range p.interfaces.all() {
		if v, ok := p.attrs[foldName(rec.Name)][query]; ok {
			matches = append(matches, InterfaceMatch{Interface: rec.Name, Value: v})
		}
	}
	return matches
}

// Interfaces returns all interfaces in section order.
func (p *Firewall) Interfaces() []InterfaceRecord {
	return p.interfaces.all()
}

// Sections returns the names of the non-interface sections, sorted.
func (p *Firewall) Sections() []string {
	return sortedKeys(p.sections)
}
