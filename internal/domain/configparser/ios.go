package configparser

import (
	"fmt"
	"net"
	"net/netip"
	"regexp"
	"strconv"
	"strings"
)

// IOS parses Cisco IOS-style running configuration text.
type IOS struct {
	hostname   string
	domain     string
	global     []string
	interfaces interfaceTable
}

var _ Parser = (*IOS)(nil)
var _ BlockReader = (*IOS)(nil)

// NewIOS builds a snapshot from raw running-config text.
// It accepts a string or []byte.
func NewIOS(config any) (*IOS, error) {
	raw, err := rawText(PlatformIOS, config)
	if err != nil {
		return nil, err
	}

	p := &IOS{interfaces: newInterfaceTable()}

	var current *InterfaceRecord
	flush := func() {
		if current != nil {
			p.interfaces.add(*current)
			current = nil
		}
	}

	for i, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "!" {
			continue
		}

		indented := line[0] == ' ' || line[0] == '\t'
		if indented && current != nil {
			if err := applyIOSInterfaceLine(current, trimmed); err != nil {
				return nil, newParseError(PlatformIOS, i+1, "invalid interface line", err)
			}
			continue
		}

		flush()

		if indented {
			// Sub-line of a non-interface global block (router, line vty, ...).
			continue
		}

		if name, ok := strings.CutPrefix(trimmed, "interface "); ok {
			current = &InterfaceRecord{Name: strings.TrimSpace(name), Enabled: true}
			continue
		}

		p.global = append(p.global, trimmed)
		switch {
		case strings.HasPrefix(trimmed, "hostname "):
			p.hostname = strings.TrimSpace(strings.TrimPrefix(trimmed, "hostname "))
		case strings.HasPrefix(trimmed, "ip domain-name "):
			p.domain = strings.TrimSpace(strings.TrimPrefix(trimmed, "ip domain-name "))
		case strings.HasPrefix(trimmed, "ip domain name "):
			p.domain = strings.TrimSpace(strings.TrimPrefix(trimmed, "ip domain name "))
		}
	}
	flush()

	return p, nil
}

func applyIOSInterfaceLine(rec *InterfaceRecord, line string) error {
	rec.Lines = append(rec.Lines, line)

	fields := strings.Fields(line)
	switch {
	case line == "shutdown":
		rec.Enabled = false
	case line == "no shutdown":
		rec.Enabled = true
	case strings.HasPrefix(line, "description "):
		rec.Description = strings.TrimSpace(strings.TrimPrefix(line, "description "))
	case len(fields) == 2 && fields[0] == "mtu":
		mtu, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("mtu %q: %w", fields[1], err)
		}
		rec.MTU = mtu
	case len(fields) >= 4 && fields[0] == "ip" && fields[1] == "address":
		prefix, err := maskedPrefix(fields[2], fields[3])
		if err != nil {
			return err
		}
		rec.Addresses = append(rec.Addresses, prefix)
	case len(fields) >= 3 && fields[0] == "ipv6" && fields[1] == "address":
		prefix, err := netip.ParsePrefix(fields[2])
		if err != nil {
			return fmt.Errorf("ipv6 address %q: %w", fields[2], err)
		}
		rec.Addresses = append(rec.Addresses, prefix)
	}
	return nil
}

// maskedPrefix converts "10.0.0.1 255.255.255.0" into 10.0.0.1/24.
func maskedPrefix(address, mask string) (netip.Prefix, error) {
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("ip address %q: %w", address, err)
	}
	maskIP := net.ParseIP(mask).To4()
	if maskIP == nil {
		return netip.Prefix{}, fmt.Errorf("netmask %q is not IPv4", mask)
	}
	ones, bits := net.IPMask(maskIP).Size()
	if bits == 0 {
		return netip.Prefix{}, fmt.Errorf("netmask %q is not contiguous", mask)
	}
	return netip.PrefixFrom(addr, ones), nil
}

// Platform returns "ios".
func (p *IOS) Platform() string { return PlatformIOS }

// FQDN joins hostname and domain name.
func (p *IOS) FQDN() (string, bool) {
	return joinFQDN(p.hostname, p.domain)
}

// Interface looks up an interface by name.
func (p *IOS) Interface(name string) (InterfaceRecord, bool) {
	return p.interfaces.get(name)
}

// InterfaceIPAddress returns the first address of the interface.
func (p *IOS) InterfaceIPAddress(name string) (netip.Prefix, bool) {
	return p.interfaces.address(name)
}

// InterfaceNameByAddress finds the interface owning addr.
func (p *IOS) InterfaceNameByAddress(addr netip.Addr) (string, bool) {
	return p.interfaces.nameByAddress(addr)
}

// FindInGlobal matches query as a regular expression against global lines.
// The first capture group is returned when present, else the whole line.
func (p *IOS) FindInGlobal(query string) (string, bool) {
	re, err := regexp.Compile(query)
	if err != nil {
		return "", false
	}
	for _, line := range p.global {
		if v, ok := matchLine(re, line); ok {
			return v, true
		}
	}
	return "", false
}

// FindInInterfaces applies the query regex to every interface line.
func (p *IOS) FindInInterfaces(query string) []InterfaceMatch {
	re, err := regexp.Compile(query)
	if err != nil {
		return nil
	}
	var matches []InterfaceMatch
	for _, rec := range p.interfaces.all() {
		for _, line := range rec.Lines {
			if v, ok := matchLine(re, line); ok {
				matches = append(matches, InterfaceMatch{Interface: rec.Name, Value: v})
			}
		}
	}
	return matches
}

// Interfaces returns all interfaces in configuration order.
func (p *IOS) Interfaces() []InterfaceRecord {
	return p.interfaces.all()
}

// Block returns the global lines that start with prefix.
func (p *IOS) Block(prefix string) []string {
	var block []string
	for _, line := range p.global {
		if strings.HasPrefix(line, prefix) {
			block = append(block, line)
		}
	}
	return block
}

func matchLine(re *regexp.Regexp, line string) (string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return m[1], true
	}
	return line, true
}

func joinFQDN(host, domain string) (string, bool) {
	switch {
	case host == "":
		return "", false
	case domain == "" || strings.Contains(host, "."):
		return host, true
	default:
		return host + "." + domain, true
	}
}

func rawText(platform string, config any) (string, error) {
	switch v := config.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", newParseError(platform, 0, fmt.Sprintf("expected text, got %T", config), ErrUnsupportedInput)
}
