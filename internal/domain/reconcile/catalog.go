package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
)

// Built-in section names.
const (
	SectionUsers = "users"
	SectionSNMP  = "snmp"
)

// Users reconciles local user accounts by username.
func Users() Strategy {
	return MustRegexStrategy(
		SectionUsers,
		`^username (\S+)`,
		"username",
		"username {{.username}} privilege {{.privilege}} secret {{.secret}}",
	)
}

// SNMP reconciles SNMP community strings. Access defaults to RO.
func SNMP() Strategy {
	return MustRegexStrategy(
		SectionSNMP,
		`^snmp-server community (\S+)`,
		"community",
		"snmp-server community {{.community}} {{.access}}",
	).WithDefaults(properties.Properties{"access": "RO"})
}

// Catalog holds the strategies known for each section.
// A Catalog is populated during initialization and read afterwards.
type Catalog struct {
	strategies map[string]Strategy
}

// NewCatalog creates a catalog with the given strategies.
func NewCatalog(strategies ...Strategy) (*Catalog, error) {
	c := &Catalog{strategies: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		if err := c.Add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// DefaultCatalog returns a catalog holding the built-in strategies.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(Users(), SNMP())
	if err != nil {
		panic(err)
	}
	return c
}

// Add registers s under its section name.
func (c *Catalog) Add(s Strategy) error {
	if err := s.Validate(); err != nil {
		return err
	}
	name := normalizeSection(s.Section)
	if _, exists := c.strategies[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSection, name)
	}
	c.strategies[name] = s
	return nil
}

// Lookup returns the strategy for section.
func (c *Catalog) Lookup(section string) (Strategy, bool) {
	if c == nil {
		return Strategy{}, false
	}
	s, ok := c.strategies[normalizeSection(section)]
	return s, ok
}

// Sections returns the registered section names in sorted order.
func (c *Catalog) Sections() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.strategies))
	for name := range c.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeSection(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
