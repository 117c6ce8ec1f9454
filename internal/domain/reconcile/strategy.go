package reconcile

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"
	"text/template"

	"github.com/felixgeelhaar/sotsync/internal/domain/configparser"
	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
)

// Strategy describes how one configuration section is matched and rendered.
type Strategy struct {
	// Section names the config section, e.g. "users".
	Section string
	// Prefix selects the section's lines from the running config.
	// An empty prefix selects every global line.
	Prefix string
	// IdentityField is the entity field holding the identity key.
	IdentityField string
	// ExtractIdentity returns the identity of an old config line.
	ExtractIdentity func(line string) (IdentityKey, error)
	// Render returns the command asserting entity on the device.
	Render func(entity properties.Properties) (string, error)
}

// Validate reports whether the strategy can be used.
func (s Strategy) Validate() error {
	switch {
	case strings.TrimSpace(s.Section) == "":
		return &StrategyError{Section: s.Section, Field: "section", Message: "cannot be empty"}
	case strings.TrimSpace(s.IdentityField) == "":
		return &StrategyError{Section: s.Section, Field: "identity", Message: "cannot be empty"}
	case s.ExtractIdentity == nil:
		return &StrategyError{Section: s.Section, Field: "match", Message: "extractor is required"}
	case s.Render == nil:
		return &StrategyError{Section: s.Section, Field: "template", Message: "renderer is required"}
	}
	return nil
}

// EntityIdentity returns the identity of a desired entity.
func (s Strategy) EntityIdentity(entity properties.Properties) (IdentityKey, error) {
	v, ok := properties.Stringify(entity.Get(s.IdentityField, nil))
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: %q", ErrMissingIdentity, s.IdentityField)
	}
	return IdentityKey(strings.TrimSpace(v)), nil
}

// WithDefaults returns a copy of s whose renderer fills missing entity
// fields from defaults before rendering.
func (s Strategy) WithDefaults(defaults properties.Properties) Strategy {
	render := s.Render
	if render == nil || len(defaults) == 0 {
		return s
	}
	defaults = defaults.Clone()
	s.Render = func(entity properties.Properties) (string, error) {
		return render(defaults.Merge(entity))
	}
	return s
}

// RegexStrategy builds a Strategy from a line pattern and a command template.
// The first capture group of pattern is the line identity. The template is
// executed with the entity fields; a field the template references but the
// entity lacks is a render error.
func RegexStrategy(section, pattern, identityField, tmpl string) (Strategy, error) {
	if strings.TrimSpace(section) == "" {
		return Strategy{}, &StrategyError{Section: section, Field: "section", Message: "cannot be empty"}
	}
	if strings.TrimSpace(identityField) == "" {
		return Strategy{}, &StrategyError{Section: section, Field: "identity", Message: "cannot be empty"}
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return Strategy{}, &StrategyError{Section: section, Field: "match", Message: "is not a valid regular expression", Cause: err}
	}
	if re.NumSubexp() < 1 {
		return Strategy{}, &StrategyError{Section: section, Field: "match", Message: "needs a capture group for the identity"}
	}

	t, err := template.New(section).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return Strategy{}, &StrategyError{Section: section, Field: "template", Message: "does not parse", Cause: err}
	}

	return Strategy{
		Section:         section,
		Prefix:          literalPrefix(pattern),
		IdentityField:   identityField,
		ExtractIdentity: regexExtractor(re),
		Render:          templateRenderer(t),
	}, nil
}

// MustRegexStrategy is RegexStrategy for package-level strategies; it panics on error.
func MustRegexStrategy(section, pattern, identityField, tmpl string) Strategy {
	s, err := RegexStrategy(section, pattern, identityField, tmpl)
	if err != nil {
		panic(err)
	}
	return s
}

// Block returns the lines of the strategy's section held by p.
func (s Strategy) Block(p configparser.Parser) ConfigBlock {
	return BlockFromParser(p, s.Prefix)
}

// literalPrefix returns the literal text an anchored pattern starts with.
func literalPrefix(pattern string) string {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil || re.Op != syntax.OpConcat {
		return ""
	}
	subs := re.Sub
	if len(subs) == 0 || subs[0].Op != syntax.OpBeginText {
		return ""
	}
	var b strings.Builder
	for _, sub := range subs[1:] {
		if sub.Op != syntax.OpLiteral || sub.Flags&syntax.FoldCase != 0 {
			break
		}
		b.WriteString(string(sub.Rune))
	}
	return b.String()
}

func regexExtractor(re *regexp.Regexp) func(string) (IdentityKey, error) {
	return func(line string) (IdentityKey, error) {
		m := re.FindStringSubmatch(strings.TrimSpace(line))
		if len(m) < 2 || m[1] == "" {
			return "", ErrNoIdentity
		}
		return IdentityKey(m[1]), nil
	}
}

func templateRenderer(t *template.Template) func(properties.Properties) (string, error) {
	return func(entity properties.Properties) (string, error) {
		var b strings.Builder
		if err := t.Execute(&b, map[string]any(entity)); err != nil {
			return "", err
		}
		out := strings.TrimSpace(b.String())
		if out == "" {
			return "", fmt.Errorf("template %q rendered an empty command", t.Name())
		}
		return out, nil
	}
}
