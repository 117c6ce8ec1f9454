package properties

import "fmt"

// Bag is the normalized argument view every handler receives.
// Positional arguments are assigned well-known names; named arguments are
// merged on top. Lookups never fail: a missing key yields the caller's default.
type Bag struct {
	values     map[string]any
	order      []string
	overridden []string
}

// NewBag merges positional and named call arguments into one Bag.
// positional[i] is stored under names[i]; surplus positionals are stored as
// "arg<i>". A named argument replaces a positional one with the same name.
func NewBag(names []string, positional []any, named map[string]any) *Bag {
	b := &Bag{values: make(map[string]any, len(positional)+len(named))}

	for i, v := range positional {
		name := fmt.Sprintf("arg%d", i)
		if i < len(names) {
			name = names[i]
		}
		b.set(name, v)
	}

	// Named arguments are applied in sorted order to keep Keys deterministic.
	keys := Properties(anyMap(named)).Keys()
	for _, k := range keys {
		if _, exists := b.values[k]; exists {
			b.overridden = append(b.overridden, k)
		}
		b.set(k, named[k])
	}

	return b
}

func anyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func (b *Bag) set(name string, v any) {
	if _, exists := b.values[name]; !exists {
		b.order = append(b.order, name)
	}
	b.values[name] = v
}

// Get returns the value stored under name, or def.
func (b *Bag) Get(name string, def any) any {
	if b == nil {
		return def
	}
	if v, ok := b.values[name]; ok {
		return v
	}
	return def
}

// Has reports whether name was supplied.
func (b *Bag) Has(name string) bool {
	if b == nil {
		return false
	}
	_, ok := b.values[name]
	return ok
}

// String returns name as a string, or def when absent or not a scalar.
func (b *Bag) String(name, def string) string {
	v, ok := b.lookup(name)
	if !ok {
		return def
	}
	if s, ok := Stringify(v); ok {
		return s
	}
	return def
}

// Int returns name as an int, or def.
func (b *Bag) Int(name string, def int) int {
	v, ok := b.lookup(name)
	if !ok {
		return def
	}
	return Properties{"v": v}.Int("v", def)
}

// Bool returns name as a bool, or def.
func (b *Bag) Bool(name string, def bool) bool {
	v, ok := b.lookup(name)
	if !ok {
		return def
	}
	return Properties{"v": v}.Bool("v", def)
}

// Properties returns name as Properties, or def when absent or not a record.
// The returned value is a copy; handlers may mutate it freely.
func (b *Bag) Properties(name string, def Properties) Properties {
	v, ok := b.lookup(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case Properties:
		return t.Clone()
	case map[string]any:
		return FromMap(t).Clone()
	}
	return def
}

// List returns name as a list of records, or def.
func (b *Bag) List(name string, def []Properties) []Properties {
	v, ok := b.lookup(name)
	if !ok {
		return def
	}
	if list := ListFrom(v); list != nil {
		return list
	}
	return def
}

// Strings returns name as a string slice, or def.
func (b *Bag) Strings(name string, def []string) []string {
	v, ok := b.lookup(name)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := Stringify(item); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return def
}

// Keys returns the argument names in the order they were first supplied.
func (b *Bag) Keys() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.order...)
}

// Overridden returns the names where a named argument replaced a positional one.
func (b *Bag) Overridden() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.overridden...)
}

// Map returns a shallow copy of the bag contents.
func (b *Bag) Map() map[string]any {
	out := make(map[string]any, len(b.Keys()))
	if b == nil {
		return out
	}
	for k, v := range b.values {
		out[k] = v
	}
	return out
}

// Len returns the number of arguments.
func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.values)
}

func (b *Bag) lookup(name string) (any, bool) {
	if b == nil {
		return nil, false
	}
	v, ok := b.values[name]
	if !ok || isNil(v) {
		return nil, false
	}
	return v, true
}

// isNil reports whether v is nil or a nil map or slice held in an interface.
func isNil(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case Properties:
		return t == nil
	case map[string]any:
		return t == nil
	case []Properties:
		return t == nil
	case []map[string]any:
		return t == nil
	case []any:
		return t == nil
	case []string:
		return t == nil
	}
	return false
}
