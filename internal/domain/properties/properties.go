// Package properties provides the key-value containers that flow through
// plugin handlers: Properties for structured records (device properties,
// interfaces, config contexts, desired entities) and Bag for normalized
// handler call arguments.
package properties

import (
	"fmt"
	"sort"
	"strconv"
)

// Properties is a structured record of named fields.
type Properties map[string]any

// Clone returns a deep copy of the properties.
// Nested maps and slices are copied; other values are shared.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	out := make(Properties, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

// Get returns the value for key, or def when the key is absent.
func (p Properties) Get(key string, def any) any {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

// Has reports whether key is present.
func (p Properties) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the value for key rendered as a string.
// Scalars are formatted; absent or nil values yield def.
func (p Properties) String(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := Stringify(v); ok {
		return s
	}
	return def
}

// Int returns the value for key as an int, or def when absent or not numeric.
func (p Properties) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Bool returns the value for key as a bool, or def when absent or not boolean.
func (p Properties) Bool(key string, def bool) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Merge returns a copy of p with every key of other applied on top.
func (p Properties) Merge(other Properties) Properties {
	out := p.Clone()
	if out == nil {
		out = make(Properties, len(other))
	}
	for k, v := range other {
		out[k] = cloneValue(v)
	}
	return out
}

// Keys returns the keys in sorted order.
func (p Properties) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stringify formats scalar values. It reports false for maps, slices and nil.
func Stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case fmt.Stringer:
		return t.String(), true
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(t), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	}
	return "", false
}

// FromMap converts decoder output into Properties.
// Nested map[string]any values become Properties.
func FromMap(m map[string]any) Properties {
	if m == nil {
		return nil
	}
	out := make(Properties, len(m))
	for k, v := range m {
		out[k] = normalize(v)
	}
	return out
}

// ListFrom converts a decoded list of records into a []Properties.
// Elements that are not maps are dropped.
func ListFrom(v any) []Properties {
	switch t := v.(type) {
	case []Properties:
		out := make([]Properties, len(t))
		for i := range t {
			out[i] = t[i].Clone()
		}
		return out
	case []map[string]any:
		out := make([]Properties, 0, len(t))
		for _, m := range t {
			out = append(out, FromMap(m))
		}
		return out
	case []any:
		out := make([]Properties, 0, len(t))
		for _, item := range t {
			switch m := item.(type) {
			case Properties:
				out = append(out, m.Clone())
			case map[string]any:
				out = append(out, FromMap(m))
			}
		}
		return out
	}
	return nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return FromMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalize(item)
		}
		return out
	}
	return v
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Properties:
		return t.Clone()
	case map[string]any:
		return Properties(t).Clone()
	case []Properties:
		out := make([]Properties, len(t))
		for i := range t {
			out[i] = t[i].Clone()
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}
