package properties

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBag_AssignsPositionalNames(t *testing.T) {
	t.Parallel()

	bag := NewBag(
		[]string{"sot", "device_properties"},
		[]any{"nautobot", Properties{"name": "edge-1"}, "extra"},
		nil,
	)

	assert.Equal(t, "nautobot", bag.String("sot", ""))
	assert.Equal(t, "edge-1", bag.Properties("device_properties", nil)["name"])
	assert.Equal(t, "extra", bag.String("arg2", ""))
	assert.Equal(t, []string{"sot", "device_properties", "arg2"}, bag.Keys())
	assert.Equal(t, 3, bag.Len())
}

func TestNewBag_NamedOverridesPositional(t *testing.T) {
	t.Parallel()

	bag := NewBag(
		[]string{"platform"},
		[]any{"ios"},
		map[string]any{"platform": "linux", "verbose": true},
	)

	assert.Equal(t, "linux", bag.String("platform", ""))
	assert.True(t, bag.Bool("verbose", false))
	assert.Equal(t, []string{"platform"}, bag.Overridden())
	assert.Equal(t, []string{"platform", "verbose"}, bag.Keys())
}

func TestBag_MissingKeysYieldDefaults(t *testing.T) {
	t.Parallel()

	bag := NewBag(nil, nil, map[string]any{"nothing": nil, "name": "x"})
	def := Properties{"d": 1}

	assert.Equal(t, "fallback", bag.Get("missing", "fallback"))
	assert.Equal(t, "fallback", bag.String("nothing", "fallback"))
	assert.Equal(t, 42, bag.Int("missing", 42))
	assert.True(t, bag.Bool("missing", true))
	assert.Equal(t, def, bag.Properties("missing", def))
	assert.Equal(t, def, bag.Properties("name", def), "non-record value yields default")
	assert.Nil(t, bag.List("missing", nil))
	assert.Equal(t, []string{"d"}, bag.Strings("missing", []string{"d"}))
	assert.False(t, bag.Has("missing"))
	assert.True(t, bag.Has("nothing"))
}

func TestBag_TypedNilValuesYieldDefaults(t *testing.T) {
	t.Parallel()

	var props Properties
	var list []Properties
	var cmds []string
	bag := NewBag([]string{"device", "interfaces", "commands"}, []any{props, list, cmds}, nil)

	got := bag.Properties("device", Properties{})
	require.NotNil(t, got)
	got["name"] = "r1"
	assert.Equal(t, []Properties{}, bag.List("interfaces", []Properties{}))
	assert.Equal(t, []string{}, bag.Strings("commands", []string{}))
	assert.True(t, bag.Has("device"))
}

func TestBag_NilReceiver(t *testing.T) {
	t.Parallel()

	var bag *Bag
	assert.Equal(t, "d", bag.Get("k", "d"))
	assert.Equal(t, "d", bag.String("k", "d"))
	assert.False(t, bag.Has("k"))
	assert.Empty(t, bag.Keys())
	assert.Empty(t, bag.Map())
	assert.Zero(t, bag.Len())
}

func TestBag_PropertiesReturnsCopy(t *testing.T) {
	t.Parallel()

	device := Properties{"name": "edge-1"}
	bag := NewBag([]string{"device"}, []any{device}, nil)

	got := bag.Properties("device", nil)
	got["name"] = "changed"

	assert.Equal(t, "edge-1", device["name"])
}

func TestBag_Strings(t *testing.T) {
	t.Parallel()

	bag := NewBag([]string{"commands", "mixed"}, []any{
		[]string{"a", "b"},
		[]any{"c", 1, []string{"skip"}},
	}, nil)

	assert.Equal(t, []string{"a", "b"}, bag.Strings("commands", nil))
	assert.Equal(t, []string{"c", "1"}, bag.Strings("mixed", nil))
}

func TestBag_List(t *testing.T) {
	t.Parallel()

	bag := NewBag([]string{"interfaces"}, []any{
		[]Properties{{"name": "Gi0/1"}, {"name": "Gi0/2"}},
	}, nil)

	list := bag.List("interfaces", nil)
	assert.Len(t, list, 2)
	assert.Equal(t, "Gi0/2", list[1]["name"])
}

func TestBag_Map(t *testing.T) {
	t.Parallel()

	bag := NewBag([]string{"a"}, []any{1}, map[string]any{"b": 2})
	assert.Equal(t, map[string]any{"a": 1, "b": 2}, bag.Map())
}
