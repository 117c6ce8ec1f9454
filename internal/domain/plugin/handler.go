package plugin

import (
	"context"

	"github.com/felixgeelhaar/sotsync/internal/domain/configparser"
	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
)

// Handler is implemented by the typed handler functions below.
// The set is sealed: each kind belongs to exactly one Category.
type Handler interface {
	// Category returns the category this handler kind serves.
	Category() Category

	invoke(ctx context.Context, bag *properties.Bag) (any, error)
}

// PreprocessFunc returns the desired entities to reconcile.
type PreprocessFunc func(ctx context.Context, bag *properties.Bag) ([]properties.Properties, error)

// Category returns CategoryPreprocessing.
func (f PreprocessFunc) Category() Category { return CategoryPreprocessing }

func (f PreprocessFunc) invoke(ctx context.Context, bag *properties.Bag) (any, error) {
	return f(ctx, bag)
}

// PostprocessFunc returns the final command list.
type PostprocessFunc func(ctx context.Context, bag *properties.Bag) ([]string, error)

// Category returns CategoryPostprocessing.
func (f PostprocessFunc) Category() Category { return CategoryPostprocessing }

func (f PostprocessFunc) invoke(ctx context.Context, bag *properties.Bag) (any, error) {
	return f(ctx, bag)
}

// DeviceLogicFunc returns the device properties after platform business logic.
type DeviceLogicFunc func(ctx context.Context, bag *properties.Bag) (properties.Properties, error)

// Category returns CategoryDeviceBusinessLogic.
func (f DeviceLogicFunc) Category() Category { return CategoryDeviceBusinessLogic }

func (f DeviceLogicFunc) invoke(ctx context.Context, bag *properties.Bag) (any, error) {
	return f(ctx, bag)
}

// InterfaceLogicFunc returns the complete interface list.
type InterfaceLogicFunc func(ctx context.Context, bag *properties.Bag) ([]properties.Properties, error)

// Category returns CategoryInterfaceBusinessLogic.
func (f InterfaceLogicFunc) Category() Category { return CategoryInterfaceBusinessLogic }

func (f InterfaceLogicFunc) invoke(ctx context.Context, bag *properties.Bag) (any, error) {
	return f(ctx, bag)
}

// ConfigContextLogicFunc returns the config context after platform business logic.
type ConfigContextLogicFunc func(ctx context.Context, bag *properties.Bag) (properties.Properties, error)

// Category returns CategoryConfigContextBusinessLogic.
func (f ConfigContextLogicFunc) Category() Category { return CategoryConfigContextBusinessLogic }

func (f ConfigContextLogicFunc) invoke(ctx context.Context, bag *properties.Bag) (any, error) {
	return f(ctx, bag)
}

// ParserFactoryFunc builds a parser from the "config" argument.
type ParserFactoryFunc func(ctx context.Context, bag *properties.Bag) (configparser.Parser, error)

// Category returns CategoryConfigParser.
func (f ParserFactoryFunc) Category() Category { return CategoryConfigParser }

func (f ParserFactoryFunc) invoke(ctx context.Context, bag *properties.Bag) (any, error) {
	return f(ctx, bag)
}

// ParserFactory adapts a configparser constructor into a ParserFactoryFunc.
func ParserFactory[P configparser.Parser](build func(config any) (P, error)) ParserFactoryFunc {
	return func(_ context.Context, bag *properties.Bag) (configparser.Parser, error) {
		p, err := build(bag.Get("config", nil))
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

// identityHandler returns a category's subject argument unchanged.
type identityHandler struct {
	category Category
}

func (h identityHandler) Category() Category { return h.category }

func (h identityHandler) invoke(_ context.Context, bag *properties.Bag) (any, error) {
	subject := h.category.Subject()
	switch h.category {
	case CategoryPreprocessing, CategoryInterfaceBusinessLogic:
		return bag.List(subject, []properties.Properties{}), nil
	case CategoryPostprocessing:
		return bag.Strings(subject, []string{}), nil
	case CategoryDeviceBusinessLogic, CategoryConfigContextBusinessLogic:
		return bag.Properties(subject, properties.Properties{}), nil
	}
	return bag.Get(subject, nil), nil
}

// IsIdentity reports whether h is the fallback returned by ResolveOrIdentity.
func IsIdentity(h Handler) bool {
	_, ok := h.(identityHandler)
	return ok
}

func isNilHandler(h Handler) bool {
	switch f := h.(type) {
	case nil:
		return true
	case PreprocessFunc:
		return f == nil
	case PostprocessFunc:
		return f == nil
	case DeviceLogicFunc:
		return f == nil
	case InterfaceLogicFunc:
		return f == nil
	case ConfigContextLogicFunc:
		return f == nil
	case ParserFactoryFunc:
		return f == nil
	}
	return false
}
