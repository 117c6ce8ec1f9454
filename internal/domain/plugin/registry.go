package plugin

import (
	"context"
	"fmt"
	"sort"

	"github.com/felixgeelhaar/sotsync/internal/domain/properties"
)

type slot struct {
	category Category
	key      Key
}

// Entry describes one registration.
type Entry struct {
	Category Category
	Key      Key
}

// Builder collects registrations during initialization.
// A Builder is not safe for concurrent use; registration is expected to run
// synchronously before any pipeline starts.
type Builder struct {
	handlers map[slot]Handler
	bundles  []BundleInfo
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{handlers: make(map[slot]Handler)}
}

// Register binds handler to (category, key).
// The first registration for a pair wins; later ones fail with
// DuplicateRegistrationError and leave the table unchanged.
func (b *Builder) Register(category Category, key Key, handler Handler) error {
	if !category.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	key = NormalizeKey(key.String())
	if key == "" {
		return ErrEmptyKey
	}
	if isNilHandler(handler) {
		return ErrNilHandler
	}
	if got := handler.Category(); got != category {
		return NewHandlerMismatchError(category, key, got)
	}

	s := slot{category: category, key: key}
	if _, exists := b.handlers[s]; exists {
		return NewDuplicateRegistrationError(category, key)
	}
	b.handlers[s] = handler
	return nil
}

// MustRegister is Register for static initialization; it panics on error.
func (b *Builder) MustRegister(category Category, key Key, handler Handler) {
	if err := b.Register(category, key, handler); err != nil {
		panic(err)
	}
}

// Build freezes the current registrations into a read-only Registry.
// The Registry holds its own copy; later registrations on b do not affect it.
func (b *Builder) Build() *Registry {
	handlers := make(map[slot]Handler, len(b.handlers))
	for s, h := range b.handlers {
		handlers[s] = h
	}
	return &Registry{
		handlers: handlers,
		bundles:  append([]BundleInfo(nil), b.bundles...),
	}
}

// Registry is an immutable (category, key) → handler table.
type Registry struct {
	handlers map[slot]Handler
	bundles  []BundleInfo
}

// Resolve returns the handler bound to (category, key).
func (r *Registry) Resolve(category Category, key Key) (Handler, error) {
	key = NormalizeKey(key.String())
	if r != nil {
		if h, ok := r.handlers[slot{category: category, key: key}]; ok {
			return h, nil
		}
	}
	return nil, NewHandlerNotFoundError(category, key)
}

// Has reports whether (category, key) is bound.
func (r *Registry) Has(category Category, key Key) bool {
	_, err := r.Resolve(category, key)
	return err == nil
}

// ResolveOrIdentity returns the bound handler, or a handler that returns the
// category's subject argument unchanged. Categories without a subject
// (configparser) have no identity and yield HandlerNotFoundError.
func (r *Registry) ResolveOrIdentity(category Category, key Key) (Handler, error) {
	h, err := r.Resolve(category, key)
	if err == nil {
		return h, nil
	}
	if category.Subject() == "" {
		return nil, err
	}
	return identityHandler{category: category}, nil
}

// Dispatch resolves (category, key), normalizes the call arguments into a
// Bag and invokes the handler. Handler errors and panics are returned as
// HandlerExecutionError; the registry itself is never affected.
func (r *Registry) Dispatch(ctx context.Context, category Category, key Key, args []any, named map[string]any) (any, error) {
	h, err := r.Resolve(category, key)
	if err != nil {
		return nil, err
	}
	return Invoke(ctx, h, NormalizeKey(key.String()), args, named)
}

// Invoke runs an already-resolved handler with the category's call convention.
func Invoke(ctx context.Context, h Handler, key Key, args []any, named map[string]any) (result any, err error) {
	category := h.Category()
	bag := properties.NewBag(category.PositionalNames(), args, named)

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = NewHandlerExecutionError(category, key, fmt.Errorf("panic: %v", rec))
		}
	}()

	result, err = h.invoke(ctx, bag)
	if err != nil {
		return nil, NewHandlerExecutionError(category, key, err)
	}
	return result, nil
}

// Keys returns the sorted keys registered for category.
func (r *Registry) Keys(category Category) []Key {
	var keys []Key
	if r == nil {
		return keys
	}
	for s := range r.handlers {
		if s.category == category {
			keys = append(keys, s.key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Entries returns every registration ordered by category then key.
func (r *Registry) Entries() []Entry {
	var entries []Entry
	for _, c := range Categories() {
		for _, k := range r.Keys(c) {
			entries = append(entries, Entry{Category: c, Key: k})
		}
	}
	return entries
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.handlers)
}
