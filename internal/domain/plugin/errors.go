package plugin

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for registry operations.
const (
	ErrCodeDuplicateRegistration = "DUPLICATE_REGISTRATION"
	ErrCodeHandlerNotFound       = "HANDLER_NOT_FOUND"
	ErrCodeHandlerMismatch       = "HANDLER_MISMATCH"
	ErrCodeHandlerFailed         = "HANDLER_FAILED"
	ErrCodeIncompatibleBundle    = "INCOMPATIBLE_BUNDLE"
)

// Sentinel errors for programmatic error handling.
var (
	// ErrUnknownCategory indicates a category outside the closed set.
	ErrUnknownCategory = errors.New("unknown plugin category")
	// ErrEmptyKey indicates a registration with an empty key.
	ErrEmptyKey = errors.New("plugin key cannot be empty")
	// ErrNilHandler indicates a registration with a nil handler.
	ErrNilHandler = errors.New("handler cannot be nil")
)

// RegistryError is the common shape of registry failures.
type RegistryError struct {
	Code       string
	Category   Category
	Key        Key
	Message    string
	Suggestion string
	Cause      error
}

// Error returns the formatted error message.
func (e *RegistryError) Error() string {
	var parts []string
	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("category %q", e.Category))
	}
	if e.Key != "" {
		parts = append(parts, fmt.Sprintf("key %q", e.Key))
	}

	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if len(parts) > 0 {
		return fmt.Sprintf("%s: %s", strings.Join(parts, ", "), msg)
	}
	return msg
}

// Unwrap returns the cause.
func (e *RegistryError) Unwrap() error {
	return e.Cause
}

// Is matches registry errors by code.
func (e *RegistryError) Is(target error) bool {
	var t *RegistryError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *RegistryError) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)
	if e.Category != "" {
		fmt.Fprintf(&b, "\n  Category: %s", e.Category)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, "\n  Key: %s", e.Key)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, "\n  Cause: %s", e.Cause.Error())
	}
	return b.String()
}

// DuplicateRegistrationError reports a second handler for a bound (category, key).
type DuplicateRegistrationError struct{ RegistryError }

// HandlerNotFoundError reports a lookup on an unregistered (category, key).
type HandlerNotFoundError struct{ RegistryError }

// HandlerMismatchError reports a handler whose kind does not fit its category.
type HandlerMismatchError struct{ RegistryError }

// HandlerExecutionError wraps a failure raised inside a handler.
type HandlerExecutionError struct{ RegistryError }

// IncompatibleBundleError reports a bundle the host cannot install.
type IncompatibleBundleError struct {
	RegistryError
	Bundle string
}

// Sentinels usable with errors.Is, matched by code.
var (
	ErrDuplicateRegistration = &RegistryError{Code: ErrCodeDuplicateRegistration}
	ErrHandlerNotFound       = &RegistryError{Code: ErrCodeHandlerNotFound}
	ErrHandlerMismatch       = &RegistryError{Code: ErrCodeHandlerMismatch}
	ErrHandlerFailed         = &RegistryError{Code: ErrCodeHandlerFailed}
	ErrIncompatibleBundle    = &RegistryError{Code: ErrCodeIncompatibleBundle}
)

// NewDuplicateRegistrationError creates an error for a repeated registration.
func NewDuplicateRegistrationError(category Category, key Key) *DuplicateRegistrationError {
	return &DuplicateRegistrationError{RegistryError{
		Code:       ErrCodeDuplicateRegistration,
		Category:   category,
		Key:        key,
		Message:    "handler already registered",
		Suggestion: "Each (category, key) pair accepts one handler. Remove the duplicate plugin or register it under another key.",
	}}
}

// NewHandlerNotFoundError creates an error for a missing handler.
func NewHandlerNotFoundError(category Category, key Key) *HandlerNotFoundError {
	return &HandlerNotFoundError{RegistryError{
		Code:       ErrCodeHandlerNotFound,
		Category:   category,
		Key:        key,
		Message:    "no handler registered",
		Suggestion: fmt.Sprintf("Register a %s handler for %q during initialization.", category.HandlerKind(), key),
	}}
}

// NewHandlerMismatchError creates an error for a handler of the wrong kind.
func NewHandlerMismatchError(category Category, key Key, got Category) *HandlerMismatchError {
	return &HandlerMismatchError{RegistryError{
		Code:       ErrCodeHandlerMismatch,
		Category:   category,
		Key:        key,
		Message:    fmt.Sprintf("handler is a %s, category requires a %s", got.HandlerKind(), category.HandlerKind()),
		Suggestion: "Wrap the function in the handler type that matches the category.",
	}}
}

// NewHandlerExecutionError wraps a handler failure with its category and key.
func NewHandlerExecutionError(category Category, key Key, cause error) *HandlerExecutionError {
	return &HandlerExecutionError{RegistryError{
		Code:     ErrCodeHandlerFailed,
		Category: category,
		Key:      key,
		Message:  "handler failed",
		Cause:    cause,
	}}
}

// NewIncompatibleBundleError creates an error for a bundle the host rejects.
func NewIncompatibleBundleError(bundle, reason string) *IncompatibleBundleError {
	return &IncompatibleBundleError{
		RegistryError: RegistryError{
			Code:    ErrCodeIncompatibleBundle,
			Message: fmt.Sprintf("bundle %q: %s", bundle, reason),
		},
		Bundle: bundle,
	}
}
