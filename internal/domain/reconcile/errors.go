package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for reconciliation failures.
const (
	ErrCodeLineParse            = "LINE_PARSE"
	ErrCodeReconciliationFailed = "RECONCILIATION_FAILED"
	ErrCodeInvalidStrategy      = "INVALID_STRATEGY"
)

// Sentinel errors for programmatic error handling.
var (
	// ErrNoIdentity indicates a config line carries no identity key.
	ErrNoIdentity = errors.New("no identity in line")
	// ErrMissingIdentity indicates a desired entity lacks its identity field.
	ErrMissingIdentity = errors.New("identity field missing")
	// ErrDuplicateSection indicates a catalog already holds a strategy for the section.
	ErrDuplicateSection = errors.New("section already registered")
)

// ParseError reports an old config line whose identity could not be extracted.
// Lines with a ParseError are skipped and never appear in the output.
type ParseError struct {
	Section string
	Index   int // position of the line in the old block
	Line    string
	Cause   error
}

// Error returns the formatted error message.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d %q: %v", e.Section, e.Index+1, e.Line, e.Cause)
}

// Unwrap returns the cause.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Code returns the error code.
func (e *ParseError) Code() string {
	return ErrCodeLineParse
}

// ReconciliationError reports one desired entity that could not be reconciled.
type ReconciliationError struct {
	Section  string
	Index    int // position of the entity in the desired state
	Identity IdentityKey
	Cause    error
}

// Error returns the formatted error message.
func (e *ReconciliationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: entity %d", e.Section, e.Index)
	if e.Identity != "" {
		fmt.Fprintf(&b, " (%s)", e.Identity)
	}
	fmt.Fprintf(&b, ": %v", e.Cause)
	return b.String()
}

// Unwrap returns the cause.
func (e *ReconciliationError) Unwrap() error {
	return e.Cause
}

// Code returns the error code.
func (e *ReconciliationError) Code() string {
	return ErrCodeReconciliationFailed
}

// StrategyError reports a strategy that cannot be built.
type StrategyError struct {
	Section string
	Field   string
	Message string
	Cause   error
}

// Error returns the formatted error message.
func (e *StrategyError) Error() string {
	msg := fmt.Sprintf("strategy %q: %s %s", e.Section, e.Field, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the cause.
func (e *StrategyError) Unwrap() error {
	return e.Cause
}

// Code returns the error code.
func (e *StrategyError) Code() string {
	return ErrCodeInvalidStrategy
}
