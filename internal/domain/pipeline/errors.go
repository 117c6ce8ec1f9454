package pipeline

import (
	"errors"
	"fmt"
)

// ErrCodeStageFailed is the code of StageError.
const ErrCodeStageFailed = "STAGE_FAILED"

// Sentinel errors for programmatic error handling.
var (
	// ErrEmptyPlatform indicates a request without a platform.
	ErrEmptyPlatform = errors.New("platform is required")
	// ErrNilResult indicates a hook that returned no value.
	ErrNilResult = errors.New("hook returned no result")
	// ErrIncompleteInterface indicates an interface record without a name.
	ErrIncompleteInterface = errors.New("interface record has no name")
)

// StageError reports the chain stage that failed during an onboarding run.
type StageError struct {
	RunID  string
	Device string
	Chain  Chain
	Stage  Stage
	Cause  error
}

// Error returns the formatted error message.
func (e *StageError) Error() string {
	where := string(e.Stage)
	if e.Chain != "" {
		where = fmt.Sprintf("%s/%s", e.Chain, e.Stage)
	}
	return fmt.Sprintf("device %q: %s stage failed: %v", e.Device, where, e.Cause)
}

// Unwrap returns the cause.
func (e *StageError) Unwrap() error {
	return e.Cause
}

// Code returns the error code.
func (e *StageError) Code() string {
	return ErrCodeStageFailed
}
