package configparser

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCodeConfigParse categorizes configuration parse failures.
const ErrCodeConfigParse = "CONFIG_PARSE"

// ErrUnsupportedInput indicates the config value is of a type the variant cannot read.
var ErrUnsupportedInput = errors.New("unsupported configuration input")

// ParseError reports configuration that could not be read into a snapshot.
type ParseError struct {
	Platform   string
	Line       int // 1-based; zero when not line-oriented
	Message    string
	Underlying error
}

// Error returns the formatted error message.
func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s config", e.Platform)
	if e.Line > 0 {
		fmt.Fprintf(&b, " line %d", e.Line)
	}
	fmt.Fprintf(&b, ": %s", e.Message)
	if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Underlying
}

// Code returns the error code.
func (e *ParseError) Code() string {
	return ErrCodeConfigParse
}

func newParseError(platform string, line int, msg string, err error) *ParseError {
	return &ParseError{
		Platform:   platform,
		Line:       line,
		Message:    msg,
		Underlying: err,
	}
}
