package plugin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "duplicate",
			err:      NewDuplicateRegistrationError(CategoryPreprocessing, "snmp"),
			expected: `category "preprocessing", key "snmp": handler already registered`,
		},
		{
			name:     "not found",
			err:      NewHandlerNotFoundError(CategoryConfigParser, "junos"),
			expected: `category "configparser", key "junos": no handler registered`,
		},
		{
			name:     "execution with cause",
			err:      NewHandlerExecutionError(CategoryPostprocessing, "ios", errors.New("bad template")),
			expected: `category "postprocessing", key "ios": handler failed: bad template`,
		},
		{
			name:     "bundle",
			err:      NewIncompatibleBundleError("acme", "targets API v2, host provides v1"),
			expected: `bundle "acme": targets API v2, host provides v1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestRegistryError_IsByCode(t *testing.T) {
	t.Parallel()

	err := NewHandlerNotFoundError(CategoryConfigParser, "junos")

	assert.ErrorIs(t, err, ErrHandlerNotFound)
	assert.NotErrorIs(t, err, ErrDuplicateRegistration)
	assert.NotErrorIs(t, err, errors.New("other"))
}

func TestRegistryError_Format(t *testing.T) {
	t.Parallel()

	err := NewHandlerExecutionError(CategoryPreprocessing, "snmp", errors.New("timeout"))
	formatted := err.Format()

	assert.Contains(t, formatted, "[HANDLER_FAILED]")
	assert.Contains(t, formatted, "Category: preprocessing")
	assert.Contains(t, formatted, "Key: snmp")
	assert.Contains(t, formatted, "Cause: timeout")

	nf := NewHandlerNotFoundError(CategoryConfigParser, "junos").Format()
	assert.Contains(t, nf, "Suggestion: Register a ParserFactoryFunc handler")
}

func TestRegistryError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	err := NewHandlerExecutionError(CategoryPreprocessing, "snmp", cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}
