package mocks

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// CommandExecutor is a thread-safe test double for ports.CommandExecutor.
type CommandExecutor struct {
	mu     sync.RWMutex
	errors map[string]error
	calls  []ports.Execution
}

// NewCommandExecutor creates a new CommandExecutor mock.
func NewCommandExecutor() *CommandExecutor {
	return &CommandExecutor{
		errors: make(map[string]error),
		calls:  make([]ports.Execution, 0),
	}
}

// AddError makes Execute fail for device.
func (m *CommandExecutor) AddError(device string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[device] = err
}

// Execute records the commands and returns the registered error, if any.
func (m *CommandExecutor) Execute(ctx context.Context, device string, commands []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, ports.Execution{
		Device:   device,
		Commands: append([]string(nil), commands...),
	})
	return m.errors[device]
}

// Calls returns all recorded executions.
func (m *CommandExecutor) Calls() []ports.Execution {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent data races
	calls := make([]ports.Execution, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallsFor returns the executions recorded for device.
func (m *CommandExecutor) CallsFor(device string) []ports.Execution {
	var out []ports.Execution
	for _, c := range m.Calls() {
		if c.Device == device {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears registered errors and recorded calls.
func (m *CommandExecutor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = make(map[string]error)
	m.calls = make([]ports.Execution, 0)
}

// Ensure CommandExecutor implements ports.CommandExecutor.
var _ ports.CommandExecutor = (*CommandExecutor)(nil)
