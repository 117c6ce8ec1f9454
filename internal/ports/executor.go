// Package ports defines interfaces for external dependencies.
package ports

import "context"

// Execution records one batch of commands sent to a device.
type Execution struct {
	Device   string
	Commands []string
}

// CommandExecutor hands an ordered command list to a device session.
// Implementations own the transport; commands must be sent in order.
type CommandExecutor interface {
	Execute(ctx context.Context, device string, commands []string) error
}
