// Package session provides ports.CommandExecutor implementations that do not
// open device connections: commands are written out for an operator or a
// downstream transport to pick up.
package session

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// WriterExecutor prints each command batch to a writer, preceded by a
// comment line naming the device.
type WriterExecutor struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriterExecutor creates a WriterExecutor writing to out.
func NewWriterExecutor(out io.Writer) *WriterExecutor {
	return &WriterExecutor{out: out}
}

// Execute writes the commands for device in order.
func (e *WriterExecutor) Execute(ctx context.Context, device string, commands []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := fmt.Fprintf(e.out, "! %s\n", device); err != nil {
		return err
	}
	for _, cmd := range commands {
		if _, err := fmt.Fprintln(e.out, cmd); err != nil {
			return err
		}
	}
	return nil
}

// FileExecutor writes each device's commands to <dir>/<device>.cmds.
type FileExecutor struct {
	fs  ports.FileSystem
	dir string
}

// NewFileExecutor creates a FileExecutor storing batches under dir.
func NewFileExecutor(fs ports.FileSystem, dir string) *FileExecutor {
	return &FileExecutor{fs: fs, dir: dir}
}

// Path returns the file the commands for device are written to.
func (e *FileExecutor) Path(device string) string {
	name := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ':' {
			return '_'
		}
		return r
	}, device)
	return filepath.Join(e.dir, name+".cmds")
}

// Execute replaces the device's command file with commands.
func (e *FileExecutor) Execute(ctx context.Context, device string, commands []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	for _, cmd := range commands {
		b.WriteString(cmd)
		b.WriteByte('\n')
	}
	if err := e.fs.WriteFile(e.Path(device), []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("write commands for %s: %w", device, err)
	}
	return nil
}

// Ensure the executors implement ports.CommandExecutor.
var (
	_ ports.CommandExecutor = (*WriterExecutor)(nil)
	_ ports.CommandExecutor = (*FileExecutor)(nil)
)
