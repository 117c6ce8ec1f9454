// Package mocks provides test doubles for testing.
package mocks

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/felixgeelhaar/sotsync/internal/ports"
)

// FileSystem is a thread-safe test double for ports.FileSystem.
type FileSystem struct {
	mu         sync.RWMutex
	files      map[string][]byte
	readErrs   map[string]error
	writeErr   error
	writeCalls int
}

// NewFileSystem creates a new FileSystem mock.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files:    make(map[string][]byte),
		readErrs: make(map[string]error),
	}
}

// AddFile adds a file to the mock filesystem.
func (fs *FileSystem) AddFile(path string, content string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = []byte(content)
}

// SetReadError makes ReadFile fail for path.
func (fs *FileSystem) SetReadError(path string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.readErrs[path] = err
}

// SetWriteError makes every WriteFile call fail with err.
func (fs *FileSystem) SetWriteError(err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.writeErr = err
}

// ReadFile reads a file from the mock filesystem.
// Missing files return an error wrapping os.ErrNotExist.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	if err, ok := fs.readErrs[path]; ok {
		return nil, err
	}
	if content, ok := fs.files[path]; ok {
		return append([]byte(nil), content...), nil
	}
	return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
}

// WriteFile writes a file to the mock filesystem.
func (fs *FileSystem) WriteFile(path string, data []byte, _ os.FileMode) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.writeCalls++
	if fs.writeErr != nil {
		return fs.writeErr
	}
	fs.files[path] = append([]byte(nil), data...)
	return nil
}

// Exists checks if a file exists in the mock filesystem.
func (fs *FileSystem) Exists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	_, ok := fs.files[path]
	return ok
}

// Paths returns every stored path in sorted order.
func (fs *FileSystem) Paths() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	paths := make([]string, 0, len(fs.files))
	for p := range fs.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// WriteCalls returns how many times WriteFile was called.
func (fs *FileSystem) WriteCalls() int {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.writeCalls
}

// Reset clears all files and injected errors.
func (fs *FileSystem) Reset() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files = make(map[string][]byte)
	fs.readErrs = make(map[string]error)
	fs.writeErr = nil
	fs.writeCalls = 0
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
