package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestRealFileSystem_Integration(t *testing.T) {
	fs := NewRealFileSystem()
	tmpDir := t.TempDir()

	testFile := filepath.Join(tmpDir, "out", "r1.cmds")
	if err := fs.WriteFile(testFile, []byte("no username alice\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	content, err := fs.ReadFile(testFile)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(content) != "no username alice\n" {
		t.Errorf("ReadFile() = %q, want %q", string(content), "no username alice\n")
	}

	if !fs.Exists(testFile) {
		t.Error("Exists() should return true")
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestRealFileSystem_WriteFile_Overwrites(t *testing.T) {
	fs := NewRealFileSystem()
	path := filepath.Join(t.TempDir(), "r1.cfg")

	if err := fs.WriteFile(path, []byte("first"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := fs.WriteFile(path, []byte("second"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	content, _ := fs.ReadFile(path)
	if string(content) != "second" {
		t.Errorf("ReadFile() = %q, want %q", string(content), "second")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("temporary files left behind: %v", entries)
	}
}

func TestRealFileSystem_ReadFile_NotFound(t *testing.T) {
	fs := NewRealFileSystem()

	_, err := fs.ReadFile(filepath.Join(t.TempDir(), "missing.cfg"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFile() error = %v, want os.ErrNotExist", err)
	}
}

func TestRealFileSystem_Exists_Missing(t *testing.T) {
	fs := NewRealFileSystem()

	if fs.Exists(filepath.Join(t.TempDir(), "missing")) {
		t.Error("Exists() should return false for missing path")
	}
}
