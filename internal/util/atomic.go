package util

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// AtomicFile stages writes in a temporary file next to the destination and
// only renames it into place on Commit. An aborted run therefore never
// leaves a partial file at the final path.
type AtomicFile struct {
	f    *os.File
	path string
	done bool
}

func NewAtomicFile(path string) (*AtomicFile, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	f, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	return &AtomicFile{f: f, path: path}, nil
}

func (a *AtomicFile) Write(p []byte) (int, error) {
	return a.f.Write(p)
}

// Commit closes the temp file and renames it to the final path.
func (a *AtomicFile) Commit() error {
	if a.done {
		return fmt.Errorf("atomic file for %s already finished", a.path)
	}
	a.done = true
	if err := a.f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(a.f.Name(), a.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Discard removes the staged temp file. Calling it after Commit is a no-op,
// so it is safe to defer alongside a conditional Commit.
func (a *AtomicFile) Discard() {
	if a.done {
		return
	}
	a.done = true
	_ = a.f.Close()
	_ = os.Remove(a.f.Name())
}

func WriteJSONAtomic(path string, v any) error {
	af, err := NewAtomicFile(path)
	if err != nil {
		return err
	}
	defer af.Discard()
	enc := json.NewEncoder(af)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return af.Commit()
}
