package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicFileCommit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "triples.tsv")

	af, err := NewAtomicFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer af.Discard()
	if _, err := af.Write([]byte("a\tb\tc\n")); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file visible before commit: %v", err)
	}
	if err := af.Commit(); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "a\tb\tc\n" {
		t.Fatalf("unexpected content: %q", b)
	}
}

func TestAtomicFileDiscardLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")

	af, err := NewAtomicFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := af.Write([]byte("partial")); err != nil {
		t.Fatal(err)
	}
	af.Discard()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty dir after discard, got %d entries", len(entries))
	}
}

func TestWriteJSONAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	if err := WriteJSONAtomic(path, map[string]int{"total": 3}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "{\n  \"total\": 3\n}\n" {
		t.Fatalf("unexpected json: %q", b)
	}
}
