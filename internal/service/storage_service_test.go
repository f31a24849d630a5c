package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"invoice-parser/internal/domain"
)

func TestLocalFileStore_SaveAndResolve(t *testing.T) {
	store := NewLocalFileStore(t.TempDir(), newTestLogger())

	path, err := store.Save("conv-1", "invoice.pdf", strings.NewReader("pdf content"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if filepath.Base(path) != "invoice.pdf" {
		t.Errorf("unexpected stored name: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "pdf content" {
		t.Errorf("stored content mismatch: %q", data)
	}

	resolved, err := store.Resolve("conv-1", "invoice.pdf")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved != path {
		t.Errorf("resolve returned %s, want %s", resolved, path)
	}
}

func TestLocalFileStore_ResolveMissingFile(t *testing.T) {
	store := NewLocalFileStore(t.TempDir(), newTestLogger())

	_, err := store.Resolve("conv-1", "nope.png")
	if !errors.Is(err, domain.ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestLocalFileStore_RejectsTraversal(t *testing.T) {
	store := NewLocalFileStore(t.TempDir(), newTestLogger())

	for _, name := range []string{"..", ".", "", "   "} {
		if _, err := store.Save("conv-1", name, strings.NewReader("x")); !errors.Is(err, domain.ErrInvalidFile) {
			t.Errorf("Save(%q) should reject invalid name, got %v", name, err)
		}
	}

	// Path separators are stripped to the base name rather than honored.
	path, err := store.Save("conv-1", "../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if filepath.Base(path) != "passwd" || strings.Contains(path, "..") {
		t.Errorf("traversal not neutralized: %s", path)
	}
}
