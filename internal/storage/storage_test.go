package storage

import (
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestSave(t *testing.T) {
	s := newTestStorage(t)

	stored, size, err := s.Save("report.PDF", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if size != 5 {
		t.Errorf("size = %d, want 5", size)
	}
	if !strings.HasSuffix(stored, ".pdf") {
		t.Errorf("stored name %q does not keep the lowercased extension", stored)
	}
	if stored == "report.pdf" {
		t.Error("stored name must not be the original filename")
	}

	content, err := os.ReadFile(s.Path(stored))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(content) != "hello" {
		t.Errorf("stored content = %q, want hello", content)
	}
}

func TestSave_DistinctNames(t *testing.T) {
	s := newTestStorage(t)

	first, _, err := s.Save("a.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second, _, err := s.Save("a.txt", strings.NewReader("y"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if first == second {
		t.Errorf("two uploads of the same filename share a stored name: %q", first)
	}
}

func TestSave_StripsHostileExtension(t *testing.T) {
	s := newTestStorage(t)

	stored, _, err := s.Save("noext", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if strings.Contains(stored, ".") {
		t.Errorf("stored name %q has an extension for an extensionless upload", stored)
	}
}

func TestRemove(t *testing.T) {
	s := newTestStorage(t)

	stored, _, err := s.Save("a.txt", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if err := s.Remove(stored); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if s.Exists(stored) {
		t.Error("file still exists after Remove()")
	}

	// Removing a missing file is tolerated.
	if err := s.Remove(stored); err != nil {
		t.Errorf("Remove() of missing file error = %v, want nil", err)
	}
}
