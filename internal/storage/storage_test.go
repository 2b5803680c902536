package storage

import (
	"io"
	"strings"
	"testing"
)

func TestLocalStore_SaveOpenRemove(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	content := "attachment bytes"
	n, err := store.Save("abc123", strings.NewReader(content))
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if n != int64(len(content)) {
		t.Errorf("Save() wrote %d bytes, expected %d", n, len(content))
	}

	f, err := store.Open("abc123")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(f)
	f.Close()
	if string(data) != content {
		t.Errorf("read %q, expected %q", data, content)
	}

	if err := store.Remove("abc123"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := store.Open("abc123"); err == nil {
		t.Error("Open() after Remove() should fail")
	}
}

func TestLocalStore_RemoveMissingIsNoop(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())
	if err := store.Remove("never-existed"); err != nil {
		t.Errorf("Remove() of missing file should be nil, got %v", err)
	}
}

func TestLocalStore_RejectsPathSeparators(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())
	if _, err := store.Save("../escape", strings.NewReader("x")); err == nil {
		t.Error("Save() should reject names with separators")
	}
	if _, err := store.Open("a/b"); err == nil {
		t.Error("Open() should reject names with separators")
	}
}
