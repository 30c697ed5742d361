package photos

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "photos"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestPutOpenDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	key, err := s.Put(ctx, strings.NewReader("jpeg bytes"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasSuffix(key, ".jpg") || len(key) != 36+len(".jpg") {
		t.Errorf("expected uuid key with .jpg suffix, got %q", key)
	}

	rc, err := s.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "jpeg bytes" {
		t.Errorf("expected stored bytes, got %q", data)
	}

	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Open(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Errorf("expected deleting a missing photo to succeed, got %v", err)
	}
}

func TestPutUsesDistinctKeys(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	a, _ := s.Put(ctx, strings.NewReader("a"))
	b, _ := s.Put(ctx, strings.NewReader("b"))
	if a == b {
		t.Fatalf("expected distinct keys, got %q twice", a)
	}

	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("expected exactly 2 files and no temp leftovers, got %d", len(entries))
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestPutFailureLeavesNothing(t *testing.T) {
	s := newStore(t)
	if _, err := s.Put(context.Background(), failingReader{}); err == nil {
		t.Fatal("expected error from failing reader")
	}
	entries, _ := os.ReadDir(s.Root())
	if len(entries) != 0 {
		t.Errorf("expected no files after failed put, got %d", len(entries))
	}
}

func TestInvalidKeys(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	for _, key := range []string{"", "  ", "../secret", "a/b.jpg", `a\b.jpg`, ".hidden"} {
		if _, err := s.Open(ctx, key); err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("Open(%q): expected invalid key error, got %v", key, err)
		}
		if err := s.Delete(ctx, key); err == nil {
			t.Errorf("Delete(%q): expected invalid key error", key)
		}
	}
}

func TestCancelledContext(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Put(ctx, strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
