package local

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PacoFigueroa/AI4Devs-lab-ides-SR-01-sub001/internal/shared/storage/object"
)

func TestPutOpenDelete(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)
	ctx := context.Background()

	n, err := store.Put(ctx, "candidates/abc/cv.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != 8 {
		t.Fatalf("expected 8 bytes, got %d", n)
	}

	rc, err := store.Open(ctx, "candidates/abc/cv.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "%PDF-1.4" {
		t.Fatalf("unexpected content %q", data)
	}

	entries, err := os.ReadDir(filepath.Join(dir, "candidates", "abc"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no temp files left behind, got %d entries", len(entries))
	}

	if err := store.Delete(ctx, "candidates/abc/cv.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "candidates", "abc", "cv.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected file removed, stat err=%v", err)
	}
	if err := store.Delete(ctx, "candidates/abc/cv.pdf"); err != nil {
		t.Fatalf("Delete missing key should succeed: %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	store := New(t.TempDir())
	for _, key := range []string{"", "/etc/passwd", "../outside.pdf", "a/../../b"} {
		if _, err := store.Put(context.Background(), key, "", strings.NewReader("x")); !errors.Is(err, object.ErrInvalidKey) {
			t.Fatalf("Put(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestPutHonorsCanceledContext(t *testing.T) {
	store := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Put(ctx, "a.pdf", "", strings.NewReader("x")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
