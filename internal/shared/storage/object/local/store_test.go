package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"resume-builder/internal/shared/storage/object"
)

func TestPutOpenDelete(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	info, err := store.Put(ctx, "exports/abc/resume.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if info.Size != 8 || info.Key != "exports/abc/resume.pdf" {
		t.Fatalf("unexpected info %+v", info)
	}

	rc, got, err := store.Open(ctx, "exports/abc/resume.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body, _ := io.ReadAll(rc)
	rc.Close()
	if string(body) != "%PDF-1.4" {
		t.Fatalf("unexpected body %q", body)
	}
	if got.ContentType != "application/pdf" {
		t.Fatalf("unexpected content type %q", got.ContentType)
	}

	if err := store.Delete(ctx, "exports/abc/resume.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, err := store.Open(ctx, "exports/abc/resume.pdf"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "exports/abc/resume.pdf"); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Put(context.Background(), "../escape.txt", "text/plain", strings.NewReader("x")); !errors.Is(err, object.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}
