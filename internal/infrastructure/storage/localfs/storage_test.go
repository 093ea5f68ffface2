package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestPutCreatesBucketAndReturnsPath(t *testing.T) {
	base := t.TempDir()
	storage, err := New(base)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, err := storage.Put(context.Background(), "documents", "abc.pdf", []byte("%PDF-1.4"), "application/pdf")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if path != "documents/abc.pdf" {
		t.Fatalf("storage path = %q", path)
	}

	data, err := os.ReadFile(filepath.Join(base, "documents", "abc.pdf"))
	if err != nil {
		t.Fatalf("read stored object: %v", err)
	}
	if string(data) != "%PDF-1.4" {
		t.Fatalf("stored bytes = %q", data)
	}
}

func TestOpenRoundTripsStoragePath(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path, err := storage.Put(context.Background(), "documents", "note.docx", []byte("zip-bytes"), "")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	rc, err := storage.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read object: %v", err)
	}
	if string(data) != "zip-bytes" {
		t.Fatalf("object bytes = %q", data)
	}
}
