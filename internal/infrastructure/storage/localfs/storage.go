package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Storage writes uploads to the local filesystem under basePath, one
// subdirectory per bucket. Buckets are created on first use.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// Put stores one object and returns its storage path "<bucket>/<key>".
// Keys are generated server side, never taken from client input.
func (s *Storage) Put(_ context.Context, bucket, key string, data []byte, _ string) (string, error) {
	dir := filepath.Join(s.basePath, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}

	path := filepath.Join(dir, key)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return bucket + "/" + key, nil
}

// Open returns the stored object for reading.
func (s *Storage) Open(_ context.Context, storagePath string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, filepath.FromSlash(storagePath)))
	if err != nil {
		return nil, fmt.Errorf("open object: %w", err)
	}
	return f, nil
}
