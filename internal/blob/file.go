package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"
)

// FileStorage keeps each blob in <dir>/<key>.json.
// Writes go through a temp file and rename, so a crash never leaves a
// half-written blob behind.
type FileStorage struct {
	dir string
}

// NewFileStorage creates the directory if needed and returns a file backend.
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, errors.New("file storage requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Dir returns the directory holding the blobs.
func (s *FileStorage) Dir() string {
	return s.dir
}

// Path returns the file path for a blob key.
func (s *FileStorage) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStorage) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read blob %s: %w", key, err)
	}
	return data, true, nil
}

func (s *FileStorage) Write(ctx context.Context, key string, data []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := atomicwriter.WriteFile(s.Path(key), data, 0o644); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return nil
}

func (s *FileStorage) Close() error { return nil }
