// Package blob stores independently persisted JSON blobs by key.
// Every write replaces the whole blob; there are no partial updates.
package blob

import (
	"context"
	"errors"
	"fmt"
	"unicode"
)

// Keys of the four persisted blobs.
const (
	KeyPrompts      = "pv_prompts"
	KeyCategories   = "pv_categories"
	KeyModels       = "pv_models"
	KeyQuickFilters = "pv_quick_filters"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrInvalidKey is returned when a blob key contains invalid characters.
var ErrInvalidKey = errors.New("invalid blob key")

// Storage reads and writes whole blobs.
type Storage interface {
	// Read returns the blob stored under key. found is false when the key
	// was never written; that is not an error.
	Read(ctx context.Context, key string) (data []byte, found bool, err error)

	// Write replaces the blob stored under key.
	Write(ctx context.Context, key string, data []byte) error

	// Close releases backend resources.
	Close() error
}

// Open creates a storage backend by name.
// path is a directory for the file backend, a database file for sqlite,
// and ignored for memory.
func Open(backend, path string) (Storage, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStorage(path)
	case BackendSQLite:
		return NewSQLiteStorage(path)
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// ValidateKey checks that a key contains only letters, digits, underscores,
// dots and hyphens, so it is safe to use as a file name.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidKey)
	}
	for i, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '_' && r != '-' {
			return fmt.Errorf("%w: invalid character %q at position %d", ErrInvalidKey, r, i)
		}
	}
	if key[0] == '.' {
		return fmt.Errorf("%w: key cannot start with a dot", ErrInvalidKey)
	}
	return nil
}
