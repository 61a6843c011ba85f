// Package vault is the in-memory prompt store.
//
// A Store is loaded once from four persisted blobs, normalized by package
// migrate, and writes the affected blob back in full after every mutation.
// A mutation is applied to memory only after its blob was written, so a
// failed write leaves the Store unchanged.
//
// The Store also owns the session's filter selection, which is never
// persisted.
package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/promptvault/internal/blob"
	"github.com/jackzampolin/promptvault/internal/migrate"
	"github.com/jackzampolin/promptvault/internal/types"
)

// Config configures a Store.
type Config struct {
	// Storage is where blobs are read from and written to. Required.
	Storage blob.Storage

	// Logger for store events. Defaults to slog.Default().
	Logger *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// NewID mints ids for prompts and quick filters. Defaults to uuid.NewString.
	NewID func() string
}

// Store holds prompts, categories, models, quick filters and the active
// selection. It is safe for concurrent use.
type Store struct {
	storage blob.Storage
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string

	mu           sync.RWMutex
	prompts      []types.Prompt
	categories   []string
	models       []string
	quickFilters []types.QuickFilter
	selection    types.Selection
}

// Open loads and migrates every blob, then writes all four back once so the
// persisted form matches what is in memory.
// Unreadable or corrupt blobs are replaced by seed data and never cause an error.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	s := &Store{
		storage:   cfg.Storage,
		logger:    logger,
		now:       now,
		newID:     newID,
		selection: types.DefaultSelection(),
	}

	m := &migrate.Migrator{Now: now, NewID: newID, Logger: logger}
	s.prompts = m.Prompts(s.read(ctx, blob.KeyPrompts))
	s.categories = m.Categories(s.read(ctx, blob.KeyCategories))
	s.models = m.Models(s.read(ctx, blob.KeyModels))
	s.quickFilters = m.QuickFilters(s.read(ctx, blob.KeyQuickFilters))

	writes := []struct {
		key   string
		value any
	}{
		{blob.KeyPrompts, s.prompts},
		{blob.KeyCategories, s.categories},
		{blob.KeyModels, s.models},
		{blob.KeyQuickFilters, s.quickFilters},
	}
	for _, w := range writes {
		if err := s.write(ctx, w.key, w.value); err != nil {
			return nil, fmt.Errorf("initial sync: %w", err)
		}
	}

	logger.Info("vault opened",
		"prompts", len(s.prompts),
		"categories", len(s.categories),
		"models", len(s.models),
		"quick_filters", len(s.quickFilters))
	return s, nil
}

// read returns the raw blob, or nil when it is missing or unreadable.
func (s *Store) read(ctx context.Context, key string) []byte {
	data, found, err := s.storage.Read(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read blob, treating as absent", "blob", key, "error", err)
		return nil
	}
	if !found {
		return nil
	}
	return data
}

// write serializes value and replaces the blob stored under key.
func (s *Store) write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.storage.Write(ctx, key, data); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}
	s.logger.Debug("persisted blob", "blob", key, "bytes", len(data))
	return nil
}

// Close releases the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close()
}
