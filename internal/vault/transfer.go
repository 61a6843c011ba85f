package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/scylladb/go-set/strset"

	"github.com/jackzampolin/promptvault/internal/filter"
	"github.com/jackzampolin/promptvault/internal/migrate"
	"github.com/jackzampolin/promptvault/internal/types"
)

// ExportFile is a ready-to-save export of selected prompts.
type ExportFile struct {
	FileName string          `json:"fileName" yaml:"fileName"`
	Count    int             `json:"count" yaml:"count"`
	Data     json.RawMessage `json:"data" yaml:"-"`
}

// ExportFileName returns the suggested file name for an export of n prompts.
func ExportFileName(n int) string {
	return fmt.Sprintf("promptvault-export-%d.json", n)
}

// ImportJSON parses pasted import text and imports every element.
// The root must be a JSON array of objects; otherwise nothing is imported.
func (s *Store) ImportJSON(ctx context.Context, text string) ([]types.Prompt, error) {
	var root any
	if err := json.Unmarshal([]byte(text), &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}
	items, ok := root.([]any)
	if !ok {
		return nil, ErrImportNotArray
	}

	records := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrImportFailed, i)
		}
		records = append(records, obj)
	}
	return s.Import(ctx, records)
}

// Import normalizes prompt-like records and stores them ahead of existing
// prompts. A supplied id is kept only if no stored prompt and no earlier
// record in the batch uses it; existing prompts are never overwritten.
func (s *Store) Import(ctx context.Context, records []map[string]any) ([]types.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := strset.NewWithSize(len(s.prompts) + len(records))
	for _, p := range s.prompts {
		used.Add(p.ID)
	}

	batch := make([]types.Prompt, 0, len(records))
	for _, r := range records {
		p := s.importRecord(r)
		if p.ID == "" || used.Has(p.ID) {
			p.ID = s.newID()
		}
		used.Add(p.ID)
		batch = append(batch, p)
	}

	next := make([]types.Prompt, 0, len(batch)+len(s.prompts))
	next = append(next, batch...)
	next = append(next, s.prompts...)
	if err := s.setPrompts(ctx, next); err != nil {
		return nil, err
	}
	s.logger.Info("prompts imported", "count", len(batch))
	return types.ClonePrompts(batch), nil
}

// importRecord fills missing fields with defaults. Callers hold s.mu.
func (s *Store) importRecord(r map[string]any) types.Prompt {
	id, _ := r["id"].(string)

	title, _ := r["title"].(string)
	if title == "" {
		title = migrate.FallbackPromptTitle
	}

	content, _ := r["content"].(string)

	var models []string
	if values, ok := r["models"].([]any); ok {
		models = migrate.NormalizeModelList(values)
	}
	if len(models) == 0 {
		models = []string{migrate.FirstOrFallback(s.models, migrate.FallbackImportModel)}
	}

	category, _ := r["category"].(string)
	if category == "" {
		category = migrate.FirstOrFallback(s.categories, migrate.FallbackCategory)
	}

	favorite, _ := r["isFavorite"].(bool)

	lastUsed, ok := migrate.Millis(r["lastUsed"])
	if !ok {
		lastUsed = s.now().UnixMilli()
	}

	return types.Prompt{
		ID:         id,
		Title:      title,
		Content:    content,
		Tags:       migrate.StringList(r["tags"]),
		Models:     models,
		Category:   category,
		IsFavorite: favorite,
		LastUsed:   lastUsed,
	}
}

// Export serializes the visible prompts whose ids are listed, in visible
// order, as a pretty-printed JSON array.
func (s *Store) Export(ids []string) (ExportFile, error) {
	s.mu.RLock()
	visible := filter.Visible(s.prompts, s.selection)
	s.mu.RUnlock()

	selected := strset.New(ids...)
	chosen := slices.DeleteFunc(visible, func(p types.Prompt) bool { return !selected.Has(p.ID) })
	if len(chosen) == 0 {
		return ExportFile{}, ErrEmptyExport
	}

	data, err := json.MarshalIndent(chosen, "", "  ")
	if err != nil {
		return ExportFile{}, fmt.Errorf("failed to encode export: %w", err)
	}
	return ExportFile{
		FileName: ExportFileName(len(chosen)),
		Count:    len(chosen),
		Data:     data,
	}, nil
}
