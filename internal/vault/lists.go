package vault

import (
	"context"
	"slices"

	"github.com/jackzampolin/promptvault/internal/blob"
	"github.com/jackzampolin/promptvault/internal/types"
)

// Categories returns the managed category list in insertion order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// Models returns the managed model list in insertion order.
func (s *Store) Models() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.models)
}

// AddCategory appends a category unless an identical one exists.
// It reports whether the list changed.
func (s *Store) AddCategory(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.categories, name) {
		return false, nil
	}
	next := append(slices.Clone(s.categories), name)
	if err := s.write(ctx, blob.KeyCategories, next); err != nil {
		return false, err
	}
	s.categories = next
	return true, nil
}

// RemoveCategory removes a category. Prompts keep their category string.
// An active category selection pointing at it is reset to All.
func (s *Store) RemoveCategory(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.categories, name) {
		return nil
	}
	next := slices.DeleteFunc(slices.Clone(s.categories), func(c string) bool { return c == name })
	if err := s.write(ctx, blob.KeyCategories, next); err != nil {
		return err
	}
	s.categories = next
	if s.selection.Category == name {
		s.selection.Category = types.All
	}
	s.logger.Info("category removed", "name", name)
	return nil
}

// AddModel appends a model unless an identical one exists.
// It reports whether the list changed.
func (s *Store) AddModel(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if slices.Contains(s.models, name) {
		return false, nil
	}
	next := append(slices.Clone(s.models), name)
	if err := s.write(ctx, blob.KeyModels, next); err != nil {
		return false, err
	}
	s.models = next
	return true, nil
}

// RemoveModel removes a model. Prompts keep their model selection, but every
// model quick filter for it is removed and an active model selection
// pointing at it is reset to All.
func (s *Store) RemoveModel(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.models, name) {
		return nil
	}
	nextModels := slices.DeleteFunc(slices.Clone(s.models), func(m string) bool { return m == name })
	nextFilters := slices.DeleteFunc(slices.Clone(s.quickFilters), func(qf types.QuickFilter) bool {
		return qf.Type == types.FilterModel && qf.Value == name
	})

	if err := s.write(ctx, blob.KeyModels, nextModels); err != nil {
		return err
	}
	s.models = nextModels
	if s.selection.Model == name {
		s.selection.Model = types.All
	}

	// Blobs are written independently; a failure here leaves the model
	// removed and its quick filters in place.
	if len(nextFilters) != len(s.quickFilters) {
		if err := s.write(ctx, blob.KeyQuickFilters, nextFilters); err != nil {
			return err
		}
		s.quickFilters = nextFilters
	}
	s.logger.Info("model removed", "name", name)
	return nil
}
