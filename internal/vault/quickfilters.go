package vault

import (
	"context"
	"fmt"
	"slices"

	"github.com/jackzampolin/promptvault/internal/blob"
	"github.com/jackzampolin/promptvault/internal/filter"
	"github.com/jackzampolin/promptvault/internal/types"
)

// QuickFilterView is a quick filter with its active state for the current
// selection.
type QuickFilterView struct {
	types.QuickFilter `yaml:",inline"`
	Active            bool `json:"active" yaml:"active"`
}

// QuickFilters returns the saved quick filters in insertion order.
func (s *Store) QuickFilters() []types.QuickFilter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.quickFilters)
}

// QuickFilterViews returns the saved quick filters marked active or not.
func (s *Store) QuickFilterViews() []QuickFilterView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]QuickFilterView, 0, len(s.quickFilters))
	for _, qf := range s.quickFilters {
		views = append(views, QuickFilterView{QuickFilter: qf, Active: filter.IsActive(qf, s.selection)})
	}
	return views
}

// AddQuickFilterFromSelection saves the current selection as a quick filter.
// If a filter with the same type and value exists it is returned with
// created false and nothing is stored.
func (s *Store) AddQuickFilterFromSelection(ctx context.Context) (qf types.QuickFilter, created bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qf, ok := filter.FromSelection(s.selection)
	if !ok {
		return types.QuickFilter{}, false, ErrNoSelection
	}
	if i := filter.Index(s.quickFilters, qf); i >= 0 {
		return s.quickFilters[i], false, nil
	}

	qf.ID = s.newID()
	next := append(slices.Clone(s.quickFilters), qf)
	if err := s.write(ctx, blob.KeyQuickFilters, next); err != nil {
		return types.QuickFilter{}, false, err
	}
	s.quickFilters = next
	s.logger.Info("quick filter created", "id", qf.ID, "type", qf.Type, "value", qf.Value)
	return qf, true, nil
}

// RemoveQuickFilter deletes a quick filter by id.
func (s *Store) RemoveQuickFilter(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.quickFilters, func(qf types.QuickFilter) bool { return qf.ID == id })
	if i < 0 {
		return fmt.Errorf("quick filter %s: %w", id, ErrNotFound)
	}
	next := slices.Delete(slices.Clone(s.quickFilters), i, i+1)
	if err := s.write(ctx, blob.KeyQuickFilters, next); err != nil {
		return err
	}
	s.quickFilters = next
	return nil
}

// ApplyQuickFilter toggles a quick filter onto the selection and returns the
// new selection.
func (s *Store) ApplyQuickFilter(id string) (types.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.quickFilters, func(qf types.QuickFilter) bool { return qf.ID == id })
	if i < 0 {
		return types.Selection{}, fmt.Errorf("quick filter %s: %w", id, ErrNotFound)
	}
	s.selection = filter.Apply(s.quickFilters[i], s.selection)
	return s.selection, nil
}
