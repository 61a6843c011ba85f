package vault

import (
	"github.com/jackzampolin/promptvault/internal/filter"
	"github.com/jackzampolin/promptvault/internal/types"
)

// Selection returns the active filter selection.
func (s *Store) Selection() types.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// SetSelection replaces the active filter selection. Empty category or model
// means All.
func (s *Store) SetSelection(sel types.Selection) types.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel.Normalized()
	return s.selection
}

// Visible returns the prompts matching the active selection.
func (s *Store) Visible() []types.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.Visible(s.prompts, s.selection)
}

// Search returns the prompts matching sel without changing the active selection.
func (s *Store) Search(sel types.Selection) []types.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filter.Visible(s.prompts, sel)
}
