package vault

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jackzampolin/promptvault/internal/blob"
	"github.com/jackzampolin/promptvault/internal/types"
)

// Prompts returns every prompt, most recent first.
func (s *Store) Prompts() []types.Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.ClonePrompts(s.prompts)
}

// Prompt returns the prompt with the given id.
func (s *Store) Prompt(id string) (types.Prompt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return types.Prompt{}, fmt.Errorf("prompt %s: %w", id, ErrNotFound)
	}
	return s.prompts[i].Clone(), nil
}

// CreatePrompt stores a new prompt ahead of all others. It gets a fresh id,
// is not a favorite, and is stamped with the current time.
func (s *Store) CreatePrompt(ctx context.Context, in types.PromptInput) (types.Prompt, error) {
	if err := validateInput(in); err != nil {
		return types.Prompt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := types.Prompt{
		ID:         s.newID(),
		Title:      in.Title,
		Content:    in.Content,
		Tags:       in.TagValues(),
		Models:     cleanModels(in.Models),
		Category:   in.Category,
		IsFavorite: false,
		LastUsed:   s.now().UnixMilli(),
	}

	next := make([]types.Prompt, 0, len(s.prompts)+1)
	next = append(next, p)
	next = append(next, s.prompts...)
	if err := s.setPrompts(ctx, next); err != nil {
		return types.Prompt{}, err
	}
	s.logger.Info("prompt created", "id", p.ID, "title", p.Title)
	return p.Clone(), nil
}

// UpdatePrompt replaces the editable fields of an existing prompt. The id,
// favorite flag and last-used time are kept.
func (s *Store) UpdatePrompt(ctx context.Context, id string, in types.PromptInput) (types.Prompt, error) {
	if err := validateInput(in); err != nil {
		return types.Prompt{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.Prompt{}, fmt.Errorf("prompt %s: %w", id, ErrNotFound)
	}

	next := types.ClonePrompts(s.prompts)
	p := &next[i]
	p.Title = in.Title
	p.Content = in.Content
	p.Tags = in.TagValues()
	p.Models = cleanModels(in.Models)
	p.Category = in.Category

	updated := p.Clone()
	if err := s.setPrompts(ctx, next); err != nil {
		return types.Prompt{}, err
	}
	return updated, nil
}

// DeletePrompt removes a prompt by id.
func (s *Store) DeletePrompt(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("prompt %s: %w", id, ErrNotFound)
	}
	next := slices.Delete(slices.Clone(s.prompts), i, i+1)
	if err := s.setPrompts(ctx, next); err != nil {
		return err
	}
	s.logger.Info("prompt deleted", "id", id)
	return nil
}

// ToggleFavorite flips the favorite flag of a prompt. The last-used time is
// not touched.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (types.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return types.Prompt{}, fmt.Errorf("prompt %s: %w", id, ErrNotFound)
	}
	next := types.ClonePrompts(s.prompts)
	next[i].IsFavorite = !next[i].IsFavorite

	toggled := next[i].Clone()
	if err := s.setPrompts(ctx, next); err != nil {
		return types.Prompt{}, err
	}
	return toggled, nil
}

// setPrompts persists next and swaps it in. Callers hold s.mu.
func (s *Store) setPrompts(ctx context.Context, next []types.Prompt) error {
	if err := s.write(ctx, blob.KeyPrompts, next); err != nil {
		return err
	}
	s.prompts = next
	return nil
}

// indexOf returns the position of the prompt with id, or -1. Callers hold s.mu.
func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.prompts, func(p types.Prompt) bool { return p.ID == id })
}

func validateInput(in types.PromptInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidPrompt)
	}
	if len(cleanModels(in.Models)) == 0 {
		return fmt.Errorf("%w: select at least one model", ErrInvalidPrompt)
	}
	return nil
}

// cleanModels drops blank and repeated model names, keeping order.
func cleanModels(models []string) []string {
	out := make([]string, 0, len(models))
	for _, m := range models {
		if strings.TrimSpace(m) == "" || slices.Contains(out, m) {
			continue
		}
		out = append(out, m)
	}
	return out
}
