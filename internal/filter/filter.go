// Package filter derives the visible prompt set from a selection and
// implements quick-filter activation.
//
// Everything here is a pure function of its inputs. Visible is run on every
// change to the selection, so it does a plain linear scan.
package filter

import (
	"slices"
	"strings"

	"github.com/jackzampolin/promptvault/internal/types"
)

// Matches reports whether p satisfies all three dimensions of sel.
func Matches(p types.Prompt, sel types.Selection) bool {
	sel = sel.Normalized()
	return matchesQuery(p, strings.ToLower(sel.Query)) &&
		matchesCategory(p, sel.Category) &&
		matchesModel(p, sel.Model)
}

// Visible returns the prompts matching sel, in their original order.
// The returned prompts share no slices with the input. The result is never nil.
func Visible(prompts []types.Prompt, sel types.Selection) []types.Prompt {
	sel = sel.Normalized()
	query := strings.ToLower(sel.Query)

	out := make([]types.Prompt, 0, len(prompts))
	for _, p := range prompts {
		if matchesQuery(p, query) && matchesCategory(p, sel.Category) && matchesModel(p, sel.Model) {
			out = append(out, p.Clone())
		}
	}
	return out
}

func matchesQuery(p types.Prompt, lowered string) bool {
	if lowered == "" {
		return true
	}
	if strings.Contains(strings.ToLower(p.Title), lowered) ||
		strings.Contains(strings.ToLower(p.Content), lowered) {
		return true
	}
	return slices.ContainsFunc(p.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), lowered)
	})
}

func matchesCategory(p types.Prompt, category string) bool {
	return category == types.All || p.Category == category
}

func matchesModel(p types.Prompt, model string) bool {
	return model == types.All || slices.Contains(p.Models, model)
}

// IsActive reports whether qf mirrors the current selection.
// A tag filter is active only when the query equals its value exactly.
func IsActive(qf types.QuickFilter, sel types.Selection) bool {
	sel = sel.Normalized()
	switch qf.Type {
	case types.FilterCategory:
		return sel.Category == qf.Value
	case types.FilterModel:
		return sel.Model == qf.Value
	case types.FilterTag:
		return sel.Query == qf.Value
	default:
		return false
	}
}

// Apply returns the selection after clicking qf.
//
// Applying an active filter clears its dimension. Applying a category or
// model filter also resets the other of the two to All; a tag filter only
// touches the query.
func Apply(qf types.QuickFilter, sel types.Selection) types.Selection {
	sel = sel.Normalized()
	active := IsActive(qf, sel)

	switch qf.Type {
	case types.FilterCategory:
		sel.Model = types.All
		if active {
			sel.Category = types.All
		} else {
			sel.Category = qf.Value
		}
	case types.FilterModel:
		sel.Category = types.All
		if active {
			sel.Model = types.All
		} else {
			sel.Model = qf.Value
		}
	case types.FilterTag:
		if active {
			sel.Query = ""
		} else {
			sel.Query = qf.Value
		}
	}
	return sel
}

// FromSelection synthesizes a quick filter from the selection, preferring
// the category, then the model, then a non-blank query. The returned filter
// has no id. ok is false when nothing is selected.
func FromSelection(sel types.Selection) (qf types.QuickFilter, ok bool) {
	sel = sel.Normalized()
	switch {
	case sel.Category != types.All:
		qf = types.QuickFilter{Type: types.FilterCategory, Value: sel.Category}
	case sel.Model != types.All:
		qf = types.QuickFilter{Type: types.FilterModel, Value: sel.Model}
	case strings.TrimSpace(sel.Query) != "":
		// The stored value keeps the query as typed so the filter is
		// active for the selection it was created from.
		qf = types.QuickFilter{Type: types.FilterTag, Value: sel.Query}
	default:
		return types.QuickFilter{}, false
	}
	qf.Label = qf.Value
	return qf, true
}

// Index returns the position of the filter in filters with the same type
// and value as qf, or -1.
func Index(filters []types.QuickFilter, qf types.QuickFilter) int {
	return slices.IndexFunc(filters, func(existing types.QuickFilter) bool {
		return existing.Type == qf.Type && existing.Value == qf.Value
	})
}
