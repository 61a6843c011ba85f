package types

// All is the selection value meaning "no filter on this dimension".
const All = "All"

// FilterType is the dimension a quick filter applies to.
type FilterType string

const (
	// FilterCategory matches Prompt.Category.
	FilterCategory FilterType = "category"
	// FilterModel matches membership in Prompt.Models.
	FilterModel FilterType = "model"
	// FilterTag sets the free-text query.
	FilterTag FilterType = "tag"
)

// Valid reports whether t is one of the known filter types.
func (t FilterType) Valid() bool {
	switch t {
	case FilterCategory, FilterModel, FilterTag:
		return true
	default:
		return false
	}
}

// QuickFilter is a saved shortcut for one filter dimension and value.
type QuickFilter struct {
	ID    string     `json:"id" yaml:"id"`
	Type  FilterType `json:"type" yaml:"type"`
	Value string     `json:"value" yaml:"value"`
	Label string     `json:"label" yaml:"label"`
}

// Selection is the active filter state: a free-text query plus the selected
// category and model. Category and Model hold All when unfiltered.
type Selection struct {
	Query    string `json:"query" yaml:"query"`
	Category string `json:"category" yaml:"category"`
	Model    string `json:"model" yaml:"model"`
}

// DefaultSelection returns a selection with no active filters.
func DefaultSelection() Selection {
	return Selection{Category: All, Model: All}
}

// Normalized returns s with empty category or model replaced by All.
func (s Selection) Normalized() Selection {
	if s.Category == "" {
		s.Category = All
	}
	if s.Model == "" {
		s.Model = All
	}
	return s
}
