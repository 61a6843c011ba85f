package migrate

import (
	"slices"
	"time"

	"github.com/scylladb/go-set/strset"

	"github.com/jackzampolin/promptvault/internal/types"
)

// Literal fallbacks used when a list that should supply a default is empty.
const (
	FallbackModel       = "Other"
	FallbackImportModel = "Custom"
	FallbackCategory    = "General"
	FallbackPromptTitle = "Untitled Prompt"
)

var defaultModels = []string{
	"Gemini",
	"ChatGPT",
	"Claude",
	"GPT Codex",
	"Claude Code",
	"MS Copilot",
	"GitHub Copilot",
	"Other",
}

var defaultCategories = []string{
	"Coding", "Writing", "Productivity", "Image Gen", "Data Analysis", "Other",
}

// legacyModelRenames maps names persisted by older versions to their canonical form.
var legacyModelRenames = map[string]string{
	"GPT-4":    "ChatGPT",
	"Claude 3": "Claude",
}

// retiredModels are dropped wherever they appear.
var retiredModels = strset.New("Midjourney")

// requiredModels are forced into the managed model list when the default
// list knows them.
var requiredModels = []string{"MS Copilot", "GitHub Copilot"}

// DefaultModels returns the built-in model list that seeds first run.
func DefaultModels() []string {
	return slices.Clone(defaultModels)
}

// DefaultCategories returns the built-in category list that seeds first run.
func DefaultCategories() []string {
	return slices.Clone(defaultCategories)
}

// DefaultModel is the model assigned to a prompt whose model selection is empty.
func DefaultModel() string {
	return FirstOrFallback(defaultModels, FallbackModel)
}

// FirstOrFallback returns the first element of list, or literal when list is empty.
func FirstOrFallback(list []string, literal string) string {
	if len(list) == 0 {
		return literal
	}
	return list[0]
}

// SeedPrompts returns the sample prompts stored on first run.
func SeedPrompts(now time.Time) []types.Prompt {
	ms := now.UnixMilli()
	return []types.Prompt{
		{
			ID:         "1",
			Title:      "React Component Generator",
			Content:    "Act as a senior React developer. Create a reusable, accessible component using TypeScript and Tailwind CSS. Follow modern best practices, including proper prop typing and responsive design. The component to build is: [COMPONENT_NAME].",
			Tags:       []string{"react", "typescript", "frontend"},
			Models:     []string{"ChatGPT", "GitHub Copilot"},
			Category:   "Coding",
			IsFavorite: true,
			LastUsed:   ms,
		},
		{
			ID:         "2",
			Title:      "Technical Blog Post",
			Content:    "Write a technical blog post about [TOPIC]. The tone should be professional yet accessible. Structure the post with an engaging introduction, clear headings, code snippets where relevant, and a summary conclusion. Optimize for SEO with keywords: [KEYWORDS].",
			Tags:       []string{"writing", "seo", "blog"},
			Models:     []string{"Claude", "Gemini"},
			Category:   "Writing",
			IsFavorite: false,
			LastUsed:   ms - 100000,
		},
		{
			ID:         "3",
			Title:      "Python Data Analysis",
			Content:    "I have a dataset containing [DATA_DESCRIPTION]. Write a Python script using Pandas and Matplotlib to clean the data, perform exploratory data analysis, and visualize the following trends: [TRENDS].",
			Tags:       []string{"python", "data", "pandas"},
			Models:     []string{"GPT Codex", "Claude Code", "MS Copilot"},
			Category:   "Data Analysis",
			IsFavorite: false,
			LastUsed:   ms - 200000,
		},
	}
}

// SeedQuickFilters returns the sample quick filters stored on first run.
func SeedQuickFilters() []types.QuickFilter {
	return []types.QuickFilter{
		{ID: "qf_1", Type: types.FilterCategory, Value: "Coding", Label: "Coding"},
		{ID: "qf_2", Type: types.FilterModel, Value: "Gemini", Label: "Gemini"},
	}
}
