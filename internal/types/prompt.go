// Package types provides shared types used across multiple packages.
// This package has no dependencies on other promptvault packages to avoid import cycles.
package types

import (
	"slices"
	"strings"
)

// Prompt is a single user-authored prompt in the library.
// Category and Models are loose string references: they need not exist in the
// managed category and model lists.
type Prompt struct {
	ID         string   `json:"id" yaml:"id"`
	Title      string   `json:"title" yaml:"title"`
	Content    string   `json:"content" yaml:"content"`
	Tags       []string `json:"tags" yaml:"tags"`
	Models     []string `json:"models" yaml:"models"`
	Category   string   `json:"category" yaml:"category"`
	IsFavorite bool     `json:"isFavorite" yaml:"isFavorite"`
	LastUsed   int64    `json:"lastUsed" yaml:"lastUsed"` // Unix milliseconds
}

// Clone returns a deep copy of p so callers never share slices with the store.
func (p Prompt) Clone() Prompt {
	p.Tags = cloneStrings(p.Tags)
	p.Models = cloneStrings(p.Models)
	return p
}

// PromptInput is the editable part of a prompt as submitted by a form or CLI.
// Tags is the raw comma-separated tag input. TagList, when non-nil, replaces
// it with tags taken as they are, so a tag may contain a comma.
type PromptInput struct {
	Title    string   `json:"title" yaml:"title"`
	Content  string   `json:"content" yaml:"content"`
	Tags     string   `json:"tags" yaml:"tags"`
	TagList  []string `json:"tagList,omitempty" yaml:"tagList,omitempty"`
	Models   []string `json:"models" yaml:"models"`
	Category string   `json:"category" yaml:"category"`
}

// TagValues returns the tags of in. The result is never nil.
func (in PromptInput) TagValues() []string {
	if in.TagList == nil {
		return SplitTags(in.Tags)
	}
	tags := make([]string, 0, len(in.TagList))
	for _, t := range in.TagList {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// SplitTags splits comma-separated tag input into a trimmed list without empty entries.
// The result is never nil.
func SplitTags(input string) []string {
	tags := make([]string, 0)
	for _, t := range strings.Split(input, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ClonePrompts deep-copies a prompt list. The result is never nil.
func ClonePrompts(prompts []Prompt) []Prompt {
	out := make([]Prompt, len(prompts))
	for i, p := range prompts {
		out[i] = p.Clone()
	}
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}
