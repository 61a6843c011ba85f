package vault

import "errors"

// ErrNotFound is returned when a prompt or quick filter id is unknown.
var ErrNotFound = errors.New("not found")

// ErrInvalidPrompt is returned when a prompt has no title or no models.
var ErrInvalidPrompt = errors.New("invalid prompt")

// ErrNoSelection is returned when a quick filter is requested but nothing is selected.
var ErrNoSelection = errors.New("select a category, model, or type a search term to create a quick filter")

// ErrEmptyExport is returned when an export selects no prompts.
var ErrEmptyExport = errors.New("select at least one prompt to export")

// ErrImportNotArray is returned when import text is valid JSON but not an array.
var ErrImportNotArray = errors.New("import expects a JSON array")

// ErrImportFailed wraps JSON parse errors and rejected elements during import.
var ErrImportFailed = errors.New("import failed")
