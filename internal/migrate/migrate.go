// Package migrate converts persisted blobs of any earlier shape into the
// current in-memory shape.
//
// Every function here is idempotent: feeding a result back in (after a JSON
// round trip) yields the same result. Missing or malformed blobs never
// produce an error; they are replaced by seed or default data.
package migrate

import (
	"encoding/json"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/scylladb/go-set/strset"

	"github.com/jackzampolin/promptvault/internal/blob"
	"github.com/jackzampolin/promptvault/internal/schema"
	"github.com/jackzampolin/promptvault/internal/types"
)

// Migrator holds the dependencies migration needs: a clock for seed
// timestamps, an id source for repaired records and a logger.
type Migrator struct {
	Now    func() time.Time
	NewID  func() string
	Logger *slog.Logger
}

// New returns a Migrator using the wall clock and random UUIDs.
func New(logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{
		Now:    time.Now,
		NewID:  uuid.NewString,
		Logger: logger,
	}
}

// NormalizeModelName trims a model name, applies the legacy rename table and
// rejects empty or retired names.
func NormalizeModelName(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}
	if renamed, ok := legacyModelRenames[trimmed]; ok {
		trimmed = renamed
	}
	if retiredModels.Has(trimmed) {
		return "", false
	}
	return trimmed, true
}

// NormalizeModelList normalizes every entry of a decoded JSON array,
// dropping non-strings and retired names and de-duplicating by first
// occurrence. The result is never nil.
func NormalizeModelList(values []any) []string {
	names := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if name, ok := NormalizeModelName(s); ok {
			names = append(names, name)
		}
	}
	return Dedupe(names)
}

// Dedupe removes repeated strings, keeping the first occurrence of each.
func Dedupe(values []string) []string {
	seen := strset.NewWithSize(len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if seen.Has(v) {
			continue
		}
		seen.Add(v)
		out = append(out, v)
	}
	return out
}

// PromptModels normalizes a prompt's model selection. Anything that is not
// an array, or normalizes to nothing, becomes a single default model.
func PromptModels(v any) []string {
	values, ok := v.([]any)
	if !ok {
		return []string{DefaultModel()}
	}
	models := NormalizeModelList(values)
	if len(models) == 0 {
		return []string{DefaultModel()}
	}
	return models
}

// Models migrates the persisted model list.
func (m *Migrator) Models(raw []byte) []string {
	items, ok := m.blob(schema.KindModels, blob.KeyModels, raw)
	if !ok {
		return DefaultModels()
	}

	migrated := NormalizeModelList(items)
	for _, required := range requiredModels {
		if slices.Contains(defaultModels, required) {
			migrated = append(migrated, required)
		}
	}
	migrated = Dedupe(migrated)
	if len(migrated) == 0 {
		return DefaultModels()
	}
	return migrated
}

// Categories migrates the persisted category list. Non-string entries are dropped.
func (m *Migrator) Categories(raw []byte) []string {
	items, ok := m.blob(schema.KindCategories, blob.KeyCategories, raw)
	if !ok {
		return DefaultCategories()
	}

	categories := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			m.Logger.Debug("dropping non-string category", "value", item)
			continue
		}
		categories = append(categories, s)
	}
	return categories
}

// Prompts migrates the persisted prompt list.
// Non-object entries are dropped; wrongly typed fields are reset field by
// field; model selections are normalized; missing or repeated ids are
// replaced with fresh ones.
func (m *Migrator) Prompts(raw []byte) []types.Prompt {
	items, ok := m.blob(schema.KindPrompts, blob.KeyPrompts, raw)
	if !ok {
		return SeedPrompts(m.Now())
	}

	seen := strset.NewWithSize(len(items))
	prompts := make([]types.Prompt, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			m.Logger.Debug("dropping non-object prompt", "index", i)
			continue
		}

		p, ok := decodePrompt(obj)
		if !ok {
			m.Logger.Debug("repairing prompt fields", "index", i)
			p = repairPrompt(obj)
		}
		p.Models = PromptModels(obj["models"])

		if p.ID == "" || seen.Has(p.ID) {
			p.ID = m.NewID()
		}
		seen.Add(p.ID)
		prompts = append(prompts, p)
	}
	return prompts
}

// QuickFilters migrates the persisted quick filter list.
// Entries that are not valid quick filters are dropped. Model filters follow
// model renames; a filter whose model was retired is dropped.
func (m *Migrator) QuickFilters(raw []byte) []types.QuickFilter {
	items, ok := m.blob(schema.KindQuickFilters, blob.KeyQuickFilters, raw)
	if !ok {
		return SeedQuickFilters()
	}

	seen := strset.NewWithSize(len(items))
	filters := make([]types.QuickFilter, 0, len(items))
	for i, item := range items {
		if res := schema.CheckValue(schema.KindQuickFilter, item); !res.OK() {
			m.Logger.Debug("dropping invalid quick filter", "index", i, "error", res.Err)
			continue
		}
		obj := item.(map[string]any)
		qf := types.QuickFilter{
			ID:    stringField(obj, "id"),
			Type:  types.FilterType(stringField(obj, "type")),
			Value: stringField(obj, "value"),
			Label: stringField(obj, "label"),
		}

		if qf.Type == types.FilterModel {
			renamed, ok := NormalizeModelName(qf.Value)
			if !ok {
				m.Logger.Debug("dropping quick filter for retired model", "value", qf.Value)
				continue
			}
			if qf.Label == qf.Value {
				qf.Label = renamed
			}
			qf.Value = renamed
		}
		if qf.Label == "" {
			qf.Label = qf.Value
		}

		if qf.ID == "" || seen.Has(qf.ID) {
			qf.ID = m.NewID()
		}
		seen.Add(qf.ID)
		filters = append(filters, qf)
	}
	return filters
}

// blob checks a raw blob against its schema and returns its elements.
// It logs and reports false when the blob must be replaced by seed data.
func (m *Migrator) blob(kind schema.Kind, key string, raw []byte) ([]any, bool) {
	res := schema.Check(kind, raw)
	items, ok := res.Array()
	if !ok {
		m.Logger.Info("using seed data", "blob", key, "reason", res.Err)
		return nil, false
	}
	return items, true
}

// decodePrompt takes the typed path for objects that already match the
// prompt schema.
func decodePrompt(obj map[string]any) (types.Prompt, bool) {
	if !schema.CheckValue(schema.KindPrompt, obj).OK() {
		return types.Prompt{}, false
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return types.Prompt{}, false
	}
	var p types.Prompt
	if err := json.Unmarshal(data, &p); err != nil {
		return types.Prompt{}, false
	}
	return p, true
}

// repairPrompt reads each field leniently, resetting wrongly typed values.
func repairPrompt(obj map[string]any) types.Prompt {
	return types.Prompt{
		ID:         stringField(obj, "id"),
		Title:      stringField(obj, "title"),
		Content:    stringField(obj, "content"),
		Tags:       StringList(obj["tags"]),
		Category:   stringField(obj, "category"),
		IsFavorite: boolField(obj, "isFavorite"),
		LastUsed:   lastUsed(obj["lastUsed"]),
	}
}

// StringList keeps the string entries of a decoded JSON array.
// Anything that is not an array yields an empty list. The result is never nil.
func StringList(v any) []string {
	values, _ := v.([]any)
	out := make([]string, 0, len(values))
	for _, item := range values {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

func boolField(obj map[string]any, key string) bool {
	b, _ := obj[key].(bool)
	return b
}

func lastUsed(v any) int64 {
	ms, _ := Millis(v)
	return ms
}

// Millis reads a decoded JSON number as integer milliseconds, truncating
// fractions. It reports false for anything that is not a finite number in
// the int64 range.
func Millis(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return floatMillis(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return floatMillis(f)
		}
	}
	return 0, false
}

func floatMillis(f float64) (int64, bool) {
	if math.IsNaN(f) || f < -(1<<63) || f >= 1<<63 {
		return 0, false
	}
	return int64(f), true
}
