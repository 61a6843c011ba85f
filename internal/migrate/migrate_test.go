package migrate

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/promptvault/internal/types"
)

var fixedNow = time.UnixMilli(1_700_000_000_000)

// testMigrator returns a Migrator with a fixed clock and sequential ids.
func testMigrator() *Migrator {
	n := 0
	return &Migrator{
		Now: func() time.Time { return fixedNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("gen-%d", n)
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func TestNormalizeModelName(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Gemini", "Gemini", true},
		{"  Claude Code  ", "Claude Code", true},
		{"GPT-4", "ChatGPT", true},
		{"Claude 3", "Claude", true},
		{"Midjourney", "", false},
		{"   ", "", false},
		{"", "", false},
		{"gpt-4", "gpt-4", true}, // renames are case-sensitive
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := NormalizeModelName(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NormalizeModelName(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFirstOrFallback(t *testing.T) {
	if got := FirstOrFallback(nil, "General"); got != "General" {
		t.Errorf("FirstOrFallback(nil) = %q", got)
	}
	if got := FirstOrFallback([]string{"Coding", "Writing"}, "General"); got != "Coding" {
		t.Errorf("FirstOrFallback() = %q", got)
	}
	if DefaultModel() != "Gemini" {
		t.Errorf("DefaultModel() = %q, want Gemini", DefaultModel())
	}
}

func TestModels(t *testing.T) {
	t.Run("renames, drops retired, dedupes in first-seen order", func(t *testing.T) {
		m := testMigrator()
		raw := []byte(`["Claude","GPT-4","Midjourney","ChatGPT","Claude 3",42,"  Gemini "]`)
		got := m.Models(raw)
		want := []string{"Claude", "ChatGPT", "Gemini", "MS Copilot", "GitHub Copilot"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Models() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("required models present", func(t *testing.T) {
		m := testMigrator()
		got := m.Models([]byte(`["Gemini"]`))
		for _, required := range requiredModels {
			if slices.Contains(defaultModels, required) && !slices.Contains(got, required) {
				t.Errorf("Models() = %v, missing required %q", got, required)
			}
		}
	})

	t.Run("only retired entries still yields required models", func(t *testing.T) {
		m := testMigrator()
		got := m.Models([]byte(`["Midjourney"]`))
		want := []string{"MS Copilot", "GitHub Copilot"}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Models() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("absent or malformed uses defaults", func(t *testing.T) {
		m := testMigrator()
		for _, raw := range [][]byte{nil, []byte(`{"a":1}`), []byte(`not json`), []byte(`null`)} {
			if diff := cmp.Diff(DefaultModels(), m.Models(raw)); diff != "" {
				t.Errorf("Models(%q) mismatch (-want +got):\n%s", raw, diff)
			}
		}
	})
}

func TestCategories(t *testing.T) {
	m := testMigrator()

	got := m.Categories([]byte(`["Coding",7,"Writing"]`))
	if diff := cmp.Diff([]string{"Coding", "Writing"}, got); diff != "" {
		t.Errorf("Categories() mismatch (-want +got):\n%s", diff)
	}

	if got := m.Categories([]byte(`[]`)); len(got) != 0 || got == nil {
		t.Errorf("Categories([]) = %#v, want empty non-nil list", got)
	}

	if diff := cmp.Diff(DefaultCategories(), m.Categories([]byte(`"Coding"`))); diff != "" {
		t.Errorf("Categories(string) mismatch (-want +got):\n%s", diff)
	}
}

func TestPrompts(t *testing.T) {
	t.Run("absent uses seed", func(t *testing.T) {
		m := testMigrator()
		got := m.Prompts(nil)
		if len(got) != 3 {
			t.Fatalf("Prompts(nil) returned %d prompts, want 3", len(got))
		}
		if got[0].LastUsed != fixedNow.UnixMilli() || got[2].LastUsed != fixedNow.UnixMilli()-200000 {
			t.Errorf("seed timestamps not relative to now: %d, %d", got[0].LastUsed, got[2].LastUsed)
		}
	})

	t.Run("normalizes model selection", func(t *testing.T) {
		m := testMigrator()
		raw := []byte(`[
			{"id":"a","title":"A","content":"","tags":[],"models":["GPT-4","Midjourney","ChatGPT"],"category":"Coding","isFavorite":false,"lastUsed":5},
			{"id":"b","title":"B","content":"","tags":[],"models":["Midjourney"],"category":"Coding","isFavorite":true,"lastUsed":6},
			{"id":"c","title":"C","models":"Gemini"}
		]`)
		got := m.Prompts(raw)
		if len(got) != 3 {
			t.Fatalf("got %d prompts, want 3", len(got))
		}
		if diff := cmp.Diff([]string{"ChatGPT"}, got[0].Models); diff != "" {
			t.Errorf("prompt a models (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"Gemini"}, got[1].Models); diff != "" {
			t.Errorf("prompt b models (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"Gemini"}, got[2].Models); diff != "" {
			t.Errorf("prompt c models (-want +got):\n%s", diff)
		}
		if !got[1].IsFavorite || got[1].LastUsed != 6 {
			t.Errorf("prompt b lost fields: %+v", got[1])
		}
	})

	t.Run("repairs wrongly typed fields", func(t *testing.T) {
		m := testMigrator()
		raw := []byte(`[{"id":"x","title":"T","content":5,"tags":"a,b","models":["Claude"],"category":"Writing","isFavorite":"yes","lastUsed":12.7}]`)
		got := m.Prompts(raw)
		want := []types.Prompt{{
			ID:       "x",
			Title:    "T",
			Content:  "",
			Tags:     []string{},
			Models:   []string{"Claude"},
			Category: "Writing",
			LastUsed: 12,
		}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Prompts() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("drops non-objects and fixes ids", func(t *testing.T) {
		m := testMigrator()
		raw := []byte(`[null, 3, {"title":"no id"}, {"id":"dup","title":"one"}, {"id":"dup","title":"two"}]`)
		got := m.Prompts(raw)
		if len(got) != 3 {
			t.Fatalf("got %d prompts, want 3", len(got))
		}
		ids := []string{got[0].ID, got[1].ID, got[2].ID}
		if diff := cmp.Diff([]string{"gen-1", "dup", "gen-2"}, ids); diff != "" {
			t.Errorf("ids (-want +got):\n%s", diff)
		}
	})

	t.Run("empty array stays empty", func(t *testing.T) {
		m := testMigrator()
		if got := m.Prompts([]byte(`[]`)); len(got) != 0 {
			t.Errorf("Prompts([]) = %v, want empty", got)
		}
	})
}

func TestQuickFilters(t *testing.T) {
	t.Run("renames and drops model filters", func(t *testing.T) {
		m := testMigrator()
		raw := []byte(`[
			{"id":"1","type":"category","value":"Coding","label":"Code stuff"},
			{"id":"2","type":"model","value":"GPT-4","label":"GPT-4"},
			{"id":"3","type":"model","value":"Claude 3","label":"My Claude"},
			{"id":"4","type":"model","value":"Midjourney","label":"Midjourney"},
			{"id":"5","type":"tag","value":"react"},
			{"id":"6","type":"color","value":"red"},
			"junk"
		]`)
		got := m.QuickFilters(raw)
		want := []types.QuickFilter{
			{ID: "1", Type: types.FilterCategory, Value: "Coding", Label: "Code stuff"},
			{ID: "2", Type: types.FilterModel, Value: "ChatGPT", Label: "ChatGPT"},
			{ID: "3", Type: types.FilterModel, Value: "Claude", Label: "My Claude"},
			{ID: "5", Type: types.FilterTag, Value: "react", Label: "react"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("QuickFilters() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("absent uses seed", func(t *testing.T) {
		m := testMigrator()
		if diff := cmp.Diff(SeedQuickFilters(), m.QuickFilters(nil)); diff != "" {
			t.Errorf("QuickFilters(nil) mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestIdempotent runs every migration twice, feeding the persisted form of
// the first result into the second run.
func TestIdempotent(t *testing.T) {
	inputs := map[string][]byte{
		"absent":    nil,
		"malformed": []byte(`{{`),
		"legacy": []byte(`[
			"GPT-4", "Midjourney", "Claude 3", "Claude", " Gemini ", 9,
			{"title":"x","models":["GPT-4"],"tags":"bad"},
			{"id":"q","type":"model","value":"GPT-4","label":"GPT-4"},
			{"id":"q","type":"tag","value":"t"}
		]`),
		"empty": []byte(`[]`),
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			m := testMigrator()

			models := m.Models(raw)
			if diff := cmp.Diff(models, m.Models(mustJSON(t, models))); diff != "" {
				t.Errorf("Models not idempotent (-first +second):\n%s", diff)
			}

			categories := m.Categories(raw)
			if diff := cmp.Diff(categories, m.Categories(mustJSON(t, categories))); diff != "" {
				t.Errorf("Categories not idempotent (-first +second):\n%s", diff)
			}

			prompts := m.Prompts(raw)
			if diff := cmp.Diff(prompts, m.Prompts(mustJSON(t, prompts))); diff != "" {
				t.Errorf("Prompts not idempotent (-first +second):\n%s", diff)
			}

			filters := m.QuickFilters(raw)
			if diff := cmp.Diff(filters, m.QuickFilters(mustJSON(t, filters))); diff != "" {
				t.Errorf("QuickFilters not idempotent (-first +second):\n%s", diff)
			}
		})
	}
}

func TestMillis(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   int64
		wantOK bool
	}{
		{"integer float", float64(42), 42, true},
		{"fraction truncates", 12.7, 12, true},
		{"negative", float64(-5), -5, true},
		{"json integer", json.Number("1700000000000"), 1_700_000_000_000, true},
		{"json float", json.Number("3.9"), 3, true},
		{"above int64", 1e30, 0, false},
		{"below int64", -1e30, 0, false},
		{"json above int64", json.Number("1e30"), 0, false},
		{"2^63", float64(1 << 63), 0, false},
		{"string", "42", 0, false},
		{"missing", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Millis(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Millis(%v) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
