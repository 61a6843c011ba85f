package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/jackzampolin/promptvault/internal/blob"
	"github.com/jackzampolin/promptvault/internal/migrate"
	"github.com/jackzampolin/promptvault/internal/types"
)

var testNow = time.UnixMilli(1_700_000_000_000)

// flakyStorage wraps a memory backend and fails writes while fail is set.
type flakyStorage struct {
	*blob.MemoryStorage
	fail bool
}

func (f *flakyStorage) Write(ctx context.Context, key string, data []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryStorage.Write(ctx, key, data)
}

func openStore(t *testing.T, storage blob.Storage) *Store {
	t.Helper()
	n := 0
	s, err := Open(t.Context(), Config{
		Storage: storage,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:     func() time.Time { return testNow },
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

// seeded returns storage holding the given blobs as JSON.
func seeded(t *testing.T, blobs map[string]any) *blob.MemoryStorage {
	t.Helper()
	m := blob.NewMemoryStorage()
	for key, v := range blobs {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatal(err)
		}
		if err := m.Write(t.Context(), key, data); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func readBlob(t *testing.T, s blob.Storage, key string, v any) {
	t.Helper()
	data, found, err := s.Read(t.Context(), key)
	if err != nil || !found {
		t.Fatalf("Read(%s) = found %v, err %v", key, found, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode %s: %v", key, err)
	}
}

func TestOpen_SeedsAndPersists(t *testing.T) {
	storage := blob.NewMemoryStorage()
	s := openStore(t, storage)

	if got := len(s.Prompts()); got != 3 {
		t.Errorf("seed prompts = %d, want 3", got)
	}
	if diff := cmp.Diff(migrate.DefaultCategories(), s.Categories()); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(migrate.DefaultModels(), s.Models()); diff != "" {
		t.Errorf("models (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(migrate.SeedQuickFilters(), s.QuickFilters()); diff != "" {
		t.Errorf("quick filters (-want +got):\n%s", diff)
	}

	for _, key := range []string{blob.KeyPrompts, blob.KeyCategories, blob.KeyModels, blob.KeyQuickFilters} {
		if _, found, _ := storage.Read(t.Context(), key); !found {
			t.Errorf("blob %s not persisted on open", key)
		}
	}
}

func TestOpen_CorruptBlobUsesSeed(t *testing.T) {
	storage := blob.NewMemoryStorage()
	storage.Write(t.Context(), blob.KeyPrompts, []byte(`{not json`))
	storage.Write(t.Context(), blob.KeyModels, []byte(`{"a":1}`))
	storage.Write(t.Context(), blob.KeyCategories, []byte(`["Mine"]`))

	s := openStore(t, storage)
	if got := len(s.Prompts()); got != 3 {
		t.Errorf("prompts = %d, want seed of 3", got)
	}
	if diff := cmp.Diff(migrate.DefaultModels(), s.Models()); diff != "" {
		t.Errorf("models (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Mine"}, s.Categories()); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}

	var persisted []types.Prompt
	readBlob(t, storage, blob.KeyPrompts, &persisted)
	if len(persisted) != 3 {
		t.Errorf("corrupt blob not replaced on open, got %d prompts", len(persisted))
	}
}

func TestOpen_RequiresStorage(t *testing.T) {
	if _, err := Open(t.Context(), Config{}); err == nil {
		t.Error("Open() without storage should fail")
	}
}

func TestCreatePrompt(t *testing.T) {
	storage := seeded(t, map[string]any{blob.KeyPrompts: []any{}})
	s := openStore(t, storage)

	first, err := s.CreatePrompt(t.Context(), types.PromptInput{
		Title:    "First",
		Tags:     " a, ,b ,",
		Models:   []string{"Gemini", "", "Gemini"},
		Category: "Coding",
	})
	if err != nil {
		t.Fatalf("CreatePrompt() error = %v", err)
	}
	want := types.Prompt{
		ID:       "id-1",
		Title:    "First",
		Content:  "",
		Tags:     []string{"a", "b"},
		Models:   []string{"Gemini"},
		Category: "Coding",
		LastUsed: testNow.UnixMilli(),
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Errorf("CreatePrompt() mismatch (-want +got):\n%s", diff)
	}

	second, _ := s.CreatePrompt(t.Context(), types.PromptInput{Title: "Second", Models: []string{"Claude"}})
	got := s.Prompts()
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("new prompts should be prepended, got order %s, %s", got[0].ID, got[1].ID)
	}

	var persisted []types.Prompt
	readBlob(t, storage, blob.KeyPrompts, &persisted)
	if diff := cmp.Diff(got, persisted); diff != "" {
		t.Errorf("persisted prompts (-memory +blob):\n%s", diff)
	}
}

func TestCreatePrompt_Invalid(t *testing.T) {
	s := openStore(t, blob.NewMemoryStorage())
	tests := []types.PromptInput{
		{Title: "  ", Models: []string{"Gemini"}},
		{Title: "T"},
		{Title: "T", Models: []string{" "}},
	}
	for _, in := range tests {
		if _, err := s.CreatePrompt(t.Context(), in); !errors.Is(err, ErrInvalidPrompt) {
			t.Errorf("CreatePrompt(%+v) error = %v, want ErrInvalidPrompt", in, err)
		}
	}
	if len(s.Prompts()) != 3 {
		t.Error("invalid create changed the store")
	}
}

func TestUpdatePrompt(t *testing.T) {
	s := openStore(t, blob.NewMemoryStorage())
	before, _ := s.Prompt("1")

	got, err := s.UpdatePrompt(t.Context(), "1", types.PromptInput{
		Title:    "Renamed",
		Content:  "body",
		Tags:     "x,y",
		Models:   []string{"Claude"},
		Category: "Writing",
	})
	if err != nil {
		t.Fatalf("UpdatePrompt() error = %v", err)
	}
	want := types.Prompt{
		ID:         "1",
		Title:      "Renamed",
		Content:    "body",
		Tags:       []string{"x", "y"},
		Models:     []string{"Claude"},
		Category:   "Writing",
		IsFavorite: before.IsFavorite,
		LastUsed:   before.LastUsed,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("UpdatePrompt() mismatch (-want +got):\n%s", diff)
	}

	_, err = s.UpdatePrompt(t.Context(), "missing", types.PromptInput{Title: "T", Models: []string{"Gemini"}})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePrompt(missing) error = %v, want ErrNotFound", err)
	}
}

func TestUpdatePrompt_TagList(t *testing.T) {
	s := openStore(t, blob.NewMemoryStorage())

	got, err := s.UpdatePrompt(t.Context(), "1", types.PromptInput{
		Title:   "T",
		Tags:    "ignored, input",
		TagList: []string{"a,b", "", "c"},
		Models:  []string{"Claude"},
	})
	if err != nil {
		t.Fatalf("UpdatePrompt() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a,b", "c"}, got.Tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteAndFavorite(t *testing.T) {
	s := openStore(t, blob.NewMemoryStorage())

	before, _ := s.Prompt("2")
	toggled, err := s.ToggleFavorite(t.Context(), "2")
	if err != nil {
		t.Fatalf("ToggleFavorite() error = %v", err)
	}
	if toggled.IsFavorite == before.IsFavorite || toggled.LastUsed != before.LastUsed {
		t.Errorf("ToggleFavorite() = %+v, before %+v", toggled, before)
	}

	if err := s.DeletePrompt(t.Context(), "2"); err != nil {
		t.Fatalf("DeletePrompt() error = %v", err)
	}
	if _, err := s.Prompt("2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Prompt() after delete error = %v", err)
	}
	if err := s.DeletePrompt(t.Context(), "2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeletePrompt() error = %v, want ErrNotFound", err)
	}
	if _, err := s.ToggleFavorite(t.Context(), "2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ToggleFavorite(missing) error = %v, want ErrNotFound", err)
	}
}

func TestFailedWriteLeavesStateUnchanged(t *testing.T) {
	storage := &flakyStorage{MemoryStorage: blob.NewMemoryStorage()}
	s := openStore(t, storage)
	storage.fail = true

	prompts, categories, models, filters := s.Prompts(), s.Categories(), s.Models(), s.QuickFilters()

	if _, err := s.CreatePrompt(t.Context(), types.PromptInput{Title: "T", Models: []string{"Gemini"}}); err == nil {
		t.Error("CreatePrompt() should fail")
	}
	if _, err := s.ToggleFavorite(t.Context(), "1"); err == nil {
		t.Error("ToggleFavorite() should fail")
	}
	if err := s.DeletePrompt(t.Context(), "1"); err == nil {
		t.Error("DeletePrompt() should fail")
	}
	if _, err := s.AddCategory(t.Context(), "New"); err == nil {
		t.Error("AddCategory() should fail")
	}
	if err := s.RemoveModel(t.Context(), "Gemini"); err == nil {
		t.Error("RemoveModel() should fail")
	}
	if _, err := s.ImportJSON(t.Context(), `[{"title":"x"}]`); err == nil {
		t.Error("ImportJSON() should fail")
	}

	if diff := cmp.Diff(prompts, s.Prompts()); diff != "" {
		t.Errorf("prompts changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(categories, s.Categories()); diff != "" {
		t.Errorf("categories changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(models, s.Models()); diff != "" {
		t.Errorf("models changed (-before +after):\n%s", diff)
	}
	if diff := cmp.Diff(filters, s.QuickFilters()); diff != "" {
		t.Errorf("quick filters changed (-before +after):\n%s", diff)
	}
}

func TestImport_Defaults(t *testing.T) {
	storage := seeded(t, map[string]any{
		blob.KeyPrompts:    []any{},
		blob.KeyCategories: []string{"Coding", "Writing"},
	})
	s := openStore(t, storage)

	got, err := s.ImportJSON(t.Context(), `[{"title":"T"}]`)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	want := []types.Prompt{{
		ID:       "id-1",
		Title:    "T",
		Content:  "",
		Tags:     []string{},
		Models:   []string{s.Models()[0]},
		Category: "Coding",
		LastUsed: testNow.UnixMilli(),
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ImportJSON() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, s.Prompts()); diff != "" {
		t.Errorf("stored prompts mismatch (-want +got):\n%s", diff)
	}
}

func TestImport_LiteralFallbacks(t *testing.T) {
	storage := seeded(t, map[string]any{
		blob.KeyPrompts:    []any{},
		blob.KeyCategories: []string{},
	})
	s := openStore(t, storage)
	// Models always carries the required entries, so only the category
	// fallback literal is reachable through Open.
	got, err := s.ImportJSON(t.Context(), `[{"title":"","isFavorite":true,"lastUsed":42,"tags":["a",1]}]`)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	p := got[0]
	if p.Title != migrate.FallbackPromptTitle || p.Category != migrate.FallbackCategory {
		t.Errorf("fallbacks not applied: %+v", p)
	}
	if !p.IsFavorite || p.LastUsed != 42 {
		t.Errorf("supplied fields lost: %+v", p)
	}
	if diff := cmp.Diff([]string{"a"}, p.Tags); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}
}

func TestImport_NormalizesModels(t *testing.T) {
	s := openStore(t, blob.NewMemoryStorage())
	fallback := s.Models()[0]

	got, err := s.ImportJSON(t.Context(), `[
		{"title":"A","models":[""]},
		{"title":"B","models":["Midjourney","GPT-4","GPT-4"," Claude 3 "]},
		{"title":"C","models":"Claude","lastUsed":1e30}
	]`)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}

	var models [][]string
	for _, p := range got {
		models = append(models, p.Models)
	}
	want := [][]string{{fallback}, {"ChatGPT", "Claude"}, {fallback}}
	if diff := cmp.Diff(want, models); diff != "" {
		t.Errorf("imported models mismatch (-want +got):\n%s", diff)
	}
	if got[2].LastUsed != testNow.UnixMilli() {
		t.Errorf("out-of-range lastUsed = %d, want now", got[2].LastUsed)
	}

	// A model quick filter matches the imported prompt in the same session.
	sel := s.SetSelection(types.Selection{Model: "ChatGPT"})
	if vis := s.Search(sel); !slices.ContainsFunc(vis, func(p types.Prompt) bool { return p.Title == "B" }) {
		t.Error("prompt imported with a legacy model name should match its canonical name")
	}
}

func TestImport_IDCollision(t *testing.T) {
	s := openStore(t, blob.NewMemoryStorage())
	original, _ := s.Prompt("1")

	got, err := s.ImportJSON(t.Context(), `[
		{"id":"1","title":"Clash"},
		{"id":"fresh","title":"A"},
		{"id":"fresh","title":"B"}
	]`)
	if err != nil {
		t.Fatalf("ImportJSON() error = %v", err)
	}
	gotIDs := []string{got[0].ID, got[1].ID, got[2].ID}
	if diff := cmp.Diff([]string{"id-1", "fresh", "id-2"}, gotIDs); diff != "" {
		t.Errorf("imported ids (-want +got):\n%s", diff)
	}

	still, _ := s.Prompt("1")
	if diff := cmp.Diff(original, still); diff != "" {
		t.Errorf("existing prompt overwritten (-want +got):\n%s", diff)
	}

	all := s.Prompts()
	if len(all) != 6 || all[0].Title != "Clash" {
		t.Errorf("imported batch should be prepended, got %d prompts starting with %q", len(all), all[0].Title)
	}
}

func TestImport_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		want error
	}{
		{"malformed", `[{"title":`, ErrImportFailed},
		{"object root", `{"title":"T"}`, ErrImportNotArray},
		{"non-object element", `[{"title":"ok"}, 3]`, ErrImportFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openStore(t, blob.NewMemoryStorage())
			_, err := s.ImportJSON(t.Context(), tt.text)
			if !errors.Is(err, tt.want) {
				t.Errorf("ImportJSON() error = %v, want %v", err, tt.want)
			}
			if len(s.Prompts()) != 3 {
				t.Error("rejected import changed the store")
			}
		})
	}
}

func TestExport(t *testing.T) {
	s := openStore(t, blob.NewMemoryStorage())

	if _, err := s.Export(nil); !errors.Is(err, ErrEmptyExport) {
		t.Errorf("Export(nil) error = %v, want ErrEmptyExport", err)
	}

	out, err := s.Export([]string{"3", "1"})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if out.FileName != "promptvault-export-2.json" || out.Count != 2 {
		t.Errorf("Export() = %s, %d", out.FileName, out.Count)
	}
	if !strings.Contains(string(out.Data), "\n  {") {
		t.Errorf("export should be indented with two spaces:\n%s", out.Data)
	}
	var exported []types.Prompt
	if err := json.Unmarshal(out.Data, &exported); err != nil {
		t.Fatal(err)
	}
	if exported[0].ID != "1" || exported[1].ID != "3" {
		t.Errorf("export should follow visible order, got %s, %s", exported[0].ID, exported[1].ID)
	}

	// Only visible prompts are exported.
	s.SetSelection(types.Selection{Category: "Writing"})
	if _, err := s.Export([]string{"3"}); !errors.Is(err, ErrEmptyExport) {
		t.Errorf("Export(hidden) error = %v, want ErrEmptyExport", err)
	}
}

func TestCategories(t *testing.T) {
	s := openStore(t, blob.NewMemoryStorage())

	added, err := s.AddCategory(t.Context(), "Research")
	if err != nil || !added {
		t.Fatalf("AddCategory() = %v, %v", added, err)
	}
	if added, _ := s.AddCategory(t.Context(), "Research"); added {
		t.Error("AddCategory() should not add a duplicate")
	}
	if added, _ := s.AddCategory(t.Context(), "research"); !added {
		t.Error("AddCategory() is case-sensitive")
	}

	s.SetSelection(types.Selection{Category: "Coding"})
	if err := s.RemoveCategory(t.Context(), "Coding"); err != nil {
		t.Fatalf("RemoveCategory() error = %v", err)
	}
	if got := s.Selection().Category; got != types.All {
		t.Errorf("selection category = %q, want All", got)
	}
	p, _ := s.Prompt("1")
	if p.Category != "Coding" {
		t.Error("removing a category must not touch prompts")
	}
	if err := s.RemoveCategory(t.Context(), "Nope"); err != nil {
		t.Errorf("RemoveCategory(absent) error = %v", err)
	}
}

func TestRemoveModel_Cascade(t *testing.T) {
	storage := seeded(t, map[string]any{
		blob.KeyQuickFilters: []types.QuickFilter{
			{ID: "a", Type: types.FilterModel, Value: "Gemini", Label: "Gemini"},
			{ID: "b", Type: types.FilterTag, Value: "Gemini", Label: "Gemini"},
			{ID: "c", Type: types.FilterModel, Value: "Claude", Label: "Claude"},
			{ID: "d", Type: types.FilterModel, Value: "Gemini", Label: "G"},
		},
	})
	s := openStore(t, storage)
	s.SetSelection(types.Selection{Model: "Gemini"})

	if err := s.RemoveModel(t.Context(), "Gemini"); err != nil {
		t.Fatalf("RemoveModel() error = %v", err)
	}

	var ids []string
	for _, qf := range s.QuickFilters() {
		ids = append(ids, qf.ID)
	}
	if diff := cmp.Diff([]string{"b", "c"}, ids); diff != "" {
		t.Errorf("quick filters after cascade (-want +got):\n%s", diff)
	}
	if got := s.Selection().Model; got != types.All {
		t.Errorf("selection model = %q, want All", got)
	}
	for _, m := range s.Models() {
		if m == "Gemini" {
			t.Error("model not removed")
		}
	}
	p, _ := s.Prompt("2")
	if diff := cmp.Diff([]string{"Claude", "Gemini"}, p.Models); diff != "" {
		t.Errorf("prompt models must be untouched (-want +got):\n%s", diff)
	}

	var persisted []types.QuickFilter
	readBlob(t, storage, blob.KeyQuickFilters, &persisted)
	if len(persisted) != 2 {
		t.Errorf("cascade not persisted: %v", persisted)
	}
}

func TestQuickFilters(t *testing.T) {
	s := openStore(t, seeded(t, map[string]any{blob.KeyQuickFilters: []any{}}))

	if _, _, err := s.AddQuickFilterFromSelection(t.Context()); !errors.Is(err, ErrNoSelection) {
		t.Errorf("AddQuickFilterFromSelection() error = %v, want ErrNoSelection", err)
	}

	s.SetSelection(types.Selection{Category: "Coding"})
	qf, created, err := s.AddQuickFilterFromSelection(t.Context())
	if err != nil || !created {
		t.Fatalf("AddQuickFilterFromSelection() = %v, %v", created, err)
	}
	want := types.QuickFilter{ID: "id-1", Type: types.FilterCategory, Value: "Coding", Label: "Coding"}
	if diff := cmp.Diff(want, qf); diff != "" {
		t.Errorf("quick filter mismatch (-want +got):\n%s", diff)
	}

	again, created, err := s.AddQuickFilterFromSelection(t.Context())
	if err != nil || created || again.ID != qf.ID {
		t.Errorf("second add = %+v, created %v, err %v", again, created, err)
	}
	if got := len(s.QuickFilters()); got != 1 {
		t.Errorf("quick filters = %d, want 1", got)
	}

	views := s.QuickFilterViews()
	if !views[0].Active {
		t.Error("filter for current selection should be active")
	}

	sel, err := s.ApplyQuickFilter(qf.ID)
	if err != nil {
		t.Fatalf("ApplyQuickFilter() error = %v", err)
	}
	if sel.Category != types.All {
		t.Errorf("applying an active filter should clear it, got %+v", sel)
	}
	if s.QuickFilterViews()[0].Active {
		t.Error("filter should be inactive after toggle")
	}

	if _, err := s.ApplyQuickFilter("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ApplyQuickFilter(missing) error = %v", err)
	}
	if err := s.RemoveQuickFilter(t.Context(), qf.ID); err != nil {
		t.Fatalf("RemoveQuickFilter() error = %v", err)
	}
	if err := s.RemoveQuickFilter(t.Context(), qf.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("RemoveQuickFilter(missing) error = %v", err)
	}
}

func TestVisible_Scenario(t *testing.T) {
	storage := seeded(t, map[string]any{
		blob.KeyCategories: []string{"Coding", "Writing"},
		blob.KeyPrompts: []types.Prompt{{
			ID: "p", Title: "t", Tags: []string{"x"}, Models: []string{"Gemini"}, Category: "Coding",
		}},
	})
	s := openStore(t, storage)

	s.SetSelection(types.Selection{Category: "Writing"})
	if got := s.Visible(); len(got) != 0 {
		t.Errorf("Visible() = %d prompts, want 0", len(got))
	}
	s.SetSelection(types.Selection{Category: "Coding"})
	if got := s.Visible(); len(got) != 1 {
		t.Errorf("Visible() = %d prompts, want 1", len(got))
	}

	if got := s.Search(types.Selection{Query: "X"}); len(got) != 1 {
		t.Errorf("Search() = %d prompts, want 1", len(got))
	}
	if got := s.Selection().Category; got != "Coding" {
		t.Error("Search() must not change the selection")
	}
}

func TestEnhanceStubs(t *testing.T) {
	if got := EnhancePrompt("abc"); got != "abc" {
		t.Errorf("EnhancePrompt() = %q", got)
	}
	if got := SuggestTags("abc"); len(got) != 0 {
		t.Errorf("SuggestTags() = %v", got)
	}
}
