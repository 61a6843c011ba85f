package schema

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Kind names a persisted shape: either a whole blob or one element of a blob.
type Kind string

const (
	KindPrompts      Kind = "prompts"
	KindCategories   Kind = "categories"
	KindModels       Kind = "models"
	KindQuickFilters Kind = "quick_filters"
	KindPrompt       Kind = "prompt"
	KindQuickFilter  Kind = "quick_filter"
)

// Schema is a JSON Schema document for one Kind.
type Schema struct {
	Kind   Kind
	Source string // raw JSON Schema document
	Order  int    // blob schemas first, then element schemas
}

// registry lists every embedded schema.
var registry = []Schema{
	{Kind: KindPrompts, Order: 1},
	{Kind: KindCategories, Order: 2},
	{Kind: KindModels, Order: 3},
	{Kind: KindQuickFilters, Order: 4},
	{Kind: KindPrompt, Order: 5},
	{Kind: KindQuickFilter, Order: 6},
}

var (
	compileOnce sync.Once
	compiled    map[Kind]*jsonschema.Schema
	compileErr  error
)

// All returns all schemas in order.
// Schemas are loaded from embedded .json files.
func All() ([]Schema, error) {
	schemas := make([]Schema, len(registry))
	copy(schemas, registry)

	for i := range schemas {
		content, err := schemaFS.ReadFile(filename(schemas[i].Kind))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", schemas[i].Kind, err)
		}
		schemas[i].Source = string(content)
	}

	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].Order < schemas[j].Order
	})

	return schemas, nil
}

// Get returns a single schema by kind.
func Get(kind Kind) (*Schema, error) {
	for _, s := range registry {
		if s.Kind == kind {
			content, err := schemaFS.ReadFile(filename(kind))
			if err != nil {
				return nil, fmt.Errorf("failed to read schema %s: %w", kind, err)
			}
			return &Schema{Kind: kind, Source: string(content), Order: s.Order}, nil
		}
	}
	return nil, fmt.Errorf("schema not found: %s", kind)
}

// compiledSchema returns the compiled schema for kind, compiling all
// embedded schemas on first use.
func compiledSchema(kind Kind) (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled, compileErr = compileAll()
	})
	if compileErr != nil {
		return nil, compileErr
	}
	s, ok := compiled[kind]
	if !ok {
		return nil, fmt.Errorf("schema not found: %s", kind)
	}
	return s, nil
}

func compileAll() (map[Kind]*jsonschema.Schema, error) {
	schemas, err := All()
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	for _, s := range schemas {
		if err := compiler.AddResource(resourceName(s.Kind), bytes.NewReader([]byte(s.Source))); err != nil {
			return nil, fmt.Errorf("failed to load schema %s: %w", s.Kind, err)
		}
	}

	out := make(map[Kind]*jsonschema.Schema, len(schemas))
	for _, s := range schemas {
		c, err := compiler.Compile(resourceName(s.Kind))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", s.Kind, err)
		}
		out[s.Kind] = c
	}
	return out, nil
}

func filename(kind Kind) string {
	return fmt.Sprintf("schemas/%s.json", kind)
}

func resourceName(kind Kind) string {
	return string(kind) + ".json"
}
