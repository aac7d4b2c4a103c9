package layering

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"testing"
)

func TestChainMergeFromFixture(t *testing.T) {
	fx := loadLayeringFixture(t, "layering_merge.json")

	for _, tc := range fx.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			layers := make([]Layer, len(tc.Layers))
			for i, layer := range tc.Layers {
				layers[i] = Layer{Level: ParseLevel(layer.Level), Source: layer.Source, Document: layer.Document}
			}
			chain := NewChain(layers...)

			got := chain.Merge()
			if !reflect.DeepEqual(tc.Expect, got) {
				t.Fatalf("merged document mismatch:\nwant: %#v\n got: %#v", tc.Expect, got)
			}
			for path, level := range tc.Origins {
				origin, ok := chain.Origin(path)
				if !ok {
					t.Fatalf("expected origin for %q", path)
				}
				if origin.Level.String() != level {
					t.Fatalf("expected %q from %s, got %s", path, level, origin.Level)
				}
			}
		})
	}
}

func TestMergeDocumentsDoesNotMutateInputs(t *testing.T) {
	weak := map[string]any{"importer": map[string]any{"workers": 4}}
	strong := map[string]any{"importer": map[string]any{"workers": 8}}

	merged := MergeDocuments(strong, weak)
	merged["importer"].(map[string]any)["workers"] = 1

	if weak["importer"].(map[string]any)["workers"] != 4 {
		t.Fatalf("weak document mutated: %#v", weak)
	}
	if strong["importer"].(map[string]any)["workers"] != 8 {
		t.Fatalf("strong document mutated: %#v", strong)
	}
}

func TestMergeDocumentsZeroInput(t *testing.T) {
	if got := MergeDocuments(); len(got) != 0 {
		t.Fatalf("expected empty document, got %#v", got)
	}
}

func TestMergeAcceptsYAMLMappings(t *testing.T) {
	weak := map[string]any{"logging": map[any]any{"mode": "development", "level": "debug"}}
	strong := map[string]any{"logging": map[string]any{"level": "info"}}

	got := MergeDocuments(strong, weak)
	want := map[string]any{"logging": map[string]any{"mode": "development", "level": "info"}}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("unexpected merge:\nwant: %#v\n got: %#v", want, got)
	}
}

func TestChainOrderingAndDedup(t *testing.T) {
	chain := NewChain(
		Layer{Level: LevelDefaults, Source: "builtin"},
		Layer{Level: LevelUser, Source: "a.yaml"},
		Layer{Level: LevelUser, Source: "a.yaml"},
		Layer{Level: LevelProject, Source: "assets.yaml"},
		Layer{Level: LevelUnknown, Source: "x"},
	)
	ordered := chain.Ordered()
	if len(ordered) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(ordered))
	}
	strongest, _ := chain.Strongest()
	weakest, _ := chain.Weakest()
	if strongest.Level != LevelUser || weakest.Level != LevelDefaults {
		t.Fatalf("unexpected order: %+v", ordered)
	}
	if _, ok := NewChain().Strongest(); ok {
		t.Fatalf("expected empty chain to have no strongest layer")
	}
}

func TestLookupDottedPath(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": map[string]any{"c": 3}}}
	if v, ok := Lookup(doc, "a.b.c"); !ok || v != 3 {
		t.Fatalf("expected 3, got %v %v", v, ok)
	}
	if _, ok := Lookup(doc, "a.x"); ok {
		t.Fatalf("expected missing path")
	}
	if _, ok := Lookup(doc, "a.b.c.d"); ok {
		t.Fatalf("expected scalar to stop traversal")
	}
}

type layeringFixture struct {
	Description string                `json:"description"`
	Cases       []layeringFixtureCase `json:"cases"`
}

type layeringFixtureCase struct {
	Name    string                 `json:"name"`
	Layers  []layeringFixtureLayer `json:"layers"`
	Expect  map[string]any         `json:"expect"`
	Origins map[string]string      `json:"origins"`
}

type layeringFixtureLayer struct {
	Level    string         `json:"level"`
	Source   string         `json:"source"`
	Document map[string]any `json:"document"`
}

func loadLayeringFixture(t *testing.T, name string) layeringFixture {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("unable to resolve caller for fixture %q", name)
	}
	path := filepath.Join(filepath.Dir(file), "..", "testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read layering fixture %q: %v", name, err)
	}
	var fx layeringFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal layering fixture %q: %v", name, err)
	}
	return fx
}
