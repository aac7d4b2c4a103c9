package openapi

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/resources"
)

func builtinTypes(t *testing.T) *assets.Types {
	t.Helper()
	types, err := resources.NewTypes()
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	return types
}

func TestNewGeneratorOptions(t *testing.T) {
	custom := NewGenerator(
		WithOpenAPIVersion("3.1.0"),
		WithInfo("Editor", "2.0.0", WithInfoDescription("asset metadata")),
		WithPathPrefix("assets/meta/"),
		WithContentType("application/vnd.asset+json"),
		WithResponse("201", "Created"),
	)

	if got := custom.config.openAPIVersion; got != "3.1.0" {
		t.Fatalf("expected openapi version 3.1.0, got %q", got)
	}
	if got := custom.config.info.Title; got != "Editor" {
		t.Fatalf("expected info title Editor, got %q", got)
	}
	if got := custom.config.info.Description; got != "asset metadata" {
		t.Fatalf("expected info description, got %q", got)
	}
	if got := custom.config.pathPrefix; got != "/assets/meta" {
		t.Fatalf("expected normalised prefix, got %q", got)
	}
	if got := custom.config.contentType; got != "application/vnd.asset+json" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := custom.config.responses["201"].Description; got != "Created" {
		t.Fatalf("expected response description Created, got %q", got)
	}
	if _, exists := custom.config.responses["204"]; !exists {
		t.Fatalf("expected default 204 response to remain configured")
	}
}

func TestGeneratorKindFixture(t *testing.T) {
	fx := loadFixture(t, "shader_component.json")
	kind, err := assets.ParseKind(fx.Kind)
	if err != nil {
		t.Fatalf("parse kind: %v", err)
	}
	got, err := NewGenerator().Kind(builtinTypes(t), kind)
	if err != nil {
		t.Fatalf("Kind returned error: %v", err)
	}
	assertJSONEqual(t, fx.Expect, got)
}

func TestGeneratorDocument(t *testing.T) {
	doc, err := NewGenerator().Generate(builtinTypes(t))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if err := validateDocument(doc); err != nil {
		t.Fatalf("generated document invalid: %v", err)
	}

	paths := doc["paths"].(map[string]any)
	if len(paths) != len(assets.AllKinds()) {
		t.Fatalf("expected one path per kind, got %d", len(paths))
	}
	put := paths["/metadata/texture/{id}"].(map[string]any)["put"].(map[string]any)
	ref := put["requestBody"].(map[string]any)["content"].(map[string]any)["application/json"].(map[string]any)["schema"].(map[string]any)["$ref"]
	if ref != "#/components/schemas/TextureMetadata" {
		t.Fatalf("unexpected texture ref %v", ref)
	}

	schemas := doc["components"].(map[string]any)["schemas"].(map[string]any)
	mesh := schemas["MeshMetadata"].(map[string]any)
	props := mesh["properties"].(map[string]any)["properties"].(map[string]any)
	material := props["material"].(map[string]any)
	if material["format"] != "uuid" || material["x-asset-ref"] != "resources.Material" {
		t.Fatalf("unexpected reference schema %v", material)
	}

	texture := schemas["TextureMetadata"].(map[string]any)
	textureProps := texture["properties"].(map[string]any)["properties"].(map[string]any)
	if _, ok := textureProps["handle"]; ok {
		t.Fatalf("excluded member handle must not be described")
	}
	if _, ok := textureProps["checksum"]; !ok {
		t.Fatalf("included private member checksum must be described")
	}
	if _, ok := textureProps["debugLabel"]; ok {
		t.Fatalf("private member debugLabel must not be described")
	}
}

func TestGeneratorRejectsEmptyTypes(t *testing.T) {
	if _, err := NewGenerator().Generate(nil); err == nil {
		t.Fatalf("expected error for nil types")
	}
	empty, err := assets.NewTypes()
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	if _, err := NewGenerator().Generate(empty); err == nil {
		t.Fatalf("expected error for empty registry")
	}
}

func TestGeneratorConcurrentAccess(t *testing.T) {
	generator := NewGenerator()
	types := builtinTypes(t)

	const goroutines = 16
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			doc, err := generator.Generate(types)
			if err != nil {
				t.Errorf("Generate returned error: %v", err)
				return
			}
			if doc["components"] == nil {
				t.Errorf("expected components")
			}
		}()
	}
	wg.Wait()
}

func TestSanitizeComponentName(t *testing.T) {
	cases := map[string]string{
		"TextureMetadata": "TextureMetadata",
		"3d model":        "_3d_model",
		"__x__":           "x",
		"!!!":             "",
	}
	for input, want := range cases {
		if got := sanitizeComponentName(input); got != want {
			t.Fatalf("sanitizeComponentName(%q) = %q, want %q", input, got, want)
		}
	}
	names := newComponentNames()
	if first, second := names.unique("A"), names.unique("A"); first != "A" || second != "A1" {
		t.Fatalf("unexpected unique names %q %q", first, second)
	}
}

type fixture struct {
	Kind   string         `json:"kind"`
	Expect map[string]any `json:"expect"`
}

func loadFixture(t *testing.T, name string) fixture {
	t.Helper()

	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture %q: %v", path, err)
	}

	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("unmarshal fixture %q: %v", path, err)
	}
	return fx
}

func assertJSONEqual(t *testing.T, want, got map[string]any) {
	t.Helper()

	wantBytes := mustMarshal(t, want)
	gotBytes := mustMarshal(t, got)

	if !bytes.Equal(wantBytes, gotBytes) {
		t.Fatalf("schema mismatch\nwant: %s\ngot:  %s", wantBytes, gotBytes)
	}
}

func mustMarshal(t *testing.T, value any) []byte {
	t.Helper()

	raw, err := json.Marshal(value)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	return raw
}
