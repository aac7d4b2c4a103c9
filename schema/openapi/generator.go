// Package openapi renders the metadata file of every registered asset kind
// as an OpenAPI 3 component schema, for inspectors and external tooling.
package openapi

import (
	"fmt"
	"strings"

	assets "github.com/goliatone/go-assets"
)

// Generator builds OpenAPI documents from a type registry.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs a generator with the supplied options.
func NewGenerator(opts ...GeneratorOption) *Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Generator{config: cfg}
}

// Generate describes every kind registered in types. Each kind gets a
// "<Kind>Metadata" component and a PUT operation accepting it.
func (g *Generator) Generate(types *assets.Types) (map[string]any, error) {
	if types == nil {
		return nil, fmt.Errorf("openapi: types cannot be nil")
	}
	kinds := types.Kinds()
	if len(kinds) == 0 {
		return nil, fmt.Errorf("openapi: no asset kinds registered")
	}

	names := newComponentNames()
	components := make(map[string]any, len(kinds))
	refs := make(map[assets.Kind]string, len(kinds))
	for _, kind := range kinds {
		fields, err := types.Describe(kind)
		if err != nil {
			return nil, err
		}
		name := names.unique(kind.String() + "Metadata")
		components[name] = metadataSchema(kind, fields)
		refs[kind] = componentRef(name)
	}

	return newDocumentBuilder(g.config, kinds, refs, components).build()
}

// Kind returns the component schema for a single kind.
func (g *Generator) Kind(types *assets.Types, kind assets.Kind) (map[string]any, error) {
	fields, err := types.Describe(kind)
	if err != nil {
		return nil, err
	}
	return metadataSchema(kind, fields), nil
}

func metadataSchema(kind assets.Kind, fields []assets.FieldDescriptor) map[string]any {
	properties := make(map[string]any, len(fields))
	for _, field := range fields {
		properties[field.Path] = propertySchema(field)
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"filePath", "id", "kind", "name", "properties"},
		"properties": map[string]any{
			"id":       map[string]any{"type": "string", "format": "uuid"},
			"kind":     map[string]any{"type": "string", "enum": []string{kind.String()}},
			"name":     map[string]any{"type": "string"},
			"filePath": map[string]any{"type": "string"},
			"properties": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           properties,
			},
		},
	}
}

// propertySchema describes one encoded property. Values are stored as
// strings holding JSON, or the target id for references.
func propertySchema(field assets.FieldDescriptor) map[string]any {
	schema := map[string]any{
		"type":         "string",
		"x-asset-type": field.Type,
	}
	if field.Type == assets.TypeReference.String() {
		schema["format"] = "uuid"
		schema["x-asset-ref"] = strings.TrimPrefix(field.RefType, "*")
	}
	if !field.Write {
		schema["readOnly"] = true
	}
	return schema
}
