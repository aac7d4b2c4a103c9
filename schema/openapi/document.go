package openapi

import (
	"fmt"
	"sort"
	"strings"

	assets "github.com/goliatone/go-assets"
)

type documentBuilder struct {
	config     generatorConfig
	kinds      []assets.Kind
	refs       map[assets.Kind]string
	components map[string]any
}

func newDocumentBuilder(config generatorConfig, kinds []assets.Kind, refs map[assets.Kind]string, components map[string]any) *documentBuilder {
	return &documentBuilder{
		config:     config,
		kinds:      kinds,
		refs:       refs,
		components: components,
	}
}

func (b *documentBuilder) build() (map[string]any, error) {
	document := map[string]any{
		"openapi": b.config.openAPIVersion,
		"info":    b.buildInfo(),
		"paths":   b.buildPaths(),
		"components": map[string]any{
			"schemas": b.components,
		},
	}
	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

func (b *documentBuilder) buildInfo() map[string]any {
	info := map[string]any{
		"title":   b.config.info.Title,
		"version": b.config.info.Version,
	}
	if b.config.info.Description != "" {
		info["description"] = b.config.info.Description
	}
	return info
}

func (b *documentBuilder) buildPaths() map[string]any {
	responses := make(map[string]any, len(b.config.responses))
	statuses := make([]string, 0, len(b.config.responses))
	for status := range b.config.responses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		responses[status] = map[string]any{
			"description": b.config.responses[status].Description,
		}
	}

	paths := make(map[string]any, len(b.kinds))
	for _, kind := range b.kinds {
		segment := strings.ToLower(kind.String())
		path := fmt.Sprintf("%s/%s/{id}", b.config.pathPrefix, segment)
		paths[path] = map[string]any{
			"put": map[string]any{
				"operationId": fmt.Sprintf("put:%s", segment),
				"summary":     fmt.Sprintf("Write %s metadata", kind),
				"parameters": []any{
					map[string]any{
						"name":     "id",
						"in":       "path",
						"required": true,
						"schema":   map[string]any{"type": "string", "format": "uuid"},
					},
				},
				"requestBody": map[string]any{
					"required": true,
					"content": map[string]any{
						b.config.contentType: map[string]any{
							"schema": map[string]any{"$ref": b.refs[kind]},
						},
					},
				},
				"responses": responses,
			},
		}
	}
	return paths
}

func validateDocument(document map[string]any) error {
	if document == nil {
		return fmt.Errorf("openapi: document cannot be nil")
	}
	openapi, _ := document["openapi"].(string)
	if openapi == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if info == nil {
		return fmt.Errorf("openapi: document missing info section")
	}
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	for pathKey, pathValue := range paths {
		pathItem, _ := pathValue.(map[string]any)
		if pathItem == nil {
			return fmt.Errorf("openapi: path %q invalid payload", pathKey)
		}
		if len(pathItem) == 0 {
			return fmt.Errorf("openapi: path %q missing operations", pathKey)
		}
		for method, operationValue := range pathItem {
			operation, _ := operationValue.(map[string]any)
			if operation == nil {
				return fmt.Errorf("openapi: operation %s %s invalid payload", method, pathKey)
			}
			if _, ok := operation["operationId"].(string); !ok {
				return fmt.Errorf("openapi: operation %s %s missing operationId", method, pathKey)
			}
			requestBody, _ := operation["requestBody"].(map[string]any)
			if requestBody == nil {
				return fmt.Errorf("openapi: operation %s %s missing requestBody", method, pathKey)
			}
			content, _ := requestBody["content"].(map[string]any)
			if len(content) == 0 {
				return fmt.Errorf("openapi: operation %s %s requestBody missing content", method, pathKey)
			}
			if _, ok := operation["responses"].(map[string]any); !ok {
				return fmt.Errorf("openapi: operation %s %s missing responses", method, pathKey)
			}
		}
	}
	return nil
}
