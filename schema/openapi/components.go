package openapi

import (
	"fmt"
	"regexp"
)

// componentNames hands out unique, OpenAPI-safe component names.
type componentNames struct {
	used map[string]struct{}
}

func newComponentNames() *componentNames {
	return &componentNames{used: map[string]struct{}{}}
}

func (r *componentNames) unique(name string) string {
	safe := sanitizeComponentName(name)
	if safe == "" {
		safe = "Schema"
	}
	if _, exists := r.used[safe]; !exists {
		r.used[safe] = struct{}{}
		return safe
	}
	suffix := 1
	for {
		candidate := fmt.Sprintf("%s%d", safe, suffix)
		if _, exists := r.used[candidate]; !exists {
			r.used[candidate] = struct{}{}
			return candidate
		}
		suffix++
	}
}

func componentRef(name string) string {
	return fmt.Sprintf("#/components/schemas/%s", name)
}

var componentNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeComponentName(name string) string {
	name = componentNameRegexp.ReplaceAllString(name, "_")
	name = trimUnderscores(name)
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func trimUnderscores(input string) string {
	start := 0
	for start < len(input) && input[start] == '_' {
		start++
	}
	end := len(input)
	for end > start && input[end-1] == '_' {
		end--
	}
	return input[start:end]
}
