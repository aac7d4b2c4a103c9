// Package layering merges configuration documents ordered by precedence.
package layering

import "strings"

// MergeDocuments composes documents ordered from strongest to weakest. Nested
// maps merge key by key; any other value, lists included, is taken whole from
// the strongest document that sets it. Inputs are not modified.
func MergeDocuments(documents ...map[string]any) map[string]any {
	merged := map[string]any{}
	for i := len(documents) - 1; i >= 0; i-- {
		merged = mergeMap(documents[i], merged)
	}
	return merged
}

func mergeMap(strong, weak map[string]any) map[string]any {
	result := make(map[string]any, len(strong)+len(weak))
	for key, value := range weak {
		result[key] = cloneValue(value)
	}
	for key, value := range strong {
		strongMap, strongIsMap := asMap(value)
		weakMap, weakIsMap := asMap(result[key])
		if strongIsMap && weakIsMap {
			result[key] = mergeMap(strongMap, weakMap)
			continue
		}
		result[key] = cloneValue(value)
	}
	return result
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = cloneValue(inner)
		}
		return out
	case map[any]any:
		m, _ := asMap(v)
		return cloneValue(m)
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return value
	}
}

// asMap accepts both decoded JSON objects and YAML mappings with non-string
// keys.
func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			if s, ok := key.(string); ok {
				out[s] = inner
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// Lookup returns the value at a dotted path such as "metadata.strict".
func Lookup(document map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	current := any(document)
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
