package state

import (
	"encoding/json"
	"fmt"
	"strconv"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/internal/hydrate"
)

var legacyKeys = map[string]string{
	"Id":        "id",
	"Name":      "name",
	"FilePath":  "filePath",
	"Propertis": "properties",
	"Type":      "kind",
}

// legacyLayout rewrites documents produced by the previous engine. Its kind
// was a zero based ordinal over Texture, Mesh, Material, Shader, Script.
func legacyLayout(ctx hydrate.Context, payload map[string]any) (map[string]any, error) {
	for from, to := range legacyKeys {
		value, ok := payload[from]
		if !ok {
			continue
		}
		delete(payload, from)
		if _, exists := payload[to]; !exists {
			payload[to] = value
		}
	}
	kind, err := legacyKind(payload["kind"])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ctx.Source, err)
	}
	if kind != "" {
		payload["kind"] = kind
	}
	return payload, nil
}

func legacyKind(value any) (string, error) {
	var ordinal int64
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return "", fmt.Errorf("kind %q is not an ordinal", v)
		}
		ordinal = n
	case float64:
		ordinal = int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			ordinal = n
			break
		}
		return "", nil
	default:
		return "", nil
	}
	kinds := assets.AllKinds()
	if ordinal < 0 || ordinal >= int64(len(kinds)) {
		return "", fmt.Errorf("kind ordinal %d out of range", ordinal)
	}
	return kinds[ordinal].String(), nil
}

func validateSnapshot(_ hydrate.Context, snapshot *assets.Snapshot) error {
	if snapshot.Properties == nil {
		snapshot.Properties = map[string]string{}
	}
	return snapshot.Validate()
}

func newSnapshotDecoder(strict bool) *hydrate.Decoder[assets.Snapshot] {
	opts := []hydrate.DecoderOption[assets.Snapshot]{
		hydrate.WithPreHook[assets.Snapshot](legacyLayout),
		hydrate.WithPostHook[assets.Snapshot](validateSnapshot),
	}
	if strict {
		opts = append(opts, hydrate.WithDisallowUnknownFields[assets.Snapshot]())
	}
	return hydrate.NewDecoder[assets.Snapshot](opts...)
}
