package config

import (
	"path/filepath"
	"testing"
)

func TestTraceReportsEveryLayer(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, DefaultFileName), "query:\n  engine: cel\n")

	loaded, err := Load(root, WithEnviron([]string{"ASSETS_QUERY_ENGINE=expr"}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	trace := loaded.Trace("query.engine")
	if len(trace.Layers) != 3 {
		t.Fatalf("expected 3 layers, got %d", len(trace.Layers))
	}
	want := []struct {
		level string
		value any
	}{
		{"env", "expr"},
		{"project", "cel"},
		{"defaults", "expr"},
	}
	for i, expected := range want {
		got := trace.Layers[i]
		if got.Level != expected.level || got.Value != expected.value || !got.Found {
			t.Fatalf("layer %d: expected %s=%v, got %+v", i, expected.level, expected.value, got)
		}
	}

	missing := loaded.Trace("query.timeout")
	for _, layer := range missing.Layers {
		if layer.Found {
			t.Fatalf("expected query.timeout to be absent, got %+v", layer)
		}
	}
}

func TestTraceJSONRoundTrip(t *testing.T) {
	trace := Trace{
		Path: "metadata.dir",
		Layers: []Provenance{
			{Level: "project", Source: "assets.yaml", Value: "Library/Meta", Found: true},
			{Level: "defaults", Source: "builtin", Value: "Meta", Found: true},
		},
	}
	payload, err := trace.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	decoded, err := TraceFromJSON(payload)
	if err != nil {
		t.Fatalf("from json: %v", err)
	}
	if decoded.Path != trace.Path || len(decoded.Layers) != 2 || decoded.Layers[0].Value != "Library/Meta" {
		t.Fatalf("unexpected trace %+v", decoded)
	}
}
