package activity

import (
	"testing"
	"time"
)

func TestBuildAssetEventPopulatesFields(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	evt := BuildAssetEvent(VerbLoad, AssetEventInput{
		ActorID:    "importer",
		AssetID:    "8c1b0c52-0d8c-4b8e-9d55-0f4b1d0f3a11",
		Kind:       "Texture",
		Path:       "textures/wood.png",
		Metadata:   map[string]any{"source": "disk"},
		OccurredAt: at,
	})

	if evt.Verb != VerbLoad || evt.ObjectType != "Texture" {
		t.Fatalf("unexpected event: %+v", evt)
	}
	if evt.ObjectID != "8c1b0c52-0d8c-4b8e-9d55-0f4b1d0f3a11" {
		t.Fatalf("unexpected object id %q", evt.ObjectID)
	}
	if evt.Path != "textures/wood.png" || evt.Metadata["path"] != "textures/wood.png" {
		t.Fatalf("expected path in event and metadata: %+v", evt)
	}
	if evt.Metadata["source"] != "disk" {
		t.Fatalf("expected metadata passthrough: %+v", evt.Metadata)
	}
	if !evt.OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved, got %v", evt.OccurredAt)
	}
}

func TestBuildAssetEventDefaultsKind(t *testing.T) {
	evt := BuildAssetEvent(VerbEvict, AssetEventInput{AssetID: "1"})
	if evt.ObjectType != "asset" {
		t.Fatalf("expected default kind, got %q", evt.ObjectType)
	}
	if evt.Metadata != nil {
		t.Fatalf("expected no metadata without path, got %+v", evt.Metadata)
	}
}

func TestBuildDanglingReferenceEvent(t *testing.T) {
	input := AssetEventInput{AssetID: "1", Kind: "Material", Metadata: map[string]any{"x": 1}}
	evt := BuildDanglingReferenceEvent(input, "diffuseTexture", "2")

	if evt.Verb != VerbDanglingReference {
		t.Fatalf("unexpected verb %q", evt.Verb)
	}
	if evt.Metadata["member"] != "diffuseTexture" || evt.Metadata["target"] != "2" {
		t.Fatalf("unexpected metadata %+v", evt.Metadata)
	}
	if _, ok := input.Metadata["member"]; ok {
		t.Fatalf("input metadata mutated")
	}
}
