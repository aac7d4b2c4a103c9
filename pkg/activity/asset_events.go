package activity

import (
	"strings"
	"time"
)

// Asset lifecycle verbs.
const (
	VerbAdd               = "add"
	VerbLoad              = "load"
	VerbSave              = "save"
	VerbEvict             = "evict"
	VerbImport            = "import"
	VerbDanglingReference = "dangling_reference"
)

// AssetEventInput carries the fields shared by asset lifecycle events.
type AssetEventInput struct {
	ActorID    string
	AssetID    string
	Kind       string
	Path       string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildAssetEvent constructs a normalized event for verb. An empty kind is
// reported as "asset".
func BuildAssetEvent(verb string, input AssetEventInput) Event {
	kind := strings.TrimSpace(input.Kind)
	if kind == "" {
		kind = "asset"
	}
	meta := cloneMap(input.Metadata)
	if path := strings.TrimSpace(input.Path); path != "" {
		meta = ensureMetadata(meta)
		meta["path"] = path
	}
	return NormalizeEvent(Event{
		Verb:       verb,
		ActorID:    input.ActorID,
		ObjectType: kind,
		ObjectID:   input.AssetID,
		Path:       input.Path,
		Channel:    input.Channel,
		Metadata:   meta,
		OccurredAt: input.OccurredAt,
	})
}

// BuildDanglingReferenceEvent reports a reference member whose target id is
// not registered in the index.
func BuildDanglingReferenceEvent(input AssetEventInput, member, target string) Event {
	input.Metadata = ensureMetadata(cloneMap(input.Metadata))
	input.Metadata["member"] = strings.TrimSpace(member)
	input.Metadata["target"] = strings.TrimSpace(target)
	return BuildAssetEvent(VerbDanglingReference, input)
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
