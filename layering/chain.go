package layering

import (
	"fmt"
	"slices"
	"strings"
)

// Level identifies the precedence of a configuration layer. Higher levels
// override lower ones.
type Level int

const (
	LevelUnknown Level = iota
	// LevelDefaults holds built-in values.
	LevelDefaults
	// LevelProject is the configuration file shipped with the project.
	LevelProject
	// LevelUser is a per-user override file.
	LevelUser
	// LevelEnv holds values taken from the environment.
	LevelEnv
)

func (l Level) String() string {
	switch l {
	case LevelDefaults:
		return "defaults"
	case LevelProject:
		return "project"
	case LevelUser:
		return "user"
	case LevelEnv:
		return "env"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name, ignoring case. Unrecognised names yield
// LevelUnknown.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "defaults":
		return LevelDefaults
	case "project":
		return LevelProject
	case "user":
		return LevelUser
	case "env":
		return LevelEnv
	default:
		return LevelUnknown
	}
}

// Layer is one configuration document and where it came from.
type Layer struct {
	Level    Level
	Source   string
	Document map[string]any
}

// Identifier is the deduplication key of the layer.
func (l Layer) Identifier() string {
	return fmt.Sprintf("%s/%s", l.Level, l.Source)
}

// Chain is an ordered set of layers from strongest to weakest.
type Chain struct {
	ordered []Layer
}

// NewChain drops unknown levels and duplicate identifiers, then orders the
// layers by level. Peers keep their relative order.
func NewChain(layers ...Layer) Chain {
	filtered := make([]Layer, 0, len(layers))
	seen := map[string]struct{}{}
	for _, layer := range layers {
		if layer.Level == LevelUnknown {
			continue
		}
		id := layer.Identifier()
		if _, exists := seen[id]; exists {
			continue
		}
		seen[id] = struct{}{}
		filtered = append(filtered, layer)
	}
	slices.SortStableFunc(filtered, func(a, b Layer) int {
		return int(b.Level) - int(a.Level)
	})
	return Chain{ordered: filtered}
}

// Ordered returns the layers from strongest (index 0) to weakest.
func (c Chain) Ordered() []Layer {
	return slices.Clone(c.ordered)
}

func (c Chain) Strongest() (Layer, bool) {
	if len(c.ordered) == 0 {
		return Layer{}, false
	}
	return c.ordered[0], true
}

func (c Chain) Weakest() (Layer, bool) {
	if len(c.ordered) == 0 {
		return Layer{}, false
	}
	return c.ordered[len(c.ordered)-1], true
}

// Merge combines every layer into one document.
func (c Chain) Merge() map[string]any {
	documents := make([]map[string]any, len(c.ordered))
	for i, layer := range c.ordered {
		documents[i] = layer.Document
	}
	return MergeDocuments(documents...)
}

// Origin reports the strongest layer that sets path.
func (c Chain) Origin(path string) (Layer, bool) {
	for _, layer := range c.ordered {
		if _, ok := Lookup(layer.Document, path); ok {
			return layer, true
		}
	}
	return Layer{}, false
}
