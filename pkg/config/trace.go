package config

import (
	"encoding/json"

	"github.com/goliatone/go-assets/layering"
)

// Trace lists what every layer holds for a dotted path, strongest first.
type Trace struct {
	Path   string       `json:"path"`
	Layers []Provenance `json:"layers"`
}

// Provenance is one layer's contribution to a traced path.
type Provenance struct {
	Level  string `json:"level"`
	Source string `json:"source"`
	Value  any    `json:"value,omitempty"`
	Found  bool   `json:"found"`
}

// Trace reports every layer's value for path.
func (l *Loaded) Trace(path string) Trace {
	trace := Trace{Path: path, Layers: []Provenance{}}
	if l == nil {
		return trace
	}
	for _, layer := range l.Chain.Ordered() {
		value, found := layering.Lookup(layer.Document, path)
		trace.Layers = append(trace.Layers, Provenance{
			Level:  layer.Level.String(),
			Source: layer.Source,
			Value:  value,
			Found:  found,
		})
	}
	return trace
}

// ToJSON serialises the trace for logs or a CLI.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON reverses ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
