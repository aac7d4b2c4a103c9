package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-assets/layering"
)

// Option customises Load.
type Option func(*loadConfig)

type loadConfig struct {
	projectFile     string
	projectRequired bool
	userFile        string
	environ         []string
	extra           []layering.Layer
}

// WithProjectFile reads the project layer from path instead of
// <root>/assets.yaml. The file must exist.
func WithProjectFile(path string) Option {
	return func(cfg *loadConfig) {
		cfg.projectFile = path
		cfg.projectRequired = true
	}
}

// WithUserFile adds a per-user override file. A missing file is ignored.
func WithUserFile(path string) Option {
	return func(cfg *loadConfig) {
		cfg.userFile = path
	}
}

// WithEnviron replaces os.Environ as the source of ASSETS_* overrides.
func WithEnviron(environ []string) Option {
	return func(cfg *loadConfig) {
		cfg.environ = slices.Clone(environ)
		if cfg.environ == nil {
			cfg.environ = []string{}
		}
	}
}

// WithLayer appends a caller supplied layer, for example flags parsed at
// LevelEnv.
func WithLayer(layer layering.Layer) Option {
	return func(cfg *loadConfig) {
		cfg.extra = append(cfg.extra, layer)
	}
}

// Loaded is a resolved configuration together with the layers it came from.
type Loaded struct {
	Config Config
	Chain  layering.Chain
}

// Load resolves the configuration for the project at root.
func Load(root string, opts ...Option) (*Loaded, error) {
	cfg := loadConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.environ == nil {
		cfg.environ = os.Environ()
	}

	defaults := Defaults()
	if root != "" {
		defaults["root"] = root
	}
	layers := []layering.Layer{{Level: layering.LevelDefaults, Source: "builtin", Document: defaults}}

	projectFile := cfg.projectFile
	if projectFile == "" {
		projectFile = filepath.Join(root, DefaultFileName)
	}
	project, err := readDocument(projectFile, cfg.projectRequired)
	if err != nil {
		return nil, err
	}
	if project != nil {
		layers = append(layers, layering.Layer{Level: layering.LevelProject, Source: projectFile, Document: project})
	}

	if cfg.userFile != "" {
		user, err := readDocument(cfg.userFile, false)
		if err != nil {
			return nil, err
		}
		if user != nil {
			layers = append(layers, layering.Layer{Level: layering.LevelUser, Source: cfg.userFile, Document: user})
		}
	}

	if env := environmentDocument(cfg.environ); len(env) > 0 {
		layers = append(layers, layering.Layer{Level: layering.LevelEnv, Source: "environment", Document: env})
	}
	layers = append(layers, cfg.extra...)

	chain := layering.NewChain(layers...)
	resolved, err := decode(chain.Merge())
	if err != nil {
		return nil, err
	}
	if err := resolved.Validate(); err != nil {
		return nil, err
	}
	return &Loaded{Config: resolved, Chain: chain}, nil
}

// Origin reports the strongest layer that sets the dotted path.
func (l *Loaded) Origin(path string) (layering.Layer, bool) {
	if l == nil {
		return layering.Layer{}, false
	}
	return l.Chain.Origin(path)
}

func readDocument(path string, required bool) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	document := map[string]any{}
	if err := yaml.Unmarshal(raw, &document); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return document, nil
}

// decode round-trips the merged document through YAML so unknown keys and
// mistyped values are rejected the same way they would be in a file.
func decode(document map[string]any) (Config, error) {
	raw, err := yaml.Marshal(document)
	if err != nil {
		return Config{}, fmt.Errorf("config: encode merged document: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// EnvName returns the environment variable that overrides the dotted path.
func EnvName(path string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}

func environmentDocument(environ []string) map[string]any {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		values[name] = value
	}
	if len(values) == 0 {
		return nil
	}

	document := map[string]any{}
	for _, path := range leafPaths(Defaults(), "") {
		raw, ok := values[EnvName(path)]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		setPath(document, path, scalar(raw))
	}
	return document
}

// scalar interprets an environment value as a YAML scalar or flow sequence.
func scalar(raw string) any {
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil || value == nil {
		return raw
	}
	switch value.(type) {
	case map[string]any:
		return raw
	}
	return value
}

func leafPaths(document map[string]any, prefix string) []string {
	var out []string
	for key, value := range document {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			out = append(out, leafPaths(nested, path)...)
			continue
		}
		out = append(out, path)
	}
	slices.Sort(out)
	return out
}

func setPath(document map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	current := document
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
}
