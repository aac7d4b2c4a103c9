// Package config resolves project settings from built-in defaults, the
// project file, an optional user file and ASSETS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DefaultFileName is the project configuration file looked up under Root.
	DefaultFileName = "assets.yaml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "ASSETS_"
)

// Query engines accepted by Query.Engine.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// Config is the resolved project configuration.
type Config struct {
	Root     string         `yaml:"root"`
	Assets   AssetsConfig   `yaml:"assets"`
	Metadata MetadataConfig `yaml:"metadata"`
	Query    QueryConfig    `yaml:"query"`
	Logging  LoggingConfig  `yaml:"logging"`
	Activity ActivityConfig `yaml:"activity"`
	Importer ImporterConfig `yaml:"importer"`
}

type AssetsConfig struct {
	Dir string `yaml:"dir"`
}

type MetadataConfig struct {
	Dir string `yaml:"dir"`
	// Strict fails restores on dangling references instead of skipping them.
	Strict bool `yaml:"strict"`
}

type QueryConfig struct {
	Engine string `yaml:"engine"`
}

type LoggingConfig struct {
	Mode  string `yaml:"mode"`
	Level string `yaml:"level"`
}

type ActivityConfig struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel"`
	Actor   string `yaml:"actor"`
}

type ImporterConfig struct {
	Workers int      `yaml:"workers"`
	Ignore  []string `yaml:"ignore"`
}

// Defaults returns the built-in configuration document.
func Defaults() map[string]any {
	return map[string]any{
		"root": ".",
		"assets": map[string]any{
			"dir": "Assets",
		},
		"metadata": map[string]any{
			"dir":    "Meta",
			"strict": false,
		},
		"query": map[string]any{
			"engine": EngineExpr,
		},
		"logging": map[string]any{
			"mode":  "production",
			"level": "info",
		},
		"activity": map[string]any{
			"enabled": true,
			"channel": "assets",
			"actor":   "",
		},
		"importer": map[string]any{
			"workers": 4,
			"ignore":  []any{".*", "*.meta"},
		},
	}
}

// AssetsPath is the directory holding asset source files.
func (c Config) AssetsPath() string {
	return c.resolve(c.Assets.Dir)
}

// MetaPath is the directory holding metadata files.
func (c Config) MetaPath() string {
	return c.resolve(c.Metadata.Dir)
}

func (c Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(c.Root, dir)
}

// Ignored reports whether name matches one of the importer ignore patterns.
func (c Config) Ignored(name string) bool {
	base := filepath.Base(name)
	for _, pattern := range c.Importer.Ignore {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// Validate checks values the rest of the system cannot default.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, errors.New("root is empty"))
	}
	if strings.TrimSpace(c.Assets.Dir) == "" {
		errs = append(errs, errors.New("assets.dir is empty"))
	}
	if strings.TrimSpace(c.Metadata.Dir) == "" {
		errs = append(errs, errors.New("metadata.dir is empty"))
	}
	switch c.Query.Engine {
	case EngineExpr, EngineCEL, EngineJS:
	default:
		errs = append(errs, fmt.Errorf("query.engine %q is not one of expr, cel, js", c.Query.Engine))
	}
	switch c.Logging.Mode {
	case "development", "production":
	default:
		errs = append(errs, fmt.Errorf("logging.mode %q is not development or production", c.Logging.Mode))
	}
	if c.Importer.Workers < 1 {
		errs = append(errs, fmt.Errorf("importer.workers must be positive, got %d", c.Importer.Workers))
	}
	for _, pattern := range c.Importer.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			errs = append(errs, fmt.Errorf("importer.ignore %q: %w", pattern, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
