// Package decoders turns source files into freshly identified assets. Paths
// are slash-separated and relative to the file system a decoder reads from;
// the same path is recorded as the asset's FilePath.
package decoders

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	assets "github.com/goliatone/go-assets"
)

// ErrUnsupported is returned for files with no registered decoder.
var ErrUnsupported = errors.New("decoders: unsupported file type")

// Decoder builds a new asset from the file at path.
type Decoder interface {
	Decode(ctx context.Context, path string) (assets.Asset, error)
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(ctx context.Context, path string) (assets.Asset, error)

func (f DecoderFunc) Decode(ctx context.Context, path string) (assets.Asset, error) {
	return f(ctx, path)
}

// Resolver finds an already known asset by file path. Decoders use it to
// link references such as a material's texture maps.
type Resolver func(path string) (assets.Asset, bool)

type entry struct {
	kind    assets.Kind
	decoder Decoder
}

// Registry maps file extensions to decoders.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: map[string]entry{}}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Register binds decoder to every extension. An extension may only be bound
// once.
func (r *Registry) Register(kind assets.Kind, decoder Decoder, extensions ...string) error {
	if decoder == nil {
		return fmt.Errorf("decoders: decoder for %s is nil", kind)
	}
	if !kind.Valid() {
		return fmt.Errorf("decoders: %w", assets.ErrUnknownKind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range extensions {
		key := normalizeExt(ext)
		if key == "" {
			return fmt.Errorf("decoders: empty extension for %s", kind)
		}
		if _, exists := r.entries[key]; exists {
			return fmt.Errorf("decoders: extension %s already registered", key)
		}
	}
	for _, ext := range extensions {
		r.entries[normalizeExt(ext)] = entry{kind: kind, decoder: decoder}
	}
	return nil
}

// Lookup returns the decoder for path's extension and the kind it produces.
func (r *Registry) Lookup(name string) (Decoder, assets.Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[normalizeExt(path.Ext(name))]
	return e.decoder, e.kind, ok
}

// Supports reports whether a decoder is registered for path.
func (r *Registry) Supports(name string) bool {
	_, _, ok := r.Lookup(name)
	return ok
}

// Extensions lists registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.entries))
	for ext := range r.entries {
		out = append(out, ext)
	}
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Decode dispatches to the decoder registered for path.
func (r *Registry) Decode(ctx context.Context, name string) (assets.Asset, error) {
	decoder, _, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	asset, err := decoder.Decode(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("decoders: %s: %w", name, err)
	}
	return asset, nil
}

// Option configures the decoders that link references.
type Option func(*linkConfig)

type linkConfig struct {
	logger assets.Logger
}

// WithLogger reports references that could not be linked.
func WithLogger(logger assets.Logger) Option {
	return func(cfg *linkConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

func applyOptions(opts []Option) linkConfig {
	cfg := linkConfig{logger: assets.NopLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Default registers every built-in decoder reading from fsys. resolve may be
// nil, in which case references are left empty.
func Default(fsys fs.FS, resolve Resolver, opts ...Option) (*Registry, error) {
	registry := NewRegistry()
	err := errors.Join(
		registry.Register(assets.KindTexture, NewImageDecoder(fsys), ImageExtensions()...),
		registry.Register(assets.KindMesh, NewOBJDecoder(fsys, resolve, opts...), ".obj"),
		registry.Register(assets.KindMaterial, NewMTLDecoder(fsys, resolve, opts...), ".mtl"),
		registry.Register(assets.KindShader, NewShaderDecoder(fsys), ShaderExtensions()...),
		registry.Register(assets.KindScript, NewScriptDecoder(fsys), ScriptExtensions()...),
	)
	if err != nil {
		return nil, err
	}
	return registry, nil
}

// link looks up a sibling path relative to the directory of owner. A named
// target that is missing or of another type is logged and left empty, the
// same way a dangling reference is skipped on restore.
func link[T assets.Asset](cfg linkConfig, resolve Resolver, owner, member, relative string) (T, bool) {
	var zero T
	if resolve == nil || relative == "" {
		return zero, false
	}
	target := path.Join(path.Dir(owner), strings.ReplaceAll(relative, "\\", "/"))
	asset, ok := resolve(target)
	if !ok {
		cfg.logger.Warn("reference not resolved", "path", owner, "member", member, "target", target)
		return zero, false
	}
	typed, ok := asset.(T)
	if !ok {
		cfg.logger.Warn("reference has unexpected kind", "path", owner, "member", member, "target", target, "kind", asset.Kind())
	}
	return typed, ok
}
