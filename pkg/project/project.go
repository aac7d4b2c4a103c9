// Package project wires a configured asset cache for one project root: the
// resolved configuration, logger, schemas, metadata store, decoders and
// importer.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/pkg/activity"
	"github.com/goliatone/go-assets/pkg/config"
	"github.com/goliatone/go-assets/pkg/decoders"
	"github.com/goliatone/go-assets/pkg/importer"
	"github.com/goliatone/go-assets/pkg/logging"
	"github.com/goliatone/go-assets/pkg/state"
	"github.com/goliatone/go-assets/resources"
)

// Option customises Open.
type Option func(*options)

type options struct {
	config    []config.Option
	logger    *logging.Logger
	hooks     activity.Hooks
	resources []resources.Option
	cache     []assets.Option
	functions *assets.FunctionRegistry
}

// WithConfigOptions forwards options to config.Load.
func WithConfigOptions(opts ...config.Option) Option {
	return func(o *options) {
		o.config = append(o.config, opts...)
	}
}

// WithLogger replaces the logger built from the logging configuration.
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHooks adds activity hooks. Events are only emitted when activity is
// enabled in the configuration.
func WithHooks(hooks ...activity.ActivityHook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithResourceOptions forwards options to the built-in schemas, for example
// a texture uploader.
func WithResourceOptions(opts ...resources.Option) Option {
	return func(o *options) {
		o.resources = append(o.resources, opts...)
	}
}

// WithFunctions exposes registry functions to queries through call(name, ...).
func WithFunctions(registry *assets.FunctionRegistry) Option {
	return func(o *options) {
		o.functions = registry
	}
}

// WithCacheOptions appends cache options after the configured ones, so they
// take precedence.
func WithCacheOptions(opts ...assets.Option) Option {
	return func(o *options) {
		o.cache = append(o.cache, opts...)
	}
}

// Project owns every collaborator for one root. There is no process-wide
// state; two projects never share a cache.
type Project struct {
	Config   config.Config
	Loaded   *config.Loaded
	Logger   *logging.Logger
	Types    *assets.Types
	Store    *state.FileStore
	Cache    *assets.Cache
	Decoders *decoders.Registry
	Importer *importer.Importer

	ownsLogger bool
}

// Open resolves configuration for root and builds the cache. It does not
// touch asset files; call Scan for that.
func Open(root string, opts ...Option) (*Project, error) {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	loaded, err := config.Load(root, o.config...)
	if err != nil {
		return nil, err
	}
	cfg := loaded.Config

	p := &Project{Config: cfg, Loaded: loaded, Logger: o.logger}
	if p.Logger == nil {
		p.Logger, err = logging.New(cfg.Logging.Mode, cfg.Logging.Level)
		if err != nil {
			return nil, err
		}
		p.ownsLogger = true
	}
	logger := p.Logger.With("root", cfg.Root)

	p.Types, err = resources.NewTypes(o.resources...)
	if err != nil {
		return nil, err
	}
	storeOpts := []state.FileStoreOption{state.WithLogger(logger)}
	if cfg.Metadata.Strict {
		storeOpts = append(storeOpts, state.WithStrictDocuments())
	}
	p.Store = state.NewFileStore(cfg.MetaPath(), storeOpts...)

	evaluator, err := evaluatorFor(cfg.Query.Engine, o.functions)
	if err != nil {
		return nil, err
	}
	emitter := activity.NewEmitter(o.hooks, activity.Config{
		Enabled: cfg.Activity.Enabled,
		Channel: cfg.Activity.Channel,
	})
	cacheOpts := []assets.Option{
		assets.WithTypes(p.Types),
		assets.WithStore(p.Store),
		assets.WithLogger(logger),
		assets.WithQueryLogger(logger),
		assets.WithActivity(emitter, cfg.Activity.Actor),
		assets.WithEvaluator(evaluator),
	}
	if cfg.Metadata.Strict {
		cacheOpts = append(cacheOpts, assets.WithStrictReferences())
	}
	p.Cache = assets.NewCache(append(cacheOpts, o.cache...)...)

	fsys := os.DirFS(cfg.Root)
	p.Decoders, err = decoders.Default(fsys, importer.CacheResolver(p.Cache), decoders.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	p.Importer = importer.New(p.Cache, p.Store, fsys, p.Decoders,
		importer.WithDir(cfg.Assets.Dir),
		importer.WithWorkers(cfg.Importer.Workers),
		importer.WithIgnore(cfg.Ignored),
		importer.WithLogger(logger),
	)

	logger.Info("project opened",
		"assets", cfg.AssetsPath(),
		"meta", cfg.MetaPath(),
		"engine", cfg.Query.Engine,
		"strict", cfg.Metadata.Strict)
	return p, nil
}

// Scan restores persisted assets and imports new ones.
func (p *Project) Scan(ctx context.Context) (*importer.Report, error) {
	return p.Importer.Scan(ctx)
}

// Query runs expression with the configured engine.
func (p *Project) Query(ctx context.Context, expression string) ([]assets.Asset, error) {
	return p.Cache.Query(ctx, expression)
}

// Close releases cached assets and flushes the logger.
func (p *Project) Close() error {
	if p == nil {
		return nil
	}
	for _, id := range p.Cache.IDs() {
		p.Cache.Evict(id)
	}
	if p.ownsLogger {
		p.Logger.Sync()
	}
	return nil
}

// ErrEngineUnavailable reports a configured query engine missing from the
// build.
var ErrEngineUnavailable = errors.New("project: query engine unavailable")

func evaluatorFor(engine string, functions *assets.FunctionRegistry) (assets.Evaluator, error) {
	programs := assets.NewMemoryProgramCache()
	switch engine {
	case config.EngineExpr, "":
		opts := []assets.ExprEvaluatorOption{assets.ExprWithProgramCache(programs)}
		if functions != nil {
			opts = append(opts, assets.ExprWithFunctionRegistry(functions))
		}
		return assets.NewExprEvaluator(opts...), nil
	case config.EngineCEL:
		opts := []assets.CELEvaluatorOption{assets.CELWithProgramCache(programs)}
		if functions != nil {
			opts = append(opts, assets.CELWithFunctionRegistry(functions))
		}
		return assets.NewCELEvaluator(opts...), nil
	case config.EngineJS:
		opts := []assets.JSEvaluatorOption{assets.JSWithProgramCache(programs)}
		if functions != nil {
			opts = append(opts, assets.JSWithFunctionRegistry(functions))
		}
		if evaluator := assets.NewJSEvaluator(opts...); evaluator != nil {
			return evaluator, nil
		}
		return nil, fmt.Errorf("%w: %s (build with -tags js_eval)", ErrEngineUnavailable, engine)
	default:
		return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, engine)
	}
}
