package assets

import (
	"errors"

	"github.com/goliatone/go-assets/pkg/activity"
)

// Option configures a Cache.
type Option func(*cacheConfig)

type cacheConfig struct {
	index        *Index
	types        *Types
	store        MetadataStore
	logger       Logger
	activity     *activity.Emitter
	actor        string
	strictRefs   bool
	evaluator    Evaluator
	programCache ProgramCache
	functions    *FunctionRegistry
	functionErr  error
	queryLogger  QueryLogger
}

func applyOptions(opts []Option) cacheConfig {
	cfg := cacheConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.index == nil {
		cfg.index = NewIndex()
	}
	if cfg.types == nil {
		cfg.types = &Types{schemas: map[Kind]*TypeSchema{}}
	}
	if cfg.logger == nil {
		cfg.logger = noopLogger{}
	}
	if cfg.queryLogger == nil {
		cfg.queryLogger = noopQueryLogger{}
	}
	return cfg
}

// WithIndex shares an existing identity index with the cache.
func WithIndex(index *Index) Option {
	return func(cfg *cacheConfig) {
		cfg.index = index
	}
}

// WithTypes sets the schema registry used to snapshot and restore assets.
func WithTypes(types *Types) Option {
	return func(cfg *cacheConfig) {
		cfg.types = types
	}
}

// WithStore sets the metadata store. Without one, metadata operations fail
// with ErrNoStore and every uncached reference is dangling.
func WithStore(store MetadataStore) Option {
	return func(cfg *cacheConfig) {
		cfg.store = store
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger Logger) Option {
	return func(cfg *cacheConfig) {
		cfg.logger = logger
	}
}

// WithActivity routes lifecycle events through emitter. actor is recorded as
// the event actor, usually the editor user or "importer".
func WithActivity(emitter *activity.Emitter, actor string) Option {
	return func(cfg *cacheConfig) {
		cfg.activity = emitter
		cfg.actor = actor
	}
}

// WithStrictReferences makes restore fail with ErrNotFound on a reference to
// an unknown asset instead of leaving the member unset.
func WithStrictReferences() Option {
	return func(cfg *cacheConfig) {
		cfg.strictRefs = true
	}
}

// WithEvaluator replaces the default expr query engine.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *cacheConfig) {
		cfg.evaluator = e
	}
}

// WithProgramCache shares compiled query programs between calls.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *cacheConfig) {
		cfg.programCache = cache
	}
}

// WithFunctionRegistry exposes registry functions to the default query engine.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *cacheConfig) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for queries. A registration
// error is returned by the first Query.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *cacheConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		if err := cfg.functions.Register(name, fn); err != nil {
			cfg.functionErr = errors.Join(cfg.functionErr, err)
		}
	}
}

// WithQueryLogger receives one event per Query call.
func WithQueryLogger(logger QueryLogger) Option {
	return func(cfg *cacheConfig) {
		if logger == nil {
			cfg.queryLogger = noopQueryLogger{}
			return
		}
		cfg.queryLogger = logger
	}
}
