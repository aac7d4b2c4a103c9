// Package resources declares the built-in asset types and their persisted
// members.
package resources

import assets "github.com/goliatone/go-assets"

// Option configures the built-in schemas.
type Option func(*config)

type config struct {
	upload  Uploader
	release func(uint32)
}

// WithTextureUploader rebuilds texture handles after restore. release, when
// set, frees a handle on eviction.
func WithTextureUploader(upload Uploader, release func(handle uint32)) Option {
	return func(cfg *config) {
		cfg.upload = upload
		cfg.release = release
	}
}

// Register adds every built-in schema to types.
func Register(types *assets.Types, opts ...Option) error {
	cfg := config{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	for _, schema := range []*assets.TypeSchema{
		textureSchema(cfg.upload, cfg.release),
		meshSchema(),
		materialSchema(),
		shaderSchema(),
		scriptSchema(),
	} {
		if err := types.Register(schema); err != nil {
			return err
		}
	}
	return nil
}

// NewTypes returns a registry holding the built-in schemas.
func NewTypes(opts ...Option) (*assets.Types, error) {
	types, err := assets.NewTypes()
	if err != nil {
		return nil, err
	}
	if err := Register(types, opts...); err != nil {
		return nil, err
	}
	return types, nil
}
