package resources

import (
	"context"

	assets "github.com/goliatone/go-assets"
)

// TextureType mirrors how a texture is sampled by materials.
type TextureType string

const (
	TextureTypeTexture  TextureType = "Texture"
	TextureTypeMultiple TextureType = "MultipleTexture"
	TextureTypeNormal   TextureType = "NormalMap"
)

// Uploader creates the runtime handle for a texture, typically a GPU upload.
type Uploader func(ctx context.Context, texture *Texture) (uint32, error)

// Texture is an image asset. Handle is runtime state and is rebuilt by the
// uploader after restore.
type Texture struct {
	assets.Header
	Width       int
	Height      int
	Smooth      bool
	Repeat      bool
	TextureType TextureType
	Checksum    string
	Handle      uint32
	DebugLabel  string

	release func(uint32)
}

// NewTexture builds a texture with a fresh id. The name is taken from path.
func NewTexture(path string, width, height int) *Texture {
	return &Texture{
		Header:      assets.HeaderFromPath(assets.KindTexture, path),
		Width:       width,
		Height:      height,
		Smooth:      true,
		TextureType: TextureTypeTexture,
	}
}

// Release drops the runtime handle.
func (t *Texture) Release() {
	if t.Handle != 0 && t.release != nil {
		t.release(t.Handle)
	}
	t.Handle = 0
}

func textureSchema(upload Uploader, release func(uint32)) *assets.TypeSchema {
	schema := assets.Define(assets.KindTexture,
		func() *Texture { return &Texture{TextureType: TextureTypeTexture, release: release} },
		assets.Int("width",
			func(t *Texture) int { return t.Width },
			func(t *Texture, v int) { t.Width = v }),
		assets.Int("height",
			func(t *Texture) int { return t.Height },
			func(t *Texture, v int) { t.Height = v }),
		assets.Bool("smooth",
			func(t *Texture) bool { return t.Smooth },
			func(t *Texture, v bool) { t.Smooth = v }),
		assets.Bool("repeat",
			func(t *Texture) bool { return t.Repeat },
			func(t *Texture, v bool) { t.Repeat = v }),
		assets.Enum("textureType",
			func(t *Texture) TextureType { return t.TextureType },
			func(t *Texture, v TextureType) { t.TextureType = v }),
		assets.String("checksum",
			func(t *Texture) string { return t.Checksum },
			func(t *Texture, v string) { t.Checksum = v },
			assets.Private(), assets.Include()),
		assets.Int("handle",
			func(t *Texture) uint32 { return t.Handle },
			nil,
			assets.Exclude()),
		assets.String("debugLabel",
			func(t *Texture) string { return t.DebugLabel },
			func(t *Texture, v string) { t.DebugLabel = v },
			assets.Private()),
	)
	if upload == nil {
		return schema
	}
	return schema.OnRestore(func(ctx context.Context, asset assets.Asset) error {
		texture := asset.(*Texture)
		handle, err := upload(ctx, texture)
		if err != nil {
			return err
		}
		texture.Handle = handle
		return nil
	})
}
