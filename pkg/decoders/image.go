package decoders

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/resources"
)

// ImageExtensions lists the formats the image decoder understands.
func ImageExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}
}

// ImageDecoder reads image dimensions and a content checksum. Pixel data is
// left to the texture uploader.
type ImageDecoder struct {
	fsys fs.FS
}

func NewImageDecoder(fsys fs.FS) *ImageDecoder {
	return &ImageDecoder{fsys: fsys}
}

func (d *ImageDecoder) Decode(_ context.Context, name string) (assets.Asset, error) {
	raw, err := fs.ReadFile(d.fsys, name)
	if err != nil {
		return nil, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("read image header: %w", err)
	}
	sum := sha256.Sum256(raw)

	texture := resources.NewTexture(name, cfg.Width, cfg.Height)
	texture.Checksum = hex.EncodeToString(sum[:])
	texture.DebugLabel = format
	if isNormalMap(name) {
		texture.TextureType = resources.TextureTypeNormal
	}
	return texture, nil
}

func isNormalMap(name string) bool {
	base := strings.ToLower(strings.TrimSuffix(path.Base(name), path.Ext(name)))
	return strings.HasSuffix(base, "_normal") || strings.HasSuffix(base, "_n")
}
