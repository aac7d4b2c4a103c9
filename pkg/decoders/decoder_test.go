package decoders

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/resources"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	img.Set(0, 0, color.RGBA{R: 200, G: 120, B: 40, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestRegistryDispatchByExtension(t *testing.T) {
	fsys := fstest.MapFS{
		"Assets/wood.png":     {Data: pngBytes(t, 16, 8)},
		"Assets/lit.frag":     {Data: []byte("void main() {\n}\n")},
		"Assets/player.lua":   {Data: []byte("local x = 1\nreturn x")},
		"Assets/readme.txt":   {Data: []byte("hello")},
		"Assets/UPPER.PNG":    {Data: pngBytes(t, 2, 2)},
		"Assets/shared.glsl":  {Data: []byte("#pragma stage vertex\nvoid main() {}\n")},
		"Assets/unknown.glsl": {Data: []byte("void main() {}\n")},
	}
	registry, err := Default(fsys, nil)
	if err != nil {
		t.Fatalf("default registry: %v", err)
	}

	ctx := context.Background()
	asset, err := registry.Decode(ctx, "Assets/wood.png")
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	texture, ok := asset.(*resources.Texture)
	if !ok {
		t.Fatalf("expected texture, got %T", asset)
	}
	if texture.Width != 16 || texture.Height != 8 {
		t.Fatalf("unexpected dimensions %dx%d", texture.Width, texture.Height)
	}
	if texture.Name() != "wood" || texture.FilePath() != "Assets/wood.png" {
		t.Fatalf("unexpected header %q %q", texture.Name(), texture.FilePath())
	}
	if len(texture.Checksum) != 64 || texture.DebugLabel != "png" {
		t.Fatalf("unexpected checksum/format %q %q", texture.Checksum, texture.DebugLabel)
	}
	if texture.ID().IsNil() {
		t.Fatalf("expected fresh id")
	}

	if _, err := registry.Decode(ctx, "Assets/UPPER.PNG"); err != nil {
		t.Fatalf("expected case-insensitive extension match: %v", err)
	}

	asset, err = registry.Decode(ctx, "Assets/lit.frag")
	if err != nil {
		t.Fatalf("decode shader: %v", err)
	}
	shader := asset.(*resources.Shader)
	if shader.Stage != resources.StageFragment || shader.Lines != 2 {
		t.Fatalf("unexpected shader %+v", shader)
	}

	asset, err = registry.Decode(ctx, "Assets/shared.glsl")
	if err != nil {
		t.Fatalf("decode glsl: %v", err)
	}
	if stage := asset.(*resources.Shader).Stage; stage != resources.StageVertex {
		t.Fatalf("expected pragma stage vertex, got %s", stage)
	}
	asset, _ = registry.Decode(ctx, "Assets/unknown.glsl")
	if stage := asset.(*resources.Shader).Stage; stage != resources.StageUnknown {
		t.Fatalf("expected unknown stage, got %s", stage)
	}

	asset, err = registry.Decode(ctx, "Assets/player.lua")
	if err != nil {
		t.Fatalf("decode script: %v", err)
	}
	script := asset.(*resources.Script)
	if script.Language != resources.LanguageLua || script.Lines != 2 || !script.Enabled {
		t.Fatalf("unexpected script %+v", script)
	}

	if _, err := registry.Decode(ctx, "Assets/readme.txt"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestRegistryRejectsDuplicateExtension(t *testing.T) {
	registry := NewRegistry()
	noop := DecoderFunc(func(context.Context, string) (assets.Asset, error) { return nil, nil })
	if err := registry.Register(assets.KindScript, noop, "py"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(assets.KindScript, noop, ".PY"); err == nil {
		t.Fatalf("expected duplicate extension error")
	}
	if err := registry.Register(assets.KindUnknown, noop, ".rb"); !errors.Is(err, assets.ErrUnknownKind) {
		t.Fatalf("expected unknown kind error, got %v", err)
	}
	if got := registry.Extensions(); len(got) != 1 || got[0] != ".py" {
		t.Fatalf("unexpected extensions %v", got)
	}
}

func TestImageDecoderRejectsCorruptFile(t *testing.T) {
	fsys := fstest.MapFS{"Assets/broken.png": {Data: []byte("not a png")}}
	if _, err := NewImageDecoder(fsys).Decode(context.Background(), "Assets/broken.png"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestNormalMapDetection(t *testing.T) {
	fsys := fstest.MapFS{"Assets/brick_normal.png": {Data: pngBytes(t, 4, 4)}}
	asset, err := NewImageDecoder(fsys).Decode(context.Background(), "Assets/brick_normal.png")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if kind := asset.(*resources.Texture).TextureType; kind != resources.TextureTypeNormal {
		t.Fatalf("expected normal map, got %s", kind)
	}
}

func TestCountLines(t *testing.T) {
	cases := map[string]int{"": 0, "a": 1, "a\n": 1, "a\nb": 2, "a\nb\n\n": 3}
	for input, want := range cases {
		if got := countLines([]byte(input)); got != want {
			t.Fatalf("countLines(%q) = %d, want %d", input, got, want)
		}
	}
}
