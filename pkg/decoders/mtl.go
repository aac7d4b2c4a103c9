package decoders

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/resources"
)

// MTLDecoder reads the first material of a Wavefront MTL library.
type MTLDecoder struct {
	fsys    fs.FS
	resolve Resolver
	cfg     linkConfig
}

func NewMTLDecoder(fsys fs.FS, resolve Resolver, opts ...Option) *MTLDecoder {
	return &MTLDecoder{fsys: fsys, resolve: resolve, cfg: applyOptions(opts)}
}

func (d *MTLDecoder) Decode(_ context.Context, name string) (assets.Asset, error) {
	file, err := d.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	material := resources.NewMaterial(name)
	materials := 0
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			materials++
			continue
		}
		if materials > 1 {
			break
		}
		switch fields[0] {
		case "Ka":
			material.Ambient, err = parseColor(fields[1:])
		case "Kd":
			material.Diffuse, err = parseColor(fields[1:])
		case "Ks":
			material.Specular, err = parseColor(fields[1:])
		case "Ns":
			material.Shininess, err = parseShininess(fields[1:])
		case "map_Ka":
			material.AmbientTex = d.texture(name, "ambientTex", fields)
		case "map_Kd":
			material.DiffuseTex = d.texture(name, "diffuseTex", fields)
		case "map_Ks":
			material.SpecularTex = d.texture(name, "specularTex", fields)
		case "map_Bump", "map_bump", "bump", "norm":
			material.NormalTex = d.texture(name, "normalTex", fields)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return material, nil
}

func (d *MTLDecoder) texture(owner, member string, fields []string) *resources.Texture {
	texture, _ := link[*resources.Texture](d.cfg, d.resolve, owner, member, lastField(fields))
	return texture
}

func lastField(fields []string) string {
	if len(fields) < 2 {
		return ""
	}
	return fields[len(fields)-1]
}

func parseColor(fields []string) (resources.Color, error) {
	var color resources.Color
	if len(fields) < 3 {
		return color, fmt.Errorf("color needs 3 components, got %d", len(fields))
	}
	for i := range color {
		value, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return color, err
		}
		color[i] = value
	}
	return color, nil
}

func parseShininess(fields []string) (float32, error) {
	if len(fields) == 0 {
		return 0, fmt.Errorf("shininess needs a value")
	}
	value, err := strconv.ParseFloat(fields[0], 32)
	return float32(value), err
}
