package decoders

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"strings"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/resources"
)

// OBJDecoder counts geometry in a Wavefront OBJ file and links the first
// mtllib it names.
type OBJDecoder struct {
	fsys    fs.FS
	resolve Resolver
	cfg     linkConfig
}

func NewOBJDecoder(fsys fs.FS, resolve Resolver, opts ...Option) *OBJDecoder {
	return &OBJDecoder{fsys: fsys, resolve: resolve, cfg: applyOptions(opts)}
}

func (d *OBJDecoder) Decode(ctx context.Context, name string) (assets.Asset, error) {
	file, err := d.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	mesh := resources.NewMesh(name)
	var library string
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		keyword, rest, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		switch keyword {
		case "v":
			mesh.Vertices++
		case "f":
			if len(strings.Fields(rest)) < 3 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", line)
			}
			mesh.Faces++
		case "o":
			mesh.Objects++
		case "mtllib":
			if library == "" {
				library = strings.TrimSpace(rest)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if mesh.Objects == 0 && mesh.Vertices > 0 {
		mesh.Objects = 1
	}
	if material, ok := link[*resources.Material](d.cfg, d.resolve, name, "material", library); ok {
		mesh.Material = material
	}
	return mesh, nil
}
