package resources

import assets "github.com/goliatone/go-assets"

// Mesh is a model asset. Counts are recorded at import time so the editor
// can show them without parsing the model again.
type Mesh struct {
	assets.Header
	Vertices int
	Faces    int
	Objects  int
	Material *Material
}

func NewMesh(path string) *Mesh {
	return &Mesh{Header: assets.HeaderFromPath(assets.KindMesh, path)}
}

func meshSchema() *assets.TypeSchema {
	return assets.Define(assets.KindMesh,
		func() *Mesh { return &Mesh{} },
		assets.Int("vertices",
			func(m *Mesh) int { return m.Vertices },
			func(m *Mesh, v int) { m.Vertices = v }),
		assets.Int("faces",
			func(m *Mesh) int { return m.Faces },
			func(m *Mesh, v int) { m.Faces = v }),
		assets.Int("objects",
			func(m *Mesh) int { return m.Objects },
			func(m *Mesh, v int) { m.Objects = v }),
		assets.Reference("material",
			func(m *Mesh) *Material { return m.Material },
			func(m *Mesh, v *Material) { m.Material = v }),
	)
}
