package resources

import assets "github.com/goliatone/go-assets"

// Color is an RGB triple in the 0..1 range.
type Color [3]float64

// Material combines lighting colors, optional texture maps and a shader.
type Material struct {
	assets.Header
	Ambient     Color
	Diffuse     Color
	Specular    Color
	Shininess   float32
	AmbientTex  *Texture
	DiffuseTex  *Texture
	SpecularTex *Texture
	NormalTex   *Texture
	Shader      *Shader
}

// NewMaterial builds a material with the default white diffuse color.
func NewMaterial(path string) *Material {
	return &Material{
		Header:    assets.HeaderFromPath(assets.KindMaterial, path),
		Diffuse:   Color{1, 1, 1},
		Shininess: 32,
	}
}

func colorMember(name string, field func(*Material) *Color) assets.Member {
	return assets.Vector(name,
		func(m *Material) []float64 { c := field(m); return c[:] },
		func(m *Material, v []float64) { copy(field(m)[:], v) })
}

func textureMember(name string, field func(*Material) **Texture) assets.Member {
	return assets.Reference(name,
		func(m *Material) *Texture { return *field(m) },
		func(m *Material, t *Texture) { *field(m) = t })
}

func materialSchema() *assets.TypeSchema {
	return assets.Define(assets.KindMaterial,
		func() *Material { return &Material{} },
		colorMember("ambient", func(m *Material) *Color { return &m.Ambient }),
		colorMember("diffuse", func(m *Material) *Color { return &m.Diffuse }),
		colorMember("specular", func(m *Material) *Color { return &m.Specular }),
		assets.Float("shininess",
			func(m *Material) float32 { return m.Shininess },
			func(m *Material, v float32) { m.Shininess = v }),
		textureMember("ambientTex", func(m *Material) **Texture { return &m.AmbientTex }),
		textureMember("diffuseTex", func(m *Material) **Texture { return &m.DiffuseTex }),
		textureMember("specularTex", func(m *Material) **Texture { return &m.SpecularTex }),
		textureMember("normalTex", func(m *Material) **Texture { return &m.NormalTex }),
		assets.Reference("shader",
			func(m *Material) *Shader { return m.Shader },
			func(m *Material, s *Shader) { m.Shader = s }),
	)
}
