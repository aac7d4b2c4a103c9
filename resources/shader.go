package resources

import assets "github.com/goliatone/go-assets"

// Stage is the pipeline stage a shader source targets.
type Stage string

const (
	StageVertex   Stage = "vertex"
	StageFragment Stage = "fragment"
	StageCompute  Stage = "compute"
	StageUnknown  Stage = "unknown"
)

// Shader is a shader source asset. Source is loaded on demand and never
// persisted.
type Shader struct {
	assets.Header
	Stage      Stage
	EntryPoint string
	Lines      int
	Source     string
}

func NewShader(path string, stage Stage) *Shader {
	return &Shader{
		Header:     assets.HeaderFromPath(assets.KindShader, path),
		Stage:      stage,
		EntryPoint: "main",
	}
}

func shaderSchema() *assets.TypeSchema {
	return assets.Define(assets.KindShader,
		func() *Shader { return &Shader{Stage: StageUnknown, EntryPoint: "main"} },
		assets.Enum("stage",
			func(s *Shader) Stage { return s.Stage },
			func(s *Shader, v Stage) { s.Stage = v }),
		assets.String("entryPoint",
			func(s *Shader) string { return s.EntryPoint },
			func(s *Shader, v string) { s.EntryPoint = v }),
		assets.Int("lines",
			func(s *Shader) int { return s.Lines },
			func(s *Shader, v int) { s.Lines = v }),
		assets.String("source",
			func(s *Shader) string { return s.Source },
			func(s *Shader, v string) { s.Source = v },
			assets.Exclude()),
	)
}
