package decoders

import (
	"bytes"
	"context"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strings"

	assets "github.com/goliatone/go-assets"
	"github.com/goliatone/go-assets/resources"
)

var shaderStages = map[string]resources.Stage{
	".vert": resources.StageVertex,
	".frag": resources.StageFragment,
	".comp": resources.StageCompute,
	".glsl": resources.StageUnknown,
}

var scriptLanguages = map[string]resources.Language{
	".lua": resources.LanguageLua,
	".js":  resources.LanguageJavaScript,
}

// ShaderExtensions lists shader source extensions.
func ShaderExtensions() []string {
	return sortedKeys(shaderStages)
}

// ScriptExtensions lists script source extensions.
func ScriptExtensions() []string {
	return sortedKeys(scriptLanguages)
}

// #pragma stage fragment
var stagePragma = regexp.MustCompile(`(?m)^\s*#pragma\s+stage\s+(\w+)`)

// ShaderDecoder records a shader's stage and line count. A .glsl file may
// declare its stage with "#pragma stage <name>".
type ShaderDecoder struct {
	fsys fs.FS
}

func NewShaderDecoder(fsys fs.FS) *ShaderDecoder {
	return &ShaderDecoder{fsys: fsys}
}

func (d *ShaderDecoder) Decode(_ context.Context, name string) (assets.Asset, error) {
	raw, err := fs.ReadFile(d.fsys, name)
	if err != nil {
		return nil, err
	}
	stage := shaderStages[strings.ToLower(path.Ext(name))]
	if stage == resources.StageUnknown {
		if match := stagePragma.FindSubmatch(raw); match != nil {
			stage = parseStage(string(match[1]))
		}
	}
	if stage == "" {
		stage = resources.StageUnknown
	}
	shader := resources.NewShader(name, stage)
	shader.Lines = countLines(raw)
	shader.Source = string(raw)
	return shader, nil
}

func parseStage(value string) resources.Stage {
	switch resources.Stage(strings.ToLower(value)) {
	case resources.StageVertex:
		return resources.StageVertex
	case resources.StageFragment:
		return resources.StageFragment
	case resources.StageCompute:
		return resources.StageCompute
	default:
		return resources.StageUnknown
	}
}

// ScriptDecoder records a script's language and line count.
type ScriptDecoder struct {
	fsys fs.FS
}

func NewScriptDecoder(fsys fs.FS) *ScriptDecoder {
	return &ScriptDecoder{fsys: fsys}
}

func (d *ScriptDecoder) Decode(_ context.Context, name string) (assets.Asset, error) {
	raw, err := fs.ReadFile(d.fsys, name)
	if err != nil {
		return nil, err
	}
	script := resources.NewScript(name, scriptLanguages[strings.ToLower(path.Ext(name))])
	script.Lines = countLines(raw)
	return script, nil
}

func countLines(raw []byte) int {
	if len(raw) == 0 {
		return 0
	}
	lines := bytes.Count(raw, []byte{'\n'})
	if raw[len(raw)-1] != '\n' {
		lines++
	}
	return lines
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for key := range m {
		out = append(out, key)
	}
	slices.Sort(out)
	return out
}
