package resources

import assets "github.com/goliatone/go-assets"

type Language string

const (
	LanguageLua        Language = "lua"
	LanguageJavaScript Language = "javascript"
)

// Script is a gameplay script attached to scene objects by id.
type Script struct {
	assets.Header
	Language Language
	Enabled  bool
	Lines    int
}

func NewScript(path string, language Language) *Script {
	return &Script{
		Header:   assets.HeaderFromPath(assets.KindScript, path),
		Language: language,
		Enabled:  true,
	}
}

func scriptSchema() *assets.TypeSchema {
	return assets.Define(assets.KindScript,
		func() *Script { return &Script{Enabled: true} },
		assets.Enum("language",
			func(s *Script) Language { return s.Language },
			func(s *Script, v Language) { s.Language = v }),
		assets.Bool("enabled",
			func(s *Script) bool { return s.Enabled },
			func(s *Script, v bool) { s.Enabled = v }),
		assets.Int("lines",
			func(s *Script) int { return s.Lines },
			func(s *Script, v int) { s.Lines = v }),
	)
}
