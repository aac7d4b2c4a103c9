package assets

import (
	"fmt"
	"strings"
)

// Kind classifies an asset. The set is closed; new asset types pick one of
// these and register a TypeSchema for it.
type Kind int

const (
	KindUnknown Kind = iota
	KindTexture
	KindMesh
	KindMaterial
	KindShader
	KindScript
)

var kindNames = map[Kind]string{
	KindTexture:  "Texture",
	KindMesh:     "Mesh",
	KindMaterial: "Material",
	KindShader:   "Shader",
	KindScript:   "Script",
}

// AllKinds lists the known kinds in declaration order.
func AllKinds() []Kind {
	return []Kind{KindTexture, KindMesh, KindMaterial, KindShader, KindScript}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind converts a kind name, ignoring case.
func ParseKind(value string) (Kind, error) {
	value = strings.TrimSpace(value)
	for kind, name := range kindNames {
		if strings.EqualFold(name, value) {
			return kind, nil
		}
	}
	return KindUnknown, fmt.Errorf("%w: %q", ErrUnknownKind, value)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(data []byte) error {
	parsed, err := ParseKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
