package assets

import (
	"fmt"

	"github.com/google/uuid"
)

// ID is the stable, path-independent identity of an asset.
type ID struct {
	uuid.UUID
}

// NilID is the zero identity. It never names a real asset.
var NilID = ID{}

// NewID returns a fresh random identity.
func NewID() ID {
	return ID{UUID: uuid.New()}
}

// ParseID parses the canonical text form of an identity. Braced and urn
// forms accepted by uuid.Parse are tolerated.
func ParseID(value string) (ID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return NilID, fmt.Errorf("assets: parse id %q: %w", value, err)
	}
	return ID{UUID: parsed}, nil
}

// MustParseID is ParseID for constants in tests and examples.
func MustParseID(value string) ID {
	id, err := ParseID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// IsNil reports whether id is the zero identity.
func (id ID) IsNil() bool {
	return id.UUID == uuid.Nil
}

func (id ID) MarshalText() ([]byte, error) {
	return id.UUID.MarshalText()
}

func (id *ID) UnmarshalText(data []byte) error {
	return id.UUID.UnmarshalText(data)
}
