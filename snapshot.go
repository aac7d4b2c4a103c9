package assets

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// Snapshot is the durable, type-erased record of an asset's persistable
// state. Properties hold one encoded value per persistable member.
type Snapshot struct {
	ID         ID                `json:"id"`
	Kind       Kind              `json:"kind"`
	Name       string            `json:"name"`
	FilePath   string            `json:"filePath"`
	Properties map[string]string `json:"properties"`
}

// Property decodes a single property according to typ. ok is false when the
// property is not present.
func (s Snapshot) Property(name string, typ ValueType) (Value, bool, error) {
	raw, ok := s.Properties[name]
	if !ok {
		return Value{}, false, nil
	}
	value, err := DecodeValue(typ, raw)
	if err != nil {
		return Value{}, true, wrapDecodeError("", name, err)
	}
	return value, true, nil
}

// Equal compares header slots and every property.
func (s Snapshot) Equal(other Snapshot) bool {
	return s.ID == other.ID &&
		s.Kind == other.Kind &&
		s.Name == other.Name &&
		s.FilePath == other.FilePath &&
		maps.Equal(s.Properties, other.Properties)
}

// Clone returns a copy that does not share the properties map.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Properties = maps.Clone(s.Properties)
	if out.Properties == nil {
		out.Properties = map[string]string{}
	}
	return out
}

// Validate checks the header slots required to restore the snapshot.
func (s Snapshot) Validate() error {
	if s.ID.IsNil() {
		return errors.New("snapshot id is empty")
	}
	if !s.Kind.Valid() {
		return fmt.Errorf("snapshot %s has invalid kind", s.ID)
	}
	return nil
}

// build walks the persistable members of asset and encodes their values.
// Absent values are skipped.
func (s *TypeSchema) build(asset Asset) (Snapshot, error) {
	if asset.Kind() != s.kind {
		return Snapshot{}, fmt.Errorf("assets: asset %s is %s, schema is %s", asset.ID(), asset.Kind(), s.kind)
	}
	snapshot := Snapshot{
		ID:         asset.ID(),
		Kind:       asset.Kind(),
		Name:       asset.Name(),
		FilePath:   asset.FilePath(),
		Properties: map[string]string{},
	}
	for _, member := range s.PersistableMembers() {
		value, ok, err := member.Read(asset)
		if err != nil {
			return Snapshot{}, fmt.Errorf("assets: read member %q of %s: %w", member.Name, asset.ID(), err)
		}
		if !ok {
			continue
		}
		encoded, err := value.Encode()
		if err != nil {
			return Snapshot{}, fmt.Errorf("assets: encode member %q of %s: %w", member.Name, asset.ID(), err)
		}
		snapshot.Properties[member.Name] = encoded
	}
	return snapshot, nil
}

// referenceResolver returns the asset a reference member of owner points at.
// A nil asset with a nil error leaves the member unassigned.
type referenceResolver func(ctx context.Context, owner Asset, member Member, id ID) (Asset, error)

// restore allocates a blank instance, sets the header from snapshot, then
// assigns every persistable writable member present in the properties.
func (s *TypeSchema) restore(ctx context.Context, snapshot Snapshot, resolve referenceResolver) (Asset, error) {
	if snapshot.Kind != s.kind {
		return nil, fmt.Errorf("assets: snapshot %s is %s, schema is %s", snapshot.ID, snapshot.Kind, s.kind)
	}
	asset := s.New()
	asset.header().restore(snapshot)

	for _, member := range s.PersistableMembers() {
		if !member.Writable() {
			continue
		}
		value, ok, err := snapshot.Property(member.Name, member.Type)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if member.Type != TypeReference {
			if err := member.assign(asset, value); err != nil {
				if errors.Is(err, ErrDecode) {
					return nil, wrapDecodeError(snapshot.FilePath, member.Name, err)
				}
				return nil, fmt.Errorf("assets: assign member %q of %s: %w", member.Name, snapshot.ID, err)
			}
			continue
		}
		target, err := resolve(ctx, asset, member, value.Reference())
		if err != nil {
			return nil, err
		}
		if target == nil {
			continue
		}
		if err := member.assignRef(asset, target); err != nil {
			return nil, fmt.Errorf("assets: assign reference %q of %s: %w", member.Name, snapshot.ID, err)
		}
	}

	if s.onRestore != nil {
		if err := s.onRestore(ctx, asset); err != nil {
			return nil, fmt.Errorf("assets: restore hook for %s: %w", snapshot.ID, err)
		}
	}
	return asset, nil
}
