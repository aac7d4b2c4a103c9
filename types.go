package assets

import (
	"fmt"
	"slices"
	"sync"
)

// Types holds the registered schema for every asset kind a cache can
// snapshot and restore.
type Types struct {
	mu      sync.RWMutex
	schemas map[Kind]*TypeSchema
}

// NewTypes registers schemas in order and fails on the first invalid one.
func NewTypes(schemas ...*TypeSchema) (*Types, error) {
	t := &Types{schemas: make(map[Kind]*TypeSchema, len(schemas))}
	for _, schema := range schemas {
		if err := t.Register(schema); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Register adds schema guarding against duplicate kinds.
func (t *Types) Register(schema *TypeSchema) error {
	if schema == nil {
		return fmt.Errorf("assets: schema is nil")
	}
	if schema.err != nil {
		return schema.err
	}
	if !schema.kind.Valid() {
		return fmt.Errorf("%w: schema %s", ErrUnknownKind, schema.typeName)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.schemas == nil {
		t.schemas = make(map[Kind]*TypeSchema)
	}
	if existing, ok := t.schemas[schema.kind]; ok {
		return fmt.Errorf("assets: kind %s already registered by %s", schema.kind, existing.typeName)
	}
	t.schemas[schema.kind] = schema
	return nil
}

// Lookup returns the schema registered for kind.
func (t *Types) Lookup(kind Kind) (*TypeSchema, bool) {
	if t == nil {
		return nil, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	schema, ok := t.schemas[kind]
	return schema, ok
}

func (t *Types) mustLookup(kind Kind) (*TypeSchema, error) {
	schema, ok := t.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: no schema for %s", ErrUnknownKind, kind)
	}
	return schema, nil
}

// Kinds returns registered kinds in declaration order.
func (t *Types) Kinds() []Kind {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	kinds := make([]Kind, 0, len(t.schemas))
	for kind := range t.schemas {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// New allocates a blank asset of kind.
func (t *Types) New(kind Kind) (Asset, error) {
	schema, err := t.mustLookup(kind)
	if err != nil {
		return nil, err
	}
	return schema.New(), nil
}

// Snapshot builds the persisted record of asset from its schema.
func (t *Types) Snapshot(asset Asset) (Snapshot, error) {
	if asset == nil {
		return Snapshot{}, fmt.Errorf("assets: cannot snapshot nil asset")
	}
	schema, err := t.mustLookup(asset.Kind())
	if err != nil {
		return Snapshot{}, err
	}
	return schema.build(asset)
}

// FieldDescriptor describes a persisted property and its value type, the
// shape an inspector needs to render it.
type FieldDescriptor struct {
	Path    string
	Type    string
	RefType string
	Write   bool
}

// Describe lists the persistable members of kind in declaration order.
func (t *Types) Describe(kind Kind) ([]FieldDescriptor, error) {
	schema, err := t.mustLookup(kind)
	if err != nil {
		return nil, err
	}
	members := schema.PersistableMembers()
	out := make([]FieldDescriptor, 0, len(members))
	for _, member := range members {
		out = append(out, FieldDescriptor{
			Path:    member.Name,
			Type:    member.Type.String(),
			RefType: member.RefType,
			Write:   member.Writable(),
		})
	}
	return out, nil
}
