package assets

import (
	"context"
	"fmt"
	"math"
	"slices"
)

// Visibility mirrors whether a member is part of the type's public surface.
type Visibility uint8

const (
	VisibilityPublic Visibility = iota
	VisibilityPrivate
)

// Mark is an explicit serialization marker on a member.
type Mark uint8

const (
	// MarkInclude persists a member even when it is private.
	MarkInclude Mark = 1 << iota
	// MarkExclude keeps a member out of snapshots. It wins over MarkInclude.
	MarkExclude
)

// MemberOption adjusts a member declaration.
type MemberOption func(*Member)

// Private declares the member as not publicly readable. Private members are
// skipped unless also marked with Include.
func Private() MemberOption {
	return func(m *Member) {
		m.Visibility = VisibilityPrivate
	}
}

// Include opts a private member into serialization.
func Include() MemberOption {
	return func(m *Member) {
		m.Marks |= MarkInclude
	}
}

// Exclude keeps the member out of serialization regardless of other marks.
func Exclude() MemberOption {
	return func(m *Member) {
		m.Marks |= MarkExclude
	}
}

// Member describes one field of an asset type: its persisted name, the value
// variant it maps to, and accessors bound to the concrete type.
type Member struct {
	Name       string
	Type       ValueType
	Visibility Visibility
	Marks      Mark
	// RefType names the Go type a reference member accepts.
	RefType string

	get    func(Asset) (Value, bool, error)
	set    func(Asset, Value) error
	setRef func(Asset, Asset) error
}

// Persistable applies the include/exclude precedence rule.
func (m Member) Persistable() bool {
	if m.Marks&MarkExclude != 0 {
		return false
	}
	return m.Visibility == VisibilityPublic || m.Marks&MarkInclude != 0
}

// Writable reports whether restore can assign the member.
func (m Member) Writable() bool {
	if m.Type == TypeReference {
		return m.setRef != nil
	}
	return m.set != nil
}

// Read returns the current value of the member on asset. ok is false when
// the value is absent, which only happens for unset references.
func (m Member) Read(asset Asset) (Value, bool, error) {
	if m.get == nil {
		return Value{}, false, fmt.Errorf("assets: member %q has no getter", m.Name)
	}
	return m.get(asset)
}

func (m Member) assign(asset Asset, value Value) error {
	if m.set == nil {
		return nil
	}
	return m.set(asset, value)
}

func (m Member) assignRef(asset, target Asset) error {
	if m.setRef == nil {
		return nil
	}
	return m.setRef(asset, target)
}

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32
}

type float interface {
	~float32 | ~float64
}

func newMember(name string, typ ValueType, opts []MemberOption) Member {
	m := Member{Name: name, Type: typ}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

func cast[T Asset](asset Asset) (T, error) {
	typed, ok := asset.(T)
	if !ok {
		var zero T
		id := NilID
		if asset != nil {
			id = asset.ID()
		}
		return zero, &TypeMismatchError{ID: id, Want: fmt.Sprintf("%T", zero), Got: fmt.Sprintf("%T", asset)}
	}
	return typed, nil
}

// Int declares an integer member. A nil set makes the member read-only.
func Int[T Asset, N integer](name string, get func(T) N, set func(T, N), opts ...MemberOption) Member {
	m := newMember(name, TypeInt, opts)
	m.get = func(a Asset) (Value, bool, error) {
		typed, err := cast[T](a)
		if err != nil {
			return Value{}, false, err
		}
		return IntValue(int64(get(typed))), true, nil
	}
	if set != nil {
		m.set = func(a Asset, v Value) error {
			typed, err := cast[T](a)
			if err != nil {
				return err
			}
			n, err := narrowInt[N](v.Int())
			if err != nil {
				return &DecodeError{Field: name, Err: err}
			}
			set(typed, n)
			return nil
		}
	}
	return m
}

// narrowInt converts v to N, failing when it does not fit.
func narrowInt[N integer](v int64) (N, error) {
	n := N(v)
	var zero N
	unsigned := zero-1 > zero
	if int64(n) != v || (unsigned && v < 0) {
		return zero, fmt.Errorf("%d out of range for %T", v, zero)
	}
	return n, nil
}

// Float declares a floating point member.
func Float[T Asset, F float](name string, get func(T) F, set func(T, F), opts ...MemberOption) Member {
	m := newMember(name, TypeFloat, opts)
	m.get = func(a Asset) (Value, bool, error) {
		typed, err := cast[T](a)
		if err != nil {
			return Value{}, false, err
		}
		return FloatValue(float64(get(typed))), true, nil
	}
	if set != nil {
		m.set = func(a Asset, v Value) error {
			typed, err := cast[T](a)
			if err != nil {
				return err
			}
			f := F(v.Float())
			if math.IsInf(float64(f), 0) && !math.IsInf(v.Float(), 0) {
				return &DecodeError{Field: name, Err: fmt.Errorf("%g overflows %T", v.Float(), f)}
			}
			set(typed, f)
			return nil
		}
	}
	return m
}

// Bool declares a boolean member.
func Bool[T Asset](name string, get func(T) bool, set func(T, bool), opts ...MemberOption) Member {
	m := newMember(name, TypeBool, opts)
	m.get = func(a Asset) (Value, bool, error) {
		typed, err := cast[T](a)
		if err != nil {
			return Value{}, false, err
		}
		return BoolValue(get(typed)), true, nil
	}
	if set != nil {
		m.set = func(a Asset, v Value) error {
			typed, err := cast[T](a)
			if err != nil {
				return err
			}
			set(typed, v.Bool())
			return nil
		}
	}
	return m
}

// String declares a string member.
func String[T Asset](name string, get func(T) string, set func(T, string), opts ...MemberOption) Member {
	m := newMember(name, TypeString, opts)
	m.get = func(a Asset) (Value, bool, error) {
		typed, err := cast[T](a)
		if err != nil {
			return Value{}, false, err
		}
		return StringValue(get(typed)), true, nil
	}
	if set != nil {
		m.set = func(a Asset, v Value) error {
			typed, err := cast[T](a)
			if err != nil {
				return err
			}
			set(typed, v.Str())
			return nil
		}
	}
	return m
}

// Enum declares a member backed by a named string type.
func Enum[T Asset, E ~string](name string, get func(T) E, set func(T, E), opts ...MemberOption) Member {
	m := newMember(name, TypeEnum, opts)
	m.get = func(a Asset) (Value, bool, error) {
		typed, err := cast[T](a)
		if err != nil {
			return Value{}, false, err
		}
		return EnumValue(string(get(typed))), true, nil
	}
	if set != nil {
		m.set = func(a Asset, v Value) error {
			typed, err := cast[T](a)
			if err != nil {
				return err
			}
			set(typed, E(v.Str()))
			return nil
		}
	}
	return m
}

// Vector declares a fixed or variable length numeric vector member.
func Vector[T Asset](name string, get func(T) []float64, set func(T, []float64), opts ...MemberOption) Member {
	m := newMember(name, TypeVector, opts)
	m.get = func(a Asset) (Value, bool, error) {
		typed, err := cast[T](a)
		if err != nil {
			return Value{}, false, err
		}
		return VectorValue(get(typed)...), true, nil
	}
	if set != nil {
		m.set = func(a Asset, v Value) error {
			typed, err := cast[T](a)
			if err != nil {
				return err
			}
			set(typed, v.Vector())
			return nil
		}
	}
	return m
}

// Reference declares a member pointing at another asset. Snapshots store the
// target's id; restore resolves it through the cache.
func Reference[T Asset, R Asset](name string, get func(T) R, set func(T, R), opts ...MemberOption) Member {
	m := newMember(name, TypeReference, opts)
	var zero R
	m.RefType = fmt.Sprintf("%T", zero)
	m.get = func(a Asset) (Value, bool, error) {
		typed, err := cast[T](a)
		if err != nil {
			return Value{}, false, err
		}
		target := get(typed)
		if any(target) == any(zero) {
			return Value{}, false, nil
		}
		return ReferenceValue(target.ID()), true, nil
	}
	if set != nil {
		m.setRef = func(a, target Asset) error {
			typed, err := cast[T](a)
			if err != nil {
				return err
			}
			ref, err := cast[R](target)
			if err != nil {
				return err
			}
			set(typed, ref)
			return nil
		}
	}
	return m
}

// TypeSchema is the static registration of one asset type: its kind, a
// factory for blank instances and its ordered member list.
type TypeSchema struct {
	kind      Kind
	typeName  string
	factory   func() Asset
	members   []Member
	onRestore func(context.Context, Asset) error
	err       error
}

// Define registers the members of an asset type. Declaration problems
// (duplicate or empty names) surface when the schema is added to Types.
func Define[T Asset](kind Kind, factory func() T, members ...Member) *TypeSchema {
	var zero T
	schema := &TypeSchema{
		kind:     kind,
		typeName: fmt.Sprintf("%T", zero),
		members:  slices.Clone(members),
	}
	if factory == nil {
		schema.err = fmt.Errorf("assets: schema %s has no factory", kind)
	} else {
		schema.factory = func() Asset { return factory() }
	}
	seen := make(map[string]struct{}, len(members))
	for _, member := range members {
		if member.Name == "" {
			schema.err = fmt.Errorf("assets: schema %s declares a member without name", kind)
			break
		}
		if _, ok := seen[member.Name]; ok {
			schema.err = fmt.Errorf("assets: schema %s declares member %q twice", kind, member.Name)
			break
		}
		seen[member.Name] = struct{}{}
	}
	return schema
}

// OnRestore installs a hook run after a restored asset has all members set.
// It rebuilds runtime-only state such as GPU handles.
func (s *TypeSchema) OnRestore(fn func(ctx context.Context, asset Asset) error) *TypeSchema {
	s.onRestore = fn
	return s
}

func (s *TypeSchema) Kind() Kind       { return s.kind }
func (s *TypeSchema) TypeName() string { return s.typeName }

// Members returns every declared member, persistable or not.
func (s *TypeSchema) Members() []Member {
	return slices.Clone(s.members)
}

// PersistableMembers returns the members that take part in snapshots, in
// declaration order.
func (s *TypeSchema) PersistableMembers() []Member {
	out := make([]Member, 0, len(s.members))
	for _, member := range s.members {
		if member.Persistable() {
			out = append(out, member)
		}
	}
	return out
}

// Member looks up a declared member by name.
func (s *TypeSchema) Member(name string) (Member, bool) {
	for _, member := range s.members {
		if member.Name == name {
			return member, true
		}
	}
	return Member{}, false
}

// New allocates a blank instance with an empty header.
func (s *TypeSchema) New() Asset {
	return s.factory()
}
