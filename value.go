package assets

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ValueType tags the variant held by a Value.
type ValueType uint8

const (
	TypeInvalid ValueType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeVector
	TypeEnum
	TypeReference
)

func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeVector:
		return "vector"
	case TypeEnum:
		return "enum"
	case TypeReference:
		return "reference"
	default:
		return "invalid"
	}
}

// Value is one persisted member value. Exactly one payload is meaningful,
// selected by Type.
type Value struct {
	typ ValueType
	b   bool
	i   int64
	f   float64
	s   string
	vec []float64
	ref ID
}

func BoolValue(v bool) Value         { return Value{typ: TypeBool, b: v} }
func IntValue(v int64) Value         { return Value{typ: TypeInt, i: v} }
func FloatValue(v float64) Value     { return Value{typ: TypeFloat, f: v} }
func StringValue(v string) Value     { return Value{typ: TypeString, s: v} }
func EnumValue(v string) Value       { return Value{typ: TypeEnum, s: v} }
func ReferenceValue(id ID) Value     { return Value{typ: TypeReference, ref: id} }
func VectorValue(v ...float64) Value { return Value{typ: TypeVector, vec: slices.Clone(v)} }

func (v Value) Type() ValueType   { return v.typ }
func (v Value) Bool() bool        { return v.b }
func (v Value) Int() int64        { return v.i }
func (v Value) Float() float64    { return v.f }
func (v Value) Str() string       { return v.s }
func (v Value) Vector() []float64 { return slices.Clone(v.vec) }
func (v Value) Reference() ID     { return v.ref }

// Equal compares type and payload.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeBool:
		return v.b == other.b
	case TypeInt:
		return v.i == other.i
	case TypeFloat:
		return v.f == other.f || (math.IsNaN(v.f) && math.IsNaN(other.f))
	case TypeString, TypeEnum:
		return v.s == other.s
	case TypeVector:
		return slices.Equal(v.vec, other.vec)
	case TypeReference:
		return v.ref == other.ref
	default:
		return true
	}
}

// Native returns the payload as a plain Go value, the form handed to query
// engines. References become their canonical id string.
func (v Value) Native() any {
	switch v.typ {
	case TypeBool:
		return v.b
	case TypeInt:
		return v.i
	case TypeFloat:
		return v.f
	case TypeString, TypeEnum:
		return v.s
	case TypeVector:
		out := make([]any, len(v.vec))
		for i, component := range v.vec {
			out[i] = component
		}
		return out
	case TypeReference:
		return v.ref.String()
	default:
		return nil
	}
}

// Encode renders the value in its persisted text form: JSON for scalars and
// vectors, the canonical id string for references.
func (v Value) Encode() (string, error) {
	var payload any
	switch v.typ {
	case TypeBool:
		payload = v.b
	case TypeInt:
		payload = v.i
	case TypeFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return "", fmt.Errorf("assets: float value %v is not encodable", v.f)
		}
		payload = v.f
	case TypeString, TypeEnum:
		payload = v.s
	case TypeVector:
		vec := v.vec
		if vec == nil {
			vec = []float64{}
		}
		payload = vec
	case TypeReference:
		return v.ref.String(), nil
	default:
		return "", fmt.Errorf("assets: cannot encode %s value", v.typ)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeValue parses raw according to the declared type. The persisted text
// carries no type information of its own beyond what JSON implies, so the
// member declaration drives decoding.
func DecodeValue(typ ValueType, raw string) (Value, error) {
	if typ != TypeReference && strings.TrimSpace(raw) == "null" {
		return Value{}, fmt.Errorf("null is not a valid %s value", typ)
	}
	switch typ {
	case TypeBool:
		var out bool
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return Value{}, err
		}
		return BoolValue(out), nil
	case TypeInt:
		var out int64
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return Value{}, err
		}
		return IntValue(out), nil
	case TypeFloat:
		var out float64
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return Value{}, err
		}
		return FloatValue(out), nil
	case TypeString, TypeEnum:
		var out string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return Value{}, err
		}
		if typ == TypeEnum {
			return EnumValue(out), nil
		}
		return StringValue(out), nil
	case TypeVector:
		var out []float64
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return Value{}, err
		}
		if out == nil {
			return Value{}, fmt.Errorf("vector must be a JSON array, got %q", raw)
		}
		return VectorValue(out...), nil
	case TypeReference:
		id, err := ParseID(raw)
		if err != nil {
			return Value{}, err
		}
		return ReferenceValue(id), nil
	default:
		return Value{}, fmt.Errorf("cannot decode %s value", typ)
	}
}
