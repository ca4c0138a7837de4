package ast

import (
	"errors"
	"fmt"
)

// Type names with structural sub-types.
const (
	MappingType = "mapping"
	ArrayType   = "array"
)

// ErrMalformedType is returned by the type builders when a mapping or
// array lacks its sub-types, or a scalar carries them.
var ErrMalformedType = errors.New("malformed type")

// Type represents a type reference. Mappings carry Key and Value, arrays
// carry Value, every other name is a scalar.
type Type struct {
	Name   string
	Key    *Type
	Value  *Type
	Line   int
	Column int
}

func (t *Type) Pos() (int, int) { return t.Line, t.Column }

// IsMapping reports whether t is a mapping type.
func (t *Type) IsMapping() bool { return t != nil && t.Name == MappingType }

// IsArray reports whether t is a dynamic array type.
func (t *Type) IsArray() bool { return t != nil && t.Name == ArrayType }

// Scalar builds a scalar type such as address or uint256.
func Scalar(name string) *Type {
	return &Type{Name: name}
}

// MappingOf builds mapping(key => value).
func MappingOf(key, value *Type) (*Type, error) {
	return NewType(MappingType, key, value)
}

// ArrayOf builds elem[].
func ArrayOf(elem *Type) (*Type, error) {
	return NewType(ArrayType, nil, elem)
}

// NewType builds a type and checks its shape, recursively.
func NewType(name string, key, value *Type) (*Type, error) {
	t := &Type{Name: name, Key: key, Value: value}
	if err := CheckType(t); err != nil {
		return nil, err
	}
	return t, nil
}

// CheckType validates the shape of t and all of its sub-types.
func CheckType(t *Type) error {
	if t == nil {
		return fmt.Errorf("%w: missing type", ErrMalformedType)
	}
	switch t.Name {
	case "":
		return fmt.Errorf("%w: empty type name", ErrMalformedType)
	case MappingType:
		if t.Key == nil || t.Value == nil {
			return fmt.Errorf("%w: mapping requires key and value types", ErrMalformedType)
		}
		if err := CheckType(t.Key); err != nil {
			return err
		}
		return CheckType(t.Value)
	case ArrayType:
		if t.Value == nil {
			return fmt.Errorf("%w: array requires an element type", ErrMalformedType)
		}
		if t.Key != nil {
			return fmt.Errorf("%w: array cannot carry a key type", ErrMalformedType)
		}
		return CheckType(t.Value)
	default:
		if t.Key != nil || t.Value != nil {
			return fmt.Errorf("%w: scalar %s cannot carry sub-types", ErrMalformedType, t.Name)
		}
		return nil
	}
}

// String renders the type in Smartra source syntax.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Name {
	case MappingType:
		return fmt.Sprintf("mapping(%s => %s)", t.Key, t.Value)
	case ArrayType:
		return t.Value.String() + "[]"
	default:
		return t.Name
	}
}
