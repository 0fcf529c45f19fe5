package heimer

import (
	"encoding/json"
	"strings"
)

const (
	IntType    = "int"
	FloatType  = "float"
	StringType = "string"
	BoolType   = "bool"
	ListType   = "list"
)

// PrimitiveTypes are the scalar type names, in the order emitters list them.
var PrimitiveTypes = []string{
	IntType,
	FloatType,
	StringType,
	BoolType,
}

type ScalarKind int

const (
	Int ScalarKind = iota
	Float
	String
	Bool
)

func (k ScalarKind) String() string {
	switch k {
	case Int:
		return IntType
	case Float:
		return FloatType
	case String:
		return StringType
	case Bool:
		return BoolType
	}
	return "?"
}

func (k ScalarKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// ScalarKindOf returns the scalar kind named by s.
func ScalarKindOf(s string) (ScalarKind, bool) {
	switch s {
	case IntType:
		return Int, true
	case FloatType:
		return Float, true
	case StringType:
		return String, true
	case BoolType:
		return Bool, true
	}
	return Int, false
}

func IsPrimitive(name string) bool {
	_, ok := ScalarKindOf(name)
	return ok
}

type TypeKind int

const (
	InvalidTypeKind TypeKind = iota
	ScalarTypeKind
	ListTypeKind
	RecordTypeKind
)

// ResolvedType is the closed set of field types: a scalar, a list of scalars,
// or a reference to a record by name. The zero value is an unresolved type.
type ResolvedType struct {
	Kind   TypeKind
	Scalar ScalarKind
	Record string
}

func ScalarOf(k ScalarKind) ResolvedType {
	return ResolvedType{Kind: ScalarTypeKind, Scalar: k}
}

func ListOf(k ScalarKind) ResolvedType {
	return ResolvedType{Kind: ListTypeKind, Scalar: k}
}

func RecordRef(name string) ResolvedType {
	return ResolvedType{Kind: RecordTypeKind, Record: name}
}

func (t ResolvedType) IsScalar() bool {
	return t.Kind == ScalarTypeKind
}

func (t ResolvedType) IsList() bool {
	return t.Kind == ListTypeKind
}

func (t ResolvedType) IsRecord() bool {
	return t.Kind == RecordTypeKind
}

func (t ResolvedType) String() string {
	switch t.Kind {
	case ListTypeKind:
		return ListType + "(" + t.Scalar.String() + ")"
	case RecordTypeKind:
		return t.Record
	case ScalarTypeKind:
		return t.Scalar.String()
	}
	return "?"
}

func (t ResolvedType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// IsList reports whether the raw type name has the shape list(x) with x a
// non-list scalar.
func IsList(typeName string) bool {
	elem, ok := listElement(typeName)
	return ok && IsPrimitive(elem)
}

// ListElementType returns x for a raw type name of the form list(x), or the
// empty string if typeName is not a list.
func ListElementType(typeName string) string {
	elem, ok := listElement(typeName)
	if !ok {
		return ""
	}
	return elem
}

func listElement(typeName string) (string, bool) {
	s := strings.TrimSpace(typeName)
	if !strings.HasPrefix(s, ListType) {
		return "", false
	}
	s = strings.TrimSpace(s[len(ListType):])
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	return strings.TrimSpace(s[1 : len(s)-1]), true
}

// ParseTypeReference resolves a raw type name against the primitive set and
// the given record names. The returned message is empty on success.
func ParseTypeReference(typeName string, isRecord func(string) bool) (ResolvedType, string) {
	if elem, ok := listElement(typeName); ok {
		if k, ok := ScalarKindOf(elem); ok {
			return ListOf(k), ""
		}
		if _, nested := listElement(elem); nested {
			return ResolvedType{}, "The element type of a list cannot be a list: '" + typeName + "'"
		}
		if isRecord != nil && isRecord(elem) {
			return ResolvedType{}, "The element type of a list cannot be a record: '" + typeName + "'"
		}
		return ResolvedType{}, "The type of a list can only be a non-list primitive type: '" + typeName + "'"
	}
	if k, ok := ScalarKindOf(typeName); ok {
		return ScalarOf(k), ""
	}
	if isRecord != nil && isRecord(typeName) {
		return RecordRef(typeName), ""
	}
	return ResolvedType{}, "Unknown field type '" + typeName + "', it should either be a primitive type or a user defined record"
}
