package stackitem

import "strconv"

// Type is the wire tag of a stack item kind, as used by
// ISTYPE, CONVERT and NEWARRAY_T.
type Type byte

const (
	AnyT        Type = 0x00
	PointerT    Type = 0x10
	BooleanT    Type = 0x20
	IntegerT    Type = 0x21
	ByteStringT Type = 0x28
	BufferT     Type = 0x30
	ArrayT      Type = 0x40
	StructT     Type = 0x41
	MapT        Type = 0x48
	InteropT    Type = 0x60
)

var typeNames = map[Type]string{
	AnyT:        "Any",
	PointerT:    "Pointer",
	BooleanT:    "Boolean",
	IntegerT:    "Integer",
	ByteStringT: "ByteString",
	BufferT:     "Buffer",
	ArrayT:      "Array",
	StructT:     "Struct",
	MapT:        "Map",
	InteropT:    "InteropInterface",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return strconv.Itoa(int(t))
}

// IsValid reports whether t is a defined type tag.
// AnyT is defined.
func (t Type) IsValid() bool {
	_, ok := typeNames[t]
	return ok
}

// IsPrimitive reports whether items of type t may be map keys.
func (t Type) IsPrimitive() bool {
	return t == BooleanT || t == IntegerT || t == ByteStringT
}

// ParseType returns the type named s.
func ParseType(s string) (Type, bool) {
	for t, name := range typeNames {
		if name == s {
			return t, true
		}
	}
	return 0, false
}
