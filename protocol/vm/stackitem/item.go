// Package stackitem defines the values a script manipulates.
//
// Primitive items (Boolean, Integer, ByteString) are immutable
// values. Buffer, Array, Struct and Map are reference types: two
// stack slots may alias the same container, and a container may
// reach itself through its elements. Nothing in this package
// walks a container graph by unbounded recursion; equality,
// cloning and rendering all run on explicit worklists or carry
// a depth bound.
package stackitem

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/onyx-protocol/neovm/errors"
)

var (
	// ErrInvalidConversion is the root of every failed cast
	// between item kinds.
	ErrInvalidConversion = errors.New("invalid conversion")

	// ErrTooBig is returned when a value would exceed a fixed
	// size bound (the integer width or the map key size).
	ErrTooBig = errors.New("value too big")

	// ErrLimit is returned when comparing or cloning would
	// visit more items or bytes than allowed.
	ErrLimit = errors.New("limit exceeded")
)

const (
	// MaxIntegerSize is the widest integer, in bytes of its
	// two's-complement encoding.
	MaxIntegerSize = 32

	// MaxKeySize is the largest map key, in bytes.
	MaxKeySize = 64
)

// Item is a stack item.
type Item interface {
	Type() Type

	// Bool, Integer and Bytes convert the item to a primitive
	// value, failing with ErrInvalidConversion (or ErrTooBig)
	// when the kind has no such representation.
	// The returned values must not be modified.
	Bool() (bool, error)
	Integer() (*big.Int, error)
	Bytes() ([]byte, error)

	String() string
}

func invalidCast(from Item, to Type) error {
	return errors.WithDetailf(ErrInvalidConversion, "Can't convert %s to %s.", from.Type(), to)
}

// Null is the absent value. Its type tag is AnyT.
type Null struct{}

func (Null) Type() Type                   { return AnyT }
func (Null) Bool() (bool, error)          { return false, nil }
func (n Null) Integer() (*big.Int, error) { return nil, invalidCast(n, IntegerT) }
func (n Null) Bytes() ([]byte, error)     { return nil, invalidCast(n, ByteStringT) }
func (Null) String() string               { return "Null" }

// IsNull reports whether item is Null.
func IsNull(item Item) bool {
	_, ok := item.(Null)
	return ok
}

// Boolean is true or false.
type Boolean bool

var (
	trueBytes  = []byte{1}
	falseBytes = []byte{0}
)

func (Boolean) Type() Type            { return BooleanT }
func (b Boolean) Bool() (bool, error) { return bool(b), nil }

func (b Boolean) Integer() (*big.Int, error) {
	if b {
		return big.NewInt(1), nil
	}
	return new(big.Int), nil
}

func (b Boolean) Bytes() ([]byte, error) {
	if b {
		return trueBytes, nil
	}
	return falseBytes, nil
}

func (b Boolean) String() string { return fmt.Sprintf("Boolean(%t)", bool(b)) }

// Pointer is a position in a particular script. Two pointers
// are equal only if they refer to the same script object.
type Pointer struct {
	script interface{}
	pos    int
}

// NewPointer returns a pointer to pos in script. Script
// identity is by ==, so pass the engine's script handle.
func NewPointer(script interface{}, pos int) *Pointer {
	return &Pointer{script: script, pos: pos}
}

// Script returns the script handle p was made with.
func (p *Pointer) Script() interface{} { return p.script }

// Position returns the target offset.
func (p *Pointer) Position() int { return p.pos }

func (*Pointer) Type() Type                   { return PointerT }
func (*Pointer) Bool() (bool, error)          { return true, nil }
func (p *Pointer) Integer() (*big.Int, error) { return nil, invalidCast(p, IntegerT) }
func (p *Pointer) Bytes() ([]byte, error)     { return nil, invalidCast(p, ByteStringT) }
func (p *Pointer) String() string             { return fmt.Sprintf("Pointer(%d)", p.pos) }

// Interop wraps a host object that scripts can pass around
// but not inspect.
type Interop struct {
	value interface{}
}

// NewInterop wraps v.
func NewInterop(v interface{}) *Interop {
	return &Interop{value: v}
}

// Value returns the wrapped object.
func (i *Interop) Value() interface{} { return i.value }

func (*Interop) Type() Type                   { return InteropT }
func (*Interop) Bool() (bool, error)          { return true, nil }
func (i *Interop) Integer() (*big.Int, error) { return nil, invalidCast(i, IntegerT) }
func (i *Interop) Bytes() ([]byte, error)     { return nil, invalidCast(i, ByteStringT) }
func (i *Interop) String() string             { return fmt.Sprintf("InteropInterface(%T)", i.value) }

func (i *Interop) equals(o *Interop) bool {
	if i == o {
		return true
	}
	if i.value == nil || o.value == nil {
		return i.value == nil && o.value == nil
	}
	t := reflect.TypeOf(i.value)
	if t != reflect.TypeOf(o.value) || !t.Comparable() {
		return false
	}
	return i.value == o.value
}

// Make converts a Go value into an item. It accepts nil,
// bool, int, int64, *big.Int, []byte, string and Item, and
// panics on anything else; it is meant for tests and for
// host code building arguments.
func Make(v interface{}) Item {
	switch v := v.(type) {
	case nil:
		return Null{}
	case Item:
		return v
	case bool:
		return Boolean(v)
	case int:
		return NewBigInteger(big.NewInt(int64(v)))
	case int64:
		return NewBigInteger(big.NewInt(v))
	case *big.Int:
		return NewBigInteger(v)
	case []byte:
		return NewByteString(v)
	case string:
		return ByteString(v)
	}
	panic(fmt.Sprintf("stackitem.Make: unsupported type %T", v))
}
