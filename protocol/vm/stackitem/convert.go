package stackitem

import (
	"github.com/onyx-protocol/neovm/errors"
)

// ConvertTo returns item converted to type t.
//
// Every item converts to its own type (returning itself) and
// to Boolean. Primitives convert among Integer, ByteString
// and Buffer; a Buffer converts to Integer or ByteString; an
// Array and a Struct convert to each other as a new container
// sharing the elements. Null converts to any defined type
// other than Any, staying Null. Everything else fails with
// ErrInvalidConversion.
func ConvertTo(item Item, t Type) (Item, error) {
	if IsNull(item) {
		if t == AnyT || !t.IsValid() {
			return nil, errors.WithDetailf(ErrInvalidConversion, "Type can't be converted to StackItemType: %s", t)
		}
		return item, nil
	}
	if item.Type() == t {
		return item, nil
	}
	if t == BooleanT {
		b, err := item.Bool()
		if err != nil {
			return nil, err
		}
		return Boolean(b), nil
	}

	switch item := item.(type) {
	case Boolean, *Integer, ByteString:
		switch t {
		case IntegerT:
			v, err := item.Integer()
			if err != nil {
				return nil, err
			}
			return NewInteger(v)
		case ByteStringT:
			b, _ := item.Bytes()
			return NewByteString(b), nil
		case BufferT:
			b, _ := item.Bytes()
			return NewBuffer(append([]byte{}, b...)), nil
		}
	case *Buffer:
		switch t {
		case IntegerT:
			v, err := item.Integer()
			if err != nil {
				return nil, err
			}
			return NewInteger(v)
		case ByteStringT:
			return NewByteString(item.b), nil
		}
	case *Struct:
		if t == ArrayT {
			return NewArray(item.tracker, append([]Item(nil), item.items...)), nil
		}
	case *Array:
		if t == StructT {
			return NewStruct(item.tracker, append([]Item(nil), item.items...)), nil
		}
	}
	return nil, invalidCast(item, t)
}
