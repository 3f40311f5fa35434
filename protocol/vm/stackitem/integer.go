package stackitem

import (
	"math/big"

	"github.com/onyx-protocol/neovm/errors"
)

// Integer is an arbitrary-precision signed integer whose
// two's-complement encoding fits in MaxIntegerSize bytes.
type Integer struct {
	value *big.Int
}

// NewInteger returns v as an Integer, or ErrTooBig if it
// does not fit. v is not copied and must not be modified
// afterwards.
func NewInteger(v *big.Int) (*Integer, error) {
	if n := IntSize(v); n > MaxIntegerSize {
		return nil, errors.WithDetailf(ErrTooBig, "MaxSize exceed: %d", n)
	}
	return &Integer{value: v}, nil
}

// NewBigInteger is like NewInteger but panics if v is too big.
func NewBigInteger(v *big.Int) *Integer {
	i, err := NewInteger(v)
	if err != nil {
		panic(err)
	}
	return i
}

// NewInt returns v as an Integer.
func NewInt(v int64) *Integer {
	return &Integer{value: big.NewInt(v)}
}

func (*Integer) Type() Type                   { return IntegerT }
func (i *Integer) Bool() (bool, error)        { return i.value.Sign() != 0, nil }
func (i *Integer) Integer() (*big.Int, error) { return i.value, nil }
func (i *Integer) Bytes() ([]byte, error)     { return IntToBytes(i.value), nil }
func (i *Integer) String() string             { return "Integer(" + i.value.String() + ")" }

// Big returns the value of i.
func (i *Integer) Big() *big.Int { return i.value }

// Size is the length of the minimal encoding; zero for zero.
func (i *Integer) Size() int { return IntSize(i.value) }

// IntSize returns the length of the minimal little-endian
// two's-complement encoding of v, zero for zero.
func IntSize(v *big.Int) int {
	if v.Sign() == 0 {
		return 0
	}
	if v.Sign() > 0 {
		// One extra byte when the top bit would read as a sign.
		return v.BitLen()/8 + 1
	}
	// -2^(8k-1) fits in k bytes.
	m := new(big.Int).Not(v) // -v-1
	return m.BitLen()/8 + 1
}

// IntToBytes returns the minimal little-endian two's-complement
// encoding of v. Zero encodes as an empty slice.
func IntToBytes(v *big.Int) []byte {
	switch v.Sign() {
	case 0:
		return []byte{}
	case 1:
		b := reverse(v.Bytes())
		if b[len(b)-1]&0x80 != 0 {
			b = append(b, 0)
		}
		return b
	}
	m := new(big.Int).Not(v) // -v-1, non-negative
	b := reverse(m.Bytes())
	for i := range b {
		b[i] = ^b[i]
	}
	if len(b) == 0 || b[len(b)-1]&0x80 == 0 {
		b = append(b, 0xff)
	}
	return b
}

// BytesToInt decodes a little-endian two's-complement integer.
// An empty slice is zero.
func BytesToInt(b []byte) *big.Int {
	if len(b) == 0 {
		return new(big.Int)
	}
	v := new(big.Int).SetBytes(reverse(append([]byte(nil), b...)))
	if b[len(b)-1]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
	}
	return v
}

func reverse(b []byte) []byte {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
