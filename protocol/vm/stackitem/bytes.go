package stackitem

import (
	"encoding/hex"
	"math/big"

	"github.com/onyx-protocol/neovm/errors"
)

// ByteString is an immutable byte sequence.
type ByteString string

// NewByteString returns a ByteString holding a copy of b.
func NewByteString(b []byte) ByteString { return ByteString(b) }

func (ByteString) Type() Type { return ByteStringT }

func (s ByteString) Bool() (bool, error) {
	if len(s) > MaxIntegerSize {
		return false, errors.WithDetailf(ErrInvalidConversion, "Can't convert ByteString of size %d to Boolean.", len(s))
	}
	return anyNonZero(string(s)), nil
}

func (s ByteString) Integer() (*big.Int, error) {
	if len(s) > MaxIntegerSize {
		return nil, errors.WithDetailf(ErrInvalidConversion, "MaxSize exceed: %d", len(s))
	}
	return BytesToInt([]byte(s)), nil
}

func (s ByteString) Bytes() ([]byte, error) { return []byte(s), nil }
func (s ByteString) Size() int              { return len(s) }
func (s ByteString) String() string         { return "ByteString(0x" + hex.EncodeToString([]byte(s)) + ")" }

// Buffer is a mutable byte sequence. Unlike ByteString it
// is a reference type and is tracked by the reference counter.
type Buffer struct {
	Tracking
	b []byte
}

// NewBuffer returns a Buffer that takes ownership of b.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{b: b}
}

func (*Buffer) Type() Type { return BufferT }

// Bool reports whether any byte is nonzero.
func (b *Buffer) Bool() (bool, error) { return anyNonZero(string(b.b)), nil }

func (b *Buffer) Integer() (*big.Int, error) {
	if len(b.b) > MaxIntegerSize {
		return nil, errors.WithDetailf(ErrInvalidConversion, "MaxSize exceed: %d", len(b.b))
	}
	return BytesToInt(b.b), nil
}

// Bytes returns the underlying storage. Writes through it
// are visible to every alias of b.
func (b *Buffer) Bytes() ([]byte, error) { return b.b, nil }
func (b *Buffer) Size() int              { return len(b.b) }
func (b *Buffer) String() string         { return "Buffer(0x" + hex.EncodeToString(b.b) + ")" }

func anyNonZero(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != 0 {
			return true
		}
	}
	return false
}
