package vm

import (
	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

// Structural faults: the script itself is malformed.
var (
	ErrInvalidOpcode = errors.New("invalid opcode")
	ErrBadJump       = errors.New("jump out of range")
	ErrShortProgram  = errors.New("unexpected end of program")
	ErrBadTry        = errors.New("bad try region")
	ErrBadOperand    = errors.New("bad operand")
)

// Resource faults: a configured limit was exceeded.
var (
	ErrStackOverflow      = errors.New("stack size exceeded")
	ErrItemTooBig         = errors.New("item size exceeded")
	ErrInvocationOverflow = errors.New("invocation stack size exceeded")
	ErrTryNesting         = errors.New("try nesting depth exceeded")
	ErrShiftRange         = errors.New("shift out of range")
)

// Type and value faults: an operand had the wrong kind or value.
// These may be caught by a script's try region.
var (
	ErrIndexRange   = errors.New("index out of range")
	ErrKeyNotFound  = errors.New("key not found")
	ErrDivZero      = errors.New("division by zero")
	ErrIntegerRange = errors.New("integer out of range")
	ErrBadValue     = errors.New("bad value")
	ErrBadType      = errors.New("bad type")
)

// Control faults.
var (
	ErrStackUnderflow = errors.New("stack underflow")
	ErrAbort          = errors.New("ABORT executed")
	ErrAssert         = errors.New("ASSERT failed")
	ErrUnhandled      = errors.New("unhandled exception")
	ErrInvalidState   = errors.New("invalid operation")
	ErrUnexpected     = errors.New("unexpected error")
)

// IsCatchable reports whether err is a type or value fault,
// which the engine offers to the script's try regions (when
// Limits.CatchEngineExceptions is set) instead of faulting.
func IsCatchable(err error) bool {
	switch errors.Root(err) {
	case ErrIndexRange, ErrKeyNotFound, ErrDivZero, ErrIntegerRange,
		ErrBadValue, ErrBadType,
		stackitem.ErrInvalidConversion, stackitem.ErrTooBig:
		return true
	}
	return false
}

// faultf is shorthand for a sentinel with a formatted message.
func faultf(root error, format string, args ...interface{}) error {
	return errors.WithDetailf(root, format, args...)
}
