package vm

import (
	"math/big"

	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

func opInvert(e *Engine, inst Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	return e.pushInt(new(big.Int).Not(x))
}

func opBitwise(e *Engine, inst Instruction) error {
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	z := new(big.Int)
	switch inst.Op {
	case OP_AND:
		z.And(x1, x2)
	case OP_OR:
		z.Or(x1, x2)
	case OP_XOR:
		z.Xor(x1, x2)
	}
	return e.pushInt(z)
}

func opEqual(e *Engine, inst Instruction) error {
	x2, err := e.Pop()
	if err != nil {
		return err
	}
	x1, err := e.Pop()
	if err != nil {
		return err
	}
	eq, err := stackitem.Equal(x1, x2, e.limits.compareLimits())
	if err != nil {
		return err
	}
	e.pushBool(eq == (inst.Op == OP_EQUAL))
	return nil
}
