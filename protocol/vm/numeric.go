package vm

import (
	"math/big"

	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

var bigOne = big.NewInt(1)

func opUnary(e *Engine, inst Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	z := new(big.Int)
	switch inst.Op {
	case OP_SIGN:
		z.SetInt64(int64(x.Sign()))
	case OP_ABS:
		z.Abs(x)
	case OP_NEGATE:
		z.Neg(x)
	case OP_INC:
		z.Add(x, bigOne)
	case OP_DEC:
		z.Sub(x, bigOne)
	}
	return e.pushInt(z)
}

// opBinary handles the two-operand arithmetic ops. Division
// truncates toward zero and the remainder takes the sign of
// the dividend.
func opBinary(e *Engine, inst Instruction) error {
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
	case OP_ADD:
		z.Add(x1, x2)
	case OP_SUB:
		z.Sub(x1, x2)
	case OP_MUL:
		z.Mul(x1, x2)
	case OP_DIV:
		if x2.Sign() == 0 {
			return faultf(ErrDivZero, "Attempted to divide by zero.")
		}
		z.Quo(x1, x2)
	case OP_MOD:
		if x2.Sign() == 0 {
			return faultf(ErrDivZero, "Attempted to divide by zero.")
		}
		z.Rem(x1, x2)
	case OP_MIN:
		z.Set(x1)
		if x2.Cmp(x1) < 0 {
			z.Set(x2)
		}
	case OP_MAX:
		z.Set(x1)
		if x2.Cmp(x1) > 0 {
			z.Set(x2)
		}
	}
	return e.pushInt(z)
}

func opPow(e *Engine, inst Instruction) error {
	exp, err := e.popInt32()
	if err != nil {
		return err
	}
	err = e.limits.AssertShift(exp)
	if err != nil {
		return err
	}
	x, err := e.popInt()
	if err != nil {
		return err
	}
	z := new(big.Int).Exp(x, big.NewInt(int64(exp)), nil)
	return e.pushInt(z)
}

func opSqrt(e *Engine, inst Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	if x.Sign() < 0 {
		return faultf(ErrBadValue, "value can not be negative")
	}
	return e.pushInt(new(big.Int).Sqrt(x))
}

func opModMul(e *Engine, inst Instruction) error {
	m, err := e.popInt()
	if err != nil {
		return err
	}
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	if m.Sign() == 0 {
		return faultf(ErrDivZero, "Attempted to divide by zero.")
	}
	z := new(big.Int).Mul(x1, x2)
	return e.pushInt(z.Rem(z, m))
}

// opModPow computes value^exp mod m with the sign of the
// result following value, or the modular inverse when exp is
// -1.
func opModPow(e *Engine, inst Instruction) error {
	m, err := e.popInt()
	if err != nil {
		return err
	}
	exp, err := e.popInt()
	if err != nil {
		return err
	}
	x, err := e.popInt()
	if err != nil {
		return err
	}

	if exp.Cmp(big.NewInt(-1)) == 0 {
		if x.Sign() <= 0 {
			return faultf(ErrBadValue, "Specified argument was out of the range of valid values. (Parameter 'value')")
		}
		if m.Cmp(big.NewInt(2)) < 0 {
			return faultf(ErrBadValue, "Specified argument was out of the range of valid values. (Parameter 'modulus')")
		}
		z := new(big.Int).ModInverse(x, m)
		if z == nil {
			return faultf(ErrBadValue, "No modular inverse exists for the given inputs.")
		}
		return e.pushInt(z)
	}

	if exp.Sign() < 0 {
		return faultf(ErrBadValue, "Specified argument was out of the range of valid values. (Parameter 'exponent')")
	}
	if m.Sign() == 0 {
		return faultf(ErrDivZero, "Attempted to divide by zero.")
	}
	z := new(big.Int).Exp(new(big.Int).Abs(x), exp, new(big.Int).Abs(m))
	if x.Sign() < 0 && exp.Bit(0) == 1 {
		z.Neg(z)
	}
	return e.pushInt(z)
}

func opShift(e *Engine, inst Instruction) error {
	shift, err := e.popInt32()
	if err != nil {
		return err
	}
	err = e.limits.AssertShift(shift)
	if err != nil {
		return err
	}
	if shift == 0 {
		return nil
	}
	x, err := e.popInt()
	if err != nil {
		return err
	}
	z := new(big.Int)
	if inst.Op == OP_SHL {
		z.Lsh(x, uint(shift))
	} else {
		z.Rsh(x, uint(shift))
	}
	return e.pushInt(z)
}

func opNot(e *Engine, inst Instruction) error {
	b, err := e.popBool()
	if err != nil {
		return err
	}
	e.pushBool(!b)
	return nil
}

func opBoolLogic(e *Engine, inst Instruction) error {
	x2, err := e.popBool()
	if err != nil {
		return err
	}
	x1, err := e.popBool()
	if err != nil {
		return err
	}
	if inst.Op == OP_BOOLAND {
		e.pushBool(x1 && x2)
	} else {
		e.pushBool(x1 || x2)
	}
	return nil
}

func opNz(e *Engine, inst Instruction) error {
	x, err := e.popInt()
	if err != nil {
		return err
	}
	e.pushBool(x.Sign() != 0)
	return nil
}

func opNumEqual(e *Engine, inst Instruction) error {
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	e.pushBool((x1.Cmp(x2) == 0) == (inst.Op == OP_NUMEQUAL))
	return nil
}

// opCompare handles LT, LE, GT and GE. A Null operand makes
// the comparison false.
func opCompare(e *Engine, inst Instruction) error {
	x2, err := e.Pop()
	if err != nil {
		return err
	}
	x1, err := e.Pop()
	if err != nil {
		return err
	}
	if stackitem.IsNull(x1) || stackitem.IsNull(x2) {
		e.pushBool(false)
		return nil
	}
	i1, err := x1.Integer()
	if err != nil {
		return err
	}
	i2, err := x2.Integer()
	if err != nil {
		return err
	}
	c := i1.Cmp(i2)
	switch inst.Op {
	case OP_LT:
		e.pushBool(c < 0)
	case OP_LE:
		e.pushBool(c <= 0)
	case OP_GT:
		e.pushBool(c > 0)
	case OP_GE:
		e.pushBool(c >= 0)
	}
	return nil
}

func opWithin(e *Engine, inst Instruction) error {
	b, err := e.popInt()
	if err != nil {
		return err
	}
	a, err := e.popInt()
	if err != nil {
		return err
	}
	x, err := e.popInt()
	if err != nil {
		return err
	}
	e.pushBool(a.Cmp(x) <= 0 && x.Cmp(b) < 0)
	return nil
}
