package vm

import "github.com/onyx-protocol/neovm/protocol/vm/stackitem"

func opIsNull(e *Engine, inst Instruction) error {
	x, err := e.Pop()
	if err != nil {
		return err
	}
	e.pushBool(stackitem.IsNull(x))
	return nil
}

func opIsType(e *Engine, inst Instruction) error {
	x, err := e.Pop()
	if err != nil {
		return err
	}
	t := stackitem.Type(inst.TokenU8())
	if t == stackitem.AnyT || !t.IsValid() {
		return faultf(ErrBadOperand, "Invalid type: %s", t)
	}
	e.pushBool(x.Type() == t)
	return nil
}

func opConvert(e *Engine, inst Instruction) error {
	x, err := e.Pop()
	if err != nil {
		return err
	}
	y, err := stackitem.ConvertTo(x, stackitem.Type(inst.TokenU8()))
	if err != nil {
		return err
	}
	e.Push(y)
	return nil
}
