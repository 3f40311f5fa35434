package vm

import "github.com/onyx-protocol/neovm/protocol/vm/stackitem"

func opPushInt(e *Engine, inst Instruction) error {
	return e.pushInt(stackitem.BytesToInt(inst.Operand))
}

func opPushSmallInt(e *Engine, inst Instruction) error {
	e.pushInt64(int64(inst.Op) - int64(OP_PUSH0))
	return nil
}

func opPushT(e *Engine, inst Instruction) error {
	e.pushBool(true)
	return nil
}

func opPushF(e *Engine, inst Instruction) error {
	e.pushBool(false)
	return nil
}

func opPushA(e *Engine, inst Instruction) error {
	ectx := e.CurrentContext()
	pos := int64(ectx.ip) + int64(inst.TokenI32())
	if pos < 0 || pos > int64(ectx.Script().Len()) {
		return faultf(ErrBadJump, "Bad pointer address(Instruction instruction: %d)", pos)
	}
	e.Push(ectx.pointer(int(pos)))
	return nil
}

func opPushNull(e *Engine, inst Instruction) error {
	e.Push(stackitem.Null{})
	return nil
}

func opPushData(e *Engine, inst Instruction) error {
	err := e.limits.AssertMaxItemSize(len(inst.Operand))
	if err != nil {
		return err
	}
	e.Push(stackitem.NewByteString(inst.Operand))
	return nil
}
