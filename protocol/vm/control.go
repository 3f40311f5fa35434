package vm

import (
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

func opNop(e *Engine, inst Instruction) error {
	return nil
}

func opJmp(e *Engine, inst Instruction) error {
	return e.executeJumpOffset(inst.Offset())
}

func opJmpIf(e *Engine, inst Instruction) error {
	b, err := e.popBool()
	if err != nil {
		return err
	}
	if b {
		return e.executeJumpOffset(inst.Offset())
	}
	return nil
}

func opJmpIfNot(e *Engine, inst Instruction) error {
	b, err := e.popBool()
	if err != nil {
		return err
	}
	if !b {
		return e.executeJumpOffset(inst.Offset())
	}
	return nil
}

func opJmpCompare(e *Engine, inst Instruction) error {
	x2, err := e.popInt()
	if err != nil {
		return err
	}
	x1, err := e.popInt()
	if err != nil {
		return err
	}
	c := x1.Cmp(x2)
	var jump bool
	switch inst.Op {
	case OP_JMPEQ, OP_JMPEQ_L:
		jump = c == 0
	case OP_JMPNE, OP_JMPNE_L:
		jump = c != 0
	case OP_JMPGT, OP_JMPGT_L:
		jump = c > 0
	case OP_JMPGE, OP_JMPGE_L:
		jump = c >= 0
	case OP_JMPLT, OP_JMPLT_L:
		jump = c < 0
	case OP_JMPLE, OP_JMPLE_L:
		jump = c <= 0
	}
	if jump {
		return e.executeJumpOffset(inst.Offset())
	}
	return nil
}

func opCall(e *Engine, inst Instruction) error {
	return e.ExecuteCall(e.CurrentContext().ip + inst.Offset())
}

func opCallA(e *Engine, inst Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	p, ok := item.(*stackitem.Pointer)
	if !ok {
		return castError(item, "Pointer")
	}
	if p.Script() != e.CurrentContext().Script() {
		return faultf(ErrInvalidState, "Pointers can't be shared between scripts")
	}
	return e.ExecuteCall(p.Position())
}

// CALLT refers to a method token of a deployed contract;
// engines that support tokens register their own handler.
func opCallT(e *Engine, inst Instruction) error {
	return faultf(ErrInvalidState, "Token not found: %d", inst.TokenU16())
}

func opAbort(e *Engine, inst Instruction) error {
	return faultf(ErrAbort, "%s is executed.", OP_ABORT)
}

func opAssert(e *Engine, inst Instruction) error {
	ok, err := e.popBool()
	if err != nil {
		return err
	}
	if !ok {
		return faultf(ErrAssert, "%s is executed with false result.", OP_ASSERT)
	}
	return nil
}

func opAbortMsg(e *Engine, inst Instruction) error {
	msg, err := e.popBytes()
	if err != nil {
		return err
	}
	return faultf(ErrAbort, "%s is executed. Reason: %s", OP_ABORTMSG, msg)
}

func opAssertMsg(e *Engine, inst Instruction) error {
	msg, err := e.popBytes()
	if err != nil {
		return err
	}
	ok, err := e.popBool()
	if err != nil {
		return err
	}
	if !ok {
		return faultf(ErrAssert, "%s is executed with false result. Reason: %s", OP_ASSERTMSG, msg)
	}
	return nil
}

func opThrow(e *Engine, inst Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	return e.ExecuteThrow(item)
}

func opTry(e *Engine, inst Instruction) error {
	var catchOffset, finallyOffset int
	if inst.Op == OP_TRY {
		catchOffset, finallyOffset = inst.TokenI8(), inst.TokenI8_1()
	} else {
		catchOffset, finallyOffset = inst.TokenI32(), inst.TokenI32_1()
	}
	if catchOffset == 0 && finallyOffset == 0 {
		return faultf(ErrBadTry, "catchOffset and finallyOffset can't be 0 in a TRY block")
	}
	ectx := e.CurrentContext()
	if len(ectx.tries) >= e.limits.MaxTryNestingDepth {
		return faultf(ErrTryNesting, "MaxTryNestingDepth exceed.")
	}
	catch, finally := -1, -1
	if catchOffset != 0 {
		catch = ectx.ip + catchOffset
	}
	if finallyOffset != 0 {
		finally = ectx.ip + finallyOffset
	}
	ectx.EnterTry(catch, finally)
	return nil
}

func opEndTry(e *Engine, inst Instruction) error {
	ectx := e.CurrentContext()
	t := ectx.innermostTry()
	if t == nil {
		return faultf(ErrBadTry, "The corresponding TRY block cannot be found.")
	}
	if t.State == TryStateFinally {
		return faultf(ErrBadTry, "The opcode %s can't be executed in a FINALLY block.", inst.Op)
	}
	end := ectx.ip + inst.Offset()
	if t.HasFinally() {
		t.State = TryStateFinally
		t.EndPointer = end
		ectx.ip = t.FinallyPointer
	} else {
		ectx.popTry()
		ectx.ip = end
	}
	e.isJumping = true
	return nil
}

func opEndFinally(e *Engine, inst Instruction) error {
	ectx := e.CurrentContext()
	t := ectx.innermostTry()
	if t == nil {
		return faultf(ErrBadTry, "The corresponding TRY block cannot be found.")
	}
	ectx.popTry()
	if e.uncaught != nil {
		return e.ExecuteThrow(e.uncaught)
	}
	ectx.ip = t.EndPointer
	e.isJumping = true
	return nil
}

func opRet(e *Engine, inst Instruction) error {
	return e.ExecuteRet()
}

// Without a host, no system call exists. protocol/interop
// registers a handler that dispatches by service ID.
func opSyscall(e *Engine, inst Instruction) error {
	return faultf(ErrInvalidState, "Syscall not found: %d", inst.TokenU32())
}
