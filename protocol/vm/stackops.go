package vm

func opDepth(e *Engine, inst Instruction) error {
	e.pushInt64(int64(e.CurrentContext().EvaluationStack().Len()))
	return nil
}

func opDrop(e *Engine, inst Instruction) error {
	_, err := e.Pop()
	return err
}

func opNip(e *Engine, inst Instruction) error {
	_, err := e.CurrentContext().EvaluationStack().Remove(1)
	return err
}

// popCount pops a non-negative count operand for op.
func (e *Engine) popCount(op Op) (int, error) {
	n, err := e.popInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, faultf(ErrBadValue, "The negative value %d is invalid for OpCode.%s.", n, op)
	}
	return n, nil
}

func opXDrop(e *Engine, inst Instruction) error {
	n, err := e.popCount(inst.Op)
	if err != nil {
		return err
	}
	_, err = e.CurrentContext().EvaluationStack().Remove(n)
	return err
}

func opClear(e *Engine, inst Instruction) error {
	e.CurrentContext().EvaluationStack().Clear()
	return nil
}

func opDup(e *Engine, inst Instruction) error {
	item, err := e.Peek(0)
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

func opOver(e *Engine, inst Instruction) error {
	item, err := e.Peek(1)
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

func opPick(e *Engine, inst Instruction) error {
	n, err := e.popCount(inst.Op)
	if err != nil {
		return err
	}
	item, err := e.Peek(n)
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

func opTuck(e *Engine, inst Instruction) error {
	item, err := e.Peek(0)
	if err != nil {
		return err
	}
	return e.CurrentContext().EvaluationStack().Insert(2, item)
}

func opSwap(e *Engine, inst Instruction) error {
	return e.roll(1)
}

func opRot(e *Engine, inst Instruction) error {
	return e.roll(2)
}

func opRoll(e *Engine, inst Instruction) error {
	n, err := e.popCount(inst.Op)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return e.roll(n)
}

// roll moves the item n places below the top to the top.
func (e *Engine) roll(n int) error {
	item, err := e.CurrentContext().EvaluationStack().Remove(n)
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

func opReverse3(e *Engine, inst Instruction) error {
	return e.CurrentContext().EvaluationStack().Reverse(3)
}

func opReverse4(e *Engine, inst Instruction) error {
	return e.CurrentContext().EvaluationStack().Reverse(4)
}

func opReverseN(e *Engine, inst Instruction) error {
	n, err := e.popCount(inst.Op)
	if err != nil {
		return err
	}
	return e.CurrentContext().EvaluationStack().Reverse(n)
}
