package vm

import "github.com/onyx-protocol/neovm/protocol/vm/stackitem"

func opNewBuffer(e *Engine, inst Instruction) error {
	n, err := e.popInt32()
	if err != nil {
		return err
	}
	err = e.limits.AssertMaxItemSize(n)
	if err != nil {
		return err
	}
	e.Push(stackitem.NewBuffer(make([]byte, n)))
	return nil
}

func opMemcpy(e *Engine, inst Instruction) error {
	count, err := e.popInt32()
	if err != nil {
		return err
	}
	if count < 0 {
		return faultf(ErrBadValue, "The count can not be negative for %s, count: %d.", inst.Op, count)
	}
	si, err := e.popInt32()
	if err != nil {
		return err
	}
	if si < 0 {
		return faultf(ErrBadValue, "The source index can not be negative for %s, index: %d.", inst.Op, si)
	}
	src, err := e.popBytes()
	if err != nil {
		return err
	}
	if int64(si)+int64(count) > int64(len(src)) {
		return faultf(ErrIndexRange, "The source index + count is out of range for %s, index: %d, count: %d, %d/[0, %d].", inst.Op, si, count, si, len(src))
	}
	di, err := e.popInt32()
	if err != nil {
		return err
	}
	if di < 0 {
		return faultf(ErrBadValue, "The destination index can not be negative for %s, index: %d.", inst.Op, di)
	}
	item, err := e.Pop()
	if err != nil {
		return err
	}
	dst, ok := item.(*stackitem.Buffer)
	if !ok {
		return castError(item, "Buffer")
	}
	b, _ := dst.Bytes()
	if int64(di)+int64(count) > int64(len(b)) {
		return faultf(ErrIndexRange, "The destination index + count is out of range for %s, index: %d, count: %d, %d/[0, %d].", inst.Op, di, count, di, len(b))
	}
	copy(b[di:di+count], src[si:si+count])
	return nil
}

func opCat(e *Engine, inst Instruction) error {
	x2, err := e.popBytes()
	if err != nil {
		return err
	}
	x1, err := e.popBytes()
	if err != nil {
		return err
	}
	err = e.limits.AssertMaxItemSize(len(x1) + len(x2))
	if err != nil {
		return err
	}
	b := make([]byte, 0, len(x1)+len(x2))
	b = append(b, x1...)
	b = append(b, x2...)
	e.Push(stackitem.NewBuffer(b))
	return nil
}

func opSubstr(e *Engine, inst Instruction) error {
	count, err := e.popInt32()
	if err != nil {
		return err
	}
	if count < 0 {
		return faultf(ErrBadValue, "The count can not be negative for %s, count: %d.", inst.Op, count)
	}
	index, err := e.popInt32()
	if err != nil {
		return err
	}
	if index < 0 {
		return faultf(ErrBadValue, "The index can not be negative for %s, index: %d.", inst.Op, index)
	}
	x, err := e.popBytes()
	if err != nil {
		return err
	}
	if int64(index)+int64(count) > int64(len(x)) {
		return faultf(ErrIndexRange, "The index + count is out of range for %s, index: %d, count: %d, %d/[0, %d].", inst.Op, index, count, int64(index)+int64(count), len(x))
	}
	e.Push(stackitem.NewBuffer(append([]byte(nil), x[index:index+count]...)))
	return nil
}

func opLeft(e *Engine, inst Instruction) error {
	count, x, err := e.popSpliceCount(inst.Op)
	if err != nil {
		return err
	}
	e.Push(stackitem.NewBuffer(append([]byte(nil), x[:count]...)))
	return nil
}

func opRight(e *Engine, inst Instruction) error {
	count, x, err := e.popSpliceCount(inst.Op)
	if err != nil {
		return err
	}
	e.Push(stackitem.NewBuffer(append([]byte(nil), x[len(x)-count:]...)))
	return nil
}

// popSpliceCount pops the count and byte string operands of
// LEFT and RIGHT.
func (e *Engine) popSpliceCount(op Op) (int, []byte, error) {
	count, err := e.popInt32()
	if err != nil {
		return 0, nil, err
	}
	if count < 0 {
		return 0, nil, faultf(ErrBadValue, "The count can not be negative for %s, count: %d.", op, count)
	}
	x, err := e.popBytes()
	if err != nil {
		return 0, nil, err
	}
	if count > len(x) {
		return 0, nil, faultf(ErrIndexRange, "The count is out of range for %s, %d/[0, %d].", op, count, len(x))
	}
	return count, x, nil
}
