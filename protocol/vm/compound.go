package vm

import "github.com/onyx-protocol/neovm/protocol/vm/stackitem"

func opPackMap(e *Engine, inst Instruction) error {
	n, err := e.popInt32()
	if err != nil {
		return err
	}
	if n < 0 || 2*int64(n) > int64(e.CurrentContext().EvaluationStack().Len()) {
		return faultf(ErrIndexRange, "The value %d is out of range.", n)
	}
	m := stackitem.NewMap(e.rc)
	for i := 0; i < n; i++ {
		key, err := e.popKey()
		if err != nil {
			return err
		}
		value, err := e.Pop()
		if err != nil {
			return err
		}
		err = m.Set(key, value)
		if err != nil {
			return err
		}
	}
	e.Push(m)
	return nil
}

// opPack handles PACK and PACKSTRUCT. The top of the stack
// becomes the first element.
func opPack(e *Engine, inst Instruction) error {
	n, err := e.popInt32()
	if err != nil {
		return err
	}
	if n < 0 || n > e.CurrentContext().EvaluationStack().Len() {
		return faultf(ErrIndexRange, "The value %d is out of range.", n)
	}
	var (
		item stackitem.Item
		a    *stackitem.Array
	)
	if inst.Op == OP_PACKSTRUCT {
		s := stackitem.NewStruct(e.rc, nil)
		item, a = s, &s.Array
	} else {
		a = stackitem.NewArray(e.rc, nil)
		item = a
	}
	for i := 0; i < n; i++ {
		x, err := e.Pop()
		if err != nil {
			return err
		}
		a.Append(x)
	}
	e.Push(item)
	return nil
}

func opUnpack(e *Engine, inst Instruction) error {
	x, err := e.Pop()
	if err != nil {
		return err
	}
	switch x := x.(type) {
	case *stackitem.Map:
		entries := x.Entries()
		for i := len(entries) - 1; i >= 0; i-- {
			e.Push(entries[i].Value)
			e.Push(entries[i].Key)
		}
		e.pushInt64(int64(len(entries)))
		return nil
	}
	a, ok := asArray(x)
	if !ok {
		return faultf(ErrBadType, "Invalid type for %s: %s", inst.Op, x.Type())
	}
	items := a.Items()
	for i := len(items) - 1; i >= 0; i-- {
		e.Push(items[i])
	}
	e.pushInt64(int64(len(items)))
	return nil
}

func opNewArray0(e *Engine, inst Instruction) error {
	if inst.Op == OP_NEWSTRUCT0 {
		e.Push(stackitem.NewStruct(e.rc, nil))
	} else {
		e.Push(stackitem.NewArray(e.rc, nil))
	}
	return nil
}

// opNewArray handles NEWARRAY, NEWARRAY_T and NEWSTRUCT.
func opNewArray(e *Engine, inst Instruction) error {
	n, err := e.popInt32()
	if err != nil {
		return err
	}
	if n < 0 || n > e.limits.MaxStackSize {
		return faultf(ErrStackOverflow, "MaxStackSize exceed: %d", n)
	}
	var fill stackitem.Item = stackitem.Null{}
	if inst.Op == OP_NEWARRAY_T {
		t := stackitem.Type(inst.TokenU8())
		if !t.IsValid() {
			return faultf(ErrBadOperand, "Invalid type for %s: %d", inst.Op, inst.TokenU8())
		}
		switch t {
		case stackitem.BooleanT:
			fill = stackitem.Boolean(false)
		case stackitem.IntegerT:
			fill = stackitem.NewInt(0)
		case stackitem.ByteStringT:
			fill = stackitem.ByteString("")
		}
	}
	items := make([]stackitem.Item, n)
	for i := range items {
		items[i] = fill
	}
	if inst.Op == OP_NEWSTRUCT {
		e.Push(stackitem.NewStruct(e.rc, items))
	} else {
		e.Push(stackitem.NewArray(e.rc, items))
	}
	return nil
}

func opNewMap(e *Engine, inst Instruction) error {
	e.Push(stackitem.NewMap(e.rc))
	return nil
}

func opSize(e *Engine, inst Instruction) error {
	x, err := e.Pop()
	if err != nil {
		return err
	}
	switch x := x.(type) {
	case stackitem.Compound:
		e.pushInt64(int64(x.Len()))
	case *stackitem.Buffer:
		e.pushInt64(int64(x.Size()))
	case stackitem.ByteString:
		e.pushInt64(int64(x.Size()))
	case *stackitem.Integer:
		e.pushInt64(int64(x.Size()))
	case stackitem.Boolean:
		e.pushInt64(1)
	default:
		return faultf(ErrBadType, "Invalid type for %s: %s", inst.Op, x.Type())
	}
	return nil
}

func opHasKey(e *Engine, inst Instruction) error {
	key, err := e.popKey()
	if err != nil {
		return err
	}
	x, err := e.Pop()
	if err != nil {
		return err
	}
	if m, ok := x.(*stackitem.Map); ok {
		has, err := m.Has(key)
		if err != nil {
			return err
		}
		e.pushBool(has)
		return nil
	}

	var n int
	switch x := x.(type) {
	case *stackitem.Array, *stackitem.Struct:
		a, _ := asArray(x)
		n = a.Len()
	case *stackitem.Buffer:
		n = x.Size()
	case stackitem.ByteString:
		n = x.Size()
	default:
		return faultf(ErrBadType, "Invalid type for %s: %s", inst.Op, x.Type())
	}
	index, err := keyIndex(key, inst.Op)
	if err != nil {
		return err
	}
	e.pushBool(index < n)
	return nil
}

// keyIndex converts a primitive key to a non-negative index.
func keyIndex(key stackitem.Item, op Op) (int, error) {
	v, err := key.Integer()
	if err != nil {
		return 0, err
	}
	if v.Sign() < 0 {
		return 0, faultf(ErrIndexRange, "The negative value %s is invalid for OpCode.%s.", v, op)
	}
	if !v.IsInt64() || v.Int64() > 1<<31-1 {
		return 0, faultf(ErrIntegerRange, "Value was either too large or too small for an Int32: %s", v)
	}
	return int(v.Int64()), nil
}

// arrayIndex converts key to an index into a container of
// length n.
func arrayIndex(key stackitem.Item, kind string, n int) (int, error) {
	v, err := key.Integer()
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() || v.Int64() < -1<<31 || v.Int64() > 1<<31-1 {
		return 0, faultf(ErrIntegerRange, "Value was either too large or too small for an Int32: %s", v)
	}
	i := int(v.Int64())
	if i < 0 || i >= n {
		return 0, faultf(ErrIndexRange, "The index of %s is out of range, %d/[0, %d).", kind, i, n)
	}
	return i, nil
}

func opKeys(e *Engine, inst Instruction) error {
	x, err := e.Pop()
	if err != nil {
		return err
	}
	m, ok := x.(*stackitem.Map)
	if !ok {
		return castError(x, "Map")
	}
	e.Push(stackitem.NewArray(e.rc, m.Keys()))
	return nil
}

func opValues(e *Engine, inst Instruction) error {
	x, err := e.Pop()
	if err != nil {
		return err
	}
	var values []stackitem.Item
	switch x := x.(type) {
	case *stackitem.Map:
		values = x.Values()
	case *stackitem.Array, *stackitem.Struct:
		a, _ := asArray(x)
		values = a.Items()
	default:
		return faultf(ErrBadType, "Invalid type for %s: %s", inst.Op, x.Type())
	}
	items := make([]stackitem.Item, 0, len(values))
	for _, v := range values {
		v, err = e.cloneIfStruct(v)
		if err != nil {
			return err
		}
		items = append(items, v)
	}
	e.Push(stackitem.NewArray(e.rc, items))
	return nil
}

func opPickItem(e *Engine, inst Instruction) error {
	key, err := e.popKey()
	if err != nil {
		return err
	}
	x, err := e.Pop()
	if err != nil {
		return err
	}
	switch x := x.(type) {
	case *stackitem.Map:
		v, ok, err := x.Get(key)
		if err != nil {
			return err
		}
		if !ok {
			return faultf(ErrKeyNotFound, "Key %s not found in Map.", key)
		}
		e.Push(v)
	case *stackitem.Array, *stackitem.Struct:
		a, _ := asArray(x)
		i, err := arrayIndex(key, "VMArray", a.Len())
		if err != nil {
			return err
		}
		e.Push(a.Get(i))
	case *stackitem.Buffer:
		b, _ := x.Bytes()
		i, err := arrayIndex(key, "Buffer", len(b))
		if err != nil {
			return err
		}
		e.pushInt64(int64(b[i]))
	case stackitem.Boolean, *stackitem.Integer, stackitem.ByteString:
		b, _ := x.Bytes()
		i, err := arrayIndex(key, "PrimitiveType", len(b))
		if err != nil {
			return err
		}
		e.pushInt64(int64(b[i]))
	default:
		return faultf(ErrBadType, "Invalid type for %s: %s", inst.Op, x.Type())
	}
	return nil
}

func opAppend(e *Engine, inst Instruction) error {
	item, err := e.Pop()
	if err != nil {
		return err
	}
	item, err = e.cloneIfStruct(item)
	if err != nil {
		return err
	}
	a, err := e.popArray()
	if err != nil {
		return err
	}
	a.Append(item)
	return nil
}

func opSetItem(e *Engine, inst Instruction) error {
	value, err := e.Pop()
	if err != nil {
		return err
	}
	value, err = e.cloneIfStruct(value)
	if err != nil {
		return err
	}
	key, err := e.popKey()
	if err != nil {
		return err
	}
	x, err := e.Pop()
	if err != nil {
		return err
	}
	switch x := x.(type) {
	case *stackitem.Map:
		return x.Set(key, value)
	case *stackitem.Array, *stackitem.Struct:
		a, _ := asArray(x)
		i, err := arrayIndex(key, "VMArray", a.Len())
		if err != nil {
			return err
		}
		a.Set(i, value)
	case *stackitem.Buffer:
		b, _ := x.Bytes()
		i, err := arrayIndex(key, "Buffer", len(b))
		if err != nil {
			return err
		}
		if !value.Type().IsPrimitive() {
			return faultf(ErrBadType, "Only primitive type values can be set in Buffer in %s.", inst.Op)
		}
		v, err := value.Integer()
		if err != nil {
			return err
		}
		if !v.IsInt64() || v.Int64() < -128 || v.Int64() > 255 {
			return faultf(ErrBadValue, "Overflow in %s, %s is not a byte type.", inst.Op, v)
		}
		b[i] = byte(v.Int64())
	default:
		return faultf(ErrBadType, "Invalid type for %s: %s", inst.Op, x.Type())
	}
	return nil
}

func opReverseItems(e *Engine, inst Instruction) error {
	x, err := e.Pop()
	if err != nil {
		return err
	}
	switch x := x.(type) {
	case *stackitem.Array, *stackitem.Struct:
		a, _ := asArray(x)
		a.Reverse()
	case *stackitem.Buffer:
		b, _ := x.Bytes()
		for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
	default:
		return faultf(ErrBadType, "Invalid type for %s: %s", inst.Op, x.Type())
	}
	return nil
}

func opRemove(e *Engine, inst Instruction) error {
	key, err := e.popKey()
	if err != nil {
		return err
	}
	x, err := e.Pop()
	if err != nil {
		return err
	}
	switch x := x.(type) {
	case *stackitem.Map:
		return x.Delete(key)
	case *stackitem.Array, *stackitem.Struct:
		a, _ := asArray(x)
		i, err := arrayIndex(key, "VMArray", a.Len())
		if err != nil {
			return err
		}
		a.Remove(i)
	default:
		return faultf(ErrBadType, "Invalid type for %s: %s", inst.Op, x.Type())
	}
	return nil
}

func opClearItems(e *Engine, inst Instruction) error {
	x, err := e.Pop()
	if err != nil {
		return err
	}
	c, ok := x.(stackitem.Compound)
	if !ok {
		return castError(x, "CompoundType")
	}
	c.Clear()
	return nil
}

func opPopItem(e *Engine, inst Instruction) error {
	a, err := e.popArray()
	if err != nil {
		return err
	}
	i := a.Len() - 1
	if i < 0 {
		return faultf(ErrIndexRange, "The index of VMArray is out of range, %d/[0, %d).", i, a.Len())
	}
	e.Push(a.Get(i))
	a.Remove(i)
	return nil
}
