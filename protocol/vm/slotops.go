package vm

import "github.com/onyx-protocol/neovm/protocol/vm/stackitem"

func opInitSSlot(e *Engine, inst Instruction) error {
	ectx := e.CurrentContext()
	if ectx.shared.static != nil {
		return faultf(ErrInvalidState, "%s cannot be executed twice.", inst.Op)
	}
	n := inst.TokenU8()
	if n == 0 {
		return faultf(ErrBadOperand, "The operand %d is invalid for OpCode.%s.", n, inst.Op)
	}
	ectx.shared.static = NewSlot(e.rc, n)
	return nil
}

func opInitSlot(e *Engine, inst Instruction) error {
	ectx := e.CurrentContext()
	if ectx.locals != nil || ectx.args != nil {
		return faultf(ErrInvalidState, "%s cannot be executed twice.", inst.Op)
	}
	if inst.TokenU16() == 0 {
		return faultf(ErrBadOperand, "The operand %d is invalid for OpCode.%s.", inst.TokenU16(), inst.Op)
	}
	if n := inst.TokenU8(); n > 0 {
		ectx.locals = NewSlot(e.rc, n)
	}
	if n := inst.TokenU8_1(); n > 0 {
		items := make([]stackitem.Item, n)
		for i := range items {
			item, err := e.Pop()
			if err != nil {
				return err
			}
			items[i] = item
		}
		ectx.args = NewSlotItems(e.rc, items)
	}
	return nil
}

// opSlot handles the LD and ST forms for static fields, locals
// and arguments. Each group of eight opcodes is seven
// fixed-index forms followed by one taking the index as its
// operand.
func opSlot(e *Engine, inst Instruction) error {
	var base Op
	switch {
	case inst.Op >= OP_STARG0:
		base = OP_STARG0
	case inst.Op >= OP_LDARG0:
		base = OP_LDARG0
	case inst.Op >= OP_STLOC0:
		base = OP_STLOC0
	case inst.Op >= OP_LDLOC0:
		base = OP_LDLOC0
	case inst.Op >= OP_STSFLD0:
		base = OP_STSFLD0
	default:
		base = OP_LDSFLD0
	}
	index := int(inst.Op - base)
	if index == 7 {
		index = inst.TokenU8()
	}

	ectx := e.CurrentContext()
	var slot *Slot
	switch base {
	case OP_LDSFLD0, OP_STSFLD0:
		slot = ectx.shared.static
	case OP_LDLOC0, OP_STLOC0:
		slot = ectx.locals
	default:
		slot = ectx.args
	}
	if slot == nil {
		return faultf(ErrInvalidState, "Slot has not been initialized.")
	}

	switch base {
	case OP_STSFLD0, OP_STLOC0, OP_STARG0:
		item, err := e.Pop()
		if err != nil {
			return err
		}
		return slot.Set(index, item)
	}
	item, err := slot.Get(index)
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}
