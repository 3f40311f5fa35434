package vmutil

import (
	"encoding/binary"
	"math/big"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm"
)

var (
	ErrUnresolvedJump = errors.New("unresolved jump target")
	ErrNotJump        = errors.New("opcode takes no jump target")
)

// placeholder is a four-byte displacement to fill in once its
// target is known. Displacements are relative to the start of
// the instruction holding them.
type placeholder struct {
	inst int // offset of the opcode
	at   int // offset of the operand
}

type Builder struct {
	program     []byte
	jumpCounter int
	err         error

	// Maps a jump target number to its absolute address.
	jumpAddr map[int]int

	// Maps a jump target number to the list of displacements
	// that must be filled in once its address is known.
	jumpPlaceholders map[int][]placeholder
}

func NewBuilder() *Builder {
	return &Builder{
		jumpAddr:         make(map[int]int),
		jumpPlaceholders: make(map[int][]placeholder),
	}
}

// AddInt64 adds the shortest push instruction for n.
func (b *Builder) AddInt64(n int64) *Builder {
	b.program = append(b.program, vm.PushdataInt64(n)...)
	return b
}

// AddBigInt adds the shortest push instruction for v. A value
// wider than 32 bytes is recorded as an error and reported by
// Build.
func (b *Builder) AddBigInt(v *big.Int) *Builder {
	p, err := vm.PushdataInt(v)
	if err != nil {
		b.setErr(err)
		return b
	}
	b.program = append(b.program, p...)
	return b
}

// AddData adds a PUSHDATA instruction for a given byte string.
func (b *Builder) AddData(data []byte) *Builder {
	b.program = append(b.program, vm.PushdataBytes(data)...)
	return b
}

func (b *Builder) AddBool(v bool) *Builder {
	if v {
		return b.AddOp(vm.OP_PUSHT)
	}
	return b.AddOp(vm.OP_PUSHF)
}

func (b *Builder) AddNull() *Builder {
	return b.AddOp(vm.OP_PUSHNULL)
}

// AddRawBytes simply appends the given bytes to the program. (It does
// not introduce a pushdata opcode.)
func (b *Builder) AddRawBytes(data []byte) *Builder {
	b.program = append(b.program, data...)
	return b
}

// AddOp adds the given opcode to the program.
func (b *Builder) AddOp(op vm.Op) *Builder {
	b.program = append(b.program, byte(op))
	return b
}

// AddSyscall adds a SYSCALL of the interop service with the
// given id.
func (b *Builder) AddSyscall(id uint32) *Builder {
	b.AddOp(vm.OP_SYSCALL)
	var operand [4]byte
	binary.LittleEndian.PutUint32(operand[:], id)
	return b.AddRawBytes(operand[:])
}

// NewJumpTarget allocates a number that can be used as a jump target
// in AddJump, AddCall, AddPointer and AddTry. Call SetJumpTarget to
// associate the number with a program location.
func (b *Builder) NewJumpTarget() int {
	b.jumpCounter++
	return b.jumpCounter
}

// AddJump adds a branch with the given opcode whose target is the
// given target number. Any of the JMP family, CALL or ENDTRY may be
// given; the four-byte (_L) form is always emitted. The actual
// program location of the target does not need to be known yet, as
// long as SetJumpTarget is called before Build.
func (b *Builder) AddJump(op vm.Op, target int) *Builder {
	long, ok := longForm(op)
	if !ok {
		b.setErr(errors.WithDetailf(ErrNotJump, "%s", op))
		return b
	}
	inst := len(b.program)
	b.AddOp(long)
	b.addPlaceholder(target, inst)
	return b
}

// AddCall adds a CALL_L to the given target number.
func (b *Builder) AddCall(target int) *Builder {
	return b.AddJump(vm.OP_CALL, target)
}

// AddPointer adds a PUSHA of the given target number.
func (b *Builder) AddPointer(target int) *Builder {
	inst := len(b.program)
	b.AddOp(vm.OP_PUSHA)
	b.addPlaceholder(target, inst)
	return b
}

// AddTry opens a try region. catch and finally are target numbers;
// zero means the region has no such block.
func (b *Builder) AddTry(catch, finally int) *Builder {
	inst := len(b.program)
	b.AddOp(vm.OP_TRY_L)
	for _, target := range []int{catch, finally} {
		if target == 0 {
			b.AddRawBytes([]byte{0, 0, 0, 0})
			continue
		}
		b.addPlaceholder(target, inst)
	}
	return b
}

func (b *Builder) addPlaceholder(target, inst int) {
	b.jumpPlaceholders[target] = append(b.jumpPlaceholders[target], placeholder{inst: inst, at: len(b.program)})
	b.AddRawBytes([]byte{0, 0, 0, 0})
}

func longForm(op vm.Op) (vm.Op, bool) {
	switch {
	case op >= vm.OP_JMP && op <= vm.OP_CALL_L:
		// Short forms are even; each _L form follows its short form.
		return op | 1, true
	case op == vm.OP_ENDTRY || op == vm.OP_ENDTRY_L:
		return vm.OP_ENDTRY_L, true
	}
	return 0, false
}

func (b *Builder) setErr(err error) {
	if b.err == nil {
		b.err = err
	}
}

// SetJumpTarget associates the given jump-target number with the
// current position in the program - namely, the program's length,
// such that the first instruction executed by a jump using this
// target will be whatever instruction is added next. A target at the
// end of the program is legal to build but faults when jumped to.
// There must be a call to SetJumpTarget for every jump target used
// before any call to Build.
func (b *Builder) SetJumpTarget(target int) *Builder {
	b.jumpAddr[target] = len(b.program)
	return b
}

// Build produces the bytecode of the program. It first resolves any
// jumps in the program by filling in the displacements of their
// targets. This requires SetJumpTarget to be called prior to Build
// for each jump target used. If any target's address hasn't been set
// in this way, this function produces ErrUnresolvedJump. An error
// recorded while adding instructions is returned first.
func (b *Builder) Build() ([]byte, error) {
	if b.err != nil {
		return nil, b.err
	}
	for target, placeholders := range b.jumpPlaceholders {
		addr, ok := b.jumpAddr[target]
		if !ok {
			return nil, errors.Wrapf(ErrUnresolvedJump, "target %d", target)
		}
		for _, p := range placeholders {
			binary.LittleEndian.PutUint32(b.program[p.at:p.at+4], uint32(int32(addr-p.inst)))
		}
	}
	return b.program, nil
}
