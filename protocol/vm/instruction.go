package vm

import (
	"encoding/binary"
	"fmt"

	"github.com/onyx-protocol/neovm/math/checked"
)

// Instruction is one decoded opcode and its operand.
type Instruction struct {
	Op Op

	// Operand excludes any size prefix; for PUSHDATA it is the
	// data being pushed.
	Operand []byte

	// Size is the total encoded length, opcode and prefix
	// included.
	Size int
}

// retInstruction is executed when the instruction pointer
// runs off the end of a script.
var retInstruction = Instruction{Op: OP_RET, Size: 1}

// ParseInstruction decodes the instruction at ip. Undefined
// opcodes decode with no operand; they fault only when
// dispatched.
func ParseInstruction(script []byte, ip int) (inst Instruction, err error) {
	if ip < 0 || ip >= len(script) {
		return inst, faultf(ErrShortProgram, "Instruction pointer out of bounds: %d/%d", ip, len(script))
	}
	inst.Op = Op(script[ip])
	info := ops[inst.Op]
	start := ip + 1
	size := info.operand
	if info.prefix > 0 {
		if len(script)-start < info.prefix {
			return inst, faultf(ErrShortProgram, "Instrucion out of bounds. InstructionPointer: %d, operandSizePrefix: %d, length: %d", ip, info.prefix, len(script))
		}
		prefix := script[start : start+info.prefix]
		switch info.prefix {
		case 1:
			size = int(prefix[0])
		case 2:
			size = int(binary.LittleEndian.Uint16(prefix))
		case 4:
			n := int32(binary.LittleEndian.Uint32(prefix))
			if n < 0 {
				return inst, faultf(ErrShortProgram, "Instrucion out of bounds. InstructionPointer: %d, operandSize: %d, length: %d", ip, n, len(script))
			}
			size = int(n)
		}
		start += info.prefix
	}
	end, ok := checked.AddInt64(int64(start), int64(size))
	if !ok || end > int64(len(script)) {
		return inst, faultf(ErrShortProgram, "Instrucion out of bounds. InstructionPointer: %d, operandSize: %d, length: %d", ip, size, len(script))
	}
	if size > 0 {
		inst.Operand = script[start:end]
	}
	inst.Size = int(end) - ip
	return inst, nil
}

// TokenI8 returns the operand's first byte as a signed value.
func (inst Instruction) TokenI8() int { return int(int8(inst.Operand[0])) }

// TokenI8_1 returns the operand's second byte as a signed value.
func (inst Instruction) TokenI8_1() int { return int(int8(inst.Operand[1])) }

// TokenI32 returns the operand's first four bytes as a signed
// little-endian value.
func (inst Instruction) TokenI32() int { return int(int32(binary.LittleEndian.Uint32(inst.Operand))) }

// TokenI32_1 returns operand bytes 4..8 as a signed
// little-endian value.
func (inst Instruction) TokenI32_1() int {
	return int(int32(binary.LittleEndian.Uint32(inst.Operand[4:])))
}

func (inst Instruction) TokenU8() int     { return int(inst.Operand[0]) }
func (inst Instruction) TokenU8_1() int   { return int(inst.Operand[1]) }
func (inst Instruction) TokenU16() int    { return int(binary.LittleEndian.Uint16(inst.Operand)) }
func (inst Instruction) TokenU32() uint32 { return binary.LittleEndian.Uint32(inst.Operand) }

// TokenString returns the operand as a string, for SYSCALL-style
// display and the assembler.
func (inst Instruction) TokenString() string { return string(inst.Operand) }

// Offset returns the branch displacement of a jump, call,
// ENDTRY or PUSHA instruction.
func (inst Instruction) Offset() int {
	if len(inst.Operand) == 1 {
		return inst.TokenI8()
	}
	return inst.TokenI32()
}

func (inst Instruction) String() string {
	if len(inst.Operand) == 0 {
		return inst.Op.String()
	}
	return fmt.Sprintf("%s %x", inst.Op, inst.Operand)
}
