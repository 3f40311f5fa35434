package vm

import (
	"encoding/hex"
	"sync"

	"github.com/onyx-protocol/neovm/crypto/hash160"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

// Script is an immutable bytecode program with a cache of
// decoded instructions. It may be shared between engines.
type Script struct {
	b []byte

	mu    sync.Mutex
	cache map[int]Instruction
	hash  []byte
}

// NewScript returns a Script over b. In strict mode every
// instruction is decoded up front and every branch target,
// try offset and type operand is checked; otherwise problems
// surface when the bad instruction executes.
func NewScript(b []byte, strict bool) (*Script, error) {
	s := &Script{b: b, cache: make(map[int]Instruction)}
	if strict {
		err := s.validate()
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustNewScript is like NewScript in non-strict mode.
// It is for tests and fixed scripts.
func MustNewScript(b []byte) *Script {
	s, _ := NewScript(b, false)
	return s
}

// Bytes returns the program. It must not be modified.
func (s *Script) Bytes() []byte { return s.b }

// Len is the program length in bytes.
func (s *Script) Len() int { return len(s.b) }

// Instruction returns the decoded instruction at ip. An ip
// exactly at the end of the script yields an implicit RET.
func (s *Script) Instruction(ip int) (Instruction, error) {
	if ip == len(s.b) {
		return retInstruction, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if inst, ok := s.cache[ip]; ok {
		return inst, nil
	}
	inst, err := ParseInstruction(s.b, ip)
	if err != nil {
		return inst, err
	}
	s.cache[ip] = inst
	return inst, nil
}

// Hash returns RIPEMD160(SHA256(script)), the identity used
// for breakpoints, traces and caches.
func (s *Script) Hash() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hash == nil {
		sum := hash160.Sum(s.b)
		s.hash = sum[:]
	}
	return s.hash
}

// HashString is the hex form of Hash.
func (s *Script) HashString() string {
	return hex.EncodeToString(s.Hash())
}

func (s *Script) validate() error {
	var insts []int
	for ip := 0; ip < len(s.b); {
		inst, err := s.Instruction(ip)
		if err != nil {
			return err
		}
		if !inst.Op.IsDefined() {
			return faultf(ErrInvalidOpcode, "ip: %d, opcode: %s", ip, inst.Op)
		}
		insts = append(insts, ip)
		ip += inst.Size
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	target := func(ip int, inst Instruction, off int) error {
		if ip+off == len(s.b) {
			return nil
		}
		if _, ok := s.cache[ip+off]; !ok {
			return faultf(ErrBadJump, "ip: %d, opcode: %s", ip, inst.Op)
		}
		return nil
	}
	for _, ip := range insts {
		inst := s.cache[ip]
		var err error
		switch {
		case isJump(inst.Op) || inst.Op == OP_PUSHA:
			err = target(ip, inst, inst.Offset())
		case inst.Op == OP_TRY:
			err = target(ip, inst, inst.TokenI8())
			if err == nil {
				err = target(ip, inst, inst.TokenI8_1())
			}
		case inst.Op == OP_TRY_L:
			err = target(ip, inst, inst.TokenI32())
			if err == nil {
				err = target(ip, inst, inst.TokenI32_1())
			}
		case inst.Op == OP_NEWARRAY_T || inst.Op == OP_ISTYPE || inst.Op == OP_CONVERT:
			t := stackitem.Type(inst.TokenU8())
			if !t.IsValid() {
				err = faultf(ErrBadOperand, "ip: %d, opcode: %s", ip, inst.Op)
			} else if inst.Op != OP_NEWARRAY_T && t == stackitem.AnyT {
				err = faultf(ErrBadOperand, "ip: %d, opcode: %s", ip, inst.Op)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
