package vm

// Handler executes one instruction. A returned error faults
// the engine, unless it is catchable and a try region takes it.
type Handler func(e *Engine, inst Instruction) error

// JumpTable maps every opcode byte to its handler.
type JumpTable [256]Handler

var defaultJumpTable JumpTable

// NewJumpTable returns a copy of the default table, which the
// caller may modify with Register.
func NewJumpTable() *JumpTable {
	jt := defaultJumpTable
	return &jt
}

// Register replaces the handler for op.
func (jt *JumpTable) Register(op Op, h Handler) {
	if h == nil {
		h = InvalidOpcode
	}
	jt[op] = h
}

// InvalidOpcode is the handler of every undefined opcode.
func InvalidOpcode(e *Engine, inst Instruction) error {
	return faultf(ErrInvalidOpcode, "Opcode %s is undefined.", inst.Op)
}

func init() {
	for i := range defaultJumpTable {
		defaultJumpTable[i] = InvalidOpcode
	}
	for op := OP_PUSHINT8; op <= OP_PUSHINT256; op++ {
		defaultJumpTable[op] = opPushInt
	}
	for op := OP_PUSHM1; op <= OP_PUSH16; op++ {
		defaultJumpTable[op] = opPushSmallInt
	}
	for _, op := range []Op{OP_LDSFLD0, OP_STSFLD0, OP_LDLOC0, OP_STLOC0, OP_LDARG0, OP_STARG0} {
		for i := Op(0); i <= 7; i++ {
			defaultJumpTable[op+i] = opSlot
		}
	}

	handlers := map[Op]Handler{
		OP_PUSHT:     opPushT,
		OP_PUSHF:     opPushF,
		OP_PUSHA:     opPushA,
		OP_PUSHNULL:  opPushNull,
		OP_PUSHDATA1: opPushData,
		OP_PUSHDATA2: opPushData,
		OP_PUSHDATA4: opPushData,

		OP_NOP:        opNop,
		OP_JMP:        opJmp,
		OP_JMP_L:      opJmp,
		OP_JMPIF:      opJmpIf,
		OP_JMPIF_L:    opJmpIf,
		OP_JMPIFNOT:   opJmpIfNot,
		OP_JMPIFNOT_L: opJmpIfNot,
		OP_JMPEQ:      opJmpCompare,
		OP_JMPEQ_L:    opJmpCompare,
		OP_JMPNE:      opJmpCompare,
		OP_JMPNE_L:    opJmpCompare,
		OP_JMPGT:      opJmpCompare,
		OP_JMPGT_L:    opJmpCompare,
		OP_JMPGE:      opJmpCompare,
		OP_JMPGE_L:    opJmpCompare,
		OP_JMPLT:      opJmpCompare,
		OP_JMPLT_L:    opJmpCompare,
		OP_JMPLE:      opJmpCompare,
		OP_JMPLE_L:    opJmpCompare,
		OP_CALL:       opCall,
		OP_CALL_L:     opCall,
		OP_CALLA:      opCallA,
		OP_CALLT:      opCallT,
		OP_ABORT:      opAbort,
		OP_ASSERT:     opAssert,
		OP_THROW:      opThrow,
		OP_TRY:        opTry,
		OP_TRY_L:      opTry,
		OP_ENDTRY:     opEndTry,
		OP_ENDTRY_L:   opEndTry,
		OP_ENDFINALLY: opEndFinally,
		OP_RET:        opRet,
		OP_SYSCALL:    opSyscall,
		OP_ABORTMSG:   opAbortMsg,
		OP_ASSERTMSG:  opAssertMsg,

		OP_DEPTH:    opDepth,
		OP_DROP:     opDrop,
		OP_NIP:      opNip,
		OP_XDROP:    opXDrop,
		OP_CLEAR:    opClear,
		OP_DUP:      opDup,
		OP_OVER:     opOver,
		OP_PICK:     opPick,
		OP_TUCK:     opTuck,
		OP_SWAP:     opSwap,
		OP_ROT:      opRot,
		OP_ROLL:     opRoll,
		OP_REVERSE3: opReverse3,
		OP_REVERSE4: opReverse4,
		OP_REVERSEN: opReverseN,

		OP_INITSSLOT: opInitSSlot,
		OP_INITSLOT:  opInitSlot,

		OP_NEWBUFFER: opNewBuffer,
		OP_MEMCPY:    opMemcpy,
		OP_CAT:       opCat,
		OP_SUBSTR:    opSubstr,
		OP_LEFT:      opLeft,
		OP_RIGHT:     opRight,

		OP_INVERT:   opInvert,
		OP_AND:      opBitwise,
		OP_OR:       opBitwise,
		OP_XOR:      opBitwise,
		OP_EQUAL:    opEqual,
		OP_NOTEQUAL: opEqual,

		OP_SIGN:        opUnary,
		OP_ABS:         opUnary,
		OP_NEGATE:      opUnary,
		OP_INC:         opUnary,
		OP_DEC:         opUnary,
		OP_ADD:         opBinary,
		OP_SUB:         opBinary,
		OP_MUL:         opBinary,
		OP_DIV:         opBinary,
		OP_MOD:         opBinary,
		OP_MIN:         opBinary,
		OP_MAX:         opBinary,
		OP_POW:         opPow,
		OP_SQRT:        opSqrt,
		OP_MODMUL:      opModMul,
		OP_MODPOW:      opModPow,
		OP_SHL:         opShift,
		OP_SHR:         opShift,
		OP_NOT:         opNot,
		OP_BOOLAND:     opBoolLogic,
		OP_BOOLOR:      opBoolLogic,
		OP_NZ:          opNz,
		OP_NUMEQUAL:    opNumEqual,
		OP_NUMNOTEQUAL: opNumEqual,
		OP_LT:          opCompare,
		OP_LE:          opCompare,
		OP_GT:          opCompare,
		OP_GE:          opCompare,
		OP_WITHIN:      opWithin,

		OP_PACKMAP:      opPackMap,
		OP_PACKSTRUCT:   opPack,
		OP_PACK:         opPack,
		OP_UNPACK:       opUnpack,
		OP_NEWARRAY0:    opNewArray0,
		OP_NEWARRAY:     opNewArray,
		OP_NEWARRAY_T:   opNewArray,
		OP_NEWSTRUCT0:   opNewArray0,
		OP_NEWSTRUCT:    opNewArray,
		OP_NEWMAP:       opNewMap,
		OP_SIZE:         opSize,
		OP_HASKEY:       opHasKey,
		OP_KEYS:         opKeys,
		OP_VALUES:       opValues,
		OP_PICKITEM:     opPickItem,
		OP_APPEND:       opAppend,
		OP_SETITEM:      opSetItem,
		OP_REVERSEITEMS: opReverseItems,
		OP_REMOVE:       opRemove,
		OP_CLEARITEMS:   opClearItems,
		OP_POPITEM:      opPopItem,

		OP_ISNULL:  opIsNull,
		OP_ISTYPE:  opIsType,
		OP_CONVERT: opConvert,
	}
	for op, h := range handlers {
		defaultJumpTable[op] = h
	}
}
