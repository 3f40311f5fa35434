package vm

import "strconv"

type Op uint8

func (op Op) String() string {
	if name := ops[op].name; name != "" {
		return name
	}
	return strconv.Itoa(int(op))
}

// IsDefined reports whether op has an assigned meaning.
func (op Op) IsDefined() bool {
	return ops[op].name != ""
}

// Constants.
const (
	OP_PUSHINT8   Op = 0x00
	OP_PUSHINT16  Op = 0x01
	OP_PUSHINT32  Op = 0x02
	OP_PUSHINT64  Op = 0x03
	OP_PUSHINT128 Op = 0x04
	OP_PUSHINT256 Op = 0x05
	OP_PUSHT      Op = 0x08
	OP_PUSHF      Op = 0x09
	OP_PUSHA      Op = 0x0a
	OP_PUSHNULL   Op = 0x0b
	OP_PUSHDATA1  Op = 0x0c
	OP_PUSHDATA2  Op = 0x0d
	OP_PUSHDATA4  Op = 0x0e
	OP_PUSHM1     Op = 0x0f
	OP_PUSH0      Op = 0x10
	OP_PUSH1      Op = 0x11
	OP_PUSH2      Op = 0x12
	OP_PUSH3      Op = 0x13
	OP_PUSH4      Op = 0x14
	OP_PUSH5      Op = 0x15
	OP_PUSH6      Op = 0x16
	OP_PUSH7      Op = 0x17
	OP_PUSH8      Op = 0x18
	OP_PUSH9      Op = 0x19
	OP_PUSH10     Op = 0x1a
	OP_PUSH11     Op = 0x1b
	OP_PUSH12     Op = 0x1c
	OP_PUSH13     Op = 0x1d
	OP_PUSH14     Op = 0x1e
	OP_PUSH15     Op = 0x1f
	OP_PUSH16     Op = 0x20
)

// Flow control.
const (
	OP_NOP        Op = 0x21
	OP_JMP        Op = 0x22
	OP_JMP_L      Op = 0x23
	OP_JMPIF      Op = 0x24
	OP_JMPIF_L    Op = 0x25
	OP_JMPIFNOT   Op = 0x26
	OP_JMPIFNOT_L Op = 0x27
	OP_JMPEQ      Op = 0x28
	OP_JMPEQ_L    Op = 0x29
	OP_JMPNE      Op = 0x2a
	OP_JMPNE_L    Op = 0x2b
	OP_JMPGT      Op = 0x2c
	OP_JMPGT_L    Op = 0x2d
	OP_JMPGE      Op = 0x2e
	OP_JMPGE_L    Op = 0x2f
	OP_JMPLT      Op = 0x30
	OP_JMPLT_L    Op = 0x31
	OP_JMPLE      Op = 0x32
	OP_JMPLE_L    Op = 0x33
	OP_CALL       Op = 0x34
	OP_CALL_L     Op = 0x35
	OP_CALLA      Op = 0x36
	OP_CALLT      Op = 0x37
	OP_ABORT      Op = 0x38
	OP_ASSERT     Op = 0x39
	OP_THROW      Op = 0x3a
	OP_TRY        Op = 0x3b
	OP_TRY_L      Op = 0x3c
	OP_ENDTRY     Op = 0x3d
	OP_ENDTRY_L   Op = 0x3e
	OP_ENDFINALLY Op = 0x3f
	OP_RET        Op = 0x40
	OP_SYSCALL    Op = 0x41
)

// Stack.
const (
	OP_DEPTH    Op = 0x43
	OP_DROP     Op = 0x45
	OP_NIP      Op = 0x46
	OP_XDROP    Op = 0x48
	OP_CLEAR    Op = 0x49
	OP_DUP      Op = 0x4a
	OP_OVER     Op = 0x4b
	OP_PICK     Op = 0x4d
	OP_TUCK     Op = 0x4e
	OP_SWAP     Op = 0x50
	OP_ROT      Op = 0x51
	OP_ROLL     Op = 0x52
	OP_REVERSE3 Op = 0x53
	OP_REVERSE4 Op = 0x54
	OP_REVERSEN Op = 0x55
)

// Slots.
const (
	OP_INITSSLOT Op = 0x56
	OP_INITSLOT  Op = 0x57
	OP_LDSFLD0   Op = 0x58
	OP_LDSFLD1   Op = 0x59
	OP_LDSFLD2   Op = 0x5a
	OP_LDSFLD3   Op = 0x5b
	OP_LDSFLD4   Op = 0x5c
	OP_LDSFLD5   Op = 0x5d
	OP_LDSFLD6   Op = 0x5e
	OP_LDSFLD    Op = 0x5f
	OP_STSFLD0   Op = 0x60
	OP_STSFLD1   Op = 0x61
	OP_STSFLD2   Op = 0x62
	OP_STSFLD3   Op = 0x63
	OP_STSFLD4   Op = 0x64
	OP_STSFLD5   Op = 0x65
	OP_STSFLD6   Op = 0x66
	OP_STSFLD    Op = 0x67
	OP_LDLOC0    Op = 0x68
	OP_LDLOC1    Op = 0x69
	OP_LDLOC2    Op = 0x6a
	OP_LDLOC3    Op = 0x6b
	OP_LDLOC4    Op = 0x6c
	OP_LDLOC5    Op = 0x6d
	OP_LDLOC6    Op = 0x6e
	OP_LDLOC     Op = 0x6f
	OP_STLOC0    Op = 0x70
	OP_STLOC1    Op = 0x71
	OP_STLOC2    Op = 0x72
	OP_STLOC3    Op = 0x73
	OP_STLOC4    Op = 0x74
	OP_STLOC5    Op = 0x75
	OP_STLOC6    Op = 0x76
	OP_STLOC     Op = 0x77
	OP_LDARG0    Op = 0x78
	OP_LDARG1    Op = 0x79
	OP_LDARG2    Op = 0x7a
	OP_LDARG3    Op = 0x7b
	OP_LDARG4    Op = 0x7c
	OP_LDARG5    Op = 0x7d
	OP_LDARG6    Op = 0x7e
	OP_LDARG     Op = 0x7f
	OP_STARG0    Op = 0x80
	OP_STARG1    Op = 0x81
	OP_STARG2    Op = 0x82
	OP_STARG3    Op = 0x83
	OP_STARG4    Op = 0x84
	OP_STARG5    Op = 0x85
	OP_STARG6    Op = 0x86
	OP_STARG     Op = 0x87
)

// Splice.
const (
	OP_NEWBUFFER Op = 0x88
	OP_MEMCPY    Op = 0x89
	OP_CAT       Op = 0x8b
	OP_SUBSTR    Op = 0x8c
	OP_LEFT      Op = 0x8d
	OP_RIGHT     Op = 0x8e
)

// Bitwise logic.
const (
	OP_INVERT   Op = 0x90
	OP_AND      Op = 0x91
	OP_OR       Op = 0x92
	OP_XOR      Op = 0x93
	OP_EQUAL    Op = 0x97
	OP_NOTEQUAL Op = 0x98
)

// Arithmetic.
const (
	OP_SIGN        Op = 0x99
	OP_ABS         Op = 0x9a
	OP_NEGATE      Op = 0x9b
	OP_INC         Op = 0x9c
	OP_DEC         Op = 0x9d
	OP_ADD         Op = 0x9e
	OP_SUB         Op = 0x9f
	OP_MUL         Op = 0xa0
	OP_DIV         Op = 0xa1
	OP_MOD         Op = 0xa2
	OP_POW         Op = 0xa3
	OP_SQRT        Op = 0xa4
	OP_MODMUL      Op = 0xa5
	OP_MODPOW      Op = 0xa6
	OP_SHL         Op = 0xa8
	OP_SHR         Op = 0xa9
	OP_NOT         Op = 0xaa
	OP_BOOLAND     Op = 0xab
	OP_BOOLOR      Op = 0xac
	OP_NZ          Op = 0xb1
	OP_NUMEQUAL    Op = 0xb3
	OP_NUMNOTEQUAL Op = 0xb4
	OP_LT          Op = 0xb5
	OP_LE          Op = 0xb6
	OP_GT          Op = 0xb7
	OP_GE          Op = 0xb8
	OP_MIN         Op = 0xb9
	OP_MAX         Op = 0xba
	OP_WITHIN      Op = 0xbb
)

// Compound types.
const (
	OP_PACKMAP      Op = 0xbe
	OP_PACKSTRUCT   Op = 0xbf
	OP_PACK         Op = 0xc0
	OP_UNPACK       Op = 0xc1
	OP_NEWARRAY0    Op = 0xc2
	OP_NEWARRAY     Op = 0xc3
	OP_NEWARRAY_T   Op = 0xc4
	OP_NEWSTRUCT0   Op = 0xc5
	OP_NEWSTRUCT    Op = 0xc6
	OP_NEWMAP       Op = 0xc8
	OP_SIZE         Op = 0xca
	OP_HASKEY       Op = 0xcb
	OP_KEYS         Op = 0xcc
	OP_VALUES       Op = 0xcd
	OP_PICKITEM     Op = 0xce
	OP_APPEND       Op = 0xcf
	OP_SETITEM      Op = 0xd0
	OP_REVERSEITEMS Op = 0xd1
	OP_REMOVE       Op = 0xd2
	OP_CLEARITEMS   Op = 0xd3
	OP_POPITEM      Op = 0xd4
)

// Types.
const (
	OP_ISNULL  Op = 0xd8
	OP_ISTYPE  Op = 0xd9
	OP_CONVERT Op = 0xdb
)

// Extensions.
const (
	OP_ABORTMSG  Op = 0xe0
	OP_ASSERTMSG Op = 0xe1
)

type opInfo struct {
	op   Op
	name string

	// operand is the fixed operand length in bytes; prefix,
	// when nonzero, is the length of a little-endian size
	// prefix giving the operand length instead.
	operand int
	prefix  int
}

var (
	ops = [256]opInfo{
		OP_PUSHINT8:   {OP_PUSHINT8, "PUSHINT8", 1, 0},
		OP_PUSHINT16:  {OP_PUSHINT16, "PUSHINT16", 2, 0},
		OP_PUSHINT32:  {OP_PUSHINT32, "PUSHINT32", 4, 0},
		OP_PUSHINT64:  {OP_PUSHINT64, "PUSHINT64", 8, 0},
		OP_PUSHINT128: {OP_PUSHINT128, "PUSHINT128", 16, 0},
		OP_PUSHINT256: {OP_PUSHINT256, "PUSHINT256", 32, 0},
		OP_PUSHT:      {OP_PUSHT, "PUSHT", 0, 0},
		OP_PUSHF:      {OP_PUSHF, "PUSHF", 0, 0},
		OP_PUSHA:      {OP_PUSHA, "PUSHA", 4, 0},
		OP_PUSHNULL:   {OP_PUSHNULL, "PUSHNULL", 0, 0},
		OP_PUSHDATA1:  {OP_PUSHDATA1, "PUSHDATA1", 0, 1},
		OP_PUSHDATA2:  {OP_PUSHDATA2, "PUSHDATA2", 0, 2},
		OP_PUSHDATA4:  {OP_PUSHDATA4, "PUSHDATA4", 0, 4},
		OP_PUSHM1:     {OP_PUSHM1, "PUSHM1", 0, 0},

		OP_NOP:        {OP_NOP, "NOP", 0, 0},
		OP_JMP:        {OP_JMP, "JMP", 1, 0},
		OP_JMP_L:      {OP_JMP_L, "JMP_L", 4, 0},
		OP_JMPIF:      {OP_JMPIF, "JMPIF", 1, 0},
		OP_JMPIF_L:    {OP_JMPIF_L, "JMPIF_L", 4, 0},
		OP_JMPIFNOT:   {OP_JMPIFNOT, "JMPIFNOT", 1, 0},
		OP_JMPIFNOT_L: {OP_JMPIFNOT_L, "JMPIFNOT_L", 4, 0},
		OP_JMPEQ:      {OP_JMPEQ, "JMPEQ", 1, 0},
		OP_JMPEQ_L:    {OP_JMPEQ_L, "JMPEQ_L", 4, 0},
		OP_JMPNE:      {OP_JMPNE, "JMPNE", 1, 0},
		OP_JMPNE_L:    {OP_JMPNE_L, "JMPNE_L", 4, 0},
		OP_JMPGT:      {OP_JMPGT, "JMPGT", 1, 0},
		OP_JMPGT_L:    {OP_JMPGT_L, "JMPGT_L", 4, 0},
		OP_JMPGE:      {OP_JMPGE, "JMPGE", 1, 0},
		OP_JMPGE_L:    {OP_JMPGE_L, "JMPGE_L", 4, 0},
		OP_JMPLT:      {OP_JMPLT, "JMPLT", 1, 0},
		OP_JMPLT_L:    {OP_JMPLT_L, "JMPLT_L", 4, 0},
		OP_JMPLE:      {OP_JMPLE, "JMPLE", 1, 0},
		OP_JMPLE_L:    {OP_JMPLE_L, "JMPLE_L", 4, 0},
		OP_CALL:       {OP_CALL, "CALL", 1, 0},
		OP_CALL_L:     {OP_CALL_L, "CALL_L", 4, 0},
		OP_CALLA:      {OP_CALLA, "CALLA", 0, 0},
		OP_CALLT:      {OP_CALLT, "CALLT", 2, 0},
		OP_ABORT:      {OP_ABORT, "ABORT", 0, 0},
		OP_ASSERT:     {OP_ASSERT, "ASSERT", 0, 0},
		OP_THROW:      {OP_THROW, "THROW", 0, 0},
		OP_TRY:        {OP_TRY, "TRY", 2, 0},
		OP_TRY_L:      {OP_TRY_L, "TRY_L", 8, 0},
		OP_ENDTRY:     {OP_ENDTRY, "ENDTRY", 1, 0},
		OP_ENDTRY_L:   {OP_ENDTRY_L, "ENDTRY_L", 4, 0},
		OP_ENDFINALLY: {OP_ENDFINALLY, "ENDFINALLY", 0, 0},
		OP_RET:        {OP_RET, "RET", 0, 0},
		OP_SYSCALL:    {OP_SYSCALL, "SYSCALL", 4, 0},

		OP_DEPTH:    {OP_DEPTH, "DEPTH", 0, 0},
		OP_DROP:     {OP_DROP, "DROP", 0, 0},
		OP_NIP:      {OP_NIP, "NIP", 0, 0},
		OP_XDROP:    {OP_XDROP, "XDROP", 0, 0},
		OP_CLEAR:    {OP_CLEAR, "CLEAR", 0, 0},
		OP_DUP:      {OP_DUP, "DUP", 0, 0},
		OP_OVER:     {OP_OVER, "OVER", 0, 0},
		OP_PICK:     {OP_PICK, "PICK", 0, 0},
		OP_TUCK:     {OP_TUCK, "TUCK", 0, 0},
		OP_SWAP:     {OP_SWAP, "SWAP", 0, 0},
		OP_ROT:      {OP_ROT, "ROT", 0, 0},
		OP_ROLL:     {OP_ROLL, "ROLL", 0, 0},
		OP_REVERSE3: {OP_REVERSE3, "REVERSE3", 0, 0},
		OP_REVERSE4: {OP_REVERSE4, "REVERSE4", 0, 0},
		OP_REVERSEN: {OP_REVERSEN, "REVERSEN", 0, 0},

		OP_INITSSLOT: {OP_INITSSLOT, "INITSSLOT", 1, 0},
		OP_INITSLOT:  {OP_INITSLOT, "INITSLOT", 2, 0},
		OP_LDSFLD:    {OP_LDSFLD, "LDSFLD", 1, 0},
		OP_STSFLD:    {OP_STSFLD, "STSFLD", 1, 0},
		OP_LDLOC:     {OP_LDLOC, "LDLOC", 1, 0},
		OP_STLOC:     {OP_STLOC, "STLOC", 1, 0},
		OP_LDARG:     {OP_LDARG, "LDARG", 1, 0},
		OP_STARG:     {OP_STARG, "STARG", 1, 0},

		OP_NEWBUFFER: {OP_NEWBUFFER, "NEWBUFFER", 0, 0},
		OP_MEMCPY:    {OP_MEMCPY, "MEMCPY", 0, 0},
		OP_CAT:       {OP_CAT, "CAT", 0, 0},
		OP_SUBSTR:    {OP_SUBSTR, "SUBSTR", 0, 0},
		OP_LEFT:      {OP_LEFT, "LEFT", 0, 0},
		OP_RIGHT:     {OP_RIGHT, "RIGHT", 0, 0},

		OP_INVERT:   {OP_INVERT, "INVERT", 0, 0},
		OP_AND:      {OP_AND, "AND", 0, 0},
		OP_OR:       {OP_OR, "OR", 0, 0},
		OP_XOR:      {OP_XOR, "XOR", 0, 0},
		OP_EQUAL:    {OP_EQUAL, "EQUAL", 0, 0},
		OP_NOTEQUAL: {OP_NOTEQUAL, "NOTEQUAL", 0, 0},

		OP_SIGN:        {OP_SIGN, "SIGN", 0, 0},
		OP_ABS:         {OP_ABS, "ABS", 0, 0},
		OP_NEGATE:      {OP_NEGATE, "NEGATE", 0, 0},
		OP_INC:         {OP_INC, "INC", 0, 0},
		OP_DEC:         {OP_DEC, "DEC", 0, 0},
		OP_ADD:         {OP_ADD, "ADD", 0, 0},
		OP_SUB:         {OP_SUB, "SUB", 0, 0},
		OP_MUL:         {OP_MUL, "MUL", 0, 0},
		OP_DIV:         {OP_DIV, "DIV", 0, 0},
		OP_MOD:         {OP_MOD, "MOD", 0, 0},
		OP_POW:         {OP_POW, "POW", 0, 0},
		OP_SQRT:        {OP_SQRT, "SQRT", 0, 0},
		OP_MODMUL:      {OP_MODMUL, "MODMUL", 0, 0},
		OP_MODPOW:      {OP_MODPOW, "MODPOW", 0, 0},
		OP_SHL:         {OP_SHL, "SHL", 0, 0},
		OP_SHR:         {OP_SHR, "SHR", 0, 0},
		OP_NOT:         {OP_NOT, "NOT", 0, 0},
		OP_BOOLAND:     {OP_BOOLAND, "BOOLAND", 0, 0},
		OP_BOOLOR:      {OP_BOOLOR, "BOOLOR", 0, 0},
		OP_NZ:          {OP_NZ, "NZ", 0, 0},
		OP_NUMEQUAL:    {OP_NUMEQUAL, "NUMEQUAL", 0, 0},
		OP_NUMNOTEQUAL: {OP_NUMNOTEQUAL, "NUMNOTEQUAL", 0, 0},
		OP_LT:          {OP_LT, "LT", 0, 0},
		OP_LE:          {OP_LE, "LE", 0, 0},
		OP_GT:          {OP_GT, "GT", 0, 0},
		OP_GE:          {OP_GE, "GE", 0, 0},
		OP_MIN:         {OP_MIN, "MIN", 0, 0},
		OP_MAX:         {OP_MAX, "MAX", 0, 0},
		OP_WITHIN:      {OP_WITHIN, "WITHIN", 0, 0},

		OP_PACKMAP:      {OP_PACKMAP, "PACKMAP", 0, 0},
		OP_PACKSTRUCT:   {OP_PACKSTRUCT, "PACKSTRUCT", 0, 0},
		OP_PACK:         {OP_PACK, "PACK", 0, 0},
		OP_UNPACK:       {OP_UNPACK, "UNPACK", 0, 0},
		OP_NEWARRAY0:    {OP_NEWARRAY0, "NEWARRAY0", 0, 0},
		OP_NEWARRAY:     {OP_NEWARRAY, "NEWARRAY", 0, 0},
		OP_NEWARRAY_T:   {OP_NEWARRAY_T, "NEWARRAY_T", 1, 0},
		OP_NEWSTRUCT0:   {OP_NEWSTRUCT0, "NEWSTRUCT0", 0, 0},
		OP_NEWSTRUCT:    {OP_NEWSTRUCT, "NEWSTRUCT", 0, 0},
		OP_NEWMAP:       {OP_NEWMAP, "NEWMAP", 0, 0},
		OP_SIZE:         {OP_SIZE, "SIZE", 0, 0},
		OP_HASKEY:       {OP_HASKEY, "HASKEY", 0, 0},
		OP_KEYS:         {OP_KEYS, "KEYS", 0, 0},
		OP_VALUES:       {OP_VALUES, "VALUES", 0, 0},
		OP_PICKITEM:     {OP_PICKITEM, "PICKITEM", 0, 0},
		OP_APPEND:       {OP_APPEND, "APPEND", 0, 0},
		OP_SETITEM:      {OP_SETITEM, "SETITEM", 0, 0},
		OP_REVERSEITEMS: {OP_REVERSEITEMS, "REVERSEITEMS", 0, 0},
		OP_REMOVE:       {OP_REMOVE, "REMOVE", 0, 0},
		OP_CLEARITEMS:   {OP_CLEARITEMS, "CLEARITEMS", 0, 0},
		OP_POPITEM:      {OP_POPITEM, "POPITEM", 0, 0},

		OP_ISNULL:  {OP_ISNULL, "ISNULL", 0, 0},
		OP_ISTYPE:  {OP_ISTYPE, "ISTYPE", 1, 0},
		OP_CONVERT: {OP_CONVERT, "CONVERT", 1, 0},

		OP_ABORTMSG:  {OP_ABORTMSG, "ABORTMSG", 0, 0},
		OP_ASSERTMSG: {OP_ASSERTMSG, "ASSERTMSG", 0, 0},
	}

	opsByName map[string]Op
)

func init() {
	for i := 0; i <= 16; i++ {
		op := OP_PUSH0 + Op(i)
		ops[op] = opInfo{op, "PUSH" + strconv.Itoa(i), 0, 0}
	}
	slotOps := []struct {
		base Op
		name string
	}{
		{OP_LDSFLD0, "LDSFLD"},
		{OP_STSFLD0, "STSFLD"},
		{OP_LDLOC0, "LDLOC"},
		{OP_STLOC0, "STLOC"},
		{OP_LDARG0, "LDARG"},
		{OP_STARG0, "STARG"},
	}
	for _, s := range slotOps {
		for i := 0; i <= 6; i++ {
			op := s.base + Op(i)
			ops[op] = opInfo{op, s.name + strconv.Itoa(i), 0, 0}
		}
	}

	opsByName = make(map[string]Op)
	for _, info := range ops {
		if info.name != "" {
			opsByName[info.name] = info.op
		}
	}
}

// isJump reports whether op takes a branch displacement
// operand (the _L forms take four bytes, the rest one).
func isJump(op Op) bool {
	return (op >= OP_JMP && op <= OP_CALL_L) || op == OP_ENDTRY || op == OP_ENDTRY_L
}
