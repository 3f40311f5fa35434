package vm

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

// ErrToken is returned by Assemble for text it cannot parse.
var ErrToken = errors.New("unrecognized token")

// Assemble converts text to a script.
//
// Notation:
//
//	ADD              opcode
//	12345, -1        integer, pushed with the shortest push
//	0x00ff           data, pushed with PUSHDATA
//	'foo'            string data; \' and \\ escape
//	$loop            label definition
//	JMP:$loop        opcode with operands, comma-separated;
//	                 branch operands are labels or offsets
//	TRY:$catch,_     _ marks an absent catch or finally
//	CONVERT:Integer  type operands by name or number
func Assemble(s string) ([]byte, error) {
	tokens, err := tokenize(s)
	if err != nil {
		return nil, err
	}

	var res []byte
	type fixup struct {
		inst  int // position of the instruction
		at    int // position of the operand bytes
		width int
		label string
	}
	var fixups []fixup
	labels := make(map[string]int)

	for _, tok := range tokens {
		switch {
		case tok[0] == '$':
			if _, ok := labels[tok]; ok {
				return nil, errors.WithDetailf(ErrToken, "label %s defined twice", tok)
			}
			labels[tok] = len(res)

		case tok[0] == '\'':
			res = append(res, PushdataBytes(unquote(tok))...)

		case strings.HasPrefix(tok, "0x"):
			b, err := hex.DecodeString(tok[2:])
			if err != nil {
				return nil, errors.Wrapf(err, "bad hex literal %s", tok)
			}
			res = append(res, PushdataBytes(b)...)

		case tok[0] == '-' || unicode.IsDigit(rune(tok[0])):
			v, ok := new(big.Int).SetString(tok, 10)
			if !ok {
				return nil, errors.WithDetailf(ErrToken, "bad number %s", tok)
			}
			p, err := PushdataInt(v)
			if err != nil {
				return nil, err
			}
			res = append(res, p...)

		case strings.HasPrefix(tok, "NOPx"):
			b, err := hex.DecodeString(tok[4:])
			if err != nil || len(b) != 1 {
				return nil, errors.WithDetailf(ErrToken, "bad opcode %s", tok)
			}
			res = append(res, b[0])

		default:
			name, arg := tok, ""
			if i := strings.IndexByte(tok, ':'); i >= 0 {
				name, arg = tok[:i], tok[i+1:]
			}
			op, ok := opsByName[name]
			if !ok {
				return nil, errors.WithDetailf(ErrToken, "unknown opcode %s", name)
			}
			inst := len(res)
			res = append(res, byte(op))
			args := splitArgs(arg)
			operand, refs, err := encodeOperand(op, args)
			if err != nil {
				return nil, errors.Wrapf(err, "assembling %s", tok)
			}
			for _, r := range refs {
				fixups = append(fixups, fixup{inst, len(res) + r.at, r.width, r.label})
			}
			res = append(res, operand...)
		}
	}

	for _, f := range fixups {
		pos, ok := labels[f.label]
		if !ok {
			return nil, errors.WithDetailf(ErrToken, "undefined label %s", f.label)
		}
		off := pos - f.inst
		if f.width == 1 {
			if off < -128 || off > 127 {
				return nil, errors.WithDetailf(ErrToken, "label %s out of range of short branch at %d", f.label, f.inst)
			}
			res[f.at] = byte(int8(off))
		} else {
			binary.LittleEndian.PutUint32(res[f.at:], uint32(int32(off)))
		}
	}
	return res, nil
}

type labelRef struct {
	at    int // offset within the operand
	width int
	label string
}

func encodeOperand(op Op, args []string) ([]byte, []labelRef, error) {
	info := ops[op]
	if info.prefix > 0 {
		if len(args) != 1 || !strings.HasPrefix(args[0], "0x") {
			return nil, nil, errors.WithDetail(ErrToken, "want one hex operand")
		}
		b, err := hex.DecodeString(args[0][2:])
		if err != nil {
			return nil, nil, err
		}
		return appendPrefixed(nil, info.prefix, b), nil, nil
	}
	if info.operand == 0 {
		if len(args) != 0 {
			return nil, nil, errors.WithDetail(ErrToken, "unexpected operand")
		}
		return nil, nil, nil
	}

	operand := make([]byte, info.operand)
	var refs []labelRef
	switch {
	case isJump(op) || op == OP_PUSHA || op == OP_TRY || op == OP_TRY_L:
		width := 4
		if info.operand <= 2 {
			width = 1
		}
		want := info.operand / width
		if len(args) != want {
			return nil, nil, errors.WithDetailf(ErrToken, "want %d branch operands", want)
		}
		for i, a := range args {
			switch {
			case a == "_":
				// offset 0 means absent
			case a[0] == '$':
				refs = append(refs, labelRef{i * width, width, a})
			default:
				n, err := strconv.ParseInt(a, 10, 32)
				if err != nil {
					return nil, nil, err
				}
				if width == 1 {
					if n < -128 || n > 127 {
						return nil, nil, errors.WithDetailf(ErrToken, "offset %d out of range", n)
					}
					operand[i] = byte(int8(n))
				} else {
					binary.LittleEndian.PutUint32(operand[i*4:], uint32(int32(n)))
				}
			}
		}

	case op == OP_ISTYPE || op == OP_CONVERT || op == OP_NEWARRAY_T:
		if len(args) != 1 {
			return nil, nil, errors.WithDetail(ErrToken, "want one type operand")
		}
		t, ok := stackitem.ParseType(args[0])
		if !ok {
			n, err := strconv.ParseUint(args[0], 0, 8)
			if err != nil {
				return nil, nil, errors.WithDetailf(ErrToken, "unknown type %s", args[0])
			}
			t = stackitem.Type(n)
		}
		operand[0] = byte(t)

	default:
		// Fixed-width little-endian integers: PUSHINT*, slot
		// indexes, INITSLOT counts, CALLT and SYSCALL.
		if len(args) == 0 || info.operand%len(args) != 0 {
			return nil, nil, errors.WithDetailf(ErrToken, "want %d bytes of operand", info.operand)
		}
		width := info.operand / len(args)
		for i, a := range args {
			v, ok := new(big.Int).SetString(a, 0)
			if !ok {
				return nil, nil, errors.WithDetailf(ErrToken, "bad number %s", a)
			}
			b := stackitem.IntToBytes(v)
			if v.Sign() >= 0 && len(b) == width+1 && b[width] == 0 {
				b = b[:width] // unsigned operands may use the top bit
			}
			if len(b) > width {
				return nil, nil, errors.WithDetailf(ErrToken, "%s does not fit in %d bytes", a, width)
			}
			field := operand[i*width : (i+1)*width]
			copy(field, b)
			if v.Sign() < 0 {
				for j := len(b); j < width; j++ {
					field[j] = 0xff
				}
			}
		}
	}
	return operand, refs, nil
}

func splitArgs(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func tokenize(s string) ([]string, error) {
	var tokens []string
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case unicode.IsSpace(rune(c)):
			i++
		case c == '\'':
			j := i + 1
			for ; j < len(s) && s[j] != '\''; j++ {
				if s[j] == '\\' {
					j++
				}
			}
			if j >= len(s) {
				return nil, errors.WithDetail(ErrToken, "unterminated quote")
			}
			tokens = append(tokens, s[i:j+1])
			i = j + 1
		default:
			j := i
			for j < len(s) && !unicode.IsSpace(rune(s[j])) {
				j++
			}
			tokens = append(tokens, s[i:j])
			i = j
		}
	}
	return tokens, nil
}

func unquote(tok string) []byte {
	var b []byte
	for i := 1; i < len(tok)-1; i++ {
		if tok[i] == '\\' {
			i++
		}
		b = append(b, tok[i])
	}
	return b
}

// PushdataBytes returns the instruction pushing b.
func PushdataBytes(b []byte) []byte {
	switch {
	case len(b) <= 0xff:
		return appendPrefixed([]byte{byte(OP_PUSHDATA1)}, 1, b)
	case len(b) <= 0xffff:
		return appendPrefixed([]byte{byte(OP_PUSHDATA2)}, 2, b)
	}
	return appendPrefixed([]byte{byte(OP_PUSHDATA4)}, 4, b)
}

func appendPrefixed(dst []byte, prefix int, b []byte) []byte {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	dst = append(dst, n[:prefix]...)
	return append(dst, b...)
}

// PushdataInt64 returns the shortest instruction pushing n.
func PushdataInt64(n int64) []byte {
	p, _ := PushdataInt(big.NewInt(n))
	return p
}

// PushdataInt returns the shortest instruction pushing v.
func PushdataInt(v *big.Int) ([]byte, error) {
	if v.IsInt64() && v.Int64() >= -1 && v.Int64() <= 16 {
		return []byte{byte(OP_PUSH0) + byte(v.Int64())}, nil
	}
	b := stackitem.IntToBytes(v)
	for op, width := OP_PUSHINT8, 1; op <= OP_PUSHINT256; op, width = op+1, width*2 {
		if len(b) > width {
			continue
		}
		res := make([]byte, 1+width)
		res[0] = byte(op)
		copy(res[1:], b)
		if v.Sign() < 0 {
			for i := 1 + len(b); i < len(res); i++ {
				res[i] = 0xff
			}
		}
		return res, nil
	}
	return nil, errors.WithDetailf(stackitem.ErrTooBig, "MaxSize exceed: %d", len(b))
}

// Disassemble converts a script to the notation Assemble reads.
// Branch targets get generated labels.
func Disassemble(script []byte) (string, error) {
	type decoded struct {
		pos  int
		inst Instruction
	}
	var insts []decoded
	targets := make(map[int]string)
	target := func(pos int) string {
		if l, ok := targets[pos]; ok {
			return l
		}
		l := labelName(len(targets))
		targets[pos] = l
		return l
	}

	for pos := 0; pos < len(script); {
		inst, err := ParseInstruction(script, pos)
		if err != nil {
			return "", err
		}
		insts = append(insts, decoded{pos, inst})
		pos += inst.Size
	}
	// Assign labels in program order before rendering.
	for _, d := range insts {
		switch {
		case isJump(d.inst.Op) || d.inst.Op == OP_PUSHA:
			target(d.pos + d.inst.Offset())
		case d.inst.Op == OP_TRY || d.inst.Op == OP_TRY_L:
			c, f := tryOffsets(d.inst)
			if c != 0 {
				target(d.pos + c)
			}
			if f != 0 {
				target(d.pos + f)
			}
		}
	}

	var words []string
	for _, d := range insts {
		if l, ok := targets[d.pos]; ok {
			words = append(words, l)
		}
		words = append(words, disassembleInst(d.pos, d.inst, targets))
	}
	if l, ok := targets[len(script)]; ok {
		words = append(words, l)
	}
	return strings.Join(words, " "), nil
}

func tryOffsets(inst Instruction) (catch, finally int) {
	if inst.Op == OP_TRY {
		return inst.TokenI8(), inst.TokenI8_1()
	}
	return inst.TokenI32(), inst.TokenI32_1()
}

func disassembleInst(pos int, inst Instruction, targets map[int]string) string {
	op := inst.Op
	info := ops[op]
	switch {
	case !op.IsDefined():
		return fmt.Sprintf("NOPx%02x", byte(op))

	case op >= OP_PUSHM1 && op <= OP_PUSH16:
		return strconv.Itoa(int(op) - int(OP_PUSH0))

	case op >= OP_PUSHINT8 && op <= OP_PUSHINT256:
		v := stackitem.BytesToInt(inst.Operand)
		if p, _ := PushdataInt(v); bytes.Equal(p[1:], inst.Operand) && Op(p[0]) == op {
			return v.String()
		}
		return fmt.Sprintf("%s:%s", op, v)

	case info.prefix > 0:
		if p := PushdataBytes(inst.Operand); Op(p[0]) == op {
			if isPrintable(inst.Operand) {
				return quote(inst.Operand)
			}
			return "0x" + hex.EncodeToString(inst.Operand)
		}
		return fmt.Sprintf("%s:0x%x", op, inst.Operand)

	case isJump(op) || op == OP_PUSHA:
		return fmt.Sprintf("%s:%s", op, targets[pos+inst.Offset()])

	case op == OP_TRY || op == OP_TRY_L:
		c, f := tryOffsets(inst)
		ct, ft := "_", "_"
		if c != 0 {
			ct = targets[pos+c]
		}
		if f != 0 {
			ft = targets[pos+f]
		}
		return fmt.Sprintf("%s:%s,%s", op, ct, ft)

	case op == OP_ISTYPE || op == OP_CONVERT || op == OP_NEWARRAY_T:
		return fmt.Sprintf("%s:%s", op, stackitem.Type(inst.TokenU8()))

	case op == OP_INITSLOT:
		return fmt.Sprintf("%s:%d,%d", op, inst.TokenU8(), inst.TokenU8_1())

	case op == OP_SYSCALL:
		return fmt.Sprintf("%s:0x%08x", op, inst.TokenU32())

	case op == OP_CALLT:
		return fmt.Sprintf("%s:%d", op, inst.TokenU16())

	case info.operand == 1:
		return fmt.Sprintf("%s:%d", op, inst.TokenU8())
	}
	return op.String()
}

var labelNames = []string{
	"alpha", "beta", "gamma", "delta", "epsilon", "zeta", "eta", "theta",
	"iota", "kappa", "lambda", "mu", "nu", "xi", "omicron", "pi",
	"rho", "sigma", "tau", "upsilon", "phi", "chi", "psi", "omega",
}

func labelName(i int) string {
	if i < len(labelNames) {
		return "$" + labelNames[i]
	}
	return fmt.Sprintf("$%s%d", labelNames[i%len(labelNames)], i/len(labelNames))
}

func isPrintable(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return false
		}
	}
	return true
}

func quote(b []byte) string {
	var buf bytes.Buffer
	buf.WriteByte('\'')
	for _, c := range b {
		if c == '\\' || c == '\'' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(c)
	}
	buf.WriteByte('\'')
	return buf.String()
}
