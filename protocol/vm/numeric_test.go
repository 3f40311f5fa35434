package vm

import (
	"testing"

	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

func TestNumericOps(t *testing.T) {
	runCases(t, []progCase{
		{prog: "1 2 ADD", want: []interface{}{3}},
		{prog: "5 3 SUB", want: []interface{}{2}},
		{prog: "3 4 MUL", want: []interface{}{12}},

		// Division truncates toward zero; the remainder takes the
		// sign of the dividend.
		{prog: "-7 2 DIV", want: []interface{}{-3}},
		{prog: "7 -2 DIV", want: []interface{}{-3}},
		{prog: "-7 2 MOD", want: []interface{}{-1}},
		{prog: "7 -2 MOD", want: []interface{}{1}},
		{prog: "1 0 DIV", wantErr: ErrUnhandled},
		{prog: "1 0 MOD", wantErr: ErrUnhandled},

		{prog: "2 10 POW", want: []interface{}{1024}},
		{prog: "2 -1 POW", wantErr: ErrShiftRange},
		{prog: "17 SQRT", want: []interface{}{4}},
		{prog: "0 SQRT", want: []interface{}{0}},
		{prog: "-1 SQRT", wantErr: ErrUnhandled},
		{prog: "3 4 5 MODMUL", want: []interface{}{2}},
		{prog: "-3 3 5 MODPOW", want: []interface{}{-2}},
		{prog: "3 -1 7 MODPOW", want: []interface{}{5}},
		{prog: "2 -1 4 MODPOW", wantErr: ErrUnhandled},

		{prog: "1 3 SHL", want: []interface{}{8}},
		{prog: "-8 2 SHR", want: []interface{}{-2}},
		{prog: "-1 1 SHR", want: []interface{}{-1}},
		{prog: "5 0 SHL", want: []interface{}{5}},
		{prog: "1 257 SHL", wantErr: ErrShiftRange},
		{prog: "1 -1 SHL", wantErr: ErrShiftRange},

		{prog: "5 NEGATE", want: []interface{}{-5}},
		{prog: "-5 ABS", want: []interface{}{5}},
		{prog: "-5 SIGN", want: []interface{}{-1}},
		{prog: "0 SIGN", want: []interface{}{0}},
		{prog: "5 INC", want: []interface{}{6}},
		{prog: "5 DEC", want: []interface{}{4}},
		{prog: "3 7 MIN", want: []interface{}{3}},
		{prog: "3 7 MAX", want: []interface{}{7}},

		{prog: "0 NOT", want: []interface{}{true}},
		{prog: "1 0 BOOLAND", want: []interface{}{false}},
		{prog: "1 0 BOOLOR", want: []interface{}{true}},
		{prog: "0 NZ", want: []interface{}{false}},
		{prog: "3 3 NUMEQUAL", want: []interface{}{true}},
		{prog: "3 4 NUMNOTEQUAL", want: []interface{}{true}},
		{prog: "1 2 LT", want: []interface{}{true}},
		{prog: "2 2 LE", want: []interface{}{true}},
		{prog: "1 2 GT", want: []interface{}{false}},
		{prog: "2 2 GE", want: []interface{}{true}},
		{prog: "PUSHNULL 1 LT", want: []interface{}{false}},
		{prog: "1 PUSHNULL GE", want: []interface{}{false}},
		{prog: "5 1 10 WITHIN", want: []interface{}{true}},
		{prog: "10 1 10 WITHIN", want: []interface{}{false}},

		// Byte strings convert as little-endian two's complement.
		{prog: "0x0001 1 ADD", want: []interface{}{257}},
		{prog: "0xff 1 ADD", want: []interface{}{0}},
		{prog: "PUSHT 1 ADD", want: []interface{}{2}},
		{prog: "NEWARRAY0 1 ADD", wantErr: ErrUnhandled},
	})
}

func TestBitwiseOps(t *testing.T) {
	runCases(t, []progCase{
		{prog: "5 INVERT", want: []interface{}{-6}},
		{prog: "12 10 AND", want: []interface{}{8}},
		{prog: "12 10 OR", want: []interface{}{14}},
		{prog: "12 10 XOR", want: []interface{}{6}},
		{prog: "-1 255 AND", want: []interface{}{255}},
		{prog: "0x0102 0x0102 EQUAL", want: []interface{}{true}},
		{prog: "1 0x01 EQUAL", want: []interface{}{false}},
		{prog: "1 0x01 NOTEQUAL", want: []interface{}{true}},
		{prog: "NEWARRAY0 NEWARRAY0 EQUAL", want: []interface{}{false}},
		{prog: "NEWARRAY0 DUP EQUAL", want: []interface{}{true}},
		{prog: "NEWSTRUCT0 NEWSTRUCT0 EQUAL", want: []interface{}{true}},
		{prog: "PUSHNULL PUSHNULL EQUAL", want: []interface{}{true}},
	})
}

// Results are bounded to 32 bytes.
func TestIntegerSize(t *testing.T) {
	e := run(t, "1 254 SHL", DefaultLimits)
	if e.State() != StateHalt {
		t.Fatalf("1<<254: state %s: %v", e.State(), e.FaultError())
	}

	e = run(t, "1 255 SHL", DefaultLimits)
	if e.State() != StateFault {
		t.Fatalf("1<<255: state %s, want FAULT", e.State())
	}
	if got, want := e.UncaughtException(), stackitem.ByteString("MaxSize exceed: 33"); got != want {
		t.Errorf("1<<255: uncaught %v, want %v", got, want)
	}
}
