package vm

import (
	"testing"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
	"github.com/onyx-protocol/neovm/testutil"
)

func TestStackOps(t *testing.T) {
	runCases(t, []progCase{
		{prog: "1 2 3 DEPTH", want: []interface{}{1, 2, 3, 3}},
		{prog: "1 2 DROP", want: []interface{}{1}},
		{prog: "1 2 NIP", want: []interface{}{2}},
		{prog: "1 2 3 4 2 XDROP", want: []interface{}{1, 3, 4}},
		{prog: "1 2 CLEAR", want: []interface{}{}},
		{prog: "1 DUP", want: []interface{}{1, 1}},
		{prog: "1 2 OVER", want: []interface{}{1, 2, 1}},
		{prog: "1 2 3 2 PICK", want: []interface{}{1, 2, 3, 1}},
		{prog: "1 2 TUCK", want: []interface{}{2, 1, 2}},
		{prog: "1 2 SWAP", want: []interface{}{2, 1}},
		{prog: "1 2 3 ROT", want: []interface{}{2, 3, 1}},
		{prog: "1 2 3 4 3 ROLL", want: []interface{}{2, 3, 4, 1}},
		{prog: "1 2 3 0 ROLL", want: []interface{}{1, 2, 3}},
		{prog: "1 2 3 REVERSE3", want: []interface{}{3, 2, 1}},
		{prog: "1 2 3 4 REVERSE4", want: []interface{}{4, 3, 2, 1}},
		{prog: "1 2 3 4 5 3 REVERSEN", want: []interface{}{1, 2, 5, 4, 3}},

		{prog: "DROP", wantErr: ErrStackUnderflow},
		{prog: "1 NIP", wantErr: ErrStackUnderflow},
		{prog: "1 SWAP", wantErr: ErrStackUnderflow},
		{prog: "1 2 REVERSE3", wantErr: ErrStackUnderflow},
		{prog: "1 5 PICK", wantErr: ErrStackUnderflow},
		{prog: "1 -1 PICK", wantErr: ErrUnhandled},
		{prog: "1 -1 ROLL", wantErr: ErrUnhandled},
		{prog: "1 2147483648 PICK", wantErr: ErrUnhandled},
	})
}

func TestNegativeCountMessage(t *testing.T) {
	e := run(t, "1 -1 PICK", DefaultLimits)
	want := stackitem.ByteString("The negative value -1 is invalid for OpCode.PICK.")
	if got := e.UncaughtException(); got != want {
		t.Errorf("uncaught = %q, want %q", got, want)
	}
}

func TestSlotOps(t *testing.T) {
	runCases(t, []progCase{
		{prog: "INITSLOT:1,0 5 STLOC0 LDLOC0", want: []interface{}{5}},
		{prog: "INITSLOT:9,0 5 STLOC:8 LDLOC:8", want: []interface{}{5}},
		{prog: "INITSLOT:2,0 LDLOC1", want: []interface{}{nil}},
		{prog: "INITSSLOT:1 7 STSFLD0 LDSFLD0", want: []interface{}{7}},
		{prog: "1 2 INITSLOT:0,2 LDARG0 LDARG1", want: []interface{}{2, 1}},
		{prog: "1 2 INITSLOT:0,2 9 STARG1 LDARG1", want: []interface{}{9}},

		{prog: "LDLOC0", wantErr: ErrInvalidState},
		{prog: "INITSLOT:1,0 LDLOC1", wantErr: ErrInvalidState},
		{prog: "INITSLOT:1,0 1 STLOC1", wantErr: ErrInvalidState},
		{prog: "INITSLOT:1,0 INITSLOT:1,0", wantErr: ErrInvalidState},
		{prog: "INITSSLOT:1 INITSSLOT:1", wantErr: ErrInvalidState},
		{prog: "INITSLOT:0,0", wantErr: ErrBadOperand},
		{prog: "INITSSLOT:0", wantErr: ErrBadOperand},
		{prog: "INITSLOT:0,1", wantErr: ErrStackUnderflow},
	})
}

func TestSlotLoadMessage(t *testing.T) {
	e := run(t, "INITSLOT:1,0 LDLOC3", DefaultLimits)
	if errors.Root(e.FaultError()) != ErrInvalidState {
		t.Fatalf("fault = %v, want ErrInvalidState", e.FaultError())
	}
	testutil.ExpectEqual(t, errors.Detail(e.FaultError()), "Index out of range when loading from slot: 3", "detail")
}
