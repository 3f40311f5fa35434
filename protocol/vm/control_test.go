package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

func TestJumps(t *testing.T) {
	runCases(t, []progCase{
		{prog: "1 JMP:$e 2 $e 3", want: []interface{}{1, 3}},
		{prog: "JMP_L:$e 1 $e 2", want: []interface{}{2}},
		{prog: "1 0 JMPIF:$e 2 $e 3", want: []interface{}{1, 2, 3}},
		{prog: "1 1 JMPIF:$e 2 $e 3", want: []interface{}{1, 3}},
		{prog: "0 JMPIFNOT:$e 2 $e 3", want: []interface{}{3}},
		{prog: "3 3 JMPEQ:$e 1 $e 2", want: []interface{}{2}},
		{prog: "3 4 JMPNE_L:$e 1 $e 2", want: []interface{}{2}},
		{prog: "5 3 JMPGT:$e 1 $e 2", want: []interface{}{2}},
		{prog: "3 3 JMPGE:$e 1 $e 2", want: []interface{}{2}},
		{prog: "5 3 JMPLT:$e 1 $e 2", want: []interface{}{1, 2}},
		{prog: "3 3 JMPLE:$e 1 $e 2", want: []interface{}{2}},
		{prog: "3 $loop DEC DUP JMPIF:$loop", want: []interface{}{0}},

		{prog: "JMP:100", wantErr: ErrBadJump},
		{prog: "JMP:-5", wantErr: ErrBadJump},
		{prog: "NOP JMP_L:-2147483648", wantErr: ErrBadJump},
		// The end of the script is a valid target and returns.
		{prog: "1 JMP:$e 2 $e", want: []interface{}{1}},
		{prog: "1 JMPIF:2", want: []interface{}{}},
		{prog: "JMP:3", wantErr: ErrBadJump},
	})
}

func TestCalls(t *testing.T) {
	runCases(t, []progCase{
		{prog: "CALL:$f 2 RET $f 1 RET", want: []interface{}{1, 2}},
		{prog: "CALL_L:$f 2 RET $f 1", want: []interface{}{1, 2}},
		{prog: "PUSHA:$f CALLA 2 RET $f 1 RET", want: []interface{}{1, 2}},
		{prog: "1 CALLA", wantErr: ErrUnhandled},
		{prog: "PUSHA:100", wantErr: ErrBadJump},
		{prog: "CALL:100", wantErr: ErrBadJump},
		{prog: "1 CALL:$e $e", want: []interface{}{1}},
		{prog: "CALLT:1", wantErr: ErrInvalidState},
		// Static fields are shared with the callee.
		{prog: "INITSSLOT:1 5 STSFLD0 CALL:$f RET $f LDSFLD0 RET", want: []interface{}{5}},
		// Locals are not.
		{prog: "INITSLOT:1,0 5 STLOC0 CALL:$f LDLOC0 RET $f INITSLOT:1,0 LDLOC0 RET", want: []interface{}{nil, 5}},
	})
}

func TestCallAcrossScripts(t *testing.T) {
	e := New(nil, DefaultLimits)
	ectx, err := e.LoadScript(MustNewScript([]byte{byte(OP_CALLA)}), -1, 0)
	if err != nil {
		t.Fatal(err)
	}
	other := MustNewScript([]byte{byte(OP_RET)})
	ectx.EvaluationStack().Push(stackitem.NewPointer(other, 0))

	if e.Execute() != StateFault {
		t.Fatalf("state %s, want FAULT", e.State())
	}
	if got := errors.Detail(e.FaultError()); got != "Pointers can't be shared between scripts" {
		t.Errorf("fault = %q", got)
	}
}

func TestAbortAssert(t *testing.T) {
	cases := []struct {
		prog    string
		wantErr error
		detail  string
	}{
		{"ABORT", ErrAbort, "ABORT is executed."},
		{"TRY:$c,_ ABORT $c 1", ErrAbort, "ABORT is executed."},
		{"0 ASSERT", ErrAssert, "ASSERT is executed with false result."},
		{"'oops' ABORTMSG", ErrAbort, "ABORTMSG is executed. Reason: oops"},
		{"0 'bad' ASSERTMSG", ErrAssert, "ASSERTMSG is executed with false result. Reason: bad"},
		{"SYSCALL:0x01020304", ErrInvalidState, "Syscall not found: 16909060"},
		{"CALLT:7", ErrInvalidState, "Token not found: 7"},
		{"TRY:_,_", ErrBadTry, "catchOffset and finallyOffset can't be 0 in a TRY block"},
		{"ENDTRY:$e $e NOP", ErrBadTry, "The corresponding TRY block cannot be found."},
		{"ENDFINALLY", ErrBadTry, "The corresponding TRY block cannot be found."},
		{"TRY:_,$f ENDTRY:$e $f ENDTRY:$e $e NOP", ErrBadTry, "The opcode ENDTRY can't be executed in a FINALLY block."},
	}
	for _, c := range cases {
		e := run(t, c.prog, DefaultLimits)
		if e.State() != StateFault {
			t.Errorf("%s: state %s, want FAULT", c.prog, e.State())
			continue
		}
		if errors.Root(e.FaultError()) != c.wantErr {
			t.Errorf("%s: got error %v, want %v", c.prog, e.FaultError(), c.wantErr)
		}
		if got := errors.Detail(e.FaultError()); got != c.detail {
			t.Errorf("%s: detail %q, want %q", c.prog, got, c.detail)
		}
	}

	runCases(t, []progCase{
		{prog: "1 ASSERT 5", want: []interface{}{5}},
		{prog: "1 'fine' ASSERTMSG 5", want: []interface{}{5}},
	})
}

func TestTryCatchFinally(t *testing.T) {
	runCases(t, []progCase{
		// Catch receives the thrown item.
		{
			prog: "TRY:$c,_ 'boom' THROW ENDTRY:$end $c ENDTRY:$end $end 9",
			want: []interface{}{"boom", 9},
		},
		// The evaluation stack is cut back to its depth at TRY.
		{
			prog: "1 TRY:$c,_ 2 3 'x' THROW ENDTRY:$e $c ENDTRY:$e $e",
			want: []interface{}{1, "x"},
		},
		// Finally runs on the normal path.
		{
			prog: "TRY:_,$f 1 ENDTRY:$e $f 2 ENDFINALLY $e 3",
			want: []interface{}{1, 2, 3},
		},
		// Catch, then finally, then the end of the region.
		{
			prog: "TRY:$c,$f 'x' THROW ENDTRY:$e $c DROP 1 ENDTRY:$e $f 2 ENDFINALLY $e 3",
			want: []interface{}{1, 2, 3},
		},
		// A throw inside catch runs finally, then propagates.
		{
			prog: "TRY:$o,_ TRY:$c,$f 'a' THROW ENDTRY:$e $c 'b' THROW $f 7 ENDFINALLY $e NOP $o ENDTRY:$x $x",
			want: []interface{}{"b"},
		},
		// An exception in a callee is caught by the caller and the
		// callee's context is unloaded.
		{
			prog: "TRY:$c,_ CALL:$f ENDTRY:$e $c 1 ENDTRY:$e $e 2 RET $f 'x' THROW",
			want: []interface{}{"x", 1, 2},
		},
		// Nested regions: the inner one handles first.
		{
			prog: "TRY:$oc,_ TRY:$ic,_ 'x' THROW $ic DROP 'y' THROW $oc ENDTRY:$e $e",
			want: []interface{}{"y"},
		},
		// A propagating exception runs the inner finally exactly once.
		{
			prog: "INITSSLOT:1 0 STSFLD0 TRY:$o,_ TRY:_,$f 'a' THROW $f LDSFLD0 INC STSFLD0 ENDFINALLY $o DROP LDSFLD0 ENDTRY:$x $x",
			want: []interface{}{1},
		},
		// Also when the region belongs to a callee's frame.
		{
			prog: "INITSSLOT:1 0 STSFLD0 TRY:$c,_ CALL:$g ENDTRY:$e $c DROP LDSFLD0 ENDTRY:$e $e RET $g TRY:_,$f 'a' THROW $f LDSFLD0 INC STSFLD0 ENDFINALLY",
			want: []interface{}{1},
		},
		// Engine errors are catchable.
		{
			prog: "TRY:$c,_ 1 NEWARRAY 1 PICKITEM ENDTRY:$e $c ENDTRY:$e $e",
			want: []interface{}{"The index of VMArray is out of range, 1/[0, 1)."},
		},
	})
}

func TestUnhandledAfterFinally(t *testing.T) {
	var trace bytes.Buffer
	e := run(t, "TRY:_,$f 'x' THROW ENDTRY:$e $f 2 INC ENDFINALLY $e 3", DefaultLimits, WithTrace(&trace))
	if e.State() != StateFault {
		t.Fatalf("state %s, want FAULT", e.State())
	}
	var runs int
	for _, line := range strings.Split(trace.String(), "\n") {
		if strings.HasPrefix(line, "ctx ") && strings.HasSuffix(line, " INC") {
			runs++
		}
	}
	if runs != 1 {
		t.Errorf("finally ran %d times, want 1:\n%s", runs, trace.String())
	}
	if got := e.UncaughtException(); got != stackitem.ByteString("x") {
		t.Errorf("uncaught = %v, want x", got)
	}
	if errors.Root(e.FaultError()) != ErrUnhandled {
		t.Errorf("fault = %v, want ErrUnhandled", e.FaultError())
	}
}

func TestThrowUnhandled(t *testing.T) {
	e := run(t, "1 NEWARRAY THROW", DefaultLimits)
	if e.State() != StateFault {
		t.Fatalf("state %s, want FAULT", e.State())
	}
	if _, ok := e.UncaughtException().(*stackitem.Array); !ok {
		t.Errorf("uncaught = %v, want the thrown array", e.UncaughtException())
	}
	if got, want := errors.Detail(e.FaultError()), "An unhandled exception was thrown. Array[1]"; got != want {
		t.Errorf("detail = %q, want %q", got, want)
	}
}

func TestTryNesting(t *testing.T) {
	lim := DefaultLimits
	lim.MaxTryNestingDepth = 2
	e := run(t, "TRY:$a,_ TRY:$a,_ TRY:$a,_ $a", lim)
	if e.State() != StateFault || errors.Root(e.FaultError()) != ErrTryNesting {
		t.Errorf("state %s, fault %v; want FAULT with ErrTryNesting", e.State(), e.FaultError())
	}
}
