package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onyx-protocol/neovm/testutil"
)

func newDebugger(t *testing.T, src string) (*Debugger, *Script) {
	t.Helper()
	b, err := Assemble(src)
	require.NoError(t, err)
	s := MustNewScript(b)
	e := New(nil, DefaultLimits)
	_, err = e.LoadScript(s, -1, 0)
	require.NoError(t, err)
	return NewDebugger(e), s
}

func TestDebuggerBreakPoint(t *testing.T) {
	d, s := newDebugger(t, "1 2 3 ADD ADD")
	d.AddBreakPoint(s, 2)

	require.Equal(t, StateBreak, d.Execute())
	require.Equal(t, 2, d.Engine().CurrentContext().IP())
	testutil.ExpectEqual(t, plainItems(d.Engine().CurrentContext().EvaluationStack().Items()), norm([]interface{}{1, 2}), "stack at break")

	require.Equal(t, StateHalt, d.Execute())
	testutil.ExpectEqual(t, plainItems(d.Engine().ResultStack().Items()), norm([]interface{}{6}), "result")

	require.True(t, d.RemoveBreakPoint(s, 2))
	require.False(t, d.RemoveBreakPoint(s, 2))
}

func TestDebuggerStepInto(t *testing.T) {
	d, _ := newDebugger(t, "1 2 ADD")
	var ips []int
	for d.StepInto() == StateBreak {
		ips = append(ips, d.Engine().CurrentContext().IP())
	}
	require.Equal(t, []int{1, 2, 3}, ips)
	require.Equal(t, StateHalt, d.Engine().State())

	// Stepping a finished engine does nothing.
	require.Equal(t, StateHalt, d.StepInto())
}

func TestDebuggerStepOverAndOut(t *testing.T) {
	// CALL(0) 5(2) RET(3) $f: 1(4) 2(5) RET(6)
	const src = "CALL:$f 5 RET $f 1 2 RET"

	d, _ := newDebugger(t, src)
	require.Equal(t, StateBreak, d.StepOver())
	require.Len(t, d.Engine().InvocationStack(), 1)
	require.Equal(t, 2, d.Engine().CurrentContext().IP())
	testutil.ExpectEqual(t, plainItems(d.Engine().CurrentContext().EvaluationStack().Items()), norm([]interface{}{1, 2}), "after step over")

	d, _ = newDebugger(t, src)
	require.Equal(t, StateBreak, d.StepInto())
	require.Len(t, d.Engine().InvocationStack(), 2)
	require.Equal(t, 4, d.Engine().CurrentContext().IP())

	require.Equal(t, StateBreak, d.StepOut())
	require.Len(t, d.Engine().InvocationStack(), 1)
	require.Equal(t, 2, d.Engine().CurrentContext().IP())

	require.Equal(t, StateHalt, d.Execute())
	testutil.ExpectEqual(t, plainItems(d.Engine().ResultStack().Items()), norm([]interface{}{1, 2, 5}), "result")
}

func TestDebuggerBreakPointInCallee(t *testing.T) {
	d, s := newDebugger(t, "CALL:$f 5 RET $f 1 2 RET")
	d.AddBreakPoint(s, 5)

	require.Equal(t, StateBreak, d.StepOver())
	require.Len(t, d.Engine().InvocationStack(), 2)
	require.Equal(t, 5, d.Engine().CurrentContext().IP())
}
