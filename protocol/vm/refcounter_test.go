package vm

import (
	"testing"

	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

func TestRefCounterRoundTrip(t *testing.T) {
	rc := NewRefCounter()
	s := NewStack(rc)
	a := stackitem.NewArray(rc, []stackitem.Item{stackitem.NewInt(1), stackitem.NewInt(2)})
	s.Push(a)
	s.Push(stackitem.ByteString("x"))
	if got := rc.Count(); got != 4 {
		t.Fatalf("count = %d, want 4", got)
	}
	if got := rc.CheckZeroReferred(); got != 4 {
		t.Fatalf("checked count = %d, want 4", got)
	}

	s.Clear()
	if got := rc.Count(); got != 2 {
		t.Fatalf("count after clear = %d, want 2", got)
	}
	if got := rc.CheckZeroReferred(); got != 0 {
		t.Errorf("count after collection = %d, want 0", got)
	}
}

func TestRefCounterCycle(t *testing.T) {
	rc := NewRefCounter()
	a := stackitem.NewArray(rc, nil)
	b := stackitem.NewArray(rc, nil)
	a.Append(b)
	b.Append(a)
	rc.AddStackReference(a, 1)

	if got := rc.CheckZeroReferred(); got != 3 {
		t.Fatalf("count while reachable = %d, want 3", got)
	}
	rc.RemoveStackReference(a)
	if got := rc.CheckZeroReferred(); got != 0 {
		t.Errorf("count after dropping the cycle = %d, want 0", got)
	}
}

func TestRefCounterChain(t *testing.T) {
	// a holds b holds c; only c is on a stack.
	rc := NewRefCounter()
	c := stackitem.NewArray(rc, nil)
	b := stackitem.NewArray(rc, []stackitem.Item{c})
	stackitem.NewArray(rc, []stackitem.Item{b})
	rc.AddStackReference(c, 1)

	if got := rc.CheckZeroReferred(); got != 1 {
		t.Errorf("count = %d, want 1", got)
	}
}

func TestRefCounterSelfReference(t *testing.T) {
	rc := NewRefCounter()
	m := stackitem.NewMap(rc)
	if err := m.Set(stackitem.NewInt(0), m); err != nil {
		t.Fatal(err)
	}
	rc.AddStackReference(m, 2)
	rc.RemoveStackReference(m)
	if got := rc.CheckZeroReferred(); got != 3 {
		t.Fatalf("count = %d, want 3", got)
	}
	rc.RemoveStackReference(m)
	if got := rc.CheckZeroReferred(); got != 0 {
		t.Errorf("count = %d, want 0", got)
	}
}

func TestTarjanOrder(t *testing.T) {
	rc := NewRefCounter()
	child := stackitem.NewArray(rc, nil)
	parent := stackitem.NewArray(rc, []stackitem.Item{child})
	x := stackitem.NewArray(rc, nil)
	y := stackitem.NewArray(rc, []stackitem.Item{x})
	x.Append(y)

	comps := tarjan([]stackitem.Tracked{child, parent, x, y})
	if len(comps) != 3 {
		t.Fatalf("got %d components, want 3", len(comps))
	}
	pos := make(map[stackitem.Tracked]int)
	for i, c := range comps {
		for _, v := range c {
			pos[v] = i
		}
	}
	if pos[parent] >= pos[child] {
		t.Errorf("parent in component %d, child in %d; want parent first", pos[parent], pos[child])
	}
	if pos[x] != pos[y] {
		t.Errorf("cycle split across components %d and %d", pos[x], pos[y])
	}
}
