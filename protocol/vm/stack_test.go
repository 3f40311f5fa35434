package vm

import (
	"testing"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
	"github.com/onyx-protocol/neovm/testutil"
)

func intStack(rc *RefCounter, vals ...int64) *Stack {
	s := NewStack(rc)
	for _, v := range vals {
		s.Push(stackitem.NewInt(v))
	}
	return s
}

func TestStackBounds(t *testing.T) {
	cases := []struct {
		fn     func(s *Stack) error
		detail string
	}{
		{func(s *Stack) error { _, err := s.Peek(1); return err }, "Peek out of bounds: 1/1"},
		{func(s *Stack) error { _, err := s.Peek(-2); return err }, "Peek out of bounds: -2/1"},
		{func(s *Stack) error { _, err := s.Remove(-2); return err }, "Remove out of bounds: -2/1"},
		{func(s *Stack) error { return s.Insert(3, stackitem.Null{}) }, "Insert out of bounds: 3/1"},
		{func(s *Stack) error { _, err := s.Remove(1); return err }, "Remove out of bounds: 1/1"},
		{func(s *Stack) error { return s.Reverse(2) }, "Reverse out of bounds: 2/1"},
		{func(s *Stack) error { return s.CopyTo(NewStack(s.rc), 2) }, "Copy out of bounds: 2/1"},
		{func(s *Stack) error { return s.MoveTo(NewStack(s.rc), 2) }, "Move out of bounds: 2/1"},
	}
	for _, c := range cases {
		err := c.fn(intStack(NewRefCounter(), 7))
		if errors.Root(err) != ErrStackUnderflow {
			t.Errorf("%s: got error %v, want ErrStackUnderflow", c.detail, err)
			continue
		}
		if got := errors.Detail(err); got != c.detail {
			t.Errorf("got detail %q, want %q", got, c.detail)
		}
	}
}

func TestStackOrder(t *testing.T) {
	rc := NewRefCounter()
	s := intStack(rc, 1, 2, 3, 4)

	top, err := s.Peek(0)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, plain(top), int64(4), "Peek(0)")

	err = s.Insert(1, stackitem.NewInt(9))
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, plainItems(s.Items()), norm([]interface{}{1, 2, 3, 9, 4}), "after Insert")

	err = s.Reverse(3)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, plainItems(s.Items()), norm([]interface{}{1, 2, 4, 9, 3}), "after Reverse")

	s.Truncate(2)
	testutil.ExpectEqual(t, plainItems(s.Items()), norm([]interface{}{1, 2}), "after Truncate")
	testutil.ExpectEqual(t, rc.Count(), 2, "count")
}

func TestStackNegativeIndex(t *testing.T) {
	s := intStack(NewRefCounter(), 1, 2, 3)

	bottom, err := s.Peek(-1)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, plain(bottom), int64(1), "Peek(-1)")

	top, err := s.Peek(-3)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, plain(top), int64(3), "Peek(-3)")

	_, err = s.Peek(-4)
	if errors.Root(err) != ErrStackUnderflow {
		t.Errorf("Peek(-4) = %v, want ErrStackUnderflow", err)
	}

	item, err := s.Remove(-1)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, plain(item), int64(1), "Remove(-1)")
	testutil.ExpectEqual(t, plainItems(s.Items()), norm([]interface{}{2, 3}), "after Remove(-1)")
}

func TestStackCopyMove(t *testing.T) {
	rc := NewRefCounter()
	src := intStack(rc, 1, 2, 3)
	dst := NewStack(rc)

	err := src.CopyTo(dst, 2)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, plainItems(dst.Items()), norm([]interface{}{2, 3}), "copied")
	testutil.ExpectEqual(t, rc.Count(), 5, "count after copy")

	err = src.MoveTo(dst, -1)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	testutil.ExpectEqual(t, plainItems(dst.Items()), norm([]interface{}{2, 3, 1, 2, 3}), "moved")
	testutil.ExpectEqual(t, src.Len(), 0, "source length")
	testutil.ExpectEqual(t, rc.Count(), 5, "count after move")
}

func TestSlot(t *testing.T) {
	rc := NewRefCounter()
	s := NewSlot(rc, 2)
	testutil.ExpectEqual(t, rc.Count(), 2, "count of a new slot")

	a := stackitem.NewArray(rc, nil)
	err := s.Set(1, a)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	got, err := s.Get(1)
	if err != nil {
		testutil.FatalErr(t, err)
	}
	if got != stackitem.Item(a) {
		t.Errorf("Get(1) = %v, want the stored array", got)
	}
	testutil.ExpectError(t, ErrInvalidState, "Get(2)", func() error {
		_, err := s.Get(2)
		return err
	})
	testutil.ExpectError(t, ErrInvalidState, "Set(-1)", func() error {
		return s.Set(-1, stackitem.Null{})
	})

	s.ClearReferences()
	testutil.ExpectEqual(t, rc.Count(), 0, "count after ClearReferences")
	testutil.ExpectEqual(t, rc.CheckZeroReferred(), 0, "count after collection")
}
