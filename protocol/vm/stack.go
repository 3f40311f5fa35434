package vm

import (
	"strings"

	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

// Stack is an evaluation stack. Index 0 is the top. Every item
// on the stack holds one stack reference in the counter.
type Stack struct {
	items []stackitem.Item // items[len(items)-1] is the top
	rc    *RefCounter
}

// NewStack returns an empty stack that reports to rc.
func NewStack(rc *RefCounter) *Stack {
	return &Stack{rc: rc}
}

// Len is the number of items.
func (s *Stack) Len() int { return len(s.items) }

// Items returns a copy of the items, bottom first.
func (s *Stack) Items() []stackitem.Item {
	return append([]stackitem.Item(nil), s.items...)
}

// Push puts item on top.
func (s *Stack) Push(item stackitem.Item) {
	s.items = append(s.items, item)
	s.rc.AddStackReference(item, 1)
}

// Peek returns the item i places below the top.
// A negative i counts from the bottom, so -1 is the bottom item.
func (s *Stack) Peek(i int) (stackitem.Item, error) {
	at, ok := s.index(i)
	if !ok {
		return nil, faultf(ErrStackUnderflow, "Peek out of bounds: %d/%d", i, len(s.items))
	}
	return s.items[at], nil
}

// index maps a Peek/Remove index to a slice position.
func (s *Stack) index(i int) (int, bool) {
	if i < 0 {
		i += len(s.items)
	}
	if i < 0 || i >= len(s.items) {
		return 0, false
	}
	return len(s.items) - 1 - i, true
}

// Pop removes and returns the top item.
func (s *Stack) Pop() (stackitem.Item, error) {
	return s.Remove(0)
}

// Insert places item so that it ends up i places below the top.
func (s *Stack) Insert(i int, item stackitem.Item) error {
	if i < 0 || i > len(s.items) {
		return faultf(ErrStackUnderflow, "Insert out of bounds: %d/%d", i, len(s.items))
	}
	at := len(s.items) - i
	s.items = append(s.items, nil)
	copy(s.items[at+1:], s.items[at:])
	s.items[at] = item
	s.rc.AddStackReference(item, 1)
	return nil
}

// Remove takes out the item i places below the top,
// indexing like Peek.
func (s *Stack) Remove(i int) (stackitem.Item, error) {
	at, ok := s.index(i)
	if !ok {
		return nil, faultf(ErrStackUnderflow, "Remove out of bounds: %d/%d", i, len(s.items))
	}
	item := s.items[at]
	copy(s.items[at:], s.items[at+1:])
	s.items[len(s.items)-1] = nil
	s.items = s.items[:len(s.items)-1]
	s.rc.RemoveStackReference(item)
	return item, nil
}

// Reverse reverses the order of the top n items.
func (s *Stack) Reverse(n int) error {
	if n < 0 || n > len(s.items) {
		return faultf(ErrStackUnderflow, "Reverse out of bounds: %d/%d", n, len(s.items))
	}
	top := s.items[len(s.items)-n:]
	for i, j := 0, len(top)-1; i < j; i, j = i+1, j-1 {
		top[i], top[j] = top[j], top[i]
	}
	return nil
}

// Clear removes every item.
func (s *Stack) Clear() {
	for _, item := range s.items {
		s.rc.RemoveStackReference(item)
	}
	s.items = nil
}

// Truncate removes items from the top until n remain.
func (s *Stack) Truncate(n int) {
	for len(s.items) > n {
		s.Pop()
	}
}

// CopyTo pushes copies of the top n items onto dst, keeping
// their order. A negative n copies everything.
func (s *Stack) CopyTo(dst *Stack, n int) error {
	if n < 0 {
		n = len(s.items)
	}
	if n > len(s.items) {
		return faultf(ErrStackUnderflow, "Copy out of bounds: %d/%d", n, len(s.items))
	}
	for _, item := range s.items[len(s.items)-n:] {
		dst.Push(item)
	}
	return nil
}

// MoveTo transfers the top n items onto dst, keeping their
// order. A negative n moves everything. The items keep their
// stack references, so both stacks must share a counter.
func (s *Stack) MoveTo(dst *Stack, n int) error {
	if n < 0 {
		n = len(s.items)
	}
	if n > len(s.items) {
		return faultf(ErrStackUnderflow, "Move out of bounds: %d/%d", n, len(s.items))
	}
	at := len(s.items) - n
	dst.items = append(dst.items, s.items[at:]...)
	for i := at; i < len(s.items); i++ {
		s.items[i] = nil
	}
	s.items = s.items[:at]
	return nil
}

func (s *Stack) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i := len(s.items) - 1; i >= 0; i-- {
		if i < len(s.items)-1 {
			b.WriteString(", ")
		}
		b.WriteString(s.items[i].String())
	}
	b.WriteByte(']')
	return b.String()
}
