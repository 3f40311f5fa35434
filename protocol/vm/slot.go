package vm

import "github.com/onyx-protocol/neovm/protocol/vm/stackitem"

// Slot is a fixed-size array of variables: the static fields,
// locals or arguments of a context. Each element holds one
// stack reference.
type Slot struct {
	items []stackitem.Item
	rc    *RefCounter
}

// NewSlot returns a slot of n Null elements.
func NewSlot(rc *RefCounter, n int) *Slot {
	items := make([]stackitem.Item, n)
	for i := range items {
		items[i] = stackitem.Null{}
	}
	rc.AddStackReference(stackitem.Null{}, n)
	return &Slot{items: items, rc: rc}
}

// NewSlotItems returns a slot holding items, in order.
func NewSlotItems(rc *RefCounter, items []stackitem.Item) *Slot {
	for _, item := range items {
		rc.AddStackReference(item, 1)
	}
	return &Slot{items: items, rc: rc}
}

// Len is the number of elements.
func (s *Slot) Len() int { return len(s.items) }

// Get returns element i.
func (s *Slot) Get(i int) (stackitem.Item, error) {
	if i < 0 || i >= len(s.items) {
		return nil, faultf(ErrInvalidState, "Index out of range when loading from slot: %d", i)
	}
	return s.items[i], nil
}

// Set replaces element i.
func (s *Slot) Set(i int, item stackitem.Item) error {
	if i < 0 || i >= len(s.items) {
		return faultf(ErrInvalidState, "Index out of range when storing to slot: %d", i)
	}
	s.rc.RemoveStackReference(s.items[i])
	s.items[i] = item
	s.rc.AddStackReference(item, 1)
	return nil
}

// Items returns the elements. The slice must not be modified.
func (s *Slot) Items() []stackitem.Item { return s.items }

// ClearReferences drops the stack reference of every element.
// The slot must not be used afterwards.
func (s *Slot) ClearReferences() {
	for _, item := range s.items {
		s.rc.RemoveStackReference(item)
	}
	s.items = nil
}
