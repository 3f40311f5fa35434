package stackitem

import (
	"fmt"
	"math/big"

	"github.com/onyx-protocol/neovm/errors"
)

// Tracking is the per-item state kept by a reference
// counter for items that can take part in reference cycles
// (containers and buffers). It is exported for the counter's
// use only.
type Tracking struct {
	StackRefs  int
	ObjectRefs map[Compound]int // parent container -> reference count

	// Scratch space for cycle detection.
	DFN, LowLink int
	OnStack      bool
}

// Track returns the tracking state of the item.
func (t *Tracking) Track() *Tracking { return t }

// Reset clears the cycle-detection scratch fields.
func (t *Tracking) Reset() {
	t.DFN = -1
	t.LowLink = 0
	t.OnStack = false
}

// Tracked is an item with reference-counter state.
type Tracked interface {
	Item
	Track() *Tracking
}

// Tracker is notified when a container gains or loses an
// element, and when a container is created.
type Tracker interface {
	AddReference(item Item, parent Compound)
	RemoveReference(item Item, parent Compound)
	AddZeroReferred(item Item)
}

// Compound is a container item: Array, Struct or Map.
type Compound interface {
	Tracked

	// Len is the number of elements (entries for a Map).
	Len() int

	// SubItems returns every item the container references;
	// for a Map, keys and values.
	SubItems() []Item

	// Clear removes all elements.
	Clear()
}

// Array is an ordered, mutable, shared sequence of items.
type Array struct {
	Tracking
	tracker Tracker
	self    Compound // the outer item; differs from the Array for a Struct
	items   []Item
}

// NewArray returns an Array holding items, reporting
// itself and its elements to t (which may be nil).
func NewArray(t Tracker, items []Item) *Array {
	a := &Array{tracker: t, items: items}
	a.self = a
	a.register()
	return a
}

func (a *Array) register() {
	if a.tracker == nil {
		return
	}
	a.tracker.AddZeroReferred(a.self)
	for _, item := range a.items {
		a.tracker.AddReference(item, a.self)
	}
}

func (*Array) Type() Type                   { return ArrayT }
func (*Array) Bool() (bool, error)          { return true, nil }
func (a *Array) Integer() (*big.Int, error) { return nil, invalidCast(a.self, IntegerT) }
func (a *Array) Bytes() ([]byte, error)     { return nil, invalidCast(a.self, ByteStringT) }
func (a *Array) String() string             { return fmt.Sprintf("%s[%d]", a.self.Type(), len(a.items)) }

// Len returns the number of elements.
func (a *Array) Len() int { return len(a.items) }

// Items returns the elements. The slice must not be modified.
func (a *Array) Items() []Item { return a.items }

// SubItems returns the elements.
func (a *Array) SubItems() []Item { return a.items }

// Get returns element i.
func (a *Array) Get(i int) Item { return a.items[i] }

// Append adds item at the end.
func (a *Array) Append(item Item) {
	a.items = append(a.items, item)
	if a.tracker != nil {
		a.tracker.AddReference(item, a.self)
	}
}

// Set replaces element i.
func (a *Array) Set(i int, item Item) {
	if a.tracker != nil {
		a.tracker.RemoveReference(a.items[i], a.self)
	}
	a.items[i] = item
	if a.tracker != nil {
		a.tracker.AddReference(item, a.self)
	}
}

// Remove deletes element i, shifting later elements down.
func (a *Array) Remove(i int) {
	if a.tracker != nil {
		a.tracker.RemoveReference(a.items[i], a.self)
	}
	copy(a.items[i:], a.items[i+1:])
	a.items[len(a.items)-1] = nil
	a.items = a.items[:len(a.items)-1]
}

// Clear removes all elements.
func (a *Array) Clear() {
	if a.tracker != nil {
		for _, item := range a.items {
			a.tracker.RemoveReference(item, a.self)
		}
	}
	a.items = nil
}

// Reverse reverses the elements in place.
func (a *Array) Reverse() {
	for i, j := 0, len(a.items)-1; i < j; i, j = i+1, j-1 {
		a.items[i], a.items[j] = a.items[j], a.items[i]
	}
}

// Struct is an Array with value semantics: it is compared
// element-wise and copied when stored into a container.
type Struct struct {
	Array
}

// NewStruct returns a Struct holding items.
func NewStruct(t Tracker, items []Item) *Struct {
	s := &Struct{Array{tracker: t, items: items}}
	s.self = s
	s.register()
	return s
}

func (*Struct) Type() Type { return StructT }

// Clone returns a deep copy of s in which nested Structs are
// copied and every other element is shared. At most limit
// elements are copied; a self-containing Struct therefore
// fails instead of looping.
func (s *Struct) Clone(limit int) (*Struct, error) {
	count := limit - 1
	result := NewStruct(s.tracker, nil)
	dst := []*Struct{result}
	src := []*Struct{s}
	for len(dst) > 0 {
		a, b := dst[0], src[0]
		dst, src = dst[1:], src[1:]
		for _, item := range b.items {
			count--
			if count < 0 {
				return nil, errors.WithDetail(ErrLimit, "Beyond clone limits!")
			}
			if sb, ok := item.(*Struct); ok {
				sa := NewStruct(s.tracker, nil)
				a.Append(sa)
				dst = append(dst, sa)
				src = append(src, sb)
			} else {
				a.Append(item)
			}
		}
	}
	return result, nil
}
