package stackitem

import (
	"fmt"
	"math/big"

	"github.com/onyx-protocol/neovm/errors"
)

// MapEntry is one key/value pair of a Map.
type MapEntry struct {
	Key   Item
	Value Item
}

// Map is an insertion-ordered mapping from primitive keys
// (Boolean, Integer, ByteString) to items. Keys of different
// kinds never collide: Integer 1 and ByteString "\x01" are
// distinct keys.
type Map struct {
	Tracking
	tracker Tracker
	entries []MapEntry
	index   map[string]int
}

// NewMap returns an empty Map reporting to t (which may be nil).
func NewMap(t Tracker) *Map {
	m := &Map{tracker: t, index: make(map[string]int)}
	if t != nil {
		t.AddZeroReferred(m)
	}
	return m
}

func (*Map) Type() Type                   { return MapT }
func (*Map) Bool() (bool, error)          { return true, nil }
func (m *Map) Integer() (*big.Int, error) { return nil, invalidCast(m, IntegerT) }
func (m *Map) Bytes() ([]byte, error)     { return nil, invalidCast(m, ByteStringT) }
func (m *Map) String() string             { return fmt.Sprintf("Map[%d]", len(m.entries)) }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.entries) }

// Entries returns the entries in insertion order.
// The slice must not be modified.
func (m *Map) Entries() []MapEntry { return m.entries }

// SubItems returns keys and values, interleaved.
func (m *Map) SubItems() []Item {
	items := make([]Item, 0, 2*len(m.entries))
	for _, e := range m.entries {
		items = append(items, e.Key, e.Value)
	}
	return items
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []Item {
	keys := make([]Item, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Values returns the values in insertion order.
func (m *Map) Values() []Item {
	vals := make([]Item, len(m.entries))
	for i, e := range m.entries {
		vals[i] = e.Value
	}
	return vals
}

// Get returns the value stored under key.
func (m *Map) Get(key Item) (Item, bool, error) {
	k, err := mapKey(key)
	if err != nil {
		return nil, false, err
	}
	i, ok := m.index[k]
	if !ok {
		return nil, false, nil
	}
	return m.entries[i].Value, true, nil
}

// Has reports whether key is present.
func (m *Map) Has(key Item) (bool, error) {
	_, ok, err := m.Get(key)
	return ok, err
}

// Set stores value under key. A new key goes to the end of
// the order; an existing key keeps its position.
func (m *Map) Set(key, value Item) error {
	k, err := mapKey(key)
	if err != nil {
		return err
	}
	if i, ok := m.index[k]; ok {
		if m.tracker != nil {
			m.tracker.RemoveReference(m.entries[i].Value, m)
			m.tracker.AddReference(value, m)
		}
		m.entries[i].Value = value
		return nil
	}
	if m.tracker != nil {
		m.tracker.AddReference(key, m)
		m.tracker.AddReference(value, m)
	}
	m.index[k] = len(m.entries)
	m.entries = append(m.entries, MapEntry{Key: key, Value: value})
	return nil
}

// Delete removes key, if present.
func (m *Map) Delete(key Item) error {
	k, err := mapKey(key)
	if err != nil {
		return err
	}
	i, ok := m.index[k]
	if !ok {
		return nil
	}
	e := m.entries[i]
	if m.tracker != nil {
		m.tracker.RemoveReference(e.Key, m)
		m.tracker.RemoveReference(e.Value, m)
	}
	copy(m.entries[i:], m.entries[i+1:])
	m.entries[len(m.entries)-1] = MapEntry{}
	m.entries = m.entries[:len(m.entries)-1]
	delete(m.index, k)
	for j := i; j < len(m.entries); j++ {
		kj, _ := mapKey(m.entries[j].Key)
		m.index[kj] = j
	}
	return nil
}

// Clear removes all entries.
func (m *Map) Clear() {
	if m.tracker != nil {
		for _, e := range m.entries {
			m.tracker.RemoveReference(e.Key, m)
			m.tracker.RemoveReference(e.Value, m)
		}
	}
	m.entries = nil
	m.index = make(map[string]int)
}

// IsValidKey reports whether item may be used as a map key.
func IsValidKey(item Item) bool {
	return item.Type().IsPrimitive()
}

func mapKey(key Item) (string, error) {
	if !IsValidKey(key) {
		return "", errors.WithDetailf(ErrInvalidConversion, "Can't convert %s to a map key.", key.Type())
	}
	b, _ := key.Bytes()
	if len(b) > MaxKeySize {
		return "", errors.WithDetailf(ErrTooBig, "MaxKeySize exceed: %d", len(b))
	}
	return string(append([]byte{byte(key.Type())}, b...)), nil
}
