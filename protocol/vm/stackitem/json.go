package stackitem

import (
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/onyx-protocol/neovm/errors"
)

// MaxJSONDepth is the deepest container nesting ToJSON renders.
const MaxJSONDepth = 64

// ErrJSONDepth is returned by ToJSON for structures nested
// deeper than MaxJSONDepth.
var ErrJSONDepth = errors.New("item nesting too deep for JSON")

type jsonItem struct {
	Type     string      `json:"type"`
	Value    interface{} `json:"value,omitempty"`
	Circular bool        `json:"circular,omitempty"`
}

type jsonEntry struct {
	Key   *jsonItem `json:"key"`
	Value *jsonItem `json:"value"`
}

// ToJSON renders item in the conventional RPC shape:
// {"type": "Integer", "value": "3"}. Byte strings are base64,
// integers are decimal strings, and a container that contains
// itself is rendered once with "circular": true at the point
// of recursion.
func ToJSON(item Item) ([]byte, error) {
	j, err := toJSON(item, make(map[Compound]bool), 0)
	if err != nil {
		return nil, err
	}
	return json.Marshal(j)
}

// ToJSONValue is like ToJSON but returns the value before
// encoding, for embedding in larger documents.
func ToJSONValue(item Item) (interface{}, error) {
	return toJSON(item, make(map[Compound]bool), 0)
}

func toJSON(item Item, path map[Compound]bool, depth int) (*jsonItem, error) {
	if depth > MaxJSONDepth {
		return nil, ErrJSONDepth
	}
	j := &jsonItem{Type: item.Type().String()}
	switch item := item.(type) {
	case Null:
	case Boolean:
		j.Value = bool(item)
	case *Integer:
		j.Value = item.value.String()
	case ByteString:
		j.Value = base64.StdEncoding.EncodeToString([]byte(item))
	case *Buffer:
		j.Value = base64.StdEncoding.EncodeToString(item.b)
	case *Pointer:
		j.Value = strconv.Itoa(item.pos)
	case *Interop:
	case *Map:
		if path[item] {
			j.Circular = true
			return j, nil
		}
		path[item] = true
		entries := []jsonEntry{}
		for _, e := range item.entries {
			k, err := toJSON(e.Key, path, depth+1)
			if err != nil {
				return nil, err
			}
			v, err := toJSON(e.Value, path, depth+1)
			if err != nil {
				return nil, err
			}
			entries = append(entries, jsonEntry{Key: k, Value: v})
		}
		delete(path, item)
		j.Value = entries
	case Compound:
		if path[item] {
			j.Circular = true
			return j, nil
		}
		path[item] = true
		elems := []*jsonItem{}
		for _, e := range item.SubItems() {
			v, err := toJSON(e, path, depth+1)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		delete(path, item)
		j.Value = elems
	}
	return j, nil
}
