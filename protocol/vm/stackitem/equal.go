package stackitem

import (
	"bytes"

	"github.com/onyx-protocol/neovm/errors"
)

// CompareLimits bound the work of one equality test.
type CompareLimits struct {
	// MaxItems is the number of Struct elements that may be
	// visited.
	MaxItems int

	// MaxBytes is the byte budget; each ByteString or Buffer
	// comparison is charged the larger of the two sizes and
	// every other element costs one.
	MaxBytes int
}

var (
	errTooManyItems = errors.WithDetail(ErrLimit, "Too many struct items to compare.")
	errTooLarge     = errors.WithDetail(ErrLimit, "The operand exceeds the maximum comparable size.")
)

// Equal reports whether a and b are equal:
//   - Integer, Boolean by value;
//   - ByteString and Buffer byte-wise, within the same kind;
//   - Array, Map by identity;
//   - Struct element-wise;
//   - Pointer by script and position;
//   - Interop by the wrapped object;
//   - Null equals only Null.
// Struct comparison uses a worklist bounded by lim, so
// cyclic or very large structures yield ErrLimit.
func Equal(a, b Item, lim CompareLimits) (bool, error) {
	budget := lim.MaxBytes
	switch a.(type) {
	case ByteString, *Buffer:
		return equalBytes(a, b, &budget)
	case *Struct:
	default:
		return equalShallow(a, b), nil
	}

	left := []Item{a}
	right := []Item{b}
	count := lim.MaxItems
	for len(left) > 0 {
		if count == 0 {
			return false, errTooManyItems
		}
		count--

		x, y := left[len(left)-1], right[len(right)-1]
		left, right = left[:len(left)-1], right[:len(right)-1]

		switch x.(type) {
		case ByteString, *Buffer:
			eq, err := equalBytes(x, y, &budget)
			if err != nil || !eq {
				return false, err
			}
			continue
		}

		if budget == 0 {
			return false, errTooLarge
		}
		budget--

		sx, ok := x.(*Struct)
		if !ok {
			if !equalShallow(x, y) {
				return false, nil
			}
			continue
		}
		sy, ok := y.(*Struct)
		if !ok {
			return false, nil
		}
		if sx == sy {
			continue
		}
		if len(sx.items) != len(sy.items) {
			return false, nil
		}
		left = append(left, sx.items...)
		right = append(right, sy.items...)
	}
	return true, nil
}

func equalBytes(x, y Item, budget *int) (bool, error) {
	bx, _ := x.Bytes()
	if len(bx) > *budget {
		return false, errTooLarge
	}
	if x.Type() != y.Type() {
		if *budget > 0 {
			*budget--
		}
		return false, nil
	}
	by, _ := y.Bytes()
	cost := len(bx)
	if len(by) > cost {
		cost = len(by)
	}
	if cost < 1 {
		cost = 1
	}
	if cost > *budget {
		return false, errTooLarge
	}
	*budget -= cost
	return bytes.Equal(bx, by), nil
}

func equalShallow(x, y Item) bool {
	switch x := x.(type) {
	case Null:
		return IsNull(y)
	case Boolean:
		yb, ok := y.(Boolean)
		return ok && x == yb
	case *Integer:
		yi, ok := y.(*Integer)
		return ok && x.value.Cmp(yi.value) == 0
	case *Pointer:
		yp, ok := y.(*Pointer)
		return ok && x.script == yp.script && x.pos == yp.pos
	case *Interop:
		yi, ok := y.(*Interop)
		return ok && x.equals(yi)
	case *Array:
		ya, ok := y.(*Array)
		return ok && x == ya
	case *Map:
		ym, ok := y.(*Map)
		return ok && x == ym
	}
	return false
}
