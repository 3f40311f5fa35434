// Package checked implements the fixed-width arithmetic the VM
// performs on instruction pointers and operand bounds. Each
// function reports false instead of wrapping around.
package checked

import (
	"math"
	"math/big"
)

// AddInt64 returns a + b, or false on overflow.
// Operand ends are computed this way so that a huge
// PUSHDATA4 length cannot wrap past the script end.
func AddInt64(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// AddInt32 returns a + b, or false on overflow.
// Jump targets are an instruction's offset plus a
// signed 8- or 32-bit displacement.
func AddInt32(a, b int32) (int32, bool) {
	if (b > 0 && a > math.MaxInt32-b) || (b < 0 && a < math.MinInt32-b) {
		return 0, false
	}
	return a + b, true
}

// Int32 narrows x, as popped from the evaluation stack, to an
// int32. It reports false if x is out of range.
func Int32(x *big.Int) (int32, bool) {
	if !x.IsInt64() {
		return 0, false
	}
	v := x.Int64()
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int32(v), true
}
