package vm

import "github.com/onyx-protocol/neovm/protocol/vm/stackitem"

// Limits bound the resources a script may use.
type Limits struct {
	// MaxShift is the largest shift SHL and SHR accept.
	MaxShift int `toml:"max_shift"`

	// MaxStackSize bounds the total number of live references
	// across all stacks, slots and containers.
	MaxStackSize int `toml:"max_stack_size"`

	// MaxItemSize bounds the byte length of any single item.
	MaxItemSize int `toml:"max_item_size"`

	// MaxComparableSize bounds the bytes examined by one
	// equality comparison.
	MaxComparableSize int `toml:"max_comparable_size"`

	MaxInvocationStackSize int `toml:"max_invocation_stack_size"`
	MaxTryNestingDepth     int `toml:"max_try_nesting_depth"`

	// CatchEngineExceptions lets try regions catch type and
	// value faults raised by the engine itself, not only
	// THROW.
	CatchEngineExceptions bool `toml:"catch_engine_exceptions"`
}

// DefaultLimits are the limits of the reference network.
var DefaultLimits = Limits{
	MaxShift:               256,
	MaxStackSize:           2 * 1024,
	MaxItemSize:            65535 * 2,
	MaxComparableSize:      65536,
	MaxInvocationStackSize: 1024,
	MaxTryNestingDepth:     16,
	CatchEngineExceptions:  true,
}

// AssertMaxItemSize fails if size exceeds MaxItemSize.
func (l Limits) AssertMaxItemSize(size int) error {
	if size < 0 || size > l.MaxItemSize {
		return faultf(ErrItemTooBig, "MaxItemSize exceed: %d", size)
	}
	return nil
}

// AssertShift fails if shift is negative or exceeds MaxShift.
func (l Limits) AssertShift(shift int) error {
	if shift < 0 || shift > l.MaxShift {
		return faultf(ErrShiftRange, "Invalid shift value: %d", shift)
	}
	return nil
}

func (l Limits) compareLimits() stackitem.CompareLimits {
	return stackitem.CompareLimits{MaxItems: l.MaxStackSize, MaxBytes: l.MaxComparableSize}
}
