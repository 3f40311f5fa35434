package interop

import (
	"strings"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

// contractCall pops hash, method, flags and an argument array and
// enters the named method of the stored contract. The callee runs
// with the caller's flags narrowed by the requested ones and
// returns exactly one value.
func contractCall(e *vm.Engine, h *Host) error {
	hash, err := popBytes(e)
	if err != nil {
		return err
	}
	method, err := popBytes(e)
	if err != nil {
		return err
	}
	f, err := popInt(e)
	if err != nil {
		return err
	}
	args, err := popArray(e)
	if err != nil {
		return err
	}

	if !f.IsInt64() || f.Int64()&^int64(vm.AllCallFlags) != 0 {
		return errors.WithDetailf(vm.ErrBadValue, "Invalid call flags: %s", f)
	}
	if strings.HasPrefix(string(method), "_") {
		return errors.WithDetailf(vm.ErrBadValue, "Invalid method name: %s", method)
	}
	if h.store == nil {
		return errors.WithDetailf(vm.ErrBadValue, "Called Contract Does Not Exist: %x", hash)
	}
	c, err := h.store.GetContract(hash)
	if errors.Root(err) == ErrContractNotFound {
		return errors.WithDetailf(vm.ErrBadValue, "Called Contract Does Not Exist: %x", hash)
	} else if err != nil {
		return errors.Wrap(err, "loading contract")
	}
	offset, ok := c.Methods[string(method)]
	if !ok {
		return errors.WithDetailf(vm.ErrBadValue, "Method \"%s\" with %d parameter(s) doesn't exist in the contract %x.", method, len(args), hash)
	}

	flags := e.CurrentContext().CallFlags() & vm.CallFlags(f.Int64())
	callee, err := e.LoadScriptWithFlags(c.Script, 1, offset, flags)
	if err != nil {
		return err
	}
	// The first argument ends up on top.
	for i := len(args) - 1; i >= 0; i-- {
		callee.EvaluationStack().Push(args[i])
	}
	h.invoked(c.Script.Hash())
	return nil
}

func contractGetCallFlags(e *vm.Engine, h *Host) error {
	e.Push(stackitem.NewInt(int64(e.CurrentContext().CallFlags())))
	return nil
}
