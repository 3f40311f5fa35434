package interop

import (
	"math/big"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

func popBytes(e *vm.Engine) ([]byte, error) {
	item, err := e.Pop()
	if err != nil {
		return nil, err
	}
	return item.Bytes()
}

func popInt(e *vm.Engine) (*big.Int, error) {
	item, err := e.Pop()
	if err != nil {
		return nil, err
	}
	return item.Integer()
}

func popArray(e *vm.Engine) ([]stackitem.Item, error) {
	item, err := e.Pop()
	if err != nil {
		return nil, err
	}
	switch a := item.(type) {
	case *stackitem.Array:
		return a.Items(), nil
	case *stackitem.Struct:
		return a.Items(), nil
	}
	return nil, errors.WithDetailf(vm.ErrBadType, "Expected Array, got %s", item.Type())
}

func popStorageContext(e *vm.Engine) (*StorageContext, error) {
	item, err := e.Pop()
	if err != nil {
		return nil, err
	}
	if i, ok := item.(*stackitem.Interop); ok {
		if sc, ok := i.Value().(*StorageContext); ok {
			return sc, nil
		}
	}
	return nil, errors.WithDetailf(vm.ErrBadType, "Expected StorageContext, got %s", item)
}
