package interop

import (
	"fmt"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

const (
	MaxStorageKey   = 64
	MaxStorageValue = 65535
)

// StorageContext is the handle scripts receive from
// System.Storage.GetContext. It names the storage of one script.
type StorageContext struct {
	ScriptHash []byte
	ReadOnly   bool
}

func (sc *StorageContext) String() string {
	return fmt.Sprintf("StorageContext(%x)", sc.ScriptHash)
}

func storageGetContext(e *vm.Engine, h *Host) error {
	e.Push(stackitem.NewInterop(&StorageContext{ScriptHash: e.CurrentContext().Script().Hash()}))
	return nil
}

func storageGetReadOnlyContext(e *vm.Engine, h *Host) error {
	e.Push(stackitem.NewInterop(&StorageContext{ScriptHash: e.CurrentContext().Script().Hash(), ReadOnly: true}))
	return nil
}

func storageGet(e *vm.Engine, h *Host) error {
	sc, err := popStorageContext(e)
	if err != nil {
		return err
	}
	key, err := popBytes(e)
	if err != nil {
		return err
	}
	v, ok := h.Stored(sc.ScriptHash, key)
	if !ok {
		e.Push(stackitem.Null{})
		return nil
	}
	e.Push(stackitem.NewByteString(v))
	return nil
}

func storagePut(e *vm.Engine, h *Host) error {
	sc, err := popStorageContext(e)
	if err != nil {
		return err
	}
	key, err := popBytes(e)
	if err != nil {
		return err
	}
	value, err := popBytes(e)
	if err != nil {
		return err
	}
	if len(key) > MaxStorageKey {
		return errors.WithDetailf(vm.ErrBadValue, "Key length too big: %d", len(key))
	}
	if len(value) > MaxStorageValue {
		return errors.WithDetailf(vm.ErrBadValue, "Value length too big: %d", len(value))
	}
	if sc.ReadOnly {
		return errors.WithDetail(vm.ErrBadValue, "StorageContext is readonly")
	}
	h.storage[storageKey(sc.ScriptHash, key)] = append([]byte(nil), value...)
	return nil
}

func storageDelete(e *vm.Engine, h *Host) error {
	sc, err := popStorageContext(e)
	if err != nil {
		return err
	}
	key, err := popBytes(e)
	if err != nil {
		return err
	}
	if sc.ReadOnly {
		return errors.WithDetail(vm.ErrBadValue, "StorageContext is readonly")
	}
	delete(h.storage, storageKey(sc.ScriptHash, key))
	return nil
}
