package interop

import (
	"fmt"
	"unicode/utf8"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

const (
	MaxEventName     = 32
	MaxNotifications = 512
	MaxLogMessage    = 1024
)

func runtimePlatform(e *vm.Engine, h *Host) error {
	e.Push(stackitem.NewByteString([]byte(h.Platform)))
	return nil
}

func runtimeLog(e *vm.Engine, h *Host) error {
	msg, err := popBytes(e)
	if err != nil {
		return err
	}
	if len(msg) > MaxLogMessage {
		return errors.WithDetailf(vm.ErrBadValue, "Message too long: %d", len(msg))
	}
	if !utf8.Valid(msg) {
		return errors.WithDetail(vm.ErrBadValue, "Message is not valid UTF-8")
	}
	hash := e.CurrentContext().Script().Hash()
	h.Logs = append(h.Logs, LogEntry{ScriptHash: hash, Message: string(msg)})
	h.logf("at", "runtime.log", "script", fmt.Sprintf("%x", hash), "message", string(msg))
	return nil
}

func runtimeNotify(e *vm.Engine, h *Host) error {
	name, err := popBytes(e)
	if err != nil {
		return err
	}
	if len(name) > MaxEventName {
		return errors.WithDetailf(vm.ErrBadValue, "Event name too long: %d", len(name))
	}
	state, err := e.Pop()
	if err != nil {
		return err
	}
	if state.Type() != stackitem.ArrayT && state.Type() != stackitem.StructT {
		return errors.WithDetailf(vm.ErrBadType, "Expected Array, got %s", state.Type())
	}
	if len(h.Notifications) >= MaxNotifications {
		return errors.WithDetailf(vm.ErrBadValue, "Too many notifications: %d", len(h.Notifications))
	}
	snapshot, err := stackitem.ToJSONValue(state)
	if err != nil {
		return errors.WithDetailf(vm.ErrBadValue, "Notification state: %s", err)
	}
	h.Notifications = append(h.Notifications, Notification{
		ScriptHash: e.CurrentContext().Script().Hash(),
		Name:       string(name),
		State:      snapshot,
	})
	return nil
}

// The entry script counts as one invocation even though nothing
// called it.
func runtimeGetInvocationCounter(e *vm.Engine, h *Host) error {
	hash := e.CurrentContext().Script().Hash()
	if h.InvocationCount(hash) == 0 {
		h.invoked(hash)
	}
	e.Push(stackitem.NewInt(int64(h.InvocationCount(hash))))
	return nil
}

func runtimeGetExecutingHash(e *vm.Engine, h *Host) error {
	e.Push(stackitem.NewByteString(e.CurrentContext().Script().Hash()))
	return nil
}
