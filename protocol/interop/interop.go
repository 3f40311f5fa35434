// Package interop implements the system calls a script reaches
// through the SYSCALL opcode.
//
// A Registry maps 32-bit service IDs to Go functions. Attach
// installs the registry's dispatcher in a vm.JumpTable; the engine
// itself knows nothing about services. Per-run state (notifications,
// logs, storage and the contracts a script may call) lives in a Host,
// passed to the engine with vm.WithHost.
package interop

import (
	"encoding/binary"
	"sort"

	"github.com/btcsuite/fastsha256"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/protocol/vm"
)

var (
	ErrNoHost           = errors.New("engine has no interop host")
	ErrDuplicateService = errors.New("duplicate interop service")
)

// Func is the body of a service. Parameters are popped from the
// engine's current evaluation stack, first parameter on top.
type Func func(e *vm.Engine, h *Host) error

type Service struct {
	Name          string
	ID            uint32
	RequiredFlags vm.CallFlags
	Func          Func
}

// ID returns the service ID for name: the first four bytes of
// SHA-256(name), read little-endian.
func ID(name string) uint32 {
	sum := fastsha256.Sum256([]byte(name))
	return binary.LittleEndian.Uint32(sum[:4])
}

// Registry is a set of services keyed by ID. It must not be
// modified once attached to a jump table in use.
type Registry struct {
	services map[uint32]*Service
}

func NewRegistry() *Registry {
	return &Registry{services: make(map[uint32]*Service)}
}

// Register adds a service under ID(name).
func (r *Registry) Register(name string, flags vm.CallFlags, fn Func) error {
	id := ID(name)
	if prev, ok := r.services[id]; ok {
		return errors.WithDetailf(ErrDuplicateService, "%s collides with %s", name, prev.Name)
	}
	r.services[id] = &Service{Name: name, ID: id, RequiredFlags: flags, Func: fn}
	return nil
}

func (r *Registry) Lookup(id uint32) (*Service, bool) {
	s, ok := r.services[id]
	return s, ok
}

// Services returns the registered services sorted by name.
func (r *Registry) Services() []*Service {
	res := make([]*Service, 0, len(r.services))
	for _, s := range r.services {
		res = append(res, s)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

// Attach makes jt dispatch SYSCALL through r.
func (r *Registry) Attach(jt *vm.JumpTable) {
	jt.Register(vm.OP_SYSCALL, func(e *vm.Engine, inst vm.Instruction) error {
		return r.syscall(e, inst.TokenU32())
	})
}

// NewJumpTable returns the default jump table with r attached.
func (r *Registry) NewJumpTable() *vm.JumpTable {
	jt := vm.NewJumpTable()
	r.Attach(jt)
	return jt
}

func (r *Registry) syscall(e *vm.Engine, id uint32) error {
	s, ok := r.services[id]
	if !ok {
		return errors.WithDetailf(vm.ErrInvalidState, "Syscall not found: %d", id)
	}
	flags := e.CurrentContext().CallFlags()
	if !flags.Has(s.RequiredFlags) {
		return errors.WithDetailf(vm.ErrInvalidState, "Cannot call this SYSCALL with the flag %s.", flags)
	}
	h, ok := e.Host.(*Host)
	if !ok {
		return errors.WithDetailf(ErrNoHost, "%s", s.Name)
	}
	return s.Func(e, h)
}

// Standard service names.
const (
	RuntimePlatform             = "System.Runtime.Platform"
	RuntimeLog                  = "System.Runtime.Log"
	RuntimeNotify               = "System.Runtime.Notify"
	RuntimeGetInvocationCounter = "System.Runtime.GetInvocationCounter"
	RuntimeGetExecutingHash     = "System.Runtime.GetExecutingScriptHash"
	ContractCall                = "System.Contract.Call"
	ContractGetCallFlags        = "System.Contract.GetCallFlags"
	CryptoSha256                = "System.Crypto.Sha256"
	CryptoRipemd160             = "System.Crypto.Ripemd160"
	CryptoKeccak256             = "System.Crypto.Keccak256"
	CryptoCheckSecp256k1        = "System.Crypto.CheckSecp256k1"
	CryptoCheckMultisig         = "System.Crypto.CheckMultisigSecp256k1"
	StorageGetContext           = "System.Storage.GetContext"
	StorageGetReadOnlyContext   = "System.Storage.GetReadOnlyContext"
	StorageGet                  = "System.Storage.Get"
	StoragePut                  = "System.Storage.Put"
	StorageDelete               = "System.Storage.Delete"
)

// Default returns a registry holding the standard services.
func Default() *Registry {
	r := NewRegistry()
	for _, s := range []struct {
		name  string
		flags vm.CallFlags
		fn    Func
	}{
		{RuntimePlatform, vm.NoCallFlags, runtimePlatform},
		{RuntimeLog, vm.AllowNotify, runtimeLog},
		{RuntimeNotify, vm.AllowNotify, runtimeNotify},
		{RuntimeGetInvocationCounter, vm.NoCallFlags, runtimeGetInvocationCounter},
		{RuntimeGetExecutingHash, vm.NoCallFlags, runtimeGetExecutingHash},
		{ContractCall, vm.ReadStates | vm.AllowCall, contractCall},
		{ContractGetCallFlags, vm.NoCallFlags, contractGetCallFlags},
		{CryptoSha256, vm.NoCallFlags, cryptoSha256},
		{CryptoRipemd160, vm.NoCallFlags, cryptoRipemd160},
		{CryptoKeccak256, vm.NoCallFlags, cryptoKeccak256},
		{CryptoCheckSecp256k1, vm.NoCallFlags, cryptoCheckSecp256k1},
		{CryptoCheckMultisig, vm.NoCallFlags, cryptoCheckMultisig},
		{StorageGetContext, vm.ReadStates, storageGetContext},
		{StorageGetReadOnlyContext, vm.ReadStates, storageGetReadOnlyContext},
		{StorageGet, vm.ReadStates, storageGet},
		{StoragePut, vm.WriteStates, storagePut},
		{StorageDelete, vm.WriteStates, storageDelete},
	} {
		err := r.Register(s.name, s.flags, s.fn)
		if err != nil {
			// The standard names do not collide.
			panic(err)
		}
	}
	return r
}
