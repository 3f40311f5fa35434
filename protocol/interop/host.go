package interop

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/log"
	"github.com/onyx-protocol/neovm/protocol/vm"
)

var ErrContractNotFound = errors.New("contract not found")

// Contract is a deployed script and the entry offsets of the
// methods other scripts may call.
type Contract struct {
	Script  *vm.Script
	Methods map[string]int
}

// ScriptStore resolves script hashes for System.Contract.Call.
type ScriptStore interface {
	GetContract(hash []byte) (*Contract, error)
}

// MemStore is a ScriptStore held in memory. It is safe for
// concurrent use.
type MemStore struct {
	mu        sync.RWMutex
	contracts map[string]*Contract
}

func NewMemStore() *MemStore {
	return &MemStore{contracts: make(map[string]*Contract)}
}

// Put stores c under the hash of its script.
func (s *MemStore) Put(c *Contract) {
	s.mu.Lock()
	s.contracts[c.Script.HashString()] = c
	s.mu.Unlock()
}

func (s *MemStore) GetContract(hash []byte) (*Contract, error) {
	s.mu.RLock()
	c, ok := s.contracts[hex.EncodeToString(hash)]
	s.mu.RUnlock()
	if !ok {
		return nil, errors.WithDetailf(ErrContractNotFound, "%x", hash)
	}
	return c, nil
}

// Notification is an event raised by System.Runtime.Notify.
// State is a JSON-shaped snapshot taken when the event was raised.
type Notification struct {
	ScriptHash []byte
	Name       string
	State      interface{}
}

// LogEntry is a message written by System.Runtime.Log.
type LogEntry struct {
	ScriptHash []byte
	Message    string
}

// Host is the per-run state of the interop services. One Host
// belongs to one Engine; it is not safe for concurrent use.
type Host struct {
	ctx   context.Context
	store ScriptStore

	Platform      string
	Notifications []Notification
	Logs          []LogEntry

	invocations map[string]int
	storage     map[string][]byte
}

// NewHost returns a Host resolving contract calls through store,
// which may be nil. Runtime.Log entries are also written to the
// log package under ctx.
func NewHost(ctx context.Context, store ScriptStore) *Host {
	return &Host{
		ctx:         ctx,
		store:       store,
		Platform:    "NEO",
		invocations: make(map[string]int),
		storage:     make(map[string][]byte),
	}
}

// NewEngine returns an engine dispatching SYSCALL through r with
// h as its host.
func (r *Registry) NewEngine(h *Host, limits vm.Limits, opts ...vm.Option) *vm.Engine {
	opts = append(opts, vm.WithHost(h))
	return vm.New(r.NewJumpTable(), limits, opts...)
}

// InvocationCount reports how many times the script with the given
// hash has been entered during this run.
func (h *Host) InvocationCount(hash []byte) int {
	return h.invocations[string(hash)]
}

func (h *Host) invoked(hash []byte) {
	h.invocations[string(hash)]++
}

func (h *Host) logf(keyvals ...interface{}) {
	if h.ctx == nil {
		return
	}
	log.Printkv(h.ctx, keyvals...)
}

// Stored returns the value under key in the storage of the
// script with the given hash.
func (h *Host) Stored(hash, key []byte) ([]byte, bool) {
	v, ok := h.storage[storageKey(hash, key)]
	return v, ok
}

// Script hashes are of fixed width, so the concatenation is
// unambiguous.
func storageKey(hash, key []byte) string {
	return string(hash) + string(key)
}
