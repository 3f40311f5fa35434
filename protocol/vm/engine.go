package vm

import (
	"fmt"
	"io"
	"math/big"

	"github.com/onyx-protocol/neovm/errors"
	"github.com/onyx-protocol/neovm/math/checked"
	"github.com/onyx-protocol/neovm/metrics"
	"github.com/onyx-protocol/neovm/protocol/vm/stackitem"
)

// State is the execution state of an Engine.
type State uint8

const (
	StateNone  State = 0
	StateHalt  State = 1 << 0
	StateFault State = 1 << 1
	StateBreak State = 1 << 2
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StateHalt:
		return "HALT"
	case StateFault:
		return "FAULT"
	case StateBreak:
		return "BREAK"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Engine executes scripts. It is not safe for concurrent use;
// run one Engine per goroutine.
type Engine struct {
	jt     *JumpTable
	limits Limits
	rc     *RefCounter

	istack []*Context // istack[len(istack)-1] is the current context
	result *Stack

	state     State
	uncaught  stackitem.Item
	fault     error
	isJumping bool

	trace io.Writer

	// Host is the embedder's state, available to handlers it
	// registers in the jump table.
	Host interface{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithTrace makes the engine write a line per instruction, and
// the evaluation stack after it, to w.
func WithTrace(w io.Writer) Option {
	return func(e *Engine) { e.trace = w }
}

// WithHost sets Engine.Host.
func WithHost(h interface{}) Option {
	return func(e *Engine) { e.Host = h }
}

// New returns an engine dispatching through jt (the default
// table if nil) under limits.
func New(jt *JumpTable, limits Limits, opts ...Option) *Engine {
	if jt == nil {
		jt = NewJumpTable()
	}
	rc := NewRefCounter()
	e := &Engine{
		jt:     jt,
		limits: limits,
		rc:     rc,
		result: NewStack(rc),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) State() State            { return e.state }
func (e *Engine) Limits() Limits          { return e.limits }
func (e *Engine) RefCounter() *RefCounter { return e.rc }

// ResultStack holds the values left by the entry context when
// it returns.
func (e *Engine) ResultStack() *Stack { return e.result }

// UncaughtException is the item being thrown, if any. After a
// FAULT it describes the fault.
func (e *Engine) UncaughtException() stackitem.Item { return e.uncaught }

// FaultError is the error that stopped execution in FAULT.
// Its errors.Data names the script, ip and invocation depth of
// the instruction that faulted.
func (e *Engine) FaultError() error { return e.fault }

// InvocationStack returns the loaded contexts, entry context
// first.
func (e *Engine) InvocationStack() []*Context {
	return append([]*Context(nil), e.istack...)
}

// CurrentContext is the context executing next, or nil.
func (e *Engine) CurrentContext() *Context {
	if len(e.istack) == 0 {
		return nil
	}
	return e.istack[len(e.istack)-1]
}

// EntryContext is the first context loaded, or nil.
func (e *Engine) EntryContext() *Context {
	if len(e.istack) == 0 {
		return nil
	}
	return e.istack[0]
}

// Break pauses execution; Execute resumes it.
func (e *Engine) Break() { e.state = StateBreak }

// LoadScript pushes a new context running script from
// initialPosition with all call flags.
func (e *Engine) LoadScript(script *Script, rvcount, initialPosition int) (*Context, error) {
	return e.LoadScriptWithFlags(script, rvcount, initialPosition, AllCallFlags)
}

// LoadScriptWithFlags is like LoadScript with explicit call
// flags.
func (e *Engine) LoadScriptWithFlags(script *Script, rvcount, initialPosition int, flags CallFlags) (*Context, error) {
	ectx := newContext(script, e.rc, rvcount, initialPosition, flags)
	err := e.LoadContext(ectx)
	if err != nil {
		return nil, err
	}
	return ectx, nil
}

// LoadContext pushes ectx onto the invocation stack.
func (e *Engine) LoadContext(ectx *Context) error {
	if len(e.istack) >= e.limits.MaxInvocationStackSize {
		return faultf(ErrInvocationOverflow, "MaxInvocationStackSize exceed: %d", len(e.istack))
	}
	e.istack = append(e.istack, ectx)
	return nil
}

// Execute runs until the engine halts, faults or breaks.
func (e *Engine) Execute() State {
	if e.state == StateBreak {
		e.state = StateNone
	}
	for e.state == StateNone {
		e.ExecuteNext()
	}
	if e.state != StateBreak {
		metrics.CountState("vm.state", e.state.String())
	}
	return e.state
}

// ExecuteNext runs one instruction. With nothing loaded, the
// engine halts. HALT and FAULT are final.
func (e *Engine) ExecuteNext() {
	if e.state == StateHalt || e.state == StateFault {
		return
	}
	if len(e.istack) == 0 {
		e.state = StateHalt
		return
	}
	defer func() {
		if p := recover(); p != nil {
			e.onFault(errors.WithDetailf(ErrUnexpected, "%v", p))
		}
	}()
	err := e.step()
	if err != nil {
		e.onFault(err)
	}
}

func (e *Engine) step() error {
	ectx := e.CurrentContext()
	inst, err := ectx.CurrentInstruction()
	if err != nil {
		return err
	}
	if e.trace != nil {
		fmt.Fprintf(e.trace, "ctx %d ip %d %s\n", len(e.istack)-1, ectx.ip, inst)
	}

	err = e.jt[inst.Op](e, inst)
	if err != nil && e.limits.CatchEngineExceptions && IsCatchable(err) {
		err = e.ExecuteThrow(stackitem.ByteString(err.Error()))
	}
	if err != nil {
		return err
	}

	err = e.postExecute()
	if err != nil {
		return err
	}
	if e.isJumping {
		e.isJumping = false
	} else {
		ectx.ip += inst.Size
	}

	if e.trace != nil {
		if cur := e.CurrentContext(); cur != nil {
			fmt.Fprintf(e.trace, "  stack %s\n", cur.EvaluationStack())
		}
	}
	return nil
}

// postExecute enforces MaxStackSize. Collection only runs once
// the running total reaches the limit.
func (e *Engine) postExecute() error {
	if e.rc.Count() < e.limits.MaxStackSize {
		return nil
	}
	if n := e.rc.CheckZeroReferred(); n > e.limits.MaxStackSize {
		return faultf(ErrStackOverflow, "MaxStackSize exceed: %d", n)
	}
	return nil
}

func (e *Engine) onFault(err error) {
	if ectx := e.CurrentContext(); ectx != nil {
		err = errors.WithData(err,
			"script", ectx.Script().HashString(),
			"ip", ectx.ip,
			"depth", len(e.istack)-1,
		)
	}
	e.state = StateFault
	e.fault = err
	e.isJumping = false
	if e.uncaught == nil || errors.Root(err) != ErrUnhandled {
		e.uncaught = stackitem.ByteString(err.Error())
	}
	for len(e.istack) > 0 {
		e.unloadContext(e.popContext())
	}
	if e.trace != nil {
		fmt.Fprintf(e.trace, "FAULT %s\n", err)
	}
}

func (e *Engine) popContext() *Context {
	ectx := e.istack[len(e.istack)-1]
	e.istack[len(e.istack)-1] = nil
	e.istack = e.istack[:len(e.istack)-1]
	return ectx
}

// unloadContext releases what ectx holds that the new current
// context does not share.
func (e *Engine) unloadContext(ectx *Context) {
	next := e.CurrentContext()
	if next == nil || next.shared.estack != ectx.shared.estack {
		ectx.shared.estack.Clear()
	}
	ectx.unload(next)
}

// ExecuteJump moves the current context to pos. Jumping to the
// end of the script is allowed and returns as RET would.
func (e *Engine) ExecuteJump(pos int) error {
	ectx := e.CurrentContext()
	if pos < 0 || pos > ectx.Script().Len() {
		return faultf(ErrBadJump, "Jump out of range for position: %d", pos)
	}
	ectx.ip = pos
	e.isJumping = true
	return nil
}

func (e *Engine) executeJumpOffset(offset int) error {
	pos, ok := checked.AddInt32(int32(e.CurrentContext().ip), int32(offset))
	if !ok {
		return faultf(ErrBadJump, "Jump out of range for position: %d", int64(e.CurrentContext().ip)+int64(offset))
	}
	return e.ExecuteJump(int(pos))
}

// ExecuteCall runs the code at pos in a new context sharing
// the current one's script, evaluation stack and static fields.
func (e *Engine) ExecuteCall(pos int) error {
	ectx := e.CurrentContext()
	if pos < 0 || pos > ectx.Script().Len() {
		return faultf(ErrBadJump, "Jump out of range for position: %d", pos)
	}
	return e.LoadContext(ectx.Clone(pos))
}

// ExecuteRet returns from the current context, moving its
// return values to the caller (or to the result stack).
func (e *Engine) ExecuteRet() error {
	ectx := e.popContext()
	dst := e.result
	if cur := e.CurrentContext(); cur != nil {
		dst = cur.EvaluationStack()
	}
	src := ectx.EvaluationStack()
	if src != dst {
		if ectx.rvcount >= 0 && src.Len() != ectx.rvcount {
			// The context is already off the stack; release it
			// before faulting.
			e.unloadContext(ectx)
			return faultf(ErrInvalidState, "RVCount doesn't match with EvaluationStack")
		}
		src.MoveTo(dst, -1)
	}
	if len(e.istack) == 0 {
		e.state = StateHalt
	}
	e.unloadContext(ectx)
	e.isJumping = true
	return nil
}

// ExecuteThrow raises ex. The innermost try region able to
// handle it takes over, unloading any contexts above it;
// without one the engine faults with ErrUnhandled.
func (e *Engine) ExecuteThrow(ex stackitem.Item) error {
	e.uncaught = ex
	for i := len(e.istack) - 1; i >= 0; i-- {
		ectx := e.istack[i]
		for {
			t := ectx.innermostTry()
			if t == nil {
				break
			}
			if t.State == TryStateFinally || (t.State == TryStateCatch && !t.HasFinally()) {
				ectx.popTry()
				continue
			}
			for len(e.istack) > i+1 {
				e.unloadContext(e.popContext())
			}
			ectx.EvaluationStack().Truncate(t.StackDepth)
			if t.State == TryStateTry && t.HasCatch() {
				t.State = TryStateCatch
				ectx.EvaluationStack().Push(ex)
				ectx.ip = t.CatchPointer
				e.uncaught = nil
			} else {
				t.State = TryStateFinally
				ectx.ip = t.FinallyPointer
			}
			e.isJumping = true
			return nil
		}
	}
	return faultf(ErrUnhandled, "An unhandled exception was thrown. %s", describe(ex))
}

func describe(item stackitem.Item) string {
	if s, ok := item.(stackitem.ByteString); ok {
		return string(s)
	}
	return item.String()
}

// Push pushes item onto the current evaluation stack.
func (e *Engine) Push(item stackitem.Item) {
	e.CurrentContext().EvaluationStack().Push(item)
}

// Pop pops from the current evaluation stack.
func (e *Engine) Pop() (stackitem.Item, error) {
	return e.CurrentContext().EvaluationStack().Pop()
}

// Peek returns the item i places below the top of the current
// evaluation stack.
func (e *Engine) Peek(i int) (stackitem.Item, error) {
	return e.CurrentContext().EvaluationStack().Peek(i)
}

func (e *Engine) pushBool(b bool) {
	e.Push(stackitem.Boolean(b))
}

func (e *Engine) pushInt(v *big.Int) error {
	item, err := stackitem.NewInteger(v)
	if err != nil {
		return err
	}
	e.Push(item)
	return nil
}

func (e *Engine) pushInt64(v int64) {
	e.Push(stackitem.NewInt(v))
}

func (e *Engine) popInt() (*big.Int, error) {
	item, err := e.Pop()
	if err != nil {
		return nil, err
	}
	return item.Integer()
}

// popInt32 pops an integer that must fit in an int32, as
// counts, indexes and shifts do.
func (e *Engine) popInt32() (int, error) {
	v, err := e.popInt()
	if err != nil {
		return 0, err
	}
	n, ok := checked.Int32(v)
	if !ok {
		return 0, faultf(ErrIntegerRange, "Value was either too large or too small for an Int32: %s", v)
	}
	return int(n), nil
}

func (e *Engine) popBool() (bool, error) {
	item, err := e.Pop()
	if err != nil {
		return false, err
	}
	return item.Bool()
}

func (e *Engine) popBytes() ([]byte, error) {
	item, err := e.Pop()
	if err != nil {
		return nil, err
	}
	return item.Bytes()
}

// popKey pops a primitive item: Boolean, Integer or ByteString.
func (e *Engine) popKey() (stackitem.Item, error) {
	item, err := e.Pop()
	if err != nil {
		return nil, err
	}
	if !item.Type().IsPrimitive() {
		return nil, castError(item, "PrimitiveType")
	}
	return item, nil
}

// popArray pops an Array or Struct.
func (e *Engine) popArray() (*stackitem.Array, error) {
	item, err := e.Pop()
	if err != nil {
		return nil, err
	}
	a, ok := asArray(item)
	if !ok {
		return nil, castError(item, "Array")
	}
	return a, nil
}

func asArray(item stackitem.Item) (*stackitem.Array, bool) {
	switch item := item.(type) {
	case *stackitem.Array:
		return item, true
	case *stackitem.Struct:
		return &item.Array, true
	}
	return nil, false
}

func castError(item stackitem.Item, want string) error {
	return faultf(ErrBadType, "The item can't be casted to type %s: %s", want, item.Type())
}

// cloneIfStruct copies a Struct about to be stored in a
// container.
func (e *Engine) cloneIfStruct(item stackitem.Item) (stackitem.Item, error) {
	if s, ok := item.(*stackitem.Struct); ok {
		return s.Clone(e.limits.MaxStackSize)
	}
	return item, nil
}
