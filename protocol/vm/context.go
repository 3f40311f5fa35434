package vm

import "github.com/onyx-protocol/neovm/protocol/vm/stackitem"

// Context is one frame of the invocation stack: a script, a
// position in it, and the storage the code at that position
// can see.
//
// Contexts made by CALL share their caller's script,
// evaluation stack and static fields; locals, arguments and
// try regions are per context.
//
// By convention, variables of this type are named ectx, not
// ctx, to avoid confusion with context.Context.
type Context struct {
	shared *sharedState

	ip      int
	rvcount int
	flags   CallFlags

	locals *Slot
	args   *Slot
	tries  []*ExceptionHandlingContext
}

type sharedState struct {
	script *Script
	estack *Stack
	static *Slot
}

func newContext(script *Script, rc *RefCounter, rvcount, ip int, flags CallFlags) *Context {
	return &Context{
		shared:  &sharedState{script: script, estack: NewStack(rc)},
		ip:      ip,
		rvcount: rvcount,
		flags:   flags,
	}
}

// Clone returns a context at ip sharing c's script, evaluation
// stack and static fields, and expecting no return values.
func (c *Context) Clone(ip int) *Context {
	return &Context{
		shared: c.shared,
		ip:     ip,
		flags:  c.flags,
	}
}

func (c *Context) Script() *Script { return c.shared.script }

// IP is the position of the current instruction.
func (c *Context) IP() int { return c.ip }

// RVCount is the number of values the context must leave on
// its evaluation stack when it returns, or -1 for any number.
func (c *Context) RVCount() int { return c.rvcount }

func (c *Context) CallFlags() CallFlags { return c.flags }

// CurrentInstruction decodes the instruction at IP.
func (c *Context) CurrentInstruction() (Instruction, error) {
	return c.shared.script.Instruction(c.ip)
}

// NextInstruction decodes the instruction following the
// current one.
func (c *Context) NextInstruction() (Instruction, error) {
	inst, err := c.CurrentInstruction()
	if err != nil {
		return inst, err
	}
	return c.shared.script.Instruction(c.ip + inst.Size)
}

func (c *Context) EvaluationStack() *Stack { return c.shared.estack }

// StaticFields is nil until INITSSLOT runs.
func (c *Context) StaticFields() *Slot { return c.shared.static }

// LocalVariables is nil until INITSLOT runs.
func (c *Context) LocalVariables() *Slot { return c.locals }

// Arguments is nil until INITSLOT runs.
func (c *Context) Arguments() *Slot { return c.args }

// TryStack returns the open try regions, innermost last.
func (c *Context) TryStack() []*ExceptionHandlingContext { return c.tries }

func (c *Context) moveNext() error {
	inst, err := c.CurrentInstruction()
	if err != nil {
		return err
	}
	c.ip += inst.Size
	return nil
}

func (c *Context) innermostTry() *ExceptionHandlingContext {
	if len(c.tries) == 0 {
		return nil
	}
	return c.tries[len(c.tries)-1]
}

func (c *Context) popTry() {
	c.tries[len(c.tries)-1] = nil
	c.tries = c.tries[:len(c.tries)-1]
}

// TryState is the phase of a try region.
type TryState uint8

const (
	TryStateTry TryState = iota
	TryStateCatch
	TryStateFinally
)

var tryStateNames = [...]string{"Try", "Catch", "Finally"}

func (s TryState) String() string {
	if int(s) < len(tryStateNames) {
		return tryStateNames[s]
	}
	return "TryState(?)"
}

// ExceptionHandlingContext is an open try region. Pointers are
// absolute script positions, -1 when absent.
type ExceptionHandlingContext struct {
	CatchPointer   int
	FinallyPointer int

	// EndPointer is where execution resumes after the finally
	// block; set by ENDTRY.
	EndPointer int

	// StackDepth is the evaluation stack height when the
	// region was entered.
	StackDepth int

	State TryState
}

func (e *ExceptionHandlingContext) HasCatch() bool   { return e.CatchPointer >= 0 }
func (e *ExceptionHandlingContext) HasFinally() bool { return e.FinallyPointer >= 0 }

// EnterTry opens a try region with the given absolute catch
// and finally positions (-1 when absent).
func (c *Context) EnterTry(catch, finally int) *ExceptionHandlingContext {
	e := &ExceptionHandlingContext{
		CatchPointer:   catch,
		FinallyPointer: finally,
		EndPointer:     -1,
		StackDepth:     c.shared.estack.Len(),
		State:          TryStateTry,
	}
	c.tries = append(c.tries, e)
	return e
}

// unload drops the slot references held by a context leaving
// the invocation stack. Storage still shared with next (the
// context below, or nil) is kept.
func (c *Context) unload(next *Context) {
	if c.shared.static != nil && (next == nil || next.shared.static != c.shared.static) {
		c.shared.static.ClearReferences()
	}
	if c.locals != nil {
		c.locals.ClearReferences()
	}
	if c.args != nil {
		c.args.ClearReferences()
	}
	c.locals, c.args = nil, nil
}

// pointer returns a Pointer into this context's script.
func (c *Context) pointer(pos int) *stackitem.Pointer {
	return stackitem.NewPointer(c.shared.script, pos)
}
