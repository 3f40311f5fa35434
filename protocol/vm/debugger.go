package vm

// Debugger drives an Engine with breakpoints and stepping.
// Breakpoints are keyed by script hash, so they apply to every
// load of the same bytecode.
type Debugger struct {
	e           *Engine
	breakpoints map[string]map[int]bool
}

func NewDebugger(e *Engine) *Debugger {
	return &Debugger{e: e, breakpoints: make(map[string]map[int]bool)}
}

// Engine returns the engine being debugged.
func (d *Debugger) Engine() *Engine { return d.e }

// AddBreakPoint stops execution before the instruction at pos
// in script runs.
func (d *Debugger) AddBreakPoint(script *Script, pos int) {
	h := script.HashString()
	if d.breakpoints[h] == nil {
		d.breakpoints[h] = make(map[int]bool)
	}
	d.breakpoints[h][pos] = true
}

// RemoveBreakPoint reports whether a breakpoint was removed.
func (d *Debugger) RemoveBreakPoint(script *Script, pos int) bool {
	h := script.HashString()
	set := d.breakpoints[h]
	if !set[pos] {
		return false
	}
	delete(set, pos)
	if len(set) == 0 {
		delete(d.breakpoints, h)
	}
	return true
}

// Execute runs until the engine halts, faults or reaches a
// breakpoint.
func (d *Debugger) Execute() State {
	if d.e.state == StateBreak {
		d.e.state = StateNone
	}
	for d.e.state == StateNone {
		d.executeAndCheckBreakPoints()
	}
	return d.e.state
}

func (d *Debugger) executeAndCheckBreakPoints() {
	d.e.ExecuteNext()
	if d.e.state != StateNone || len(d.breakpoints) == 0 {
		return
	}
	ectx := d.e.CurrentContext()
	if ectx == nil {
		return
	}
	if d.breakpoints[ectx.Script().HashString()][ectx.ip] {
		d.e.state = StateBreak
	}
}

// StepInto runs one instruction, entering calls.
func (d *Debugger) StepInto() State {
	if d.e.state == StateHalt || d.e.state == StateFault {
		return d.e.state
	}
	d.e.ExecuteNext()
	if d.e.state == StateNone {
		d.e.state = StateBreak
	}
	return d.e.state
}

// StepOut runs until the current context returns.
func (d *Debugger) StepOut() State {
	if d.e.state == StateBreak {
		d.e.state = StateNone
	}
	depth := len(d.e.istack)
	for d.e.state == StateNone && len(d.e.istack) >= depth {
		d.executeAndCheckBreakPoints()
	}
	if d.e.state == StateNone {
		d.e.state = StateBreak
	}
	return d.e.state
}

// StepOver runs one instruction, running any call it makes to
// completion.
func (d *Debugger) StepOver() State {
	if d.e.state == StateHalt || d.e.state == StateFault {
		return d.e.state
	}
	d.e.state = StateNone
	depth := len(d.e.istack)
	for {
		d.executeAndCheckBreakPoints()
		if d.e.state != StateNone || len(d.e.istack) <= depth {
			break
		}
	}
	if d.e.state == StateNone {
		d.e.state = StateBreak
	}
	return d.e.state
}
