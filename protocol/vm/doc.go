/*
Package vm implements a deterministic stack machine for smart
contract bytecode.

A script is loaded into an Engine as an execution Context. The
engine decodes one instruction at a time from the current context
and dispatches it through a JumpTable, an array of 256 handlers
indexed by opcode. Embedders extend the machine by registering
their own handlers; protocol/interop installs SYSCALL this way.
Opcodes fall into the following categories:
  - pushdata
  - control (including try/catch/finally)
  - stack
  - slot (static fields, locals, arguments)
  - splice
  - bitwise
  - numeric
  - compound (arrays, structs, maps)
  - types
Each category has a corresponding .go file implementing those
opcodes.

Values on the stack are stackitem.Items. Containers are shared
references and may form cycles, so memory is bounded not by item
count but by a reference count maintained by RefCounter over every
stack, slot and container link. After an instruction, if the count
has reached Limits.MaxStackSize, unreachable containers (including
cyclic ones) are collected; if the count is still too high the
engine faults.

Execution ends in one of three states: HALT when the entry context
returns, leaving its values on the result stack; FAULT when an
instruction fails or an exception is thrown with no try region to
catch it; or BREAK when a Debugger stops at a breakpoint. Type and
value errors raised by the engine itself can be caught by scripts
like thrown exceptions; see IsCatchable.

The engine is single-threaded. A Script may be shared by engines
running in parallel.
*/
package vm
