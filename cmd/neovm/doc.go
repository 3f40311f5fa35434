/*

Command neovm runs a script and prints the result.

Usage:

	neovm [flags] -x <hex>
	neovm [flags] -a '<assembly>'
	neovm [flags] -f <file>

The script is given as hex (-x), as assembly (-a), or as raw
bytecode read from a file (-f, where "-" means stdin). It runs in
an engine with the standard interop services and the result is
printed as JSON: the final state, the result stack, and, on
fault, the uncaught exception and the fault message. Output is
indented when stdout is a terminal.

Scripts are decoded lazily: a malformed instruction faults only
when it is reached. With -strict the whole script is checked
first and a malformed one is a usage error.

Exit code 0 indicates the script halted.
Exit code 1 indicates it faulted.
Exit code 2 indicates a usage, config or I/O error.

Execution limits come from the built-in defaults, then the
[limits] table of the -config file, then these environment
variables:

	NEOVM_MAX_SHIFT
	NEOVM_MAX_STACK_SIZE
	NEOVM_MAX_ITEM_SIZE
	NEOVM_MAX_COMPARABLE_SIZE
	NEOVM_MAX_INVOCATION_STACK_SIZE
	NEOVM_MAX_TRY_NESTING_DEPTH
	NEOVM_CATCH_ENGINE_EXCEPTIONS

A config file may also name a trace file and preload contracts
callable through System.Contract.Call:

	call_flags = "All"

	[limits]
	max_stack_size = 4096

	[trace]
	file = "neovm.trace"
	max_size = 1048576
	keep = 3

	[[contracts]]
	asm = "INITSLOT:0,2 LDARG0 LDARG1 ADD RET"
	methods = { add = 0 }

Each -b flag sets a breakpoint at an instruction offset of the
entry script. When one is reached, the offset and the evaluation
stack are written to stderr and execution continues.

*/
package main
