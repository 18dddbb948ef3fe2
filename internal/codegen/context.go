// Package codegen implements the value/type operations and expression and
// statement code generation described by the design's code generator: the
// integer conversion and move rules, symbol resolution, type evaluation,
// expression compilation, and the function-call calling convention. It is
// the largest subsystem of the compiler, gluing the register manager, the
// symbol tables and the assembly generator together.
package codegen

import (
	"vslc32/internal/asmgen"
	"vslc32/internal/regfile"
	"vslc32/internal/symtab"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Context holds everything the code generator needs while compiling a
// single function body: the symbol tables it resolves identifiers
// against, the function currently being compiled, the register manager the
// driver creates for that function, and the assembly generator the driver
// shares across the whole compilation.
type Context struct {
	Table    *symtab.Table
	Function *symtab.FunctionInfo
	Gen      *asmgen.Generator
	Reg      *regfile.Manager

	// NeedsEndingLabel is set when a non-trailing return statement emits a
	// jump to the function's end label; the driver checks it after
	// walking the body to decide whether to emit that label.
	NeedsEndingLabel bool
}

// ---------------------
// ----- functions -----
// ---------------------

// EndLabel returns the label a non-trailing return jumps to, mangled from
// the current function's assembly symbol.
func (ctx *Context) EndLabel() string {
	return "end" + ctx.Function.Symbol
}
