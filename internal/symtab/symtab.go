// Package symtab implements the compiler's two symbol tables (global
// variables and functions), built during the driver's registration phase
// and consulted during code generation. Both tables preserve insertion
// order so that generated output is byte-for-byte deterministic.
package symtab

import (
	"vslc32/internal/ast"
	"vslc32/internal/loc"
	"vslc32/internal/types"
	"vslc32/internal/vslerr"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// GlobalVar is a registered top-level variable declaration.
type GlobalVar struct {
	Location loc.Location
	Symbol   string // Mangled assembly label, e.g. "_a".
	Type     *types.Type
	// InitialValueText is the decimal text of the folded initializer,
	// ready to be written verbatim into the .data section.
	InitialValueText string
}

// FunctionArg describes one declared parameter of a registered function.
type FunctionArg struct {
	Location loc.Location
	Type     *types.Type
	Name     string
}

// FunctionInfo is a registered function, user-declared or intrinsic.
type FunctionInfo struct {
	Location   loc.Location
	Symbol     string // Assembly label, e.g. "_main", or "_read"/"_write" for intrinsics.
	ReturnType *types.Type // nil means void.
	Args       []FunctionArg
	Body       []ast.Node // nil for intrinsics.
	Intrinsic  bool
}

// Table holds both symbol tables for a single compilation.
type Table struct {
	globalOrder []string
	globals     map[string]*GlobalVar

	funcOrder []string
	funcs     map[string]*FunctionInfo
}

// ---------------------
// ----- functions -----
// ---------------------

// Mangle prefixes a source identifier with "_", the scheme used for every
// user-declared assembly symbol, to avoid collisions with assembler
// reserved words.
func Mangle(name string) string {
	return "_" + name
}

// New returns a Table pre-populated with the two intrinsics _read and
// _write.
func New() *Table {
	t := &Table{
		globals: make(map[string]*GlobalVar),
		funcs:   make(map[string]*FunctionInfo),
	}
	t.funcs["_read"] = &FunctionInfo{Symbol: "_read", ReturnType: types.I32, Intrinsic: true}
	t.funcOrder = append(t.funcOrder, "_read")
	t.funcs["_write"] = &FunctionInfo{
		Symbol:    "_write",
		Args:      []FunctionArg{{Type: types.I32, Name: "value"}},
		Intrinsic: true,
	}
	t.funcOrder = append(t.funcOrder, "_write")
	return t
}

// taken reports whether name already denotes a global or a function.
func (t *Table) taken(name string) bool {
	_, g := t.globals[name]
	_, f := t.funcs[name]
	return g || f
}

// RegisterVariable adds a global variable. Fails DuplicateSymbol if name is
// already a global or a function.
func (t *Table) RegisterVariable(at loc.Location, typ *types.Type, name, initialValueText string) error {
	if t.taken(name) {
		return vslerr.New(vslerr.DuplicateSymbol, at, "symbol %q already declared", name)
	}
	t.globals[name] = &GlobalVar{
		Location:         at,
		Symbol:           Mangle(name),
		Type:             typ,
		InitialValueText: initialValueText,
	}
	t.globalOrder = append(t.globalOrder, name)
	return nil
}

// RegisterFunction adds a user-declared function. Fails DuplicateSymbol if
// name is already a global, a function, or one of the pre-registered
// intrinsics.
func (t *Table) RegisterFunction(at loc.Location, returnType *types.Type, name string, args []FunctionArg, body []ast.Node) error {
	if t.taken(name) {
		return vslerr.New(vslerr.DuplicateSymbol, at, "symbol %q already declared", name)
	}
	t.funcs[name] = &FunctionInfo{
		Location:   at,
		Symbol:     Mangle(name),
		ReturnType: returnType,
		Args:       args,
		Body:       body,
	}
	t.funcOrder = append(t.funcOrder, name)
	return nil
}

// LookupGlobal resolves a source name to a registered global variable.
func (t *Table) LookupGlobal(name string) (*GlobalVar, bool) {
	g, ok := t.globals[name]
	return g, ok
}

// LookupFunction resolves a source name to a registered function,
// including the _read/_write intrinsics.
func (t *Table) LookupFunction(name string) (*FunctionInfo, bool) {
	f, ok := t.funcs[name]
	return f, ok
}

// Globals returns every registered global variable in declaration order.
func (t *Table) Globals() []*GlobalVar {
	out := make([]*GlobalVar, 0, len(t.globalOrder))
	for _, name := range t.globalOrder {
		out = append(out, t.globals[name])
	}
	return out
}

// UserFunctions returns every user-declared (non-intrinsic) function in
// declaration order, the set the driver walks during code generation.
func (t *Table) UserFunctions() []*FunctionInfo {
	out := make([]*FunctionInfo, 0, len(t.funcOrder))
	for _, name := range t.funcOrder {
		if f := t.funcs[name]; !f.Intrinsic {
			out = append(out, f)
		}
	}
	return out
}
