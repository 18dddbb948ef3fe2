// Package compiler is the driver: it owns the two-phase compilation
// sequence (symbol-table registration, then per-function code generation)
// and exposes the single Compile entrypoint the CLI calls.
package compiler

import (
	"io"

	"github.com/samber/lo"

	"vslc32/internal/ast"
	"vslc32/internal/asmgen"
	"vslc32/internal/codegen"
	"vslc32/internal/lexer"
	"vslc32/internal/optimizer"
	"vslc32/internal/parser"
	"vslc32/internal/regfile"
	"vslc32/internal/symtab"
	"vslc32/internal/types"
	"vslc32/internal/value"
	"vslc32/internal/vslerr"
	"vslc32/internal/xtoa"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Options configures a single compilation. It is passed explicitly rather
// than read from package globals, since the compiler has no process-wide
// state.
type Options struct {
	// TargetOut is where the caller intends to write the resulting
	// listing; Compile itself only returns the listing as a string, but
	// carries this through for callers (the CLI) that want one place to
	// configure both.
	TargetOut io.Writer
	Verbose   bool
}

// Stats summarizes one compilation, printed by the CLI under -v/--verbose.
type Stats struct {
	Globals       int
	Functions     int
	RegisterPeaks map[string]int // function symbol -> count of distinct registers ever used.
}

// ---------------------
// ----- functions -----
// ---------------------

// Compile runs the full pipeline -- tokenize, parse, register, generate --
// over source and returns the assembled FASM listing.
func Compile(source, fileName string, opt Options) (string, error) {
	listing, _, err := CompileWithStats(source, fileName, opt)
	return listing, err
}

// CompileWithStats is Compile plus the per-function register statistics
// -v/--verbose reports.
func CompileWithStats(source, fileName string, opt Options) (string, *Stats, error) {
	tz := lexer.New(source, fileName)
	p, err := parser.New(tz)
	if err != nil {
		return "", nil, err
	}
	decls, err := p.ParseFile()
	if err != nil {
		return "", nil, err
	}

	table := symtab.New()
	if err := registerDeclarations(table, decls); err != nil {
		return "", nil, err
	}

	gen := asmgen.New()
	stats := &Stats{Functions: len(table.UserFunctions()), Globals: len(table.Globals()), RegisterPeaks: map[string]int{}}

	for _, fn := range table.UserFunctions() {
		used, err := compileFunction(table, gen, fn)
		if err != nil {
			return "", nil, err
		}
		stats.RegisterPeaks[fn.Symbol] = len(used)
	}

	for _, g := range table.Globals() {
		gen.DataDecl(g.Symbol, g.Type.Directive(), g.InitialValueText)
	}

	return gen.Link(), stats, nil
}

// registerDeclarations runs the registration phase: every top-level
// declaration is folded (for a constant initializer) or resolved (for a
// function signature) and entered into table, in source order, so that a
// forward reference to a function declared later in the file still
// resolves during code generation.
func registerDeclarations(table *symtab.Table, decls []ast.Node) error {
	for _, d := range decls {
		switch n := d.(type) {
		case *ast.VariableDeclaration:
			if err := registerGlobal(table, n); err != nil {
				return err
			}
		case *ast.FunctionDeclaration:
			if err := registerFunction(table, n); err != nil {
				return err
			}
		default:
			return vslerr.New(vslerr.UnexpectedSyntaxNode, d.Location(), "unexpected top-level declaration %T", d)
		}
	}
	return nil
}

// registerGlobal resolves a top-level variable's type and folds its
// initializer to a constant, the only form a .data entry can hold.
func registerGlobal(table *symtab.Table, n *ast.VariableDeclaration) error {
	if n.TypeExpr == nil {
		return vslerr.New(vslerr.UnexpectedSyntaxNode, n.Loc, "variable %q has no declared type", n.Name)
	}
	typ, err := resolveType(n.TypeExpr)
	if err != nil {
		return err
	}

	folded, err := optimizer.OptimizeExpression(n.Initializer)
	if err != nil {
		return err
	}

	lit, err := foldedGlobalLiteral(folded)
	if err != nil {
		return err
	}
	if !typ.InRange(lit.Value) {
		return vslerr.New(vslerr.InvalidTypeCast, n.Loc, "possible value loss")
	}

	return table.RegisterVariable(n.Loc, typ, n.Name, xtoa.ItoA(lit.Value))
}

// foldedGlobalLiteral extracts the constant integer out of an initializer
// the optimizer has already folded as far as it goes: either a bare integer,
// or an explicit cast of one (the optimizer's terminal form for a cast whose
// operand folded to a constant -- it folds the operand but leaves the cast
// itself in place), in which case the cast is applied here via ConvertInteger
// the same way GenerateAssignment unwraps a same-type cast for a local
// assignment.
func foldedGlobalLiteral(folded ast.Node) (*ast.Integer, error) {
	switch n := folded.(type) {
	case *ast.Integer:
		return n, nil

	case *ast.TypeCast:
		inner, ok := n.Inner.(*ast.Integer)
		if !ok {
			return nil, vslerr.New(vslerr.UnexpectedSyntaxNode, n.Loc, "global initializer must be a constant expression")
		}
		castType, ok := types.Lookup(n.TargetTypeExpr.Name)
		if !ok {
			return nil, vslerr.New(vslerr.UnknownIdentifier, n.TargetTypeExpr.Loc, "unknown type %q", n.TargetTypeExpr.Name)
		}
		converted, err := codegen.ConvertInteger(&value.Integer{Literal: inner.Value}, castType, true, n.Loc)
		if err != nil {
			return nil, err
		}
		return &ast.Integer{Loc: n.Loc, Value: converted.Literal}, nil

	default:
		return nil, vslerr.New(vslerr.UnexpectedSyntaxNode, folded.Location(), "global initializer must be a constant expression")
	}
}

// registerFunction resolves a function's declared signature and registers
// it with its (not yet compiled) body.
func registerFunction(table *symtab.Table, n *ast.FunctionDeclaration) error {
	var returnType *types.Type
	if n.ReturnTypeExpr != nil {
		t, err := resolveType(n.ReturnTypeExpr)
		if err != nil {
			return err
		}
		returnType = t
	}

	args := make([]symtab.FunctionArg, len(n.Args))
	for i, a := range n.Args {
		t, err := resolveType(a.TypeExpr)
		if err != nil {
			return err
		}
		args[i] = symtab.FunctionArg{Location: a.Loc, Type: t, Name: a.Name}
	}

	return table.RegisterFunction(n.Loc, returnType, n.Name, args, n.Body)
}

// resolveType looks up a parsed type identifier, which must be non-nil. A
// function argument always has one; an omitted type (a nil *ast.Identifier)
// is handled by the caller before resolveType is reached: a function's
// omitted return type means void, and a variable declaration without a type
// is rejected by registerGlobal.
func resolveType(expr *ast.Identifier) (*types.Type, error) {
	t, ok := types.Lookup(expr.Name)
	if !ok {
		return nil, vslerr.New(vslerr.UnknownIdentifier, expr.Loc, "unknown type %q", expr.Name)
	}
	return t, nil
}

// compileFunction runs the code generation phase for one user function:
// prologue, body, optional end label, epilogue, spliced into the text
// segment. It returns the set of registers the function ever used.
func compileFunction(table *symtab.Table, gen *asmgen.Generator, fn *symtab.FunctionInfo) ([]int, error) {
	reg := regfile.New()
	gen.ResetCode()

	ctx := &codegen.Context{Table: table, Function: fn, Gen: gen, Reg: reg}

	for i, stmt := range fn.Body {
		isLast := i == len(fn.Body)-1
		if err := codegen.CompileStatement(ctx, stmt, isLast); err != nil {
			return nil, err
		}
	}

	used := reg.Used()
	// Only the callee-saved registers need a prologue/epilogue save: eax,
	// ecx and edx are caller-saved, and eax additionally holds the function's
	// return value, so pushing and popping it here would overwrite that
	// value with whatever garbage was in eax at entry, right before ret.
	calleeSaved := lo.Filter(used, func(id int, _ int) bool {
		return id == regfile.EBX || id == regfile.ESI || id == regfile.EDI
	})
	// Name at dword width never fails for any of the eight register ids, so
	// the lookup error is discarded here.
	savedNames := lo.Map(calleeSaved, func(id int, _ int) string {
		name, _ := regfile.Name(id, 4, fn.Location)
		return name
	})

	gen.Label(fn.Symbol)
	gen.TextLine("\tpush ebp\n\tmov ebp, esp\n")
	for _, name := range savedNames {
		gen.Instr1("push", name)
	}

	gen.InsertFunctionCode()

	if ctx.NeedsEndingLabel {
		gen.Label(ctx.EndLabel())
	}

	for _, name := range lo.Reverse(savedNames) {
		gen.Instr1("pop", name)
	}
	gen.TextLine("\tmov esp, ebp\n\tpop ebp\n\tret\n\n")

	return used, nil
}
