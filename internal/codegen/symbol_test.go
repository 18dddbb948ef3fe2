package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vslc32/internal/ast"
	"vslc32/internal/asmgen"
	"vslc32/internal/regfile"
	"vslc32/internal/symtab"
	"vslc32/internal/types"
	"vslc32/internal/value"
)

func newTestContext(t *testing.T, fn *symtab.FunctionInfo) *Context {
	t.Helper()
	tab := symtab.New()
	require.NoError(t, tab.RegisterVariable(nowhere, types.I32, "g", "0"))
	require.NoError(t, tab.RegisterFunction(nowhere, types.I32, "add",
		[]symtab.FunctionArg{{Type: types.I32, Name: "a"}, {Type: types.I32, Name: "b"}}, nil))
	if fn == nil {
		fn = &symtab.FunctionInfo{Symbol: "_main"}
	}
	return &Context{Table: tab, Function: fn, Gen: asmgen.New(), Reg: regfile.New()}
}

func TestFindSymbol_ParameterShadowsGlobal(t *testing.T) {
	fn := &symtab.FunctionInfo{Symbol: "_f", Args: []symtab.FunctionArg{{Type: types.I32, Name: "g"}}}
	ctx := newTestContext(t, fn)

	v, err := FindSymbol(ctx, "g", nowhere)
	require.NoError(t, err)
	sym, ok := v.(*value.Symbol)
	require.True(t, ok)
	require.Equal(t, "ebp", sym.Name, "a parameter resolves relative to ebp, never the global's label")
}

func TestFindSymbol_ResolvesGlobal(t *testing.T) {
	ctx := newTestContext(t, nil)
	v, err := FindSymbol(ctx, "g", nowhere)
	require.NoError(t, err)
	require.Equal(t, "_g", v.(*value.Symbol).Name)
}

func TestFindSymbol_ResolvesFunctionAsPointerValue(t *testing.T) {
	ctx := newTestContext(t, nil)
	v, err := FindSymbol(ctx, "add", nowhere)
	require.NoError(t, err)
	sym := v.(*value.Symbol)
	require.NotNil(t, sym.Func)
	require.Equal(t, "_add", sym.Name)
	require.Len(t, sym.Func.Args, 2)
}

func TestFindSymbol_UnknownFails(t *testing.T) {
	ctx := newTestContext(t, nil)
	_, err := FindSymbol(ctx, "nope", nowhere)
	require.Error(t, err)
}

func TestEvaluateType_UntypedLiteralIsNil(t *testing.T) {
	ctx := newTestContext(t, nil)
	got, err := EvaluateType(ctx, &ast.Integer{Value: 1})
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestEvaluateType_BinaryPromotesToLargerSize(t *testing.T) {
	ctx := newTestContext(t, nil)
	n := &ast.Binary{
		Op:    ast.Add,
		Left:  &ast.Identifier{Name: "g"}, // i32
		Right: &ast.Integer{Value: 1},     // untyped
	}
	got, err := EvaluateType(ctx, n)
	require.NoError(t, err)
	require.Equal(t, types.I32, got)
}

func TestEvaluateType_FunctionCallReturnsCalleeReturnType(t *testing.T) {
	ctx := newTestContext(t, nil)
	n := &ast.FunctionCall{Callee: &ast.Identifier{Name: "add"}, Args: []ast.Node{&ast.Integer{Value: 1}, &ast.Integer{Value: 2}}}
	got, err := EvaluateType(ctx, n)
	require.NoError(t, err)
	require.Equal(t, types.I32, got)
}
