package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vslc32/internal/ast"
	"vslc32/internal/types"
	"vslc32/internal/value"
)

func TestCompileValue_IntegerBindsToTarget(t *testing.T) {
	ctx := newTestContext(t, nil)
	v, err := CompileValue(ctx, &ast.Integer{Value: 5}, types.I8)
	require.NoError(t, err)
	require.Equal(t, types.I8, v.Type())
}

func TestCompileValue_IntegerOutOfTargetRangeFails(t *testing.T) {
	ctx := newTestContext(t, nil)
	_, err := CompileValue(ctx, &ast.Integer{Value: 1000}, types.I8)
	require.Error(t, err)
}

func TestCompileValue_IdentifierResolvesViaFindSymbol(t *testing.T) {
	ctx := newTestContext(t, nil)
	v, err := CompileValue(ctx, &ast.Identifier{Name: "g"}, nil)
	require.NoError(t, err)
	require.Equal(t, "_g", v.(*value.Symbol).Name)
}

func TestCompileNegation_RejectsUnsignedOperand(t *testing.T) {
	ctx := newTestContext(t, nil)
	n := &ast.Negation{Inner: &ast.Integer{Value: 5}}
	_, err := CompileValue(ctx, n, types.U32)
	require.Error(t, err)
}

func TestCompileNegation_AllocatesRegisterForMemoryOperand(t *testing.T) {
	ctx := newTestContext(t, nil)
	n := &ast.Negation{Inner: &ast.Identifier{Name: "g"}}
	v, err := CompileValue(ctx, n, nil)
	require.NoError(t, err)
	_, ok := v.(*value.Register)
	require.True(t, ok, "negating a memory operand must materialize it in a register")
	require.Equal(t, 1, ctx.Reg.LiveCount())
}

func TestCompileBinary_SignednessMismatchFails(t *testing.T) {
	ctx := newTestContext(t, nil)
	n := &ast.Binary{
		Op:    ast.Add,
		Left:  &ast.TypeCast{Inner: &ast.Integer{Value: 1}, TargetTypeExpr: &ast.Identifier{Name: "i32"}},
		Right: &ast.TypeCast{Inner: &ast.Integer{Value: 1}, TargetTypeExpr: &ast.Identifier{Name: "u32"}},
	}
	_, err := CompileValue(ctx, n, nil)
	require.Error(t, err)
}

func TestCompileBinary_LeavesOnlyResultRegisterLiveAfterFreeingRight(t *testing.T) {
	ctx := newTestContext(t, nil)
	n := &ast.Binary{Op: ast.Add, Left: &ast.Identifier{Name: "g"}, Right: &ast.Integer{Value: 1}}
	v, err := CompileValue(ctx, n, nil)
	require.NoError(t, err)
	_, ok := v.(*value.Register)
	require.True(t, ok)
	require.Equal(t, 1, ctx.Reg.LiveCount(), "only the result register should remain live")
}

func TestCompileBinary_MultiplicationNotImplemented(t *testing.T) {
	ctx := newTestContext(t, nil)
	n := &ast.Binary{Op: ast.Mul, Left: &ast.Integer{Value: 1}, Right: &ast.Integer{Value: 2}}
	_, err := CompileValue(ctx, n, types.I32)
	require.Error(t, err)
}
