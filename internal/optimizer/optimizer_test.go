package optimizer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vslc32/internal/ast"
	"vslc32/internal/vslerr"
)

func TestOptimizeExpression_FoldsArithmetic(t *testing.T) {
	// (2 + 3) * 4
	n := &ast.Binary{
		Op:   ast.Mul,
		Left: &ast.Binary{Op: ast.Add, Left: &ast.Integer{Value: 2}, Right: &ast.Integer{Value: 3}},
		Right: &ast.Integer{Value: 4},
	}
	out, err := OptimizeExpression(n)
	require.NoError(t, err)
	lit, ok := out.(*ast.Integer)
	require.True(t, ok)
	require.Equal(t, int64(20), lit.Value)
}

func TestOptimizeExpression_DivisionByZero(t *testing.T) {
	n := &ast.Binary{Op: ast.Div, Left: &ast.Integer{Value: 1}, Right: &ast.Integer{Value: 0}}
	_, err := OptimizeExpression(n)
	require.Error(t, err)
	require.Equal(t, vslerr.DivisionByZero, err.(*vslerr.Error).Kind)
}

func TestOptimizeExpression_NegationFolds(t *testing.T) {
	n := &ast.Negation{Inner: &ast.Integer{Value: 7}}
	out, err := OptimizeExpression(n)
	require.NoError(t, err)
	lit, ok := out.(*ast.Integer)
	require.True(t, ok)
	require.Equal(t, int64(-7), lit.Value)
}

func TestOptimizeExpression_IdentifierBlocksFolding(t *testing.T) {
	n := &ast.Binary{Op: ast.Add, Left: &ast.Identifier{Name: "x"}, Right: &ast.Integer{Value: 1}}
	out, err := OptimizeExpression(n)
	require.NoError(t, err)
	_, ok := out.(*ast.Binary)
	require.True(t, ok, "expression referencing an identifier must not be folded")
}

func TestOptimizeExpression_Idempotent(t *testing.T) {
	n := &ast.Binary{Op: ast.Add, Left: &ast.Integer{Value: 2}, Right: &ast.Integer{Value: 2}}
	once, err := OptimizeExpression(n)
	require.NoError(t, err)
	twice, err := OptimizeExpression(once)
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestOptimizeExpression_FoldsInNativeInt64WithoutNarrowing(t *testing.T) {
	// Folding itself never narrows to a target width; it just performs
	// native int64 arithmetic, so this is simply addition, not overflow --
	// width-based wraparound is ConvertInteger's job at codegen time.
	n := &ast.Binary{Op: ast.Add, Left: &ast.Integer{Value: 1<<62 - 1}, Right: &ast.Integer{Value: 1}}
	out, err := OptimizeExpression(n)
	require.NoError(t, err)
	require.Equal(t, int64(1<<62), out.(*ast.Integer).Value)
}
