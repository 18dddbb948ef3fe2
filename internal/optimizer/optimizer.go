// Package optimizer implements the compiler's single optimization pass:
// bottom-up constant folding of arithmetic expression subtrees. It is a
// pure function from ast.Node to ast.Node (or error); it never touches
// symbol tables, registers, or emitted assembly.
package optimizer

import (
	"vslc32/internal/ast"
	"vslc32/internal/vslerr"
)

// ---------------------
// ----- functions -----
// ---------------------

// OptimizeExpression folds constant arithmetic in the subtree rooted at n,
// bottom-up, applying each rule once. Non-expression nodes and subtrees
// containing free identifiers pass through unchanged except for their
// foldable descendants.
func OptimizeExpression(n ast.Node) (ast.Node, error) {
	switch v := n.(type) {
	case nil:
		return nil, nil

	case *ast.Identifier, *ast.Integer:
		return v.(ast.Node), nil

	case *ast.Negation:
		inner, err := OptimizeExpression(v.Inner)
		if err != nil {
			return nil, err
		}
		v.Inner = inner
		if lit, ok := inner.(*ast.Integer); ok {
			return &ast.Integer{Loc: v.Loc, Value: -lit.Value}, nil
		}
		return v, nil

	case *ast.TypeCast:
		inner, err := OptimizeExpression(v.Inner)
		if err != nil {
			return nil, err
		}
		v.Inner = inner
		return v, nil

	case *ast.Binary:
		left, err := OptimizeExpression(v.Left)
		if err != nil {
			return nil, err
		}
		right, err := OptimizeExpression(v.Right)
		if err != nil {
			return nil, err
		}
		v.Left, v.Right = left, right

		litLeft, okLeft := left.(*ast.Integer)
		litRight, okRight := right.(*ast.Integer)
		if !okLeft || !okRight {
			return v, nil
		}

		a, b := litLeft.Value, litRight.Value
		var result int64
		switch v.Op {
		case ast.Add:
			result = a + b
		case ast.Sub:
			result = a - b
		case ast.Mul:
			result = a * b
		case ast.Div:
			if b == 0 {
				return nil, vslerr.New(vslerr.DivisionByZero, v.Loc, "division by zero")
			}
			result = a / b
		}
		return &ast.Integer{Loc: v.Loc, Value: result}, nil

	case *ast.FunctionCall:
		callee, err := OptimizeExpression(v.Callee)
		if err != nil {
			return nil, err
		}
		v.Callee = callee
		for i, a := range v.Args {
			folded, err := OptimizeExpression(a)
			if err != nil {
				return nil, err
			}
			v.Args[i] = folded
		}
		return v, nil

	default:
		return n, nil
	}
}
