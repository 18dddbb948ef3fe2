package codegen

import (
	"vslc32/internal/ast"
	"vslc32/internal/asmgen"
	"vslc32/internal/types"
	"vslc32/internal/value"
	"vslc32/internal/vslerr"
)

// ---------------------
// ----- functions -----
// ---------------------

// CompileValue emits whatever code is needed to produce n's value and
// returns the Value it now occupies. target, when non-nil, is the type the
// caller intends to consume the result as; an untyped integer literal binds
// to it directly, and it seeds EvaluateType's fallback for an expression
// built entirely from such literals.
func CompileValue(ctx *Context, n ast.Node, target *types.Type) (value.Value, error) {
	switch v := n.(type) {
	case *ast.Identifier:
		return FindSymbol(ctx, v.Name, v.Loc)

	case *ast.Integer:
		// An out-of-range literal always reports value loss here, even where
		// the loss is purely a signedness change (e.g. a u32 initialized from
		// -1): this is the literal-range check, not the cast-narrowing check,
		// and fires first for a literal bound directly to target.
		if target != nil && !target.InRange(v.Value) {
			return nil, vslerr.New(vslerr.InvalidTypeCast, v.Loc, "possible value loss")
		}
		return &value.Integer{Typ: target, Literal: v.Value}, nil

	case *ast.TypeCast:
		castType, ok := types.Lookup(v.TargetTypeExpr.Name)
		if !ok {
			return nil, vslerr.New(vslerr.UnknownIdentifier, v.TargetTypeExpr.Loc, "unknown type %q", v.TargetTypeExpr.Name)
		}
		inner, err := CompileValue(ctx, v.Inner, castType)
		if err != nil {
			return nil, err
		}
		return GenerateTypeCast(ctx.Reg, ctx.Gen, inner, castType, true, v.Loc)

	case *ast.Negation:
		return compileNegation(ctx, v, target)

	case *ast.Binary:
		return compileBinary(ctx, v, target)

	case *ast.FunctionCall:
		return compileCall(ctx, v, true)

	default:
		return nil, vslerr.New(vslerr.UnexpectedSyntaxNode, n.Location(), "unexpected expression node %T", n)
	}
}

// compileNegation compiles Inner, ensures the result is held in a register
// (allocating and moving it there if necessary), and emits a neg in place.
func compileNegation(ctx *Context, n *ast.Negation, target *types.Type) (value.Value, error) {
	inner, err := CompileValue(ctx, n.Inner, target)
	if err != nil {
		return nil, err
	}
	if it := inner.Type(); it != nil && !it.IsSigned {
		return nil, vslerr.New(vslerr.UnsignedType, n.Loc, "cannot negate an unsigned value")
	}

	reg, ok := inner.(*value.Register)
	if !ok {
		allocType := inner.Type()
		if allocType == nil {
			allocType = target
		}
		if allocType == nil {
			allocType = types.I32
		}
		reg, err = ctx.Reg.AllocateRegister(n.Loc, allocType)
		if err != nil {
			return nil, err
		}
		if err := GenerateMov(ctx.Reg, ctx.Gen, reg, inner, false, n.Loc); err != nil {
			return nil, err
		}
	}

	operand, err := asmgen.FormatOperand(reg, n.Loc)
	if err != nil {
		return nil, err
	}
	ctx.Gen.Instr1("neg", operand)
	return reg, nil
}

// compileBinary implements the addition/subtraction code path: both
// operands are compiled against the expression's evaluated type, the left
// operand is coerced into a register (swapping operands first for a
// commutative addition when that avoids an extra mov), the right operand is
// cast to match, and a single add/sub is emitted.
func compileBinary(ctx *Context, n *ast.Binary, target *types.Type) (value.Value, error) {
	resultType, err := EvaluateType(ctx, n)
	if err != nil {
		return nil, err
	}
	if resultType == nil {
		resultType = target
	}

	left, err := CompileValue(ctx, n.Left, resultType)
	if err != nil {
		return nil, err
	}
	right, err := CompileValue(ctx, n.Right, resultType)
	if err != nil {
		return nil, err
	}

	if lt, rt := left.Type(), right.Type(); lt != nil && rt != nil && lt.IsSigned != rt.IsSigned {
		return nil, vslerr.New(vslerr.InvalidTypeCast, n.Loc, "operand signedness mismatch")
	}

	leftReg, ok := left.(*value.Register)
	if !ok {
		if n.Op == ast.Add {
			if rReg, ok2 := right.(*value.Register); ok2 {
				left, right = right, left
				leftReg, ok = rReg, true
			}
		}
	}
	if !ok {
		allocType := resultType
		if allocType == nil {
			allocType = left.Type()
		}
		reg, err := ctx.Reg.AllocateRegister(n.Loc, allocType)
		if err != nil {
			return nil, err
		}
		if err := GenerateMov(ctx.Reg, ctx.Gen, reg, left, false, n.Loc); err != nil {
			return nil, err
		}
		leftReg = reg
	}

	if resultType != nil {
		casted, err := GenerateTypeCast(ctx.Reg, ctx.Gen, right, resultType, false, n.Loc)
		if err != nil {
			return nil, err
		}
		right = casted
	}

	var op string
	switch n.Op {
	case ast.Add:
		op = "add"
	case ast.Sub:
		op = "sub"
	case ast.Mul:
		return nil, vslerr.New(vslerr.NotImplemented, n.Loc, "multiplication is not implemented")
	case ast.Div:
		return nil, vslerr.New(vslerr.NotImplemented, n.Loc, "division is not implemented")
	default:
		return nil, vslerr.New(vslerr.UnexpectedSyntaxNode, n.Loc, "unknown binary operator")
	}

	leftOperand, err := asmgen.FormatOperand(leftReg, n.Loc)
	if err != nil {
		return nil, err
	}
	rightOperand, err := asmgen.FormatOperand(right, n.Loc)
	if err != nil {
		return nil, err
	}
	ctx.Gen.Instr2(op, leftOperand, rightOperand)
	ctx.Reg.FreeRegister(right)
	return leftReg, nil
}
