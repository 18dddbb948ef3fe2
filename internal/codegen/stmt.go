package codegen

import (
	"vslc32/internal/ast"
	"vslc32/internal/optimizer"
	"vslc32/internal/types"
	"vslc32/internal/value"
	"vslc32/internal/vslerr"
)

// ---------------------
// ----- functions -----
// ---------------------

// CompileStatement compiles one body statement. isLast tells a return
// statement whether it is the textually final statement of the function
// body, so it can omit the jump to the end label that every other return
// needs.
func CompileStatement(ctx *Context, n ast.Node, isLast bool) error {
	switch s := n.(type) {
	case *ast.Assignment:
		lhs, err := CompileValue(ctx, s.LHS, nil)
		if err != nil {
			return err
		}
		dst, ok := lhs.(*value.Symbol)
		if !ok {
			return vslerr.New(vslerr.NotLValue, s.Loc, "assignment target is not a memory location")
		}
		return GenerateAssignment(ctx, dst, s.RHS)

	case *ast.Return:
		if err := compileReturn(ctx, s); err != nil {
			return err
		}
		if !isLast {
			ctx.Gen.Jump(ctx.EndLabel())
			ctx.NeedsEndingLabel = true
		}
		return nil

	case *ast.FunctionCall:
		_, err := compileCall(ctx, s, false)
		return err

	default:
		return vslerr.New(vslerr.UnexpectedSyntaxNode, n.Location(), "unexpected statement node %T", n)
	}
}

// compileReturn validates that the presence of a return value matches the
// function's declared return type, and if so places the value into eax.
func compileReturn(ctx *Context, s *ast.Return) error {
	hasValue := s.Inner != nil
	hasReturnType := ctx.Function.ReturnType != nil
	if hasValue != hasReturnType {
		return vslerr.New(vslerr.MismatchingReturn, s.Loc, "return presence does not match function's declared return type")
	}
	if !hasValue {
		return nil
	}

	val, err := CompileValue(ctx, s.Inner, ctx.Function.ReturnType)
	if err != nil {
		return err
	}
	reg, err := moveToReturnRegister(ctx, val, ctx.Function.ReturnType, s.Loc)
	if err != nil {
		return err
	}
	// A return is terminal: nothing downstream will consume or free this
	// allocation, so it is released here to keep the zero-live-allocations
	// invariant after compiling a function.
	ctx.Reg.FreeRegister(reg)
	return nil
}

// GenerateAssignment optimizes rhs, then either unwraps a same-type
// explicit cast into an explicit move straight from the cast's operand, or
// compiles rhs against dst's type and moves the result in implicitly.
func GenerateAssignment(ctx *Context, dst *value.Symbol, rhs ast.Node) error {
	optimized, err := optimizer.OptimizeExpression(rhs)
	if err != nil {
		return err
	}

	if cast, ok := optimized.(*ast.TypeCast); ok {
		castType, ok2 := types.Lookup(cast.TargetTypeExpr.Name)
		if !ok2 {
			return vslerr.New(vslerr.UnknownIdentifier, cast.TargetTypeExpr.Loc, "unknown type %q", cast.TargetTypeExpr.Name)
		}
		if dst.Typ != nil && castType.Equal(dst.Typ) {
			inner, err := CompileValue(ctx, cast.Inner, nil)
			if err != nil {
				return err
			}
			return GenerateMov(ctx.Reg, ctx.Gen, dst, inner, true, cast.Loc)
		}
	}

	result, err := CompileValue(ctx, optimized, dst.Typ)
	if err != nil {
		return err
	}
	return GenerateMov(ctx.Reg, ctx.Gen, dst, result, false, optimized.Location())
}
