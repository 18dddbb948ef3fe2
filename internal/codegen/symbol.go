package codegen

import (
	"vslc32/internal/ast"
	"vslc32/internal/loc"
	"vslc32/internal/types"
	"vslc32/internal/value"
	"vslc32/internal/vslerr"
)

// ---------------------
// ----- functions -----
// ---------------------

// FindSymbol resolves name against the current function's parameters, then
// the global variables, then the function table, in that order (a parameter
// shadows a global of the same name, which shadows a function). Fails
// UnknownIdentifier if none match.
func FindSymbol(ctx *Context, name string, at loc.Location) (value.Value, error) {
	for i, arg := range ctx.Function.Args {
		if arg.Name == name {
			return &value.Symbol{
				Typ:    arg.Type,
				Name:   "ebp",
				Offset: (i + 2) * 4,
			}, nil
		}
	}

	if g, ok := ctx.Table.LookupGlobal(name); ok {
		return &value.Symbol{Typ: g.Type, Name: g.Symbol}, nil
	}

	if f, ok := ctx.Table.LookupFunction(name); ok {
		argTypes := make([]*types.Type, len(f.Args))
		for i, a := range f.Args {
			argTypes[i] = a.Type
		}
		return &value.Symbol{
			Name: f.Symbol,
			Func: &value.FuncSignature{ReturnType: f.ReturnType, Args: argTypes},
		}, nil
	}

	return nil, vslerr.New(vslerr.UnknownIdentifier, at, "unknown identifier %q", name)
}

// calleeSignature resolves a call expression's callee to its function
// signature without generating any code, for use by EvaluateType.
func calleeSignature(ctx *Context, callee ast.Node) (*value.FuncSignature, error) {
	ident, ok := callee.(*ast.Identifier)
	if !ok {
		return nil, vslerr.New(vslerr.NotCallableType, callee.Location(), "callee is not callable")
	}
	f, ok := ctx.Table.LookupFunction(ident.Name)
	if !ok {
		return nil, vslerr.New(vslerr.UnknownIdentifier, ident.Loc, "unknown identifier %q", ident.Name)
	}
	argTypes := make([]*types.Type, len(f.Args))
	for i, a := range f.Args {
		argTypes[i] = a.Type
	}
	return &value.FuncSignature{ReturnType: f.ReturnType, Args: argTypes}, nil
}

// EvaluateType determines an expression's static type without emitting any
// code, returning nil for an expression whose type is not yet resolved (an
// untyped integer literal, or an arithmetic expression built only from such
// literals).
func EvaluateType(ctx *Context, n ast.Node) (*types.Type, error) {
	switch v := n.(type) {
	case *ast.Integer:
		return nil, nil

	case *ast.Identifier:
		val, err := FindSymbol(ctx, v.Name, v.Loc)
		if err != nil {
			return nil, err
		}
		return val.Type(), nil

	case *ast.Negation:
		inner, err := EvaluateType(ctx, v.Inner)
		if err != nil {
			return nil, err
		}
		if inner != nil && !inner.IsSigned {
			return nil, vslerr.New(vslerr.UnsignedType, v.Loc, "cannot negate an unsigned value")
		}
		return inner, nil

	case *ast.TypeCast:
		t, ok := types.Lookup(v.TargetTypeExpr.Name)
		if !ok {
			return nil, vslerr.New(vslerr.UnknownIdentifier, v.TargetTypeExpr.Loc, "unknown type %q", v.TargetTypeExpr.Name)
		}
		return t, nil

	case *ast.Binary:
		left, err := EvaluateType(ctx, v.Left)
		if err != nil {
			return nil, err
		}
		right, err := EvaluateType(ctx, v.Right)
		if err != nil {
			return nil, err
		}
		switch {
		case left != nil && right != nil:
			if left.IsSigned != right.IsSigned {
				return nil, vslerr.New(vslerr.InvalidTypeCast, v.Loc, "operand signedness mismatch")
			}
			if right.SizeBytes > left.SizeBytes {
				return right, nil
			}
			return left, nil
		case left != nil:
			return left, nil
		case right != nil:
			return right, nil
		default:
			return nil, nil
		}

	case *ast.FunctionCall:
		sig, err := calleeSignature(ctx, v.Callee)
		if err != nil {
			return nil, err
		}
		return sig.ReturnType, nil

	default:
		return nil, vslerr.New(vslerr.UnexpectedSyntaxNode, n.Location(), "unexpected expression node %T", n)
	}
}
