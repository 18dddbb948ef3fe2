package codegen

import (
	"vslc32/internal/ast"
	"vslc32/internal/loc"
	"vslc32/internal/regfile"
	"vslc32/internal/types"
	"vslc32/internal/value"
	"vslc32/internal/vslerr"
	"vslc32/internal/xtoa"
)

// ---------------------
// ----- functions -----
// ---------------------

// compileCall implements the cdecl call sequence: the frame is widened by
// one slot per argument up front (sub esp, 4N), each argument is stored
// into its slot in declaration order, the return register is reserved if a
// value is required, the call is emitted, and the caller-owned frame is
// torn back down.
func compileCall(ctx *Context, n *ast.FunctionCall, needValue bool) (value.Value, error) {
	calleeVal, err := CompileValue(ctx, n.Callee, nil)
	if err != nil {
		return nil, err
	}
	callee, ok := calleeVal.(*value.Symbol)
	if !ok || callee.Func == nil {
		return nil, vslerr.New(vslerr.NotCallableType, n.Loc, "callee is not callable")
	}
	if len(n.Args) != len(callee.Func.Args) {
		return nil, vslerr.New(vslerr.NotCallableType, n.Loc, "%q expects %d argument(s), got %d", callee.Name, len(callee.Func.Args), len(n.Args))
	}

	frameSize := 4 * len(n.Args)
	if frameSize > 0 {
		ctx.Gen.Instr2("sub", "esp", xtoa.ItoA(int64(frameSize)))
	}

	for i, argExpr := range n.Args {
		dst := &value.Symbol{Typ: callee.Func.Args[i], Name: "esp", Offset: 4 * i}
		if err := GenerateAssignment(ctx, dst, argExpr); err != nil {
			return nil, err
		}
	}

	var result *value.Register
	if needValue {
		if callee.Func.ReturnType == nil {
			return nil, vslerr.New(vslerr.NoReturnValue, n.Loc, "%q does not return a value", callee.Name)
		}
		// The reservation returned here is left live on purpose: this call is
		// not a terminal statement, so its result is an expression value the
		// caller (compileReturn, a binary operand, an argument slot, ...) is
		// responsible for consuming and eventually freeing.
		result, err = moveToReturnRegister(ctx, nil, callee.Func.ReturnType, n.Loc)
		if err != nil {
			return nil, err
		}
	}

	ctx.Gen.Instr1("call", callee.Name)
	if frameSize > 0 {
		ctx.Gen.Instr2("add", "esp", xtoa.ItoA(int64(frameSize)))
	}

	if needValue {
		return result, nil
	}
	return nil, nil
}

// moveToReturnRegister places val into the return register (eax) at typ,
// displacing whatever else currently occupies it first. When val already is
// the return register's allocation (the common case right after a nested
// call whose result is returned unchanged), nothing is emitted. val may be
// nil, to simply reserve eax ahead of a call about to produce the value
// itself.
func moveToReturnRegister(ctx *Context, val value.Value, typ *types.Type, at loc.Location) (*value.Register, error) {
	if r, ok := val.(*value.Register); ok && r.ID == regfile.ReturnRegisterID {
		return r, nil
	}

	newReg, displaced, err := ctx.Reg.RequireRegister(at, typ, regfile.ReturnRegisterID)
	if err != nil {
		return nil, err
	}
	if displaced >= 0 {
		dispName, err := regfile.Name(displaced, 4, at)
		if err != nil {
			return nil, err
		}
		eaxName, err := regfile.Name(regfile.ReturnRegisterID, 4, at)
		if err != nil {
			return nil, err
		}
		ctx.Gen.Instr2("mov", dispName, eaxName)
	}

	if val != nil {
		if err := GenerateMov(ctx.Reg, ctx.Gen, newReg, val, false, at); err != nil {
			return nil, err
		}
	}
	return newReg, nil
}
