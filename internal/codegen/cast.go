package codegen

import (
	"vslc32/internal/asmgen"
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

// GenerateTypeCast converts v to target, emitting whatever instructions the
// conversion needs (none for a constant or a same-location narrowing, one
// movsx/movzx or and for a widening, none for same-size retagging). explicit
// distinguishes a source-level `:type` cast from an implicit context (an
// assignment or argument binding), which rejects narrowing and signedness
// changes.
func GenerateTypeCast(mgr *regfile.Manager, gen *asmgen.Generator, v value.Value, target *types.Type, explicit bool, at loc.Location) (value.Value, error) {
	if lit, ok := v.(*value.Integer); ok {
		return ConvertInteger(lit, target, explicit, at)
	}

	srcType := value.StrongType(v)
	if srcType.Equal(target) {
		return v, nil
	}

	if srcType.IsSigned != target.IsSigned && !explicit {
		return nil, vslerr.New(vslerr.InvalidTypeCast, at, "cannot change type's signedness")
	}

	switch {
	case srcType.SizeBytes > target.SizeBytes:
		if !explicit {
			return nil, vslerr.New(vslerr.InvalidTypeCast, at, "possible value loss")
		}
		return reinterpretAtWidth(v, target, at)

	case srcType.SizeBytes < target.SizeBytes:
		return widen(mgr, gen, v, srcType, target, at)

	default:
		return reinterpretAtWidth(v, target, at)
	}
}

// widen extends v, currently srcType, up to target, either in place (for a
// register, via movsx or a masking and) or into a freshly allocated
// register (for memory, via movsx/movzx).
func widen(mgr *regfile.Manager, gen *asmgen.Generator, v value.Value, srcType, target *types.Type, at loc.Location) (value.Value, error) {
	switch t := v.(type) {
	case *value.Register:
		wide := &value.Register{ID: t.ID, Typ: target}
		wideOperand, err := asmgen.FormatOperand(wide, at)
		if err != nil {
			return nil, err
		}
		if target.IsSigned {
			narrow := &value.Register{ID: t.ID, Typ: srcType}
			narrowOperand, err := asmgen.FormatOperand(narrow, at)
			if err != nil {
				return nil, err
			}
			gen.Instr2("movsx", wideOperand, narrowOperand)
		} else {
			gen.Instr2("and", wideOperand, xtoa.ItoA(srcType.Mask()))
		}
		return wide, nil

	case *value.Symbol:
		reg, err := mgr.AllocateRegister(at, target)
		if err != nil {
			return nil, err
		}
		regOperand, err := asmgen.FormatOperand(reg, at)
		if err != nil {
			return nil, err
		}
		srcOperand, err := asmgen.FormatOperand(v, at)
		if err != nil {
			return nil, err
		}
		op := "movzx"
		if srcType.IsSigned {
			op = "movsx"
		}
		gen.Instr2(op, regOperand, srcOperand)
		return reg, nil

	default:
		return nil, vslerr.New(vslerr.InvalidTypeCast, at, "cannot widen value of type %T", v)
	}
}
