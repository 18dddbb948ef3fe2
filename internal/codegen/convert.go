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

// ConvertInteger reinterprets a constant under target's type. Changing
// signedness of a negative literal always fails. A value outside target's
// range fails unless explicit, in which case it is masked to target's width
// and, for a signed target, re-interpreted as two's complement.
func ConvertInteger(v *value.Integer, target *types.Type, explicit bool, at loc.Location) (*value.Integer, error) {
	if v.Typ != nil && v.Typ.IsSigned != target.IsSigned && v.Literal < 0 {
		return nil, vslerr.New(vslerr.InvalidTypeCast, at, "cannot change type's signedness")
	}

	lit := v.Literal
	if lit < target.Min() || lit > target.Max() {
		if !explicit {
			return nil, vslerr.New(vslerr.InvalidTypeCast, at, "possible value loss")
		}
		masked := lit & target.Mask()
		if target.IsSigned && masked > target.Max() {
			masked -= 2*target.Max() + 2
		}
		lit = masked
	}
	return &value.Integer{Typ: target, Literal: lit}, nil
}

// identical reports whether a and b are the very same register allocation
// (not merely the same id), the case GenerateMov must leave untouched since
// freeing it would release a value the caller is still holding onto.
func identical(a, b value.Value) bool {
	ra, ok1 := a.(*value.Register)
	rb, ok2 := b.(*value.Register)
	return ok1 && ok2 && ra == rb
}

// GenerateMov emits the instructions that copy src into dst, a register or
// memory location never itself an Integer. An Integer source is
// materialized directly as an immediate operand via ConvertInteger. A known
// source type is checked against dst's type unless explicit. Identical
// source and destination locations elide the move entirely; src is freed
// once its value has been transferred, unless src and dst are the same
// allocation.
func GenerateMov(mgr *regfile.Manager, gen *asmgen.Generator, dst, src value.Value, explicit bool, at loc.Location) error {
	dstType := value.StrongType(dst)

	if lit, ok := src.(*value.Integer); ok {
		converted, err := ConvertInteger(lit, dstType, explicit, at)
		if err != nil {
			return err
		}
		dstOperand, err := asmgen.FormatOperand(dst, at)
		if err != nil {
			return err
		}
		gen.Instr2("mov", dstOperand, xtoa.ItoA(converted.Literal))
		return nil
	}

	srcType := value.StrongType(src)
	if !explicit {
		if srcType.IsSigned != dstType.IsSigned {
			return vslerr.New(vslerr.InvalidTypeCast, at, "cannot change type's signedness")
		}
		if dstType.SizeBytes < srcType.SizeBytes {
			return vslerr.New(vslerr.InvalidTypeCast, at, "possible value loss")
		}
	}

	if identical(dst, src) {
		return nil
	}
	if value.SameLocation(dst, src) {
		mgr.FreeRegister(src)
		return nil
	}

	workingSrc := src
	var scratch *value.Register
	if _, dstIsMem := dst.(*value.Symbol); dstIsMem {
		if _, srcIsMem := src.(*value.Symbol); srcIsMem {
			reg, err := mgr.AllocateRegister(at, srcType)
			if err != nil {
				return err
			}
			srcOperand, err := asmgen.FormatOperand(src, at)
			if err != nil {
				return err
			}
			regOperand, err := asmgen.FormatOperand(reg, at)
			if err != nil {
				return err
			}
			gen.Instr2("mov", regOperand, srcOperand)
			scratch = reg
			workingSrc = reg
		}
	}

	if err := emitSizedMove(gen, dst, workingSrc, dstType, at); err != nil {
		return err
	}

	if scratch != nil {
		mgr.FreeRegister(scratch)
	} else {
		mgr.FreeRegister(src)
	}
	return nil
}

// emitSizedMove emits the single instruction that copies src into dst once
// both are known to be distinct, non-immediate locations: a plain mov when
// the widths match, a movsx/movzx when dst is wider, or a mov against src
// reinterpreted at dst's (narrower) width otherwise.
func emitSizedMove(gen *asmgen.Generator, dst, src value.Value, dstType *types.Type, at loc.Location) error {
	srcType := value.StrongType(src)

	dstOperand, err := asmgen.FormatOperand(dst, at)
	if err != nil {
		return err
	}

	switch {
	case dstType.SizeBytes == srcType.SizeBytes:
		srcOperand, err := asmgen.FormatOperand(src, at)
		if err != nil {
			return err
		}
		gen.Instr2("mov", dstOperand, srcOperand)

	case dstType.SizeBytes > srcType.SizeBytes:
		srcOperand, err := asmgen.FormatOperand(src, at)
		if err != nil {
			return err
		}
		op := "movzx"
		if srcType.IsSigned {
			op = "movsx"
		}
		gen.Instr2(op, dstOperand, srcOperand)

	default:
		narrowed, err := reinterpretAtWidth(src, dstType, at)
		if err != nil {
			return err
		}
		narrowedOperand, err := asmgen.FormatOperand(narrowed, at)
		if err != nil {
			return err
		}
		gen.Instr2("mov", dstOperand, narrowedOperand)
	}
	return nil
}

// reinterpretAtWidth returns v's same storage viewed at a different width,
// without allocating a new location.
func reinterpretAtWidth(v value.Value, target *types.Type, at loc.Location) (value.Value, error) {
	switch t := v.(type) {
	case *value.Register:
		return &value.Register{ID: t.ID, Typ: target}, nil
	case *value.Symbol:
		return &value.Symbol{Name: t.Name, Offset: t.Offset, Typ: target, Func: t.Func}, nil
	default:
		return nil, vslerr.New(vslerr.UnexpectedSyntaxNode, at, "cannot reinterpret %T at a new width", v)
	}
}
