// Package value defines the code generator's runtime vocabulary: the sum
// of locations a computed value can currently occupy. A Value is one of
// Integer (a compile-time constant, possibly still untyped), Symbol (a
// memory operand [symbol+offset]) or Register (an owned allocation in the
// register file).
package value

import "vslc32/internal/types"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Value is implemented by Integer, Symbol and Register.
type Value interface {
	// Type returns the value's type, or nil if it is an Integer whose type
	// has not yet been bound by a consumer.
	Type() *types.Type
}

// Integer is a compile-time constant. It is the only Value variant whose
// Typ may be nil: a literal's type is materialized lazily, at the first
// consumer that supplies a target (a declaration initializer, an
// assignment, an argument binding, or an explicit cast).
type Integer struct {
	Typ     *types.Type
	Literal int64
}

// Symbol is a memory operand `[Name + Offset]` (or `[Name]` when Offset is
// 0). Name is either an assembly label or a base register name ("ebp" for
// locals and arguments, "esp" for outgoing call arguments).
//
// When Func is non-nil, the Symbol denotes a function-pointer value (the
// internal type produced when an identifier resolves to a function, per
// the data model): Typ is nil in that case, since a callee has no integer
// type, and the assembly generator renders the bare label instead of a
// `[...]` memory operand.
type Symbol struct {
	Typ    *types.Type
	Name   string
	Offset int
	Func   *FuncSignature
}

// FuncSignature is the function-pointer type: the minimal shape of a
// FunctionInfo (package symtab) that the code generator needs in order to
// type-check a call, without value depending on the symtab package.
type FuncSignature struct {
	ReturnType *types.Type // nil means void.
	Args       []*types.Type
}

// Register is an owned allocation in the register file. The concrete
// register name is recovered by asking the register manager for ID at the
// value's current width, so that a width change (e.g. eax -> ax -> al) is
// purely a matter of re-formatting the same allocation, never a new one.
type Register struct {
	Typ *types.Type
	ID  int
}

// ---------------------
// ----- functions -----
// ---------------------

func (v *Integer) Type() *types.Type  { return v.Typ }
func (v *Symbol) Type() *types.Type   { return v.Typ }
func (v *Register) Type() *types.Type { return v.Typ }

// StrongType returns v's type, which must be non-nil: it is a programming
// error to call StrongType on an Integer whose type has not yet been
// bound. Call Type directly when the value may legitimately be an
// unresolved Integer.
func StrongType(v Value) *types.Type {
	t := v.Type()
	if t == nil {
		panic("value: StrongType called on a value with no resolved type")
	}
	return t
}

// SameLocation reports whether a and b denote the exact same storage: two
// Symbols alias iff (Name, Offset) are equal, two Registers alias iff
// their allocations resolve to the same register id regardless of width,
// and an Integer never aliases anything (it has no storage of its own).
func SameLocation(a, b Value) bool {
	switch av := a.(type) {
	case *Symbol:
		bv, ok := b.(*Symbol)
		return ok && av.Name == bv.Name && av.Offset == bv.Offset
	case *Register:
		bv, ok := b.(*Register)
		return ok && av.ID == bv.ID
	default:
		return false
	}
}
