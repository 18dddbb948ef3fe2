// Package ast defines the flat syntax tree produced by the parser: a
// tagged union of node variants, modelled here as a shared Node interface
// implemented by one concrete Go struct per variant. Consumers dispatch
// with an exhaustive type switch rather than virtual methods, keeping the
// tree itself free of compilation logic.
package ast

import "vslc32/internal/loc"

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Node is implemented by every syntax tree variant. Location returns where
// the construct begins in source, for diagnostics.
type Node interface {
	Location() loc.Location
}

// BinaryOp enumerates the arithmetic binary operators.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
)

// String renders the operator's source spelling.
func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	default:
		return "?"
	}
}

// Identifier is a bare name reference: a variable, function, or type.
type Identifier struct {
	Loc  loc.Location
	Name string
}

// Integer is an integer literal.
type Integer struct {
	Loc   loc.Location
	Value int64
}

// Negation is unary minus applied to Inner.
type Negation struct {
	Loc   loc.Location
	Inner Node
}

// TypeCast is an explicit `inner:type` cast.
type TypeCast struct {
	Loc            loc.Location
	Inner          Node
	TargetTypeExpr *Identifier
}

// Binary is a binary arithmetic expression.
type Binary struct {
	Loc   loc.Location
	Op    BinaryOp
	Left  Node
	Right Node
}

// FunctionCall is a call expression `callee(args...)`.
type FunctionCall struct {
	Loc    loc.Location
	Callee Node
	Args   []Node
}

// Assignment is `lhs = rhs;`.
type Assignment struct {
	Loc loc.Location
	LHS Node
	RHS Node
}

// Return is `return;` (Inner == nil) or `return expr;`.
type Return struct {
	Loc   loc.Location
	Inner Node
}

// VariableDeclaration is a top-level `type name = initializer;`.
type VariableDeclaration struct {
	Loc         loc.Location
	TypeExpr    *Identifier
	Name        string
	Initializer Node
}

// FunctionArgumentDeclaration is one `type name` entry in a function's
// parameter list.
type FunctionArgumentDeclaration struct {
	Loc      loc.Location
	TypeExpr *Identifier
	Name     string
}

// FunctionDeclaration is a top-level function definition. ReturnTypeExpr is
// nil for an omitted (void) return type.
type FunctionDeclaration struct {
	Loc            loc.Location
	ReturnTypeExpr *Identifier
	Name           string
	Args           []*FunctionArgumentDeclaration
	Body           []Node
}

// ---------------------
// ----- functions -----
// ---------------------

func (n *Identifier) Location() loc.Location                  { return n.Loc }
func (n *Integer) Location() loc.Location                     { return n.Loc }
func (n *Negation) Location() loc.Location                    { return n.Loc }
func (n *TypeCast) Location() loc.Location                    { return n.Loc }
func (n *Binary) Location() loc.Location                      { return n.Loc }
func (n *FunctionCall) Location() loc.Location                { return n.Loc }
func (n *Assignment) Location() loc.Location                  { return n.Loc }
func (n *Return) Location() loc.Location                      { return n.Loc }
func (n *VariableDeclaration) Location() loc.Location         { return n.Loc }
func (n *FunctionArgumentDeclaration) Location() loc.Location { return n.Loc }
func (n *FunctionDeclaration) Location() loc.Location         { return n.Loc }
