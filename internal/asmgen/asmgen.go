// Package asmgen is the assembly generator: an append-only builder with a
// data segment, a text segment and a per-function scratch code buffer, plus
// the operand formatting rules shared by every instruction the code
// generator emits.
package asmgen

import (
	"fmt"
	"strings"

	"github.com/klauspost/asmfmt"

	"vslc32/internal/loc"
	"vslc32/internal/regfile"
	"vslc32/internal/value"
	"vslc32/internal/vslerr"
	"vslc32/internal/xtoa"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Generator accumulates the output listing across a single compilation.
// It must not be shared across concurrent compilations.
type Generator struct {
	data strings.Builder
	text strings.Builder
	code strings.Builder // Scratch buffer for the function currently being compiled.
}

// ---------------------
// ----- Constants -----
// ---------------------

const scanfFormatSymbol = "scanf_format"
const printfFormatSymbol = "printf_format"

// ---------------------
// ----- functions -----
// ---------------------

// New returns an empty Generator.
func New() *Generator {
	return &Generator{}
}

// DataDecl appends one global variable's declaration line to the data
// segment.
func (g *Generator) DataDecl(symbol, directive, valueText string) {
	fmt.Fprintf(&g.data, "  %s %s %s\n", symbol, directive, valueText)
}

// Code appends a formatted line to the current function's scratch buffer.
// Every statement the code generator compiles is emitted here.
func (g *Generator) Code(format string, args ...interface{}) {
	fmt.Fprintf(&g.code, format, args...)
}

// Instr1 appends a one-operand instruction to the code buffer, e.g.
// "neg eax" or "call _main".
func (g *Generator) Instr1(op, operand string) {
	g.Code("\t%s %s\n", op, operand)
}

// Instr2 appends a two-operand instruction to the code buffer, e.g.
// "mov eax, 2".
func (g *Generator) Instr2(op, dst, src string) {
	g.Code("\t%s %s, %s\n", op, dst, src)
}

// Jump appends an unconditional jump to label.
func (g *Generator) Jump(label string) {
	g.Instr1("jmp", label)
}

// ResetCode clears the per-function scratch buffer, at the start of a new
// function.
func (g *Generator) ResetCode() {
	g.code.Reset()
}

// InsertFunctionCode splices the accumulated scratch buffer into the text
// segment, then clears it, implementing the generator's documented
// insert-between-prologue-and-epilogue step.
func (g *Generator) InsertFunctionCode() {
	g.text.WriteString(g.code.String())
	g.code.Reset()
}

// TextLine appends a formatted line directly to the text segment, used by
// the driver for function labels, prologues and epilogues.
func (g *Generator) TextLine(format string, args ...interface{}) {
	fmt.Fprintf(&g.text, format, args...)
}

// Label appends "name:\n" to the text segment.
func (g *Generator) Label(name string) {
	g.TextLine("%s:\n", name)
}

// FormatOperand renders v as a FASM operand: an Integer as decimal, a
// Register as its name at the value's current width, and a Symbol as
// "<width> [<name>(+/-offset)?]" -- except a function-pointer Symbol,
// which renders as its bare label, since it is only ever used as a call
// target.
func FormatOperand(v value.Value, at loc.Location) (string, error) {
	switch t := v.(type) {
	case *value.Integer:
		return xtoa.ItoA(t.Literal), nil

	case *value.Register:
		size := 4
		if t.Typ != nil {
			size = t.Typ.SizeBytes
		}
		return regfile.Name(t.ID, size, at)

	case *value.Symbol:
		if t.Func != nil {
			return t.Name, nil
		}
		width := "dword"
		if t.Typ != nil {
			width = t.Typ.AsmWidth()
		}
		switch {
		case t.Offset == 0:
			return fmt.Sprintf("%s [%s]", width, t.Name), nil
		case t.Offset > 0:
			return fmt.Sprintf("%s [%s+%d]", width, t.Name, t.Offset), nil
		default:
			return fmt.Sprintf("%s [%s%d]", width, t.Name, t.Offset), nil
		}

	default:
		return "", vslerr.New(vslerr.UnexpectedSyntaxNode, at, "unknown value variant %T", v)
	}
}

// Link assembles the data and text segments, the hand-written _read/_write
// intrinsic bodies, and the fixed FASM/PE boilerplate into the final
// listing.
func (g *Generator) Link() string {
	var out strings.Builder

	out.WriteString("format PE console\n")
	out.WriteString("entry start\n\n")
	out.WriteString("include 'win32a.inc'\n\n")

	out.WriteString("section '.data' data readable writeable\n")
	out.WriteString(g.data.String())
	out.WriteString(fmt.Sprintf("  %s db \"%%d\", 0\n", scanfFormatSymbol))
	out.WriteString(fmt.Sprintf("  %s db \"%%d\", 10, 0\n", printfFormatSymbol))
	out.WriteString("\n")

	out.WriteString("section '.text' code readable executable\n")
	out.WriteString("start:\n")
	out.WriteString("\tcall _main\n")
	out.WriteString("\tpush eax\n")
	out.WriteString("\tcall [ExitProcess]\n\n")

	out.WriteString(g.text.String())
	out.WriteString("\n")

	out.WriteString(readIntrinsic())
	out.WriteString(writeIntrinsic())

	out.WriteString("\nsection '.idata' import data readable\n")
	out.WriteString("  library kernel32,'KERNEL32.DLL', msvcrt,'MSVCRT.DLL'\n")
	out.WriteString("  import kernel32, ExitProcess,'ExitProcess'\n")
	out.WriteString("  import msvcrt, scanf,'scanf', printf,'printf'\n")

	return canonicalize(out.String())
}

// readIntrinsic returns the hand-written body of _read: call scanf into a
// stack slot and return its value in eax.
func readIntrinsic() string {
	var b strings.Builder
	b.WriteString("_read:\n")
	b.WriteString("\tpush ebp\n")
	b.WriteString("\tmov ebp, esp\n")
	b.WriteString("\tsub esp, 4\n")
	b.WriteString("\tlea eax, [esp]\n")
	b.WriteString("\tpush eax\n")
	b.WriteString(fmt.Sprintf("\tpush %s\n", scanfFormatSymbol))
	b.WriteString("\tcall [scanf]\n")
	b.WriteString("\tadd esp, 8\n")
	b.WriteString("\tmov eax, [esp]\n")
	b.WriteString("\tleave\n")
	b.WriteString("\tret\n\n")
	return b.String()
}

// writeIntrinsic returns the hand-written body of _write: call printf with
// the single 32-bit argument at [ebp+8].
func writeIntrinsic() string {
	var b strings.Builder
	b.WriteString("_write:\n")
	b.WriteString("\tpush ebp\n")
	b.WriteString("\tmov ebp, esp\n")
	b.WriteString("\tmov eax, [ebp+8]\n")
	b.WriteString("\tpush eax\n")
	b.WriteString(fmt.Sprintf("\tpush %s\n", printfFormatSymbol))
	b.WriteString("\tcall [printf]\n")
	b.WriteString("\tadd esp, 8\n")
	b.WriteString("\tleave\n")
	b.WriteString("\tret\n\n")
	return b.String()
}

// canonicalize best-effort realigns instruction columns with asmfmt, the
// pack's assembly-formatting library. asmfmt targets Go's plan9 assembler
// dialect, not FASM, so a listing it cannot tokenize is passed through
// unchanged rather than failing the compile over a cosmetic pass.
func canonicalize(listing string) string {
	formatted, err := asmfmt.Format(strings.NewReader(listing))
	if err != nil {
		return listing
	}
	return string(formatted)
}
