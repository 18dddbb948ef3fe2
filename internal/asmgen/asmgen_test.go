package asmgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"vslc32/internal/loc"
	"vslc32/internal/types"
	"vslc32/internal/value"
)

var nowhere = loc.Location{File: "test.vsl"}

func TestFormatOperand_Integer(t *testing.T) {
	got, err := FormatOperand(&value.Integer{Literal: -7}, nowhere)
	require.NoError(t, err)
	require.Equal(t, "-7", got)
}

func TestFormatOperand_RegisterUsesValueWidth(t *testing.T) {
	got, err := FormatOperand(&value.Register{ID: 0, Typ: types.I32}, nowhere)
	require.NoError(t, err)
	require.Equal(t, "eax", got)

	got, err = FormatOperand(&value.Register{ID: 0, Typ: types.I8}, nowhere)
	require.NoError(t, err)
	require.Equal(t, "al", got)
}

func TestFormatOperand_SymbolVariants(t *testing.T) {
	got, err := FormatOperand(&value.Symbol{Name: "_x", Typ: types.I32}, nowhere)
	require.NoError(t, err)
	require.Equal(t, "dword [_x]", got)

	got, err = FormatOperand(&value.Symbol{Name: "ebp", Offset: 8, Typ: types.I32}, nowhere)
	require.NoError(t, err)
	require.Equal(t, "dword [ebp+8]", got)

	got, err = FormatOperand(&value.Symbol{Name: "ebp", Offset: -4, Typ: types.I32}, nowhere)
	require.NoError(t, err)
	require.Equal(t, "dword [ebp-4]", got)
}

func TestFormatOperand_FunctionPointerRendersBareLabel(t *testing.T) {
	sym := &value.Symbol{Name: "_add", Func: &value.FuncSignature{ReturnType: types.I32}}
	got, err := FormatOperand(sym, nowhere)
	require.NoError(t, err)
	require.Equal(t, "_add", got)
}

func TestLink_ProducesPEBoilerplateAndIntrinsics(t *testing.T) {
	g := New()
	g.DataDecl("_x", "dd", "0")
	g.TextLine("_main:\n")
	g.Instr1("ret", "")

	out := g.Link()
	require.Contains(t, out, "format PE console")
	require.Contains(t, out, "entry start")
	require.Contains(t, out, "_x dd 0")
	require.Contains(t, out, "_read:")
	require.Contains(t, out, "_write:")
	require.Contains(t, out, "call _main")
	require.Contains(t, out, "import msvcrt")
}

func TestInsertFunctionCode_MovesScratchIntoTextAndClears(t *testing.T) {
	g := New()
	g.Instr1("nop", "")
	require.True(t, strings.Contains(g.code.String(), "nop"))
	g.InsertFunctionCode()
	require.Empty(t, g.code.String())
	require.Contains(t, g.text.String(), "nop")
}

func TestCanonicalize_FallsBackOnUnparseableListing(t *testing.T) {
	weird := "not valid plan9 asm {{{"
	require.Equal(t, weird, canonicalize(weird))
}
