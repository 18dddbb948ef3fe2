package codegen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vslc32/internal/asmgen"
	"vslc32/internal/regfile"
	"vslc32/internal/types"
	"vslc32/internal/value"
)

func TestGenerateTypeCast_SameSizeRetagsWithoutInstructions(t *testing.T) {
	mgr := regfile.New()
	gen := asmgen.New()
	reg, err := mgr.AllocateRegister(nowhere, types.I32)
	require.NoError(t, err)

	out, err := GenerateTypeCast(mgr, gen, reg, types.I32, false, nowhere)
	require.NoError(t, err)
	require.Same(t, reg, out.(*value.Register))
}

func TestGenerateTypeCast_ImplicitNarrowingFails(t *testing.T) {
	mgr := regfile.New()
	gen := asmgen.New()
	reg, err := mgr.AllocateRegister(nowhere, types.I32)
	require.NoError(t, err)

	_, err = GenerateTypeCast(mgr, gen, reg, types.I8, false, nowhere)
	require.Error(t, err)
}

func TestGenerateTypeCast_ExplicitNarrowingReinterprets(t *testing.T) {
	mgr := regfile.New()
	gen := asmgen.New()
	reg, err := mgr.AllocateRegister(nowhere, types.I32)
	require.NoError(t, err)

	out, err := GenerateTypeCast(mgr, gen, reg, types.I8, true, nowhere)
	require.NoError(t, err)
	require.Equal(t, types.I8, out.Type())
	require.Equal(t, reg.ID, out.(*value.Register).ID, "narrowing reinterprets the same storage")
}

func TestGenerateTypeCast_WideningSignedRegisterUsesMovsx(t *testing.T) {
	mgr := regfile.New()
	gen := asmgen.New()
	reg, err := mgr.AllocateRegister(nowhere, types.I8)
	require.NoError(t, err)

	out, err := GenerateTypeCast(mgr, gen, reg, types.I32, true, nowhere)
	require.NoError(t, err)
	require.Equal(t, types.I32, out.Type())
}

func TestGenerateTypeCast_WideningUnsignedRegisterUsesMask(t *testing.T) {
	mgr := regfile.New()
	gen := asmgen.New()
	reg, err := mgr.AllocateRegister(nowhere, types.U8)
	require.NoError(t, err)

	out, err := GenerateTypeCast(mgr, gen, reg, types.U32, true, nowhere)
	require.NoError(t, err)
	require.Equal(t, types.U32, out.Type())
}

func TestGenerateTypeCast_WideningMemoryAllocatesFreshRegister(t *testing.T) {
	mgr := regfile.New()
	gen := asmgen.New()
	sym := &value.Symbol{Typ: types.I8, Name: "_x"}

	out, err := GenerateTypeCast(mgr, gen, sym, types.I32, true, nowhere)
	require.NoError(t, err)
	_, ok := out.(*value.Register)
	require.True(t, ok)
	require.Equal(t, 1, mgr.LiveCount())
}

func TestGenerateTypeCast_ConstantFoldsThroughConvertInteger(t *testing.T) {
	mgr := regfile.New()
	gen := asmgen.New()
	lit := &value.Integer{Typ: types.I32, Literal: 5}

	out, err := GenerateTypeCast(mgr, gen, lit, types.I8, false, nowhere)
	require.NoError(t, err)
	require.Equal(t, int64(5), out.(*value.Integer).Literal)
}
