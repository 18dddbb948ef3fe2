package symtab

import (
	"testing"

	"github.com/stretchr/testify/require"

	"vslc32/internal/loc"
	"vslc32/internal/types"
)

var nowhere = loc.Location{File: "test.vsl"}

func TestNew_PreRegistersIntrinsics(t *testing.T) {
	tab := New()
	read, ok := tab.LookupFunction("_read")
	require.True(t, ok)
	require.True(t, read.Intrinsic)
	require.Equal(t, types.I32, read.ReturnType)

	write, ok := tab.LookupFunction("_write")
	require.True(t, ok)
	require.True(t, write.Intrinsic)
	require.Len(t, write.Args, 1)

	require.Empty(t, tab.UserFunctions(), "intrinsics must not appear among user functions")
}

func TestRegisterVariable_DuplicateFails(t *testing.T) {
	tab := New()
	require.NoError(t, tab.RegisterVariable(nowhere, types.I32, "x", "0"))
	err := tab.RegisterVariable(nowhere, types.I32, "x", "1")
	require.Error(t, err)
}

func TestRegisterFunction_CollidesWithGlobal(t *testing.T) {
	tab := New()
	require.NoError(t, tab.RegisterVariable(nowhere, types.I32, "x", "0"))
	err := tab.RegisterFunction(nowhere, nil, "x", nil, nil)
	require.Error(t, err)
}

func TestMangle_PrefixesUnderscore(t *testing.T) {
	require.Equal(t, "_foo", Mangle("foo"))
}

func TestGlobals_PreservesInsertionOrder(t *testing.T) {
	tab := New()
	require.NoError(t, tab.RegisterVariable(nowhere, types.I32, "b", "0"))
	require.NoError(t, tab.RegisterVariable(nowhere, types.I32, "a", "0"))
	got := tab.Globals()
	require.Len(t, got, 2)
	require.Equal(t, "_b", got[0].Symbol)
	require.Equal(t, "_a", got[1].Symbol)
}

func TestUserFunctions_ExcludesIntrinsicsAndPreservesOrder(t *testing.T) {
	tab := New()
	require.NoError(t, tab.RegisterFunction(nowhere, types.I32, "second", nil, nil))
	require.NoError(t, tab.RegisterFunction(nowhere, nil, "first", nil, nil))
	got := tab.UserFunctions()
	require.Len(t, got, 2)
	require.Equal(t, "_second", got[0].Symbol)
	require.Equal(t, "_first", got[1].Symbol)
}

func TestLookupGlobal_UnknownFails(t *testing.T) {
	tab := New()
	_, ok := tab.LookupGlobal("missing")
	require.False(t, ok)
}
