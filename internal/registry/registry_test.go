package registry

import (
	"testing"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostShareableExcludesBool(t *testing.T) {
	assert.False(t, HostShareable(ast.ScalarType(ast.Bool)))
	assert.True(t, HostShareable(ast.ScalarType(ast.I32)))
	assert.True(t, HostShareable(ast.VectorType(3, ast.F32)))
}

func TestHostShareableStruct(t *testing.T) {
	clean := ast.NewStructDecl("Clean", []ast.StructMember{{Name: "x", Type: ast.ScalarType(ast.I32)}})
	dirty := ast.NewStructDecl("Dirty", []ast.StructMember{{Name: "b", Type: ast.ScalarType(ast.Bool)}})

	assert.True(t, HostShareable(ast.StructType(clean)))
	assert.False(t, HostShareable(ast.StructType(dirty)))
}

func TestTypeRegistrySelectStruct(t *testing.T) {
	reg := NewTypeRegistry()
	clean := ast.NewStructDecl("Clean", []ast.StructMember{{Name: "x", Type: ast.ScalarType(ast.I32)}})
	dirty := ast.NewStructDecl("Dirty", []ast.StructMember{{Name: "b", Type: ast.ScalarType(ast.Bool)}})
	reg.RegisterStruct(clean)
	reg.RegisterStruct(dirty)

	require.Len(t, reg.Structs(), 2)
	require.Len(t, reg.SelectStruct(HostShareable), 1)
	assert.Equal(t, "Clean", reg.SelectStruct(HostShareable)[0].Name)
}

func TestFnRegistryNextNameIsMonotonic(t *testing.T) {
	reg := NewFnRegistry(nil)
	assert.Equal(t, "func_0", reg.NextName())
	assert.Equal(t, "func_1", reg.NextName())
}

func TestFnRegistryInsertAndLookup(t *testing.T) {
	reg := NewFnRegistry(nil)
	retTy := ast.ScalarType(ast.I32)
	reg.Insert(Sig{Name: "func_0", Params: nil, ReturnType: &retTy}, ast.FnDecl{Name: "func_0", ReturnType: &retTy})

	sigs := reg.UserSigsReturning(retTy)
	require.Len(t, sigs, 1)
	assert.Equal(t, "func_0", sigs[0].Name)
	assert.EqualValues(t, 1, reg.Count())
	require.Len(t, reg.Impls(), 1)
}

func TestFnRegistryBuiltinsReturning(t *testing.T) {
	reg := NewFnRegistry(nil)
	overloads := reg.BuiltinsReturning(ast.ScalarType(ast.Bool))
	assert.NotEmpty(t, overloads)
}
