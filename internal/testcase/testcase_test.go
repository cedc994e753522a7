package testcase

import (
	"math/rand"
	"testing"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storageVar(name string, group, binding int32, ty ast.DataType) ast.GlobalVarDecl {
	g, b := group, binding
	return ast.GlobalVarDecl{
		Attr:      ast.GlobalVarAttr{Group: &g, Binding: &b},
		Qualifier: &ast.VarQualifier{StorageClass: ast.Storage},
		Name:      name,
		Type:      ty,
	}
}

func TestBuildMetadataSkipsNonResourceVars(t *testing.T) {
	m := &ast.Module{
		Vars: []ast.GlobalVarDecl{
			{Name: "priv", Qualifier: &ast.VarQualifier{StorageClass: ast.Private}, Type: ast.ScalarType(ast.I32)},
			storageVar("buf", 0, 1, ast.ScalarType(ast.U32)),
		},
	}

	md := BuildMetadata(m)

	require.Len(t, md.Resources, 1)
	assert.Equal(t, KindStorage, md.Resources[0].Kind)
	assert.Equal(t, int32(0), md.Resources[0].Group)
	assert.Equal(t, int32(1), md.Resources[0].Binding)
	assert.Equal(t, uint32(4), md.Resources[0].Size)
}

func TestBuildMetadataComputesStructAndArraySizes(t *testing.T) {
	structDecl := ast.NewStructDecl("Particle", []ast.StructMember{
		{Name: "pos", Type: ast.VectorType(3, ast.F32)},
		{Name: "mass", Type: ast.ScalarType(ast.F32)},
	})
	length := uint32(4)
	arrTy := ast.ArrayType(ast.StructType(structDecl), &length)

	m := &ast.Module{
		Vars: []ast.GlobalVarDecl{
			storageVar("particles", 0, 0, arrTy),
		},
	}

	md := BuildMetadata(m)

	require.Len(t, md.Resources, 1)
	// vec3<f32> rounds up to 16 bytes under std430, plus 4 for mass: 20/struct.
	assert.Equal(t, uint32(20*4), md.Resources[0].Size)
}

func TestGenInputsProducesCorrectlySizedBuffers(t *testing.T) {
	md := ShaderMetadata{Resources: []Resource{
		{Kind: KindUniform, Group: 0, Binding: 0, Size: 16},
		{Kind: KindStorage, Group: 0, Binding: 1, Size: 8},
	}}

	rng := rand.New(rand.NewSource(1))
	inputs := GenInputs(rng, md)

	require.Len(t, inputs, 2)
	assert.Len(t, inputs["0:0"], 16)
	assert.Len(t, inputs["0:1"], 8)
}

func TestGenInputsIsDeterministicForFixedSeed(t *testing.T) {
	md := ShaderMetadata{Resources: []Resource{{Kind: KindStorage, Group: 1, Binding: 2, Size: 12}}}

	a := GenInputs(rand.New(rand.NewSource(42)), md)
	b := GenInputs(rand.New(rand.NewSource(42)), md)

	assert.Equal(t, a, b)
}

func TestMarshalInputsKeepsGroupBindingKey(t *testing.T) {
	inputs := map[string][]byte{"0:0": {1, 2, 3}}

	data, err := MarshalInputs(inputs)

	require.NoError(t, err)
	assert.Contains(t, string(data), "0:0")
}
