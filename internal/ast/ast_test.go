package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinOpTypeEval(t *testing.T) {
	i32vec := VectorType(3, I32)
	u32 := ScalarType(U32)

	assert.True(t, Plus.TypeEval(i32vec, i32vec).Equal(i32vec))
	assert.True(t, Equal.TypeEval(i32vec, u32).Equal(VectorType(3, Bool)))
	assert.True(t, LogAnd.TypeEval(ScalarType(Bool), ScalarType(Bool)).Equal(ScalarType(Bool)))
}

func TestUnOpAddressOfDeref(t *testing.T) {
	view := NewMemoryView(ScalarType(F32), Function)
	ref := RefType(view)
	ptr := AddressOf.TypeEval(ref)
	require.Equal(t, KindPtr, ptr.Kind)

	back := Deref.TypeEval(ptr)
	require.Equal(t, KindRef, back.Kind)
	assert.True(t, back.Equal(ref))
}

func TestDereference(t *testing.T) {
	view := NewMemoryView(ScalarType(I32), Private)
	ref := RefType(view)
	assert.True(t, ref.Dereference().Equal(ScalarType(I32)))

	// A non-ref type dereferences to itself.
	assert.True(t, ScalarType(I32).Dereference().Equal(ScalarType(I32)))
}

func TestStructAccessorMap(t *testing.T) {
	inner := NewStructDecl("Inner", []StructMember{
		{Name: "v", Type: VectorType(4, F32)},
	})

	outer := NewStructDecl("Outer", []StructMember{
		{Name: "a", Type: ScalarType(I32)},
		{Name: "b", Type: VectorType(3, F32)},
		{Name: "c", Type: StructType(inner)},
	})

	// Direct scalar member.
	require.Len(t, outer.AccessorsOf(ScalarType(I32)), 1)
	assert.Equal(t, "a", outer.AccessorsOf(ScalarType(I32))[0].Name)

	// The vector component type is reachable through "b" and, recursively,
	// through "c" -> Inner.v.
	members := outer.AccessorsOf(ScalarType(F32))
	require.Len(t, members, 2)
	assert.Equal(t, "b", members[0].Name)

	// Sub-vector swizzles of "b" (vec3f yields vec2f) and of Inner.v via "c".
	require.Len(t, outer.AccessorsOf(VectorType(2, F32)), 2)

	// vec4f is only reachable recursively through "c" -> Inner.v.
	require.Len(t, outer.AccessorsOf(VectorType(4, F32)), 1)
	assert.Equal(t, "c", outer.AccessorsOf(VectorType(4, F32))[0].Name)
}

func TestDataTypeString(t *testing.T) {
	assert.Equal(t, "vec3<f32>", VectorType(3, F32).String())
	length := uint32(8)
	assert.Equal(t, "array<i32, 8>", ArrayType(ScalarType(I32), &length).String())
	assert.Equal(t, "array<i32>", ArrayType(ScalarType(I32), nil).String())
}
