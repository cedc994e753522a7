package scope

import (
	"testing"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextNameIsMonotonic(t *testing.T) {
	s := Empty()
	assert.Equal(t, "var_0", s.NextName())
	assert.Equal(t, "var_1", s.NextName())
}

func TestCloneIsIndependent(t *testing.T) {
	s := Empty()
	s.InsertLet("a", ast.ScalarType(ast.I32))

	clone := s.Clone()
	clone.InsertVar("b", ast.ScalarType(ast.U32))

	assert.Len(t, s.All(), 1)
	assert.Len(t, clone.All(), 2)
}

func TestOfTypeOrdersConstsBeforeVars(t *testing.T) {
	s := Empty()
	i32 := ast.ScalarType(ast.I32)
	s.InsertVar("v0", i32)
	s.InsertLet("c0", i32)

	matches := s.OfType(i32)
	require.Len(t, matches, 2)
	assert.Equal(t, "c0", matches[0].Name)
	assert.False(t, matches[0].Mut)
	assert.Equal(t, "v0", matches[1].Name)
	assert.True(t, matches[1].Mut)
}

func TestHasMutable(t *testing.T) {
	s := Empty()
	assert.False(t, s.HasMutable())
	s.InsertVar("v0", ast.ScalarType(ast.I32))
	assert.True(t, s.HasMutable())
}
