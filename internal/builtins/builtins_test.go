package builtins

import (
	"testing"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExcludesExtrasByDefault(t *testing.T) {
	table := Build(nil)

	i32 := ast.ScalarType(ast.I32)
	for _, o := range table.Candidates(i32) {
		assert.NotEqual(t, CountLeadingZeros, o.Fn)
		assert.NotEqual(t, CountTrailingZeros, o.Fn)
	}
}

func TestBuildEnablesNamedExtras(t *testing.T) {
	table := Build([]Fn{CountLeadingZeros})

	i32 := ast.ScalarType(ast.I32)
	var found bool
	for _, o := range table.Candidates(i32) {
		if o.Fn == CountLeadingZeros {
			found = true
		}
	}
	assert.True(t, found)
}

func TestCandidatesForVectorBool(t *testing.T) {
	table := Build(nil)
	boolTy := ast.ScalarType(ast.Bool)

	candidates := table.Candidates(boolTy)
	require.NotEmpty(t, candidates)

	var sawAll, sawAny bool
	for _, o := range candidates {
		switch o.Fn {
		case All:
			sawAll = true
		case Any:
			sawAny = true
		}
	}
	assert.True(t, sawAll)
	assert.True(t, sawAny)
}

func TestDotReturnsScalar(t *testing.T) {
	table := Build(nil)
	i32 := ast.ScalarType(ast.I32)

	var dotSeen bool
	for _, o := range table.Candidates(i32) {
		if o.Fn == Dot {
			dotSeen = true
			require.Len(t, o.Params, 2)
			assert.True(t, o.Params[0].IsVector())
		}
	}
	assert.True(t, dotSeen)
}
