package recondition

import (
	"testing"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i32v(name string) ast.ExprNode { return ast.NewVar(name, ast.ScalarType(ast.I32)) }

func TestReconditionWrapsArithmeticBinOp(t *testing.T) {
	m := &ast.Module{
		Functions: []ast.FnDecl{{
			Name: "f",
			Body: []ast.Statement{
				ast.LetDecl("x", ast.NewBinOp(ast.Plus, i32v("a"), i32v("b"))),
			},
		}},
	}

	res := Recondition(m)

	assert.Equal(t, ast.ExprFnCall, m.Functions[0].Body[0].Value.Expr.Kind)
	assert.Equal(t, "SAFE_add_i32", m.Functions[0].Body[0].Value.Expr.FnName)
	require.Len(t, m.Functions, 2)
	assert.Equal(t, "SAFE_add_i32", m.Functions[1].Name)
	assert.Zero(t, res.LoopCount)
}

func TestReconditionDoesNotDuplicateWrapperForRepeatedOp(t *testing.T) {
	m := &ast.Module{
		Functions: []ast.FnDecl{{
			Name: "f",
			Body: []ast.Statement{
				ast.LetDecl("x", ast.NewBinOp(ast.Times, i32v("a"), i32v("b"))),
				ast.LetDecl("y", ast.NewBinOp(ast.Times, i32v("c"), i32v("d"))),
			},
		}},
	}

	Recondition(m)

	count := 0
	for _, fn := range m.Functions {
		if fn.Name == "SAFE_mul_i32" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestReconditionCapsLoopIterations(t *testing.T) {
	m := &ast.Module{
		Functions: []ast.FnDecl{{
			Name: "f",
			Body: []ast.Statement{
				ast.Loop([]ast.Statement{ast.Break()}),
			},
		}},
	}

	res := Recondition(m)

	require.Equal(t, uint32(1), res.LoopCount)
	require.Len(t, m.Vars, 1)
	assert.Equal(t, "LOOP_COUNTERS", m.Vars[0].Name)

	body := m.Functions[0].Body[0].Body
	require.GreaterOrEqual(t, len(body), 3)
	assert.Equal(t, ast.StmtIf, body[0].Kind)
	assert.Equal(t, ast.StmtAssignment, body[1].Kind)
}

func TestGenScalarWrapperF32UsesRangeCheck(t *testing.T) {
	decl := genScalarWrapper(ast.Plus, ast.F32)
	assert.Contains(t, decl.String(), "abs(r)")
}
