package eval

import (
	"testing"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/stretchr/testify/assert"
)

func i32(v int32) ast.ExprNode { return ast.NewLit(ast.LitI32(v)) }
func u32(v uint32) ast.ExprNode { return ast.NewLit(ast.LitU32(v)) }

func TestConcretizeFoldsIntArith(t *testing.T) {
	e := New()
	fn := ast.FnDecl{
		Name: "f",
		Body: []ast.Statement{
			ast.LetDecl("x", ast.NewBinOp(ast.Plus, i32(2), i32(3))),
		},
	}
	// The folded expression keeps its node; its value travels alongside it.
	out := e.ConcretizeFn(fn)
	assert.Equal(t, ast.ExprBinOp, out.Body[0].Value.Expr.Kind)
	_, v, ok := e.concretizeExpr(out.Body[0].Value)
	assert.True(t, ok)
	assert.Equal(t, int32(5), v.Lit().I32)
}

func TestConcretizeReplacesDivideByZeroWithDefault(t *testing.T) {
	e := New()
	node := ast.NewBinOp(ast.Divide, i32(10), i32(0))
	out, _, ok := e.concretizeExpr(node)
	assert.False(t, ok)
	assert.Equal(t, ast.ExprLit, out.Expr.Kind)
	assert.Equal(t, int32(1), out.Expr.Lit.I32)
}

func TestConcretizeFoldsVariableReference(t *testing.T) {
	e := New()
	e.enterScope()
	e.concretizeStmt(ast.LetDecl("x", i32(7)))
	_, v, ok := e.concretizeExpr(ast.NewBinOp(ast.Plus, ast.NewVar("x", ast.ScalarType(ast.I32)), i32(1)))
	assert.True(t, ok)
	assert.Equal(t, int32(8), v.Lit().I32)
}

func TestConcretizeShiftOutOfRangeLeftUnfolded(t *testing.T) {
	e := New()
	node := ast.NewBinOp(ast.LShift, u32(1), u32(40))
	_, _, ok := e.concretizeExpr(node)
	assert.False(t, ok)
}

func TestEvaluateBuiltinAbs(t *testing.T) {
	v, ok := evaluateBuiltin("abs", []Value{scalar(ast.LitI32(-5))})
	assert.True(t, ok)
	assert.Equal(t, int32(5), v.Lit().I32)
}

func TestEvaluateBuiltinClampRejectsInvertedBounds(t *testing.T) {
	_, ok := evaluateBuiltin("clamp", []Value{scalar(ast.LitI32(5)), scalar(ast.LitI32(10)), scalar(ast.LitI32(0))})
	assert.False(t, ok)
}

func TestEvaluateBuiltinDotI32(t *testing.T) {
	a := vector([]Value{scalar(ast.LitI32(1)), scalar(ast.LitI32(2)), scalar(ast.LitI32(3))})
	b := vector([]Value{scalar(ast.LitI32(4)), scalar(ast.LitI32(5)), scalar(ast.LitI32(6))})
	v, ok := evaluateBuiltin("dot", []Value{a, b})
	assert.True(t, ok)
	assert.Equal(t, int32(32), v.Lit().I32)
}

func TestEvaluateBuiltinSelect(t *testing.T) {
	v, ok := evaluateBuiltin("select", []Value{scalar(ast.LitI32(1)), scalar(ast.LitI32(2)), scalar(ast.LitBool(true))})
	assert.True(t, ok)
	assert.Equal(t, int32(2), v.Lit().I32)
}

func TestEvaluateBuiltinAllAny(t *testing.T) {
	v := vector([]Value{scalar(ast.LitBool(true)), scalar(ast.LitBool(false))})
	all, ok := evaluateBuiltin("all", []Value{v})
	assert.True(t, ok)
	assert.False(t, all.Lit().Bool)

	any, ok := evaluateBuiltin("any", []Value{v})
	assert.True(t, ok)
	assert.True(t, any.Lit().Bool)
}

func TestEvaluateBuiltinUnknownNameIsNotConstant(t *testing.T) {
	_, ok := evaluateBuiltin("sign", []Value{scalar(ast.LitF32(1))})
	assert.False(t, ok)
}

func TestConcretizeClampWithInvertedConstantBoundsBecomesDefault(t *testing.T) {
	e := New()
	x := ast.NewVar("x", ast.ScalarType(ast.U32))
	node := ast.NewFnCall("clamp", []ast.ExprNode{x, u32(5), u32(3)}, ast.ScalarType(ast.U32))
	out, _, ok := e.concretizeExpr(node)
	assert.False(t, ok)
	assert.Equal(t, ast.ExprLit, out.Expr.Kind)
	assert.Equal(t, uint32(1), out.Expr.Lit.U32)
}

func TestConcretizeExtractBitsWithKnownOutOfRangeBecomesDefault(t *testing.T) {
	e := New()
	x := ast.NewVar("x", ast.ScalarType(ast.U32))
	node := ast.NewFnCall("extractBits", []ast.ExprNode{x, u32(20), u32(20)}, ast.ScalarType(ast.U32))
	out, _, ok := e.concretizeExpr(node)
	assert.False(t, ok)
	assert.Equal(t, ast.ExprLit, out.Expr.Kind)
	assert.Equal(t, uint32(1), out.Expr.Lit.U32)
}

func TestConcretizeClampWithUnknownBoundLeavesUnfolded(t *testing.T) {
	e := New()
	x := ast.NewVar("x", ast.ScalarType(ast.U32))
	hi := ast.NewVar("hi", ast.ScalarType(ast.U32))
	node := ast.NewFnCall("clamp", []ast.ExprNode{x, u32(5), hi}, ast.ScalarType(ast.U32))
	out, _, ok := e.concretizeExpr(node)
	assert.False(t, ok)
	assert.Equal(t, ast.ExprFnCall, out.Expr.Kind)
}
