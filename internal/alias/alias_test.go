package alias

import (
	"testing"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/stretchr/testify/assert"
)

func TestCheckAcceptsModuleWithoutPointers(t *testing.T) {
	m := &ast.Module{
		Functions: []ast.FnDecl{{
			Name: "main",
			Body: []ast.Statement{
				ast.LetDecl("x", ast.NewLit(ast.LitI32(1))),
			},
		}},
	}
	assert.True(t, Check(m))
}

func TestCheckAcceptsDistinctRootsThroughTwoParams(t *testing.T) {
	i32 := ast.ScalarType(ast.I32)
	ptrTy := ast.PtrType(ast.NewMemoryView(i32, ast.Function))
	refTy := ast.RefType(ast.NewMemoryView(i32, ast.Function))

	mutate := ast.FnDecl{
		Name:   "mutate",
		Params: []ast.FnParam{{Name: "p", Type: ptrTy}, {Name: "q", Type: ptrTy}},
		Body: []ast.Statement{
			ast.Assignment(ast.ExprLhs(ast.NewUnOp(ast.Deref, ast.NewVar("p", ptrTy))), ast.AssignSimple, ast.NewLit(ast.LitI32(1))),
			ast.Assignment(ast.ExprLhs(ast.NewUnOp(ast.Deref, ast.NewVar("q", ptrTy))), ast.AssignSimple, ast.NewLit(ast.LitI32(2))),
		},
	}
	caller := ast.FnDecl{
		Name: "main",
		Body: []ast.Statement{
			ast.VarDecl("v", ast.NewLit(ast.LitI32(0))),
			ast.VarDecl("w", ast.NewLit(ast.LitI32(0))),
			ast.FnCallStmt("mutate", []ast.ExprNode{
				ast.NewUnOp(ast.AddressOf, ast.NewVar("v", refTy)),
				ast.NewUnOp(ast.AddressOf, ast.NewVar("w", refTy)),
			}),
		},
	}
	m := &ast.Module{Functions: []ast.FnDecl{mutate, caller}}
	assert.True(t, Check(m))
}

func TestCheckRejectsAliasedWriteThroughTwoParams(t *testing.T) {
	i32 := ast.ScalarType(ast.I32)
	ptrTy := ast.PtrType(ast.NewMemoryView(i32, ast.Function))
	refTy := ast.RefType(ast.NewMemoryView(i32, ast.Function))

	mutate := ast.FnDecl{
		Name:   "mutate",
		Params: []ast.FnParam{{Name: "p", Type: ptrTy}, {Name: "q", Type: ptrTy}},
		Body: []ast.Statement{
			ast.Assignment(ast.ExprLhs(ast.NewUnOp(ast.Deref, ast.NewVar("p", ptrTy))), ast.AssignSimple, ast.NewLit(ast.LitI32(1))),
			ast.Assignment(ast.ExprLhs(ast.NewUnOp(ast.Deref, ast.NewVar("q", ptrTy))), ast.AssignSimple, ast.NewLit(ast.LitI32(2))),
		},
	}
	caller := ast.FnDecl{
		Name: "main",
		Body: []ast.Statement{
			ast.VarDecl("v", ast.NewLit(ast.LitI32(0))),
			ast.FnCallStmt("mutate", []ast.ExprNode{
				ast.NewUnOp(ast.AddressOf, ast.NewVar("v", refTy)),
				ast.NewUnOp(ast.AddressOf, ast.NewVar("v", refTy)),
			}),
		},
	}
	m := &ast.Module{Functions: []ast.FnDecl{mutate, caller}}
	assert.False(t, Check(m))
}

func TestCheckAcceptsAliasedReadOnlyAccess(t *testing.T) {
	i32 := ast.ScalarType(ast.I32)
	ptrTy := ast.PtrType(ast.NewMemoryView(i32, ast.Function))
	refTy := ast.RefType(ast.NewMemoryView(i32, ast.Function))

	read := ast.FnDecl{
		Name:       "sum",
		Params:     []ast.FnParam{{Name: "p", Type: ptrTy}, {Name: "q", Type: ptrTy}},
		ReturnType: &i32,
		Body: []ast.Statement{
			ast.Return(func() *ast.ExprNode {
				e := ast.NewBinOp(ast.Plus,
					ast.NewUnOp(ast.Deref, ast.NewVar("p", ptrTy)),
					ast.NewUnOp(ast.Deref, ast.NewVar("q", ptrTy)))
				return &e
			}()),
		},
	}
	caller := ast.FnDecl{
		Name: "main",
		Body: []ast.Statement{
			ast.VarDecl("v", ast.NewLit(ast.LitI32(0))),
			ast.LetDecl("total", ast.NewFnCall("sum", []ast.ExprNode{
				ast.NewUnOp(ast.AddressOf, ast.NewVar("v", refTy)),
				ast.NewUnOp(ast.AddressOf, ast.NewVar("v", refTy)),
			}, i32)),
		},
	}
	m := &ast.Module{Functions: []ast.FnDecl{read, caller}}
	assert.True(t, Check(m))
}
