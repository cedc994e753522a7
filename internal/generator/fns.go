package generator

import (
	"fmt"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/shadefuzz/shadefuzz/internal/registry"
)

// callCandidate is a uniform view over a builtin overload and a user
// function signature, so genFnCallExpr can choose between them without
// caring which catalog they came from.
type callCandidate struct {
	name   string
	params []ast.DataType
}

// genFnCallExpr produces a call expression returning ty: with probability
// 0.8 (or always, once MaxFns has been reached) it reuses an existing
// builtin or user function; otherwise it synthesizes a brand new user
// function with return type ty and calls that instead (§4.D "Function
// calls", §4.F "Lifecycle").
func (g *Generator) genFnCallExpr(ty ast.DataType) ast.ExprNode {
	var candidates []callCandidate
	for _, sig := range g.fns.UserSigsReturning(ty) {
		candidates = append(candidates, callCandidate{name: sig.Name, params: sig.Params})
	}
	for _, o := range g.fns.BuiltinsReturning(ty) {
		candidates = append(candidates, callCandidate{name: string(o.Fn), params: o.Params})
	}

	reachedMax := g.fns.Count() >= g.options.MaxFns
	useExisting := len(candidates) > 0 && (reachedMax || g.rng.Float64() < 0.8)

	var call callCandidate
	if useExisting {
		call = candidates[g.rng.Intn(len(candidates))]
	} else {
		decl := g.genFn(ty)
		params := make([]ast.DataType, len(decl.Params))
		for i, p := range decl.Params {
			params[i] = p.Type
		}
		call = callCandidate{name: decl.Name, params: params}
	}

	g.exprDepth++
	args := make([]ast.ExprNode, len(call.params))
	for i, p := range call.params {
		args[i] = g.genExpr(p)
	}
	g.exprDepth--

	return ast.NewFnCall(call.name, args, ty)
}

// genFn synthesizes a new user function returning ty, registers it in the
// function registry, and returns its declaration. Mirrors wgslsmith's
// FnRegistry::gen (generator/cx.rs): a handful of scalar/vector parameters,
// a short statement block, and a guaranteed trailing return of the right
// type.
func (g *Generator) genFn(ty ast.DataType) ast.FnDecl {
	name := g.fns.NextName()

	argCount := g.rng.Intn(5)
	params := make([]ast.FnParam, argCount)
	fnScope := g.globalScope.Clone()
	for i := range params {
		pty := g.genParamType()
		params[i] = ast.FnParam{Name: fmt.Sprintf("arg_%d", i), Type: pty}
		fnScope.InsertLet(params[i].Name, pty)
	}

	stmtCount := g.rangeU32(5, 9)

	savedScope, savedReturn, savedDepth := g.scope, g.returnType, g.blockDepth
	g.scope = fnScope
	g.returnType = &ty
	g.blockDepth = 0

	body := g.genStmtBlockWithReturn(stmtCount, &ty)

	g.scope, g.returnType, g.blockDepth = savedScope, savedReturn, savedDepth

	decl := ast.FnDecl{Name: name, Params: params, ReturnType: &ty, Body: body}

	sigParams := make([]ast.DataType, len(params))
	for i, p := range params {
		sigParams[i] = p.Type
	}
	g.fns.Insert(registry.Sig{Name: name, Params: sigParams, ReturnType: &ty}, decl)

	return decl
}

// genParamType picks a parameter type for a synthesized function: a scalar
// or vector of one of the three "plain data" scalar kinds. Struct
// parameters are deliberately excluded to keep function signatures cheap to
// satisfy at every call site.
func (g *Generator) genParamType() ast.DataType {
	scalars := []ast.ScalarKind{ast.I32, ast.U32, ast.F32}
	s := scalars[g.rng.Intn(len(scalars))]
	if g.rng.Float64() < 0.5 {
		return ast.ScalarType(s)
	}
	return ast.VectorType(uint8(2+g.rng.Intn(3)), s)
}
