package generator

import (
	"github.com/shadefuzz/shadefuzz/internal/ast"
)

// maxExprDepth bounds how many UnOp/BinOp/FnCall layers gen_expr will nest
// before falling back to a leaf (literal, variable, type constructor);
// without this, recursive choices can in principle generate an arbitrarily
// deep expression tree (§4.D "Candidate selection").
const maxExprDepth = 5

type exprKind uint8

const (
	exprLit exprKind = iota
	exprTypeCons
	exprVar
	exprUnOp
	exprBinOp
	exprFnCall
)

// genExpr generates an expression of exactly type ty, choosing uniformly
// among every construction that is valid for ty at the current depth and
// scope (§4.D). This is the single recursive entry point every other
// expression-shaped thing in the generator (global initializers, statement
// RHSes, function arguments) goes through.
func (g *Generator) genExpr(ty ast.DataType) ast.ExprNode {
	var allowed []exprKind

	switch ty.Kind {
	case ast.KindScalar:
		allowed = append(allowed, exprLit)
	case ast.KindVector, ast.KindStruct:
		allowed = append(allowed, exprTypeCons)
	case ast.KindArray:
		// Array-typed values are never built top-level via TypeCons or a
		// function call (§4.D); the only way to produce one is to read an
		// existing variable of the exact same array type, handled by the
		// exprVar case below.
	default:
		allowed = append(allowed, exprTypeCons)
	}

	if g.exprDepth < maxExprDepth && ty.Kind != ast.KindArray {
		if ty.Kind == ast.KindScalar || ty.Kind == ast.KindVector {
			allowed = append(allowed, exprUnOp)
		}
		if ty.Kind == ast.KindScalar || (ty.Kind == ast.KindVector && (ty.Scalar == ast.I32 || ty.Scalar == ast.U32 || ty.Scalar == ast.F32)) {
			allowed = append(allowed, exprBinOp)
		}
		if len(g.fns.UserSigsReturning(ty)) > 0 || len(g.fns.BuiltinsReturning(ty)) > 0 || g.fns.Count() < g.options.MaxFns {
			allowed = append(allowed, exprFnCall)
		}
	}

	if len(g.scope.OfType(ty)) > 0 {
		allowed = append(allowed, exprVar)
	}

	if len(allowed) == 0 {
		panic("genExpr: no variable of this array type is in scope to read from")
	}

	switch allowed[g.rng.Intn(len(allowed))] {
	case exprLit:
		return ast.NewLit(g.genLit(ty))
	case exprTypeCons:
		return g.genTypeCons(ty)
	case exprUnOp:
		return g.genUnOpExpr(ty)
	case exprBinOp:
		return g.genBinOpExpr(ty)
	case exprVar:
		return g.genVarExpr(ty)
	case exprFnCall:
		return g.genFnCallExpr(ty)
	default:
		panic("genExpr: no construction was allowed")
	}
}

func (g *Generator) genLit(ty ast.DataType) ast.Lit {
	switch ty.Scalar {
	case ast.Bool:
		return ast.LitBool(g.rng.Float64() < 0.5)
	case ast.I32:
		return ast.LitI32(g.genI32())
	case ast.U32:
		return ast.LitU32(g.genU32())
	case ast.F32:
		return ast.LitF32(g.genF32())
	default:
		panic("genLit: unsupported scalar kind")
	}
}

func (g *Generator) genTypeCons(ty ast.DataType) ast.ExprNode {
	g.exprDepth++
	defer func() { g.exprDepth-- }()

	var args []ast.ExprNode
	switch ty.Kind {
	case ast.KindScalar:
		args = []ast.ExprNode{g.genExpr(ty)}
	case ast.KindVector:
		args = make([]ast.ExprNode, ty.VecLen)
		for i := range args {
			args[i] = g.genExpr(ast.ScalarType(ty.Scalar))
		}
	case ast.KindStruct:
		args = make([]ast.ExprNode, len(ty.Struct.Members))
		for i, m := range ty.Struct.Members {
			args[i] = g.genExpr(m.Type)
		}
	default:
		panic("genTypeCons: unsupported type kind")
	}
	return ast.NewTypeCons(ty, args)
}

func (g *Generator) genUnOpExpr(ty ast.DataType) ast.ExprNode {
	g.exprDepth++
	defer func() { g.exprDepth-- }()

	op := g.genUnOp(ty)
	inner := g.genExpr(ty)
	return ast.NewUnOp(op, inner)
}

func (g *Generator) genUnOp(ty ast.DataType) ast.UnOp {
	switch ty.Scalar {
	case ast.Bool:
		return ast.Not
	case ast.U32:
		return ast.BitNot
	case ast.F32:
		return ast.Negate
	case ast.I32:
		if g.rng.Float64() < 0.5 {
			return ast.Negate
		}
		return ast.BitNot
	default:
		panic("genUnOp: unsupported scalar kind")
	}
}

var comparisonOps = []ast.BinOp{ast.Less, ast.LessEqual, ast.Greater, ast.GreaterEqual}

func (g *Generator) genBinOpExpr(ty ast.DataType) ast.ExprNode {
	g.exprDepth++
	defer func() { g.exprDepth-- }()

	op := g.genBinOp(ty)

	var lTy ast.DataType
	switch op {
	case ast.Less, ast.LessEqual, ast.Greater, ast.GreaterEqual:
		lTy = ty.Map(pick(g.rng.Intn(2), ast.I32, ast.U32))
	case ast.Equal, ast.NotEqual:
		lTy = ty.Map(pick(g.rng.Intn(3), ast.I32, ast.U32, ast.Bool))
	default:
		lTy = ty
	}

	l := g.genExpr(lTy)

	rTy := l.Type
	if op == ast.LShift || op == ast.RShift {
		rTy = l.Type.Map(ast.U32)
	}
	r := g.genExpr(rTy)

	return ast.NewBinOp(op, l, r)
}

func pick(i int, vals ...ast.ScalarKind) ast.ScalarKind {
	return vals[i]
}

func (g *Generator) genBinOp(ty ast.DataType) ast.BinOp {
	var allowed []ast.BinOp
	switch ty.Scalar {
	case ast.Bool:
		allowed = append([]ast.BinOp{ast.BitAnd, ast.BitOr, ast.LogAnd, ast.LogOr}, comparisonOps...)
		allowed = append(allowed, ast.Equal, ast.NotEqual)
	case ast.I32, ast.U32:
		allowed = []ast.BinOp{ast.Plus, ast.Minus, ast.Times, ast.Divide, ast.Mod, ast.BitAnd, ast.BitOr, ast.BitXor, ast.LShift, ast.RShift}
	case ast.F32:
		allowed = []ast.BinOp{ast.Plus, ast.Minus, ast.Times, ast.Divide}
	default:
		panic("genBinOp: unsupported scalar kind")
	}
	return allowed[g.rng.Intn(len(allowed))]
}

func (g *Generator) genVarExpr(ty ast.DataType) ast.ExprNode {
	matches := g.scope.OfType(ty)
	b := matches[g.rng.Intn(len(matches))]

	node := ast.NewVar(b.Name, b.Type)
	if b.Type.Equal(ty) {
		return node
	}
	return g.genAccessor(b.Type, ty, node)
}

// genAccessor walks down from a value of type ty to a value of type target
// via vector swizzles and/or struct member access, appending postfix steps
// to expr until the requested type is reached.
func (g *Generator) genAccessor(ty, target ast.DataType, expr ast.ExprNode) ast.ExprNode {
	switch ty.Kind {
	case ast.KindVector:
		accessor := g.genSwizzle(ty.VecLen, target)
		return ast.NewPostfix(expr, target, ast.MemberPostfix(accessor))
	case ast.KindStruct:
		members := ty.Struct.AccessorsOf(target)
		m := members[g.rng.Intn(len(members))]
		node := ast.NewPostfix(expr, m.Type, ast.MemberPostfix(m.Name))
		if m.Type.Equal(target) {
			return node
		}
		return g.genAccessor(m.Type, target, node)
	default:
		panic("genAccessor: value has no members to access")
	}
}

var swizzleLetters = [4]string{"x", "y", "z", "w"}

// genSwizzle builds a swizzle string that reads as target from a vector of
// length size: one letter if target is a scalar, len(target) letters
// (components may repeat) if target is itself a smaller vector.
func (g *Generator) genSwizzle(size uint8, target ast.DataType) string {
	n := 1
	if target.Kind == ast.KindVector {
		n = int(target.VecLen)
	}
	s := ""
	for i := 0; i < n; i++ {
		s += swizzleLetters[g.rng.Intn(int(size))]
	}
	return s
}
