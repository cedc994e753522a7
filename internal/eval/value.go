// Package eval constant-folds generated expressions at shader-creation time,
// mirroring wgslsmith's concretizer (crates/concretizer): a binary/unary
// operation or builtin call whose operands are all compile-time constants
// keeps its node, and its computed value is carried alongside it (so later
// references to a constant let binding fold too); an operation that would
// divide by zero, shift out of range, or leave the float range is replaced
// by a default literal of its type rather than folded to undefined behavior.
package eval

import "github.com/shadefuzz/shadefuzz/internal/ast"

// Value is the result of evaluating a constant expression: either a scalar
// literal or a vector of Values, mirroring concretizer::value::Value.
type Value struct {
	lit    ast.Lit
	vector []Value
	isVec  bool
}

func scalar(l ast.Lit) Value    { return Value{lit: l} }
func vector(vs []Value) Value   { return Value{vector: vs, isVec: true} }
func (v Value) IsVector() bool  { return v.isVec }
func (v Value) Lit() ast.Lit    { return v.lit }
func (v Value) Elems() []Value  { return v.vector }

// isZero reports whether v is the scalar zero of its kind; vectors are never
// considered zero here since the only caller checks a would-be divisor.
func (v Value) isZero() bool {
	if v.isVec {
		return false
	}
	switch v.lit.Kind {
	case ast.I32:
		return v.lit.I32 == 0
	case ast.U32:
		return v.lit.U32 == 0
	case ast.F32:
		return v.lit.F32 == 0
	default:
		return false
	}
}

// ToExpr rebuilds the expression ty's this value represents, for splicing a
// folded constant back into the program in place of the node it replaces.
func (v Value) ToExpr(ty ast.DataType) ast.ExprNode {
	if !v.isVec {
		return ast.NewLit(v.lit)
	}
	elemTy := ast.ScalarType(ty.Scalar)
	args := make([]ast.ExprNode, len(v.vector))
	for i, e := range v.vector {
		args[i] = e.ToExpr(elemTy)
	}
	return ast.NewTypeCons(ty, args)
}
