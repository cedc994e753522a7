// Package builtins is the fixed catalog of built-in functions the generator
// may call from an expression (§4.D "Builtin calls"). Every entry pairs a
// BuiltinFn with the argument/return-type signature ("overload") it is valid
// for; a single BuiltinFn typically has many overloads (one per scalar kind,
// one per vector width).
//
// The catalog mirrors the subset of WGSL's built-in functions that both tint
// and naga implement identically enough to fuzz without the reconditioner
// needing a bespoke guard for each one (§4.H only wraps the arithmetic
// operators, not builtin calls). Of the transcendental functions only exp and
// exp2 are in the catalog, and they are in it by default; Fma, Mix, Cross,
// Reflect/Refract and the trigonometric functions are not in it at all.
// EnabledFns only re-admits the extras listed below, which are left out of
// the default catalog.
package builtins

import (
	"fmt"

	"github.com/shadefuzz/shadefuzz/internal/ast"
)

// Fn names a built-in function. Values use WGSL's own spelling so they can be
// written directly into generated call expressions and into the EnabledFns
// option.
type Fn string

const (
	Abs                Fn = "abs"
	All                Fn = "all"
	Any                Fn = "any"
	Select             Fn = "select"
	Clamp              Fn = "clamp"
	CountOneBits       Fn = "countOneBits"
	CountLeadingZeros  Fn = "countLeadingZeros"
	CountTrailingZeros Fn = "countTrailingZeros"
	ReverseBits        Fn = "reverseBits"
	FirstLeadingBit    Fn = "firstLeadingBit"
	FirstTrailingBit   Fn = "firstTrailingBit"
	Max                Fn = "max"
	Min                Fn = "min"
	ExtractBits        Fn = "extractBits"
	InsertBits         Fn = "insertBits"
	Dot                Fn = "dot"
	Ceil               Fn = "ceil"
	Exp                Fn = "exp"
	Exp2               Fn = "exp2"
	Floor              Fn = "floor"
	Fract              Fn = "fract"
	Round              Fn = "round"
	Saturate           Fn = "saturate"
	Sign               Fn = "sign"
	Step               Fn = "step"
	Trunc              Fn = "trunc"
)

// extras lists built-ins that differ across WGPU backends closely enough
// that they are excluded from a Table unless named in EnabledFns (mirrors
// wgslsmith's TINT_EXTRAS: naga lacked countLeadingZeros/countTrailingZeros
// for a long time, and refract isn't in the default catalog at all yet).
var extras = map[Fn]bool{
	CountLeadingZeros:  true,
	CountTrailingZeros: true,
}

// Overload is one valid (params, return type) signature for a Fn.
type Overload struct {
	Fn         Fn
	Params     []ast.DataType
	ReturnType ast.DataType
}

// Table is the set of overloads available to a generator run, keyed by
// return type so the expression generator can answer "which builtin calls
// can produce a value of type t" (§4.D candidate selection).
//
// Entries preserve the order they were inserted in Build, so selection among
// equally-ranked overloads stays deterministic (P3) when driven by an
// index-based choice rather than map iteration.
type Table struct {
	byReturn map[string][]Overload
	keys     []string
}

// Build constructs the catalog for a run. enabled additionally allows any
// extras (§"extras" above) named in it; every non-extra builtin is always
// present.
func Build(enabled []Fn) *Table {
	allow := make(map[Fn]bool, len(enabled))
	for _, fn := range enabled {
		allow[fn] = true
	}

	t := &Table{byReturn: make(map[string][]Overload)}

	add := func(fn Fn, params []ast.DataType, ret ast.DataType) {
		if extras[fn] && !allow[fn] {
			return
		}
		key := typeKey(ret)
		if _, ok := t.byReturn[key]; !ok {
			t.keys = append(t.keys, key)
		}
		t.byReturn[key] = append(t.byReturn[key], Overload{Fn: fn, Params: params, ReturnType: ret})
	}

	numericScalars := []ast.ScalarKind{ast.I32, ast.U32, ast.F32}
	integerScalars := []ast.ScalarKind{ast.I32, ast.U32}

	for _, s := range numericScalars {
		for _, ty := range scalarAndVectorsOf(s) {
			add(Abs, []ast.DataType{ty}, ty)
		}
	}

	for _, n := range []uint8{2, 3, 4} {
		boolVec := ast.VectorType(n, ast.Bool)
		add(All, []ast.DataType{boolVec}, ast.ScalarType(ast.Bool))
		add(Any, []ast.DataType{boolVec}, ast.ScalarType(ast.Bool))
	}

	for _, s := range []ast.ScalarKind{ast.Bool, ast.I32, ast.U32, ast.F32} {
		for _, ty := range scalarAndVectorsOf(s) {
			add(Select, []ast.DataType{ty, ty, ast.ScalarType(ast.Bool)}, ty)
		}
		for _, n := range []uint8{2, 3, 4} {
			vec := ast.VectorType(n, s)
			add(Select, []ast.DataType{vec, vec, ast.VectorType(n, ast.Bool)}, vec)
		}
	}

	for _, s := range integerScalars {
		for _, ty := range scalarAndVectorsOf(s) {
			add(Clamp, []ast.DataType{ty, ty, ty}, ty)

			for _, fn := range []Fn{Abs, CountOneBits, CountLeadingZeros, CountTrailingZeros, ReverseBits, FirstLeadingBit, FirstTrailingBit} {
				add(fn, []ast.DataType{ty}, ty)
			}
			for _, fn := range []Fn{Max, Min} {
				add(fn, []ast.DataType{ty, ty}, ty)
			}

			u32 := ast.ScalarType(ast.U32)
			add(ExtractBits, []ast.DataType{ty, u32, u32}, ty)
			add(InsertBits, []ast.DataType{ty, ty, u32, u32}, ty)
		}

		for _, n := range []uint8{2, 3, 4} {
			vec := ast.VectorType(n, s)
			add(Dot, []ast.DataType{vec, vec}, ast.ScalarType(s))
		}
	}

	for _, ty := range scalarAndVectorsOf(ast.F32) {
		for _, fn := range []Fn{Ceil, Exp, Exp2, Floor, Fract, Round, Saturate, Sign, Trunc} {
			add(fn, []ast.DataType{ty}, ty)
		}
		for _, fn := range []Fn{Max, Min, Step} {
			add(fn, []ast.DataType{ty, ty}, ty)
		}
	}

	return t
}

// Candidates returns every overload whose return type is ty, in
// deterministic insertion order.
func (t *Table) Candidates(ty ast.DataType) []Overload {
	return t.byReturn[typeKey(ty)]
}

// HasReturnType reports whether any overload in the table returns ty.
func (t *Table) HasReturnType(ty ast.DataType) bool {
	return len(t.byReturn[typeKey(ty)]) > 0
}

func scalarAndVectorsOf(k ast.ScalarKind) []ast.DataType {
	tys := make([]ast.DataType, 0, 4)
	tys = append(tys, ast.ScalarType(k))
	for _, n := range []uint8{2, 3, 4} {
		tys = append(tys, ast.VectorType(n, k))
	}
	return tys
}

func typeKey(ty ast.DataType) string {
	switch ty.Kind {
	case ast.KindScalar:
		return fmt.Sprintf("s:%s", ty.Scalar)
	case ast.KindVector:
		return fmt.Sprintf("v%d:%s", ty.VecLen, ty.Scalar)
	default:
		return fmt.Sprintf("?:%s", ty.String())
	}
}
