// Package registry holds the two pools the generator consults when it needs
// "some type" or "some function" rather than a specific one: the struct
// types declared so far (component B, "Type registry") and the functions
// available to call, built-in and user-defined (component B, "Function
// registry").
//
// Both registries are deliberately dumb: they store and filter, they do not
// generate. internal/generator owns all of the weighted-choice logic; these
// types exist so that logic has somewhere uniform to look up candidates,
// whether those candidates were fixed at catalog-build time (builtins) or
// synthesized earlier in this run (user functions, user structs).
package registry

import (
	"fmt"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/shadefuzz/shadefuzz/internal/builtins"
)

// TypeRegistry is the set of struct types declared in the module so far,
// plus SelectStruct for listing the declared structs that pass a filter
// (e.g. "host-shareable only", required by any type crossing a storage or
// uniform buffer boundary). It holds no scalar or vector types and makes no
// random choice itself.
type TypeRegistry struct {
	structs []*ast.StructDecl
}

// NewTypeRegistry returns an empty registry; no structs exist until
// RegisterStruct is called.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{}
}

// RegisterStruct adds a newly generated struct declaration to the pool.
func (r *TypeRegistry) RegisterStruct(decl *ast.StructDecl) {
	r.structs = append(r.structs, decl)
}

// Structs returns every struct declared so far, in declaration order.
func (r *TypeRegistry) Structs() []*ast.StructDecl {
	return r.structs
}

// Filter decides whether a candidate DataType may be chosen.
type Filter func(ast.DataType) bool

// HostShareable accepts only types that are legal across a uniform or
// storage buffer boundary: scalars and vectors of i32/u32/f32 (no bool), and
// structs whose every member is itself host-shareable.
func HostShareable(ty ast.DataType) bool {
	switch ty.Kind {
	case ast.KindScalar:
		return ty.Scalar != ast.Bool
	case ast.KindVector:
		return ty.Scalar != ast.Bool
	case ast.KindStruct:
		for _, m := range ty.Struct.Members {
			if !HostShareable(m.Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Any accepts every candidate.
func Any(ast.DataType) bool { return true }

// SelectStruct returns the struct declarations in r that pass filter, in
// declaration order; the caller (the generator, PRNG in hand) indexes into
// the result, keeping the actual random choice — and therefore determinism
// under a fixed seed (P3) — outside this package.
func (r *TypeRegistry) SelectStruct(filter Filter) []*ast.StructDecl {
	var out []*ast.StructDecl
	for _, s := range r.structs {
		if filter(ast.StructType(s)) {
			out = append(out, s)
		}
	}
	return out
}

// Sig is a function signature: the parameter types and return type a caller
// needs to know to emit a valid call expression or statement.
type Sig struct {
	Name       string
	Params     []ast.DataType
	ReturnType *ast.DataType // nil for a void function
}

// FnRegistry is the set of functions callable from the module being
// generated: the fixed builtin catalog plus every user function synthesized
// so far. Functions are indexed by return type so the expression generator
// can ask "what can I call to get a value of type t" in constant time,
// mirroring wgslsmith's FnRegistry (generator/cx.rs).
type FnRegistry struct {
	builtins *builtins.Table
	byReturn map[string][]Sig
	keys     []string
	impls    []ast.FnDecl
	nameSeq  uint32
	userFns  uint32
}

// NewFnRegistry seeds the registry with the builtin catalog built from
// enabledFns (§"Builtin calls" gating); no user functions exist yet.
func NewFnRegistry(enabledFns []builtins.Fn) *FnRegistry {
	return &FnRegistry{
		builtins: builtins.Build(enabledFns),
		byReturn: make(map[string][]Sig),
	}
}

// NextName returns a fresh, never-before-used function name (func_0,
// func_1, ...), mirroring wgslsmith's FnRegistry::next_fn.
func (r *FnRegistry) NextName() string {
	name := fmt.Sprintf("func_%d", r.nameSeq)
	r.nameSeq++
	return name
}

// Insert records a newly generated user function's signature and body so
// later calls can target it and the module assembler can emit it.
func (r *FnRegistry) Insert(sig Sig, decl ast.FnDecl) {
	key := returnKey(sig.ReturnType)
	if _, ok := r.byReturn[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.byReturn[key] = append(r.byReturn[key], sig)
	r.impls = append(r.impls, decl)
	r.userFns++
}

// Impls returns every user function declaration synthesized so far, in
// insertion order.
func (r *FnRegistry) Impls() []ast.FnDecl {
	return r.impls
}

// UserSigsReturning returns every user-defined function signature that
// returns ty, in insertion order.
func (r *FnRegistry) UserSigsReturning(ty ast.DataType) []Sig {
	return r.byReturn[returnKey(&ty)]
}

// BuiltinsReturning returns every builtin overload that returns ty, in
// catalog order.
func (r *FnRegistry) BuiltinsReturning(ty ast.DataType) []builtins.Overload {
	return r.builtins.Candidates(ty)
}

// Count is the number of user functions synthesized so far (used to enforce
// the MaxFns option).
func (r *FnRegistry) Count() uint32 {
	return r.userFns
}

func returnKey(ty *ast.DataType) string {
	if ty == nil {
		return "void"
	}
	switch ty.Kind {
	case ast.KindScalar:
		return fmt.Sprintf("s:%s", ty.Scalar)
	case ast.KindVector:
		return fmt.Sprintf("v%d:%s", ty.VecLen, ty.Scalar)
	case ast.KindStruct:
		return "t:" + ty.Struct.Name
	default:
		return fmt.Sprintf("?:%s", ty.String())
	}
}
