// Package scope is the lexical environment threaded through statement and
// expression generation: the let-bindings and var-declarations visible at
// the current point in the tree, plus the monotonic counter that names them
// (var_0, var_1, ...).
//
// Scope is a value type, not a stack: entering a nested block clones the
// current Scope, and the clone is simply dropped on the way back out,
// exactly as wgslsmith's generator/scope.rs does with its persistent vector
// (rpds::Vector) fields. That gives block-scoping for free — bindings
// introduced inside an if-arm or loop body vanish when the generator climbs
// back out of it — without any explicit push/pop bookkeeping.
package scope

import (
	"fmt"

	"github.com/shadefuzz/shadefuzz/internal/ast"
)

// Binding is one name/type pair visible in a Scope.
type Binding struct {
	Name string
	Type ast.DataType
	Mut  bool // true for a var-declaration, false for a let or parameter
}

// Scope is the set of names visible at one point in a generated function:
// immutable let-bindings and function parameters (consts) plus mutable
// var-declarations (vars).
type Scope struct {
	nextName uint32
	consts   []Binding
	vars     []Binding
}

// Empty returns a scope with no bindings, counting names from 0.
func Empty() Scope {
	return Scope{}
}

// Clone returns an independent copy of s; mutating the copy never affects s.
func (s Scope) Clone() Scope {
	clone := Scope{nextName: s.nextName}
	clone.consts = append([]Binding(nil), s.consts...)
	clone.vars = append([]Binding(nil), s.vars...)
	return clone
}

// InsertLet adds a read-only binding (a let-declaration or function
// parameter) to the scope.
func (s *Scope) InsertLet(name string, ty ast.DataType) {
	s.consts = append(s.consts, Binding{Name: name, Type: ty})
}

// InsertVar adds a mutable binding (a var-declaration) to the scope.
func (s *Scope) InsertVar(name string, ty ast.DataType) {
	s.vars = append(s.vars, Binding{Name: name, Type: ty, Mut: true})
}

// NextName returns a fresh local variable name (var_0, var_1, ...) and
// advances the counter. The counter is per-scope and Clone copies it, so
// names do not repeat along one chain of nested scopes; two blocks cloned
// from the same parent can hand out the same name, and a name handed out in
// a discarded clone can be handed out again by its parent.
func (s *Scope) NextName() string {
	name := fmt.Sprintf("var_%d", s.nextName)
	s.nextName++
	return name
}

// HasMutable reports whether any var-declaration is visible, i.e. whether an
// Assignment statement has somewhere to target.
func (s Scope) HasMutable() bool {
	return len(s.vars) > 0
}

// Mutable returns every mutable binding visible, in declaration order.
func (s Scope) Mutable() []Binding {
	return append([]Binding(nil), s.vars...)
}

// All returns every binding visible, consts then vars, in declaration order.
func (s Scope) All() []Binding {
	out := make([]Binding, 0, len(s.consts)+len(s.vars))
	out = append(out, s.consts...)
	out = append(out, s.vars...)
	return out
}

// OfType returns every visible binding (const or var) whose type equals ty,
// consts then vars, in declaration order. The caller picks among the result
// with its own PRNG draw, keeping the random choice outside this package so
// Scope stays a plain value type.
func (s Scope) OfType(ty ast.DataType) []Binding {
	var out []Binding
	for _, b := range s.consts {
		if b.Type.Equal(ty) {
			out = append(out, b)
		}
	}
	for _, b := range s.vars {
		if b.Type.Equal(ty) {
			out = append(out, b)
		}
	}
	return out
}
