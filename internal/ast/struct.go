package ast

import (
	"fmt"
	"strings"
)

// StructMember is one field of a struct declaration.
type StructMember struct {
	Name string
	Type DataType
}

// StructDecl is a nominal struct type. Structs compare by Name only
// (nominal typing) and are shared by pointer within a module: every
// reference to "the same" struct shares this instance.
type StructDecl struct {
	Name    string
	Members []StructMember

	// accessors maps any type reachable through this struct (directly, via
	// vector swizzle, or recursively through a member struct) to the set of
	// direct members through which it can be obtained. Built once at
	// construction and never mutated, so iteration order is deterministic
	// (insertion order) as required by §9 "Accessor chains".
	accessors     map[string][]StructMember
	accessibleTys []DataType
}

// NewStructDecl builds a struct declaration and its accessor map.
func NewStructDecl(name string, members []StructMember) *StructDecl {
	decl := &StructDecl{Name: name, Members: members}
	decl.buildAccessors()
	return decl
}

// AccessorsOf returns the members through which ty may be accessed (directly
// or indirectly). Returns nil if ty is not reachable through this struct.
func (d *StructDecl) AccessorsOf(ty DataType) []StructMember {
	return d.accessors[typeKey(ty)]
}

// AccessibleTypes returns every type reachable (directly or indirectly)
// through this struct, in the deterministic order they were first inserted.
func (d *StructDecl) AccessibleTypes() []DataType {
	return d.accessibleTys
}

// typeKey produces a stable map key for a DataType; only the shapes that
// can appear in an accessor map (scalar, vector, struct) are handled.
func typeKey(ty DataType) string {
	switch ty.Kind {
	case KindScalar:
		return "s:" + ty.Scalar.String()
	case KindVector:
		return fmt.Sprintf("v%d:%s", ty.VecLen, ty.Scalar)
	case KindStruct:
		return "t:" + ty.Struct.Name
	default:
		return fmt.Sprintf("?:%v", ty)
	}
}

func (d *StructDecl) buildAccessors() {
	d.accessors = make(map[string][]StructMember)
	seen := make(map[string]map[string]bool) // typeKey -> member name -> present

	insert := func(ty DataType, m StructMember) {
		key := typeKey(ty)
		if seen[key] == nil {
			seen[key] = make(map[string]bool)
		}
		if seen[key][m.Name] {
			return
		}
		seen[key][m.Name] = true
		if _, first := d.accessors[key]; !first {
			d.accessibleTys = append(d.accessibleTys, ty)
		}
		d.accessors[key] = append(d.accessors[key], m)
	}

	for _, m := range d.Members {
		insert(m.Type, m)

		switch m.Type.Kind {
		case KindScalar:
			// no further decomposition
		case KindVector:
			insert(ScalarType(m.Type.Scalar), m)
			for n := uint8(2); n < m.Type.VecLen; n++ {
				insert(VectorType(n, m.Type.Scalar), m)
			}
		case KindArray:
			// Arrays are not currently decomposed by the accessor map (§4.A).
		case KindStruct:
			for _, ty := range m.Type.Struct.AccessibleTypes() {
				insert(ty, m)
			}
		}
	}
}

func (d *StructDecl) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "struct %s {\n", d.Name)
	for _, m := range d.Members {
		fmt.Fprintf(&b, "    %s: %s;\n", m.Name, m.Type)
	}
	b.WriteString("};\n")
	return b.String()
}
