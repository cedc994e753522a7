package ast

import (
	"fmt"
	"strings"
)

// GlobalVarAttr is an attribute attached to a global variable declaration.
type GlobalVarAttr struct {
	Group   *int32
	Binding *int32
}

// VarQualifier is the <storage_class, access_mode> annotation on a var decl.
type VarQualifier struct {
	StorageClass StorageClass
	AccessMode   *AccessMode // nil means "use the storage class default"
}

// GlobalVarDecl is a module-scope `var` declaration.
type GlobalVarDecl struct {
	Attr        GlobalVarAttr
	Qualifier   *VarQualifier
	Name        string
	Type        DataType
	Initializer *ExprNode
}

// GlobalConstDecl is a module-scope `const` declaration.
type GlobalConstDecl struct {
	Name        string
	Type        DataType
	Initializer ExprNode
}

// ShaderStage is a function's pipeline stage attribute.
type ShaderStage uint8

const (
	StageNone ShaderStage = iota
	StageCompute
	StageVertex
	StageFragment
)

// BuiltinInput names a builtin-input attribute on an entry point parameter
// (e.g. @builtin(local_invocation_id)).
type BuiltinInput string

const (
	LocalInvocationID   BuiltinInput = "local_invocation_id"
	LocalInvocationIdx  BuiltinInput = "local_invocation_index"
	WorkgroupID         BuiltinInput = "workgroup_id"
	GlobalInvocationID  BuiltinInput = "global_invocation_id"
	NumWorkgroups       BuiltinInput = "num_workgroups"
)

// FnParam is one parameter of a function declaration.
type FnParam struct {
	Name    string
	Type    DataType
	Builtin *BuiltinInput // non-nil only on entry point parameters
}

// FnDecl is a function declaration: either the compute entry point or a
// user function synthesized on demand during expression generation (§3
// "Lifecycle").
type FnDecl struct {
	Name           string
	Params         []FnParam
	ReturnType     *DataType // nil for void
	Body           []Statement
	Stage          ShaderStage
	WorkgroupSizeX uint32 // valid when Stage == StageCompute
}

// Module is a complete generated shader program.
type Module struct {
	Structs   []*StructDecl
	Consts    []GlobalConstDecl
	Vars      []GlobalVarDecl
	Functions []FnDecl
}

// EntryPoint returns the module's compute entry point, or nil if none was
// generated yet.
func (m *Module) EntryPoint() *FnDecl {
	for i := range m.Functions {
		if m.Functions[i].Stage == StageCompute {
			return &m.Functions[i]
		}
	}
	return nil
}

func (a GlobalVarAttr) String() string {
	var parts []string
	if a.Group != nil {
		parts = append(parts, fmt.Sprintf("@group(%d)", *a.Group))
	}
	if a.Binding != nil {
		parts = append(parts, fmt.Sprintf("@binding(%d)", *a.Binding))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + " "
}

func (d GlobalVarDecl) String() string {
	var b strings.Builder
	b.WriteString(d.Attr.String())
	b.WriteString("var")
	if d.Qualifier != nil {
		fmt.Fprintf(&b, "<%s", d.Qualifier.StorageClass)
		if d.Qualifier.AccessMode != nil {
			fmt.Fprintf(&b, ", %s", *d.Qualifier.AccessMode)
		}
		b.WriteString(">")
	}
	fmt.Fprintf(&b, " %s: %s", d.Name, d.Type)
	if d.Initializer != nil {
		fmt.Fprintf(&b, " = %s", d.Initializer)
	}
	b.WriteString(";\n")
	return b.String()
}

func (d GlobalConstDecl) String() string {
	return fmt.Sprintf("const %s: %s = %s;\n", d.Name, d.Type, d.Initializer)
}

func (p FnParam) String() string {
	if p.Builtin != nil {
		return fmt.Sprintf("@builtin(%s) %s: %s", *p.Builtin, p.Name, p.Type)
	}
	return fmt.Sprintf("%s: %s", p.Name, p.Type)
}

func (f FnDecl) String() string {
	var b strings.Builder
	if f.Stage == StageCompute {
		fmt.Fprintf(&b, "@compute @workgroup_size(%d)\n", f.WorkgroupSizeX)
	}
	b.WriteString("fn ")
	b.WriteString(f.Name)
	b.WriteString("(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteString(")")
	if f.ReturnType != nil {
		fmt.Fprintf(&b, " -> %s", *f.ReturnType)
	}
	b.WriteString(" ")
	writeBlock(&b, f.Body, 0)
	b.WriteString("\n")
	return b.String()
}

// String renders the module as WGSL source text: struct declarations,
// global consts and vars, then functions, each in declaration order.
func (m *Module) String() string {
	var b strings.Builder
	for _, s := range m.Structs {
		b.WriteString(s.String())
		b.WriteString("\n")
	}
	for _, c := range m.Consts {
		b.WriteString(c.String())
	}
	for _, v := range m.Vars {
		b.WriteString(v.String())
	}
	b.WriteString("\n")
	for _, fn := range m.Functions {
		b.WriteString(fn.String())
		b.WriteString("\n")
	}
	return b.String()
}
