// Package ast defines the in-memory representation of generated shader
// programs: types, expressions, statements, structs, and modules.
//
// Trees built here are produced exclusively by the generator (see
// internal/generator); nothing in this package parses source text. Every
// ExprNode carries the DataType the source language's type rules would
// assign it (invariant I-TY-1), so downstream passes (the evaluator, the
// reconditioner, alias analysis, the printer) never need to re-derive types.
package ast

import (
	"fmt"
	"strings"
)

// ScalarKind is one of the scalar value kinds the shading language supports.
type ScalarKind uint8

const (
	Bool ScalarKind = iota
	I32
	U32
	F32
	AtomicU32
	AtomicI32
)

func (k ScalarKind) String() string {
	switch k {
	case Bool:
		return "bool"
	case I32:
		return "i32"
	case U32:
		return "u32"
	case F32:
		return "f32"
	case AtomicU32:
		return "atomic<u32>"
	case AtomicI32:
		return "atomic<i32>"
	default:
		return "unknown"
	}
}

// IsInteger reports whether k is i32 or u32.
func (k ScalarKind) IsInteger() bool {
	return k == I32 || k == U32
}

// StorageClass is one of the address spaces a variable can live in.
type StorageClass uint8

const (
	Function StorageClass = iota
	Private
	WorkGroup
	Uniform
	Storage
)

func (c StorageClass) String() string {
	switch c {
	case Function:
		return "function"
	case Private:
		return "private"
	case WorkGroup:
		return "workgroup"
	case Uniform:
		return "uniform"
	case Storage:
		return "storage"
	default:
		return "unknown"
	}
}

// DefaultAccessMode returns the access mode implied when a var declaration
// in this storage class does not specify one explicitly.
func (c StorageClass) DefaultAccessMode() AccessMode {
	switch c {
	case Storage:
		return ReadWrite
	case Uniform:
		return Read
	default:
		return ReadWrite
	}
}

// AccessMode controls whether a memory view may be read, written, or both.
type AccessMode uint8

const (
	Read AccessMode = iota
	Write
	ReadWrite
)

func (m AccessMode) String() string {
	switch m {
	case Read:
		return "read"
	case Write:
		return "write"
	case ReadWrite:
		return "read_write"
	default:
		return "unknown"
	}
}

// MemoryView describes the memory a Ref or Ptr type refers to: the type
// stored there, the storage class it lives in, and the access mode granted
// through this particular view.
type MemoryView struct {
	Inner        DataType
	StorageClass StorageClass
	AccessMode   AccessMode
}

// NewMemoryView builds a view with the storage class's default access mode.
func NewMemoryView(inner DataType, class StorageClass) MemoryView {
	return MemoryView{Inner: inner, StorageClass: class, AccessMode: class.DefaultAccessMode()}
}

// WithType returns a copy of the view over a different inner type.
func (v MemoryView) WithType(inner DataType) MemoryView {
	v.Inner = inner
	return v
}

func (v MemoryView) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, %s", v.StorageClass, v.Inner)
	if v.AccessMode != v.StorageClass.DefaultAccessMode() {
		fmt.Fprintf(&b, ", %s", v.AccessMode)
	}
	return b.String()
}

// DataTypeKind discriminates the variants of DataType.
type DataTypeKind uint8

const (
	KindScalar DataTypeKind = iota
	KindVector
	KindArray
	KindStruct
	KindPtr
	KindRef
)

// DataType is the type of an AST node: a scalar, a fixed-width vector, an
// array (constant-sized or runtime-sized), a nominal struct, or a pointer /
// reference memory view. It is a value type (safe to compare/copy); structs
// are compared and hashed by name only (nominal typing), carried by the
// shared *StructDecl pointer.
type DataType struct {
	Kind DataTypeKind

	Scalar ScalarKind // valid when Kind == KindScalar or KindVector

	VecLen uint8 // valid when Kind == KindVector, one of 2,3,4

	Elem       *DataType // valid when Kind == KindArray
	ArrayLen   uint32    // valid when Kind == KindArray and ArrayLenSet
	ArrayLenSet bool

	Struct *StructDecl // valid when Kind == KindStruct

	View *MemoryView // valid when Kind == KindPtr or KindRef
}

// ScalarType constructs a scalar DataType.
func ScalarType(k ScalarKind) DataType {
	return DataType{Kind: KindScalar, Scalar: k}
}

// VectorType constructs a vector DataType of the given length and component kind.
func VectorType(n uint8, k ScalarKind) DataType {
	return DataType{Kind: KindVector, Scalar: k, VecLen: n}
}

// ArrayType constructs a (possibly unsized) array DataType.
func ArrayType(elem DataType, length *uint32) DataType {
	dt := DataType{Kind: KindArray, Elem: &elem}
	if length != nil {
		dt.ArrayLen = *length
		dt.ArrayLenSet = true
	}
	return dt
}

// StructType constructs a DataType referring to a nominal struct.
func StructType(decl *StructDecl) DataType {
	return DataType{Kind: KindStruct, Struct: decl}
}

// PtrType constructs a pointer DataType over a memory view.
func PtrType(view MemoryView) DataType {
	return DataType{Kind: KindPtr, View: &view}
}

// RefType constructs a reference DataType over a memory view.
func RefType(view MemoryView) DataType {
	return DataType{Kind: KindRef, View: &view}
}

// IsScalar reports whether dt is a scalar type.
func (dt DataType) IsScalar() bool { return dt.Kind == KindScalar }

// IsVector reports whether dt is a vector type.
func (dt DataType) IsVector() bool { return dt.Kind == KindVector }

// IsInteger reports whether dt is a scalar or vector of i32/u32.
func (dt DataType) IsInteger() bool {
	s, ok := dt.AsScalarKind()
	return ok && s.IsInteger()
}

// Equal reports structural equality; structs compare by declaration name.
func (dt DataType) Equal(other DataType) bool {
	if dt.Kind != other.Kind {
		return false
	}
	switch dt.Kind {
	case KindScalar:
		return dt.Scalar == other.Scalar
	case KindVector:
		return dt.Scalar == other.Scalar && dt.VecLen == other.VecLen
	case KindArray:
		if dt.ArrayLenSet != other.ArrayLenSet || (dt.ArrayLenSet && dt.ArrayLen != other.ArrayLen) {
			return false
		}
		return dt.Elem.Equal(*other.Elem)
	case KindStruct:
		return dt.Struct != nil && other.Struct != nil && dt.Struct.Name == other.Struct.Name
	case KindPtr, KindRef:
		return dt.View.StorageClass == other.View.StorageClass &&
			dt.View.AccessMode == other.View.AccessMode &&
			dt.View.Inner.Equal(other.View.Inner)
	default:
		return false
	}
}

// Map rewrites the scalar component type of a scalar or vector type,
// leaving structure (vector length) unchanged. Panics for any other kind:
// callers only ever map scalar/vector types (per §4.A).
func (dt DataType) Map(scalar ScalarKind) DataType {
	switch dt.Kind {
	case KindScalar:
		return ScalarType(scalar)
	case KindVector:
		return VectorType(dt.VecLen, scalar)
	default:
		panic(fmt.Sprintf("Map: unsupported type kind %v", dt.Kind))
	}
}

// Dereference strips a single Ref layer, returning the referenced type. It
// does not dereference a Ptr (only §4.A's AddressOf/Deref unary ops do
// that); non-Ref types are returned unchanged.
func (dt DataType) Dereference() DataType {
	if dt.Kind == KindRef {
		return dt.View.Inner
	}
	return dt
}

// AsScalarKind returns the component scalar kind of a scalar, vector, or
// reference-to-scalar/vector type.
func (dt DataType) AsScalarKind() (ScalarKind, bool) {
	switch dt.Kind {
	case KindScalar, KindVector:
		return dt.Scalar, true
	case KindRef:
		return dt.View.Inner.AsScalarKind()
	default:
		return 0, false
	}
}

// AsMemoryView returns the memory view carried by a Ptr or Ref type.
func (dt DataType) AsMemoryView() (MemoryView, bool) {
	if dt.Kind == KindPtr || dt.Kind == KindRef {
		return *dt.View, true
	}
	return MemoryView{}, false
}

func (dt DataType) String() string {
	switch dt.Kind {
	case KindScalar:
		return dt.Scalar.String()
	case KindVector:
		return fmt.Sprintf("vec%d<%s>", dt.VecLen, dt.Scalar)
	case KindArray:
		if dt.ArrayLenSet {
			return fmt.Sprintf("array<%s, %d>", dt.Elem, dt.ArrayLen)
		}
		return fmt.Sprintf("array<%s>", dt.Elem)
	case KindStruct:
		return dt.Struct.Name
	case KindPtr:
		return fmt.Sprintf("ptr<%s>", dt.View)
	case KindRef:
		return fmt.Sprintf("ref<%s>", dt.View)
	default:
		return "<invalid type>"
	}
}
