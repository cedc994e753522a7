package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Lit is a literal scalar value.
type Lit struct {
	Kind ScalarKind
	Bool bool
	I32  int32
	U32  uint32
	F32  float32
}

func LitBool(v bool) Lit     { return Lit{Kind: Bool, Bool: v} }
func LitI32(v int32) Lit     { return Lit{Kind: I32, I32: v} }
func LitU32(v uint32) Lit    { return Lit{Kind: U32, U32: v} }
func LitF32(v float32) Lit   { return Lit{Kind: F32, F32: v} }

func (l Lit) String() string {
	switch l.Kind {
	case Bool:
		return strconv.FormatBool(l.Bool)
	case I32:
		return strconv.FormatInt(int64(l.I32), 10)
	case U32:
		return strconv.FormatUint(uint64(l.U32), 10) + "u"
	case F32:
		return formatF32(l.F32)
	default:
		return "<invalid literal>"
	}
}

func formatF32(f float32) string {
	s := strconv.FormatFloat(float64(f), 'g', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// UnOp is a prefix unary operator.
type UnOp uint8

const (
	Negate UnOp = iota
	Not
	BitNot
	AddressOf
	Deref
)

func (op UnOp) String() string {
	switch op {
	case Negate:
		return "-"
	case Not:
		return "!"
	case BitNot:
		return "~"
	case AddressOf:
		return "&"
	case Deref:
		return "*"
	default:
		return "?"
	}
}

// TypeEval determines the result type of applying op to an operand of type t
// (§4.A): every unary operator preserves the operand type, except AddressOf
// (Ref -> Ptr) and Deref (Ptr -> Ref).
func (op UnOp) TypeEval(t DataType) DataType {
	switch op {
	case AddressOf:
		view, ok := t.AsMemoryView()
		if !ok || t.Kind != KindRef {
			panic("AddressOf requires a Ref operand")
		}
		return PtrType(view)
	case Deref:
		view, ok := t.AsMemoryView()
		if !ok || t.Kind != KindPtr {
			panic("Deref requires a Ptr operand")
		}
		return RefType(view)
	default:
		return t
	}
}

// BinOp is an infix binary operator.
type BinOp uint8

const (
	Plus BinOp = iota
	Minus
	Times
	Divide
	Mod
	BitAnd
	BitOr
	BitXor
	LShift
	RShift
	LogAnd
	LogOr
	Equal
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
)

func (op BinOp) String() string {
	switch op {
	case Plus:
		return "+"
	case Minus:
		return "-"
	case Times:
		return "*"
	case Divide:
		return "/"
	case Mod:
		return "%"
	case BitAnd:
		return "&"
	case BitOr:
		return "|"
	case BitXor:
		return "^"
	case LShift:
		return "<<"
	case RShift:
		return ">>"
	case LogAnd:
		return "&&"
	case LogOr:
		return "||"
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case Less:
		return "<"
	case LessEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterEqual:
		return ">="
	default:
		return "?"
	}
}

// IsArithOrBitwiseOrShift reports whether op is one that, per §4.A, produces
// the left operand's type unchanged.
func (op BinOp) IsArithOrBitwiseOrShift() bool {
	switch op {
	case Plus, Minus, Times, Divide, Mod, BitAnd, BitOr, BitXor, LShift, RShift:
		return true
	default:
		return false
	}
}

// IsComparison reports whether op is one of the six comparison operators.
func (op BinOp) IsComparison() bool {
	switch op {
	case Equal, NotEqual, Less, LessEqual, Greater, GreaterEqual:
		return true
	default:
		return false
	}
}

// TypeEval determines the result type of op applied to operands of type l, r
// (§4.A / ast/expr.rs BinOp::type_eval).
func (op BinOp) TypeEval(l, r DataType) DataType {
	switch {
	case op.IsArithOrBitwiseOrShift():
		return l
	case op == LogAnd || op == LogOr:
		return ScalarType(Bool)
	case op.IsComparison():
		return l.Map(Bool)
	default:
		panic(fmt.Sprintf("TypeEval: unhandled operator %v", op))
	}
}

// PostfixKind discriminates the two forms of postfix access.
type PostfixKind uint8

const (
	PostfixIndex PostfixKind = iota
	PostfixMember
)

// Postfix is a single array-index or member-access step in a postfix chain.
type Postfix struct {
	Kind   PostfixKind
	Index  *ExprNode // valid when Kind == PostfixIndex
	Member string    // valid when Kind == PostfixMember
}

func IndexPostfix(e ExprNode) Postfix   { return Postfix{Kind: PostfixIndex, Index: &e} }
func MemberPostfix(name string) Postfix { return Postfix{Kind: PostfixMember, Member: name} }

// ExprKind discriminates the variants of Expr.
type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprTypeCons
	ExprVar
	ExprPostfix
	ExprUnOp
	ExprBinOp
	ExprFnCall
)

// Expr is the payload of an ExprNode; exactly one field group is valid,
// selected by Kind.
type Expr struct {
	Kind ExprKind

	Lit Lit // ExprLit

	ConsArgs []ExprNode // ExprTypeCons

	Var string // ExprVar

	Inner     *ExprNode // ExprPostfix, ExprUnOp
	Postfixes []Postfix // ExprPostfix (one or more, applied left to right)

	UnOp UnOp // ExprUnOp

	BinOp       BinOp // ExprBinOp
	Left, Right *ExprNode

	FnName string     // ExprFnCall
	Args   []ExprNode // ExprFnCall
}

// ExprNode is an expression together with the type it evaluates to
// (invariant I-TY-1).
type ExprNode struct {
	Type DataType
	Expr Expr
}

func NewLit(l Lit) ExprNode {
	return ExprNode{Type: ScalarType(l.Kind), Expr: Expr{Kind: ExprLit, Lit: l}}
}

func NewTypeCons(ty DataType, args []ExprNode) ExprNode {
	return ExprNode{Type: ty, Expr: Expr{Kind: ExprTypeCons, ConsArgs: args}}
}

func NewVar(name string, ty DataType) ExprNode {
	return ExprNode{Type: ty, Expr: Expr{Kind: ExprVar, Var: name}}
}

func NewPostfix(inner ExprNode, ty DataType, chain ...Postfix) ExprNode {
	return ExprNode{Type: ty, Expr: Expr{Kind: ExprPostfix, Inner: &inner, Postfixes: chain}}
}

func NewUnOp(op UnOp, inner ExprNode) ExprNode {
	return ExprNode{Type: op.TypeEval(inner.Type), Expr: Expr{Kind: ExprUnOp, UnOp: op, Inner: &inner}}
}

func NewBinOp(op BinOp, l, r ExprNode) ExprNode {
	return ExprNode{Type: op.TypeEval(l.Type, r.Type), Expr: Expr{Kind: ExprBinOp, BinOp: op, Left: &l, Right: &r}}
}

func NewFnCall(name string, args []ExprNode, returnTy DataType) ExprNode {
	return ExprNode{Type: returnTy, Expr: Expr{Kind: ExprFnCall, FnName: name, Args: args}}
}

func (e ExprNode) String() string {
	switch e.Expr.Kind {
	case ExprLit:
		return e.Expr.Lit.String()
	case ExprTypeCons:
		return fmt.Sprintf("%s(%s)", e.Type, joinExprs(e.Expr.ConsArgs))
	case ExprVar:
		return e.Expr.Var
	case ExprPostfix:
		var b strings.Builder
		b.WriteString(e.Expr.Inner.String())
		for _, pf := range e.Expr.Postfixes {
			switch pf.Kind {
			case PostfixIndex:
				fmt.Fprintf(&b, "[%s]", pf.Index)
			case PostfixMember:
				fmt.Fprintf(&b, ".%s", pf.Member)
			}
		}
		return b.String()
	case ExprUnOp:
		return fmt.Sprintf("%s(%s)", e.Expr.UnOp, e.Expr.Inner)
	case ExprBinOp:
		return fmt.Sprintf("(%s) %s (%s)", e.Expr.Left, e.Expr.BinOp, e.Expr.Right)
	case ExprFnCall:
		return fmt.Sprintf("%s(%s)", e.Expr.FnName, joinExprs(e.Expr.Args))
	default:
		return "<invalid expr>"
	}
}

func joinExprs(es []ExprNode) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
