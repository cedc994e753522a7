// Package recondition implements component H: rewriting a generated module
// so that its execution is free of undefined behavior. Two passes run in
// sequence (§4.H): wrapper insertion replaces every UB-capable arithmetic
// binary operator with a call to a SAFE_* function, and loop-iteration
// capping bounds every Loop/ForLoop to a fixed number of iterations.
package recondition

import (
	"fmt"
	"math"

	"github.com/shadefuzz/shadefuzz/internal/ast"
)

// IterLimit is the compile-time LIMIT every reconditioned loop is capped
// to (§4.H pass 2).
const IterLimit = 100

// loopCountersName is the module-private fixed-size array every capped
// loop increments into.
const loopCountersName = "LOOP_COUNTERS"

// Result is the output of Recondition: the rewritten module plus the total
// number of loops instrumented, needed to size the LOOP_COUNTERS array.
type Result struct {
	Module    *ast.Module
	LoopCount uint32
}

type wrapperKey struct {
	op   ast.BinOp
	kind ast.ScalarKind
	len  uint8 // 0 for scalar
}

type reconditioner struct {
	wrappers  map[wrapperKey]string
	wrapFns   []ast.FnDecl
	loopCount uint32
}

// Recondition runs both passes over m in place and returns the loop count
// needed to size the LOOP_COUNTERS declaration. The module's function list
// is augmented with exactly the SAFE_* wrapper definitions actually used.
func Recondition(m *ast.Module) Result {
	r := &reconditioner{wrappers: make(map[wrapperKey]string)}
	for i := range m.Functions {
		m.Functions[i].Body = r.block(m.Functions[i].Body)
	}
	m.Functions = append(m.Functions, r.wrapFns...)
	if r.loopCount > 0 {
		n := r.loopCount
		m.Vars = append([]ast.GlobalVarDecl{{
			Qualifier: &ast.VarQualifier{StorageClass: ast.Private},
			Name:      loopCountersName,
			Type:      ast.ArrayType(ast.ScalarType(ast.U32), &n),
		}}, m.Vars...)
	}
	return Result{Module: m, LoopCount: r.loopCount}
}

// ---- pass 1: wrapper insertion ----------------------------------------

func isUBCapable(op ast.BinOp) bool {
	switch op {
	case ast.Plus, ast.Minus, ast.Times, ast.Divide, ast.Mod:
		return true
	default:
		return false
	}
}

func (r *reconditioner) expr(e ast.ExprNode) ast.ExprNode {
	switch e.Expr.Kind {
	case ast.ExprTypeCons:
		args := make([]ast.ExprNode, len(e.Expr.ConsArgs))
		for i, a := range e.Expr.ConsArgs {
			args[i] = r.expr(a)
		}
		e.Expr.ConsArgs = args
		return e
	case ast.ExprPostfix:
		inner := r.expr(*e.Expr.Inner)
		e.Expr.Inner = &inner
		return e
	case ast.ExprUnOp:
		inner := r.expr(*e.Expr.Inner)
		e.Expr.Inner = &inner
		return e
	case ast.ExprBinOp:
		left := r.expr(*e.Expr.Left)
		right := r.expr(*e.Expr.Right)
		e.Expr.Left = &left
		e.Expr.Right = &right
		if isUBCapable(e.Expr.BinOp) && isArithScalarOrVector(e.Type) {
			name := r.wrapperFor(e.Expr.BinOp, e.Type)
			return ast.NewFnCall(name, []ast.ExprNode{left, right}, e.Type)
		}
		return e
	case ast.ExprFnCall:
		args := make([]ast.ExprNode, len(e.Expr.Args))
		for i, a := range e.Expr.Args {
			args[i] = r.expr(a)
		}
		e.Expr.Args = args
		return e
	default:
		return e
	}
}

func isArithScalarOrVector(ty ast.DataType) bool {
	var kind ast.ScalarKind
	switch ty.Kind {
	case ast.KindScalar:
		kind = ty.Scalar
	case ast.KindVector:
		kind = ty.Scalar
	default:
		return false
	}
	return kind == ast.I32 || kind == ast.U32 || kind == ast.F32
}

func (r *reconditioner) wrapperFor(op ast.BinOp, ty ast.DataType) string {
	key := wrapperKey{op: op, kind: ty.Scalar, len: vecLenOf(ty)}
	if name, ok := r.wrappers[key]; ok {
		return name
	}
	var decl ast.FnDecl
	if ty.Kind == ast.KindVector {
		scalarName := r.wrapperFor(op, ast.ScalarType(ty.Scalar))
		decl = genVectorWrapper(op, ty, scalarName)
	} else {
		decl = genScalarWrapper(op, ty.Scalar)
	}
	r.wrappers[key] = decl.Name
	r.wrapFns = append(r.wrapFns, decl)
	return decl.Name
}

func vecLenOf(ty ast.DataType) uint8 {
	if ty.Kind == ast.KindVector {
		return ty.VecLen
	}
	return 0
}

func opCode(op ast.BinOp) string {
	switch op {
	case ast.Plus:
		return "add"
	case ast.Minus:
		return "sub"
	case ast.Times:
		return "mul"
	case ast.Divide:
		return "div"
	case ast.Mod:
		return "mod"
	default:
		return "op"
	}
}

func typeName(ty ast.DataType) string {
	if ty.Kind == ast.KindVector {
		return fmt.Sprintf("vec%d%s", ty.VecLen, ty.Scalar)
	}
	return ty.Scalar.String()
}

func wrapperName(op ast.BinOp, ty ast.DataType) string {
	return fmt.Sprintf("SAFE_%s_%s", opCode(op), typeName(ty))
}

func genVectorWrapper(op ast.BinOp, ty ast.DataType, scalarWrapper string) ast.FnDecl {
	a := ast.FnParam{Name: "a", Type: ty}
	b := ast.FnParam{Name: "b", Type: ty}
	scalarTy := ast.ScalarType(ty.Scalar)
	members := []string{"x", "y", "z", "w"}
	args := make([]ast.ExprNode, ty.VecLen)
	for i := uint8(0); i < ty.VecLen; i++ {
		compA := ast.NewPostfix(ast.NewVar("a", ty), scalarTy, ast.MemberPostfix(members[i]))
		compB := ast.NewPostfix(ast.NewVar("b", ty), scalarTy, ast.MemberPostfix(members[i]))
		args[i] = ast.NewFnCall(scalarWrapper, []ast.ExprNode{compA, compB}, scalarTy)
	}
	result := ast.NewTypeCons(ty, args)
	retTy := ty
	return ast.FnDecl{
		Name:       wrapperName(op, ty),
		Params:     []ast.FnParam{a, b},
		ReturnType: &retTy,
		Body:       []ast.Statement{ast.Return(&result)},
	}
}

func genScalarWrapper(op ast.BinOp, kind ast.ScalarKind) ast.FnDecl {
	ty := ast.ScalarType(kind)
	a := ast.NewVar("a", ty)
	b := ast.NewVar("b", ty)
	params := []ast.FnParam{{Name: "a", Type: ty}, {Name: "b", Type: ty}}
	retTy := ty
	name := wrapperName(op, ty)

	if kind == ast.F32 {
		return ast.FnDecl{Name: name, Params: params, ReturnType: &retTy, Body: floatWrapperBody(op, a, b, ty)}
	}

	var guard *ast.ExprNode
	switch {
	case kind == ast.I32 && op != ast.Plus:
		g := i32Guard(op, a, b)
		guard = &g
	case kind == ast.U32 && op != ast.Plus:
		g := u32Guard(op, a, b)
		guard = &g
	}

	normal := ast.NewBinOp(op, a, b)
	var body []ast.Statement
	if guard == nil {
		body = []ast.Statement{ast.Return(&normal)}
	} else {
		body = []ast.Statement{ast.If(*guard, []ast.Statement{ast.Return(&a)}, ast.ElseFinal([]ast.Statement{ast.Return(&normal)}))}
	}
	return ast.FnDecl{Name: name, Params: params, ReturnType: &retTy, Body: body}
}

func floatWrapperBody(op ast.BinOp, a, b ast.ExprNode, ty ast.DataType) []ast.Statement {
	naive := ast.NewBinOp(op, a, b)
	r := ast.NewVar("r", ty)
	absR := ast.NewFnCall("abs", []ast.ExprNode{r}, ty)
	lo := ast.NewLit(ast.LitF32(0.1))
	hi := ast.NewLit(ast.LitF32(16777216))
	inRange := ast.NewBinOp(ast.LogAnd,
		ast.NewBinOp(ast.LessEqual, lo, absR),
		ast.NewBinOp(ast.LessEqual, absR, hi))
	return []ast.Statement{
		ast.LetDecl("r", naive),
		ast.If(inRange, []ast.Statement{ast.Return(&r)}, ast.ElseFinal([]ast.Statement{ast.Return(&a)})),
	}
}

func i32Guard(op ast.BinOp, a, b ast.ExprNode) ast.ExprNode {
	minI32 := ast.NewLit(ast.LitI32(math.MinInt32))
	maxI32 := ast.NewLit(ast.LitI32(math.MaxInt32))
	negOne := ast.NewLit(ast.LitI32(-1))
	zero := ast.NewLit(ast.LitI32(0))

	switch op {
	case ast.Minus:
		return ast.NewBinOp(ast.LogOr,
			ast.NewBinOp(ast.LogAnd, ast.NewBinOp(ast.Less, b, zero), ast.NewBinOp(ast.Greater, a, ast.NewBinOp(ast.Plus, maxI32, b))),
			ast.NewBinOp(ast.LogAnd, ast.NewBinOp(ast.Greater, b, zero), ast.NewBinOp(ast.Less, a, ast.NewBinOp(ast.Plus, minI32, b))))
	case ast.Times:
		overflow := ast.NewBinOp(ast.LogAnd, ast.NewBinOp(ast.NotEqual, b, zero),
			ast.NewBinOp(ast.LogOr,
				ast.NewBinOp(ast.Greater, a, ast.NewBinOp(ast.Divide, maxI32, b)),
				ast.NewBinOp(ast.Less, a, ast.NewBinOp(ast.Divide, minI32, b))))
		return ast.NewBinOp(ast.LogOr,
			ast.NewBinOp(ast.LogOr,
				ast.NewBinOp(ast.LogAnd, ast.NewBinOp(ast.Equal, a, negOne), ast.NewBinOp(ast.Equal, b, minI32)),
				ast.NewBinOp(ast.LogAnd, ast.NewBinOp(ast.Equal, a, minI32), ast.NewBinOp(ast.Equal, b, negOne))),
			overflow)
	case ast.Divide, ast.Mod:
		return ast.NewBinOp(ast.LogOr,
			ast.NewBinOp(ast.Equal, b, zero),
			ast.NewBinOp(ast.LogAnd, ast.NewBinOp(ast.Equal, a, minI32), ast.NewBinOp(ast.Equal, b, negOne)))
	default:
		return ast.NewLit(ast.LitBool(false))
	}
}

func u32Guard(op ast.BinOp, a, b ast.ExprNode) ast.ExprNode {
	maxU32 := ast.NewLit(ast.LitU32(math.MaxUint32))
	zero := ast.NewLit(ast.LitU32(0))

	switch op {
	case ast.Minus:
		return ast.NewBinOp(ast.Less, a, b)
	case ast.Times:
		return ast.NewBinOp(ast.LogAnd, ast.NewBinOp(ast.NotEqual, b, zero),
			ast.NewBinOp(ast.Greater, a, ast.NewBinOp(ast.Divide, maxU32, b)))
	case ast.Divide, ast.Mod:
		return ast.NewBinOp(ast.Equal, b, zero)
	default:
		return ast.NewLit(ast.LitBool(false))
	}
}

// ---- pass 2: loop-iteration capping -------------------------------------

func (r *reconditioner) block(body []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, len(body))
	for i, s := range body {
		out[i] = r.stmt(s)
	}
	return out
}

func (r *reconditioner) stmt(s ast.Statement) ast.Statement {
	switch s.Kind {
	case ast.StmtLetDecl, ast.StmtVarDecl:
		s.Value = r.expr(s.Value)
	case ast.StmtAssignment:
		if s.Lhs.Kind == ast.LhsExpr {
			s.Lhs.Expr = r.expr(s.Lhs.Expr)
		}
		s.Value = r.expr(s.Value)
	case ast.StmtCompound:
		s.Body = r.block(s.Body)
	case ast.StmtIf:
		s.Cond = r.expr(s.Cond)
		s.Body = r.block(s.Body)
		s.Else = r.elseChain(s.Else)
	case ast.StmtReturn:
		if s.ReturnValueSet {
			v := r.expr(*s.ReturnValue)
			s.ReturnValue = &v
		}
	case ast.StmtLoop:
		s.Body = r.block(s.Body)
		return r.capLoop(s)
	case ast.StmtForLoop:
		if s.ForHeader.Init != nil {
			init := r.stmt(*s.ForHeader.Init)
			s.ForHeader.Init = &init
		}
		if s.ForHeader.Condition != nil {
			c := r.expr(*s.ForHeader.Condition)
			s.ForHeader.Condition = &c
		}
		if s.ForHeader.Update != nil {
			u := r.stmt(*s.ForHeader.Update)
			s.ForHeader.Update = &u
		}
		s.Body = r.block(s.Body)
		return r.capLoop(s)
	case ast.StmtSwitch:
		s.SwitchSelector = r.expr(s.SwitchSelector)
		cases := make([]ast.SwitchCase, len(s.SwitchCases))
		for i, c := range s.SwitchCases {
			c.Body = r.block(c.Body)
			cases[i] = c
		}
		s.SwitchCases = cases
		s.SwitchDefault = r.block(s.SwitchDefault)
	case ast.StmtFnCall:
		args := make([]ast.ExprNode, len(s.FnCallArgs))
		for i, a := range s.FnCallArgs {
			args[i] = r.expr(a)
		}
		s.FnCallArgs = args
	}
	return s
}

func (r *reconditioner) elseChain(e *ast.Else) *ast.Else {
	if e == nil {
		return nil
	}
	if e.IsFinal {
		return ast.ElseFinal(r.block(e.Body))
	}
	cond := r.expr(e.Cond)
	return ast.ElseIf(cond, r.block(e.Body), r.elseChain(e.Next))
}

// capLoop prepends the iteration-limit guard and counter increment to s's
// body and allocates s a fresh LOOP_COUNTERS slot.
func (r *reconditioner) capLoop(s ast.Statement) ast.Statement {
	idx := r.loopCount
	r.loopCount++

	counter := ast.NewPostfix(
		ast.NewVar(loopCountersName, ast.ArrayType(ast.ScalarType(ast.U32), nil)),
		ast.ScalarType(ast.U32),
		ast.IndexPostfix(ast.NewLit(ast.LitU32(idx))))

	guardStmt := ast.If(
		ast.NewBinOp(ast.GreaterEqual, counter, ast.NewLit(ast.LitU32(IterLimit))),
		[]ast.Statement{ast.Break()},
		nil)
	incrStmt := ast.Assignment(ast.ExprLhs(counter), ast.AssignPlus, ast.NewLit(ast.LitU32(1)))

	s.Body = append([]ast.Statement{guardStmt, incrStmt}, s.Body...)
	return s
}
