package eval

import (
	"math"
	"math/bits"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/shadefuzz/shadefuzz/internal/builtins"
)

// Evaluator walks a function body folding every subexpression that turns
// out to be a compile-time constant, tracking let/const bindings the same
// way the generator's own scope does (component C), but with its own
// name->Value map since it cares about values, not types.
type Evaluator struct {
	globals map[string]Value
	scopes  []map[string]Value
}

// New returns an Evaluator with no globals registered yet.
func New() *Evaluator {
	return &Evaluator{globals: make(map[string]Value)}
}

// RegisterGlobalConsts folds each global const's initializer and, if it
// turns out to be a compile-time constant, records its value so later
// expressions that reference the const by name can be folded too.
func (e *Evaluator) RegisterGlobalConsts(consts []ast.GlobalConstDecl) {
	for _, c := range consts {
		_, v, ok := e.concretizeExpr(c.Initializer)
		if ok {
			e.globals[c.Name] = v
		}
	}
}

func (e *Evaluator) enterScope() { e.scopes = append(e.scopes, make(map[string]Value)) }
func (e *Evaluator) exitScope()  { e.scopes = e.scopes[:len(e.scopes)-1] }

func (e *Evaluator) lookup(name string) (Value, bool) {
	for i := len(e.scopes) - 1; i >= 0; i-- {
		if v, ok := e.scopes[i][name]; ok {
			return v, true
		}
	}
	v, ok := e.globals[name]
	return v, ok
}

func (e *Evaluator) bind(name string, v Value, ok bool) {
	if !ok || len(e.scopes) == 0 {
		return
	}
	e.scopes[len(e.scopes)-1][name] = v
}

// ConcretizeFn folds every constant subexpression in decl's body, tracking
// let bindings that themselves turn out to be constant so later statements
// can fold references to them too (var initializers are not tracked).
func (e *Evaluator) ConcretizeFn(decl ast.FnDecl) ast.FnDecl {
	e.scopes = nil
	e.enterScope()
	decl.Body = e.concretizeBlock(decl.Body)
	e.exitScope()
	return decl
}

func (e *Evaluator) concretizeBlock(body []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, len(body))
	for i, s := range body {
		out[i] = e.concretizeStmt(s)
	}
	return out
}

func (e *Evaluator) concretizeStmt(s ast.Statement) ast.Statement {
	switch s.Kind {
	case ast.StmtLetDecl:
		node, v, ok := e.concretizeExpr(s.Value)
		e.bind(s.Ident, v, ok)
		return ast.LetDecl(s.Ident, node)

	case ast.StmtVarDecl:
		// A var is mutable, so its initial value is never treated as a
		// standing constant binding even when the initializer folds.
		node, _, _ := e.concretizeExpr(s.Value)
		return ast.VarDecl(s.Ident, node)

	case ast.StmtAssignment:
		node, _, _ := e.concretizeExpr(s.Value)
		return ast.Assignment(s.Lhs, s.Op, node)

	case ast.StmtCompound:
		e.enterScope()
		body := e.concretizeBlock(s.Body)
		e.exitScope()
		return ast.Compound(body)

	case ast.StmtIf:
		cond, _, _ := e.concretizeExpr(s.Cond)
		e.enterScope()
		body := e.concretizeBlock(s.Body)
		e.exitScope()
		var els *ast.Else
		if s.Else != nil {
			els = e.concretizeElse(s.Else)
		}
		return ast.If(cond, body, els)

	case ast.StmtReturn:
		if !s.ReturnValueSet {
			return ast.Return(nil)
		}
		v, _, _ := e.concretizeExpr(*s.ReturnValue)
		return ast.Return(&v)

	case ast.StmtSwitch:
		sel, _, _ := e.concretizeExpr(s.SwitchSelector)
		cases := make([]ast.SwitchCase, len(s.SwitchCases))
		for i, c := range s.SwitchCases {
			e.enterScope()
			cases[i] = ast.SwitchCase{Value: c.Value, Body: e.concretizeBlock(c.Body)}
			e.exitScope()
		}
		e.enterScope()
		dflt := e.concretizeBlock(s.SwitchDefault)
		e.exitScope()
		return ast.Switch(sel, cases, dflt)

	case ast.StmtFnCall:
		args := make([]ast.ExprNode, len(s.FnCallArgs))
		for i, a := range s.FnCallArgs {
			args[i], _, _ = e.concretizeExpr(a)
		}
		return ast.FnCallStmt(s.FnCallName, args)

	case ast.StmtLoop:
		e.enterScope()
		body := e.concretizeBlock(s.Body)
		e.exitScope()
		return ast.Loop(body)

	case ast.StmtForLoop:
		e.enterScope()
		header := ast.ForLoopHeader{}
		if s.ForHeader.Init != nil {
			init := e.concretizeStmt(*s.ForHeader.Init)
			header.Init = &init
		}
		if s.ForHeader.Condition != nil {
			cond, _, _ := e.concretizeExpr(*s.ForHeader.Condition)
			header.Condition = &cond
		}
		body := e.concretizeBlock(s.Body)
		// The update clause runs in the loop's own scope but after the
		// body, so it is concretized last even though it is declared first.
		if s.ForHeader.Update != nil {
			update := e.concretizeStmt(*s.ForHeader.Update)
			header.Update = &update
		}
		e.exitScope()
		return ast.ForLoop(header, body)

	default: // Break, Continue, Fallthrough carry no expressions
		return s
	}
}

func (e *Evaluator) concretizeElse(el *ast.Else) *ast.Else {
	if el.IsFinal {
		e.enterScope()
		body := e.concretizeBlock(el.Body)
		e.exitScope()
		return ast.ElseFinal(body)
	}
	cond, _, _ := e.concretizeExpr(el.Cond)
	e.enterScope()
	body := e.concretizeBlock(el.Body)
	e.exitScope()
	var next *ast.Else
	if el.Next != nil {
		next = e.concretizeElse(el.Next)
	}
	return ast.ElseIf(cond, body, next)
}

// concretizeExpr folds node if possible, returning the (possibly rebuilt)
// node, its value, and whether that value is a genuine compile-time
// constant. A non-constant operand never prevents the surrounding node from
// being rebuilt with its own (possibly folded) children — only from being
// folded itself.
func (e *Evaluator) concretizeExpr(node ast.ExprNode) (ast.ExprNode, Value, bool) {
	switch node.Expr.Kind {
	case ast.ExprLit:
		return node, scalar(node.Expr.Lit), true

	case ast.ExprTypeCons:
		args := make([]ast.ExprNode, len(node.Expr.ConsArgs))
		vals := make([]Value, len(node.Expr.ConsArgs))
		allOK := true
		for i, a := range node.Expr.ConsArgs {
			var ok bool
			args[i], vals[i], ok = e.concretizeExpr(a)
			allOK = allOK && ok
		}
		newNode := ast.NewTypeCons(node.Type, args)
		if !allOK {
			return newNode, Value{}, false
		}
		return newNode, vector(vals), true

	case ast.ExprUnOp:
		inner, iv, iok := e.concretizeExpr(*node.Expr.Inner)
		newNode := ast.NewUnOp(node.Expr.UnOp, inner)
		if !iok {
			return newNode, Value{}, false
		}
		v, ok := e.evalUnOp(node.Expr.UnOp, iv)
		if !ok {
			return e.defaultNode(node.Type), Value{}, false
		}
		return newNode, v, true

	case ast.ExprBinOp:
		l, lv, lok := e.concretizeExpr(*node.Expr.Left)
		r, rv, rok := e.concretizeExpr(*node.Expr.Right)
		newNode := ast.NewBinOp(node.Expr.BinOp, l, r)

		if !lok || !rok {
			// Even without both operands constant, a known-zero right
			// operand already reveals UB for divide/mod: a divide collapses
			// to its left operand, a mod to the default node.
			if rok && rv.isZero() {
				switch node.Expr.BinOp {
				case ast.Divide:
					return l, Value{}, false
				case ast.Mod:
					return e.defaultNode(node.Type), Value{}, false
				}
			}
			return newNode, Value{}, false
		}

		v, ok := e.evalBinOp(node.Expr.BinOp, lv, rv)
		if !ok {
			return e.defaultNode(node.Type), Value{}, false
		}
		return newNode, v, true

	case ast.ExprFnCall:
		args := make([]ast.ExprNode, len(node.Expr.Args))
		vals := make([]Value, len(node.Expr.Args))
		oks := make([]bool, len(node.Expr.Args))
		allOK := true
		for i, a := range node.Expr.Args {
			args[i], vals[i], oks[i] = e.concretizeExpr(a)
			allOK = allOK && oks[i]
		}
		newNode := ast.NewFnCall(node.Expr.FnName, args, node.Type)
		if !allOK {
			// Some arguments didn't fold, but the ones that did may still
			// pin down static UB on their own.
			if staticallyUB(builtins.Fn(node.Expr.FnName), vals, oks) {
				return e.defaultNode(node.Type), Value{}, false
			}
			return newNode, Value{}, false
		}
		switch builtins.Fn(node.Expr.FnName) {
		case builtins.Abs, builtins.CountOneBits, builtins.CountLeadingZeros,
			builtins.CountTrailingZeros, builtins.ReverseBits,
			builtins.FirstLeadingBit, builtins.FirstTrailingBit,
			builtins.Exp, builtins.Exp2, builtins.Min, builtins.Max,
			builtins.Select, builtins.ExtractBits, builtins.Clamp,
			builtins.InsertBits, builtins.Dot, builtins.All, builtins.Any:
		default:
			// Not a name evaluateBuiltin folds: keep the call, with no value.
			return newNode, Value{}, false
		}
		v, ok := evaluateBuiltin(node.Expr.FnName, vals)
		if !ok {
			return e.defaultNode(node.Type), Value{}, false
		}
		return newNode, v, true

	case ast.ExprPostfix:
		inner, _, _ := e.concretizeExpr(*node.Expr.Inner)
		return ast.NewPostfix(inner, node.Type, node.Expr.Postfixes...), Value{}, false

	case ast.ExprVar:
		if v, ok := e.lookup(node.Expr.Var); ok {
			return node, v, true
		}
		return node, Value{}, false

	default:
		return node, Value{}, false
	}
}

// defaultNode substitutes a harmless literal of ty in place of an expression
// whose evaluation turned out to be undefined behavior (overflow, a shift
// out of range, an out-of-domain builtin argument), mirroring the
// concretizer's ErrorHandling::ReplaceWithDefault mode.
func (e *Evaluator) defaultNode(ty ast.DataType) ast.ExprNode {
	switch ty.Kind {
	case ast.KindVector:
		args := make([]ast.ExprNode, ty.VecLen)
		for i := range args {
			args[i] = ast.NewLit(defaultLit(ty.Scalar))
		}
		return ast.NewTypeCons(ty, args)
	default:
		return ast.NewLit(defaultLit(ty.Scalar))
	}
}

func defaultLit(k ast.ScalarKind) ast.Lit {
	switch k {
	case ast.U32:
		return ast.LitU32(1)
	case ast.F32:
		return ast.LitF32(1)
	case ast.Bool:
		return ast.LitBool(true)
	default:
		return ast.LitI32(1)
	}
}

// staticallyUB reports whether a builtin call is provably undefined
// behavior from the subset of its arguments that folded to constants, even
// though not every argument did (§4.G's partial-information case: a call
// like clamp(x, 5u, 3u) is UB no matter what x turns out to be, because its
// bounds alone are already inverted).
func staticallyUB(fn builtins.Fn, vals []Value, oks []bool) bool {
	scalarOK := func(i int) (ast.Lit, bool) {
		if i >= len(vals) || !oks[i] || vals[i].isVec {
			return ast.Lit{}, false
		}
		return vals[i].lit, true
	}

	switch fn {
	case builtins.Clamp:
		lo, lok := scalarOK(1)
		hi, hok := scalarOK(2)
		if !lok || !hok {
			return false
		}
		switch {
		case lo.Kind == ast.I32 && hi.Kind == ast.I32:
			return lo.I32 > hi.I32
		case lo.Kind == ast.U32 && hi.Kind == ast.U32:
			return lo.U32 > hi.U32
		case lo.Kind == ast.F32 && hi.Kind == ast.F32:
			return lo.F32 > hi.F32
		}
		return false

	case builtins.ExtractBits:
		offset, ook := scalarOK(1)
		count, cok := scalarOK(2)
		return bitRangeOverflows(offset, ook, count, cok)

	case builtins.InsertBits:
		offset, ook := scalarOK(2)
		count, cok := scalarOK(3)
		return bitRangeOverflows(offset, ook, count, cok)
	}
	return false
}

func bitRangeOverflows(offset ast.Lit, ook bool, count ast.Lit, cok bool) bool {
	if !ook || !cok {
		return false
	}
	o, ok := asU32(offset)
	if !ok {
		return false
	}
	c, ok := asU32(count)
	if !ok {
		return false
	}
	return uint64(o)+uint64(c) > 32
}

func (e *Evaluator) evalUnOp(op ast.UnOp, v Value) (Value, bool) {
	if v.isVec {
		out := make([]Value, len(v.vector))
		for i, elem := range v.vector {
			r, ok := e.evalUnOp(op, elem)
			if !ok {
				return Value{}, false
			}
			out[i] = r
		}
		return vector(out), true
	}

	l := v.lit
	switch op {
	case ast.Negate:
		switch l.Kind {
		case ast.I32:
			if l.I32 == math.MinInt32 {
				// -MinInt32 overflows i32; WGSL negation wraps, matching
				// wrapping_neg's fixed point at the most negative value.
				return scalar(l), true
			}
			return scalar(ast.LitI32(-l.I32)), true
		case ast.F32:
			return scalar(ast.LitF32(-l.F32)), true
		}
	case ast.BitNot:
		switch l.Kind {
		case ast.I32:
			return scalar(ast.LitI32(^l.I32)), true
		case ast.U32:
			return scalar(ast.LitU32(^l.U32)), true
		}
	case ast.Not:
		if l.Kind == ast.Bool {
			return scalar(ast.LitBool(!l.Bool)), true
		}
	}
	return Value{}, false
}

func (e *Evaluator) evalBinOp(op ast.BinOp, l, r Value) (Value, bool) {
	if l.isVec || r.isVec {
		return e.evalBinOpVector(op, l, r)
	}
	return evalBinOpScalar(op, l.lit, r.lit)
}

// evalBinOpVector evaluates op element-wise; a scalar operand paired with a
// vector is broadcast to the vector's length first (§4.D "Mixed vector
// arithmetic").
func (e *Evaluator) evalBinOpVector(op ast.BinOp, l, r Value) (Value, bool) {
	var lv, rv []Value
	switch {
	case l.isVec && r.isVec:
		if len(l.vector) != len(r.vector) {
			return Value{}, false
		}
		lv, rv = l.vector, r.vector
	case l.isVec:
		lv = l.vector
		rv = make([]Value, len(lv))
		for i := range rv {
			rv[i] = r
		}
	default:
		rv = r.vector
		lv = make([]Value, len(rv))
		for i := range lv {
			lv[i] = l
		}
	}

	out := make([]Value, len(lv))
	for i := range lv {
		v, ok := e.evalBinOp(op, lv[i], rv[i])
		if !ok {
			return Value{}, false
		}
		out[i] = v
	}
	return vector(out), true
}

// evalBinOpScalar folds the operators the original concretizer folds:
// shifts and the five arithmetic operators. Bitwise and/or/xor, the logical
// operators, and comparisons are deliberately left un-folded, matching
// crates/concretizer/src/concretizer.rs's eval_bin_op_scalar fallthrough.
func evalBinOpScalar(op ast.BinOp, l, r ast.Lit) (Value, bool) {
	switch op {
	case ast.LShift, ast.RShift:
		return evalShift(op, l, r)
	case ast.Plus, ast.Minus, ast.Times, ast.Divide, ast.Mod:
		switch {
		case l.Kind == ast.I32 && r.Kind == ast.I32:
			res, ok := intArith(op, l.I32, r.I32)
			return scalar(ast.LitI32(res)), ok
		case l.Kind == ast.U32 && r.Kind == ast.U32:
			res, ok := uintArith(op, l.U32, r.U32)
			return scalar(ast.LitU32(res)), ok
		case l.Kind == ast.F32 && r.Kind == ast.F32:
			res, ok := floatArith(op, l.F32, r.F32)
			return scalar(ast.LitF32(res)), ok
		}
	}
	return Value{}, false
}

// intArith performs two's-complement wrapping arithmetic: Go's int32
// +,-,* already wrap on overflow the same way Rust's wrapping_add/sub/mul
// do, and Go's / and % give the same truncating results Rust's
// wrapping_div/wrapping_rem give (including i32::MIN / -1 == i32::MIN).
func intArith(op ast.BinOp, l, r int32) (int32, bool) {
	switch op {
	case ast.Plus:
		return l + r, true
	case ast.Minus:
		return l - r, true
	case ast.Times:
		return l * r, true
	case ast.Divide:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case ast.Mod:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	default:
		return 0, false
	}
}

func uintArith(op ast.BinOp, l, r uint32) (uint32, bool) {
	switch op {
	case ast.Plus:
		return l + r, true
	case ast.Minus:
		return l - r, true
	case ast.Times:
		return l * r, true
	case ast.Divide:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case ast.Mod:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	default:
		return 0, false
	}
}

// floatArith mirrors concretizer.rs's binop_float: compute, then require the
// result to fall in the representable range in_float_range checks.
func floatArith(op ast.BinOp, l, r float32) (float32, bool) {
	var result float32
	switch op {
	case ast.Plus:
		result = l + r
	case ast.Minus:
		result = l - r
	case ast.Times:
		result = l * r
	case ast.Divide:
		result = l / r
	case ast.Mod:
		result = float32(math.Mod(float64(l), float64(r)))
	default:
		return 0, false
	}
	return inFloatRange(result)
}

// inFloatRange mirrors concretizer.rs's in_float_range: only magnitudes in
// [0.1, 16777216] are treated as precisely representable enough to fold.
func inFloatRange(f float32) (float32, bool) {
	abs := float32(math.Abs(float64(f)))
	if abs < 0.1 || abs > 16777216 {
		return 0, false
	}
	return f, true
}

// evalShift mirrors concretizer.rs's binop_int_shift + eval_bin_op_shift:
// the shift amount must be in range, and for left shifts the bits shifted
// out must all equal the sign bit (equivalently: must not change it).
func evalShift(op ast.BinOp, l, r ast.Lit) (Value, bool) {
	var shiftBy uint32
	switch r.Kind {
	case ast.U32:
		shiftBy = r.U32
	case ast.I32:
		if r.I32 < 0 {
			return Value{}, false
		}
		shiftBy = uint32(r.I32)
	default:
		return Value{}, false
	}
	if shiftBy >= 32 {
		return Value{}, false
	}

	switch l.Kind {
	case ast.I32:
		lv := l.I32
		if op == ast.LShift {
			lz := uint32(bits.LeadingZeros32(uint32(lv)))
			lo := uint32(bits.LeadingZeros32(^uint32(lv)))
			if lz < shiftBy+1 && lo < shiftBy+1 {
				return Value{}, false
			}
			return scalar(ast.LitI32(lv << shiftBy)), true
		}
		return scalar(ast.LitI32(lv >> shiftBy)), true

	case ast.U32:
		lv := l.U32
		if op == ast.LShift {
			if uint32(bits.LeadingZeros32(lv)) < shiftBy {
				return Value{}, false
			}
			return scalar(ast.LitU32(lv << shiftBy)), true
		}
		return scalar(ast.LitU32(lv >> shiftBy)), true

	default:
		return Value{}, false
	}
}
