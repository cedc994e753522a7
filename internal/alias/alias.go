// Package alias implements component I: a sound-or-reject points-to
// analysis over a reconditioned module's functions, used to decide whether
// a module containing pointer parameters might alias and should be
// rejected by the caller (§4.I). Analysis never panics and never returns
// an error; a shader is simply accepted or rejected.
package alias

import "github.com/shadefuzz/shadefuzz/internal/ast"

// accessKind distinguishes a read from a write access to a memory location.
type accessKind uint8

const (
	read accessKind = iota
	write
)

// access is one (root identifier, kind) pair recorded against a memory
// location while walking a function body.
type access struct {
	root string
	kind accessKind
}

// funcInfo accumulates, per function, the points-to set for each pointer
// parameter (root variable/global names the parameter may have been bound
// to at some call site) and the set of accesses made against each root.
type funcInfo struct {
	decl       *ast.FnDecl
	pointerArg map[string]bool          // parameter name -> is a pointer parameter
	pointsTo   map[string]map[string]bool // pointer param name -> root ids it may alias
	accesses   map[string][]access        // root id -> accesses recorded directly in this function
	calls      []callSite
}

type callSite struct {
	callee string
	args   []string // root id (or "" if not a simple var/addr-of-var argument) per call argument
}

// Check runs the full analysis over m and reports whether the module is
// safe to keep: true means no aliasing was detected (or pointers are
// entirely absent), false means the module should be rejected.
func Check(m *ast.Module) bool {
	infos := make(map[string]*funcInfo, len(m.Functions))
	order := make([]string, 0, len(m.Functions))
	for i := range m.Functions {
		fn := &m.Functions[i]
		info := &funcInfo{decl: fn, pointerArg: make(map[string]bool), pointsTo: make(map[string]map[string]bool), accesses: make(map[string][]access)}
		for _, p := range fn.Params {
			if p.Type.Kind == ast.KindPtr {
				info.pointerArg[p.Name] = true
				info.pointsTo[p.Name] = make(map[string]bool)
			}
		}
		walkBody(fn.Body, info)
		infos[fn.Name] = info
		order = append(order, fn.Name)
	}

	// Propagate points-to sets for pointer arguments from call-site roots,
	// and accumulate callee access sets into callers (reverse call order;
	// recursion is forbidden so a single backward pass over declaration
	// order already respects the call graph for generator-produced code).
	for i := len(order) - 1; i >= 0; i-- {
		info := infos[order[i]]
		for _, call := range info.calls {
			callee, ok := infos[call.callee]
			if !ok {
				continue
			}
			for argIdx, root := range call.args {
				if argIdx >= len(callee.decl.Params) || root == "" {
					continue
				}
				pname := callee.decl.Params[argIdx].Name
				if callee.pointerArg[pname] {
					callee.pointsTo[pname][root] = true
				}
			}
			for root, accs := range callee.accesses {
				expanded := root
				if callee.pointerArg[root] {
					// substitute the callee's parameter root with every
					// concrete location it may point to at this call site.
					for concrete := range callee.pointsTo[root] {
						info.accesses[concrete] = append(info.accesses[concrete], accs...)
					}
					continue
				}
				info.accesses[expanded] = append(info.accesses[expanded], accs...)
			}
		}
	}

	for _, info := range infos {
		if hasAliasingAccess(info) {
			return false
		}
	}
	return true
}

// hasAliasingAccess reports whether any memory location touched by info's
// function has both a write access and another distinct access identifier
// touching the same location (§4.I final step).
func hasAliasingAccess(info *funcInfo) bool {
	for _, accs := range info.accesses {
		hasWrite := false
		idents := make(map[string]bool)
		for _, a := range accs {
			idents[a.root] = true
			if a.kind == write {
				hasWrite = true
			}
		}
		if hasWrite && len(idents) > 1 {
			return true
		}
		// A single identifier writing and reading the same location through
		// itself is not aliasing; two identifiers sharing a write is.
		if hasWrite && len(idents) == 1 {
			// distinct access entries under one identifier are fine.
			continue
		}
	}
	return false
}

func walkBody(body []ast.Statement, info *funcInfo) {
	for _, s := range body {
		walkStmt(s, info)
	}
}

func walkStmt(s ast.Statement, info *funcInfo) {
	switch s.Kind {
	case ast.StmtLetDecl, ast.StmtVarDecl:
		walkExpr(s.Value, read, info)
	case ast.StmtAssignment:
		if s.Lhs.Kind == ast.LhsExpr {
			walkExpr(s.Lhs.Expr, write, info)
		}
		walkExpr(s.Value, read, info)
	case ast.StmtCompound:
		walkBody(s.Body, info)
	case ast.StmtIf:
		walkExpr(s.Cond, read, info)
		walkBody(s.Body, info)
		walkElse(s.Else, info)
	case ast.StmtReturn:
		if s.ReturnValueSet {
			walkExpr(*s.ReturnValue, read, info)
		}
	case ast.StmtLoop:
		walkBody(s.Body, info)
	case ast.StmtForLoop:
		if s.ForHeader.Init != nil {
			walkStmt(*s.ForHeader.Init, info)
		}
		if s.ForHeader.Condition != nil {
			walkExpr(*s.ForHeader.Condition, read, info)
		}
		if s.ForHeader.Update != nil {
			walkStmt(*s.ForHeader.Update, info)
		}
		walkBody(s.Body, info)
	case ast.StmtSwitch:
		walkExpr(s.SwitchSelector, read, info)
		for _, c := range s.SwitchCases {
			walkBody(c.Body, info)
		}
		walkBody(s.SwitchDefault, info)
	case ast.StmtFnCall:
		recordCall(s.FnCallName, s.FnCallArgs, info)
		walkCallArgs(s.FnCallArgs, info)
	}
}

func walkElse(e *ast.Else, info *funcInfo) {
	if e == nil {
		return
	}
	if e.IsFinal {
		walkBody(e.Body, info)
		return
	}
	walkExpr(e.Cond, read, info)
	walkBody(e.Body, info)
	walkElse(e.Next, info)
}

// walkExpr records accesses against the root identifier of e (if any) and
// recurses into its subexpressions as reads.
func walkExpr(e ast.ExprNode, kind accessKind, info *funcInfo) {
	if root, ok := rootOf(e); ok {
		info.accesses[root] = append(info.accesses[root], access{root: root, kind: kind})
	}
	switch e.Expr.Kind {
	case ast.ExprTypeCons:
		for _, a := range e.Expr.ConsArgs {
			walkExpr(a, read, info)
		}
	case ast.ExprPostfix:
		walkExpr(*e.Expr.Inner, kind, info)
	case ast.ExprUnOp:
		if e.Expr.UnOp == ast.AddressOf {
			if root, ok := rootOf(*e.Expr.Inner); ok {
				info.accesses[root] = append(info.accesses[root], access{root: root, kind: read})
			}
			return
		}
		walkExpr(*e.Expr.Inner, read, info)
	case ast.ExprBinOp:
		walkExpr(*e.Expr.Left, read, info)
		walkExpr(*e.Expr.Right, read, info)
	case ast.ExprFnCall:
		recordCall(e.Expr.FnName, e.Expr.Args, info)
		walkCallArgs(e.Expr.Args, info)
	}
}

// walkCallArgs records reads for call arguments, except an address-of
// argument: &v only establishes a points-to edge (already captured by
// recordCall), it is not itself a read of v's value.
func walkCallArgs(args []ast.ExprNode, info *funcInfo) {
	for _, a := range args {
		if a.Expr.Kind == ast.ExprUnOp && a.Expr.UnOp == ast.AddressOf {
			continue
		}
		walkExpr(a, read, info)
	}
}

// rootOf extracts the identifier a VarRef, postfix chain, or dereference
// ultimately names, so accesses through `p.x` or `*p` are attributed to
// `p`'s memory location rather than treated as location-less.
func rootOf(e ast.ExprNode) (string, bool) {
	switch e.Expr.Kind {
	case ast.ExprVar:
		return e.Expr.Var, true
	case ast.ExprPostfix:
		return rootOf(*e.Expr.Inner)
	case ast.ExprUnOp:
		if e.Expr.UnOp == ast.Deref || e.Expr.UnOp == ast.AddressOf {
			return rootOf(*e.Expr.Inner)
		}
		return "", false
	default:
		return "", false
	}
}

func recordCall(name string, args []ast.ExprNode, info *funcInfo) {
	roots := make([]string, len(args))
	for i, a := range args {
		if root, ok := rootOf(a); ok {
			roots[i] = root
		}
	}
	info.calls = append(info.calls, callSite{callee: name, args: roots})
}
