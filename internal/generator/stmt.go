package generator

import (
	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/shadefuzz/shadefuzz/internal/scope"
)

type stmtKind uint8

const (
	stmtLetDecl stmtKind = iota
	stmtVarDecl
	stmtAssignment
	stmtIf
	stmtReturn
	stmtLoop
	stmtSwitch
	stmtForLoop
	stmtBreak
	stmtContinue
)

// stmtWeight mirrors wgslsmith's gen_stmt weighting table (generator/gen/stmt.rs):
// declarations and assignment are common, control flow is less common, and
// a bare return is rare (it usually ends the block early).
func stmtWeight(k stmtKind) int {
	switch k {
	case stmtLetDecl, stmtVarDecl, stmtAssignment:
		return 10
	case stmtIf, stmtLoop, stmtSwitch, stmtForLoop, stmtBreak, stmtContinue:
		return 5
	case stmtReturn:
		return 1
	default:
		return 1
	}
}

// genStmt picks one statement kind, weighted, from those legal at the
// current position (§4.E "Candidate statements"): break/continue only
// inside a loop, assignment only when a mutable binding is in scope, and
// compound control flow only below MaxBlockDepth.
func (g *Generator) genStmt() ast.Statement {
	allowed := []stmtKind{stmtLetDecl, stmtVarDecl, stmtReturn}

	if g.isLoop {
		allowed = append(allowed, stmtBreak, stmtContinue)
	}
	if g.scope.HasMutable() {
		allowed = append(allowed, stmtAssignment)
	}
	if uint32(g.blockDepth) < g.options.MaxBlockDepth {
		allowed = append(allowed, stmtIf, stmtLoop, stmtSwitch, stmtForLoop)
	}

	kind := chooseWeighted(g.rng, allowed, stmtWeight)

	switch kind {
	case stmtLetDecl:
		return g.genLetStmt()
	case stmtVarDecl:
		return g.genVarStmt()
	case stmtAssignment:
		return g.genAssignmentStmt()
	case stmtIf:
		return g.genIfStmt()
	case stmtReturn:
		return g.genReturnStmt()
	case stmtLoop:
		return g.genLoopStmt()
	case stmtSwitch:
		return g.genSwitchStmt()
	case stmtForLoop:
		return g.genForStmt()
	case stmtBreak:
		return ast.Break()
	case stmtContinue:
		return ast.Continue()
	default:
		panic("genStmt: no statement kind was allowed")
	}
}

// chooseWeighted performs a weighted random choice without allocating a
// cumulative table every call; fine at the small N (<=10) this generator
// ever deals with.
func chooseWeighted[T any](rng interface{ Intn(int) int }, items []T, weight func(T) int) T {
	total := 0
	for _, it := range items {
		total += weight(it)
	}
	r := rng.Intn(total)
	for _, it := range items {
		w := weight(it)
		if r < w {
			return it
		}
		r -= w
	}
	return items[len(items)-1]
}

func (g *Generator) genLetStmt() ast.Statement {
	if g.options.EnablePointers && g.scope.HasMutable() && g.rng.Float64() < 0.2 {
		mutables := g.scope.Mutable()
		b := mutables[g.rng.Intn(len(mutables))]
		view := ast.NewMemoryView(b.Type, ast.Function)
		ref := ast.NewVar(b.Name, ast.RefType(view))
		init := ast.NewUnOp(ast.AddressOf, ref)
		name := g.scope.NextName()
		g.scope.InsertLet(name, init.Type)
		return ast.LetDecl(name, init)
	}

	candidates := g.typeUniverse(anyPlainType)
	ty := candidates[g.rng.Intn(len(candidates))]
	init := g.genExpr(ty)
	name := g.scope.NextName()
	g.scope.InsertLet(name, ty)
	return ast.LetDecl(name, init)
}

func (g *Generator) genVarStmt() ast.Statement {
	candidates := g.typeUniverse(anyPlainType)
	ty := candidates[g.rng.Intn(len(candidates))]
	init := g.genExpr(ty)
	name := g.scope.NextName()
	g.scope.InsertVar(name, ty)
	return ast.VarDecl(name, init)
}

// anyPlainType accepts every type except reference/pointer views, which
// never belong on the right-hand side of a let/var initializer directly.
func anyPlainType(ty ast.DataType) bool {
	return ty.Kind != ast.KindPtr && ty.Kind != ast.KindRef
}

func (g *Generator) genAssignmentStmt() ast.Statement {
	mutables := g.scope.Mutable()
	b := mutables[g.rng.Intn(len(mutables))]

	var lhs ast.ExprNode
	switch {
	case b.Type.Kind == ast.KindVector && g.rng.Float64() < 0.7:
		accessor := g.genSwizzle(b.Type.VecLen, ast.ScalarType(b.Type.Scalar))
		lhs = ast.NewPostfix(ast.NewVar(b.Name, b.Type), ast.ScalarType(b.Type.Scalar), ast.MemberPostfix(accessor))
	case b.Type.Kind == ast.KindArray:
		index := g.genExpr(ast.ScalarType(ast.U32))
		lhs = ast.NewPostfix(ast.NewVar(b.Name, b.Type), *b.Type.Elem, ast.IndexPostfix(index))
	default:
		lhs = ast.NewVar(b.Name, b.Type)
	}

	rhs := g.genExpr(lhs.Type)
	return ast.Assignment(ast.ExprLhs(lhs), ast.AssignSimple, rhs)
}

func (g *Generator) genIfStmt() ast.Statement {
	cond := g.genExpr(ast.ScalarType(ast.Bool))
	count := g.rangeU32(g.options.BlockMinStmts, g.options.BlockMaxStmts)
	_, body := g.genStmtBlock(count)
	return ast.If(cond, body, nil)
}

func (g *Generator) genReturnStmt() ast.Statement {
	if g.returnType == nil {
		return ast.Return(nil)
	}
	value := g.genExpr(*g.returnType)
	return ast.Return(&value)
}

func (g *Generator) genLoopStmt() ast.Statement {
	count := g.rangeU32(g.options.BlockMinStmts, g.options.BlockMaxStmts)

	wasLoop := g.isLoop
	g.isLoop = true
	_, body := g.genStmtBlock(count)
	g.isLoop = wasLoop

	return ast.Loop(body)
}

func (g *Generator) genSwitchStmt() ast.Statement {
	selector := g.genExpr(ast.ScalarType(ast.I32))
	caseCount := g.rng.Intn(5)

	seen := make(map[int32]bool)
	cases := make([]ast.SwitchCase, caseCount)
	for i := range cases {
		blockSize := g.rangeU32(g.options.BlockMinStmts, g.options.BlockMaxStmts)

		var value int32
		for {
			value = g.genI32()
			if !seen[value] {
				seen[value] = true
				break
			}
		}

		_, body := g.genStmtBlock(blockSize)
		cases[i] = ast.SwitchCase{Value: ast.NewLit(ast.LitI32(value)), Body: body}
	}

	defaultSize := g.rangeU32(g.options.BlockMinStmts, g.options.BlockMaxStmts)
	_, defaultBody := g.genStmtBlock(defaultSize)

	return ast.Switch(selector, cases, defaultBody)
}

func (g *Generator) genForStmt() ast.Statement {
	saved := g.scope
	g.scope = g.scope.Clone()

	var header ast.ForLoopHeader
	if g.rng.Float64() < 0.8 {
		loopVarTy := ast.ScalarType(ast.I32)
		loopVar := g.scope.NextName()

		var initValue ast.ExprNode
		switch {
		case g.rng.Float64() < 0.7:
			initValue = ast.NewLit(ast.LitI32(g.genI32()))
		case g.rng.Float64() < 0.5:
			initValue = g.genExpr(loopVarTy)
		default:
			initValue = ast.NewLit(ast.LitI32(0))
		}
		initStmt := ast.VarDecl(loopVar, initValue)
		header.Init = &initStmt
		g.scope.InsertVar(loopVar, loopVarTy)

		switch r := g.rng.Intn(10); {
		case r <= 1:
			// no condition: an infinite loop relying on a break
		case r <= 5:
			cond := g.genExpr(ast.ScalarType(ast.Bool))
			header.Condition = &cond
		default:
			op := comparisonOps[g.rng.Intn(len(comparisonOps))]
			cond := ast.NewBinOp(op, ast.NewVar(loopVar, loopVarTy), ast.NewLit(ast.LitI32(g.genI32())))
			header.Condition = &cond
		}

		if g.rng.Float64() < 0.8 {
			var update ast.Statement
			if g.rng.Float64() < 0.7 {
				op := ast.AssignPlus
				if g.rng.Float64() < 0.5 {
					op = ast.AssignMinus
				}
				update = ast.Assignment(ast.ExprLhs(ast.NewVar(loopVar, loopVarTy)), op, ast.NewLit(ast.LitI32(1)))
			} else {
				update = g.genAssignmentStmt()
			}
			header.Update = &update
		}
	} else if g.rng.Float64() < 0.5 {
		cond := g.genExpr(ast.ScalarType(ast.Bool))
		header.Condition = &cond
	}

	bodySize := g.rangeU32(g.options.BlockMinStmts, g.options.BlockMaxStmts)

	wasLoop := g.isLoop
	g.isLoop = true
	_, body := g.genStmtBlock(bodySize)
	g.isLoop = wasLoop

	g.scope = saved
	return ast.ForLoop(header, body)
}

// genStmtBlock generates up to maxCount statements in a child scope cloned
// from the current one, tracking each let/var it generates so that later
// statements in the same block can see them, and stopping early if a
// terminal statement (return/break/continue/fallthrough) is generated,
// since WGSL requires those to be the last statement in their block
// (§4.E "Block termination").
//
// g.scope is restored to its pre-call value before returning; the scope the
// block actually ended with (bindings and all) is returned alongside the
// body so a caller that wants to keep generating in the same scope — the
// entry point body, stitching its mandatory trailer onto a random block —
// can explicitly adopt it.
func (g *Generator) genStmtBlock(maxCount uint32) (scope.Scope, []ast.Statement) {
	saved := g.scope
	g.scope = g.scope.Clone()
	g.blockDepth++

	var block []ast.Statement
	for i := uint32(0); i < maxCount; i++ {
		stmt := g.genStmt()
		block = append(block, stmt)
		if stmt.IsTerminal() {
			break
		}
	}

	g.blockDepth--
	result := g.scope
	g.scope = saved
	return result, block
}

// genStmtBlockWithReturn generates a block the way genStmtBlock does, then
// guarantees it ends in a return of returnType if it doesn't already
// (every WGSL function with a return type must end reachably with one).
func (g *Generator) genStmtBlockWithReturn(maxCount uint32, returnType *ast.DataType) []ast.Statement {
	savedReturn := g.returnType
	g.returnType = returnType

	resultScope, block := g.genStmtBlock(maxCount)

	if returnType != nil {
		needsReturn := len(block) == 0 || block[len(block)-1].Kind != ast.StmtReturn
		if needsReturn {
			saved := g.scope
			g.scope = resultScope
			value := g.genExpr(*returnType)
			g.scope = saved
			block = append(block, ast.Return(&value))
		}
	}

	g.returnType = savedReturn
	return block
}
