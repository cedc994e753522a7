package generator

import (
	"fmt"
	"math/rand"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/shadefuzz/shadefuzz/internal/registry"
	"github.com/shadefuzz/shadefuzz/internal/scope"
)

// Generator builds one ast.Module from a PRNG and a set of Options. All of
// its state is local to the call: two Generators seeded identically and
// driven the same way produce byte-identical modules (P3), since nothing
// here reaches for global/package-level randomness or clock/hostname-based
// entropy.
type Generator struct {
	rng     *rand.Rand
	options Options

	types *registry.TypeRegistry
	fns   *registry.FnRegistry

	blockDepth int
	exprDepth  int
	isLoop     bool

	returnType   *ast.DataType
	globalScope  scope.Scope
	scope        scope.Scope
	currentBlock []ast.Statement
}

// New builds a Generator. seed drives every random decision made during
// generation; the caller is responsible for recording it (§6 "external
// interface" requires the seed to end up in the emitted shader metadata).
func New(seed uint64, options Options) *Generator {
	return &Generator{
		rng:         rand.New(rand.NewSource(int64(seed))),
		options:     options,
		types:       registry.NewTypeRegistry(),
		fns:         registry.NewFnRegistry(options.EnabledFns),
		globalScope: scope.Empty(),
		scope:       scope.Empty(),
	}
}

// GenModule generates a complete compute shader module: a pool of ordinary
// structs, a uniform input buffer and a storage output buffer, zero or more
// private globals, and the "main" entry point that reads from the uniform
// buffer and writes to the storage buffer.
func (g *Generator) GenModule() *ast.Module {
	structCount := g.rangeU32(g.options.MinStructs, g.options.MaxStructs)
	for i := uint32(1); i <= structCount; i++ {
		decl := g.genStruct(fmt.Sprintf("Struct_%d", i), registry.Any)
		g.types.RegisterStruct(decl)
	}

	uniformDecl := g.genStruct("UniformBuffer", registry.HostShareable)
	storageDecl := g.genStruct("StorageBuffer", registry.HostShareable)

	g.globalScope.InsertLet("u_input", ast.StructType(uniformDecl))

	uniformAccess := ast.Read
	storageAccess := ast.ReadWrite
	group0 := int32(0)
	binding0, binding1 := int32(0), int32(1)

	globalVars := []ast.GlobalVarDecl{
		{
			Attr:      ast.GlobalVarAttr{Group: &group0, Binding: &binding0},
			Qualifier: &ast.VarQualifier{StorageClass: ast.Uniform, AccessMode: &uniformAccess},
			Name:      "u_input",
			Type:      ast.StructType(uniformDecl),
		},
		{
			Attr:      ast.GlobalVarAttr{Group: &group0, Binding: &binding1},
			Qualifier: &ast.VarQualifier{StorageClass: ast.Storage, AccessMode: &storageAccess},
			Name:      "s_output",
			Type:      ast.StructType(storageDecl),
		},
	}

	extraGlobals := g.rng.Intn(6)
	for i := 0; i < extraGlobals; i++ {
		globalVars = append(globalVars, g.genGlobalVar(fmt.Sprintf("global%d", i)))
	}

	entry := g.genEntrypointFunction(ast.StructType(uniformDecl), ast.StructType(storageDecl))

	structs := append(g.types.Structs(), uniformDecl, storageDecl)

	return &ast.Module{
		Structs:   structs,
		Vars:      globalVars,
		Functions: append(g.fns.Impls(), entry),
	}
}

// genGlobalVar generates one private-storage global and registers it in the
// global scope as a mutable binding (§4.F "Global variables").
func (g *Generator) genGlobalVar(name string) ast.GlobalVarDecl {
	candidates := g.typeUniverse(registry.Any)
	ty := candidates[g.rng.Intn(len(candidates))]

	if g.rng.Float64() < 0.5 {
		length := uint32(g.rng.Intn(32) + 1)
		ty = ast.ArrayType(ty, &length)
	}

	// Scope tracks the variable's plain value type; mutability alone (the
	// Mut flag) is what lets later statements target it with an
	// assignment. A Ref/Ptr DataType is only ever synthesized ad hoc, for
	// the single expression that needs it (see genLetStmt's
	// EnablePointers branch).
	g.globalScope.InsertVar(name, ty)

	decl := ast.GlobalVarDecl{
		Qualifier: &ast.VarQualifier{StorageClass: ast.Private},
		Name:      name,
		Type:      ty,
	}
	// Array-typed globals never get a synthesized initializer: per §4.D,
	// an array value can only be produced top-level by reading an existing
	// variable of the exact same array type, and a freshly declared global
	// never has one in scope yet.
	if ty.Kind != ast.KindArray && g.rng.Float64() < 0.5 {
		init := g.genExpr(ty)
		decl.Initializer = &init
	}
	return decl
}

// genEntrypointFunction generates the `main` compute entry point: a body of
// ordinary statements followed by a mandatory read of u_input and a
// mandatory write to s_output, so every generated module exercises the
// uniform/storage boundary regardless of what the random body happened to
// produce.
func (g *Generator) genEntrypointFunction(inTy, outTy ast.DataType) ast.FnDecl {
	stmtCount := g.rangeU32(g.options.FnMinStmts, g.options.FnMaxStmts)

	saved := g.scope
	g.scope = g.globalScope.Clone()
	blockScope, block := g.genStmtBlock(stmtCount)
	g.scope = blockScope

	uInput := ast.NewVar("u_input", inTy)
	firstMember := inTy.Struct.Members[0]
	x := ast.NewPostfix(uInput, firstMember.Type, ast.MemberPostfix(firstMember.Name))
	block = append(block, ast.LetDecl(g.scope.NextName(), x))

	rhs := g.genExpr(outTy)
	lhs := ast.ExprLhs(ast.NewVar("s_output", outTy))
	block = append(block, ast.Assignment(lhs, ast.AssignSimple, rhs))

	g.scope = saved

	return ast.FnDecl{
		Name:           "main",
		Body:           block,
		Stage:          ast.StageCompute,
		WorkgroupSizeX: 1,
	}
}

// withScope runs fn with g.scope temporarily replaced by s, restoring the
// previous scope afterward — mirroring wgslsmith's Generator::with_scope,
// which exists so that entering a nested block never leaks bindings back
// into the caller. It returns the scope fn left behind.
func (g *Generator) withScope(s scope.Scope, fn func()) scope.Scope {
	old := g.scope
	g.scope = s
	fn()
	result := g.scope
	g.scope = old
	return result
}

func (g *Generator) rangeU32(lo, hi uint32) uint32 {
	if hi <= lo {
		return lo
	}
	return lo + uint32(g.rng.Intn(int(hi-lo+1)))
}

// typeUniverse returns the ground set of types a "pick any type" decision
// may choose from: the three numeric scalars, their vectors, bool and its
// vectors (only when filter accepts it), and every struct declared so far
// that passes filter.
func (g *Generator) typeUniverse(filter registry.Filter) []ast.DataType {
	var out []ast.DataType
	for _, s := range []ast.ScalarKind{ast.Bool, ast.I32, ast.U32, ast.F32} {
		if scalar := ast.ScalarType(s); filter(scalar) {
			out = append(out, scalar)
		}
		for _, n := range []uint8{2, 3, 4} {
			if vec := ast.VectorType(n, s); filter(vec) {
				out = append(out, vec)
			}
		}
	}
	for _, decl := range g.types.SelectStruct(filter) {
		out = append(out, ast.StructType(decl))
	}
	return out
}
