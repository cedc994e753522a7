package generator

import (
	"fmt"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/shadefuzz/shadefuzz/internal/registry"
)

// genStruct generates a struct declaration named name with a random number
// of members (§6 MinStructMembers/MaxStructMembers), each drawn from the
// type universe filter accepts. Members are named sequentially (m0, m1,
// ...) since, unlike a parsed program, a generated struct has no
// user-meaningful field names to preserve.
func (g *Generator) genStruct(name string, filter registry.Filter) *ast.StructDecl {
	memberCount := g.rangeU32(g.options.MinStructMembers, g.options.MaxStructMembers)
	candidates := g.typeUniverse(filter)

	members := make([]ast.StructMember, memberCount)
	for i := range members {
		ty := candidates[g.rng.Intn(len(candidates))]
		members[i] = ast.StructMember{Name: fmt.Sprintf("m%d", i), Type: ty}
	}

	return ast.NewStructDecl(name, members)
}
