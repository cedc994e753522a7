// Package printer is the write_module collaborator (§6): it renders a
// generated ast.Module to WGSL source text, prefixed with the two
// single-line comments the harness expects (§6 "Exposed to the harness
// collaborator"): a ShaderMetadata JSON comment, then the PRNG seed.
package printer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/shadefuzz/shadefuzz/internal/testcase"
)

// Write renders m as complete WGSL source text: the ShaderMetadata comment,
// the seed comment, then the module body via ast.Module.String(). md is
// passed in rather than recomputed so the caller controls exactly which
// pass's view of the module (pre- or post-reconditioning) gets described.
func Write(m *ast.Module, md testcase.ShaderMetadata, seed uint64) (string, error) {
	metaJSON, err := json.Marshal(md)
	if err != nil {
		return "", fmt.Errorf("printer: marshal ShaderMetadata: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "// ShaderMetadata: %s\n", metaJSON)
	fmt.Fprintf(&b, "// seed: %d\n", seed)
	b.WriteString(m.String())
	return b.String(), nil
}
