// Package api provides the single programmatic entry point of shadefuzz:
// Generate, which runs the full pipeline (generate → concretize →
// [recondition] → [alias check]) and returns the shader source plus the
// artifacts the harness collaborator needs (§6).
//
// For CLI usage, see cmd/shadefuzz.
package api

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"

	"github.com/shadefuzz/shadefuzz/internal/alias"
	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/shadefuzz/shadefuzz/internal/diagnostic"
	"github.com/shadefuzz/shadefuzz/internal/eval"
	"github.com/shadefuzz/shadefuzz/internal/generator"
	"github.com/shadefuzz/shadefuzz/internal/printer"
	"github.com/shadefuzz/shadefuzz/internal/recondition"
	"github.com/shadefuzz/shadefuzz/internal/testcase"
)

// Options is the full options surface (§6 "Options surface"), re-exported
// so callers never need to import internal/generator directly.
type Options = generator.Options

// Result is everything Generate produces for one test case.
type Result struct {
	// Source is the complete WGSL source text, including the ShaderMetadata
	// and seed comments (§6).
	Source string

	// Metadata describes the module's resource bindings.
	Metadata testcase.ShaderMetadata

	// Inputs is the "group:binding" -> random byte payload map for every
	// initialized resource.
	Inputs map[string][]byte

	// Seed is the PRNG seed actually used (§5's "logged at startup" draw
	// when Options.Seed was nil).
	Seed uint64

	// LoopCount is the size of the LOOP_COUNTERS array; zero unless
	// Options.Recondition was set.
	LoopCount uint32

	// Accepted is false when alias analysis rejected the module (§4.I);
	// callers should discard Source in that case rather than feed it to a
	// driver.
	Accepted bool

	// Diagnostics accumulates any non-fatal problems encountered while
	// building this module (§7, §2.1).
	Diagnostics *diagnostic.List
}

// Generate runs the complete pipeline for one module and returns its
// emitted artifacts. Generation, evaluation, and (optional) reconditioning
// are deterministic in Options and the resolved seed (P3); alias analysis
// and input generation consume the same seed so the whole call is a pure
// function of Options once Options.Seed is non-nil.
func Generate(opts Options) (Result, error) {
	diags := diagnostic.NewList()

	if err := opts.ApplyPreset(); err != nil {
		diags.AddWarning("config", diagnostic.CodeOptionRejected, err.Error())
	}

	seed := opts.Seed
	if seed == nil {
		drawn, err := drawSeed()
		if err != nil {
			return Result{}, fmt.Errorf("api: draw seed: %w", err)
		}
		seed = &drawn
	}

	g := generator.New(*seed, opts)
	m := g.GenModule()

	ev := eval.New()
	ev.RegisterGlobalConsts(m.Consts)
	for i := range m.Functions {
		m.Functions[i] = ev.ConcretizeFn(m.Functions[i])
	}

	var loopCount uint32
	if opts.Recondition {
		res := recondition.Recondition(m)
		loopCount = res.LoopCount
	}

	accepted := true
	if opts.EnablePointers && !opts.SkipPointerChecks {
		if !alias.Check(m) {
			accepted = false
			diags.AddError("alias", diagnostic.CodeAliasRejected, "module rejected: potential pointer aliasing detected")
		}
	}

	md := testcase.BuildMetadata(m)
	inputRng := mrand.New(mrand.NewSource(int64(*seed)))
	inputs := testcase.GenInputs(inputRng, md)

	source, err := printer.Write(m, md, *seed)
	if err != nil {
		return Result{}, fmt.Errorf("api: write module: %w", err)
	}

	return Result{
		Source:      source,
		Metadata:    md,
		Inputs:      inputs,
		Seed:        *seed,
		LoopCount:   loopCount,
		Accepted:    accepted,
		Diagnostics: diags,
	}, nil
}

// EntryPoint is a small convenience re-export for callers that only want
// the generated module's compute entry point (e.g. to inspect its
// workgroup size) without reprinting the source.
func EntryPoint(m *ast.Module) *ast.FnDecl {
	return m.EntryPoint()
}

func drawSeed() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}
