// Package generator implements components D, E, and F of the shader
// generator: expression generation, statement generation, and the
// function/module pipeline that drives both. It is the only package that
// actually builds an ast.Module from nothing; every other internal package
// either supplies it data (builtins, registry) or consumes its output
// (eval, recondition, alias, printer).
package generator

import (
	"fmt"

	"github.com/shadefuzz/shadefuzz/internal/builtins"
)

// Preset names a fixed bundle of option overrides tuned for crash-testing a
// particular WGPU backend.
type Preset string

const (
	// PresetTint enables the built-ins tint implements but naga has
	// historically lacked (countLeadingZeros, countTrailingZeros).
	PresetTint Preset = "tint"
)

// Options controls every tunable dimension of generation (§6 "Options
// surface"). A zero Options is not valid on its own; callers should start
// from Defaults() and override individual fields.
type Options struct {
	// Seed selects the PRNG seed. A nil Seed means "pick one and record it",
	// done by the caller so the seed always ends up in the shader metadata.
	Seed *uint64 `json:"seed,omitempty"`

	// EnabledFns additionally allows builtins excluded from the default
	// catalog (builtins.extras) because their cross-backend behavior is
	// unsettled.
	EnabledFns []builtins.Fn `json:"enabledFns,omitempty"`

	// EnablePointers allows the statement/expression generators to emit
	// `&x` / `*p` and function parameters of pointer type.
	EnablePointers bool `json:"enablePointers"`

	// SkipPointerChecks disables alias analysis (component I) even when
	// EnablePointers is set, whether or not Recondition is set. It has no
	// effect without EnablePointers, since the analysis only runs then.
	SkipPointerChecks bool `json:"skipPointerChecks"`

	FnMinStmts uint32 `json:"fnMinStmts"`
	FnMaxStmts uint32 `json:"fnMaxStmts"`

	BlockMinStmts uint32 `json:"blockMinStmts"`
	BlockMaxStmts uint32 `json:"blockMaxStmts"`

	MaxBlockDepth uint32 `json:"maxBlockDepth"`

	MaxFns uint32 `json:"maxFns"`

	MinStructs uint32 `json:"minStructs"`
	MaxStructs uint32 `json:"maxStructs"`

	MinStructMembers uint32 `json:"minStructMembers"`
	MaxStructMembers uint32 `json:"maxStructMembers"`

	// Preset applies a named bundle of overrides before any explicit field
	// above is consulted; individual fields set alongside a Preset still
	// win (see ApplyPreset).
	Preset *Preset `json:"preset,omitempty"`

	// Recondition runs the generated module through component H before
	// returning it, eliminating undefined behavior at the cost of the
	// guarded-wrapper rewrites described in §4.H.
	Recondition bool `json:"recondition"`
}

// Defaults returns the option values wgslsmith itself defaults to.
func Defaults() Options {
	return Options{
		FnMinStmts:       5,
		FnMaxStmts:       5,
		BlockMinStmts:    0,
		BlockMaxStmts:    5,
		MaxBlockDepth:    3,
		MaxFns:           5,
		MinStructs:       1,
		MaxStructs:       5,
		MinStructMembers: 1,
		MaxStructMembers: 5,
	}
}

// ApplyPreset folds o.Preset's bundle of overrides into o's EnabledFns,
// returning an error for an unrecognized preset name. Fields other than
// EnabledFns are left untouched: a preset only ever widens the builtin
// catalog, it never second-guesses statement/block/struct counts the
// caller set explicitly.
func (o *Options) ApplyPreset() error {
	if o.Preset == nil {
		return nil
	}
	switch *o.Preset {
	case PresetTint:
		o.EnabledFns = appendMissing(o.EnabledFns, builtins.CountLeadingZeros, builtins.CountTrailingZeros)
		return nil
	default:
		return fmt.Errorf("generator: unknown preset %q", *o.Preset)
	}
}

func appendMissing(fns []builtins.Fn, add ...builtins.Fn) []builtins.Fn {
	have := make(map[builtins.Fn]bool, len(fns))
	for _, fn := range fns {
		have[fn] = true
	}
	for _, fn := range add {
		if !have[fn] {
			fns = append(fns, fn)
			have[fn] = true
		}
	}
	return fns
}
