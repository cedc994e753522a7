package api

import (
	"testing"

	"github.com/shadefuzz/shadefuzz/internal/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateIsDeterministicForFixedSeed(t *testing.T) {
	seed := uint64(123)
	opts := generator.Defaults()
	opts.Seed = &seed

	r1, err := Generate(opts)
	require.NoError(t, err)
	r2, err := Generate(opts)
	require.NoError(t, err)

	assert.Equal(t, r1.Source, r2.Source)
	assert.Equal(t, r1.Seed, r2.Seed)
}

func TestGenerateDrawsASeedWhenNoneGiven(t *testing.T) {
	opts := generator.Defaults()
	r, err := Generate(opts)
	require.NoError(t, err)
	assert.NotZero(t, r.Seed)
	assert.Contains(t, r.Source, "ShaderMetadata")
}

func TestGenerateWithReconditionProducesLoopCounters(t *testing.T) {
	seed := uint64(7)
	opts := generator.Defaults()
	opts.Seed = &seed
	opts.Recondition = true

	r, err := Generate(opts)
	require.NoError(t, err)
	if r.LoopCount > 0 {
		assert.Contains(t, r.Source, "LOOP_COUNTERS")
	}
}

func TestGenerateRejectsOnAliasFailureReportsDiagnostic(t *testing.T) {
	seed := uint64(99)
	opts := generator.Defaults()
	opts.Seed = &seed
	opts.EnablePointers = true

	r, err := Generate(opts)
	require.NoError(t, err)
	if !r.Accepted {
		assert.True(t, r.Diagnostics.HasErrors())
	}
}
