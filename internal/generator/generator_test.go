package generator

import (
	"testing"

	"github.com/shadefuzz/shadefuzz/internal/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenModuleIsDeterministic(t *testing.T) {
	opts := Defaults()

	m1 := New(42, opts).GenModule()
	m2 := New(42, opts).GenModule()

	assert.Equal(t, m1.String(), m2.String())
}

func TestGenModuleDifferentSeedsDiverge(t *testing.T) {
	opts := Defaults()

	m1 := New(1, opts).GenModule()
	m2 := New(2, opts).GenModule()

	assert.NotEqual(t, m1.String(), m2.String())
}

func TestGenModuleHasEntryPointAndBuffers(t *testing.T) {
	m := New(7, Defaults()).GenModule()

	var foundMain bool
	for _, fn := range m.Functions {
		if fn.Name == "main" && fn.Stage == ast.StageCompute {
			foundMain = true
		}
	}
	assert.True(t, foundMain, "module must contain a compute entry point named main")

	var foundUniform, foundStorage bool
	for _, v := range m.Vars {
		if v.Name == "u_input" {
			foundUniform = true
		}
		if v.Name == "s_output" {
			foundStorage = true
		}
	}
	assert.True(t, foundUniform)
	assert.True(t, foundStorage)

	var foundUniformStruct, foundStorageStruct bool
	for _, s := range m.Structs {
		if s.Name == "UniformBuffer" {
			foundUniformStruct = true
		}
		if s.Name == "StorageBuffer" {
			foundStorageStruct = true
		}
	}
	assert.True(t, foundUniformStruct)
	assert.True(t, foundStorageStruct)
}

func TestGenModuleRespectsStructBounds(t *testing.T) {
	opts := Defaults()
	opts.MinStructs = 2
	opts.MaxStructs = 2

	m := New(3, opts).GenModule()

	// MinStructs/MaxStructs count the random struct pool only; +2 accounts
	// for the mandatory UniformBuffer/StorageBuffer appended afterward.
	require.Len(t, m.Structs, 4)
}

func TestGenFnRespectsMaxFns(t *testing.T) {
	opts := Defaults()
	opts.MaxFns = 1

	g := New(9, opts)
	m := g.GenModule()

	assert.LessOrEqual(t, len(m.Functions)-1, int(opts.MaxFns)+1)
}
