package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListAddErrorSetsHasErrors(t *testing.T) {
	l := NewList()
	assert.False(t, l.HasErrors())

	l.AddWarning("registry", CodeRegistryLookupFailed, "no candidate matched")
	assert.False(t, l.HasErrors())
	assert.Equal(t, 1, l.Count())

	l.AddError("alias", CodeAliasRejected, "pointer parameters may alias")
	assert.True(t, l.HasErrors())
	assert.Equal(t, 2, l.Count())
	assert.Equal(t, 1, l.ErrorCount())
}

func TestListErrorsAndWarningsFilter(t *testing.T) {
	l := NewList()
	l.AddError("struct-pool", CodeStructPoolExhausted, "ran out of candidates")
	l.AddWarning("option", CodeOptionRejected, "preset fell back to default")
	l.AddNote("recondition", "wrapper substituted a default value")

	assert.Len(t, l.Errors(), 1)
	assert.Len(t, l.Warnings(), 1)
	assert.Len(t, l.Diagnostics(), 3)
}

func TestListFormatIncludesCodeAndComponent(t *testing.T) {
	l := NewList()
	l.AddError("alias", CodeAliasRejected, "pointer parameters may alias")

	out := l.Format()
	assert.Contains(t, out, "alias")
	assert.Contains(t, out, "error")
	assert.Contains(t, out, "pointer parameters may alias")
	assert.Contains(t, out, "[alias-rejected]")
}

func TestListFormatEmptyWhenNoDiagnostics(t *testing.T) {
	l := NewList()
	assert.Empty(t, l.Format())
}

func TestListClearResetsState(t *testing.T) {
	l := NewList()
	l.AddError("alias", CodeAliasRejected, "pointer parameters may alias")
	l.Clear()

	assert.False(t, l.HasErrors())
	assert.Equal(t, 0, l.Count())
	assert.Empty(t, l.Diagnostics())
}
