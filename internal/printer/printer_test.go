package printer

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/shadefuzz/shadefuzz/internal/generator"
	"github.com/shadefuzz/shadefuzz/internal/testcase"
	"github.com/stretchr/testify/require"
)

func TestWriteIsDeterministicForFixedSeed(t *testing.T) {
	opts := generator.Defaults()
	m1 := generator.New(11, opts).GenModule()
	m2 := generator.New(11, opts).GenModule()

	md := testcase.BuildMetadata(m1)
	out1, err := Write(m1, md, 11)
	require.NoError(t, err)
	out2, err := Write(m2, testcase.BuildMetadata(m2), 11)
	require.NoError(t, err)

	require.Equal(t, out1, out2)
}

func TestWriteSnapshot(t *testing.T) {
	opts := generator.Defaults()
	opts.MinStructs, opts.MaxStructs = 1, 1
	opts.MaxFns = 1
	m := generator.New(5, opts).GenModule()
	out, err := Write(m, testcase.BuildMetadata(m), 5)
	require.NoError(t, err)

	snaps.MatchSnapshot(t, out)
}
