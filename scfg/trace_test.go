package scfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfgkit/restructure/errors"
)

func oracleFrom(m map[Label][]int64) Oracle {
	return func(at Label, visit int) int64 {
		vals := m[at]
		if len(vals) == 0 {
			return 0
		}
		if visit >= len(vals) {
			return vals[len(vals)-1]
		}
		return vals[visit]
	}
}

func whileDef() Def {
	return Def{
		Entry: "A",
		Exits: []Label{"D"},
		Blocks: []BlockDef{
			{Label: "A", Out: []EdgeDef{{To: "B"}}},
			{Label: "B", Out: []EdgeDef{{To: "D", When: when(0)}, {To: "C", When: when(1)}}},
			{Label: "C", Out: []EdgeDef{{To: "B"}}},
			{Label: "D"},
		},
	}
}

func TestTraceLoop(t *testing.T) {
	g, err := New(whileDef())
	require.NoError(t, err)

	got, err := g.Trace(oracleFrom(map[Label][]int64{"B": {1, 1, 0}}), 100)
	require.NoError(t, err)
	assert.Equal(t, []Label{"A", "B", "C", "B", "C", "B", "D"}, got)
}

func TestTraceSoleTaggedEdgeSkipsOracle(t *testing.T) {
	g, err := New(Def{
		Entry: "A",
		Exits: []Label{"B"},
		Blocks: []BlockDef{
			{Label: "A", Out: []EdgeDef{{To: "B", When: when(5)}}},
			{Label: "B"},
		},
	})
	require.NoError(t, err)

	oracle := func(at Label, visit int) int64 {
		t.Fatalf("oracle consulted at %s", at)
		return 0
	}
	got, err := g.Trace(oracle, 10)
	require.NoError(t, err)
	assert.Equal(t, []Label{"A", "B"}, got)
}

func TestTraceVisitLimit(t *testing.T) {
	g, err := New(whileDef())
	require.NoError(t, err)

	_, err = g.Trace(oracleFrom(map[Label][]int64{"B": {1}}), 10)
	require.Error(t, err)

	var se *errors.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errors.KindExecLimit, se.Kind)
}

func TestTraceUnmatchedDiscriminant(t *testing.T) {
	g, err := New(whileDef())
	require.NoError(t, err)

	_, err = g.Trace(oracleFrom(map[Label][]int64{"B": {7}}), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching edge")
}
