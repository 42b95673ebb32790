package scfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfgkit/restructure/errors"
)

func when(v int64) *int64 { return &v }

func diamondDef() Def {
	return Def{
		Entry: "A",
		Exits: []Label{"D"},
		Blocks: []BlockDef{
			{Label: "A", Out: []EdgeDef{{To: "B", When: when(0)}, {To: "C", When: when(1)}}},
			{Label: "B", Out: []EdgeDef{{To: "D"}}},
			{Label: "C", Out: []EdgeDef{{To: "D"}}},
			{Label: "D"},
		},
	}
}

func TestNewDiamond(t *testing.T) {
	g, err := New(diamondDef())
	require.NoError(t, err)

	assert.Equal(t, Label("A"), g.Entry())
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, []Label{"A", "B", "C", "D"}, g.Labels())
	assert.Equal(t, []Label{"D"}, g.Exits())
	assert.True(t, g.IsExit("D"))
	assert.False(t, g.IsExit("A"))

	out := g.Successors("A")
	require.Len(t, out, 2)
	assert.Equal(t, Edge{To: "B", When: 0, Cond: true}, out[0])
	assert.Equal(t, Edge{To: "C", When: 1, Cond: true}, out[1])
	assert.Empty(t, g.Successors("D"))
	assert.Empty(t, g.Successors("missing"))

	assert.Equal(t, []Label{"B", "C"}, g.Predecessors("D"))
	assert.Empty(t, g.Predecessors("A"))
}

func TestNewRejects(t *testing.T) {
	tests := []struct {
		name string
		def  Def
		want string
	}{
		{
			name: "no blocks",
			def:  Def{Entry: "A"},
			want: "no blocks",
		},
		{
			name: "empty label",
			def: Def{Entry: "A", Blocks: []BlockDef{
				{Label: "A", Out: []EdgeDef{{To: ""}}},
				{Label: ""},
			}},
			want: "empty label",
		},
		{
			name: "reserved prefix",
			def: Def{Entry: "A", Exits: []Label{"$x"}, Blocks: []BlockDef{
				{Label: "A", Out: []EdgeDef{{To: "$x"}}},
				{Label: "$x"},
			}},
			want: "reserved prefix",
		},
		{
			name: "duplicate label",
			def: Def{Entry: "A", Exits: []Label{"A"}, Blocks: []BlockDef{
				{Label: "A"},
				{Label: "A"},
			}},
			want: "duplicate label",
		},
		{
			name: "missing entry",
			def:  Def{Exits: []Label{"A"}, Blocks: []BlockDef{{Label: "A"}}},
			want: "no entry label",
		},
		{
			name: "undefined entry",
			def:  Def{Entry: "Z", Exits: []Label{"A"}, Blocks: []BlockDef{{Label: "A"}}},
			want: "not defined",
		},
		{
			name: "undefined exit",
			def:  Def{Entry: "A", Exits: []Label{"Z"}, Blocks: []BlockDef{{Label: "A"}}},
			want: "not defined",
		},
		{
			name: "exit with successors",
			def: Def{Entry: "A", Exits: []Label{"A", "B"}, Blocks: []BlockDef{
				{Label: "A", Out: []EdgeDef{{To: "B"}}},
				{Label: "B"},
			}},
			want: "declared exit",
		},
		{
			name: "dangling non-exit",
			def: Def{Entry: "A", Blocks: []BlockDef{
				{Label: "A", Out: []EdgeDef{{To: "B"}}},
				{Label: "B"},
			}},
			want: "not a declared exit",
		},
		{
			name: "edge to unknown label",
			def: Def{Entry: "A", Blocks: []BlockDef{
				{Label: "A", Out: []EdgeDef{{To: "Z"}}},
			}},
			want: "unknown label",
		},
		{
			name: "untagged multi-way edge",
			def: Def{Entry: "A", Exits: []Label{"B", "C"}, Blocks: []BlockDef{
				{Label: "A", Out: []EdgeDef{{To: "B", When: when(0)}, {To: "C"}}},
				{Label: "B"},
				{Label: "C"},
			}},
			want: "unconditional edge",
		},
		{
			name: "duplicate discriminant",
			def: Def{Entry: "A", Exits: []Label{"B", "C"}, Blocks: []BlockDef{
				{Label: "A", Out: []EdgeDef{{To: "B", When: when(0)}, {To: "C", When: when(0)}}},
				{Label: "B"},
				{Label: "C"},
			}},
			want: "duplicate discriminant",
		},
		{
			name: "unreachable block",
			def: Def{Entry: "A", Exits: []Label{"B"}, Blocks: []BlockDef{
				{Label: "A", Out: []EdgeDef{{To: "B"}}},
				{Label: "B"},
				{Label: "C", Out: []EdgeDef{{To: "B"}}},
			}},
			want: "unreachable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.def)
			require.Error(t, err)
			assert.True(t, errors.IsMalformedGraph(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefRoundTrip(t *testing.T) {
	g, err := New(diamondDef())
	require.NoError(t, err)

	g2, err := New(g.Def())
	require.NoError(t, err)

	assert.Equal(t, g.Labels(), g2.Labels())
	assert.Equal(t, g.Entry(), g2.Entry())
	assert.Equal(t, g.Exits(), g2.Exits())
	for _, l := range g.Labels() {
		assert.Equal(t, g.Successors(l), g2.Successors(l))
	}
}

func TestSyntheticLabel(t *testing.T) {
	assert.True(t, Label("$head.0").Synthetic())
	assert.False(t, Label("head").Synthetic())
}
