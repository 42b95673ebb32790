package region

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cfgkit/restructure/scfg"
)

func whileTree() Region {
	return &Linear{Seq: []Region{
		&Block{Label: "A"},
		&Loop{
			Header: "B",
			Body: &Branch{
				Head: &Block{Label: "B"},
				Arms: []Arm{
					{When: 0, Body: &Break{When: 0}},
					{When: 1, Body: &Linear{Seq: []Region{&Block{Label: "C"}, &Continue{}}}},
				},
			},
			Exits: []Exit{{When: 0, To: "D"}},
		},
		&Block{Label: "D"},
	}}
}

func TestLeaves(t *testing.T) {
	assert.Equal(t, []scfg.Label{"A", "B", "C", "D"}, Leaves(whileTree()))
}

func TestLeavesSkipSynthetic(t *testing.T) {
	tree := &Branch{
		Head: &Dispatch{Label: "$merge.0", Var: 0},
		Arms: []Arm{
			{When: 0, Body: &Linear{Seq: []Region{&Assign{Label: "$set.0"}, &Block{Label: "X"}}}},
			{When: 1},
		},
	}
	assert.Equal(t, []scfg.Label{"X"}, Leaves(tree))
}

func TestEntry(t *testing.T) {
	tree := whileTree()
	assert.Equal(t, scfg.Label("A"), Entry(tree))
	assert.Equal(t, scfg.Label("B"), Entry(tree.(*Linear).Seq[1]))
	assert.Equal(t, scfg.Label("$set.1"), Entry(&Assign{Label: "$set.1"}))
	assert.Equal(t, scfg.Label(""), Entry(&Linear{}))
}

func TestWalkOrderAndStop(t *testing.T) {
	var order []string
	Walk(whileTree(), func(r Region) bool {
		if b, ok := r.(*Block); ok {
			order = append(order, string(b.Label))
		}
		return true
	})
	assert.Equal(t, []string{"A", "B", "C", "D"}, order)

	seen := 0
	Walk(whileTree(), func(r Region) bool {
		seen++
		_, stop := r.(*Break)
		return !stop
	})
	full := 0
	Walk(whileTree(), func(Region) bool { full++; return true })
	assert.Less(t, seen, full)
}

func TestDump(t *testing.T) {
	want := "linear\n" +
		"  block A\n" +
		"  loop header=B\n" +
		"    branch\n" +
		"      head:\n" +
		"        block B\n" +
		"      when 0:\n" +
		"        break 0\n" +
		"      when 1:\n" +
		"        linear\n" +
		"          block C\n" +
		"          continue\n" +
		"    exit 0 -> D\n" +
		"  block D\n"
	assert.Equal(t, want, Dump(whileTree()))
}

func TestDumpSynthetic(t *testing.T) {
	tree := &Branch{
		Head: &Dispatch{Label: "$merge.0", Var: 1},
		Arms: []Arm{
			{When: 0, Body: &Assign{Label: "$set.0", Sets: []Set{{Var: 1, Value: 3}}}},
			{When: 1},
		},
		Tail: &Linear{Seq: []Region{&Block{Label: "M"}, &Halt{}}},
	}
	want := "branch\n" +
		"  head:\n" +
		"    dispatch $merge.0 on v1\n" +
		"  when 0:\n" +
		"    assign $set.0 [v1=3]\n" +
		"  when 1:\n" +
		"    (fallthrough)\n" +
		"  tail:\n" +
		"    linear\n" +
		"      block M\n" +
		"      halt\n"
	assert.Equal(t, want, Dump(tree))
}
