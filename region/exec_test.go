package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cfgkit/restructure/errors"
	"github.com/cfgkit/restructure/scfg"
)

func oracleFrom(m map[scfg.Label][]int64) scfg.Oracle {
	return func(at scfg.Label, visit int) int64 {
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

func TestExecuteLinear(t *testing.T) {
	tree := &Linear{Seq: []Region{&Block{Label: "A"}, &Block{Label: "B"}}}

	got, err := Execute(tree, oracleFrom(nil), 10)
	require.NoError(t, err)
	assert.Equal(t, []scfg.Label{"A", "B"}, got)
}

func TestExecuteBranch(t *testing.T) {
	tree := &Branch{
		Head: &Block{Label: "A"},
		Arms: []Arm{
			{When: 0, Body: &Block{Label: "B"}},
			{When: 1, Body: &Block{Label: "C"}},
		},
		Tail: &Block{Label: "D"},
	}

	got, err := Execute(tree, oracleFrom(map[scfg.Label][]int64{"A": {1}}), 10)
	require.NoError(t, err)
	assert.Equal(t, []scfg.Label{"A", "C", "D"}, got)
}

func TestExecuteBranchFallthroughArm(t *testing.T) {
	tree := &Branch{
		Head: &Block{Label: "A"},
		Arms: []Arm{
			{When: 0, Body: &Block{Label: "B"}},
			{When: 1},
		},
		Tail: &Block{Label: "C"},
	}

	got, err := Execute(tree, oracleFrom(map[scfg.Label][]int64{"A": {1}}), 10)
	require.NoError(t, err)
	assert.Equal(t, []scfg.Label{"A", "C"}, got)
}

func TestExecuteHaltStopsTail(t *testing.T) {
	tree := &Branch{
		Head: &Block{Label: "A"},
		Arms: []Arm{
			{When: 0, Body: &Linear{Seq: []Region{&Block{Label: "X"}, &Halt{}}}},
			{When: 1, Body: &Block{Label: "B"}},
		},
		Tail: &Block{Label: "C"},
	}

	got, err := Execute(tree, oracleFrom(map[scfg.Label][]int64{"A": {0}}), 10)
	require.NoError(t, err)
	assert.Equal(t, []scfg.Label{"A", "X"}, got)

	got, err = Execute(tree, oracleFrom(map[scfg.Label][]int64{"A": {1}}), 10)
	require.NoError(t, err)
	assert.Equal(t, []scfg.Label{"A", "B", "C"}, got)
}

func TestExecuteBranchNoArm(t *testing.T) {
	tree := &Branch{
		Head: &Block{Label: "A"},
		Arms: []Arm{{When: 0, Body: &Block{Label: "B"}}},
	}

	_, err := Execute(tree, oracleFrom(map[scfg.Label][]int64{"A": {9}}), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no arm for discriminant 9")
}

func TestExecuteLoop(t *testing.T) {
	got, err := Execute(whileTree(), oracleFrom(map[scfg.Label][]int64{"B": {1, 1, 0}}), 100)
	require.NoError(t, err)
	assert.Equal(t, []scfg.Label{"A", "B", "C", "B", "C", "B", "D"}, got)
}

func TestExecuteMultiExitLoop(t *testing.T) {
	loop := &Loop{
		Header: "L",
		Body: &Branch{
			Head: &Block{Label: "L"},
			Arms: []Arm{
				{When: 0, Body: &Linear{Seq: []Region{
					&Assign{Label: "$set.0", Sets: []Set{{Var: 0, Value: 1}}},
					&Break{When: 1},
				}}},
				{When: 1, Body: &Linear{Seq: []Region{
					&Assign{Label: "$set.1", Sets: []Set{{Var: 0, Value: 2}}},
					&Break{When: 2},
				}}},
				{When: 2, Body: &Continue{}},
			},
		},
		Exits: []Exit{{When: 1, To: "X"}, {When: 2, To: "Y"}},
	}
	tree := &Branch{
		Head: loop,
		Arms: []Arm{
			{When: 1, Body: &Block{Label: "X"}},
			{When: 2, Body: &Block{Label: "Y"}},
		},
	}

	got, err := Execute(tree, oracleFrom(map[scfg.Label][]int64{"L": {2, 1}}), 100)
	require.NoError(t, err)
	assert.Equal(t, []scfg.Label{"L", "L", "Y"}, got)
}

func TestExecuteDispatchHead(t *testing.T) {
	tree := &Linear{Seq: []Region{
		&Assign{Label: "$set.0", Sets: []Set{{Var: 2, Value: 1}}},
		&Branch{
			Head: &Dispatch{Label: "$merge.0", Var: 2},
			Arms: []Arm{
				{When: 0, Body: &Block{Label: "A"}},
				{When: 1, Body: &Block{Label: "B"}},
			},
		},
	}}

	got, err := Execute(tree, oracleFrom(nil), 10)
	require.NoError(t, err)
	assert.Equal(t, []scfg.Label{"B"}, got)
}

func TestExecuteVisitLimit(t *testing.T) {
	tree := &Loop{
		Header: "B",
		Body:   &Linear{Seq: []Region{&Block{Label: "B"}, &Continue{}}},
		Exits:  []Exit{{When: 0, To: "X"}},
	}

	_, err := Execute(tree, oracleFrom(nil), 5)
	require.Error(t, err)

	var se *errors.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, errors.KindExecLimit, se.Kind)
}
