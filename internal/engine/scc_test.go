package engine

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/cfgkit/restructure/region"
	"github.com/cfgkit/restructure/scfg"
)

func testGraph(n, entry int, edges [][2]int) *graph {
	g := &graph{}
	for i := 0; i < n; i++ {
		g.newNode(&region.Block{Label: scfg.Label(fmt.Sprintf("b%d", i))})
	}
	for _, e := range edges {
		g.nodes[e[0]].out = append(g.nodes[e[0]].out, edge{to: e[1]})
	}
	g.entry = entry
	return g
}

func TestSCCPartition(t *testing.T) {
	// 0 -> {1,2} cycle -> 3 self-loop -> 4
	g := testGraph(5, 0, [][2]int{{0, 1}, {1, 2}, {2, 1}, {2, 3}, {3, 3}, {3, 4}})

	got := sccPartition(g)
	want := [][]int{{0}, {1, 2}, {3}, {4}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("partition = %v, want %v", got, want)
	}
}

func TestSCCPartitionSkipsUnreachable(t *testing.T) {
	g := testGraph(3, 0, [][2]int{{0, 1}})

	got := sccPartition(g)
	want := [][]int{{0}, {1}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("partition = %v, want %v", got, want)
	}
}

func TestSCCPartitionSkipsDead(t *testing.T) {
	g := testGraph(4, 0, [][2]int{{0, 1}, {1, 2}, {2, 0}, {1, 3}})
	g.nodes[3].dead = true

	got := sccPartition(g)
	want := [][]int{{0, 1, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("partition = %v, want %v", got, want)
	}
}
