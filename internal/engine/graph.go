package engine

import "github.com/cfgkit/restructure/region"

// edge is a control transfer between working-graph nodes, tagged with a
// discriminant when conditional.
type edge struct {
	to   int
	when int64
	cond bool
}

// node is an entry in the working-graph arena. Collapsed nodes are marked
// dead rather than removed, so ids stay stable across rewrites. fall marks
// the no-op terminal standing in for edges that leave an induced subgraph.
type node struct {
	reg  region.Region
	out  []edge
	id   int
	dead bool
	fall bool
}

// graph is the mutable working view the passes shrink toward a single
// node. Node ids follow creation order, which fixes every deterministic
// tie-break in the engine.
type graph struct {
	nodes []*node
	entry int
}

func (g *graph) newNode(reg region.Region) *node {
	n := &node{id: len(g.nodes), reg: reg}
	g.nodes = append(g.nodes, n)
	return n
}

func (g *graph) liveLabels() []string {
	var out []string
	for _, n := range g.nodes {
		if !n.dead {
			out = append(out, string(region.Entry(n.reg)))
		}
	}
	return out
}

func (g *graph) hasEdge(from, to int) bool {
	for _, e := range g.nodes[from].out {
		if e.to == to {
			return true
		}
	}
	return false
}

// preds returns predecessor lists over live nodes, sources in ascending id
// order.
func (g *graph) preds() map[int][]int {
	p := make(map[int][]int)
	for _, n := range g.nodes {
		if n.dead {
			continue
		}
		for _, e := range n.out {
			p[e.to] = append(p[e.to], n.id)
		}
	}
	return p
}

// postorder returns a DFS postorder over live nodes reachable from root,
// using an explicit stack of (node, next successor index) pairs.
func (g *graph) postorder(root int) []int {
	type frame struct {
		id  int
		idx int
	}
	seen := newBitset(len(g.nodes))
	var order []int
	stack := []frame{{id: root}}
	seen.set(root)
	for len(stack) > 0 {
		tos := len(stack) - 1
		f := &stack[tos]
		n := g.nodes[f.id]
		if f.idx < len(n.out) {
			next := n.out[f.idx].to
			f.idx++
			if !g.nodes[next].dead && !seen.has(next) {
				seen.set(next)
				stack = append(stack, frame{id: next})
			}
			continue
		}
		order = append(order, f.id)
		stack = stack[:tos]
	}
	return order
}
