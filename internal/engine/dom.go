package engine

// Dominator computation over the live subgraph reachable from a root,
// in the iterative Cooper-Harvey-Kennedy style: process nodes in reverse
// postorder, intersecting predecessor dominators until a fixed point.

// dominators returns the immediate-dominator array and the postorder
// numbering for nodes reachable from root. Unreachable nodes hold -1 in
// both arrays; idom[root] == root.
func dominators(g *graph, root int) (idom, ponum []int) {
	po := g.postorder(root)

	idom = make([]int, len(g.nodes))
	ponum = make([]int, len(g.nodes))
	for i := range idom {
		idom[i] = -1
		ponum[i] = -1
	}
	for i, id := range po {
		ponum[id] = i
	}

	// Predecessors restricted to the reachable subgraph.
	preds := make(map[int][]int)
	for _, id := range po {
		for _, e := range g.nodes[id].out {
			if ponum[e.to] >= 0 {
				preds[e.to] = append(preds[e.to], id)
			}
		}
	}

	idom[root] = root
	changed := true
	for changed {
		changed = false
		// Reverse postorder, root excluded.
		for i := len(po) - 1; i >= 0; i-- {
			b := po[i]
			if b == root {
				continue
			}
			newIdom := -1
			for _, p := range preds[b] {
				if idom[p] < 0 {
					continue
				}
				if newIdom < 0 {
					newIdom = p
				} else {
					newIdom = intersect(newIdom, p, ponum, idom)
				}
			}
			if newIdom >= 0 && idom[b] != newIdom {
				idom[b] = newIdom
				changed = true
			}
		}
	}

	return idom, ponum
}

// intersect finds the closest common dominator of b and c using the
// postorder numbering.
func intersect(b, c int, ponum, idom []int) int {
	for b != c {
		for ponum[b] < ponum[c] {
			b = idom[b]
		}
		for ponum[c] < ponum[b] {
			c = idom[c]
		}
	}
	return b
}
