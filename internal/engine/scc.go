package engine

import "sort"

// This file implements strongly connected component detection for the
// working graph using the Kosaraju-Sharir algorithm: a DFS postorder on
// the original edges, then a reverse-edge BFS in reverse postorder. It was
// chosen over Tarjan's single-pass algorithm because it is straightforward
// to implement iteratively and needs no auxiliary per-node state beyond
// two visited sets.

// sccPartition returns the strongly connected components of the live
// nodes reachable from g.entry, topologically sorted by the kernel DAG.
// Members of each component are sorted by id.
func sccPartition(g *graph) [][]int {
	po := g.postorder(g.entry)

	reachable := newBitset(len(g.nodes))
	for _, id := range po {
		reachable.set(id)
	}
	preds := g.preds()
	seen := newBitset(len(g.nodes))

	var result [][]int
	queue := make([]int, 0, len(po))

	for i := len(po) - 1; i >= 0; i-- {
		leader := po[i]
		if seen.has(leader) {
			continue
		}

		scc := make([]int, 0, 4)
		queue = append(queue[:0], leader)
		seen.set(leader)

		for len(queue) > 0 {
			id := queue[0]
			queue = queue[1:]
			scc = append(scc, id)

			for _, p := range preds[id] {
				if reachable.has(p) && !seen.has(p) {
					seen.set(p)
					queue = append(queue, p)
				}
			}
		}

		sort.Ints(scc)
		result = append(result, scc)
	}

	return result
}
