package engine

import (
	"sort"

	"go.uber.org/zap"

	"github.com/cfgkit/restructure/region"
)

// acyclic assembles the region for the loop-free live subgraph starting at
// cur: chains of single-target nodes become Linear sequences, multi-way
// splits are folded by branchAt and consume the rest of the subgraph.
func (b *builder) acyclic(g *graph, cur int) (region.Region, error) {
	var seq []region.Region
	for {
		if err := b.step(g); err != nil {
			return nil, err
		}
		n := g.nodes[cur]
		targets := distinctTargets(n.out)
		switch len(targets) {
		case 0:
			n.dead = true
			seq = append(seq, n.reg)
			// A block with no successors is a program exit: the halt leaf
			// stops enclosing tails from running after it.
			if _, ok := n.reg.(*region.Block); ok {
				seq = append(seq, &region.Halt{})
			}
			return lin(seq), nil
		case 1:
			// Includes the degenerate split whose edges all reach the
			// same block: no Branch wrapper.
			n.dead = true
			seq = append(seq, n.reg)
			cur = targets[0]
		default:
			br, next, err := b.branchAt(g, cur)
			if err != nil {
				return nil, err
			}
			if next >= 0 {
				tail, err := b.acyclic(g, next)
				if err != nil {
					return nil, err
				}
				br.Tail = tail
			}
			seq = append(seq, br)
			return lin(seq), nil
		}
	}
}

// branchAt folds the split headed at h into a Branch region. The subgraph
// below h is partitioned by dominance: a successor entered only from h
// roots an arm owning everything it dominates; every remaining node
// belongs to the tail. More than one edge target crossing into the tail
// synthesizes a merge dispatch on a fresh control variable, written by a
// synthetic assignment inside each crossing arm. Returns the region with
// the tail not yet attached, plus the node where the tail begins (-1 when
// every arm terminates).
func (b *builder) branchAt(g *graph, h int) (*region.Branch, int, error) {
	idom, ponum := dominators(g, h)
	preds := g.preds()
	hn := g.nodes[h]

	// Arm roots: successors entered only from h, by exactly one edge. The
	// fall terminal never roots or joins an arm; keeping it in the tail
	// puts it behind every inner join, where falling out of the region is
	// the last step. An arm that can both escape and continue inward then
	// shows two tail targets, and the merge dispatch separates the paths.
	edgeCount := make(map[int]int)
	for _, e := range hn.out {
		edgeCount[e.to]++
	}
	isRoot := make(map[int]bool)
	for _, e := range hn.out {
		t := e.to
		if g.nodes[t].fall {
			continue
		}
		if edgeCount[t] == 1 && len(preds[t]) == 1 && preds[t][0] == h {
			isRoot[t] = true
		}
	}

	// Assign every node below h to the arm whose root dominates it, or to
	// the tail (no entry in armOf).
	armOf := make(map[int]int)
	for id := range g.nodes {
		if ponum[id] < 0 || id == h || g.nodes[id].fall {
			continue
		}
		for c := id; c != h; c = idom[c] {
			if isRoot[c] {
				armOf[id] = c
				break
			}
		}
	}

	// Edges crossing from the head or an arm into the tail. armRoot is -1
	// for head edges; edgeIdx then selects the head edge to rewire.
	type crossing struct {
		from    int
		edgeIdx int
		to      int
		armRoot int
	}
	var crossings []crossing
	var tailTargets []int
	seenTarget := make(map[int]bool)
	note := func(c crossing) {
		crossings = append(crossings, c)
		if !seenTarget[c.to] {
			seenTarget[c.to] = true
			tailTargets = append(tailTargets, c.to)
		}
	}
	for i, e := range hn.out {
		if !isRoot[e.to] {
			note(crossing{from: h, edgeIdx: i, to: e.to, armRoot: -1})
		}
	}
	for id := 0; id < len(g.nodes); id++ {
		root, inArm := armOf[id]
		if !inArm {
			continue
		}
		for i, e := range g.nodes[id].out {
			if _, internal := armOf[e.to]; !internal {
				note(crossing{from: id, edgeIdx: i, to: e.to, armRoot: root})
			}
		}
	}
	sort.Ints(tailTargets)

	next := -1
	mergeVar := region.NoVar
	var mergeSites []region.Site

	// Synthetic assignment nodes created inside arms, and the ones that
	// form an entire arm on their own (head edges straight into the tail).
	armExtra := make(map[int][]int)
	headArm := make(map[int]int)

	switch len(tailTargets) {
	case 0:
		// Every arm terminates; the Branch has no tail.
	case 1:
		next = tailTargets[0]
	default:
		mergeVar = b.alloc.fresh()
		code := make(map[int]int64, len(tailTargets))
		d := g.newNode(&region.Dispatch{Label: b.namer.fresh("merge"), Var: mergeVar})
		for i, t := range tailTargets {
			code[t] = int64(i)
			d.out = append(d.out, edge{to: t, when: int64(i), cond: true})
		}
		next = d.id

		b.log.Debug("synthesized merge dispatch",
			zap.Int("targets", len(tailTargets)),
			zap.Int("var", int(mergeVar)))

		newAssign := func(to int) *node {
			a := g.newNode(&region.Assign{
				Label: b.namer.fresh("set"),
				Sets:  []region.Set{{Var: mergeVar, Value: code[to]}},
			})
			a.out = []edge{{to: d.id}}
			mergeSites = append(mergeSites, region.Site{
				At:    a.reg.(*region.Assign).Label,
				Value: code[to],
			})
			return a
		}

		// One assignment per (arm, target); each head edge gets its own,
		// becoming the whole arm for that discriminant.
		type key struct{ arm, to int }
		assigns := make(map[key]int)
		for _, c := range crossings {
			if c.armRoot < 0 {
				a := newAssign(c.to)
				hn.out[c.edgeIdx].to = a.id
				headArm[c.edgeIdx] = a.id
				continue
			}
			id, ok := assigns[key{c.armRoot, c.to}]
			if !ok {
				a := newAssign(c.to)
				id = a.id
				assigns[key{c.armRoot, c.to}] = id
				armExtra[c.armRoot] = append(armExtra[c.armRoot], id)
			}
			g.nodes[c.from].out[c.edgeIdx].to = id
		}
	}

	// Build per-arm regions in head edge order. Sibling arms are disjoint,
	// so variable ids allocated inside one are released for the next.
	var arms []region.Arm
	for i, e := range hn.out {
		arm := region.Arm{When: e.when}
		var members []int
		entry := -1
		if isRoot[e.to] {
			entry = e.to
			for id, r := range armOf {
				if r == e.to {
					members = append(members, id)
				}
			}
			members = append(members, armExtra[e.to]...)
		} else if aid, ok := headArm[i]; ok {
			entry = aid
			members = append(members, aid)
		}
		if entry >= 0 {
			sort.Ints(members)
			sub, err := induce(g, members, entry, next)
			if err != nil {
				return nil, -1, err
			}
			scope := b.alloc.mark()
			reg, err := b.structure(sub)
			if err != nil {
				return nil, -1, err
			}
			b.alloc.release(scope)
			arm.Body = reg
			for _, id := range members {
				g.nodes[id].dead = true
			}
		}
		arms = append(arms, arm)
	}
	sort.Slice(arms, func(i, j int) bool { return arms[i].When < arms[j].When })

	hn.dead = true

	branchReg := &region.Branch{Head: hn.reg, Arms: arms}
	if mergeVar != region.NoVar {
		b.vars.Record(branchReg, region.Info{Var: mergeVar, Role: region.RoleMergeDispatch, Sites: mergeSites})
	}

	return branchReg, next, nil
}

// distinctTargets returns the unique edge targets in first-occurrence
// order.
func distinctTargets(out []edge) []int {
	var targets []int
	for _, e := range out {
		dup := false
		for _, t := range targets {
			if t == e.to {
				dup = true
				break
			}
		}
		if !dup {
			targets = append(targets, e.to)
		}
	}
	return targets
}

// lin wraps a sequence in a Linear region. No-op terminals left by induce
// are dropped, and a singleton is unwrapped.
func lin(seq []region.Region) region.Region {
	var kept []region.Region
	for _, r := range seq {
		if l, ok := r.(*region.Linear); ok && len(l.Seq) == 0 {
			continue
		}
		kept = append(kept, r)
	}
	switch len(kept) {
	case 0:
		return &region.Linear{}
	case 1:
		return kept[0]
	default:
		return &region.Linear{Seq: kept}
	}
}
