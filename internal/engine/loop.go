package engine

import (
	"sort"

	"go.uber.org/zap"

	"github.com/cfgkit/restructure/errors"
	"github.com/cfgkit/restructure/region"
)

// loops eliminates every strongly connected component of size > 1 and
// every self-loop by folding it into a Loop region node. Components come
// from one partition: collapsing an SCC cannot create a new cycle, since
// any cycle through the collapsed node would have been part of the SCC.
func (b *builder) loops(g *graph) error {
	for _, scc := range sccPartition(g) {
		if len(scc) == 1 && !g.hasEdge(scc[0], scc[0]) {
			continue
		}
		if err := b.collapseLoop(g, scc); err != nil {
			return err
		}
		for _, m := range scc {
			if !g.nodes[m].dead {
				return errors.InternalInvariant(errors.PhaseLoop, g.liveLabels(),
					"scc collapse left member %d live", m)
			}
		}
	}
	return nil
}

// collapseLoop rewrites one SCC into a single Loop node:
//
//  1. Entry blocks (externally reachable members) become the header; more
//     than one synthesizes a dispatch header on a fresh control variable,
//     written on every edge that enters or re-enters the loop.
//  2. Edges leaving the SCC become Break leaves; more than one distinct
//     target allocates an exit variable written at each exit site, with
//     the loop's exit mapping dispatching on it downstream.
//  3. Edges re-entering the header set become Continue leaves.
//  4. The interior, with back-edges and exits replaced by leaves, is
//     restructured recursively into the loop body.
func (b *builder) collapseLoop(g *graph, scc []int) error {
	in := newBitset(len(g.nodes))
	for _, m := range scc {
		in.set(m)
	}
	preds := g.preds()

	// Entry blocks: members reachable from outside the SCC, in id order.
	var entries []int
	entryCode := make(map[int]int64)
	for _, m := range scc {
		external := m == g.entry
		for _, p := range preds[m] {
			if !in.has(p) {
				external = true
			}
		}
		if external {
			entryCode[m] = int64(len(entries))
			entries = append(entries, m)
		}
	}
	if len(entries) == 0 {
		return errors.InternalInvariant(errors.PhaseLoop, g.liveLabels(), "scc has no entry")
	}

	// Distinct exit targets, in id order. Code 0 is reserved for "iterate
	// again", so exit codes start at 1 when a variable is needed.
	var exitTargets []int
	seenExit := make(map[int]bool)
	for _, m := range scc {
		for _, e := range g.nodes[m].out {
			if !in.has(e.to) && !seenExit[e.to] {
				seenExit[e.to] = true
				exitTargets = append(exitTargets, e.to)
			}
		}
	}
	sort.Ints(exitTargets)
	exitCode := make(map[int]int64)
	for i, t := range exitTargets {
		exitCode[t] = int64(i + 1)
	}

	scope := b.alloc.mark()
	entryVar := region.NoVar
	if len(entries) > 1 {
		entryVar = b.alloc.fresh()
	}
	exitVar := region.NoVar
	if len(exitTargets) > 1 {
		exitVar = b.alloc.fresh()
	}

	b.log.Debug("collapsing scc",
		zap.Int("size", len(scc)),
		zap.Int("entries", len(entries)),
		zap.Int("exit_targets", len(exitTargets)))

	// Body graph: copies of the members plus the synthetic leaves that
	// stand in for re-entry and exit edges.
	bg := &graph{}
	bodyID := make(map[int]int, len(scc))
	for _, m := range scc {
		bodyID[m] = bg.newNode(g.nodes[m].reg).id
	}

	header := -1
	if entryVar == region.NoVar {
		header = bodyID[entries[0]]
	} else {
		hd := bg.newNode(&region.Dispatch{Label: b.namer.fresh("head"), Var: entryVar})
		for _, e := range entries {
			hd.out = append(hd.out, edge{to: bodyID[e], when: entryCode[e], cond: true})
		}
		header = hd.id
	}
	bg.entry = header

	var entrySites, exitSites []region.Site

	// Leaf chains are allocated per rewired edge, not shared per target:
	// a shared latch would be a multi-predecessor merge point inside the
	// body and force a pointless dispatch variable there.
	cont := func() int {
		return bg.newNode(&region.Continue{}).id
	}
	exitChain := func(t int) int {
		if exitVar == region.NoVar {
			return bg.newNode(&region.Break{When: 0}).id
		}
		a := bg.newNode(&region.Assign{
			Label: b.namer.fresh("set"),
			Sets:  []region.Set{{Var: exitVar, Value: exitCode[t]}},
		})
		brk := bg.newNode(&region.Break{When: exitCode[t]})
		a.out = []edge{{to: brk.id}}
		exitSites = append(exitSites, region.Site{
			At:    a.reg.(*region.Assign).Label,
			Value: exitCode[t],
		})
		return a.id
	}

	for _, m := range scc {
		src := g.nodes[m]
		bn := bg.nodes[bodyID[m]]
		for _, e := range src.out {
			rewired := edge{when: e.when, cond: e.cond}
			_, reenters := entryCode[e.to]
			switch {
			case in.has(e.to) && reenters:
				// Back-edge re-entering the header set.
				if entryVar == region.NoVar {
					rewired.to = cont()
				} else {
					a := bg.newNode(&region.Assign{
						Label: b.namer.fresh("set"),
						Sets:  []region.Set{{Var: entryVar, Value: entryCode[e.to]}},
					})
					a.out = []edge{{to: cont()}}
					rewired.to = a.id
					entrySites = append(entrySites, region.Site{
						At:    a.reg.(*region.Assign).Label,
						Value: entryCode[e.to],
					})
				}
			case in.has(e.to):
				rewired.to = bodyID[e.to]
			default:
				rewired.to = exitChain(e.to)
			}
			bn.out = append(bn.out, rewired)
		}
	}

	bodyReg, err := b.structure(bg)
	if err != nil {
		return err
	}
	b.alloc.release(scope)

	loopReg := &region.Loop{
		Header: region.Entry(bg.nodes[header].reg),
		Body:   bodyReg,
	}
	if len(exitTargets) == 1 {
		loopReg.Exits = []region.Exit{{When: 0, To: region.Entry(g.nodes[exitTargets[0]].reg)}}
	} else {
		for _, t := range exitTargets {
			loopReg.Exits = append(loopReg.Exits, region.Exit{
				When: exitCode[t],
				To:   region.Entry(g.nodes[t].reg),
			})
		}
	}

	// Collapse in the outer graph: one node standing for the whole loop.
	cn := g.newNode(loopReg)
	if len(exitTargets) == 1 {
		cn.out = []edge{{to: exitTargets[0]}}
	} else {
		for _, t := range exitTargets {
			cn.out = append(cn.out, edge{to: t, when: exitCode[t], cond: true})
		}
	}

	// External predecessors enter through the collapsed node, setting the
	// entry variable first when the header is a dispatch.
	retarget := func(to int) int {
		if entryVar == region.NoVar {
			return cn.id
		}
		a := g.newNode(&region.Assign{
			Label: b.namer.fresh("set"),
			Sets:  []region.Set{{Var: entryVar, Value: entryCode[to]}},
		})
		a.out = []edge{{to: cn.id}}
		entrySites = append(entrySites, region.Site{
			At:    a.reg.(*region.Assign).Label,
			Value: entryCode[to],
		})
		return a.id
	}
	for _, n := range g.nodes {
		if n.dead || in.has(n.id) || n.id == cn.id {
			continue
		}
		for i := range n.out {
			if in.has(n.out[i].to) {
				n.out[i].to = retarget(n.out[i].to)
			}
		}
	}
	if in.has(g.entry) {
		g.entry = retarget(g.entry)
	}

	for _, m := range scc {
		g.nodes[m].dead = true
	}

	if entryVar != region.NoVar {
		b.vars.Record(loopReg, region.Info{Var: entryVar, Role: region.RoleEntryDispatch, Sites: entrySites})
	}
	if exitVar != region.NoVar {
		b.vars.Record(loopReg, region.Info{Var: exitVar, Role: region.RoleExitDispatch, Sites: exitSites})
	}

	return nil
}
