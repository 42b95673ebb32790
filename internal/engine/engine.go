// Package engine implements the control-flow restructuring passes: loop
// collapse over strongly connected components, dominance-based branch
// folding, and the driver that shrinks a working graph to a single region
// tree.
package engine

import (
	"go.uber.org/zap"

	"github.com/cfgkit/restructure/errors"
	"github.com/cfgkit/restructure/region"
	"github.com/cfgkit/restructure/scfg"
)

// Config holds engine construction options.
type Config struct {
	// Logger receives debug-level pass tracing. Nil means no logging.
	Logger *zap.Logger

	// StepBudget bounds the total number of assembly steps across all
	// nested sub-builds. Zero selects a quadratic default sized to the
	// input.
	StepBudget int
}

// Engine restructures validated control-flow graphs into region trees.
type Engine struct {
	log    *zap.Logger
	budget int
}

// New creates an engine from cfg.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log, budget: cfg.StepBudget}
}

// Restructure converts sg into a region tree plus the table of control
// variables the transformation allocated. The tree covers every input
// block exactly once.
func (e *Engine) Restructure(sg *scfg.Graph) (region.Region, *region.VarTable, error) {
	labels := sg.Labels()

	g := &graph{}
	index := make(map[scfg.Label]int, len(labels))
	for _, l := range labels {
		index[l] = g.newNode(&region.Block{Label: l}).id
	}
	for _, l := range labels {
		n := g.nodes[index[l]]
		for _, se := range sg.Successors(l) {
			n.out = append(n.out, edge{to: index[se.To], when: se.When, cond: se.Cond})
		}
	}
	g.entry = index[sg.Entry()]

	budget := e.budget
	if budget <= 0 {
		budget = len(labels)*len(labels) + 64
	}

	b := &builder{
		alloc:  &varAlloc{},
		vars:   region.NewVarTable(),
		namer:  &namer{},
		log:    e.log,
		budget: budget,
	}

	tree, err := b.structure(g)
	if err != nil {
		return nil, nil, err
	}
	if err := verifyCover(tree, labels); err != nil {
		return nil, nil, err
	}

	e.log.Debug("restructured graph",
		zap.Int("blocks", len(labels)),
		zap.Int("vars", b.vars.Len()),
		zap.Int("steps", b.steps))

	return tree, b.vars, nil
}

// builder carries the mutable state shared by the passes of one
// restructuring run, including every nested sub-build.
type builder struct {
	alloc  *varAlloc
	vars   *region.VarTable
	namer  *namer
	log    *zap.Logger
	steps  int
	budget int
}

// structure reduces g to a single region: first every cycle is collapsed
// into a Loop node, then the remaining acyclic graph is assembled from the
// entry.
func (b *builder) structure(g *graph) (region.Region, error) {
	if err := b.loops(g); err != nil {
		return nil, err
	}
	return b.acyclic(g, g.entry)
}

// step charges one assembly step against the budget. The budget only
// trips on an algorithmic defect: each step retires at least one node, so
// a quadratic allowance is never reached on correct passes.
func (b *builder) step(g *graph) error {
	b.steps++
	if b.steps > b.budget {
		return errors.InternalInvariant(errors.PhaseConverge, g.liveLabels(),
			"step budget %d exhausted", b.budget)
	}
	return nil
}

// induce builds the working subgraph over members, entered at entry.
// Edges leaving the member set must all point at external; they are
// rewired to a shared no-op terminal, so the sub-build treats them as
// falling out of the region. The terminal carries the fall flag: the
// branch pass keeps it out of every arm, so leaving the region is always
// the last thing the assembled subtree does.
func induce(g *graph, members []int, entry, external int) (*graph, error) {
	sub := &graph{}
	id := make(map[int]int, len(members))
	for _, m := range members {
		id[m] = sub.newNode(g.nodes[m].reg).id
	}
	fall := -1
	for _, m := range members {
		sn := sub.nodes[id[m]]
		for _, e := range g.nodes[m].out {
			re := edge{when: e.when, cond: e.cond}
			if t, ok := id[e.to]; ok {
				re.to = t
			} else {
				if e.to != external {
					return nil, errors.InternalInvariant(errors.PhaseBranch, g.liveLabels(),
						"arm edge escapes past the merge point")
				}
				if fall < 0 {
					fn := sub.newNode(&region.Linear{})
					fn.fall = true
					fall = fn.id
				}
				re.to = fall
			}
			sn.out = append(sn.out, re)
		}
	}
	sub.entry = id[entry]
	return sub, nil
}

// verifyCover checks the coverage invariant: every input block appears in
// the tree exactly once.
func verifyCover(tree region.Region, labels []scfg.Label) error {
	count := make(map[scfg.Label]int, len(labels))
	for _, l := range region.Leaves(tree) {
		count[l]++
	}
	var bad []string
	for _, l := range labels {
		if count[l] != 1 {
			bad = append(bad, string(l))
		}
	}
	if len(bad) > 0 {
		return errors.InternalInvariant(errors.PhaseConverge, bad,
			"tree does not cover the input blocks exactly once")
	}
	return nil
}
