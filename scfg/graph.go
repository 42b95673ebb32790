package scfg

import (
	"strings"

	"github.com/cfgkit/restructure/errors"
)

// SyntheticPrefix marks labels generated by the restructuring engine.
// Input labels may not use it.
const SyntheticPrefix = "$"

// Label identifies a block within a graph.
type Label string

// Synthetic reports whether the label was generated by the engine rather
// than supplied by the front-end.
func (l Label) Synthetic() bool {
	return strings.HasPrefix(string(l), SyntheticPrefix)
}

// Edge is a control transfer to another block, tagged with the branch
// discriminant that selects it, or unconditional.
type Edge struct {
	To   Label
	When int64
	Cond bool
}

// Block is an opaque unit of sequential code with an ordered successor list.
type Block struct {
	Label Label
	Out   []Edge
}

// Graph is the structured control-flow graph consumed by the restructuring
// engine: blocks indexed by label, a single entry, and a set of exit labels.
// A validated Graph is immutable.
type Graph struct {
	blocks map[Label]*Block
	preds  map[Label][]Label
	order  []Label
	exits  map[Label]bool
	entry  Label
}

// EdgeDef is the serializable form of an Edge. A nil When means the edge
// is unconditional.
type EdgeDef struct {
	To   Label  `yaml:"to" msgpack:"to"`
	When *int64 `yaml:"when,omitempty" msgpack:"when,omitempty"`
}

// BlockDef is the serializable form of a Block.
type BlockDef struct {
	Label Label     `yaml:"label" msgpack:"label"`
	Out   []EdgeDef `yaml:"out,omitempty" msgpack:"out,omitempty"`
}

// Def is the serializable form of a Graph, the shape delivered by an
// external CFG-extraction front-end. Block order is significant: it fixes
// the deterministic ordering used throughout restructuring.
type Def struct {
	Entry  Label      `yaml:"entry" msgpack:"entry"`
	Exits  []Label    `yaml:"exits" msgpack:"exits"`
	Blocks []BlockDef `yaml:"blocks" msgpack:"blocks"`
}

// New validates a definition and builds a Graph.
//
// Validation rejects: a missing or undefined entry, duplicate or reserved
// labels, edges to unknown labels, non-exit blocks with no successors,
// declared exits with successors, duplicate discriminants, multi-way
// splits with untagged edges, and blocks unreachable from the entry.
func New(def Def) (*Graph, error) {
	if len(def.Blocks) == 0 {
		return nil, errors.MalformedGraph(errors.PhaseBuild, "graph has no blocks")
	}

	g := &Graph{
		blocks: make(map[Label]*Block, len(def.Blocks)),
		preds:  make(map[Label][]Label),
		order:  make([]Label, 0, len(def.Blocks)),
		exits:  make(map[Label]bool, len(def.Exits)),
	}

	for _, bd := range def.Blocks {
		if bd.Label == "" {
			return nil, errors.MalformedGraph(errors.PhaseBuild, "block with empty label")
		}
		if bd.Label.Synthetic() {
			return nil, errors.MalformedGraphAt(errors.PhaseBuild, []string{string(bd.Label)},
				"label uses reserved prefix %q", SyntheticPrefix)
		}
		if _, dup := g.blocks[bd.Label]; dup {
			return nil, errors.MalformedGraphAt(errors.PhaseBuild, []string{string(bd.Label)},
				"duplicate label")
		}
		b := &Block{Label: bd.Label, Out: make([]Edge, 0, len(bd.Out))}
		for _, ed := range bd.Out {
			e := Edge{To: ed.To}
			if ed.When != nil {
				e.When = *ed.When
				e.Cond = true
			}
			b.Out = append(b.Out, e)
		}
		g.blocks[bd.Label] = b
		g.order = append(g.order, bd.Label)
	}

	if def.Entry == "" {
		return nil, errors.MalformedGraph(errors.PhaseBuild, "no entry label")
	}
	if _, ok := g.blocks[def.Entry]; !ok {
		return nil, errors.MalformedGraph(errors.PhaseBuild, "entry %q not defined", def.Entry)
	}
	g.entry = def.Entry

	for _, x := range def.Exits {
		if _, ok := g.blocks[x]; !ok {
			return nil, errors.MalformedGraph(errors.PhaseBuild, "exit %q not defined", x)
		}
		g.exits[x] = true
	}

	if err := g.validate(); err != nil {
		return nil, err
	}

	for _, l := range g.order {
		for _, e := range g.blocks[l].Out {
			g.preds[e.To] = append(g.preds[e.To], l)
		}
	}

	return g, nil
}

func (g *Graph) validate() error {
	for _, l := range g.order {
		b := g.blocks[l]

		if g.exits[l] && len(b.Out) > 0 {
			return errors.MalformedGraphAt(errors.PhaseValidate, []string{string(l)},
				"declared exit has %d outgoing edges", len(b.Out))
		}
		if !g.exits[l] && len(b.Out) == 0 {
			return errors.MalformedGraphAt(errors.PhaseValidate, []string{string(l)},
				"block has no outgoing edges and is not a declared exit")
		}

		seen := make(map[int64]bool, len(b.Out))
		for _, e := range b.Out {
			if _, ok := g.blocks[e.To]; !ok {
				return errors.MalformedGraphAt(errors.PhaseValidate, []string{string(l)},
					"edge to unknown label %q", e.To)
			}
			if len(b.Out) > 1 {
				if !e.Cond {
					return errors.MalformedGraphAt(errors.PhaseValidate, []string{string(l)},
						"multi-way split has an unconditional edge to %q", e.To)
				}
				if seen[e.When] {
					return errors.MalformedGraphAt(errors.PhaseValidate, []string{string(l)},
						"duplicate discriminant %d", e.When)
				}
				seen[e.When] = true
			}
		}
	}

	// Every block must be reachable from the entry.
	reached := make(map[Label]bool, len(g.order))
	stack := []Label{g.entry}
	reached[g.entry] = true
	for len(stack) > 0 {
		l := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.blocks[l].Out {
			if !reached[e.To] {
				reached[e.To] = true
				stack = append(stack, e.To)
			}
		}
	}
	if len(reached) != len(g.order) {
		var orphans []string
		for _, l := range g.order {
			if !reached[l] {
				orphans = append(orphans, string(l))
			}
		}
		return errors.MalformedGraphAt(errors.PhaseValidate, orphans, "unreachable from entry %q", g.entry)
	}

	return nil
}

// Entry returns the designated entry label.
func (g *Graph) Entry() Label { return g.entry }

// Exits returns the declared exit labels in declaration order.
func (g *Graph) Exits() []Label {
	var out []Label
	for _, l := range g.order {
		if g.exits[l] {
			out = append(out, l)
		}
	}
	return out
}

// IsExit reports whether l is a declared exit.
func (g *Graph) IsExit(l Label) bool { return g.exits[l] }

// Labels returns every block label in declaration order.
func (g *Graph) Labels() []Label {
	out := make([]Label, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of blocks.
func (g *Graph) Len() int { return len(g.order) }

// Successors returns the ordered outgoing edges of l.
func (g *Graph) Successors(l Label) []Edge {
	b, ok := g.blocks[l]
	if !ok {
		return nil
	}
	out := make([]Edge, len(b.Out))
	copy(out, b.Out)
	return out
}

// Predecessors returns the labels with an edge into l, in declaration order
// of the source block. Used for merge-point detection.
func (g *Graph) Predecessors(l Label) []Label {
	ps := g.preds[l]
	out := make([]Label, len(ps))
	copy(out, ps)
	return out
}

// Def returns the serializable form of the graph.
func (g *Graph) Def() Def {
	d := Def{Entry: g.entry, Exits: g.Exits()}
	for _, l := range g.order {
		b := g.blocks[l]
		bd := BlockDef{Label: l}
		for _, e := range b.Out {
			ed := EdgeDef{To: e.To}
			if e.Cond {
				w := e.When
				ed.When = &w
			}
			bd.Out = append(bd.Out, ed)
		}
		d.Blocks = append(d.Blocks, bd)
	}
	return d
}
