package scfg

import "github.com/cfgkit/restructure/errors"

// Oracle decides which discriminant a conditional block takes. The visit
// argument counts prior arrivals at the block, so a loop condition can
// answer differently per iteration.
type Oracle func(at Label, visit int) int64

// Trace executes the graph from the entry under the given oracle and
// returns the ordered list of visited labels. Execution stops at a block
// with no successors. More than limit visits fails with an exec-limit
// error; an oracle answer with no matching edge fails immediately.
func (g *Graph) Trace(oracle Oracle, limit int) ([]Label, error) {
	var trace []Label
	visits := make(map[Label]int)

	cur := g.entry
	for {
		if len(trace) >= limit {
			return nil, errors.ExecLimit(limit, string(cur))
		}
		trace = append(trace, cur)
		n := visits[cur]
		visits[cur]++

		out := g.blocks[cur].Out
		switch {
		case len(out) == 0:
			return trace, nil
		case len(out) == 1:
			// A sole edge is followed without consulting the oracle even
			// when tagged, matching the restructured execution.
			cur = out[0].To
		default:
			want := oracle(cur, n)
			next := Label("")
			for _, e := range out {
				if e.When == want {
					next = e.To
					break
				}
			}
			if next == "" {
				return nil, errors.New(errors.PhaseExec, errors.KindMalformedGraph).
					Blocks(string(cur)).
					Detail("oracle chose discriminant %d with no matching edge", want).
					Build()
			}
			cur = next
		}
	}
}
