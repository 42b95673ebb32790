package region

import (
	"github.com/cfgkit/restructure/errors"
	"github.com/cfgkit/restructure/scfg"
)

// outcome says how control left a region: fell through, carried a dispatch
// value (multi-exit loop or dispatch head), re-entered the loop header,
// broke out of the enclosing loop, or ended the program at an exit block.
type outKind int

const (
	outFall outKind = iota
	outValue
	outRepeat
	outBreak
	outHalt
)

type outcome struct {
	val  int64
	kind outKind
}

type execState struct {
	oracle scfg.Oracle
	env    map[Var]int64
	visits map[scfg.Label]int
	trace  []scfg.Label
	steps  int
	limit  int
}

// Execute interprets the region tree from its entry under the given oracle
// and returns the ordered labels of the original blocks visited. Synthetic
// assignment and dispatch leaves execute but are not recorded, so the trace
// is comparable with scfg.Graph.Trace. More than limit leaf executions
// fails with an exec-limit error.
func Execute(r Region, oracle scfg.Oracle, limit int) ([]scfg.Label, error) {
	st := &execState{
		oracle: oracle,
		env:    make(map[Var]int64),
		visits: make(map[scfg.Label]int),
		limit:  limit,
	}
	if _, err := st.exec(r); err != nil {
		return nil, err
	}
	return st.trace, nil
}

func (st *execState) leaf(at scfg.Label) error {
	st.steps++
	if st.steps > st.limit {
		return errors.ExecLimit(st.limit, string(at))
	}
	return nil
}

func (st *execState) exec(r Region) (outcome, error) {
	switch n := r.(type) {
	case nil:
		return outcome{}, nil

	case *Block:
		if err := st.leaf(n.Label); err != nil {
			return outcome{}, err
		}
		st.trace = append(st.trace, n.Label)
		st.visits[n.Label]++
		return outcome{}, nil

	case *Assign:
		if err := st.leaf(n.Label); err != nil {
			return outcome{}, err
		}
		for _, s := range n.Sets {
			st.env[s.Var] = s.Value
		}
		return outcome{}, nil

	case *Dispatch:
		if err := st.leaf(n.Label); err != nil {
			return outcome{}, err
		}
		return outcome{kind: outValue, val: st.env[n.Var]}, nil

	case *Continue:
		if err := st.leaf("$continue"); err != nil {
			return outcome{}, err
		}
		return outcome{kind: outRepeat}, nil

	case *Break:
		if err := st.leaf("$break"); err != nil {
			return outcome{}, err
		}
		return outcome{kind: outBreak, val: n.When}, nil

	case *Halt:
		if err := st.leaf("$halt"); err != nil {
			return outcome{}, err
		}
		return outcome{kind: outHalt}, nil

	case *Linear:
		for _, c := range n.Seq {
			o, err := st.exec(c)
			if err != nil {
				return outcome{}, err
			}
			if o.kind == outRepeat || o.kind == outBreak || o.kind == outHalt {
				return o, nil
			}
		}
		return outcome{}, nil

	case *Branch:
		o, err := st.exec(n.Head)
		if err != nil {
			return outcome{}, err
		}
		sel, err := st.selector(n.Head, o)
		if err != nil {
			return outcome{}, err
		}
		var taken *Arm
		for i := range n.Arms {
			if n.Arms[i].When == sel {
				taken = &n.Arms[i]
				break
			}
		}
		if taken == nil {
			return outcome{}, errors.New(errors.PhaseExec, errors.KindMalformedGraph).
				Blocks(string(Entry(n.Head))).
				Detail("no arm for discriminant %d", sel).
				Build()
		}
		if taken.Body != nil {
			o, err = st.exec(taken.Body)
			if err != nil {
				return outcome{}, err
			}
			if o.kind == outRepeat || o.kind == outBreak || o.kind == outHalt {
				return o, nil
			}
		}
		return st.exec(n.Tail)

	case *Loop:
		for {
			o, err := st.exec(n.Body)
			if err != nil {
				return outcome{}, err
			}
			switch o.kind {
			case outRepeat:
				continue
			case outBreak:
				if len(n.Exits) == 1 {
					return outcome{}, nil
				}
				return outcome{kind: outValue, val: o.val}, nil
			case outHalt:
				return o, nil
			default:
				return outcome{}, errors.InternalInvariant(errors.PhaseExec,
					[]string{string(n.Header)}, "loop body neither repeated nor broke")
			}
		}
	}

	return outcome{}, errors.InternalInvariant(errors.PhaseExec, nil, "unknown region variant")
}

// selector resolves the discriminant chosen by a branch head: a dispatch or
// multi-exit loop head carries it in its outcome, an original block asks
// the oracle.
func (st *execState) selector(head Region, o outcome) (int64, error) {
	if o.kind == outValue {
		return o.val, nil
	}
	if b, ok := head.(*Block); ok {
		return st.oracle(b.Label, st.visits[b.Label]-1), nil
	}
	return 0, errors.InternalInvariant(errors.PhaseExec,
		[]string{string(Entry(head))}, "branch head yields no selector")
}
