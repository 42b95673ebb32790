package region

import (
	"fmt"
	"strings"

	"github.com/cfgkit/restructure/scfg"
)

// Walk traverses the tree in execution order, calling fn for every region
// before its children. Returning false stops the traversal.
func Walk(r Region, fn func(Region) bool) bool {
	if r == nil {
		return true
	}
	if !fn(r) {
		return false
	}
	switch n := r.(type) {
	case *Linear:
		for _, c := range n.Seq {
			if !Walk(c, fn) {
				return false
			}
		}
	case *Branch:
		if !Walk(n.Head, fn) {
			return false
		}
		for _, a := range n.Arms {
			if !Walk(a.Body, fn) {
				return false
			}
		}
		if !Walk(n.Tail, fn) {
			return false
		}
	case *Loop:
		if !Walk(n.Body, fn) {
			return false
		}
	}
	return true
}

// Leaves returns the labels of the original (non-synthetic) blocks in
// traversal order. For a correct restructuring these are exactly the input
// graph's labels, each once.
func Leaves(r Region) []scfg.Label {
	var out []scfg.Label
	Walk(r, func(n Region) bool {
		if b, ok := n.(*Block); ok {
			out = append(out, b.Label)
		}
		return true
	})
	return out
}

// Entry returns the label of the first leaf executed in r.
func Entry(r Region) scfg.Label {
	switch n := r.(type) {
	case *Block:
		return n.Label
	case *Assign:
		return n.Label
	case *Dispatch:
		return n.Label
	case *Linear:
		if len(n.Seq) > 0 {
			return Entry(n.Seq[0])
		}
	case *Branch:
		return Entry(n.Head)
	case *Loop:
		return n.Header
	}
	return ""
}

// Dump renders the tree as indented text, one region per line. The output
// is deterministic and intended for debugging and golden tests.
func Dump(r Region) string {
	var b strings.Builder
	dump(&b, r, 0)
	return b.String()
}

func dump(b *strings.Builder, r Region, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n := r.(type) {
	case nil:
		fmt.Fprintf(b, "%s(empty)\n", indent)
	case *Block:
		fmt.Fprintf(b, "%sblock %s\n", indent, n.Label)
	case *Assign:
		parts := make([]string, len(n.Sets))
		for i, s := range n.Sets {
			parts[i] = fmt.Sprintf("v%d=%d", s.Var, s.Value)
		}
		fmt.Fprintf(b, "%sassign %s [%s]\n", indent, n.Label, strings.Join(parts, " "))
	case *Dispatch:
		fmt.Fprintf(b, "%sdispatch %s on v%d\n", indent, n.Label, n.Var)
	case *Continue:
		fmt.Fprintf(b, "%scontinue\n", indent)
	case *Break:
		fmt.Fprintf(b, "%sbreak %d\n", indent, n.When)
	case *Halt:
		fmt.Fprintf(b, "%shalt\n", indent)
	case *Linear:
		fmt.Fprintf(b, "%slinear\n", indent)
		for _, c := range n.Seq {
			dump(b, c, depth+1)
		}
	case *Branch:
		fmt.Fprintf(b, "%sbranch\n", indent)
		fmt.Fprintf(b, "%s  head:\n", indent)
		dump(b, n.Head, depth+2)
		for _, a := range n.Arms {
			fmt.Fprintf(b, "%s  when %d:\n", indent, a.When)
			if a.Body == nil {
				fmt.Fprintf(b, "%s    (fallthrough)\n", indent)
			} else {
				dump(b, a.Body, depth+2)
			}
		}
		if n.Tail != nil {
			fmt.Fprintf(b, "%s  tail:\n", indent)
			dump(b, n.Tail, depth+2)
		}
	case *Loop:
		fmt.Fprintf(b, "%sloop header=%s\n", indent, n.Header)
		dump(b, n.Body, depth+1)
		for _, x := range n.Exits {
			fmt.Fprintf(b, "%s  exit %d -> %s\n", indent, x.When, x.To)
		}
	}
}
