package engine

import (
	"fmt"

	"github.com/cfgkit/restructure/region"
	"github.com/cfgkit/restructure/scfg"
)

// varAlloc hands out fresh control-variable identifiers. mark/release
// implement region scoping: identifiers allocated inside a sealed
// sub-region are reused by disjoint siblings, keeping the variable count
// low, while identifiers still live in the enclosing scope stay unique.
type varAlloc struct {
	next region.Var
}

func (a *varAlloc) fresh() region.Var {
	v := a.next
	a.next++
	return v
}

func (a *varAlloc) mark() region.Var { return a.next }

func (a *varAlloc) release(m region.Var) { a.next = m }

// namer generates unique synthetic block labels. The reserved "$" prefix
// keeps them disjoint from input labels.
type namer struct {
	n int
}

func (nm *namer) fresh(kind string) scfg.Label {
	l := scfg.Label(fmt.Sprintf("%s%s.%d", scfg.SyntheticPrefix, kind, nm.n))
	nm.n++
	return l
}
