package region

import "github.com/cfgkit/restructure/scfg"

// Role says what a control variable's dispatch point decides.
type Role string

const (
	// RoleEntryDispatch distinguishes the entry blocks of an irreducible loop.
	RoleEntryDispatch Role = "entry_dispatch"
	// RoleExitDispatch distinguishes the exit targets of a multi-exit loop.
	RoleExitDispatch Role = "exit_dispatch"
	// RoleMergeDispatch distinguishes divergent continuations at a
	// synthesized branch merge point.
	RoleMergeDispatch Role = "merge_dispatch"
)

// Site is one write of a control variable: the block after which the write
// happens and the value written.
type Site struct {
	At    scfg.Label
	Value int64
}

// Info describes one allocated control variable.
type Info struct {
	Sites []Site
	Var   Var
	Role  Role
}

// VarTable is the control-variable allocation table, keyed by the Branch or
// Loop region whose dispatch reads each variable. Iteration order follows
// allocation order and is deterministic.
type VarTable struct {
	byRegion map[Region][]Info
	order    []Info
}

// NewVarTable creates an empty table.
func NewVarTable() *VarTable {
	return &VarTable{byRegion: make(map[Region][]Info)}
}

// Record registers a variable under its owning region.
func (t *VarTable) Record(owner Region, info Info) {
	t.byRegion[owner] = append(t.byRegion[owner], info)
	t.order = append(t.order, info)
}

// Of returns the variables dispatched by the given region.
func (t *VarTable) Of(owner Region) []Info {
	return t.byRegion[owner]
}

// All returns every allocated variable in allocation order.
func (t *VarTable) All() []Info {
	out := make([]Info, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of allocated variables.
func (t *VarTable) Len() int { return len(t.order) }
