package region

import "github.com/cfgkit/restructure/scfg"

// Var identifies a synthetic control variable. Identifiers are reused
// across disjoint regions; within one region scope they are unique.
type Var int

// NoVar marks the absence of a control variable.
const NoVar Var = -1

// Region is a node in the restructured region tree. The variant set is
// closed: consumers dispatch with an exhaustive type switch or a Visitor.
type Region interface {
	region()
}

// Block is a leaf wrapping an original graph block.
type Block struct {
	Label scfg.Label
}

// Set is a single control-variable write.
type Set struct {
	Var   Var
	Value int64
}

// Assign is a synthetic leaf writing one or more control variables before
// a restructured jump.
type Assign struct {
	Label scfg.Label
	Sets  []Set
}

// Dispatch is a synthetic leaf that branches on a control variable. It
// appears as the head of a Branch (a merge dispatch, or the entry dispatch
// of an irreducible loop).
type Dispatch struct {
	Label scfg.Label
	Var   Var
}

// Continue is a loop-edge leaf: control returns to the loop header.
type Continue struct{}

// Break is a loop-edge leaf: control leaves the enclosing loop taking the
// exit with the given value.
type Break struct {
	When int64
}

// Halt is a terminator leaf placed after an exit block: execution of the
// whole tree ends here, and no enclosing tail runs.
type Halt struct{}

// Linear is an ordered sequence of sub-regions with no internal branching.
type Linear struct {
	Seq []Region
}

// Arm is one taken branch of a Branch region. A nil Body means the branch
// transfers straight to the tail.
type Arm struct {
	Body Region
	When int64
}

// Branch is a two-or-more-way conditional split: a head sub-region ending
// in a conditional transfer, arms ordered by discriminant, and a single
// tail executed after any arm completes. A nil Tail means every arm
// terminates the enclosing region.
type Branch struct {
	Head Region
	Tail Region
	Arms []Arm
}

// Exit maps a loop control value to the label where execution continues
// outside the loop.
type Exit struct {
	To   scfg.Label
	When int64
}

// Loop is a cyclic region. Header names the entry leaf of Body (possibly a
// synthesized dispatch); back-edges appear inside Body as Continue leaves
// and are never visible outside. Exits is ordered by When.
type Loop struct {
	Body   Region
	Header scfg.Label
	Exits  []Exit
}

func (*Block) region()    {}
func (*Assign) region()   {}
func (*Dispatch) region() {}
func (*Continue) region() {}
func (*Break) region()    {}
func (*Halt) region()     {}
func (*Linear) region()   {}
func (*Branch) region()   {}
func (*Loop) region()     {}
