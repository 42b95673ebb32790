// Package region defines the output artifact of restructuring: a strictly
// nested tree of single-entry/single-exit regions covering every block of
// the input graph exactly once.
//
// The variant set is closed. Composite regions are Linear (sequence),
// Branch (head, arms by discriminant, tail) and Loop (body with Continue
// and Break leaves standing in for back-edges and exits). Leaves are Block
// for original graph blocks, Halt marking the end of execution after an
// exit block, plus the synthetic Assign and Dispatch leaves introduced when
// natural structure is insufficient. Regions are immutable once built and
// have deterministic child ordering.
//
// Execute interprets a tree against the same oracle signature as
// scfg.Graph.Trace, which is how the trace-equivalence property of the
// transformation is checked.
package region
