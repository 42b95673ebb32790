// Package scfg models the structured control-flow graph consumed by the
// restructuring engine: blocks identified by label, ordered discriminant
// edges, a single designated entry, and a set of exit labels.
//
// Graphs are built once from a serializable Def — the shape produced by an
// external CFG-extraction front-end — and are immutable after validation.
// YAML and msgpack codecs cover the input boundary; Trace provides a
// reference interpreter used to check that restructuring preserves
// execution order.
package scfg
