// Package restructure converts arbitrary control-flow graphs, including
// irreducible and multi-exit ones, into nested trees of single-entry
// single-exit regions.
//
// Every region is Linear, Branch, or Loop. Control flow the tree shapes
// cannot express directly, such as a loop with several entry blocks or a
// branch whose arms rejoin at different points, is encoded with synthetic
// integer control variables: assignments written on the rewired edges and
// dispatch points that read them.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	restructure/         Root package with the Restructure entry point
//	├── scfg/            Structured CFG input: validation, YAML/MessagePack codecs, trace interpreter
//	├── region/          Region tree variants, traversal helpers, control-variable table, tree interpreter
//	├── errors/          Structured error types for debugging
//	├── internal/engine/ Loop collapse, branch folding, and the region tree builder
//	└── cmd/restructure/ CLI for checking graphs, printing trees, and comparing traces
//
// # Quick Start
//
// Load a graph definition and restructure it:
//
//	g, err := scfg.LoadFile("graph.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := restructure.Restructure(g, restructure.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Print(region.Dump(res.Tree))
//	for _, v := range res.Vars.All() {
//	    fmt.Printf("v%d %s\n", v.Var, v.Role)
//	}
//
// # Guarantees
//
// A successful run covers every input block exactly once, preserves the
// observable trace of any execution under region.Execute, and produces an
// identical tree and variable table for the same input across runs.
// Restructuring an already structured graph allocates no variables.
//
// # Thread Safety
//
// A validated scfg.Graph and a returned Result are immutable and safe for
// concurrent use. Restructure itself holds no shared state.
package restructure
