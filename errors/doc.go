// Package errors provides structured error types for the restructure library.
//
// Errors are categorized by Phase (where in the pipeline the error occurred)
// and Kind (error category). The two kinds mirror the library's failure
// taxonomy: malformed_graph for rejected input, internal_invariant for
// algorithmic defects that must never be retried. Internal-invariant errors
// carry the offending block labels so a failing graph can be diagnosed.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoop, errors.KindInternalInvariant).
//		Blocks("b3", "b4").
//		Detail("scc collapse did not reduce node count").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MalformedGraph(errors.PhaseValidate, "entry %q not defined", entry)
//	err := errors.InternalInvariant(errors.PhaseConverge, blocks, "step budget exhausted")
//
// All errors implement the standard error interface and support errors.Is/As;
// the ErrMalformedGraph and ErrInternalInvariant sentinels match on kind.
package errors
