package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the restructuring pipeline the error occurred
type Phase string

const (
	PhaseBuild    Phase = "build"    // graph construction from a definition
	PhaseValidate Phase = "validate" // structural validation of the input graph
	PhaseLoop     Phase = "loop"     // loop restructuring pass
	PhaseBranch   Phase = "branch"   // branch restructuring pass
	PhaseConverge Phase = "converge" // region tree builder driving to a fixed point
	PhaseExec     Phase = "exec"     // reference interpretation
)

// Kind categorizes the error
type Kind string

const (
	// KindMalformedGraph is bad input: missing entry, dangling edges,
	// unreachable blocks. Surfaced immediately, never recovered.
	KindMalformedGraph Kind = "malformed_graph"

	// KindInternalInvariant is an algorithmic defect: a pass failed to
	// shrink the graph or the step budget was exhausted. Fatal, never
	// retried; carries the offending block set for diagnosis.
	KindInternalInvariant Kind = "internal_invariant"

	// KindExecLimit is raised by the reference interpreters when the
	// visit budget is exceeded.
	KindExecLimit Kind = "exec_limit"
)

// Error is the structured error type used throughout the library
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Blocks []string // offending block labels, if known
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if len(e.Blocks) > 0 {
		b.WriteString(" (blocks: ")
		b.WriteString(strings.Join(e.Blocks, ", "))
		b.WriteByte(')')
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase != "" && e.Phase != t.Phase {
			return false
		}
		return t.Kind == "" || e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Blocks sets the offending block labels
func (b *Builder) Blocks(labels ...string) *Builder {
	b.err.Blocks = labels
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MalformedGraph creates a bad-input error
func MalformedGraph(phase Phase, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedGraph,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// MalformedGraphAt creates a bad-input error pointing at specific blocks
func MalformedGraphAt(phase Phase, blocks []string, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMalformedGraph,
		Blocks: blocks,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// InternalInvariant creates a fatal algorithmic-defect error carrying the
// block set that failed to reduce
func InternalInvariant(phase Phase, blocks []string, detail string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInternalInvariant,
		Blocks: blocks,
		Detail: fmt.Sprintf(detail, args...),
	}
}

// ExecLimit creates a visit-budget error for the reference interpreters
func ExecLimit(limit int, at string) *Error {
	return &Error{
		Phase:  PhaseExec,
		Kind:   KindExecLimit,
		Blocks: []string{at},
		Detail: fmt.Sprintf("visit limit %d exceeded", limit),
	}
}

// Sentinel values for errors.Is matching on kind alone.
var (
	ErrMalformedGraph    = &Error{Kind: KindMalformedGraph}
	ErrInternalInvariant = &Error{Kind: KindInternalInvariant}
)

// IsMalformedGraph reports whether err is a malformed-graph error
func IsMalformedGraph(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == KindMalformedGraph
}

// IsInternalInvariant reports whether err is an internal-invariant error
func IsInternalInvariant(err error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == KindInternalInvariant
}
