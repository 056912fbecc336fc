// Package asierr defines the failure modes of the RIC/value-set
// arithmetic and the ASI engine. Lattice operators themselves never
// fail (⊥ and ⊤ are always representable); only numeric primitives and
// the engine's inference/unification steps can.
package asierr

import "fmt"

// Kind identifies why an operation failed, so callers can branch on the
// cause without parsing the error text.
type Kind int

const (
	// IndeterminateArithmetic is ∞ − ∞ or another undefined bounded-integer
	// operation.
	IndeterminateArithmetic Kind = iota
	// RicStrideNonPositive is raised when constructing a RIC with a
	// stride <= 0.
	RicStrideNonPositive
	// InfiniteArrayAccess is raised when infer needs a finite
	// ric.end - ric.start but got an infinity.
	InfiniteArrayAccess
	// OverlappingALocs is raised when two input a-locs in the same
	// region overlap.
	OverlappingALocs
	// SizeMismatch is raised when unifyStructs receives operands of
	// unequal total size, or a child's bound type size disagrees with
	// its a-loc's size.
	SizeMismatch
	// InvalidSplit is raised when split(Array, n) is asked to cut at an
	// offset that isn't a multiple of the array's element size.
	InvalidSplit
)

func (k Kind) String() string {
	switch k {
	case IndeterminateArithmetic:
		return "IndeterminateArithmetic"
	case RicStrideNonPositive:
		return "RicStrideNonPositive"
	case InfiniteArrayAccess:
		return "InfiniteArrayAccess"
	case OverlappingALocs:
		return "OverlappingALocs"
	case SizeMismatch:
		return "SizeMismatch"
	case InvalidSplit:
		return "InvalidSplit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the error type every failure in this module surfaces as.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

// New builds an *Error of the given Kind, formatting its message the
// same way fmt.Errorf does.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf("%s: %s", kind, fmt.Sprintf(format, args...))}
}
