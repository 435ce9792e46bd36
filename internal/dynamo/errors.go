package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration and sampling operations.
var (
	// ErrInvalidParams indicates a malformed problem: reversed time span,
	// non-positive sample count, bad tolerances, or non-finite inputs.
	ErrInvalidParams = errors.New("dynamo: invalid parameters")

	// ErrInvalidState indicates the vector field produced NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive step collapsed below the floor
	// without satisfying the error bound.
	ErrStepTooSmall = errors.New("dynamo: adaptive step size below floor")

	// ErrMaxSteps indicates the configured step budget ran out before tmax.
	ErrMaxSteps = errors.New("dynamo: step budget exhausted")

	// ErrOutOfRange indicates a sample query outside the solution span.
	ErrOutOfRange = errors.New("dynamo: sample time outside solution span")
)

// SolveError wraps a terminal integration failure with the last valid
// time and state reached, so callers can see how far progress got before
// retrying with relaxed tolerances or a shorter span.
type SolveError struct {
	Time  float64
	State State
	Err   error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("%v (last valid t=%g)", e.Err, e.Time)
}

func (e *SolveError) Unwrap() error {
	return e.Err
}
