package diffusion

import (
	"errors"
	"fmt"
)

// Domain errors for solver runs.
var (
	// ErrInvalidConfig indicates solver parameters that cannot be run.
	ErrInvalidConfig = errors.New("diffusion: invalid configuration")

	// ErrBoundaryWidth indicates an overlap split too thin to cover the
	// planes read by the halo exchange.
	ErrBoundaryWidth = errors.New("diffusion: boundary width too small for overlap")

	// ErrUnstable indicates the field diverged (NaN or Inf detected).
	ErrUnstable = errors.New("diffusion: field diverged (NaN or Inf detected)")
)

// StepError wraps an error with the iteration and rank it occurred on.
type StepError struct {
	Iteration int
	Rank      int
	Wrapped   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("rank %d iteration %d: %v", e.Rank, e.Iteration, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
