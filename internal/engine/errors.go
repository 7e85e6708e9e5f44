package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameters indicates a non-positive time step or a negative
	// step budget.
	ErrInvalidParameters = errors.New("engine: invalid run parameters")

	ErrNoAtoms = errors.New("engine: no atoms to simulate")

	// ErrNotBootstrapped indicates Step was called before Bootstrap.
	ErrNotBootstrapped = errors.New("engine: initial forces not evaluated")

	// ErrAlreadyBootstrapped indicates Bootstrap was called twice or on a
	// resumed run.
	ErrAlreadyBootstrapped = errors.New("engine: initial forces already evaluated")

	// ErrHalted indicates the step budget is exhausted.
	ErrHalted = errors.New("engine: step budget exhausted")

	// ErrUnstable indicates a position or velocity became NaN or Inf.
	ErrUnstable = errors.New("engine: simulation unstable (NaN or Inf detected)")

	ErrReport = errors.New("engine: report failed")
)

// StepError wraps a failure with the step and phase it aborted.
type StepError struct {
	Step    int
	Phase   Phase
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("engine: step %d (%s): %v", e.Step, e.Phase, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
