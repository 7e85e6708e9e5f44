// Package backend runs the quantum-chemistry program that supplies forces
// and the potential energy for a geometry.
package backend

import (
	"context"
	"errors"

	"github.com/san-kum/aimd/internal/atom"
	"github.com/san-kum/aimd/internal/vector"
)

// ErrEvaluatorFailure indicates the backend produced no usable result.
var ErrEvaluatorFailure = errors.New("backend: force evaluation failed")

// Result is one single-point calculation in the backend's native units.
type Result struct {
	Energy float64        // hartree
	Forces []vector.Force // hartree/bohr, one per site in input order
}

// Evaluator computes energy and forces for an ordered geometry. It blocks
// until the calculation finishes.
type Evaluator interface {
	Evaluate(ctx context.Context, sites []atom.Site) (*Result, error)
}
