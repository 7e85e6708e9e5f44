package engine_test

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/aimd/internal/atom"
	"github.com/san-kum/aimd/internal/backend"
	"github.com/san-kum/aimd/internal/engine"
	"github.com/san-kum/aimd/internal/units"
	"github.com/san-kum/aimd/internal/vector"
)

// constantEvaluator returns the same energy and zero forces every call.
type constantEvaluator struct {
	energy float64
	calls  int
}

func (c *constantEvaluator) Evaluate(_ context.Context, sites []atom.Site) (*backend.Result, error) {
	c.calls++
	return &backend.Result{Energy: c.energy, Forces: make([]vector.Force, len(sites))}, nil
}

// harmonicWell pins every atom to its starting position with a spring of
// stiffness k in (100 kJ/mol)/Å², reported in backend units.
type harmonicWell struct {
	origin []vector.Position
	k      float64
	calls  int
	failOn int
}

func newHarmonicWell(atoms []atom.Atom, k float64) *harmonicWell {
	origin := make([]vector.Position, len(atoms))
	for i, a := range atoms {
		origin[i] = a.Position
	}
	return &harmonicWell{origin: origin, k: k}
}

func (h *harmonicWell) Evaluate(_ context.Context, sites []atom.Site) (*backend.Result, error) {
	h.calls++
	if h.failOn > 0 && h.calls == h.failOn {
		return nil, fmt.Errorf("%w: scf did not converge", backend.ErrEvaluatorFailure)
	}
	energy := 0.0
	forces := make([]vector.Force, len(sites))
	for i, s := range sites {
		d := s.Position.Sub(h.origin[i])
		energy += 0.5 * h.k * d.SquaredNorm()
		// (100 kJ/mol)/Å -> g·Å/(mol·fs²) is a factor 0.01
		f := vector.Retag[vector.ForceKind](d.Scale(-h.k * 0.01))
		forces[i] = f.Scale(1 / units.HartreeBohrToForce)
	}
	return &backend.Result{Energy: energy / units.HartreeToEnergy, Forces: forces}, nil
}

type memCheckpoints struct {
	states []engine.State
	failOn int
}

func (m *memCheckpoints) Append(s engine.State) error {
	if m.failOn > 0 && len(m.states)+1 == m.failOn {
		return errors.New("disk full")
	}
	m.states = append(m.states, s.Clone())
	return nil
}

func (m *memCheckpoints) last() engine.State {
	return m.states[len(m.states)-1]
}

type recorder struct {
	frames     int
	energies   [][4]float64
	velocities int
	kinetic    int
}

func (r *recorder) Trajectory([]atom.Atom) error { r.frames++; return nil }
func (r *recorder) Energy(t, pot, kin, tot float64) error {
	r.energies = append(r.energies, [4]float64{t, pot, kin, tot})
	return nil
}
func (r *recorder) Velocities([]atom.Atom) error { r.velocities++; return nil }
func (r *recorder) Kinetic([]atom.Atom) error    { r.kinetic++; return nil }

func water() []atom.Atom {
	return []atom.Atom{
		{Symbol: "O", Mass: 15.999, Mobile: true,
			Position: vector.NewPosition(0, 0, 0.119262), Velocity: vector.NewVelocity(0.001, -0.002, 0.0005)},
		{Symbol: "H", Mass: 1.008, Mobile: true,
			Position: vector.NewPosition(0, 0.763239, -0.477047), Velocity: vector.NewVelocity(-0.01, 0.02, 0.015)},
		{Symbol: "H", Mass: 1.008, Mobile: true,
			Position: vector.NewPosition(0, -0.763239, -0.477047), Velocity: vector.NewVelocity(0.006, 0.012, -0.022)},
	}
}

func chain(n int) []atom.Atom {
	atoms := make([]atom.Atom, n)
	for i := range atoms {
		atoms[i] = atom.Atom{
			Symbol:   "C",
			Mass:     12.011,
			Mobile:   true,
			Position: vector.NewPosition(1.5*float64(i), 0.1*float64(i%2), 0),
			Velocity: vector.NewVelocity(0.002*float64(i+1), -0.001*float64(i), 0.0015),
		}
	}
	return atoms
}

// tearLog appends half a record, as a crash during a write would leave.
func tearLog(path string) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if _, err := f.WriteString(`{"atoms":[{"symbol":"O","mass":15.9`); err != nil {
		panic(err)
	}
}
