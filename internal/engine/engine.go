// Package engine advances an atom ensemble with velocity Verlet, taking
// forces from an external evaluator at every step and checkpointing each
// completed state.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/aimd/internal/atom"
	"github.com/san-kum/aimd/internal/backend"
	"github.com/san-kum/aimd/internal/units"
	"github.com/san-kum/aimd/internal/vector"
)

type Config struct {
	TimeStep    float64 // fs
	NumSteps    int
	Temperature float64 // K, thermostat target at bootstrap
}

type Engine struct {
	state       State
	phase       Phase
	temperature float64

	evaluator   backend.Evaluator
	checkpoints Checkpointer
	reporter    Reporter
	logger      *slog.Logger

	metrics   []Metric
	observers []Observer
}

// New prepares a fresh run. The engine starts in Bootstrapping.
func New(atoms []atom.Atom, cfg Config, eval backend.Evaluator, cp Checkpointer, rep Reporter, logger *slog.Logger) (*Engine, error) {
	if len(atoms) == 0 {
		return nil, ErrNoAtoms
	}
	if cfg.TimeStep <= 0 || cfg.NumSteps < 0 {
		return nil, fmt.Errorf("%w: time step %g fs, %d steps", ErrInvalidParameters, cfg.TimeStep, cfg.NumSteps)
	}
	if eval == nil || cp == nil {
		return nil, fmt.Errorf("%w: evaluator and checkpointer are required", ErrInvalidParameters)
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = units.DefaultTemperature
	}

	e := newEngine(eval, cp, rep, logger)
	e.state = State{
		Atoms:    atom.Clone(atoms),
		TimeStep: cfg.TimeStep,
		NumSteps: cfg.NumSteps,
	}
	e.phase = Bootstrapping
	e.temperature = cfg.Temperature
	e.logFrozen()
	return e, nil
}

// Resume rebuilds an engine from the last checkpointed state. The run
// continues at last.StepNum+1 without bootstrapping.
func Resume(last State, eval backend.Evaluator, cp Checkpointer, rep Reporter, logger *slog.Logger) (*Engine, error) {
	if len(last.Atoms) == 0 {
		return nil, ErrNoAtoms
	}
	if last.TimeStep <= 0 || last.NumSteps < 0 {
		return nil, fmt.Errorf("%w: time step %g fs, %d steps", ErrInvalidParameters, last.TimeStep, last.NumSteps)
	}
	if eval == nil || cp == nil {
		return nil, fmt.Errorf("%w: evaluator and checkpointer are required", ErrInvalidParameters)
	}

	e := newEngine(eval, cp, rep, logger)
	e.state = last.Clone()
	e.state.StepNum = last.StepNum + 1
	e.phase = Stepping
	if e.state.StepNum > e.state.NumSteps {
		e.phase = Halted
	}
	e.logger.Info("resuming from checkpoint", "checkpoint_step", last.StepNum, "next_step", e.state.StepNum)
	e.logFrozen()
	return e, nil
}

func newEngine(eval backend.Evaluator, cp Checkpointer, rep Reporter, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		evaluator:   eval,
		checkpoints: cp,
		reporter:    rep,
		logger:      logger,
		metrics:     make([]Metric, 0),
		observers:   make([]Observer, 0),
	}
}

func (e *Engine) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Engine) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Engine) Phase() Phase { return e.phase }

// State returns a copy of the current state.
func (e *Engine) State() State { return e.state.Clone() }

func (e *Engine) Metrics() map[string]float64 {
	out := make(map[string]float64, len(e.metrics))
	for _, m := range e.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (e *Engine) logFrozen() {
	for i, a := range e.state.Atoms {
		if !a.Mobile {
			e.logger.Info("atom frozen", "index", i+1, "symbol", a.Symbol)
		}
	}
}

// Run bootstraps a fresh engine and steps until the budget is exhausted.
// Cancellation is only observed between steps.
func (e *Engine) Run(ctx context.Context) error {
	for _, m := range e.metrics {
		m.Reset()
	}

	if e.phase == Bootstrapping {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Bootstrap(ctx); err != nil {
			return err
		}
	}

	for e.phase == Stepping {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := e.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Bootstrap evaluates the initial forces, rescales velocities to the
// reference temperature and records step 0.
func (e *Engine) Bootstrap(ctx context.Context) error {
	if e.phase != Bootstrapping {
		return ErrAlreadyBootstrapped
	}

	next := e.state.Clone()
	next.StepNum = 0

	forces, potential, err := e.evaluate(ctx, next.Atoms)
	if err != nil {
		return &StepError{Step: 0, Phase: Bootstrapping, Wrapped: err}
	}
	for i := range next.Atoms {
		next.Atoms[i].Force = forces[i]
	}
	next.PotentialEnergy = potential

	if scale, ok := rescale(next.Atoms, e.temperature); ok {
		e.logger.Info("velocities rescaled", "target_k", e.temperature, "factor", scale)
	} else {
		e.logger.Warn("thermostat skipped: no kinetic energy in mobile atoms")
	}
	next.KineticEnergy = atom.KineticEnergy(next.Atoms)
	next.TotalEnergy = next.PotentialEnergy + next.KineticEnergy

	if err := e.record(next, true); err != nil {
		return &StepError{Step: 0, Phase: Bootstrapping, Wrapped: err}
	}

	e.commit(next)
	return nil
}

// Step advances one velocity-Verlet step. On failure the engine state is
// left at the previous step and nothing is written for the failed one.
func (e *Engine) Step(ctx context.Context) error {
	switch e.phase {
	case Bootstrapping:
		return ErrNotBootstrapped
	case Halted:
		return ErrHalted
	}

	n := e.state.StepNum
	next := e.state.Clone()
	dt := next.TimeStep

	for i := range next.Atoms {
		a := &next.Atoms[i]
		if !a.Mobile {
			continue
		}
		accel := vector.Accel(a.Force, a.Mass)
		a.Position = a.Position.
			Add(vector.Displacement(a.Velocity, dt)).
			Add(vector.Displacement(vector.VelocityChange(accel, dt), 0.5*dt))
	}

	forces, potential, err := e.evaluate(ctx, next.Atoms)
	if err != nil {
		return &StepError{Step: n, Phase: Stepping, Wrapped: err}
	}

	for i := range next.Atoms {
		a := &next.Atoms[i]
		a.NextForce = forces[i]
		if a.Mobile {
			avg := vector.Accel(a.Force.Add(a.NextForce), a.Mass)
			a.Velocity = a.Velocity.Add(vector.VelocityChange(avg, 0.5*dt))
		}
		a.Force = a.NextForce
	}

	next.PotentialEnergy = potential
	next.KineticEnergy = atom.KineticEnergy(next.Atoms)
	next.TotalEnergy = next.PotentialEnergy + next.KineticEnergy

	if !next.IsValid() {
		return &StepError{Step: n, Phase: Stepping, Wrapped: ErrUnstable}
	}

	if err := e.record(next, false); err != nil {
		return &StepError{Step: n, Phase: Stepping, Wrapped: err}
	}

	e.commit(next)
	return nil
}

// evaluate returns converted forces and potential energy for atoms.
func (e *Engine) evaluate(ctx context.Context, atoms []atom.Atom) ([]vector.Force, float64, error) {
	res, err := e.evaluator.Evaluate(ctx, atom.Sites(atoms))
	if err != nil {
		return nil, 0, err
	}
	if len(res.Forces) != len(atoms) {
		return nil, 0, fmt.Errorf("%w: %d forces for %d atoms", backend.ErrEvaluatorFailure, len(res.Forces), len(atoms))
	}

	forces := make([]vector.Force, len(res.Forces))
	for i, f := range res.Forces {
		forces[i] = f.Scale(units.HartreeBohrToForce)
	}
	return forces, res.Energy * units.HartreeToEnergy, nil
}

// record writes the reports for s and then its checkpoint.
func (e *Engine) record(s State, full bool) error {
	if e.reporter != nil {
		if err := e.reporter.Trajectory(s.Atoms); err != nil {
			return fmt.Errorf("%w: trajectory: %w", ErrReport, err)
		}
		if err := e.reporter.Energy(s.Time(), s.PotentialEnergy, s.KineticEnergy, s.TotalEnergy); err != nil {
			return fmt.Errorf("%w: energy: %w", ErrReport, err)
		}
		if full {
			if err := e.reporter.Velocities(s.Atoms); err != nil {
				return fmt.Errorf("%w: velocities: %w", ErrReport, err)
			}
			if err := e.reporter.Kinetic(s.Atoms); err != nil {
				return fmt.Errorf("%w: kinetic: %w", ErrReport, err)
			}
		}
	}
	return e.checkpoints.Append(s)
}

// commit installs a checkpointed state and moves to the next step.
func (e *Engine) commit(s State) {
	for _, m := range e.metrics {
		m.Observe(s)
	}
	for _, o := range e.observers {
		o.OnStep(s)
	}

	e.logger.Debug("step complete",
		"step", s.StepNum,
		"time_fs", s.Time(),
		"potential", s.PotentialEnergy,
		"kinetic", s.KineticEnergy,
		"total", s.TotalEnergy)

	e.state = s
	e.state.StepNum++
	e.phase = Stepping
	if e.state.StepNum > e.state.NumSteps {
		e.phase = Halted
	}
}
