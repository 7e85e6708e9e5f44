package engine

import "github.com/san-kum/aimd/internal/atom"

// Phase is the lifecycle position of an engine.
type Phase int

const (
	Bootstrapping Phase = iota
	Stepping
	Halted
)

func (p Phase) String() string {
	switch p {
	case Bootstrapping:
		return "bootstrapping"
	case Stepping:
		return "stepping"
	case Halted:
		return "halted"
	}
	return "unknown"
}

// State is a complete snapshot of a run. Every checkpoint record is one
// State, so a single record is enough to resume.
type State struct {
	Atoms           []atom.Atom `json:"atoms"`
	TimeStep        float64     `json:"time_step"`
	NumSteps        int         `json:"num_steps"`
	StepNum         int         `json:"step_num"`
	PotentialEnergy float64     `json:"pot_energy"`
	KineticEnergy   float64     `json:"kin_energy"`
	TotalEnergy     float64     `json:"tot_energy"`
}

func (s State) Clone() State {
	c := s
	c.Atoms = atom.Clone(s.Atoms)
	return c
}

// Time returns the simulated time in fs.
func (s State) Time() float64 {
	return float64(s.StepNum) * s.TimeStep
}

// Temperature returns the instantaneous temperature in K.
func (s State) Temperature() float64 {
	return Temperature(s.KineticEnergy, atom.MobileCount(s.Atoms))
}

func (s State) IsValid() bool {
	for _, a := range s.Atoms {
		if !a.Position.IsValid() || !a.Velocity.IsValid() {
			return false
		}
	}
	return true
}

// Checkpointer persists completed states. It must not return until the
// record is durable.
type Checkpointer interface {
	Append(State) error
}

// Reporter receives the time series of a run.
type Reporter interface {
	Trajectory(atoms []atom.Atom) error
	Energy(time, potential, kinetic, total float64) error
	Velocities(atoms []atom.Atom) error
	Kinetic(atoms []atom.Atom) error
}

// Observer is notified after each checkpointed state.
type Observer interface {
	OnStep(s State)
}

type Metric interface {
	Name() string
	Observe(s State)
	Value() float64
	Reset()
}
