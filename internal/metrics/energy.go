package metrics

import (
	"math"

	"github.com/san-kum/aimd/internal/engine"
)

// EnergyDrift tracks the largest relative deviation of the total energy
// from its first observed value.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s engine.State) {
	if e.samples == 0 {
		e.initialEnergy = s.TotalEnergy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(s.TotalEnergy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// Temperature averages the instantaneous temperature in K.
type Temperature struct {
	name    string
	sum     float64
	samples int
}

func NewTemperature() *Temperature {
	return &Temperature{name: "mean_temperature"}
}

func (t *Temperature) Name() string { return t.name }

func (t *Temperature) Observe(s engine.State) {
	t.sum += s.Temperature()
	t.samples++
}

func (t *Temperature) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return t.sum / float64(t.samples)
}

func (t *Temperature) Reset() {
	t.sum = 0
	t.samples = 0
}
