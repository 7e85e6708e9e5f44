package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/aimd/internal/atom"
	"github.com/san-kum/aimd/internal/engine"
	"github.com/san-kum/aimd/internal/units"
	"github.com/san-kum/aimd/internal/vector"
)

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift()

	for _, e := range []float64{-100, -101, -99.5, -100.2} {
		m.Observe(engine.State{TotalEnergy: e})
	}

	if math.Abs(m.Value()-0.01) > 1e-12 {
		t.Errorf("expected drift 0.01, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestEnergyDrift_ZeroInitial(t *testing.T) {
	m := NewEnergyDrift()
	m.Observe(engine.State{TotalEnergy: 0})
	m.Observe(engine.State{TotalEnergy: 5})
	if m.Value() != 0 {
		t.Errorf("drift is undefined for zero reference, got %f", m.Value())
	}
}

func TestTemperature(t *testing.T) {
	m := NewTemperature()
	if m.Value() != 0 {
		t.Error("expected zero before samples")
	}

	atoms := []atom.Atom{{Mass: 1, Mobile: true}, {Mass: 1, Mobile: true}}
	for _, target := range []float64{200, 400} {
		// two atoms at 3/2·R·T each
		ke := 2 * 1.5 * units.GasConstant * target / units.EnergyToJPerMol
		m.Observe(engine.State{Atoms: atoms, KineticEnergy: ke})
	}

	if math.Abs(m.Value()-300) > 1e-9 {
		t.Errorf("expected mean 300 K, got %f", m.Value())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(0.5)
	if m.Value() != 1.0 {
		t.Error("expected 1.0 before samples")
	}

	at := func(x float64) engine.State {
		return engine.State{Atoms: []atom.Atom{{Position: vector.NewPosition(x, 0, 0)}}}
	}
	for _, x := range []float64{0, 0.1, 0.2, 1.5} {
		m.Observe(at(x))
	}

	if math.Abs(m.Value()-0.75) > 1e-12 {
		t.Errorf("expected 0.75, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 1.0 {
		t.Error("expected 1.0 after reset")
	}
}
