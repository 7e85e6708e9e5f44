package analysis

import (
	"errors"

	"github.com/san-kum/aimd/internal/engine"
)

var ErrTooShort = errors.New("analysis: not enough samples")

// Series is the energy time series of a run, one entry per state.
type Series struct {
	Time        []float64
	Potential   []float64
	Kinetic     []float64
	Total       []float64
	Temperature []float64
}

func NewSeries(states []engine.State) Series {
	n := len(states)
	s := Series{
		Time:        make([]float64, n),
		Potential:   make([]float64, n),
		Kinetic:     make([]float64, n),
		Total:       make([]float64, n),
		Temperature: make([]float64, n),
	}
	for i, st := range states {
		s.Time[i] = st.Time()
		s.Potential[i] = st.PotentialEnergy
		s.Kinetic[i] = st.KineticEnergy
		s.Total[i] = st.TotalEnergy
		s.Temperature[i] = st.Temperature()
	}
	return s
}

func (s Series) Len() int { return len(s.Time) }
