package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/aimd/internal/engine"
)

// Stats summarises one quantity over a run.
type Stats struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

func statsOf(x []float64) Stats {
	mean, std := stat.MeanStdDev(x, nil)
	return Stats{Mean: mean, StdDev: std, Min: floats.Min(x), Max: floats.Max(x)}
}

type Summary struct {
	Steps       int
	Duration    float64 // fs
	Potential   Stats
	Kinetic     Stats
	Total       Stats
	Temperature Stats
	// DriftRate is the slope of a least-squares line through the total
	// energy, in (100 kJ/mol)/fs.
	DriftRate float64
}

// Summarize needs at least two states.
func Summarize(states []engine.State) (*Summary, error) {
	if len(states) < 2 {
		return nil, ErrTooShort
	}
	s := NewSeries(states)

	_, slope := stat.LinearRegression(s.Time, s.Total, nil, false)

	return &Summary{
		Steps:       len(states),
		Duration:    s.Time[len(s.Time)-1] - s.Time[0],
		Potential:   statsOf(s.Potential),
		Kinetic:     statsOf(s.Kinetic),
		Total:       statsOf(s.Total),
		Temperature: statsOf(s.Temperature),
		DriftRate:   slope,
	}, nil
}
