package atom

import (
	"math"
	"math/rand/v2"

	"github.com/san-kum/aimd/internal/units"
	"github.com/san-kum/aimd/internal/vector"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws thermal velocities. Each Cartesian component is an
// independent sample of N(0, σ²) with σ² = k_B·T/m.
type Sampler struct {
	Temperature float64
	rng         *rand.Rand
}

func NewSampler(temperature float64, seed uint64) *Sampler {
	return &Sampler{
		Temperature: temperature,
		rng:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Sigma returns the per-component standard deviation in Å/fs for an atom
// of the given mass in g/mol.
func (s *Sampler) Sigma(mass float64) float64 {
	kg := mass * units.AMUToKg
	variance := units.Boltzmann * s.Temperature / kg
	return math.Sqrt(variance * units.SIVelocitySqToInternal)
}

func (s *Sampler) Velocity(mass float64) vector.Velocity {
	dist := distuv.Normal{Mu: 0, Sigma: s.Sigma(mass)}
	return vector.NewVelocity(s.draw(dist), s.draw(dist), s.draw(dist))
}

// draw samples dist by inverting its CDF at a uniform variate in (0, 1).
func (s *Sampler) draw(dist distuv.Normal) float64 {
	u := s.rng.Float64()
	for u == 0 {
		u = s.rng.Float64()
	}
	return dist.Quantile(u)
}
