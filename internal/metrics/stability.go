package metrics

import "github.com/san-kum/aimd/internal/engine"

// Stability is the fraction of steps in which no mobile atom moved further
// than threshold Å from its previous position.
type Stability struct {
	name       string
	threshold  float64
	previous   engine.State
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(st engine.State) {
	if s.samples > 0 && len(s.previous.Atoms) == len(st.Atoms) {
		for i, a := range st.Atoms {
			if a.Position.Sub(s.previous.Atoms[i].Position).Norm() > s.threshold {
				s.violations++
				break
			}
		}
	}
	s.previous = st
	s.samples++
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.previous = engine.State{}
	s.violations = 0
	s.samples = 0
}
