package atom

import (
	"github.com/san-kum/aimd/internal/units"
	"github.com/san-kum/aimd/internal/vector"
)

// Atom is one particle of the simulation. Mass is fixed at creation; a
// frozen atom (Mobile == false) keeps its position and velocity but still
// receives forces from the backend.
type Atom struct {
	Symbol    string          `json:"symbol"`
	Mass      float64         `json:"mass"`
	Mobile    bool            `json:"can_mv"`
	Position  vector.Position `json:"pos"`
	Velocity  vector.Velocity `json:"vel"`
	Force     vector.Force    `json:"force"`
	NextForce vector.Force    `json:"next_force"`
}

func New(s Species, pos vector.Position) Atom {
	return Atom{
		Symbol:   s.Symbol,
		Mass:     s.Mass,
		Mobile:   true,
		Position: pos,
	}
}

// KineticEnergy returns ½mv² in units of 100 kJ/mol.
func (a Atom) KineticEnergy() float64 {
	return 0.5 * a.Mass * a.Velocity.SquaredNorm() * units.KineticToEnergy
}

func (a Atom) Momentum() vector.Momentum {
	return vector.MomentumOf(a.Velocity, a.Mass)
}

// Freeze makes the atom immobile and zeroes its velocity.
func (a *Atom) Freeze() {
	a.Mobile = false
	a.Velocity = vector.Velocity{}
}

// Site is what the force backend sees of an atom.
type Site struct {
	Symbol   string
	Position vector.Position
}

func Sites(atoms []Atom) []Site {
	sites := make([]Site, len(atoms))
	for i, a := range atoms {
		sites[i] = Site{Symbol: a.Symbol, Position: a.Position}
	}
	return sites
}

func Clone(atoms []Atom) []Atom {
	c := make([]Atom, len(atoms))
	copy(c, atoms)
	return c
}

// KineticEnergy returns Σ½mv² over all atoms in units of 100 kJ/mol.
func KineticEnergy(atoms []Atom) float64 {
	sum := 0.0
	for _, a := range atoms {
		sum += a.KineticEnergy()
	}
	return sum
}

func MobileCount(atoms []Atom) int {
	n := 0
	for _, a := range atoms {
		if a.Mobile {
			n++
		}
	}
	return n
}

// CenterOfMassVelocity returns (Σmᵢvᵢ)/(Σmᵢ), or zero for an empty set.
func CenterOfMassVelocity(atoms []Atom) vector.Velocity {
	var p vector.Momentum
	total := 0.0
	for _, a := range atoms {
		p = p.Add(a.Momentum())
		total += a.Mass
	}
	if total == 0 {
		return vector.Velocity{}
	}
	return vector.VelocityOf(p, total)
}

// RemoveCenterOfMassVelocity subtracts the centre-of-mass velocity from
// every atom so the ensemble carries no net linear momentum.
func RemoveCenterOfMassVelocity(atoms []Atom) {
	vcm := CenterOfMassVelocity(atoms)
	for i := range atoms {
		atoms[i].Velocity = atoms[i].Velocity.Sub(vcm)
	}
}
