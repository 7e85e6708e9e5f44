package engine

import (
	"math"

	"github.com/san-kum/aimd/internal/atom"
	"github.com/san-kum/aimd/internal/units"
)

// Temperature converts a kinetic energy (100 kJ/mol) shared by mobile atoms
// into a temperature through equipartition, T = 2·KE/(N_f·R) with
// N_f = 3·mobile: three degrees of freedom per mobile atom, not the
// single-particle (2/3)·KE/R normalisation. It is zero when there is
// nothing to move.
func Temperature(kinetic float64, mobile int) float64 {
	nf := 3 * mobile
	if nf == 0 || kinetic <= 0 {
		return 0
	}
	return 2 * kinetic * units.EnergyToJPerMol / (float64(nf) * units.GasConstant)
}

// rescale multiplies mobile velocities so the ensemble sits at target. It
// reports false and leaves the atoms alone when no temperature is defined.
func rescale(atoms []atom.Atom, target float64) (float64, bool) {
	current := Temperature(atom.KineticEnergy(atoms), atom.MobileCount(atoms))
	if current <= 0 {
		return 0, false
	}
	s := math.Sqrt(target / current)
	for i := range atoms {
		if atoms[i].Mobile {
			atoms[i].Velocity = atoms[i].Velocity.Scale(s)
		}
	}
	return s, true
}
