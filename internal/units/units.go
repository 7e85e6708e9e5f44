// Package units holds the unit system of the dynamics code and the
// conversion factors to and from the quantum-chemistry backend.
//
// Internal units: Å for distance, fs for time, g/mol for mass, and
// 100 kJ/mol for energy. Forces are in g·Å/(mol·fs²) so that F/m is
// directly an acceleration in Å/fs².
package units

// Physical constants (SI).
const (
	Boltzmann   = 1.380649e-23     // J/K
	Avogadro    = 6.0221408e23     // 1/mol
	GasConstant = 8.31446261815324 // J/(mol·K)
)

// Conversions
const (
	// g/mol·Å²/fs² -> 100 kJ/mol
	KineticToEnergy = 100.0
	// 100 kJ/mol -> J/mol
	EnergyToJPerMol = 100.0 * 1000.0
	// Hartree -> 100 kJ/mol
	HartreeToEnergy = 2625.5 / 100.0
	// Hartree/Bohr -> g·Å/(mol·fs²)
	HartreeBohrToForce = 0.496147792
	// g/mol -> kg
	AMUToKg = 1.0 / Avogadro / 1000.0
	// m²/s² -> Å²/fs²
	SIVelocitySqToInternal = 1e-10
)

// DefaultTemperature is the reference temperature in K.
const DefaultTemperature = 300.0
