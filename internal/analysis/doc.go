// Package analysis post-processes the checkpoint history of a run.
//
//   - [Summarize]: energy and temperature statistics and the linear drift
//     of the total energy
//   - [VelocityAutocorrelation]: normalised velocity autocorrelation over
//     mobile atoms
//   - [PowerSpectrum]: vibrational density of states from a correlation
//     function, in cm⁻¹
//
// # Typical use
//
//	states, _ := log.All()
//	vacf, _ := analysis.VelocityAutocorrelation(states, 200)
//	spec, _ := analysis.PowerSpectrum(vacf, states[0].TimeStep)
package analysis
