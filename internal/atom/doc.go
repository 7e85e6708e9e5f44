// Package atom holds the particle model of the simulation: the [Atom]
// record, the species table, and the ingestion of an initial structure
// from a Gaussian log file.
//
// Ingestion picks the final geometry block of the log, assigns masses from
// the species table, draws Maxwell–Boltzmann velocities and removes the
// centre-of-mass velocity:
//
//	sampler := atom.NewSampler(300, seed)
//	atoms, err := atom.IngestFile("water.log", sampler)
package atom
