package atom

import (
	"sort"
)

type Species struct {
	Number int
	Symbol string
	Mass   float64 // g/mol
}

var speciesTable = map[int]Species{
	1:  {1, "H", 1.008},
	2:  {2, "He", 4.0026},
	3:  {3, "Li", 6.94},
	4:  {4, "Be", 9.0122},
	5:  {5, "B", 10.81},
	6:  {6, "C", 12.011},
	7:  {7, "N", 14.007},
	8:  {8, "O", 15.999},
	9:  {9, "F", 18.998},
	10: {10, "Ne", 20.180},
	11: {11, "Na", 22.990},
	12: {12, "Mg", 24.305},
	13: {13, "Al", 26.982},
	14: {14, "Si", 28.085},
	15: {15, "P", 30.974},
	16: {16, "S", 32.06},
	17: {17, "Cl", 35.45},
	18: {18, "Ar", 39.948},
	19: {19, "K", 39.098},
	20: {20, "Ca", 40.078},
	25: {25, "Mn", 54.938},
	26: {26, "Fe", 55.845},
	27: {27, "Co", 58.933},
	28: {28, "Ni", 58.693},
	29: {29, "Cu", 63.546},
	30: {30, "Zn", 65.38},
	34: {34, "Se", 78.971},
	35: {35, "Br", 79.904},
	47: {47, "Ag", 107.87},
	53: {53, "I", 126.90},
	78: {78, "Pt", 195.08},
	79: {79, "Au", 196.97},
}

// LookupSpecies resolves an atomic number to its symbol and mass.
func LookupSpecies(number int) (Species, error) {
	s, ok := speciesTable[number]
	if !ok {
		return Species{}, &UnsupportedSpeciesError{Number: number}
	}
	return s, nil
}

// SupportedNumbers lists the atomic numbers in the species table, ascending.
func SupportedNumbers() []int {
	nums := make([]int, 0, len(speciesTable))
	for n := range speciesTable {
		nums = append(nums, n)
	}
	sort.Ints(nums)
	return nums
}
