package atom

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAtomCount indicates the source has no NAtoms= directive.
	ErrMissingAtomCount = errors.New("atom: missing atom count (NAtoms=) in geometry source")

	// ErrUnsupportedSpecies indicates an atomic number absent from the species table.
	ErrUnsupportedSpecies = errors.New("atom: unsupported species")

	// ErrMalformedRecord indicates a geometry record that could not be parsed.
	ErrMalformedRecord = errors.New("atom: malformed geometry record")
)

// UnsupportedSpeciesError carries the atomic number that failed the lookup.
type UnsupportedSpeciesError struct {
	Number int
}

func (e *UnsupportedSpeciesError) Error() string {
	return fmt.Sprintf("atom: atomic number %d is not supported", e.Number)
}

func (e *UnsupportedSpeciesError) Is(target error) bool {
	return target == ErrUnsupportedSpecies
}
