package atom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/san-kum/aimd/internal/vector"
)

var (
	// index, atomic number, atom type, x, y, z
	recordPattern = regexp.MustCompile(`^\s+\d+\s+\d+\s+\d+(\s+-?\d+\.\d+){3}\s*$`)
	countPattern  = regexp.MustCompile(`NAtoms=\s*(\d+)`)
)

// IngestFile opens path and runs Ingest on it.
func IngestFile(path string, sampler *Sampler) ([]Atom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Ingest(f, sampler)
}

// Ingest builds the atoms of the last geometry block in r. Velocities are
// drawn from sampler and the centre-of-mass velocity is removed. Nothing is
// returned unless every record parses.
func Ingest(r io.Reader, sampler *Sampler) ([]Atom, error) {
	records, count, err := scanGeometry(r)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, ErrMissingAtomCount
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: declared atom count is zero", ErrMalformedRecord)
	}
	if len(records) < count {
		return nil, fmt.Errorf("%w: found %d geometry records, NAtoms=%d", ErrMalformedRecord, len(records), count)
	}

	lines := records[len(records)-count:]
	atoms := make([]Atom, 0, count)
	for _, line := range lines {
		a, err := parseRecord(line)
		if err != nil {
			return nil, err
		}
		atoms = append(atoms, a)
	}

	for i := range atoms {
		atoms[i].Velocity = sampler.Velocity(atoms[i].Mass)
	}
	RemoveCenterOfMassVelocity(atoms)

	return atoms, nil
}

// scanGeometry collects the geometry records in file order and the first
// declared atom count (-1 when absent).
func scanGeometry(r io.Reader) ([]string, int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	count := -1
	var records []string
	for sc.Scan() {
		line := sc.Text()
		if recordPattern.MatchString(line) {
			records = append(records, line)
			continue
		}
		if count < 0 {
			if m := countPattern.FindStringSubmatch(line); m != nil {
				n, err := strconv.Atoi(m[1])
				if err != nil {
					return nil, 0, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
				}
				count = n
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, 0, err
	}
	return records, count, nil
}

func parseRecord(line string) (Atom, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return Atom{}, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}
	number, err := strconv.Atoi(fields[1])
	if err != nil {
		return Atom{}, fmt.Errorf("%w: atomic number in %q", ErrMalformedRecord, line)
	}
	species, err := LookupSpecies(number)
	if err != nil {
		return Atom{}, err
	}

	var xyz [3]float64
	for i := range xyz {
		xyz[i], err = strconv.ParseFloat(fields[3+i], 64)
		if err != nil {
			return Atom{}, fmt.Errorf("%w: coordinate %q", ErrMalformedRecord, fields[3+i])
		}
	}
	return New(species, vector.NewPosition(xyz[0], xyz[1], xyz[2])), nil
}
