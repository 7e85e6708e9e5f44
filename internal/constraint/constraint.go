// Package constraint freezes atoms selected by a 1-based index range list
// such as "1-3,7-7".
package constraint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/aimd/internal/atom"
)

// ErrInvalidRange indicates a range that is reversed or falls outside the
// atom list.
var ErrInvalidRange = errors.New("constraint: invalid atom range")

// Range is an inclusive 1-based interval of atom indices.
type Range struct {
	Lo int
	Hi int
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Lo, r.Hi)
}

func (r Range) Contains(index int) bool {
	return index >= r.Lo && index <= r.Hi
}

// Parse reads a comma separated list of lo-hi ranges. Within a token, parts
// between dashes that are not integers are skipped and the first two that
// are become the bounds; a token with no integer at all is skipped. A lone
// integer k is read as k-k.
func Parse(expr string) ([]Range, error) {
	var ranges []Range
	for _, token := range strings.Split(expr, ",") {
		bounds := extractInts(token)
		switch len(bounds) {
		case 0:
			continue
		case 1:
			ranges = append(ranges, Range{Lo: bounds[0], Hi: bounds[0]})
		default:
			r := Range{Lo: bounds[0], Hi: bounds[1]}
			if r.Lo > r.Hi {
				return nil, fmt.Errorf("%w: %s is reversed", ErrInvalidRange, r)
			}
			ranges = append(ranges, r)
		}
	}
	return ranges, nil
}

// extractInts returns the dash separated parts of token that parse as
// integers, at most two.
func extractInts(token string) []int {
	out := make([]int, 0, 2)
	for _, p := range strings.Split(token, "-") {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		out = append(out, n)
		if len(out) == 2 {
			break
		}
	}
	return out
}

// Freeze marks every atom covered by ranges immobile and zeroes its
// velocity. It returns the frozen 1-based indices in ascending order. No
// atom is touched when any range is invalid.
func Freeze(atoms []atom.Atom, ranges []Range) ([]int, error) {
	n := len(atoms)
	for _, r := range ranges {
		if r.Lo > r.Hi {
			return nil, fmt.Errorf("%w: %s is reversed", ErrInvalidRange, r)
		}
		if r.Lo < 1 || r.Hi > n {
			return nil, fmt.Errorf("%w: %s outside 1-%d", ErrInvalidRange, r, n)
		}
	}

	var frozen []int
	for i := range atoms {
		idx := i + 1
		for _, r := range ranges {
			if r.Contains(idx) {
				atoms[i].Freeze()
				frozen = append(frozen, idx)
				break
			}
		}
	}
	return frozen, nil
}

// Apply parses expr and freezes the matching atoms. An empty expression
// freezes nothing.
func Apply(atoms []atom.Atom, expr string) ([]int, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}
	ranges, err := Parse(expr)
	if err != nil {
		return nil, err
	}
	return Freeze(atoms, ranges)
}
