package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/san-kum/aimd/internal/engine"
)

// VelocityAutocorrelation returns C(τ)/C(0) for τ = 0..maxLag steps. C is
// averaged over time origins, Cartesian components and mobile atoms.
func VelocityAutocorrelation(states []engine.State, maxLag int) ([]float64, error) {
	n := len(states)
	if n < 2 {
		return nil, ErrTooShort
	}
	if maxLag <= 0 || maxLag >= n {
		maxLag = n - 1
	}

	natoms := len(states[0].Atoms)
	for i, s := range states {
		if len(s.Atoms) != natoms {
			return nil, fmt.Errorf("analysis: state %d has %d atoms, expected %d", i, len(s.Atoms), natoms)
		}
	}

	fft := fourier.NewCmplxFFT(2 * n)
	buf := make([]complex128, 2*n)
	sums := make([]float64, n)
	series := 0

	for a := 0; a < natoms; a++ {
		if !states[0].Atoms[a].Mobile {
			continue
		}
		for c := 0; c < 3; c++ {
			for t := range buf {
				buf[t] = 0
			}
			for t, s := range states {
				v := s.Atoms[a].Velocity
				buf[t] = complex([3]float64{v.X, v.Y, v.Z}[c], 0)
			}
			autocorrelate(fft, buf)
			for lag := 0; lag < n; lag++ {
				sums[lag] += real(buf[lag])
			}
			series++
		}
	}
	if series == 0 || sums[0] == 0 {
		return nil, fmt.Errorf("%w: no mobile atom motion", ErrTooShort)
	}

	out := make([]float64, maxLag+1)
	c0 := sums[0] / float64(n)
	for lag := range out {
		out[lag] = sums[lag] / float64(n-lag) / c0
	}
	return out, nil
}

// autocorrelate replaces a zero-padded sequence with its unnormalised
// linear autocorrelation Σ x(t)·x(t+τ).
func autocorrelate(fft *fourier.CmplxFFT, buf []complex128) {
	fft.Coefficients(buf, buf)
	for i, v := range buf {
		buf[i] = complex(real(v)*real(v)+imag(v)*imag(v), 0)
	}
	fft.Sequence(buf, buf)
	scale := 1 / float64(len(buf))
	for i := range buf {
		buf[i] *= complex(scale, 0)
	}
}
