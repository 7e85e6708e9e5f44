package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"
)

// fs⁻¹ -> cm⁻¹
const perFemtosecondToWavenumber = 1e15 / 2.99792458e10

type Spectrum struct {
	Wavenumber []float64 // cm⁻¹
	Power      []float64
}

// Peak returns the wavenumber of the strongest non-zero frequency.
func (s Spectrum) Peak() float64 {
	if len(s.Power) < 2 {
		return 0
	}
	return s.Wavenumber[1+floats.MaxIdx(s.Power[1:])]
}

// PowerSpectrum transforms a signal sampled every dt fs. The signal is
// Hann-windowed and the power is normalised to a maximum of 1.
func PowerSpectrum(signal []float64, dt float64) (Spectrum, error) {
	if len(signal) < 4 || dt <= 0 {
		return Spectrum{}, ErrTooShort
	}

	seq := make([]float64, len(signal))
	copy(seq, signal)
	window.Hann(seq)

	fft := fourier.NewFFT(len(seq))
	coeffs := fft.Coefficients(nil, seq)

	spec := Spectrum{
		Wavenumber: make([]float64, len(coeffs)),
		Power:      make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		spec.Wavenumber[i] = fft.Freq(i) / dt * perFemtosecondToWavenumber
		a := cmplx.Abs(c)
		spec.Power[i] = a * a
	}

	if peak := floats.Max(spec.Power); peak > 0 {
		floats.Scale(1/peak, spec.Power)
	}
	return spec, nil
}
