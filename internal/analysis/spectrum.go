package analysis

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/gicrisf/org-lorenz-attractor/internal/dynamo"
)

// PowerSpectrum computes the one-sided power spectrum of a uniformly sampled
// signal with sample spacing dt. The mean is removed first so the
// zero-frequency bin does not swamp the broadband content that marks chaos.
// Frequencies come back in cycles per time unit.
func PowerSpectrum(signal []float64, dt float64) (freqs, power []float64, err error) {
	n := len(signal)
	if n < 2 || dt <= 0 {
		return nil, nil, fmt.Errorf("%w: %d samples, dt=%g", dynamo.ErrInvalidParams, n, dt)
	}

	mean := floats.Sum(signal) / float64(n)
	centered := make([]float64, n)
	for i, v := range signal {
		centered[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centered)

	freqs = make([]float64, len(coeff))
	power = make([]float64, len(coeff))
	for i, c := range coeff {
		freqs[i] = fft.Freq(i) / dt
		re, im := real(c), imag(c)
		power[i] = (re*re + im*im) / float64(n)
	}
	return freqs, power, nil
}
