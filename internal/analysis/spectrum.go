// Package analysis computes magnitude spectra of rendered blocks for plotting and for
// measuring alias energy.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectrum returns the Hann-windowed magnitude spectrum of samples, bins 0..len/2.
// Magnitudes are normalised so a full-scale sine at a bin centre reads about 1.
func Spectrum(samples []float64) []float64 {
	n := len(samples)
	if n == 0 {
		return nil
	}
	x := make([]float64, n)
	copy(x, samples)
	window.Apply(x, window.Hann)
	bins := fft.FFTReal(x)
	out := make([]float64, n/2+1)
	scale := 4.0 / float64(n)
	for i := range out {
		out[i] = cmplx.Abs(bins[i]) * scale
	}
	return out
}

// BinFreq is the centre frequency of bin i for an n-point spectrum.
func BinFreq(i, n int, sampleRate float64) float64 {
	return float64(i) * sampleRate / float64(n)
}

// PeakBin returns the index of the largest magnitude, ignoring DC.
func PeakBin(mags []float64) int {
	peak := 0
	for i := 1; i < len(mags); i++ {
		if peak == 0 || mags[i] > mags[peak] {
			peak = i
		}
	}
	return peak
}

// InharmonicEnergy sums the squared magnitudes of bins farther than guard bins from any
// harmonic of f0. For a periodic tone this is dominated by aliasing and leakage.
func InharmonicEnergy(mags []float64, n int, sampleRate, f0 float64, guard int) float64 {
	var e float64
	for i := 1; i < len(mags); i++ {
		f := BinFreq(i, n, sampleRate)
		k := math.Round(f / f0)
		if k >= 1 {
			dist := math.Abs(f-k*f0) * float64(n) / sampleRate
			if dist <= float64(guard) {
				continue
			}
		}
		e += mags[i] * mags[i]
	}
	return e
}

// DB converts a magnitude to decibels, flooring at -120.
func DB(mag float64) float64 {
	if mag <= 1e-6 {
		return -120
	}
	return 20 * math.Log10(mag)
}
