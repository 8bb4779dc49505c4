package osc

import "math"

// Oscillator is a phase-accumulating tone generator. It is re-initialised in place every
// render cycle; Phase and the Buffer storage survive in the slot between cycles.
type Oscillator struct {
	Phase      float64
	Step       float64
	Frequency  float64 // Hz
	Amplitude  float64
	ShapeParam float64
	Buffer     []float64

	Modulator bool // feeds a carrier, excluded from the mix
	Voice     int  // index of the voice definition that spawned it
	Silent    bool // skipped by the Nyquist guard this cycle
}

// Advance moves the phase by one sample at the instantaneous frequency Frequency+fm.
func (o *Oscillator) Advance(fm, sampleRate float64) {
	o.Step = (o.Frequency + fm) / sampleRate
	o.Phase = wrapPhase(o.Phase + o.Step)
}

// Next returns the amplitude-scaled sample at the current phase, then advances.
func (o *Oscillator) Next(shape Shape, fm, sampleRate float64) float64 {
	v := shape.Sample(o.Phase, (o.Frequency+fm)/sampleRate, o.ShapeParam)
	o.Advance(fm, sampleRate)
	return v * o.Amplitude
}

// AboveNyquist reports whether the base frequency cannot be represented at sampleRate.
func (o *Oscillator) AboveNyquist(sampleRate float64) bool {
	return math.Abs(o.Frequency) > sampleRate/2
}

func wrapPhase(p float64) float64 {
	if p >= 1 {
		p -= 1
		if p >= 1 {
			p -= math.Floor(p)
		}
	} else if p < 0 {
		p += 1
		if p < 0 {
			p -= math.Floor(p)
		}
		// a tiny negative phase rounds up to exactly 1
		if p >= 1 {
			p = 0
		}
	}
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0
	}
	return p
}
