package osc

import (
	"math"
	"testing"
)

func TestAdvanceKeepsPhaseInRange(t *testing.T) {
	const sr = 44100.0
	for _, tc := range []struct {
		name string
		freq float64
		fm   float64
	}{
		{"audio rate", 440, 0},
		{"negative frequency", -440, 0},
		{"modulation reverses direction", 220, -5000},
		{"step larger than a cycle", 100, 3 * sr},
		{"negative step larger than a cycle", 100, -7.5 * sr},
		{"tiny negative step", 0, -1e-15},
	} {
		t.Run(tc.name, func(t *testing.T) {
			o := Oscillator{Frequency: tc.freq}
			for i := 0; i < 10000; i++ {
				o.Advance(tc.fm, sr)
				if o.Phase < 0 || o.Phase >= 1 || math.IsNaN(o.Phase) {
					t.Fatalf("sample %d: phase %v out of [0,1)", i, o.Phase)
				}
			}
		})
	}
}

func TestAdvanceStep(t *testing.T) {
	o := Oscillator{Frequency: 1000}
	o.Advance(500, 48000)
	if want := 1500.0 / 48000; o.Step != want {
		t.Fatalf("step = %v, want %v", o.Step, want)
	}
	if math.Abs(o.Phase-o.Step) > 1e-15 {
		t.Fatalf("phase = %v, want %v", o.Phase, o.Step)
	}
}

func TestAdvanceWrapsBothDirections(t *testing.T) {
	o := Oscillator{Phase: 0.95, Frequency: 0.1}
	o.Advance(0, 1)
	if math.Abs(o.Phase-0.05) > 1e-12 {
		t.Fatalf("forward wrap: phase = %v, want 0.05", o.Phase)
	}
	o = Oscillator{Phase: 0.05, Frequency: -0.1}
	o.Advance(0, 1)
	if math.Abs(o.Phase-0.95) > 1e-12 {
		t.Fatalf("backward wrap: phase = %v, want 0.95", o.Phase)
	}
}

func TestNextSamplesBeforeAdvancing(t *testing.T) {
	o := Oscillator{Frequency: 441, Amplitude: 0.5}
	if got := o.Next(Sine, 0, 44100); got != 0 {
		t.Fatalf("first sample = %v, want 0", got)
	}
	want := 0.5 * math.Sin(2*math.Pi*0.01)
	if got := o.Next(Sine, 0, 44100); math.Abs(got-want) > 1e-12 {
		t.Fatalf("second sample = %v, want %v", got, want)
	}
}

func TestAboveNyquist(t *testing.T) {
	o := Oscillator{Frequency: 22051}
	if !o.AboveNyquist(44100) {
		t.Fatal("22051 Hz should be above Nyquist at 44100")
	}
	o.Frequency = -22051
	if !o.AboveNyquist(44100) {
		t.Fatal("negative frequencies are guarded by magnitude")
	}
	o.Frequency = 22050
	if o.AboveNyquist(44100) {
		t.Fatal("Nyquist itself is allowed")
	}
}
