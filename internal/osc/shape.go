package osc

import (
	"fmt"
	"math"
	"strings"
)

const twoPi = math.Pi * 2

// Shape selects the waveform a pool renders. Each pool is bound to exactly one shape.
type Shape int

const (
	Sine Shape = iota
	Saw
	Square
	Triangle
	RoundedSquare

	// NumShapes is the number of pools an engine owns.
	NumShapes = 5
)

var shapeNames = [NumShapes]string{"sine", "saw", "square", "triangle", "rounded-square"}

func (s Shape) String() string {
	if s < 0 || int(s) >= NumShapes {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShape accepts the names printed by String plus a few short aliases.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return Sine, nil
	case "saw", "sawtooth":
		return Saw, nil
	case "square", "sqr", "pulse":
		return Square, nil
	case "triangle", "tri":
		return Triangle, nil
	case "rounded-square", "rounded", "round":
		return RoundedSquare, nil
	}
	return 0, fmt.Errorf("unknown shape %q (expected sine|saw|square|triangle|rounded-square)", name)
}

// Sample evaluates the shape at phase in [0,1). step is the instantaneous phase increment
// and only matters for the shapes that carry a PolyBLEP correction.
func (s Shape) Sample(phase, step, param float64) float64 {
	switch s {
	case Saw:
		return saw(phase, step)
	case Square:
		return square(phase, step, param)
	case Triangle:
		return triangle(phase)
	case RoundedSquare:
		return roundedSquare(phase, param)
	default:
		return math.Sin(twoPi * phase)
	}
}

func saw(phase, step float64) float64 {
	return 2*phase - 1 - PolyBLEP(phase, step)
}

// square is +1 below the duty cycle. The falling edge is corrected by evaluating the
// BLEP against the phase rotated so that edge sits at zero.
func square(phase, step, duty float64) float64 {
	v := -1.0
	if phase < duty {
		v = 1.0
	}
	v += PolyBLEP(phase, step)
	falling := phase - duty
	falling -= math.Floor(falling)
	v -= PolyBLEP(falling, step)
	return v
}

func triangle(phase float64) float64 {
	if phase < 0.5 {
		return 4*phase - 1
	}
	return 3 - 4*phase
}

func roundedSquare(phase, param float64) float64 {
	s := param*8 + 2
	return 2/(math.Pow(math.Abs(s), s*math.Sin(twoPi*phase))+1) - 1
}

// PolyBLEP returns the band-limited step residual for a discontinuity at phase 0.
// It is non-zero only within one step of the wrap point on either side.
func PolyBLEP(phase, step float64) float64 {
	dt := math.Abs(step)
	if phase < dt {
		x := phase / dt
		return x + x - x*x - 1
	} else if phase > 1-dt {
		x := (phase - 1) / dt
		return x*x + x + x + 1
	}
	return 0
}
