package synth

import (
	"math"
	"time"

	"github.com/cbegin/polysynth-go/internal/modulation"
	"github.com/cbegin/polysynth-go/internal/osc"
)

// NoModulation marks a voice definition without a modulation source.
const NoModulation = -1

type Params struct {
	BlockSize    int
	PoolCapacity int     // oscillators per shape
	MaxLinks     int     // modulation links per cycle
	ModIndex     float64 // modulation depth as a ratio of the carrier frequency
	RefPitch     float64
	RefFreq      float64
}

func DefaultParams() Params {
	return Params{
		BlockSize:    1024,
		PoolCapacity: 32,
		MaxLinks:     32,
		ModIndex:     1.0,
		RefPitch:     69,
		RefFreq:      440,
	}
}

// VoiceDef describes a timbre independently of any note.
type VoiceDef struct {
	Shape      osc.Shape
	Transpose  float64 // semitones
	Amplitude  float64
	ShapeParam float64 // duty cycle or roundness, clamped to [0,1] at rebuild
	ModSource  int     // index into the voice list, or NoModulation
}

// Note is a held trigger. Frequency, when positive, overrides Pitch.
type Note struct {
	Pitch     float64 // semitones, MIDI numbering
	Frequency float64 // Hz
	OctaveUp  bool
}

// Sink is the consumer side of the block handoff.
type Sink interface {
	// Ready reports whether the previously submitted block has been consumed.
	Ready() bool
	// Submit takes a fully written block. The slice is only read during the call.
	Submit(block []float64)
}

type Engine struct {
	sampleRate float64
	params     Params
	pools      [osc.NumShapes]*osc.Pool
	links      *modulation.Graph
	out        []float64
	lastCycle  time.Duration
}

func New(sampleRate int, params Params) *Engine {
	def := DefaultParams()
	if params.BlockSize <= 0 {
		params.BlockSize = def.BlockSize
	}
	if params.PoolCapacity <= 0 {
		params.PoolCapacity = def.PoolCapacity
	}
	if params.MaxLinks <= 0 {
		params.MaxLinks = def.MaxLinks
	}
	if params.RefFreq <= 0 {
		params.RefFreq = def.RefFreq
		params.RefPitch = def.RefPitch
	}
	e := &Engine{
		sampleRate: float64(sampleRate),
		params:     params,
		links:      modulation.NewGraph(params.MaxLinks),
		out:        make([]float64, params.BlockSize),
	}
	for s := range e.pools {
		e.pools[s] = osc.NewPool(osc.Shape(s), params.PoolCapacity, params.BlockSize)
	}
	return e
}

func (e *Engine) SampleRate() float64 { return e.sampleRate }
func (e *Engine) BlockSize() int      { return len(e.out) }
func (e *Engine) Params() Params      { return e.params }

// Pool returns the pool bound to shape.
func (e *Engine) Pool(shape osc.Shape) *osc.Pool {
	if shape < 0 || int(shape) >= osc.NumShapes {
		return nil
	}
	return e.pools[shape]
}

// Links returns this cycle's modulation links.
func (e *Engine) Links() []modulation.Link { return e.links.Links() }

// Output returns the last accumulated block. It is overwritten by the next Render.
func (e *Engine) Output() []float64 { return e.out }

// LastCycleDuration is the wall time spent in the most recent Cycle.
func (e *Engine) LastCycleDuration() time.Duration { return e.lastCycle }

func (e *Engine) ActiveOscillators() int {
	n := 0
	for _, p := range e.pools {
		n += p.Len()
	}
	return n
}

// Rebuild regenerates every pool and the modulation graph from the voice list and held notes.
// Voices that do not fit in their pool are dropped.
func (e *Engine) Rebuild(voices []VoiceDef, notes []Note) {
	for _, p := range e.pools {
		p.Reset()
	}
	e.links.Reset()
	for vi := range voices {
		v := &voices[vi]
		pool := e.Pool(v.Shape)
		if pool == nil {
			continue
		}
		for ni := range notes {
			slot, o := pool.Acquire()
			if o == nil {
				break
			}
			o.Frequency = e.noteFreq(notes[ni], v.Transpose)
			o.Amplitude = v.Amplitude
			o.ShapeParam = clamp(v.ShapeParam, 0, 1)
			o.Voice = vi
			o.Modulator = false
			o.Silent = false
			if v.ModSource >= 0 && v.ModSource < len(voices) {
				e.links.Add(modulation.Ref{Pool: int(v.Shape), Slot: slot}, v.ModSource, o.Frequency*e.params.ModIndex)
			}
		}
	}
	e.links.Resolve(e)
}

// Render zeroes the output block, renders modulators then everything else, and sums the
// audible oscillators.
func (e *Engine) Render() []float64 {
	for i := range e.out {
		e.out[i] = 0
	}
	for _, p := range e.pools {
		p.RenderModulators(e.sampleRate)
	}
	for _, p := range e.pools {
		p.Render(e, e.sampleRate)
	}
	for _, p := range e.pools {
		active := p.Active()
		for i := range active {
			o := &active[i]
			if o.Modulator || o.Silent {
				continue
			}
			for n, s := range o.Buffer {
				e.out[n] += s
			}
		}
	}
	return e.out
}

// Cycle runs one rebuild and render and records its duration.
func (e *Engine) Cycle(voices []VoiceDef, notes []Note) []float64 {
	start := time.Now()
	e.Rebuild(voices, notes)
	e.Render()
	e.lastCycle = time.Since(start)
	return e.out
}

// Poll runs a cycle only when the sink has consumed the previous block. It never waits.
func (e *Engine) Poll(sink Sink, voices []VoiceDef, notes []Note) bool {
	if !sink.Ready() {
		return false
	}
	sink.Submit(e.Cycle(voices, notes))
	return true
}

// Modulation implements osc.ModSource.
func (e *Engine) Modulation(shape osc.Shape, slot int) ([]float64, float64, bool) {
	link, ok := e.links.Lookup(modulation.Ref{Pool: int(shape), Slot: slot})
	if !ok || !link.Resolved() {
		return nil, 0, false
	}
	m := e.pools[link.Modulator.Pool].At(link.Modulator.Slot)
	if m == nil || m.Silent {
		return nil, 0, false
	}
	return m.Buffer, link.Depth, true
}

// FirstOfVoice implements modulation.Resolver.
func (e *Engine) FirstOfVoice(voice int) (modulation.Ref, bool) {
	for s, p := range e.pools {
		active := p.Active()
		for i := range active {
			if active[i].Voice == voice {
				return modulation.Ref{Pool: s, Slot: i}, true
			}
		}
	}
	return modulation.None, false
}

// MarkModulator implements modulation.Resolver.
func (e *Engine) MarkModulator(ref modulation.Ref) {
	if o := e.pools[ref.Pool].At(ref.Slot); o != nil {
		o.Modulator = true
	}
}

func (e *Engine) noteFreq(n Note, transpose float64) float64 {
	semis := transpose
	if n.OctaveUp {
		semis += 12
	}
	if n.Frequency > 0 {
		return n.Frequency * math.Pow(2, semis/12)
	}
	return PitchToFreq(n.Pitch+semis, e.params.RefPitch, e.params.RefFreq)
}

// PitchToFreq converts a semitone pitch to Hz relative to a reference pitch and frequency.
func PitchToFreq(pitch, refPitch, refFreq float64) float64 {
	return math.Pow(2, (pitch-refPitch)/12) * refFreq
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
