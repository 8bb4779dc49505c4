package osc

// ModSource resolves the frequency modulation feeding a carrier, identified by the shape of
// its pool and its slot. ok is false when the oscillator is not a carrier or its modulator
// produced nothing this cycle.
type ModSource interface {
	Modulation(shape Shape, slot int) (buf []float64, depth float64, ok bool)
}

// Pool is a fixed-capacity arena of oscillators sharing one shape.
type Pool struct {
	shape Shape
	oscs  []Oscillator
	count int
}

// NewPool allocates every slot and its block buffer up front.
func NewPool(shape Shape, capacity int, blockSize int) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	p := &Pool{
		shape: shape,
		oscs:  make([]Oscillator, capacity),
	}
	for i := range p.oscs {
		p.oscs[i].Buffer = make([]float64, blockSize)
	}
	return p
}

func (p *Pool) Shape() Shape { return p.shape }
func (p *Pool) Cap() int     { return len(p.oscs) }
func (p *Pool) Len() int     { return p.count }

// Reset forgets the active oscillators. Slot contents are left in place.
func (p *Pool) Reset() {
	p.count = 0
}

// Acquire hands out the next free slot, or (-1, nil) when the pool is full.
func (p *Pool) Acquire() (int, *Oscillator) {
	if p.count >= len(p.oscs) {
		return -1, nil
	}
	slot := p.count
	p.count++
	return slot, &p.oscs[slot]
}

// At returns the oscillator in an active slot, or nil.
func (p *Pool) At(slot int) *Oscillator {
	if slot < 0 || slot >= p.count {
		return nil
	}
	return &p.oscs[slot]
}

// Active returns the oscillators acquired since the last Reset.
func (p *Pool) Active() []Oscillator {
	return p.oscs[:p.count]
}

// RenderModulators fills the buffers of the oscillators flagged as modulators.
// Modulators are never modulated themselves.
func (p *Pool) RenderModulators(sampleRate float64) {
	for i := 0; i < p.count; i++ {
		o := &p.oscs[i]
		if !o.Modulator {
			continue
		}
		p.render(o, nil, 0, sampleRate)
	}
}

// Render fills the buffers of every active non-modulator oscillator, bending the
// frequency of carriers by their modulator's current block.
func (p *Pool) Render(src ModSource, sampleRate float64) {
	for i := 0; i < p.count; i++ {
		o := &p.oscs[i]
		if o.Modulator {
			continue
		}
		var mod []float64
		var depth float64
		if src != nil {
			if buf, d, ok := src.Modulation(p.shape, i); ok {
				mod, depth = buf, d
			}
		}
		p.render(o, mod, depth, sampleRate)
	}
}

func (p *Pool) render(o *Oscillator, mod []float64, depth float64, sampleRate float64) {
	if o.AboveNyquist(sampleRate) {
		o.Silent = true
		return
	}
	o.Silent = false
	buf := o.Buffer
	if mod != nil && len(mod) >= len(buf) {
		for n := range buf {
			buf[n] = o.Next(p.shape, mod[n]*depth, sampleRate)
		}
		return
	}
	for n := range buf {
		buf[n] = o.Next(p.shape, 0, sampleRate)
	}
}
