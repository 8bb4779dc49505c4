// Package modulation holds the per-cycle frequency-modulation routing between oscillators.
// Oscillators are addressed by arena index (pool, slot). The graph is rebuilt every cycle.
package modulation

// Ref addresses an oscillator slot inside one of the engine's pools.
type Ref struct {
	Pool int
	Slot int
}

// None is the unresolved reference.
var None = Ref{Pool: -1, Slot: -1}

func (r Ref) Valid() bool { return r.Pool >= 0 && r.Slot >= 0 }

// Link routes Modulator's output, scaled by Depth, into Carrier's instantaneous frequency.
// Source is the voice definition expected to supply the modulator.
type Link struct {
	Carrier   Ref
	Modulator Ref
	Source    int
	Depth     float64
}

func (l Link) Resolved() bool { return l.Modulator.Valid() }

// Resolver finds modulator candidates while links are resolved.
type Resolver interface {
	// FirstOfVoice returns the first active oscillator owned by voice, in pool then slot order.
	FirstOfVoice(voice int) (Ref, bool)
	// MarkModulator flags the oscillator at ref as a modulator.
	MarkModulator(ref Ref)
}

// Graph is a bounded collection of links. Adding beyond capacity drops the link.
type Graph struct {
	links []Link
	n     int
}

func NewGraph(capacity int) *Graph {
	if capacity < 0 {
		capacity = 0
	}
	return &Graph{links: make([]Link, capacity)}
}

func (g *Graph) Reset()   { g.n = 0 }
func (g *Graph) Len() int { return g.n }
func (g *Graph) Cap() int { return len(g.links) }

// Links returns the links added since the last Reset.
func (g *Graph) Links() []Link { return g.links[:g.n] }

// Add appends a pending link for carrier. It reports false when the graph is full or the
// carrier already has a link.
func (g *Graph) Add(carrier Ref, source int, depth float64) bool {
	if g.n >= len(g.links) || g.isCarrier(carrier) {
		return false
	}
	g.links[g.n] = Link{Carrier: carrier, Modulator: None, Source: source, Depth: depth}
	g.n++
	return true
}

// Lookup scans the links for carrier. The scan is linear; link counts are small.
func (g *Graph) Lookup(carrier Ref) (Link, bool) {
	for i := 0; i < g.n; i++ {
		if g.links[i].Carrier == carrier {
			return g.links[i], true
		}
	}
	return Link{}, false
}

// Resolve binds each pending link to the first oscillator of its source voice. A candidate
// that is itself a carrier is rejected, which keeps the graph single-level and acyclic; the
// link then stays unresolved and renders as unmodulated.
func (g *Graph) Resolve(r Resolver) {
	for i := 0; i < g.n; i++ {
		l := &g.links[i]
		ref, ok := r.FirstOfVoice(l.Source)
		if !ok || g.isCarrier(ref) {
			l.Modulator = None
			continue
		}
		l.Modulator = ref
		r.MarkModulator(ref)
	}
}

func (g *Graph) isCarrier(ref Ref) bool {
	for i := 0; i < g.n; i++ {
		if g.links[i].Carrier == ref {
			return true
		}
	}
	return false
}
