package modulation

import "testing"

// fakeResolver reports owners in the order they were added.
type fakeResolver struct {
	owners []struct {
		ref   Ref
		voice int
	}
	marked []Ref
}

func (f *fakeResolver) add(ref Ref, voice int) {
	f.owners = append(f.owners, struct {
		ref   Ref
		voice int
	}{ref, voice})
}

func (f *fakeResolver) FirstOfVoice(voice int) (Ref, bool) {
	for _, o := range f.owners {
		if o.voice == voice {
			return o.ref, true
		}
	}
	return None, false
}

func (f *fakeResolver) MarkModulator(ref Ref) { f.marked = append(f.marked, ref) }

func TestGraphCapacity(t *testing.T) {
	g := NewGraph(2)
	if !g.Add(Ref{0, 0}, 1, 1) || !g.Add(Ref{0, 1}, 1, 1) {
		t.Fatal("expected first two links to fit")
	}
	if g.Add(Ref{0, 2}, 1, 1) {
		t.Fatal("third link should be dropped")
	}
	if g.Len() != 2 {
		t.Fatalf("len = %d, want 2", g.Len())
	}
	g.Reset()
	if g.Len() != 0 || len(g.Links()) != 0 {
		t.Fatal("reset should clear links")
	}
}

func TestGraphOneModulatorPerCarrier(t *testing.T) {
	g := NewGraph(4)
	g.Add(Ref{1, 0}, 0, 1)
	if g.Add(Ref{1, 0}, 2, 1) {
		t.Fatal("carrier already has a link")
	}
}

func TestGraphResolveFirstOfVoice(t *testing.T) {
	r := &fakeResolver{}
	r.add(Ref{0, 0}, 0) // voice 0, first note
	r.add(Ref{0, 1}, 0) // voice 0, second note
	r.add(Ref{2, 0}, 1)
	r.add(Ref{2, 1}, 1)

	g := NewGraph(8)
	g.Add(Ref{2, 0}, 0, 440)
	g.Add(Ref{2, 1}, 0, 660)
	g.Resolve(r)

	for i, l := range g.Links() {
		if !l.Resolved() || l.Modulator != (Ref{0, 0}) {
			t.Fatalf("link %d modulator = %+v, want {0 0}", i, l.Modulator)
		}
	}
	l, ok := g.Lookup(Ref{2, 1})
	if !ok || l.Depth != 660 {
		t.Fatalf("lookup = %+v, %v", l, ok)
	}
	if len(r.marked) != 2 || r.marked[0] != (Ref{0, 0}) {
		t.Fatalf("marked = %v", r.marked)
	}
}

func TestGraphResolveMissingVoice(t *testing.T) {
	r := &fakeResolver{}
	r.add(Ref{0, 0}, 0)
	g := NewGraph(2)
	g.Add(Ref{0, 0}, 3, 1)
	g.Resolve(r)
	if g.Links()[0].Resolved() {
		t.Fatal("link to an inactive voice must stay unresolved")
	}
	if len(r.marked) != 0 {
		t.Fatal("nothing should be marked")
	}
}

func TestGraphRejectsModulatedModulator(t *testing.T) {
	r := &fakeResolver{}
	r.add(Ref{0, 0}, 0) // voice 0 modulated by voice 1
	r.add(Ref{1, 0}, 1) // voice 1 modulated by voice 0
	g := NewGraph(4)
	g.Add(Ref{0, 0}, 1, 1)
	g.Add(Ref{1, 0}, 0, 1)
	g.Resolve(r)
	for i, l := range g.Links() {
		if l.Resolved() {
			t.Fatalf("link %d resolved to a carrier: %+v", i, l)
		}
	}
}

func TestLookupMiss(t *testing.T) {
	g := NewGraph(1)
	g.Add(Ref{0, 0}, 1, 1)
	if _, ok := g.Lookup(Ref{0, 1}); ok {
		t.Fatal("unexpected link")
	}
	if None.Valid() {
		t.Fatal("None must not be valid")
	}
}
