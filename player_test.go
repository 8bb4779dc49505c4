package polysynth

import (
	"encoding/binary"
	"math"
	"testing"

	intaudio "github.com/cbegin/polysynth-go/internal/audio"
	"github.com/cbegin/polysynth-go/internal/osc"
	"github.com/cbegin/polysynth-go/internal/synth"
)

func newHeadlessPlayer(t *testing.T, opts ...PlayerOption) *Player {
	t.Helper()
	opts = append([]PlayerOption{WithBackend(intaudio.BackendNone)}, opts...)
	pl, err := NewPlayer(44100, opts...)
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	return pl
}

func TestPlayerMasterVolumeRuntimeAPI(t *testing.T) {
	pl := newHeadlessPlayer(t)
	if got := pl.MasterVolume(); got != 1 {
		t.Fatalf("default master volume = %v, want 1", got)
	}
	pl.SetMasterVolume(0.35)
	if got := pl.MasterVolume(); got != 0.35 {
		t.Fatalf("master volume = %v, want 0.35", got)
	}
	pl.SetMasterVolume(-2)
	if got := pl.MasterVolume(); got != 0 {
		t.Fatalf("master volume should clamp to 0, got %v", got)
	}
}

func TestNewPlayerValidation(t *testing.T) {
	cases := []struct {
		name string
		rate int
		opts []PlayerOption
	}{
		{"zero sample rate", 0, nil},
		{"zero block", 44100, []PlayerOption{WithBlockSize(0)}},
		{"negative capacity", 44100, []PlayerOption{WithPoolCapacity(-1)}},
		{"bad backend", 44100, []PlayerOption{WithBackend("jack")}},
		{"bad mod source", 44100, []PlayerOption{WithVoices([]synth.VoiceDef{{Shape: osc.Sine, ModSource: 4}})}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewPlayer(tc.rate, tc.opts...); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPlayerHeldNotesKeepPressOrder(t *testing.T) {
	pl := newHeadlessPlayer(t)
	pl.NoteOn(1, synth.Note{Pitch: 60})
	pl.NoteOn(2, synth.Note{Pitch: 64})
	pl.NoteOn(3, synth.Note{Pitch: 67})
	pl.NoteOn(2, synth.Note{Pitch: 64, OctaveUp: true})
	pl.NoteOff(1)
	pl.NoteOff(99)
	got := pl.HeldNotes()
	want := []synth.Note{{Pitch: 64, OctaveUp: true}, {Pitch: 67}}
	if len(got) != len(want) {
		t.Fatalf("held = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("held[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	pl.AllNotesOff()
	if len(pl.HeldNotes()) != 0 {
		t.Fatal("all notes off left notes held")
	}
}

func TestPlayerHeldNotesAreBounded(t *testing.T) {
	pl := newHeadlessPlayer(t)
	for k := 0; k < MaxHeldNotes+10; k++ {
		pl.NoteOn(k, synth.Note{Pitch: 60})
	}
	if n := len(pl.HeldNotes()); n != MaxHeldNotes {
		t.Fatalf("held %d notes, want %d", n, MaxHeldNotes)
	}
}

func TestPlayerPollFeedsStream(t *testing.T) {
	pl := newHeadlessPlayer(t, WithBlockSize(256))
	pl.NoteOn(69, synth.Note{Pitch: 69})
	if !pl.Poll() {
		t.Fatal("first poll should render")
	}
	if pl.Poll() {
		t.Fatal("poll should not render before the stream is drained")
	}
	if pl.ActiveOscillators() != 1 {
		t.Fatalf("active oscillators = %d", pl.ActiveOscillators())
	}

	p := make([]byte, 256*8)
	n, err := pl.Stream().Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("read = %d, %v", n, err)
	}
	block := pl.LastBlock(nil)
	for i := 0; i < 256; i++ {
		l := math.Float32frombits(binary.LittleEndian.Uint32(p[i*8:]))
		if l != float32(block[i]) {
			t.Fatalf("frame %d = %v, want %v", i, l, block[i])
		}
	}
	if !pl.Poll() {
		t.Fatal("poll should render once the block is consumed")
	}
	if pl.Underruns() != 0 {
		t.Fatalf("underruns = %d", pl.Underruns())
	}
}

func TestPlayerSetVoices(t *testing.T) {
	pl := newHeadlessPlayer(t)
	if err := pl.SetVoices([]synth.VoiceDef{{Shape: osc.Sine, ModSource: 2}}); err == nil {
		t.Fatal("expected out-of-range modulation source to be rejected")
	}
	organ := Presets["organ"]
	if err := pl.SetVoices(organ); err != nil {
		t.Fatal(err)
	}
	if got := pl.Voices(); len(got) != len(organ) {
		t.Fatalf("voices = %d, want %d", len(got), len(organ))
	}
	pl.NoteOn(0, synth.Note{Pitch: 48})
	pl.Poll()
	if pl.ActiveOscillators() != len(organ) {
		t.Fatalf("active oscillators = %d, want %d", pl.ActiveOscillators(), len(organ))
	}
}
