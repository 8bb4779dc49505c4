package polysynth

import (
	"testing"

	"github.com/cbegin/polysynth-go/internal/osc"
	"github.com/cbegin/polysynth-go/internal/synth"
)

func TestPresetsAreValid(t *testing.T) {
	for _, name := range PresetNames() {
		if err := ValidateVoices(Presets[name]); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestParseVoices(t *testing.T) {
	voices, err := ParseVoices("sine:0.5:0:1, tri:0.8:0:-:12, square:0.2:0.3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []synth.VoiceDef{
		{Shape: osc.Sine, Amplitude: 0.5, ModSource: 1},
		{Shape: osc.Triangle, Amplitude: 0.8, Transpose: 12, ModSource: synth.NoModulation},
		{Shape: osc.Square, Amplitude: 0.2, ShapeParam: 0.3, ModSource: synth.NoModulation},
	}
	if len(voices) != len(want) {
		t.Fatalf("got %d voices", len(voices))
	}
	for i := range want {
		if voices[i] != want[i] {
			t.Fatalf("voice %d = %+v, want %+v", i, voices[i], want[i])
		}
	}

	preset, err := ParseVoices("Organ")
	if err != nil || len(preset) != len(Presets["organ"]) {
		t.Fatalf("preset lookup = %v, %v", preset, err)
	}
	preset[0].Amplitude = 99
	if Presets["organ"][0].Amplitude == 99 {
		t.Fatal("ParseVoices must return a copy of the preset")
	}
}

func TestParseVoicesErrors(t *testing.T) {
	for _, text := range []string{
		"",
		"sine:1",
		"noise:1:0",
		"sine:x:0",
		"sine:1:0:5",
		"sine:1:0:a",
		"sine:1:0:-:up",
	} {
		if _, err := ParseVoices(text); err == nil {
			t.Errorf("ParseVoices(%q) should fail", text)
		}
	}
}

func TestParseNotes(t *testing.T) {
	notes, err := ParseNotes("A4, C#5 Eb3 60 261.5hz")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []synth.Note{
		{Pitch: 69},
		{Pitch: 73},
		{Pitch: 51},
		{Pitch: 60},
		{Frequency: 261.5},
	}
	if len(notes) != len(want) {
		t.Fatalf("got %v", notes)
	}
	for i := range want {
		if notes[i] != want[i] {
			t.Fatalf("note %d = %+v, want %+v", i, notes[i], want[i])
		}
	}
	for _, bad := range []string{"H4", "C", "0hz", "C#x"} {
		if _, err := ParseNote(bad); err == nil {
			t.Errorf("ParseNote(%q) should fail", bad)
		}
	}
}
