package main

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestKeyPitches(t *testing.T) {
	cases := []struct {
		key  ebiten.Key
		want int
	}{
		{ebiten.KeyZ, 48},
		{ebiten.KeyM, 59},
		{ebiten.KeyComma, 60},
		{ebiten.KeyQ, 60},
		{ebiten.KeyDigit2, 61},
		{ebiten.KeyY, 69},
		{ebiten.KeyP, 76},
	}
	for _, tc := range cases {
		got, ok := pitchForKey(tc.key)
		if !ok || got != tc.want {
			t.Errorf("pitchForKey(%v) = %d, %v; want %d", tc.key, got, ok, tc.want)
		}
	}
	if _, ok := pitchForKey(ebiten.KeyA); ok {
		t.Error("A is not a piano key")
	}
}

func TestKeyRowsAreChromatic(t *testing.T) {
	lower := []ebiten.Key{ebiten.KeyZ, ebiten.KeyS, ebiten.KeyX, ebiten.KeyD, ebiten.KeyC, ebiten.KeyV,
		ebiten.KeyG, ebiten.KeyB, ebiten.KeyH, ebiten.KeyN, ebiten.KeyJ, ebiten.KeyM, ebiten.KeyComma}
	upper := []ebiten.Key{ebiten.KeyQ, ebiten.KeyDigit2, ebiten.KeyW, ebiten.KeyDigit3, ebiten.KeyE,
		ebiten.KeyR, ebiten.KeyDigit5, ebiten.KeyT, ebiten.KeyDigit6, ebiten.KeyY, ebiten.KeyDigit7,
		ebiten.KeyU, ebiten.KeyI, ebiten.KeyDigit9, ebiten.KeyO, ebiten.KeyDigit0, ebiten.KeyP}
	for _, row := range [][]ebiten.Key{lower, upper} {
		for i := 1; i < len(row); i++ {
			if keyPitches[row[i]] != keyPitches[row[i-1]]+1 {
				t.Fatalf("%v -> %v is not a semitone", row[i-1], row[i])
			}
		}
	}
	if len(keyPitches) != len(lower)+len(upper) {
		t.Fatalf("%d mapped keys, want %d", len(keyPitches), len(lower)+len(upper))
	}
}

func TestPitchName(t *testing.T) {
	for pitch, want := range map[int]string{60: "C4", 69: "A4", 61: "C#4", 48: "C3"} {
		if got := pitchName(pitch); got != want {
			t.Errorf("pitchName(%d) = %q, want %q", pitch, got, want)
		}
	}
}
