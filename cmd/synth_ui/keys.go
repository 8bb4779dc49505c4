package main

import (
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
)

// keyPitches lays a two-row piano over the keyboard: Z..M from C3 with the home row as
// sharps, Q..P from C4 with the number row as sharps.
var keyPitches = map[ebiten.Key]int{
	ebiten.KeyZ:     48,
	ebiten.KeyS:     49,
	ebiten.KeyX:     50,
	ebiten.KeyD:     51,
	ebiten.KeyC:     52,
	ebiten.KeyV:     53,
	ebiten.KeyG:     54,
	ebiten.KeyB:     55,
	ebiten.KeyH:     56,
	ebiten.KeyN:     57,
	ebiten.KeyJ:     58,
	ebiten.KeyM:     59,
	ebiten.KeyComma: 60,

	ebiten.KeyQ:      60,
	ebiten.KeyDigit2: 61,
	ebiten.KeyW:      62,
	ebiten.KeyDigit3: 63,
	ebiten.KeyE:      64,
	ebiten.KeyR:      65,
	ebiten.KeyDigit5: 66,
	ebiten.KeyT:      67,
	ebiten.KeyDigit6: 68,
	ebiten.KeyY:      69,
	ebiten.KeyDigit7: 70,
	ebiten.KeyU:      71,
	ebiten.KeyI:      72,
	ebiten.KeyDigit9: 73,
	ebiten.KeyO:      74,
	ebiten.KeyDigit0: 75,
	ebiten.KeyP:      76,
}

// pitchForKey returns the MIDI pitch bound to k.
func pitchForKey(k ebiten.Key) (int, bool) {
	p, ok := keyPitches[k]
	return p, ok
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func pitchName(pitch int) string {
	if pitch < 0 {
		return "?"
	}
	return noteNames[pitch%12] + strconv.Itoa(pitch/12-1)
}
