package polysynth

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cbegin/polysynth-go/internal/osc"
	"github.com/cbegin/polysynth-go/internal/synth"
)

const none = synth.NoModulation

// Presets are named voice lists.
var Presets = map[string][]synth.VoiceDef{
	"sine": {
		{Shape: osc.Sine, Amplitude: 0.3, ModSource: none},
	},
	"organ": {
		{Shape: osc.Sine, Amplitude: 0.25, ModSource: none},
		{Shape: osc.Sine, Amplitude: 0.15, Transpose: 12, ModSource: none},
		{Shape: osc.Sine, Amplitude: 0.1, Transpose: 19, ModSource: none},
		{Shape: osc.Triangle, Amplitude: 0.06, Transpose: 24, ModSource: none},
	},
	"fm-bell": {
		{Shape: osc.Sine, Amplitude: 0.3, ModSource: 1},
		// 3.5:1 ratio
		{Shape: osc.Sine, Amplitude: 0.8, Transpose: 21.69, ModSource: none},
	},
	"pwm-lead": {
		{Shape: osc.Square, Amplitude: 0.15, ShapeParam: 0.25, ModSource: 2},
		{Shape: osc.Saw, Amplitude: 0.1, Transpose: 0.07, ModSource: none},
		{Shape: osc.Triangle, Amplitude: 0.02, Transpose: -24, ModSource: none},
	},
	"soft-square": {
		{Shape: osc.RoundedSquare, Amplitude: 0.3, ShapeParam: 0.3, ModSource: none},
	},
}

func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateVoices rejects unknown shapes, non-finite values and modulation sources that
// do not name a voice in the list.
func ValidateVoices(voices []synth.VoiceDef) error {
	for i, v := range voices {
		if v.Shape < 0 || int(v.Shape) >= osc.NumShapes {
			return fmt.Errorf("voice %d: unknown shape %d", i, v.Shape)
		}
		for _, f := range []float64{v.Amplitude, v.Transpose, v.ShapeParam} {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("voice %d: non-finite parameter", i)
			}
		}
		if v.ModSource != synth.NoModulation && (v.ModSource < 0 || v.ModSource >= len(voices)) {
			return fmt.Errorf("voice %d: modulation source %d out of range", i, v.ModSource)
		}
	}
	return nil
}

// ParseVoices accepts a preset name or a comma-separated list of
// shape:amp:param[:mod[:transpose]] entries. mod is a voice index or "-".
func ParseVoices(text string) ([]synth.VoiceDef, error) {
	text = strings.TrimSpace(text)
	if preset, ok := Presets[strings.ToLower(text)]; ok {
		return append([]synth.VoiceDef(nil), preset...), nil
	}
	if text == "" {
		return nil, fmt.Errorf("empty voice list")
	}
	var voices []synth.VoiceDef
	for i, entry := range strings.Split(text, ",") {
		fields := strings.Split(strings.TrimSpace(entry), ":")
		if len(fields) < 3 || len(fields) > 5 {
			return nil, fmt.Errorf("voice %d: %q: expected shape:amp:param[:mod[:transpose]]", i, entry)
		}
		shape, err := osc.ParseShape(fields[0])
		if err != nil {
			return nil, fmt.Errorf("voice %d: %w", i, err)
		}
		v := synth.VoiceDef{Shape: shape, ModSource: synth.NoModulation}
		if v.Amplitude, err = strconv.ParseFloat(fields[1], 64); err != nil {
			return nil, fmt.Errorf("voice %d: invalid amplitude %q", i, fields[1])
		}
		if v.ShapeParam, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return nil, fmt.Errorf("voice %d: invalid shape parameter %q", i, fields[2])
		}
		if len(fields) > 3 && fields[3] != "-" && fields[3] != "" {
			if v.ModSource, err = strconv.Atoi(fields[3]); err != nil {
				return nil, fmt.Errorf("voice %d: invalid modulation source %q", i, fields[3])
			}
		}
		if len(fields) > 4 {
			if v.Transpose, err = strconv.ParseFloat(fields[4], 64); err != nil {
				return nil, fmt.Errorf("voice %d: invalid transpose %q", i, fields[4])
			}
		}
		voices = append(voices, v)
	}
	if err := ValidateVoices(voices); err != nil {
		return nil, err
	}
	return voices, nil
}

var noteSemitones = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// ParseNote reads a note name with octave ("A4", "C#5", "Eb3"), a MIDI number ("69") or a
// frequency ("440hz").
func ParseNote(token string) (synth.Note, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return synth.Note{}, fmt.Errorf("empty note")
	}
	lower := strings.ToLower(t)
	if strings.HasSuffix(lower, "hz") {
		f, err := strconv.ParseFloat(strings.TrimSpace(lower[:len(lower)-2]), 64)
		if err != nil || f <= 0 {
			return synth.Note{}, fmt.Errorf("invalid frequency %q", token)
		}
		return synth.Note{Frequency: f}, nil
	}
	if n, err := strconv.ParseFloat(t, 64); err == nil {
		return synth.Note{Pitch: n}, nil
	}
	semi, ok := noteSemitones[strings.ToUpper(t[:1])[0]]
	if !ok {
		return synth.Note{}, fmt.Errorf("invalid note %q", token)
	}
	rest := t[1:]
	if len(rest) > 0 && rest[0] == '#' {
		semi++
		rest = rest[1:]
	} else if len(rest) > 0 && rest[0] == 'b' {
		semi--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return synth.Note{}, fmt.Errorf("invalid octave in note %q", token)
	}
	return synth.Note{Pitch: float64((octave+1)*12 + semi)}, nil
}

// ParseNotes splits text on commas and whitespace and parses each token.
func ParseNotes(text string) ([]synth.Note, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	notes := make([]synth.Note, 0, len(fields))
	for _, f := range fields {
		n, err := ParseNote(f)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}
