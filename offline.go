package polysynth

import (
	"encoding/binary"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cbegin/polysynth-go/internal/synth"
)

// RenderSamples runs whole engine cycles for a fixed voice list and note set and returns
// seconds worth of mono samples. The last block is truncated.
func RenderSamples(voices []synth.VoiceDef, notes []synth.Note, sampleRate int, seconds float64, params synth.Params) []float64 {
	engine := synth.New(sampleRate, params)
	frames := int(float64(sampleRate) * seconds)
	out := make([]float64, 0, frames)
	for len(out) < frames {
		block := engine.Cycle(voices, notes)
		if rest := frames - len(out); rest < len(block) {
			block = block[:rest]
		}
		out = append(out, block...)
	}
	return out
}

// EncodeWAVFloat32LE encodes mono samples as a 32-bit float WAV, duplicating them into
// channels.
func EncodeWAVFloat32LE(samples []float64, sampleRate int, channels int) []byte {
	if channels < 1 {
		channels = 1
	}
	dataSize := len(samples) * channels * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	out := make([]byte, 44+dataSize)
	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	off := 44
	for _, s := range samples {
		bits := math.Float32bits(float32(s))
		for c := 0; c < channels; c++ {
			binary.LittleEndian.PutUint32(out[off:], bits)
			off += 4
		}
	}
	return out
}

// WriteWAV writes mono samples as 16-bit PCM, clipping to [-1, 1].
func WriteWAV(w io.WriteSeeker, samples []float64, sampleRate int) error {
	enc := wav.NewEncoder(w, sampleRate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		buf.Data[i] = int(math.Round(s * 32767))
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}
