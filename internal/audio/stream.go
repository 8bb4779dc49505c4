package audio

import (
	"encoding/binary"
	"math"
	"sync"
)

// BlockStream is a single-slot handoff between the render loop and an audio device.
// The render loop submits one mono block at a time; the device reads it back as
// interleaved stereo float32 little-endian frames.
type BlockStream struct {
	mu        sync.Mutex
	block     []float32
	pos       int
	pending   bool
	started   bool
	gain      float32
	underruns int
	tap       func([]float32)
	frame     []float32
}

func NewBlockStream(blockSize int) *BlockStream {
	return &BlockStream{
		block: make([]float32, 0, blockSize),
		gain:  1,
	}
}

// Ready reports whether the last submitted block has been fully read.
func (s *BlockStream) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.pending
}

// Submit copies block into the slot. A block submitted while the previous one is
// still pending replaces it.
func (s *BlockStream) Submit(block []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.block = s.block[:0]
	for _, v := range block {
		s.block = append(s.block, float32(v)*s.gain)
	}
	s.pos = 0
	s.pending = len(s.block) > 0
	s.started = true
}

// SetGain scales subsequently submitted blocks.
func (s *BlockStream) SetGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	s.mu.Lock()
	s.gain = float32(gain)
	s.mu.Unlock()
}

// SetTap installs a callback that receives every stereo buffer handed to the device.
// It runs on the device goroutine.
func (s *BlockStream) SetTap(tap func([]float32)) {
	s.mu.Lock()
	s.tap = tap
	s.mu.Unlock()
}

// Underruns counts reads that found no pending block after the first submission.
func (s *BlockStream) Underruns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.underruns
}

// Read implements io.Reader. It returns at most the rest of the pending block; with
// nothing pending it fills p with silence so the device never stalls.
func (s *BlockStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	if s.pending {
		if rest := len(s.block) - s.pos; frames > rest {
			frames = rest
		}
	} else if s.started {
		s.underruns++
	}
	need := frames * 2
	if cap(s.frame) < need {
		s.frame = make([]float32, need)
	}
	buf := s.frame[:need]
	for i := 0; i < frames; i++ {
		var v float32
		if s.pending {
			v = s.block[s.pos]
			s.pos++
		}
		buf[i*2] = v
		buf[i*2+1] = v
	}
	if s.pending && s.pos >= len(s.block) {
		s.pending = false
	}
	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	if s.tap != nil {
		s.tap(buf)
	}
	return frames * 8, nil
}

func (s *BlockStream) Close() error { return nil }
