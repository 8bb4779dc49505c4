package polysynth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	intaudio "github.com/cbegin/polysynth-go/internal/audio"
	"github.com/cbegin/polysynth-go/internal/synth"
)

// MaxHeldNotes bounds the held-note set. Further note-ons are ignored.
const MaxHeldNotes = 128

type PlayerOption func(*playerConfig)

type playerConfig struct {
	params    synth.Params
	backend   intaudio.Backend
	voices    []synth.VoiceDef
	sampleTap func([]float32)
}

func defaultPlayerConfig() playerConfig {
	return playerConfig{
		params:  synth.DefaultParams(),
		backend: intaudio.BackendEbiten,
		voices:  Presets["sine"],
	}
}

func WithBlockSize(n int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.params.BlockSize = n
	}
}

func WithPoolCapacity(n int) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.params.PoolCapacity = n
	}
}

// WithModIndex sets modulation depth as a multiple of the carrier frequency.
func WithModIndex(index float64) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.params.ModIndex = index
	}
}

func WithBackend(backend intaudio.Backend) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.backend = backend
	}
}

func WithVoices(voices []synth.VoiceDef) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.voices = voices
	}
}

// WithSampleTap installs a callback invoked with each stereo buffer handed to the device.
// The callback runs on the audio thread; keep work brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

type heldNote struct {
	key  int
	note synth.Note
}

// Player owns an engine, its block stream and the audio device. Note and voice changes may
// come from any goroutine; Poll must be driven from a single goroutine.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	backend    intaudio.Backend
	voices     []synth.VoiceDef
	held       []heldNote
	volume     float64

	renderMu    sync.Mutex
	engine      *synth.Engine
	stream      *intaudio.BlockStream
	device      intaudio.Device
	voicesFrame []synth.VoiceDef
	notesFrame  []synth.Note
}

func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	cfg := defaultPlayerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.params.BlockSize <= 0 {
		return nil, errors.New("block size must be positive")
	}
	if cfg.params.PoolCapacity <= 0 {
		return nil, errors.New("pool capacity must be positive")
	}
	if _, err := intaudio.ParseBackend(string(cfg.backend)); err != nil {
		return nil, err
	}
	if err := ValidateVoices(cfg.voices); err != nil {
		return nil, err
	}
	stream := intaudio.NewBlockStream(cfg.params.BlockSize)
	stream.SetTap(cfg.sampleTap)
	return &Player{
		sampleRate:  sampleRate,
		backend:     cfg.backend,
		voices:      append([]synth.VoiceDef(nil), cfg.voices...),
		held:        make([]heldNote, 0, MaxHeldNotes),
		volume:      1,
		engine:      synth.New(sampleRate, cfg.params),
		stream:      stream,
		voicesFrame: make([]synth.VoiceDef, 0, len(cfg.voices)),
		notesFrame:  make([]synth.Note, 0, MaxHeldNotes),
	}, nil
}

func (p *Player) SampleRate() int { return p.sampleRate }
func (p *Player) BlockSize() int  { return p.engine.BlockSize() }

// Stream is the device-side reader. With BackendNone the caller drains it.
func (p *Player) Stream() io.Reader { return p.stream }

// Start opens the audio device and begins playback.
func (p *Player) Start() error {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()
	if p.device != nil {
		p.device.Play()
		return nil
	}
	dev, err := intaudio.Open(p.backend, p.sampleRate, p.stream)
	if err != nil {
		return fmt.Errorf("open %s audio: %w", p.backend, err)
	}
	if dev == nil {
		return nil
	}
	p.device = dev
	p.device.Play()
	return nil
}

func (p *Player) Pause() {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()
	if p.device != nil {
		p.device.Pause()
	}
}

func (p *Player) Stop() error {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()
	if p.device == nil {
		return nil
	}
	err := p.device.Stop()
	p.device = nil
	return err
}

// SetVoices replaces the voice list. It takes effect on the next cycle.
func (p *Player) SetVoices(voices []synth.VoiceDef) error {
	if err := ValidateVoices(voices); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.voices = append(p.voices[:0], voices...)
	return nil
}

func (p *Player) Voices() []synth.VoiceDef {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]synth.VoiceDef(nil), p.voices...)
}

// NoteOn holds note under key, replacing any note already held under that key.
// Notes keep their press order so oscillator slots stay stable between cycles.
func (p *Player) NoteOn(key int, note synth.Note) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.held {
		if p.held[i].key == key {
			p.held[i].note = note
			return
		}
	}
	if len(p.held) >= MaxHeldNotes {
		return
	}
	p.held = append(p.held, heldNote{key: key, note: note})
}

func (p *Player) NoteOff(key int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.held {
		if p.held[i].key == key {
			p.held = append(p.held[:i], p.held[i+1:]...)
			return
		}
	}
}

func (p *Player) AllNotesOff() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.held = p.held[:0]
}

func (p *Player) HeldNotes() []synth.Note {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]synth.Note, len(p.held))
	for i, h := range p.held {
		out[i] = h.note
	}
	return out
}

// Poll renders and submits one block if the device has consumed the previous one.
// It never waits for the device.
func (p *Player) Poll() bool {
	p.mu.Lock()
	p.voicesFrame = append(p.voicesFrame[:0], p.voices...)
	p.notesFrame = p.notesFrame[:0]
	for _, h := range p.held {
		p.notesFrame = append(p.notesFrame, h.note)
	}
	p.mu.Unlock()

	p.renderMu.Lock()
	defer p.renderMu.Unlock()
	return p.engine.Poll(p.stream, p.voicesFrame, p.notesFrame)
}

// Run polls every interval until ctx is done.
func (p *Player) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Poll()
		}
	}
}

// LastBlock copies the most recently rendered block into dst and returns it.
func (p *Player) LastBlock(dst []float64) []float64 {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()
	return append(dst[:0], p.engine.Output()...)
}

func (p *Player) LastCycleDuration() time.Duration {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()
	return p.engine.LastCycleDuration()
}

func (p *Player) ActiveOscillators() int {
	p.renderMu.Lock()
	defer p.renderMu.Unlock()
	return p.engine.ActiveOscillators()
}

func (p *Player) Underruns() int { return p.stream.Underruns() }

// SetMasterVolume sets runtime volume scalar. 1.0 is default.
func (p *Player) SetMasterVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = volume
	p.stream.SetGain(volume)
}

func (p *Player) MasterVolume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}
