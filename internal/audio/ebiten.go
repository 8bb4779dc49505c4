package audio

import (
	"fmt"
	"io"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// ebitenBufferSize keeps the device queue near two default blocks at 44.1 kHz.
const ebitenBufferSize = 50 * time.Millisecond

type ebitenDevice struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioSampleRate  int
)

// sharedAudioContext returns the process-wide ebiten context. The UI shares it with
// the device so both run at one sample rate.
func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.CurrentContext()
		if audioContext == nil {
			audioContext = ebitaudio.NewContext(sampleRate)
		} else {
			audioSampleRate = audioContext.SampleRate()
		}
	})
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

func newEbitenDevice(sampleRate int, reader io.ReadCloser) (*ebitenDevice, error) {
	ctx, err := sharedAudioContext(sampleRate)
	if err != nil {
		return nil, err
	}
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, fmt.Errorf("ebiten player: %w", err)
	}
	pl.SetBufferSize(ebitenBufferSize)
	return &ebitenDevice{
		player: pl,
		reader: reader,
	}, nil
}

func (d *ebitenDevice) Play()           { d.player.Play() }
func (d *ebitenDevice) Pause()          { d.player.Pause() }
func (d *ebitenDevice) IsPlaying() bool { return d.player.IsPlaying() }

func (d *ebitenDevice) Stop() error {
	d.player.Pause()
	if err := d.player.Close(); err != nil {
		return err
	}
	return d.reader.Close()
}
