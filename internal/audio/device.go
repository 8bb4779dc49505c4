package audio

import (
	"fmt"
	"io"
)

// Backend selects the audio output driver.
type Backend string

const (
	BackendEbiten Backend = "ebiten"
	BackendOto    Backend = "oto"
	BackendNone   Backend = "none"
)

func ParseBackend(name string) (Backend, error) {
	switch Backend(name) {
	case BackendEbiten, BackendOto, BackendNone:
		return Backend(name), nil
	}
	return "", fmt.Errorf("unknown audio backend %q (expected ebiten|oto|none)", name)
}

// Device plays a stereo float32 stream.
type Device interface {
	Play()
	Pause()
	IsPlaying() bool
	Stop() error
}

// Open starts a device of the given backend pulling from reader. BackendNone returns a
// nil device; the caller drains the reader itself.
func Open(backend Backend, sampleRate int, reader io.ReadCloser) (Device, error) {
	var (
		dev Device
		err error
	)
	switch backend {
	case BackendEbiten:
		dev, err = newEbitenDevice(sampleRate, reader)
	case BackendOto:
		dev, err = newOtoDevice(sampleRate, reader)
	case BackendNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown audio backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return dev, nil
}
