// Package midiin turns hardware MIDI input into note triggers.
package midiin

import (
	"context"
	"log"

	"gitlab.com/gomidi/rtmididrv"
)

type Kind int

const (
	NoteOff Kind = iota
	NoteOn
)

type Event struct {
	Kind     Kind
	Channel  int
	Note     int
	Velocity int
}

// Decode extracts a note event from a raw channel message. Note-on with zero velocity
// is a note-off. Anything else reports false.
func Decode(data []byte) (Event, bool) {
	if len(data) < 3 {
		return Event{}, false
	}
	status := data[0] >> 4
	ev := Event{
		Channel:  int(data[0] & 0x0f),
		Note:     int(data[1] & 0x7f),
		Velocity: int(data[2] & 0x7f),
	}
	switch {
	case status == 0x8 || status == 0x9 && ev.Velocity == 0:
		ev.Kind = NoteOff
	case status == 0x9:
		ev.Kind = NoteOn
	default:
		return Event{}, false
	}
	return ev, true
}

// Listen opens the MIDI input port with the given index and streams its raw messages
// until ctx is done. Driver failures are logged and yield a closed channel.
func Listen(ctx context.Context, port int) <-chan []byte {
	ch := make(chan []byte, 1024)
	go func() {
		defer close(ch)
		drv, err := rtmididrv.New()
		if err != nil {
			log.Printf("failed to initialize MIDI driver: %v", err)
			return
		}
		defer func() {
			if err := drv.Close(); err != nil {
				log.Printf("failed to close MIDI driver: %v", err)
			}
		}()
		ins, err := drv.Ins()
		if err != nil {
			log.Printf("failed to get MIDI IN: %v", err)
			return
		}
		if port < 0 || port >= len(ins) {
			log.Printf("MIDI IN port %d not found (%d available)", port, len(ins))
			return
		}
		in := ins[port]
		if err := in.Open(); err != nil {
			log.Printf("failed to open MIDI IN: %v", err)
			return
		}
		log.Printf("opened MIDI IN %s", in.String())
		defer func() {
			if err := in.Close(); err != nil {
				log.Printf("failed to close MIDI IN: %v", err)
			}
		}()
		if err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
			msg := append([]byte(nil), data...)
			select {
			case ch <- msg:
			default:
				log.Printf("MIDI IN queue full, dropped %v", msg)
			}
		}); err != nil {
			log.Printf("failed to set listener: %v", err)
			return
		}
		defer func() {
			if err := in.StopListening(); err != nil {
				log.Printf("failed to stop listening: %v", err)
			}
		}()
		<-ctx.Done()
	}()
	return ch
}

// Ports lists the available MIDI input port names.
func Ports() ([]string, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, err
	}
	defer drv.Close()
	ins, err := drv.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}
