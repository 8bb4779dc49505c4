package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cbegin/polysynth-go"
	intaudio "github.com/cbegin/polysynth-go/internal/audio"
	"github.com/cbegin/polysynth-go/internal/midiin"
	"github.com/cbegin/polysynth-go/internal/synth"
)

func main() {
	var (
		sampleRate  = flag.Int("sample-rate", 44100, "output sample rate")
		blockSize   = flag.Int("block", 1024, "samples per render cycle")
		voicesText  = flag.String("voices", "sine", "preset ("+strings.Join(polysynth.PresetNames(), "|")+") or shape:amp:param[:mod[:transpose]],...")
		notesText   = flag.String("notes", "A4", "notes held from the start, e.g. \"C4 E4 G4\" or \"440hz\"")
		backendName = flag.String("backend", "ebiten", "audio backend: ebiten|oto|none")
		volume      = flag.Float64("volume", 1.0, "master volume scalar")
		modIndex    = flag.Float64("mod-index", 1.0, "modulation depth as a multiple of the carrier frequency")
		duration    = flag.Duration("duration", 0, "stop after this long (0 = until interrupted)")
		poll        = flag.Duration("poll", 2*time.Millisecond, "render poll interval")
		midiPort    = flag.Int("midi", -1, "MIDI input port index (-1 = disabled)")
		listMIDI    = flag.Bool("list-midi", false, "list MIDI input ports and exit")
		wavPath     = flag.String("wav", "", "render -duration seconds offline to this WAV file and exit")
		stats       = flag.Bool("stats", false, "log cycle time and underruns every second")
	)
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	if *listMIDI {
		ports, err := midiin.Ports()
		if err != nil {
			log.Fatal(err)
		}
		for i, name := range ports {
			fmt.Printf("%d: %s\n", i, name)
		}
		return
	}

	voices, err := polysynth.ParseVoices(*voicesText)
	if err != nil {
		log.Fatal(err)
	}
	notes, err := polysynth.ParseNotes(*notesText)
	if err != nil {
		log.Fatal(err)
	}

	if *wavPath != "" {
		if err := renderToFile(*wavPath, voices, notes, *sampleRate, *blockSize, *modIndex, *duration); err != nil {
			log.Fatal(err)
		}
		return
	}

	backend, err := intaudio.ParseBackend(*backendName)
	if err != nil {
		log.Fatal(err)
	}
	pl, err := polysynth.NewPlayer(*sampleRate,
		polysynth.WithBlockSize(*blockSize),
		polysynth.WithModIndex(*modIndex),
		polysynth.WithBackend(backend),
		polysynth.WithVoices(voices),
	)
	if err != nil {
		log.Fatal(err)
	}
	pl.SetMasterVolume(*volume)
	for i, n := range notes {
		pl.NoteOn(-1-i, n)
	}
	if err := pl.Start(); err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := pl.Stop(); err != nil {
			log.Printf("stop: %v", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if *duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pl.Run(ctx, *poll)
	})
	if *midiPort >= 0 {
		g.Go(func() error {
			return bridgeMIDI(ctx, pl, midiin.Listen(ctx, *midiPort))
		})
	}
	if backend == intaudio.BackendNone {
		g.Go(func() error {
			return drainStream(ctx, pl, *sampleRate)
		})
	}
	if *stats {
		g.Go(func() error {
			return logStats(ctx, pl)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("error: %v", err)
	}
}

func bridgeMIDI(ctx context.Context, pl *polysynth.Player, ch <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-ch:
			if !ok {
				return nil
			}
			ev, ok := midiin.Decode(data)
			if !ok {
				continue
			}
			if ev.Kind == midiin.NoteOn {
				pl.NoteOn(ev.Note, synth.Note{Pitch: float64(ev.Note)})
			} else {
				pl.NoteOff(ev.Note)
			}
		}
	}
}

// drainStream stands in for a device when no backend is selected, consuming one block
// per block period.
func drainStream(ctx context.Context, pl *polysynth.Player, sampleRate int) error {
	buf := make([]byte, pl.BlockSize()*8)
	period := time.Duration(float64(time.Second) * float64(pl.BlockSize()) / float64(sampleRate))
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := pl.Stream().Read(buf); err != nil {
				return err
			}
		}
	}
}

func logStats(ctx context.Context, pl *polysynth.Player) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			log.Printf("cycle %v, oscillators %d, underruns %d", pl.LastCycleDuration(), pl.ActiveOscillators(), pl.Underruns())
		}
	}
}

func renderToFile(path string, voices []synth.VoiceDef, notes []synth.Note, sampleRate, blockSize int, modIndex float64, d time.Duration) error {
	if d <= 0 {
		d = 2 * time.Second
	}
	params := synth.DefaultParams()
	params.BlockSize = blockSize
	params.ModIndex = modIndex
	samples := polysynth.RenderSamples(voices, notes, sampleRate, d.Seconds(), params)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := polysynth.WriteWAV(f, samples, sampleRate); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Printf("wrote %d samples to %s", len(samples), path)
	return nil
}
