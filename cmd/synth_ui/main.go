package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/cbegin/polysynth-go"
	intaudio "github.com/cbegin/polysynth-go/internal/audio"
	"github.com/cbegin/polysynth-go/internal/analysis"
	"github.com/cbegin/polysynth-go/internal/synth"
)

const (
	windowW = 960
	windowH = 600

	// Update runs this often so a drained block is refilled well within one block period.
	ticksPerSecond = 250

	fftSize    = 2048
	ringBufLen = 16384
)

var (
	bgColor     = color.RGBA{192, 192, 192, 255}
	scopeBg     = color.RGBA{14, 16, 22, 255}
	waveColor   = color.RGBA{80, 200, 255, 220}
	dividerCol  = color.RGBA{50, 54, 68, 180}
	keyDown     = color.RGBA{0, 0, 128, 255}
	keyUp       = color.RGBA{240, 240, 240, 255}
	keyUpSharp  = color.RGBA{40, 40, 48, 255}
	bevelDarker = color.RGBA{64, 64, 64, 255}
)

type analyzer struct {
	mu       sync.Mutex
	ring     []float32 // mono
	writePos int
}

func newAnalyzer() *analyzer {
	return &analyzer{ring: make([]float32, ringBufLen)}
}

// Tap is called from the audio thread. Keep it minimal: just copy into ring.
func (a *analyzer) Tap(samples []float32) {
	a.mu.Lock()
	for i := 0; i+1 < len(samples); i += 2 {
		a.ring[a.writePos] = (samples[i] + samples[i+1]) * 0.5
		a.writePos = (a.writePos + 1) % ringBufLen
	}
	a.mu.Unlock()
}

// Snapshot copies the latest n samples.
func (a *analyzer) Snapshot(n int) []float64 {
	if n > ringBufLen {
		n = ringBufLen
	}
	out := make([]float64, n)
	a.mu.Lock()
	start := (a.writePos - n + ringBufLen) % ringBufLen
	for i := 0; i < n; i++ {
		out[i] = float64(a.ring[(start+i)%ringBufLen])
	}
	a.mu.Unlock()
	return out
}

type game struct {
	player   *polysynth.Player
	analyzer *analyzer
	presets  []string
	preset   int
	volume   float64

	scopeImg *ebiten.Image
	specBins []float64
	wavePeak float64
	status   string
}

func newGame(sampleRate, blockSize int, backend intaudio.Backend, preset string) (*game, error) {
	a := newAnalyzer()
	voices, err := polysynth.ParseVoices(preset)
	if err != nil {
		return nil, err
	}
	pl, err := polysynth.NewPlayer(sampleRate,
		polysynth.WithBlockSize(blockSize),
		polysynth.WithBackend(backend),
		polysynth.WithVoices(voices),
		polysynth.WithSampleTap(a.Tap),
	)
	if err != nil {
		return nil, err
	}
	if err := pl.Start(); err != nil {
		return nil, err
	}
	g := &game{
		player:   pl,
		analyzer: a,
		presets:  polysynth.PresetNames(),
		volume:   1,
		status:   "Ready",
	}
	for i, name := range g.presets {
		if name == strings.ToLower(preset) {
			g.preset = i
		}
	}
	return g, nil
}

func (g *game) Update() error {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	for k, pitch := range keyPitches {
		if inpututil.IsKeyJustPressed(k) {
			g.player.NoteOn(int(k), synth.Note{Pitch: float64(pitch), OctaveUp: shift})
		} else if inpututil.IsKeyJustReleased(k) {
			g.player.NoteOff(int(k))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.cyclePreset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		g.setVolume(g.volume + 0.1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		g.setVolume(g.volume - 0.1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.player.AllNotesOff()
	}
	g.player.Poll()
	return nil
}

func (g *game) cyclePreset() {
	g.preset = (g.preset + 1) % len(g.presets)
	name := g.presets[g.preset]
	if err := g.player.SetVoices(polysynth.Presets[name]); err != nil {
		g.status = "ERROR - " + err.Error()
		return
	}
	g.status = "Preset " + name
}

func (g *game) setVolume(v float64) {
	g.volume = math.Max(0, math.Min(2, v))
	g.player.SetMasterVolume(g.volume)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(bgColor)
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	g.drawKeyboard(screen, image.Rect(8, 8, w-8, 88))
	g.drawScope(screen, image.Rect(8, 96, w-8, h-56))
	g.drawStatus(screen, 8, h-48)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	return outsideW, outsideH
}

func (g *game) Close() { _ = g.player.Stop() }

func (g *game) drawKeyboard(screen *ebiten.Image, rect image.Rectangle) {
	held := map[int]bool{}
	for _, n := range g.player.HeldNotes() {
		p := int(n.Pitch)
		if n.OctaveUp {
			p += 12
		}
		held[p] = true
	}
	const lo, hi = 48, 89
	keyW := float64(rect.Dx()) / float64(hi-lo)
	for p := lo; p < hi; p++ {
		x := float64(rect.Min.X) + float64(p-lo)*keyW
		col := keyUp
		if strings.Contains(noteNames[p%12], "#") {
			col = keyUpSharp
		}
		if held[p] {
			col = keyDown
		}
		ebitenutil.DrawRect(screen, x+1, float64(rect.Min.Y), keyW-2, float64(rect.Dy()), col)
		if p%12 == 0 {
			ebitenutil.DebugPrintAt(screen, pitchName(p), int(x)+2, rect.Max.Y-16)
		}
	}
}

func (g *game) drawScope(screen *ebiten.Image, rect image.Rectangle) {
	width, height := rect.Dx(), rect.Dy()
	if width <= 0 || height <= 0 {
		return
	}
	if g.scopeImg == nil || g.scopeImg.Bounds().Dx() != width || g.scopeImg.Bounds().Dy() != height {
		g.scopeImg = ebiten.NewImage(width, height)
	}
	g.scopeImg.Fill(scopeBg)

	snap := g.analyzer.Snapshot(fftSize)
	waveH := int(float64(height) * 0.45)
	g.drawWaveform(g.scopeImg, snap, width, waveH)
	ebitenutil.DrawRect(g.scopeImg, 0, float64(waveH), float64(width), 1, dividerCol)
	g.drawSpectrumBars(g.scopeImg, snap, width, height-waveH-1, waveH+1)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(rect.Min.X), float64(rect.Min.Y))
	screen.DrawImage(g.scopeImg, op)
}

func (g *game) drawWaveform(dst *ebiten.Image, samples []float64, width int, height int) {
	if len(samples) < 2 || width < 2 || height < 4 {
		return
	}
	midY := float32(height / 2)

	// Auto-gain: track peak with fast attack, slow release.
	peak := 0.01
	for _, s := range samples {
		peak = math.Max(peak, math.Abs(s))
	}
	if peak > g.wavePeak {
		g.wavePeak = g.wavePeak*0.3 + peak*0.7
	} else {
		g.wavePeak = g.wavePeak*0.995 + peak*0.005
	}
	gain := float64(midY-2) / math.Max(g.wavePeak, 0.01)

	start := findZeroCrossing(samples, len(samples)/4)
	visible := len(samples) - start
	prevY := midY - float32(samples[start]*gain)
	for px := 1; px < width; px++ {
		si := start + px*visible/width
		if si >= len(samples) {
			si = len(samples) - 1
		}
		y := midY - float32(samples[si]*gain)
		vector.StrokeLine(dst, float32(px-1), prevY, float32(px), y, 1, waveColor, false)
		prevY = y
	}
}

// findZeroCrossing finds a rising zero-crossing in samples to stabilize the waveform display.
func findZeroCrossing(samples []float64, searchLen int) int {
	if searchLen > len(samples)-2 {
		searchLen = len(samples) - 2
	}
	for i := 1; i < searchLen; i++ {
		if samples[i-1] <= 0 && samples[i] > 0 {
			return i
		}
	}
	return 0
}

func (g *game) drawSpectrumBars(dst *ebiten.Image, samples []float64, width int, height int, yOffset int) {
	if len(samples) < fftSize || width < 4 || height < 4 {
		return
	}
	mags := analysis.Spectrum(samples)
	numBars := min(256, max(16, width/3))
	if len(g.specBins) != numBars {
		g.specBins = make([]float64, numBars)
	}

	sr := float64(g.player.SampleRate())
	maxBin := min(len(mags)-1, int(18000/analysis.BinFreq(1, fftSize, sr)))
	logMax := math.Log(float64(maxBin))
	for i := 0; i < numBars; i++ {
		b0 := int(math.Exp(float64(i) / float64(numBars) * logMax))
		b1 := max(b0+1, int(math.Exp(float64(i+1)/float64(numBars)*logMax)))
		b1 = min(b1, len(mags))
		sum := 0.0
		for b := b0; b < b1; b++ {
			sum += mags[b]
		}
		norm := (analysis.DB(sum/float64(b1-b0)) + 80) / 80
		norm = math.Max(0, math.Min(1, norm))
		// Smooth: fast attack, slower decay.
		if prev := g.specBins[i]; norm > prev {
			g.specBins[i] = prev*0.3 + norm*0.7
		} else {
			g.specBins[i] = prev*0.85 + norm*0.15
		}
	}

	barW := float64(width) / float64(numBars)
	for i, v := range g.specBins {
		barH := math.Max(1, v*float64(height-4))
		x := float64(i) * barW
		y := float64(yOffset) + float64(height-2) - barH
		r, gr, b := spectrumColor(v)
		ebitenutil.DrawRect(dst, x+1, y, barW-1, barH, color.RGBA{r, gr, b, 220})
	}
}

func spectrumColor(v float64) (uint8, uint8, uint8) {
	if v < 0.33 {
		t := v / 0.33
		return uint8(30 + 20*t), uint8(80 + 120*t), uint8(200 + 55*t)
	}
	if v < 0.66 {
		t := (v - 0.33) / 0.33
		return uint8(50 + 140*t), uint8(200 + 30*t), uint8(255 - 100*t)
	}
	t := (v - 0.66) / 0.34
	return uint8(190 + 65*t), uint8(230 - 100*t), uint8(155 - 100*t)
}

func (g *game) drawStatus(screen *ebiten.Image, x, y int) {
	ebitenutil.DrawRect(screen, float64(x), float64(y), float64(screen.Bounds().Dx()-2*x), 40, bevelDarker)
	held := g.player.HeldNotes()
	names := make([]string, 0, len(held))
	for _, n := range held {
		p := int(n.Pitch)
		if n.OctaveUp {
			p += 12
		}
		names = append(names, pitchName(p))
	}
	sort.Strings(names)
	line1 := fmt.Sprintf("preset %s  volume %.1f  cycle %v  oscillators %d  underruns %d",
		g.presets[g.preset], g.volume, g.player.LastCycleDuration(), g.player.ActiveOscillators(), g.player.Underruns())
	line2 := fmt.Sprintf("%s  held: %s  [Tab] preset  [Up/Down] volume  [Shift] octave up  [Space] release",
		g.status, strings.Join(names, " "))
	ebitenutil.DebugPrintAt(screen, line1, x+6, y+4)
	ebitenutil.DebugPrintAt(screen, line2, x+6, y+20)
}

func main() {
	var (
		sampleRate  = flag.Int("sample-rate", 44100, "output sample rate")
		blockSize   = flag.Int("block", 1024, "samples per render cycle")
		backendName = flag.String("backend", "ebiten", "audio backend: ebiten|oto")
		preset      = flag.String("preset", "organ", "initial preset: "+strings.Join(polysynth.PresetNames(), "|"))
	)
	flag.Parse()

	backend, err := intaudio.ParseBackend(*backendName)
	if err != nil {
		log.Fatal(err)
	}
	g, err := newGame(*sampleRate, *blockSize, backend, *preset)
	if err != nil {
		log.Fatal(err)
	}
	defer g.Close()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("polysynth")
	ebiten.SetTPS(ticksPerSecond)
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
