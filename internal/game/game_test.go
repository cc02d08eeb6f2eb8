package game

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"

	"github.com/iburimskiy/pattern-background/internal/background"
	"github.com/iburimskiy/pattern-background/internal/config"
	"github.com/iburimskiy/pattern-background/internal/pattern"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	g, err := New(config.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func TestNewRejectsUnknownMode(t *testing.T) {
	cfg := config.Default()
	cfg.Mode = "raytrace"
	if _, err := New(cfg); err == nil {
		t.Error("New() error = nil, want error")
	}
}

func TestNewLoadsPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	want := pattern.DefaultParams()
	want.Complexity = 3
	if err := config.SavePreset(path, want); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.PresetPath = path
	cfg.Mode = "cpu"
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if g.params != want {
		t.Errorf("params = %+v, want %+v", g.params, want)
	}
	if got := g.bg.Mode(); got != background.ModeCPU {
		t.Errorf("Mode() = %v, want cpu", got)
	}
}

func TestLayoutActivatesBackground(t *testing.T) {
	g := newTestGame(t)
	if got := g.bg.State(); got != background.Uninitialized {
		t.Fatalf("State() = %v, want uninitialized", got)
	}

	w, h := g.Layout(800, 600)
	if w != 800 || h != 600 {
		t.Errorf("Layout() = %d,%d, want 800,600", w, h)
	}
	if got := g.bg.State(); got != background.Active {
		t.Errorf("State() = %v, want active", got)
	}
	if got := g.bg.Normalize(400, 300); got != (pattern.Vec2{X: 0.5, Y: 0.5}) {
		t.Errorf("Normalize(400, 300) = %+v, want {0.5 0.5}", got)
	}
}

func TestStepAdvancesClock(t *testing.T) {
	g := newTestGame(t)
	for i := 0; i < 30; i++ {
		g.step(1.0 / 60)
	}
	if math.Abs(g.bg.Elapsed()-0.5) > 1e-9 {
		t.Errorf("Elapsed() = %v, want 0.5", g.bg.Elapsed())
	}

	g.paused = true
	g.step(1.0 / 60)
	if math.Abs(g.bg.Elapsed()-0.5) > 1e-9 {
		t.Errorf("Elapsed() while paused = %v, want 0.5", g.bg.Elapsed())
	}
}

func TestAudioLevelModulatesBrightness(t *testing.T) {
	g := newTestGame(t)
	g.audio.level = 0.5
	g.step(0)

	// With no track the level decays toward zero but is still positive.
	if g.audio.level <= 0 || g.audio.level >= 0.5 {
		t.Fatalf("level = %v, want in (0, 0.5)", g.audio.level)
	}
	want := g.params.Brightness + config.AudioGain*g.audio.level
	if got := g.bg.Params().Brightness; math.Abs(got-want) > 1e-12 {
		t.Errorf("Brightness = %v, want %v", got, want)
	}
	if g.params.Brightness != pattern.DefaultParams().Brightness {
		t.Errorf("tuned brightness changed to %v", g.params.Brightness)
	}
}

func TestSelectAndNudge(t *testing.T) {
	g := newTestGame(t)

	g.selectParam(-1)
	if got := config.Tunables[g.selected].Name; got != "brightness" {
		t.Errorf("selected = %q, want brightness", got)
	}
	g.selectParam(1)
	if g.selected != 0 {
		t.Errorf("selected = %d, want 0", g.selected)
	}

	g.nudge(2)
	if got, want := g.params.Complexity, pattern.DefaultParams().Complexity+1; got != want {
		t.Errorf("Complexity = %v, want %v", got, want)
	}
}

func TestToggleMode(t *testing.T) {
	g := newTestGame(t)
	g.toggleMode()
	if got := g.bg.Mode(); got != background.ModeCPU {
		t.Errorf("Mode() = %v, want cpu", got)
	}
	g.toggleMode()
	if got := g.bg.Mode(); got != background.ModeGPU {
		t.Errorf("Mode() = %v, want gpu", got)
	}
}

func TestReport(t *testing.T) {
	g := newTestGame(t)
	g.report(nil)
	if g.lastErr != nil {
		t.Errorf("lastErr = %v, want nil", g.lastErr)
	}
	err := errors.New("boom")
	g.report(err)
	if g.lastErr != err {
		t.Errorf("lastErr = %v, want %v", g.lastErr, err)
	}
}

func TestLevelTap(t *testing.T) {
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{0.5, 0.5}
		}
		return len(samples), true
	})
	tap := newLevelTap(src, 16)

	if got := tap.rms(8); got != 0 {
		t.Errorf("rms() before streaming = %v, want 0", got)
	}

	buf := make([][2]float64, 10)
	tap.Stream(buf)
	tap.Stream(buf)
	if got := tap.rms(64); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("rms() = %v, want 0.5", got)
	}
}

func TestDecodeAudio(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "silence.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	format := beep.Format{SampleRate: 22050, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Silence(1000), format); err != nil {
		t.Fatalf("wav.Encode() error = %v", err)
	}
	f.Close()

	r, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s, got, err := decodeAudio(r, path)
	if err != nil {
		t.Fatalf("decodeAudio() error = %v", err)
	}
	defer s.Close()
	if got.SampleRate != format.SampleRate {
		t.Errorf("SampleRate = %v, want %v", got.SampleRate, format.SampleRate)
	}
	if s.Len() != 1000 {
		t.Errorf("Len() = %d, want 1000", s.Len())
	}

	other := filepath.Join(dir, "track.ogg")
	if err := os.WriteFile(other, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	r2, err := os.Open(other)
	if err != nil {
		t.Fatal(err)
	}
	defer r2.Close()
	if _, _, err := decodeAudio(r2, other); !errors.Is(err, ErrUnsupportedAudio) {
		t.Errorf("decodeAudio(ogg) error = %v, want ErrUnsupportedAudio", err)
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(125.4); got != "02:05" {
		t.Errorf("formatSeconds(125.4) = %q, want 02:05", got)
	}
}

func TestCompressLevel(t *testing.T) {
	if got := compressLevel(0); got != 0 {
		t.Errorf("compressLevel(0) = %v, want 0", got)
	}
	if got := compressLevel(4); got != 1 {
		t.Errorf("compressLevel(4) = %v, want 1", got)
	}
}

// silentTrack is an endless silent stream that records Close.
type silentTrack struct {
	closed bool
}

func (s *silentTrack) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (s *silentTrack) Err() error     { return nil }
func (s *silentTrack) Len() int       { return 44100 }
func (s *silentTrack) Position() int  { return 0 }
func (s *silentTrack) Seek(int) error { return nil }
func (s *silentTrack) Close() error   { s.closed = true; return nil }

// stubSpeaker replaces speaker initialization for the duration of a test.
func stubSpeaker(t *testing.T, err error) *[]beep.SampleRate {
	t.Helper()
	var calls []beep.SampleRate
	orig := initSpeaker
	initSpeaker = func(rate beep.SampleRate, _ int) error {
		calls = append(calls, rate)
		return err
	}
	t.Cleanup(func() {
		initSpeaker = orig
		speaker.Clear()
	})
	return &calls
}

func writeSilence(t *testing.T, rate beep.SampleRate) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "silence.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	format := beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, beep.Silence(1000), format); err != nil {
		t.Fatalf("wav.Encode() error = %v", err)
	}
	return path
}

func TestTogglePauseKeepsAudioInStep(t *testing.T) {
	stubSpeaker(t, nil)
	g := newTestGame(t)
	g.audio.attach("silent", nil, &silentTrack{}, beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}, g.paused)

	for i, want := range []bool{true, false, true} {
		g.togglePause()
		if g.paused != want || g.audio.paused != want || g.audio.ctrl.Paused != want {
			t.Fatalf("toggle %d: clock=%v audio=%v ctrl=%v, want all %v",
				i, g.paused, g.audio.paused, g.audio.ctrl.Paused, want)
		}
	}
}

func TestLoadTrackWhilePaused(t *testing.T) {
	stubSpeaker(t, nil)
	g := newTestGame(t)
	g.togglePause()

	if err := g.loadTrack(writeSilence(t, 22050)); err != nil {
		t.Fatalf("loadTrack() error = %v", err)
	}
	if !g.audio.paused || !g.audio.ctrl.Paused {
		t.Errorf("track paused=%v ctrl=%v, want both true", g.audio.paused, g.audio.ctrl.Paused)
	}

	g.togglePause()
	if g.paused || g.audio.paused || g.audio.ctrl.Paused {
		t.Errorf("after resume clock=%v audio=%v ctrl=%v, want all false",
			g.paused, g.audio.paused, g.audio.ctrl.Paused)
	}
}

func TestLoadTrackReusesSpeaker(t *testing.T) {
	calls := stubSpeaker(t, nil)
	g := newTestGame(t)

	path := writeSilence(t, 22050)
	for i := 0; i < 2; i++ {
		if err := g.loadTrack(path); err != nil {
			t.Fatalf("loadTrack() error = %v", err)
		}
	}
	if len(*calls) != 1 {
		t.Errorf("speaker initialized %d times, want 1", len(*calls))
	}
	if !g.audio.playing() {
		t.Error("playing() = false, want true")
	}
}

func TestSpeakerInitFailureDropsTrack(t *testing.T) {
	stubSpeaker(t, errors.New("no audio device"))

	var a audioTrack
	track := &silentTrack{}
	a.speakerRate = 44100
	a.attach("old", nil, track, beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}, false)

	if err := a.prepareSpeaker(22050); err == nil {
		t.Fatal("prepareSpeaker() error = nil, want error")
	}
	if a.playing() {
		t.Error("playing() = true after failed speaker init, want false")
	}
	if !track.closed {
		t.Error("previous track was not closed")
	}
	if a.speakerRate != 0 {
		t.Errorf("speakerRate = %v, want 0", a.speakerRate)
	}
}

func TestHUDText(t *testing.T) {
	g := newTestGame(t)
	if got := g.hudText(60, 0, 0); strings.Contains(got, "viewport") {
		t.Errorf("hudText() before layout shows a viewport:\n%s", got)
	}

	g.Layout(800, 600)
	g.step(0)
	got := g.hudText(60, 400, 300)
	for _, want := range []string{
		"viewport 800x600",
		"rgb(400,300)=",
		"> complexity",
		"O: open audio track",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("hudText() missing %q:\n%s", want, got)
		}
	}
}

func TestNewRejectsNonFiniteParams(t *testing.T) {
	cfg := config.Default()
	cfg.Params.Speed = math.NaN()
	if _, err := New(cfg); !errors.Is(err, config.ErrNonFinite) {
		t.Errorf("New() error = %v, want ErrNonFinite", err)
	}
}
