package game

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/pattern-background/internal/background"
	"github.com/iburimskiy/pattern-background/internal/config"
)

// ErrUnsupportedAudio is returned for files that are not wav, mp3 or flac.
var ErrUnsupportedAudio = errors.New("unsupported audio file type")

// decodeAudio picks a decoder from the file extension.
func decodeAudio(r io.ReadCloser, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return wav.Decode(r)
	case ".mp3":
		return mp3.Decode(r)
	case ".flac":
		return flac.Decode(r)
	}
	return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedAudio, filepath.Ext(path))
}

// initSpeaker is replaced in tests that run without an audio device.
var initSpeaker = speaker.Init

// audioTrack plays one file through the speaker and reports its level.
type audioTrack struct {
	path     string
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	tap      *levelTap
	duration time.Duration

	// speakerRate is the rate the speaker was initialized with, 0 if none.
	speakerRate beep.SampleRate
	ended       atomic.Bool
	paused      bool
	level       float64
}

func (a *audioTrack) playing() bool { return a.streamer != nil }

// chooseTrackFile asks for an audio file. A canceled dialog returns "".
func chooseTrackFile() (string, error) {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Audio Track"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	return filename, err
}

// load replaces the current track with the file at path. The new track
// starts paused or running as requested so it follows the host clock.
func (a *audioTrack) load(path string, paused bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	streamer, format, err := decodeAudio(f, path)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	if err := a.prepareSpeaker(format.SampleRate); err != nil {
		_ = streamer.Close()
		_ = f.Close()
		return err
	}
	a.attach(path, f, streamer, format, paused)

	background.Logger().Info("audio track loaded",
		"path", path, "sampleRate", int(format.SampleRate), "duration", a.duration, "paused", paused)
	return nil
}

// prepareSpeaker drops the current track and makes sure the speaker runs
// at rate.
func (a *audioTrack) prepareSpeaker(rate beep.SampleRate) error {
	if a.speakerRate != 0 {
		speaker.Clear()
	}
	a.release()
	if a.speakerRate == rate {
		return nil
	}

	a.speakerRate = 0
	if err := initSpeaker(rate, rate.N(time.Second/20)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	a.speakerRate = rate
	return nil
}

// attach starts playing streamer. f may be nil when the stream does not
// own a file.
func (a *audioTrack) attach(path string, f *os.File, streamer beep.StreamSeekCloser, format beep.Format, paused bool) {
	tap := newLevelTap(streamer, config.VisualRingSize)
	ctrl := &beep.Ctrl{Streamer: tap, Paused: paused}

	a.path = path
	a.file = f
	a.streamer = streamer
	a.format = format
	a.ctrl = ctrl
	a.tap = tap
	a.paused = paused
	a.level = 0
	a.duration = format.SampleRate.D(streamer.Len())
	a.ended.Store(false)

	// The callback runs on the speaker goroutine; the frame loop reaps.
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		a.ended.Store(true)
	})))
}

// update refreshes the smoothed level and reaps a finished track.
func (a *audioTrack) update() {
	if a.ended.Load() {
		background.Logger().Info("audio track ended", "path", a.path)
		a.release()
		a.ended.Store(false)
	}
	if a.tap == nil || a.paused {
		a.level = smooth(a.level, 0, config.SmoothingFactor)
		return
	}
	a.level = smooth(a.level, compressLevel(a.tap.rms(config.AudioWindow)), config.SmoothingFactor)
}

func (a *audioTrack) setPaused(paused bool) {
	a.paused = paused
	if a.ctrl == nil {
		return
	}
	speaker.Lock()
	a.ctrl.Paused = paused
	speaker.Unlock()
}

func (a *audioTrack) stop() {
	if !a.playing() {
		return
	}
	speaker.Clear()
	a.release()
}

func (a *audioTrack) release() {
	if a.streamer != nil {
		_ = a.streamer.Close()
		a.streamer = nil
	}
	if a.file != nil {
		_ = a.file.Close()
		a.file = nil
	}
	a.ctrl = nil
	a.tap = nil
	a.duration = 0
}
