package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/iburimskiy/pattern-background/internal/pattern"
)

const (
	WindowWidth  = 1024
	WindowHeight = 512
	WindowTitle  = "Pattern Background - Tab/Up/Down: tune, G: GPU/CPU, O: audio, L/S: preset, Esc/Q: quit"

	TPS = 60

	// Audio-reactive tuning
	VisualRingSize  = 8192
	SmoothingFactor = 0.6
	AudioWindow     = 2048
	AudioGain       = 0.8

	// HUD placement
	HUDX = 12
	HUDY = 12
)

// ErrUnknownParam is returned when a parameter name is not one of the
// seven pattern parameters.
var ErrUnknownParam = errors.New("unknown parameter")

// ErrNonFinite is returned for parameter sets containing NaN or Inf.
var ErrNonFinite = errors.New("parameters must be finite")

// Config is the host configuration. Fields map onto command-line flags.
type Config struct {
	Width      int
	Height     int
	Mode       string
	CPUScale   int
	AudioGain  float64
	AudioPath  string
	PresetPath string
	LogLevel   string
	Params     pattern.Params
}

func Default() Config {
	return Config{
		Width:     WindowWidth,
		Height:    WindowHeight,
		Mode:      "gpu",
		CPUScale:  4,
		AudioGain: AudioGain,
		LogLevel:  "info",
		Params:    pattern.DefaultParams(),
	}
}

// Validate rejects window sizes below one pixel and non-finite values.
func (c Config) Validate() error {
	if c.Width < 1 || c.Height < 1 {
		return fmt.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	if math.IsNaN(c.AudioGain) || math.IsInf(c.AudioGain, 0) {
		return fmt.Errorf("audio gain: %w", ErrNonFinite)
	}
	if !c.Params.Finite() {
		return ErrNonFinite
	}
	return nil
}

// BindFlags registers the configuration flags on fs. Parameter flags are
// named after the JSON keys of pattern.Params.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Width, "width", c.Width, "window width")
	fs.IntVar(&c.Height, "height", c.Height, "window height")
	fs.StringVar(&c.Mode, "mode", c.Mode, "render mode: gpu or cpu")
	fs.IntVar(&c.CPUScale, "cpu-scale", c.CPUScale, "viewport pixels per CPU-rendered pixel")
	fs.Float64Var(&c.AudioGain, "audio-gain", c.AudioGain, "brightness added per unit of audio level")
	fs.StringVar(&c.AudioPath, "audio", c.AudioPath, "audio track (wav, mp3, flac) to react to")
	fs.StringVar(&c.PresetPath, "preset", c.PresetPath, "JSON parameter preset to load at start")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")

	for _, t := range Tunables {
		p := t.field(&c.Params)
		fs.Float64Var(p, t.Name, *p, t.Usage)
	}
}

// LoadPreset reads a JSON parameter preset. Keys absent from the file keep
// the values of base.
func LoadPreset(path string, base pattern.Params) (pattern.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read preset: %w", err)
	}
	p := base
	if err := json.Unmarshal(data, &p); err != nil {
		return base, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if !p.Finite() {
		return base, fmt.Errorf("preset %s: %w", path, ErrNonFinite)
	}
	return p, nil
}

// SavePreset writes p as indented JSON.
func SavePreset(path string, p pattern.Params) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}
