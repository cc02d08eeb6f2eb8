package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/pattern-background/internal/background"
	"github.com/iburimskiy/pattern-background/internal/config"
	"github.com/iburimskiy/pattern-background/internal/pattern"
)

// Game hosts the background in an ebiten window: it owns the frame clock,
// forwards window size changes and lets the user tune parameters live.
type Game struct {
	cfg config.Config
	bg  *background.Background

	// params is the tuned parameter set; audio modulation is applied on
	// top of it each frame before it reaches the background.
	params pattern.Params

	audio audioTrack

	elapsed  float64
	paused   bool
	showHUD  bool
	selected int
	lastErr  error
}

// New builds a host from cfg. It does not touch the window, so it can be
// called before ebiten.RunGame.
func New(cfg config.Config) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	mode, err := background.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	params := cfg.Params
	if cfg.PresetPath != "" {
		if params, err = config.LoadPreset(cfg.PresetPath, params); err != nil {
			return nil, err
		}
	}

	bg := background.New(params)
	bg.SetMode(mode)
	bg.SetCPUScale(cfg.CPUScale)

	g := &Game{
		cfg:     cfg,
		bg:      bg,
		params:  params,
		showHUD: true,
	}
	if cfg.AudioPath != "" {
		if err := g.loadTrack(cfg.AudioPath); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.audio.stop()
		return ebiten.Termination
	}
	g.handleKeys()
	g.step(1.0 / float64(ebiten.TPS()))
	return nil
}

// step advances the clock by dt seconds and hands this frame's inputs to
// the background.
func (g *Game) step(dt float64) {
	if !g.paused {
		g.elapsed += dt
	}
	g.audio.update()
	g.bg.SetParams(g.effectiveParams())
	g.bg.OnFrame(g.elapsed)
}

// effectiveParams is the tuned set with the audio level added to
// brightness.
func (g *Game) effectiveParams() pattern.Params {
	p := g.params
	p.Brightness += g.cfg.AudioGain * g.audio.level
	return p
}

func (g *Game) handleKeys() {
	shift := ebiten.IsKeyPressed(ebiten.KeyShift)

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.togglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		if shift {
			g.selectParam(-1)
		} else {
			g.selectParam(1)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		g.nudge(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		g.nudge(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.params = g.cfg.Params
		background.Logger().Info("parameters reset")
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		g.toggleMode()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.showHUD = !g.showHUD
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		g.audio.stop()
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.report(g.openTrackDialog())
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		g.report(g.loadPresetDialog())
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		g.report(g.savePresetDialog())
	}
}

// togglePause pauses or resumes the clock and the audio track together.
func (g *Game) togglePause() {
	g.paused = !g.paused
	g.audio.setPaused(g.paused)
}

func (g *Game) openTrackDialog() error {
	filename, err := chooseTrackFile()
	if err != nil || filename == "" {
		return err
	}
	return g.loadTrack(filename)
}

// loadTrack replaces the audio track; it starts paused if the clock is.
func (g *Game) loadTrack(path string) error {
	return g.audio.load(path, g.paused)
}

func (g *Game) report(err error) {
	if err == nil {
		return
	}
	background.Logger().Error("action failed", "err", err)
	g.lastErr = err
}

func (g *Game) selectParam(delta int) {
	n := len(config.Tunables)
	g.selected = ((g.selected+delta)%n + n) % n
}

func (g *Game) nudge(steps int) {
	name := config.Tunables[g.selected].Name
	p, err := config.Nudge(g.params, name, steps)
	if err != nil {
		g.report(err)
		return
	}
	g.params = p
}

func (g *Game) toggleMode() {
	if g.bg.Mode() == background.ModeGPU {
		g.bg.SetMode(background.ModeCPU)
	} else {
		g.bg.SetMode(background.ModeGPU)
	}
}

func (g *Game) loadPresetDialog() error {
	filename, err := zenity.SelectFile(
		zenity.Title("Load Preset"),
		zenity.FileFilters{{Name: "Preset", Patterns: []string{"*.json"}}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	p, err := config.LoadPreset(filename, g.params)
	if err != nil {
		return err
	}
	g.params = p
	background.Logger().Info("preset loaded", "path", filename)
	return nil
}

func (g *Game) savePresetDialog() error {
	filename, err := zenity.SelectFileSave(
		zenity.Title("Save Preset"),
		zenity.Filename("preset.json"),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{Name: "Preset", Patterns: []string{"*.json"}}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	if err := config.SavePreset(filename, g.params); err != nil {
		return err
	}
	background.Logger().Info("preset saved", "path", filename)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if err := g.bg.Draw(screen); err != nil && !errors.Is(err, background.ErrNotActive) {
		g.report(fmt.Errorf("draw background: %w", err))
	}
	if g.showHUD {
		cx, cy := ebiten.CursorPosition()
		ebitenutil.DebugPrintAt(screen, g.hudText(ebiten.ActualFPS(), cx, cy), config.HUDX, config.HUDY)
	}
}

// hudText renders the overlay, including the pattern color under the
// cursor at (cx, cy).
func (g *Game) hudText(fps float64, cx, cy int) string {
	var sb strings.Builder

	status := "running"
	if g.paused {
		status = "paused"
	}
	fmt.Fprintf(&sb, "%s  %s  mode=%s  fps=%.0f\n",
		formatSeconds(g.elapsed), status, g.bg.Mode(), fps)

	if g.bg.State() == background.Active {
		w, h := g.bg.Viewport()
		c := g.bg.ColorAt(float64(cx), float64(cy))
		fmt.Fprintf(&sb, "viewport %dx%d  rgb(%d,%d)=%.2f,%.2f,%.2f\n", w, h, cx, cy, c.R, c.G, c.B)
	}

	for i, t := range config.Tunables {
		v, _ := config.Get(g.params, t.Name)
		marker := "  "
		if i == g.selected {
			marker = "> "
		}
		fmt.Fprintf(&sb, "%s%-19s %7.3f\n", marker, t.Name, v)
	}

	if g.audio.playing() {
		fmt.Fprintf(&sb, "audio %s  level=%.2f\n", formatDuration(g.audio.duration), g.audio.level)
	} else {
		sb.WriteString("O: open audio track\n")
	}
	if g.lastErr != nil {
		sb.WriteString("Error: " + g.lastErr.Error())
	}
	return sb.String()
}

// Layout reports the window size to the background, which is how resize
// events reach it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.bg.OnViewportChange(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
