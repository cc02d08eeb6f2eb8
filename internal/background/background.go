// Package background owns the animated procedural background: its
// parameter set, the viewport and time inputs supplied by the host, and
// the two ways of putting the pattern on screen (Kage shader or CPU
// rasterizer).
package background

import (
	_ "embed"
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/pattern-background/internal/pattern"
)

//go:embed pattern_shader.go
var patternShaderSrc []byte

// ErrNotActive is returned when drawing before a viewport is known.
var ErrNotActive = errors.New("background: no viewport set")

// State is the lifecycle state of a Background.
type State int

const (
	Uninitialized State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Mode selects where pixels are evaluated.
type Mode int

const (
	ModeGPU Mode = iota
	ModeCPU
)

func (m Mode) String() string {
	switch m {
	case ModeGPU:
		return "gpu"
	case ModeCPU:
		return "cpu"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts "gpu" or "cpu" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "gpu":
		return ModeGPU, nil
	case "cpu":
		return ModeCPU, nil
	}
	return 0, fmt.Errorf("unknown render mode %q", s)
}

// Background is the full-screen pattern. It is driven from the host's
// main loop and is not safe for concurrent mutation.
type Background struct {
	params  pattern.Params
	width   int
	height  int
	elapsed float64
	state   State
	mode    Mode

	shader    *ebiten.Shader
	shaderErr error

	// CPU path
	cpuScale int
	cpuBuf   *image.RGBA
	cpuImg   *ebiten.Image
}

// New returns an uninitialized background holding p.
func New(p pattern.Params) *Background {
	return &Background{
		params:   p,
		cpuScale: 1,
	}
}

func (b *Background) Params() pattern.Params { return b.params }

// SetParams replaces the parameter set. Values are not validated.
func (b *Background) SetParams(p pattern.Params) { b.params = p }

func (b *Background) State() State { return b.state }

func (b *Background) Elapsed() float64 { return b.elapsed }

// Viewport returns the last size passed to OnViewportChange.
func (b *Background) Viewport() (width, height int) { return b.width, b.height }

func (b *Background) Mode() Mode { return b.mode }

func (b *Background) SetMode(m Mode) {
	if m == b.mode {
		return
	}
	Logger().Info("render mode changed", "from", b.mode, "to", m)
	b.mode = m
}

// SetCPUScale sets how many viewport pixels each CPU-evaluated pixel
// covers along both axes. Values below 1 are treated as 1.
func (b *Background) SetCPUScale(n int) {
	if n < 1 {
		n = 1
	}
	b.cpuScale = n
}

// OnViewportChange records the rendering surface size. The host must call
// it whenever the surface is resized. Non-positive sizes are ignored.
func (b *Background) OnViewportChange(width, height int) {
	if width <= 0 || height <= 0 {
		Logger().Debug("ignoring empty viewport", "width", width, "height", height)
		return
	}
	if width == b.width && height == b.height {
		return
	}
	b.width, b.height = width, height
	Logger().Info("viewport changed", "width", width, "height", height)
	if b.state == Uninitialized {
		b.state = Active
		Logger().Info("background active")
	}
}

// OnFrame records the elapsed time in seconds. It is called once per
// rendered frame with a non-decreasing value.
func (b *Background) OnFrame(elapsed float64) {
	if elapsed < b.elapsed {
		Logger().Debug("elapsed time went backwards", "prev", b.elapsed, "now", elapsed)
	}
	b.elapsed = elapsed
}

// Normalize maps a pixel position to [0,1]² by dividing by the viewport.
func (b *Background) Normalize(px, py float64) pattern.Vec2 {
	return pattern.Vec2{X: px / float64(b.width), Y: py / float64(b.height)}
}

// ColorAt evaluates the pattern at a pixel position for the current frame.
func (b *Background) ColorAt(px, py float64) pattern.Vec3 {
	return pattern.ComputeColor(b.Normalize(px, py), b.elapsed, b.params)
}

// Uniforms returns the shader uniform values for the current frame.
func (b *Background) Uniforms() map[string]any {
	p := b.params
	return map[string]any{
		"Time":               b.elapsed,
		"Resolution":         [2]float64{float64(b.width), float64(b.height)},
		"Complexity":         p.Complexity,
		"Speed":              p.Speed,
		"ColorTwist":         p.ColorTwist,
		"DetailIntensity":    p.DetailIntensity,
		"HighlightThreshold": p.HighlightThreshold,
		"HighlightReduction": p.HighlightReduction,
		"Brightness":         p.Brightness,
	}
}

func (b *Background) ensureShader() error {
	if b.shader != nil || b.shaderErr != nil {
		return b.shaderErr
	}
	s, err := ebiten.NewShader(patternShaderSrc)
	if err != nil {
		b.shaderErr = fmt.Errorf("compile pattern shader: %w", err)
		return b.shaderErr
	}
	b.shader = s
	return nil
}

// Draw fills dst with the pattern. In GPU mode a shader compile failure
// switches the background to CPU mode.
func (b *Background) Draw(dst *ebiten.Image) error {
	if b.state != Active {
		return ErrNotActive
	}

	if b.mode == ModeGPU {
		if err := b.ensureShader(); err != nil {
			Logger().Warn("falling back to CPU rendering", "err", err)
			b.SetMode(ModeCPU)
		} else {
			op := &ebiten.DrawRectShaderOptions{}
			op.Uniforms = b.Uniforms()
			dst.DrawRectShader(b.width, b.height, b.shader, op)
			return nil
		}
	}

	return b.drawCPU(dst)
}

func (b *Background) drawCPU(dst *ebiten.Image) error {
	w := (b.width + b.cpuScale - 1) / b.cpuScale
	h := (b.height + b.cpuScale - 1) / b.cpuScale

	if b.cpuBuf == nil || b.cpuBuf.Rect.Dx() != w || b.cpuBuf.Rect.Dy() != h {
		b.cpuBuf = image.NewRGBA(image.Rect(0, 0, w, h))
		if b.cpuImg != nil {
			b.cpuImg.Deallocate()
		}
		b.cpuImg = ebiten.NewImage(w, h)
	}

	if err := b.Rasterize(b.cpuBuf); err != nil {
		return err
	}
	b.cpuImg.WritePixels(b.cpuBuf.Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(b.width)/float64(w), float64(b.height)/float64(h))
	dst.DrawImage(b.cpuImg, op)
	return nil
}
