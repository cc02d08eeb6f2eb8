// Package pattern computes the procedural background color for a single
// normalized coordinate. Every function here is pure, so callers may
// evaluate pixels in any order and from any number of goroutines.
package pattern

import "math"

const (
	// Contrast is the per-channel exponent applied before brightness.
	Contrast = 1.2

	// verticalRatio de-synchronizes the vertical base frequency from the
	// horizontal one.
	verticalRatio = 0.75

	detailRatioX = 3.5
	detailRatioY = 4.0
)

// Rec709 holds the luminance weights of ITU-R BT.709.
var Rec709 = Vec3{0.2126, 0.7152, 0.0722}

// WavePattern returns 0.5 + 0.5*sin(x)*tan(y) where x and y are the
// coordinate components scaled by freq and shifted by time and twist.
//
// The tangent is unbounded near y = π/2 + kπ, so the result is not
// confined to [0,1]; callers clamp downstream.
func WavePattern(coord Vec2, time float64, freq Vec2, twist float64) float64 {
	return 0.5 + 0.5*math.Sin(coord.X*freq.X+time+twist)*math.Tan(coord.Y*freq.Y+time+twist)
}

// Luminance returns the Rec. 709 weighted sum of c.
func Luminance(c Vec3) float64 {
	return c.Dot(Rec709)
}

// ComputeColor returns the RGB color at coord (in [0,1]²) after elapsed
// seconds. Alpha is implicitly 1. Output channels lie in
// [0, p.Brightness] for finite inputs with a highlight reduction in [0,1];
// non-finite inputs propagate as NaN.
func ComputeColor(coord Vec2, elapsed float64, p Params) Vec3 {
	t := elapsed * p.Speed

	baseFreq := Vec2{p.Complexity, p.Complexity * verticalRatio}
	color := Vec3{
		R: WavePattern(coord, t, baseFreq, 0),
		G: WavePattern(coord, t, baseFreq, p.ColorTwist),
		B: WavePattern(coord, t, baseFreq, p.ColorTwist*2),
	}

	detailFreq := Vec2{p.Complexity * detailRatioX, p.Complexity * detailRatioY}
	detail := WavePattern(coord, t, detailFreq, p.ColorTwist*3)
	color = color.Add(detail * p.DetailIntensity).Clamp01()

	mask := Smoothstep(p.HighlightThreshold, 1.0, Luminance(color))
	color = color.Mix(color.Scale(p.HighlightReduction), mask)

	return color.Pow(Contrast).Scale(p.Brightness)
}
