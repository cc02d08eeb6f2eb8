package pattern

import "math"

// Params is the set of tunable values shared by every pixel of a frame.
// Fields are independent; typical ranges are documented but not enforced.
type Params struct {
	// Complexity is the base spatial frequency (> 0).
	Complexity float64 `json:"complexity"`
	// Speed scales elapsed time.
	Speed float64 `json:"speed"`
	// ColorTwist is the phase offset between color channels.
	ColorTwist float64 `json:"colorTwist"`
	// DetailIntensity weights the high-frequency overlay (>= 0).
	DetailIntensity float64 `json:"detailIntensity"`
	// HighlightThreshold is the luminance below which no highlight
	// reduction applies, in [0,1].
	HighlightThreshold float64 `json:"highlightThreshold"`
	// HighlightReduction multiplies color in highlight regions.
	HighlightReduction float64 `json:"highlightReduction"`
	// Brightness is the final multiplier (> 0).
	Brightness float64 `json:"brightness"`
}

// DefaultParams returns the stock look of the background.
func DefaultParams() Params {
	return Params{
		Complexity:         10,
		Speed:              0.2,
		ColorTwist:         1.0,
		DetailIntensity:    6.5,
		HighlightThreshold: 0.3,
		HighlightReduction: 0.0,
		Brightness:         1.0,
	}
}

// Finite reports whether every field is a finite number.
func (p Params) Finite() bool {
	for _, v := range [...]float64{
		p.Complexity, p.Speed, p.ColorTwist, p.DetailIntensity,
		p.HighlightThreshold, p.HighlightReduction, p.Brightness,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
