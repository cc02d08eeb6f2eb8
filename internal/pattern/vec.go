package pattern

import "math"

// Vec2 is a 2D coordinate or frequency pair.
type Vec2 struct {
	X, Y float64
}

// Vec3 is an RGB triple. Channels are nominally in [0,1] but are not
// clamped unless a method says so.
type Vec3 struct {
	R, G, B float64
}

// Add adds s to every channel.
func (v Vec3) Add(s float64) Vec3 {
	return Vec3{v.R + s, v.G + s, v.B + s}
}

// Scale multiplies every channel by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.R * s, v.G * s, v.B * s}
}

// Dot returns the channel-wise dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.R*o.R + v.G*o.G + v.B*o.B
}

// Pow raises each channel to e.
func (v Vec3) Pow(e float64) Vec3 {
	return Vec3{math.Pow(v.R, e), math.Pow(v.G, e), math.Pow(v.B, e)}
}

// Clamp01 clamps each channel to [0,1]. NaN channels stay NaN.
func (v Vec3) Clamp01() Vec3 {
	return Vec3{Clamp01(v.R), Clamp01(v.G), Clamp01(v.B)}
}

// Mix linearly interpolates per channel between v and o by m.
func (v Vec3) Mix(o Vec3, m float64) Vec3 {
	return Vec3{Mix(v.R, o.R, m), Mix(v.G, o.G, m), Mix(v.B, o.B, m)}
}

// Clamp01 clamps v to [0,1]. NaN is returned unchanged.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Mix returns a*(1-m) + b*m.
func Mix(a, b, m float64) float64 {
	return a*(1-m) + b*m
}

// Smoothstep is the cubic Hermite ramp between edge0 and edge1. Reversed
// edges ramp downward. Equal edges degrade to a step that is 1 only for
// x > edge0.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge1 == edge0 {
		if x > edge0 {
			return 1
		}
		return 0
	}
	t := Clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}
