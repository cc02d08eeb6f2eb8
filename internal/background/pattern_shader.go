//go:build ignore

//kage:unit pixels

package main

// Uniform variables. Names must match Background.Uniforms.
var Time float
var Resolution vec2

var Complexity float
var Speed float
var ColorTwist float
var DetailIntensity float
var HighlightThreshold float
var HighlightReduction float
var Brightness float

func wavePattern(coord vec2, time float, freq vec2, twist float) float {
	return 0.5 + 0.5*sin(coord.x*freq.x+time+twist)*tan(coord.y*freq.y+time+twist)
}

func highlightMask(edge0 float, edge1 float, x float) float {
	if edge1 == edge0 {
		if x > edge0 {
			return 1
		}
		return 0
	}
	t := clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	coord := (dstPos.xy - imageDstOrigin()) / Resolution
	t := Time * Speed

	baseFreq := vec2(Complexity, Complexity*0.75)
	c := vec3(
		wavePattern(coord, t, baseFreq, 0),
		wavePattern(coord, t, baseFreq, ColorTwist),
		wavePattern(coord, t, baseFreq, ColorTwist*2),
	)

	detailFreq := vec2(Complexity*3.5, Complexity*4.0)
	detail := wavePattern(coord, t, detailFreq, ColorTwist*3)
	c = clamp(c+vec3(detail*DetailIntensity), vec3(0), vec3(1))

	luminance := dot(c, vec3(0.2126, 0.7152, 0.0722))
	mask := highlightMask(HighlightThreshold, 1.0, luminance)
	c = mix(c, c*HighlightReduction, mask)

	c = pow(c, vec3(1.2)) * Brightness
	return vec4(c, 1)
}
