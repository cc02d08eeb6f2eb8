package config

import (
	"fmt"

	"github.com/iburimskiy/pattern-background/internal/pattern"
)

// Tunable describes one live-tunable pattern parameter.
type Tunable struct {
	Name  string
	Usage string
	Step  float64
	field func(*pattern.Params) *float64
}

// Tunables lists the pattern parameters in HUD order.
var Tunables = []Tunable{
	{"complexity", "base spatial frequency", 0.5, func(p *pattern.Params) *float64 { return &p.Complexity }},
	{"speed", "animation time scale", 0.05, func(p *pattern.Params) *float64 { return &p.Speed }},
	{"colorTwist", "phase offset between channels", 0.1, func(p *pattern.Params) *float64 { return &p.ColorTwist }},
	{"detailIntensity", "weight of the detail overlay", 0.25, func(p *pattern.Params) *float64 { return &p.DetailIntensity }},
	{"highlightThreshold", "luminance where highlight reduction starts", 0.05, func(p *pattern.Params) *float64 { return &p.HighlightThreshold }},
	{"highlightReduction", "color multiplier in highlights", 0.05, func(p *pattern.Params) *float64 { return &p.HighlightReduction }},
	{"brightness", "final multiplier", 0.05, func(p *pattern.Params) *float64 { return &p.Brightness }},
}

func lookup(name string) (Tunable, error) {
	for _, t := range Tunables {
		if t.Name == name {
			return t, nil
		}
	}
	return Tunable{}, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

// Get returns the value of the named parameter.
func Get(p pattern.Params, name string) (float64, error) {
	t, err := lookup(name)
	if err != nil {
		return 0, err
	}
	return *t.field(&p), nil
}

// Set returns a copy of p with the named parameter set to v.
func Set(p pattern.Params, name string, v float64) (pattern.Params, error) {
	t, err := lookup(name)
	if err != nil {
		return p, err
	}
	*t.field(&p) = v
	return p, nil
}

// Nudge moves the named parameter by steps multiples of its step size.
func Nudge(p pattern.Params, name string, steps int) (pattern.Params, error) {
	t, err := lookup(name)
	if err != nil {
		return p, err
	}
	*t.field(&p) += float64(steps) * t.Step
	return p, nil
}
