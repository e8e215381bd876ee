// Package temperature converts correlated colour temperatures to linear RGB,
// including the per-channel multi-temperature blend used to tint a light.
package temperature

import (
	"math"

	"github.com/jmylchreest/lumen/internal/colour"
)

// Kelvin limits and default.
const (
	MinKelvin     = 1000.0
	MaxKelvin     = 40000.0
	DefaultKelvin = 6500.0
)

// displayGamma approximates the sRGB decode for the Helland fit.
const displayGamma = 2.2

// Spec holds the overall and per-channel temperatures.
type Spec struct {
	OverallKelvin float64 `json:"overallKelvin" yaml:"overallKelvin"`
	RedKelvin     float64 `json:"redKelvin" yaml:"redKelvin"`
	GreenKelvin   float64 `json:"greenKelvin" yaml:"greenKelvin"`
	BlueKelvin    float64 `json:"blueKelvin" yaml:"blueKelvin"`
}

// DefaultSpec returns 6500 K on every channel.
func DefaultSpec() Spec {
	return Uniform(DefaultKelvin)
}

// Uniform returns a spec with every temperature set to k.
func Uniform(k float64) Spec {
	return Spec{OverallKelvin: k, RedKelvin: k, GreenKelvin: k, BlueKelvin: k}
}

// Clamp returns k limited to [MinKelvin, MaxKelvin]. Non-positive and NaN
// values are treated as unset and become DefaultKelvin.
func Clamp(k float64) float64 {
	if !(k > 0) {
		k = DefaultKelvin
	}
	return math.Max(MinKelvin, math.Min(MaxKelvin, k))
}

// Clamped returns the spec with every temperature clamped.
func (s Spec) Clamped() Spec {
	return Spec{
		OverallKelvin: Clamp(s.OverallKelvin),
		RedKelvin:     Clamp(s.RedKelvin),
		GreenKelvin:   Clamp(s.GreenKelvin),
		BlueKelvin:    Clamp(s.BlueKelvin),
	}
}

// Resolve blends the per-channel temperatures. Each output channel is that
// channel's component of its own temperature, tinted by the same component
// of the overall temperature. It never fails.
func Resolve(s Spec) colour.Linear {
	overall := KelvinToRGB(s.OverallKelvin)
	return colour.Linear{
		R: KelvinToRGB(s.RedKelvin).R * overall.R,
		G: KelvinToRGB(s.GreenKelvin).G * overall.G,
		B: KelvinToRGB(s.BlueKelvin).B * overall.B,
	}
}

// KelvinToRGB approximates the colour of a black body at k using Tanner
// Helland's curve fit, decoded to linear light with gamma 2.2. The result is
// in [0, 1] per channel.
func KelvinToRGB(k float64) colour.Linear {
	t := Clamp(k) / 100

	var r, g, b float64
	if t <= 66 {
		r = 255
		g = 99.4708025861*math.Log(math.Max(t, 1)) - 161.1195681661
	} else {
		r = 329.698727446 * math.Pow(t-60, -0.1332047592)
		g = 288.1221695283 * math.Pow(t-60, -0.0755148492)
	}

	switch {
	case t >= 66:
		b = 255
	case t <= 19:
		b = 0
	default:
		b = 138.5177312231*math.Log(math.Max(t-10, 1)) - 305.0447927307
	}

	return colour.Linear{
		R: decode(r),
		G: decode(g),
		B: decode(b),
	}
}

func decode(v float64) float64 {
	return math.Pow(colour.Clamp(v, 0, 255)/255, displayGamma)
}
