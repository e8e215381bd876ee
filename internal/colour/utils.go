package colour

import (
	"math"

	"github.com/jmylchreest/lumen/internal/security"
)

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Clamp01 restricts v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}

// Decode applies the sRGB transfer function inverse (display -> linear).
// https://www.w3.org/TR/WCAG20/#relativeluminancedef.
func Decode(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

// Encode applies the sRGB transfer function (linear -> display).
func Encode(v float64) float64 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

// ContrastRatio calculates the WCAG contrast ratio between two colours.
// Returns a value between 1 and 21.
func ContrastRatio(c1, c2 Linear) float64 {
	l1 := c1.Luminance()
	l2 := c2.Luminance()

	// Ensure l1 is the lighter colour.
	if l1 < l2 {
		l1, l2 = l2, l1
	}

	return (l1 + 0.05) / (l2 + 0.05)
}

func quantize(v float64) uint8 {
	return security.SafeUint8(int(math.Round(v * 255)))
}
