package colour

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Linear is a linear-light RGB triple as consumed by the renderer.
// Components are unbounded above; the resolvers keep them non-negative.
type Linear struct {
	R float64 `json:"r" yaml:"r"`
	G float64 `json:"g" yaml:"g"`
	B float64 `json:"b" yaml:"b"`
}

// White is the fixed white reference used for white-mix blending.
var White = Linear{R: 1, G: 1, B: 1}

// Black is the all-zero colour.
var Black = Linear{}

// FromVec3 converts a mathgl vector to a Linear colour.
func FromVec3(v mgl64.Vec3) Linear {
	return Linear{R: v[0], G: v[1], B: v[2]}
}

// FromSlice converts a three element slice. ok is false for any other length.
func FromSlice(v []float64) (Linear, bool) {
	if len(v) != 3 {
		return Linear{}, false
	}
	return Linear{R: v[0], G: v[1], B: v[2]}, true
}

// Vec3 returns the colour as a mathgl vector.
func (c Linear) Vec3() mgl64.Vec3 {
	return mgl64.Vec3{c.R, c.G, c.B}
}

// Slice returns the colour as a []float64 attribute value.
func (c Linear) Slice() []float64 {
	return []float64{c.R, c.G, c.B}
}

// Scale multiplies every channel by f.
func (c Linear) Scale(f float64) Linear {
	return Linear{R: c.R * f, G: c.G * f, B: c.B * f}
}

// Mul multiplies the colours channel by channel.
func (c Linear) Mul(o Linear) Linear {
	return Linear{R: c.R * o.R, G: c.G * o.G, B: c.B * o.B}
}

// Mix returns c*(1-t) + o*t.
func (c Linear) Mix(o Linear, t float64) Linear {
	return Linear{
		R: c.R*(1-t) + o.R*t,
		G: c.G*(1-t) + o.G*t,
		B: c.B*(1-t) + o.B*t,
	}
}

// Max returns the largest channel.
func (c Linear) Max() float64 {
	return math.Max(c.R, math.Max(c.G, c.B))
}

// Min returns the smallest channel.
func (c Linear) Min() float64 {
	return math.Min(c.R, math.Min(c.G, c.B))
}

// ClampNegative replaces negative channels with zero.
// Out-of-gamut spectra routinely produce negative channels.
func (c Linear) ClampNegative() Linear {
	return Linear{R: math.Max(0, c.R), G: math.Max(0, c.G), B: math.Max(0, c.B)}
}

// NormalizePeak scales the colour so the largest channel is 1.
// Black stays black.
func (c Linear) NormalizePeak() Linear {
	m := c.Max()
	if m <= 0 {
		return Black
	}
	return Linear{R: c.R / m, G: c.G / m, B: c.B / m}
}

// Luminance returns the relative luminance (Rec. 709 weights).
func (c Linear) Luminance() float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// IsNeutral reports whether all channels are within tol of each other.
func (c Linear) IsNeutral(tol float64) bool {
	return c.Max()-c.Min() <= tol
}

// Display encodes the colour to 8-bit sRGB, clipping to [0,1] first.
func (c Linear) Display() RGB {
	return RGB{
		R: quantize(Encode(Clamp01(c.R))),
		G: quantize(Encode(Clamp01(c.G))),
		B: quantize(Encode(Clamp01(c.B))),
	}
}

// String formats the colour with four decimals per channel.
func (c Linear) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", c.R, c.G, c.B)
}
