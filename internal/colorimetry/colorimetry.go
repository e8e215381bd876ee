// Package colorimetry holds the immutable reference data used to turn
// spectra into colour: the CIE 1931 colour-matching functions on a fixed
// wavelength grid and the XYZ to linear sRGB matrix.
//
// Everything in this package is initialised once at program start and never
// mutated afterwards, so it is safe for concurrent readers.
package colorimetry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/jmylchreest/lumen/internal/colour"
)

// Reference sampling grid, in nanometres.
const (
	GridStartNm = 380.0
	GridEndNm   = 780.0
	GridStepNm  = 5.0
	GridSize    = 81
)

// MaxLuminousEfficacy is the photopic efficacy peak at 555 nm, in lm/W.
const MaxLuminousEfficacy = 683.0

// XYZToLinearSRGB converts CIE XYZ (D65) to linear sRGB.
var XYZToLinearSRGB = mgl64.Mat3FromRows(
	mgl64.Vec3{3.2404542, -1.5371385, -0.4985314},
	mgl64.Vec3{-0.9692660, 1.8760108, 0.0415560},
	mgl64.Vec3{0.0556434, -0.2040259, 1.0572252},
)

// LinearSRGBToXYZ is the inverse of XYZToLinearSRGB.
var LinearSRGBToXYZ = mgl64.Mat3FromRows(
	mgl64.Vec3{0.4124564, 0.3575761, 0.1804375},
	mgl64.Vec3{0.2126729, 0.7151522, 0.0721750},
	mgl64.Vec3{0.0193339, 0.1191920, 0.9503041},
)

var wavelengths [GridSize]float64

func init() {
	for i := range wavelengths {
		wavelengths[i] = GridStartNm + float64(i)*GridStepNm
	}
}

// Spectrum is a spectral power distribution sampled on the reference grid.
type Spectrum [GridSize]float64

// Wavelength returns the wavelength of grid index i.
func Wavelength(i int) float64 {
	return wavelengths[i]
}

// CMF returns the colour-matching function values at grid index i.
func CMF(i int) mgl64.Vec3 {
	return mgl64.Vec3(cie1931[i])
}

// CMFAt linearly interpolates the colour-matching functions at an arbitrary
// wavelength. Outside the grid the response is zero.
func CMFAt(nm float64) mgl64.Vec3 {
	if nm < GridStartNm || nm > GridEndNm || math.IsNaN(nm) {
		return mgl64.Vec3{}
	}
	pos := (nm - GridStartNm) / GridStepNm
	lo := int(math.Floor(pos))
	if lo >= GridSize-1 {
		return CMF(GridSize - 1)
	}
	t := pos - float64(lo)
	a, b := CMF(lo), CMF(lo+1)
	return a.Mul(1 - t).Add(b.Mul(t))
}

// LuminousEfficacy returns the photopic efficacy at nm in lm/W.
func LuminousEfficacy(nm float64) float64 {
	return MaxLuminousEfficacy * CMFAt(nm)[1]
}

// Sample evaluates f at every grid wavelength.
func Sample(f func(nm float64) float64) Spectrum {
	var s Spectrum
	for i := range s {
		s[i] = f(wavelengths[i])
	}
	return s
}

// Peak returns the largest sample and its wavelength.
func (s Spectrum) Peak() (value, nm float64) {
	idx := 0
	for i, v := range s {
		if v > s[idx] {
			idx = i
		}
	}
	return s[idx], wavelengths[idx]
}

// Normalized returns a copy of s scaled so its maximum is 1.
// A spectrum with no positive sample is returned unchanged.
func (s Spectrum) Normalized() Spectrum {
	peak, _ := s.Peak()
	if peak <= 0 {
		return s
	}
	for i := range s {
		s[i] /= peak
	}
	return s
}

// ToXYZ integrates the spectrum against the colour-matching functions using
// the trapezoidal rule over the grid.
func (s Spectrum) ToXYZ() mgl64.Vec3 {
	var xyz mgl64.Vec3
	for i := 0; i < GridSize-1; i++ {
		a := CMF(i).Mul(s[i])
		b := CMF(i + 1).Mul(s[i+1])
		xyz = xyz.Add(a.Add(b).Mul(GridStepNm / 2))
	}
	return xyz
}

// XYZToLinear converts XYZ to linear sRGB without any clamping.
func XYZToLinear(xyz mgl64.Vec3) colour.Linear {
	return colour.FromVec3(XYZToLinearSRGB.Mul3x1(xyz))
}
