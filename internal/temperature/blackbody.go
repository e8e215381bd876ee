package temperature

import (
	"math"

	"github.com/jmylchreest/lumen/internal/colorimetry"
	"github.com/jmylchreest/lumen/internal/colour"
)

// Radiation constants for Planck's law with wavelength in metres.
const (
	planckC1 = 3.741771852e-16 // 2πhc², W·m²
	planckC2 = 1.438776877e-2  // hc/k, m·K
)

// Planck returns the spectral radiant exitance of a black body at kelvin and
// the given wavelength in nanometres.
func Planck(nm, kelvin float64) float64 {
	l := nm * 1e-9
	return planckC1 / (math.Pow(l, 5) * (math.Expm1(planckC2 / (l * kelvin))))
}

// BlackbodyToRGB integrates Planck's law against the colour-matching
// functions and returns the linear sRGB colour with its largest channel at 1.
// It is more accurate than KelvinToRGB but is not used by Resolve.
func BlackbodyToRGB(k float64) colour.Linear {
	kelvin := Clamp(k)
	spd := colorimetry.Sample(func(nm float64) float64 {
		return Planck(nm, kelvin)
	})
	xyz := spd.Normalized().ToXYZ()
	return colorimetry.XYZToLinear(xyz).ClampNegative().NormalizePeak()
}
